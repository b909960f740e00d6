package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbukum/apiclient/version"
)

// NewRootCmd builds the apiclient command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "apiclient",
		Short: "Call JSON and XML APIs from the command line",
		Long: `apiclient sends GET and POST requests to a configured API endpoint,
decodes JSON, XML or text responses and can cache results in Redis.

Configuration is read from config.yml, .env and APICLIENT_* environment
variables; flags override both.

Examples:
  apiclient get /users page=2 --domain api.example.com --secure
  apiclient get /users --cache-id users --ttl 10m --redis-addr localhost:6379
  apiclient post /items name=widget tags[]=a tags[]=b`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "Path to config file (default: search standard locations)")
	pf.StringVar(&flags.envFile, "env-file", "", "Path to .env file")
	pf.StringVarP(&flags.domain, "domain", "d", "", "API domain, without scheme or port")
	pf.BoolVarP(&flags.secure, "secure", "s", false, "Use https")
	pf.IntVarP(&flags.port, "port", "p", 0, "API port")
	pf.StringVarP(&flags.username, "username", "u", "", "Basic auth username")
	pf.StringVar(&flags.password, "password", "", "Basic auth password")
	pf.StringVar(&flags.caFile, "ca-file", "", "PEM bundle to trust instead of the system roots")
	pf.BoolVarP(&flags.insecureSkipVerify, "insecure-skip-verify", "k", false, "Do not verify the server certificate")
	pf.DurationVar(&flags.timeout, "timeout", 0, "Request timeout (0 waits indefinitely)")
	pf.StringVar(&flags.redisAddr, "redis-addr", "", "Redis address for --cache-id (enables the cache)")

	root.AddCommand(
		newGetCmd(flags),
		newPostCmd(flags),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and wires the app for cmd.
func setup(cmd *cobra.Command, flags *globalFlags) (*app, error) {
	cfg, err := loadConfig(flags, cmd.Flags().Changed)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(exitCode(err))
	}
}
