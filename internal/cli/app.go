package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kbukum/apiclient/apiclient"
	"github.com/kbukum/apiclient/config"
	"github.com/kbukum/apiclient/logger"
	"github.com/kbukum/apiclient/observability"
	"github.com/kbukum/apiclient/redis"
	"github.com/kbukum/apiclient/security"
	"github.com/kbukum/apiclient/version"
)

const serviceName = "apiclient"

// AppConfig is the configuration of the apiclient binary.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Client    apiclient.Config     `yaml:"client" mapstructure:"client"`
	Redis     redis.Config         `yaml:"redis" mapstructure:"redis"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults fills in zero-value fields.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Version
	}
	// stdout carries response bodies
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Client.ApplyDefaults()
	c.Redis.ApplyDefaults()

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.Name
	}
	if c.Telemetry.ServiceVersion == "" {
		c.Telemetry.ServiceVersion = c.Version
	}
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = c.Environment
	}
	c.Telemetry.ApplyDefaults()
}

// Validate checks everything but the client section, which flags may
// still complete.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("config.redis: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("config.telemetry: %w", err)
	}
	return nil
}

// globalFlags are the persistent flags shared by all commands.
type globalFlags struct {
	configFile         string
	envFile            string
	domain             string
	secure             bool
	port               int
	username           string
	password           string
	caFile             string
	insecureSkipVerify bool
	timeout            time.Duration
	redisAddr          string
}

// app holds the wired dependencies of one command run.
type app struct {
	cfg      AppConfig
	log      *logger.Logger
	client   *apiclient.Client
	store    *redis.Client
	shutdown func(context.Context) error
}

// loadConfig reads the config file and environment, then applies flags
// that were set explicitly on the command line.
func loadConfig(flags *globalFlags, changed func(string) bool) (AppConfig, error) {
	var cfg AppConfig
	var opts []config.LoaderOption
	if flags.configFile != "" {
		opts = append(opts, config.WithConfigFile(flags.configFile))
	}
	if flags.envFile != "" {
		opts = append(opts, config.WithEnvFile(flags.envFile))
	}
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return cfg, err
	}

	if changed("domain") {
		cfg.Client.Domain = flags.domain
	}
	if changed("secure") {
		cfg.Client.Secure = flags.secure
	}
	if changed("port") {
		cfg.Client.Port = flags.port
	}
	if changed("username") {
		cfg.Client.Username = flags.username
	}
	if changed("password") {
		cfg.Client.Password = flags.password
	}
	if changed("ca-file") {
		cfg.Client.CAFile = flags.caFile
	}
	if changed("insecure-skip-verify") && flags.insecureSkipVerify {
		cfg.Client.VerifyMode = security.VerifyNone
	}
	if changed("timeout") {
		cfg.Client.Timeout = flags.timeout
	}
	if flags.redisAddr != "" {
		cfg.Redis.Enabled = true
		cfg.Redis.Addr = flags.redisAddr
	}
	return cfg, nil
}

// newApp wires the logger, telemetry, cache store and client for cfg.
// Log lines go to logOut.
func newApp(ctx context.Context, cfg AppConfig, logOut io.Writer) (*app, error) {
	log := logger.NewWithWriter(&cfg.Logging, cfg.Name, logOut)
	logger.SetGlobalLogger(log)

	a := &app{cfg: cfg, log: log}

	shutdown, err := observability.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	a.shutdown = shutdown

	opts := []apiclient.Option{apiclient.WithLogger(log.WithComponent("http"))}

	if cfg.Telemetry.Enabled {
		metrics, err := observability.NewClientMetrics(observability.Meter(observability.InstrumentationName))
		if err != nil {
			a.close()
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		opts = append(opts, apiclient.WithMetrics(metrics))
	}

	if cfg.Redis.Enabled {
		store, err := redis.New(cfg.Redis, log.WithComponent("redis"))
		if err != nil {
			a.close()
			return nil, err
		}
		a.store = store
		if err := store.Ping(ctx); err != nil {
			a.close()
			return nil, err
		}
		opts = append(opts, apiclient.WithCache(store))
	}

	client, err := apiclient.New(cfg.Client, opts...)
	if err != nil {
		a.close()
		return nil, err
	}
	a.client = client
	return a, nil
}

// close releases everything newApp acquired. Safe on a partial app.
func (a *app) close() {
	if a.client != nil {
		a.client.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("closing redis", logger.ErrorFields("close", err))
		}
	}
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdown(ctx); err != nil {
			a.log.Warn("flushing telemetry", logger.ErrorFields("shutdown", err))
		}
	}
}
