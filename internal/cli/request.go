package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/apiclient/apiclient"
)

func newGetCmd(flags *globalFlags) *cobra.Command {
	var (
		cacheID string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "get PATH [key=value ...]",
		Short: "Send a GET request with the given query parameters",
		Long: `Send a GET request and print the decoded body.

Parameters become a nested query string: key[]=v repeats into an array and
a bare key is sent without a value. With --cache-id the decoded body is
stored in Redis and served from there until --ttl expires.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseParams(args[1:])
			if err != nil {
				return err
			}

			a, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			fetch := func(ctx context.Context) (any, error) {
				body, err := a.client.Get(ctx, args[0], query)
				if err != nil {
					return nil, err
				}
				return body.Value, nil
			}

			var value any
			if cacheID != "" {
				value, err = a.client.Cache(cmd.Context(), cacheID, ttl, fetch)
			} else {
				value, err = fetch(cmd.Context())
			}
			if err != nil {
				return err
			}
			return writeValue(cmd.OutOrStdout(), value)
		},
	}
	cmd.Flags().StringVar(&cacheID, "cache-id", "", "Cache the result under this id (requires Redis)")
	cmd.Flags().DurationVar(&ttl, "ttl", 5*time.Minute, "Cache entry lifetime")
	return cmd
}

func newPostCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "post PATH [key=value ...]",
		Short: "Send a form-encoded POST request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := parseParams(args[1:])
			if err != nil {
				return err
			}

			a, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			body, err := a.client.Post(cmd.Context(), args[0], form)
			if err != nil {
				return err
			}
			return writeValue(cmd.OutOrStdout(), body.Value)
		},
	}
}

// parseParams turns key=value arguments into request parameters.
// key[]=v appends to a list, a repeated key becomes a list and an
// argument without "=" is a bare key.
func parseParams(args []string) (map[string]any, error) {
	params := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, hasValue := strings.Cut(arg, "=")
		if key == "" {
			return nil, fmt.Errorf("invalid parameter %q: empty key", arg)
		}
		if !hasValue {
			params[key] = nil
			continue
		}

		if name, ok := strings.CutSuffix(key, "[]"); ok {
			switch existing := params[name].(type) {
			case nil:
				params[name] = []any{value}
			case []any:
				params[name] = append(existing, value)
			default:
				params[name] = []any{existing, value}
			}
			continue
		}
		switch existing := params[key].(type) {
		case nil:
			params[key] = value
		case []any:
			params[key] = append(existing, value)
		default:
			params[key] = []any{existing, value}
		}
	}
	return params, nil
}

// writeValue prints text as is and structured values as indented JSON.
func writeValue(w io.Writer, value any) error {
	if s, ok := value.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case apiclient.IsStatus(err):
		return 2
	case apiclient.IsTransport(err):
		return 3
	default:
		return 1
	}
}
