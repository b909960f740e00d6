package apiclient

import (
	"fmt"
	"net/http"

	"github.com/go-viper/mapstructure/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/apiclient/observability"
)

// Option configures optional client capabilities.
type Option func(*Client)

// WithCache sets the store used by Cache and CacheAs.
func WithCache(store Store) Option {
	return func(c *Client) { c.cache = store }
}

// WithLogger sets the sink for request log lines.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics records request, cache and error metrics on m.
func WithMetrics(m *observability.ClientMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer replaces the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// Options-bag keys that carry functions rather than data.
const (
	optionOnSetupRequest = "on_setup_request"
	optionHTTPBlock      = "http_block"
)

// NewWithOptions builds a client from a loosely typed options map, as read
// from a config file or assembled by a caller. Recognised keys are secure,
// verify_mode, port, username, password, ca_file, timeout, on_setup_request
// and http_block; anything else is ignored. Values are weakly typed, so
// "8443" is accepted for port and "30s" for timeout.
func NewWithOptions(domain string, options map[string]any, opts ...Option) (*Client, error) {
	cfg := Config{Domain: domain}

	data := make(map[string]any, len(options))
	for k, v := range options {
		switch k {
		case optionOnSetupRequest:
			hook, err := asRequestHook(v)
			if err != nil {
				return nil, err
			}
			cfg.OnSetupRequest = hook
		case optionHTTPBlock:
			hook, err := asTransportHook(v)
			if err != nil {
				return nil, err
			}
			cfg.ConfigureTransport = hook
		default:
			data[k] = v
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("apiclient: options decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("apiclient: decode options: %w", err)
	}
	// domain is positional and wins over a stray "domain" key
	cfg.Domain = domain

	return New(cfg, opts...)
}

func asRequestHook(v any) (RequestHook, error) {
	switch fn := v.(type) {
	case nil:
		return nil, nil
	case RequestHook:
		return fn, nil
	case func(*http.Request):
		return fn, nil
	default:
		return nil, fmt.Errorf("apiclient: %s must be func(*http.Request), got %T", optionOnSetupRequest, v)
	}
}

func asTransportHook(v any) (func(*http.Transport), error) {
	switch fn := v.(type) {
	case nil:
		return nil, nil
	case func(*http.Transport):
		return fn, nil
	default:
		return nil, fmt.Errorf("apiclient: %s must be func(*http.Transport), got %T", optionHTTPBlock, v)
	}
}
