package apiclient

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/http2"

	"github.com/kbukum/apiclient/logger"
	"github.com/kbukum/apiclient/observability"
)

// Logger receives the informational request lines. *logger.Logger
// satisfies it.
type Logger interface {
	Info(msg string, fields ...map[string]interface{})
}

// Client talks to a single remote API endpoint. It is safe for concurrent
// use: configuration is fixed at construction and per-call hooks are passed
// as arguments.
type Client struct {
	httpClient *http.Client
	config     Config
	connID     string

	cache   Store
	log     Logger
	metrics *observability.ClientMetrics
	tracer  trace.Tracer
}

// New creates a client for cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("apiclient: %w", err)
	}

	transport, err := newTransport(&cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
			// 3xx is returned as is and classified like any other status
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		config: cfg,
		connID: strings.SplitN(uuid.NewString(), "-", 2)[0],
		tracer: observability.Tracer(observability.InstrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// newTransport builds a dedicated transport. When secure it carries the TLS
// settings and negotiates HTTP/2 over ALPN.
func newTransport(cfg *Config) (*http.Transport, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if cfg.Secure {
		tlsCfg, err := cfg.tlsConfig().Build()
		if err != nil {
			return nil, fmt.Errorf("apiclient: %w", err)
		}
		transport.TLSClientConfig = tlsCfg
		if _, err := http2.ConfigureTransports(transport); err != nil {
			return nil, fmt.Errorf("apiclient: configure http2: %w", err)
		}
	}

	if cfg.ConfigureTransport != nil {
		cfg.ConfigureTransport(transport)
	}
	return transport, nil
}

// Secure reports whether the client was configured for https.
func (c *Client) Secure() bool {
	return c.config.Secure
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Get issues a GET for path with query encoded as a nested query string and
// returns the decoded body.
func (c *Client) Get(ctx context.Context, path string, query map[string]any, hooks ...RequestHook) (*Body, error) {
	uri, err := c.BuildURI(path, query)
	if err != nil {
		return nil, c.countError(ctx, err)
	}
	return c.apiResponseFor(ctx, http.MethodGet, uri, hooks...)
}

// Post issues a POST for path with form sent as a form-encoded body and
// returns the decoded body. The configured OnSetupRequest still runs, before
// the form body is set and before any hooks passed here.
func (c *Client) Post(ctx context.Context, path string, form map[string]any, hooks ...RequestHook) (*Body, error) {
	uri, err := c.BuildURI(path, nil)
	if err != nil {
		return nil, c.countError(ctx, err)
	}
	return c.apiResponseFor(ctx, http.MethodPost, uri, append([]RequestHook{FormBody(form)}, hooks...)...)
}

// apiResponseFor sends the request, rejects statuses outside [200, 210] and
// decodes the body.
func (c *Client) apiResponseFor(ctx context.Context, method string, uri *url.URL, hooks ...RequestHook) (*Body, error) {
	resp, err := c.Do(ctx, method, uri, hooks...)
	if err != nil {
		return nil, err
	}
	if !IsSuccess(resp.StatusCode) {
		return nil, c.countError(ctx, NewStatusError(resp.StatusCode, resp.Body))
	}
	body, err := Decode(resp.Body)
	if err != nil {
		return nil, c.countError(ctx, err)
	}
	return body, nil
}

// Do sends a GET or POST to uri and returns the raw response without
// looking at the status code. Hooks run after the configured OnSetupRequest.
func (c *Client) Do(ctx context.Context, method string, uri *url.URL, hooks ...RequestHook) (*Response, error) {
	req, err := c.buildRequest(ctx, method, uri, hooks)
	if err != nil {
		return nil, c.countError(ctx, err)
	}

	requestID := uuid.NewString()
	prefix := fmt.Sprintf("%s %s %s", method, requestID, c.connID)

	ctx, span := c.tracer.Start(ctx, observability.SpanRequest,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(observability.AttrMethod, method),
			attribute.String(observability.AttrURL, uri.String()),
			attribute.String(observability.AttrRequestID, requestID),
		),
	)
	defer span.End()
	req = req.WithContext(ctx)

	c.logInfo(fmt.Sprintf("<- (%s) %s", prefix, uri), logger.Fields(
		logger.FieldMethod, method,
		logger.FieldRequestID, requestID,
		logger.FieldConnectionID, c.connID,
		logger.FieldURI, uri.String(),
	))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordRequest(ctx, method, 0, time.Since(start))
		return nil, c.fail(ctx, span, newError(ErrCodeTransport, err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.RecordRequest(ctx, method, resp.StatusCode, elapsed)
		return nil, c.fail(ctx, span, newError(ErrCodeTransport, fmt.Errorf("read response body: %w", err)))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Message:    statusMessage(resp),
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
		Elapsed:    elapsed,
		RequestID:  requestID,
	}

	c.logInfo(fmt.Sprintf("-> (%s) %s (%d bytes %.2fs)", prefix, result.Message, len(body), elapsed.Seconds()), logger.Fields(
		logger.FieldMethod, method,
		logger.FieldRequestID, requestID,
		logger.FieldConnectionID, c.connID,
		logger.FieldStatus, resp.StatusCode,
		logger.FieldBytes, len(body),
		logger.FieldDuration, elapsed.Milliseconds(),
	))

	span.SetAttributes(
		attribute.Int(observability.AttrStatusCode, resp.StatusCode),
		attribute.Int(observability.AttrBodySize, len(body)),
	)
	c.metrics.RecordRequest(ctx, method, resp.StatusCode, elapsed)
	return result, nil
}

func (c *Client) logInfo(msg string, fields map[string]interface{}) {
	if c.log == nil {
		return
	}
	c.log.Info(msg, fields)
}

// fail marks span as failed and counts err.
func (c *Client) fail(ctx context.Context, span trace.Span, err error) error {
	observability.SetSpanError(span, err)
	if e, ok := err.(*Error); ok {
		span.SetAttributes(attribute.String(observability.AttrErrorCode, e.Code.String()))
	}
	return c.countError(ctx, err)
}

// countError records err by code and returns it unchanged.
func (c *Client) countError(ctx context.Context, err error) error {
	if e, ok := err.(*Error); ok {
		c.metrics.RecordError(ctx, e.Code.String())
	}
	return err
}
