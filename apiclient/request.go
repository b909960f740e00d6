package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kbukum/apiclient/version"
)

// RequestHook adjusts an outgoing request just before it is sent.
type RequestHook func(*http.Request)

// Response is the raw result of a round trip.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Message is the status text, e.g. "Not Found".
	Message string
	// Headers are the response headers.
	Headers map[string]string
	// Body is the full response body.
	Body []byte
	// Elapsed is the time spent sending the request and reading the body.
	Elapsed time.Duration
	// RequestID identifies the request in log lines.
	RequestID string
}

// buildRequest creates the request for uri, applies basic auth, the
// configured OnSetupRequest hook, then hooks in order.
func (c *Client) buildRequest(ctx context.Context, method string, uri *url.URL, hooks []RequestHook) (*http.Request, error) {
	switch method {
	case http.MethodGet, http.MethodPost:
	default:
		return nil, &Error{Code: ErrCodeRequest, Message: fmt.Sprintf("unsupported method %q", method)}
	}
	if uri == nil {
		return nil, &Error{Code: ErrCodeURI, Message: "nil uri"}
	}

	req, err := http.NewRequestWithContext(ctx, method, uri.String(), nil)
	if err != nil {
		return nil, newError(ErrCodeURI, err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	applyBasicAuth(req, c.config.Username, c.config.Password)

	if c.config.OnSetupRequest != nil {
		c.config.OnSetupRequest(req)
	}
	for _, hook := range hooks {
		if hook != nil {
			hook(req)
		}
	}
	return req, nil
}

// FormBody returns a hook that sends data as an
// application/x-www-form-urlencoded body.
func FormBody(data map[string]any) RequestHook {
	encoded := EncodeNestedQuery(data)
	return func(req *http.Request) {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if encoded == "" {
			req.Body = http.NoBody
			req.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
			req.ContentLength = 0
			return
		}
		req.Body = io.NopCloser(strings.NewReader(encoded))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(encoded)), nil
		}
		req.ContentLength = int64(len(encoded))
	}
}

// statusMessage strips the numeric code from resp.Status.
func statusMessage(resp *http.Response) string {
	msg := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode)))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return msg
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
