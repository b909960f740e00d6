package apiclient

import (
	"net"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newUpstream returns a gin engine for the fake remote API.
func newUpstream() *gin.Engine {
	return gin.New()
}

// serve starts a plain HTTP server for r, closed when the test ends.
func serve(t *testing.T, r *gin.Engine) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// configFor points a Config at a test server.
func configFor(t *testing.T, serverURL string) Config {
	t.Helper()
	u, err := url.Parse(serverURL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split host: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return Config{
		Domain: host,
		Port:   port,
		Secure: u.Scheme == "https",
	}
}

func newClientFor(t *testing.T, serverURL string, mutate func(*Config), opts ...Option) *Client {
	t.Helper()
	cfg := configFor(t, serverURL)
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

// captureLogger records log lines.
type captureLogger struct {
	mu     sync.Mutex
	infos  []string
	debugs []string
}

func (l *captureLogger) Info(msg string, _ ...map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *captureLogger) Debug(msg string, _ ...map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugs = append(l.debugs, msg)
}

func (l *captureLogger) lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.infos...)
}
