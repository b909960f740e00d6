package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	"github.com/kbukum/apiclient/apiclient"
	"github.com/kbukum/apiclient/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type upstream struct {
	srv  *httptest.Server
	hits atomic.Int32
	host string
	port string
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		u.hits.Add(1)
		c.Next()
	})
	r.GET("/users", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": c.Query("page"), "users": []gin.H{{"id": 1}}})
	})
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.GET("/missing", func(c *gin.Context) {
		c.String(http.StatusNotFound, "<h1>nope</h1>")
	})
	r.POST("/items", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"name": c.PostForm("name"), "tags": c.PostFormArray("tags[]")})
	})

	u.srv = httptest.NewServer(r)
	t.Cleanup(u.srv.Close)
	parsed, _ := url.Parse(u.srv.URL)
	u.host, u.port = parsed.Hostname(), parsed.Port()
	return u
}

func (u *upstream) args(args ...string) []string {
	return append(args, "--domain", u.host, "--port", u.port)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cfg := writeConfig(t, "name: apiclient\nenvironment: production\n")
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--config", cfg))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGet_JSON(t *testing.T) {
	u := newUpstream(t)
	stdout, stderr, err := run(t, u.args("get", "/users", "page=2")...)
	if err != nil {
		t.Fatalf("get: %v (stderr: %s)", err, stderr)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("expected JSON output, got %q", stdout)
	}
	if got["page"] != "2" {
		t.Errorf("expected page=2 echoed, got %v", got)
	}
	if !strings.Contains(stdout, "\n  ") {
		t.Errorf("expected indented output, got %q", stdout)
	}
	if !strings.Contains(stderr, "<- (GET ") || !strings.Contains(stderr, "-> (GET ") {
		t.Errorf("expected request log lines on stderr, got %q", stderr)
	}
}

func TestGet_Text(t *testing.T) {
	u := newUpstream(t)
	stdout, _, err := run(t, u.args("get", "ping")...)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stdout != "pong\n" {
		t.Errorf("expected raw text, got %q", stdout)
	}
}

func TestGet_StatusError(t *testing.T) {
	u := newUpstream(t)
	_, _, err := run(t, u.args("get", "/missing")...)
	if !apiclient.IsStatus(err) {
		t.Fatalf("expected status error, got %v", err)
	}
	if code := exitCode(err); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
}

func TestGet_Cache(t *testing.T) {
	u := newUpstream(t)
	mini := miniredis.RunT(t)

	var outputs []string
	for i := 0; i < 2; i++ {
		stdout, stderr, err := run(t, u.args("get", "/users", "--cache-id", "users", "--ttl", "1m", "--redis-addr", mini.Addr())...)
		if err != nil {
			t.Fatalf("get #%d: %v (stderr: %s)", i, err, stderr)
		}
		outputs = append(outputs, stdout)
	}

	if got := u.hits.Load(); got != 1 {
		t.Errorf("expected one upstream request, got %d", got)
	}
	if outputs[0] != outputs[1] {
		t.Errorf("cached output differs:\n%s\n%s", outputs[0], outputs[1])
	}
	if !mini.Exists("users") {
		t.Fatal("expected cache entry in redis")
	}
	if ttl := mini.TTL("users"); ttl != time.Minute {
		t.Errorf("expected 1m ttl, got %v", ttl)
	}
}

func TestGet_CacheWithoutRedis(t *testing.T) {
	u := newUpstream(t)
	_, _, err := run(t, u.args("get", "/users", "--cache-id", "users")...)
	if !apiclient.IsCache(err) {
		t.Errorf("expected cache error, got %v", err)
	}
}

func TestPost(t *testing.T) {
	u := newUpstream(t)
	stdout, _, err := run(t, u.args("post", "/items", "name=widget", "tags[]=a", "tags[]=b")...)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("expected JSON output, got %q", stdout)
	}
	if got["name"] != "widget" || !reflect.DeepEqual(got["tags"], []any{"a", "b"}) {
		t.Errorf("unexpected echo %v", got)
	}
}

func TestTransportErrorExitCode(t *testing.T) {
	u := newUpstream(t)
	u.srv.Close()
	_, _, err := run(t, u.args("get", "/ping")...)
	if !apiclient.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if code := exitCode(err); code != 3 {
		t.Errorf("expected exit code 3, got %d", code)
	}
}

func TestMissingDomain(t *testing.T) {
	_, _, err := run(t, "get", "/users")
	if err == nil || !strings.Contains(err.Error(), "domain") {
		t.Errorf("expected domain validation error, got %v", err)
	}
	if code := exitCode(err); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version", "--json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("expected JSON, got %q", stdout)
	}
	if info["version"] == "" || info["version"] == nil {
		t.Errorf("expected version field, got %v", info)
	}

	stdout, _, err = run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(stdout, "apiclient ") {
		t.Errorf("unexpected version output %q", stdout)
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
name: apiclient
environment: production
client:
  domain: file.example.com
  port: 80
  username: file-user
  password: file-pass
`)
	flags := &globalFlags{
		configFile:         path,
		domain:             "flag.example.com",
		port:               9000,
		insecureSkipVerify: true,
		redisAddr:          "localhost:6380",
	}
	set := map[string]bool{"domain": true, "insecure-skip-verify": true}
	cfg, err := loadConfig(flags, func(name string) bool { return set[name] })
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Client.Domain != "flag.example.com" {
		t.Errorf("expected flag to win, got %q", cfg.Client.Domain)
	}
	if cfg.Client.Port != 80 {
		t.Errorf("unset flag must not override, got %d", cfg.Client.Port)
	}
	if cfg.Client.Username != "file-user" {
		t.Errorf("expected file credentials kept, got %q", cfg.Client.Username)
	}
	if cfg.Client.VerifyMode != security.VerifyNone {
		t.Errorf("expected verify_none, got %q", cfg.Client.VerifyMode)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "localhost:6380" {
		t.Errorf("expected redis enabled from flag, got %+v", cfg.Redis)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("expected logs on stderr, got %q", cfg.Logging.Output)
	}
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    map[string]any
		wantErr bool
	}{
		{"empty", nil, map[string]any{}, false},
		{"pairs", []string{"a=1", "b=x=y"}, map[string]any{"a": "1", "b": "x=y"}, false},
		{"bare key", []string{"flag"}, map[string]any{"flag": nil}, false},
		{"list suffix", []string{"t[]=a", "t[]=b"}, map[string]any{"t": []any{"a", "b"}}, false},
		{"repeated key", []string{"k=1", "k=2", "k=3"}, map[string]any{"k": []any{"1", "2", "3"}}, false},
		{"scalar then list suffix", []string{"a=1", "a[]=2"}, map[string]any{"a": []any{"1", "2"}}, false},
		{"empty key", []string{"=v"}, nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseParams(tc.args)
			if (err != nil) != tc.wantErr {
				t.Fatalf("parseParams() error = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && !reflect.DeepEqual(got, tc.want) {
				t.Errorf("parseParams() = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	if exitCode(nil) != 0 {
		t.Error("nil error must exit 0")
	}
	if exitCode(errors.New("x")) != 1 {
		t.Error("plain error must exit 1")
	}
}
