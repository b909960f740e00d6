package apiclient

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kbukum/apiclient/security"
	"github.com/kbukum/apiclient/validation"
)

// Config configures an API client. It is read-only once New returns.
type Config struct {
	// Domain is the remote host, without scheme or port.
	Domain string `yaml:"domain" mapstructure:"domain" validate:"required"`

	// Secure selects https and enables TLS.
	Secure bool `yaml:"secure" mapstructure:"secure"`

	// VerifyMode controls server certificate checks. Defaults to verify_peer.
	VerifyMode security.VerifyMode `yaml:"verify_mode" mapstructure:"verify_mode" validate:"omitempty,oneof=verify_peer verify_none"`

	// Port is appended to the endpoint when non-zero.
	Port int `yaml:"port" mapstructure:"port" validate:"min=0,max=65535"`

	// Username and Password enable basic auth when both are set.
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`

	// CAFile is a PEM bundle trusted instead of the system roots.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// Timeout bounds a whole request. Zero leaves requests bounded only by
	// their context.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// OnSetupRequest runs on every request after auth is applied.
	OnSetupRequest RequestHook `yaml:"-" mapstructure:"-"`

	// ConfigureTransport receives the transport once, at construction.
	ConfigureTransport func(*http.Transport) `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.VerifyMode == "" {
		c.VerifyMode = security.VerifyPeer
	}
}

// Validate checks that the configuration is usable. Only structural
// problems are reported; a username without a password simply disables auth.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

// Endpoint returns scheme://domain[:port].
func (c *Config) Endpoint() string {
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}
	endpoint := scheme + "://" + c.Domain
	if c.Port != 0 {
		endpoint += ":" + strconv.Itoa(c.Port)
	}
	return endpoint
}

func (c *Config) tlsConfig() *security.TLSConfig {
	return &security.TLSConfig{
		CAFile:     c.CAFile,
		VerifyMode: c.VerifyMode,
	}
}
