package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// VerifyMode selects how the remote certificate is checked.
type VerifyMode string

const (
	// VerifyPeer validates the server certificate against the trusted CAs.
	VerifyPeer VerifyMode = "verify_peer"
	// VerifyNone accepts any server certificate.
	// Not recommended for production.
	VerifyNone VerifyMode = "verify_none"
)

// Valid reports whether m is a known mode. The empty mode counts as VerifyPeer.
func (m VerifyMode) Valid() bool {
	return m == "" || m == VerifyPeer || m == VerifyNone
}

// TLSConfig holds the client-side TLS settings.
type TLSConfig struct {
	// CAFile is the path to a PEM bundle used instead of the system roots.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// VerifyMode defaults to VerifyPeer.
	VerifyMode VerifyMode `yaml:"verify_mode" mapstructure:"verify_mode"`

	// ServerName overrides the name checked against the certificate.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`

	// MinVersion defaults to TLS 1.2.
	MinVersion uint16 `yaml:"min_version" mapstructure:"min_version"`
}

// Build creates a *tls.Config from the configuration.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if c == nil {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	minVersion := c.MinVersion
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}

	cfg := &tls.Config{
		InsecureSkipVerify: c.VerifyMode == VerifyNone,
		ServerName:         c.ServerName,
		MinVersion:         minVersion,
	}

	if err := c.loadCA(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the TLS configuration is consistent.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if !c.VerifyMode.Valid() {
		return fmt.Errorf("security/tls: unknown verify_mode %q", c.VerifyMode)
	}
	return nil
}

// loadCA loads the CA bundle into the TLS config.
func (c *TLSConfig) loadCA(cfg *tls.Config) error {
	if c.CAFile == "" {
		return nil
	}
	ca, err := os.ReadFile(c.CAFile)
	if err != nil {
		return fmt.Errorf("security/tls: failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(ca) {
		return fmt.Errorf("security/tls: failed to parse CA certificate")
	}
	cfg.RootCAs = pool
	return nil
}
