package security

import (
	"crypto/tls"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/kbukum/apiclient/security/tlstest"
)

func TestTLSConfig_Build_Nil(t *testing.T) {
	var cfg *TLSConfig
	got, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil tls.Config for nil TLSConfig")
	}
}

func TestTLSConfig_Build_Defaults(t *testing.T) {
	cfg := &TLSConfig{}
	got, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.InsecureSkipVerify {
		t.Error("zero verify mode must verify the peer")
	}
	if got.MinVersion != tls.VersionTLS12 {
		t.Errorf("expected TLS 1.2 minimum, got %x", got.MinVersion)
	}
	if got.RootCAs != nil {
		t.Error("expected system roots when no CA file is set")
	}
}

func TestTLSConfig_Build_VerifyModes(t *testing.T) {
	tests := []struct {
		mode     VerifyMode
		insecure bool
	}{
		{VerifyPeer, false},
		{VerifyNone, true},
	}
	for _, tc := range tests {
		t.Run(string(tc.mode), func(t *testing.T) {
			got, err := (&TLSConfig{VerifyMode: tc.mode}).Build()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.InsecureSkipVerify != tc.insecure {
				t.Errorf("InsecureSkipVerify = %v, want %v", got.InsecureSkipVerify, tc.insecure)
			}
		})
	}
}

func TestTLSConfig_Build_UnknownVerifyMode(t *testing.T) {
	if _, err := (&TLSConfig{VerifyMode: "sometimes"}).Build(); err == nil {
		t.Fatal("expected error for unknown verify mode")
	}
}

func TestTLSConfig_Build_ValidCA(t *testing.T) {
	certs := tlstest.Generate(t)
	got, err := (&TLSConfig{CAFile: certs.CAFile}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RootCAs == nil {
		t.Fatal("expected RootCAs to be populated")
	}
}

func TestTLSConfig_Build_MissingCAFile(t *testing.T) {
	cfg := &TLSConfig{CAFile: filepath.Join(t.TempDir(), "missing.pem")}
	if _, err := cfg.Build(); err == nil {
		t.Fatal("expected error for missing CA file")
	}
}

func TestTLSConfig_Build_InvalidCAContent(t *testing.T) {
	cfg := &TLSConfig{CAFile: tlstest.WriteInvalidPEM(t)}
	if _, err := cfg.Build(); err == nil {
		t.Fatal("expected error for invalid CA content")
	}
}

func TestTLSConfig_HandshakeAgainstGeneratedCA(t *testing.T) {
	certs := tlstest.Generate(t)
	srv := certs.NewServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tlsCfg, err := (&TLSConfig{CAFile: certs.CAFile}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client := &http.Client{Transport: &http.Transport{TLSClientConfig: tlsCfg}}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("handshake failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
}
