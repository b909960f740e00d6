// Package security builds the TLS client configuration used when an
// apiclient is marked secure.
//
//	cfg := security.TLSConfig{
//	    CAFile:     "/etc/ssl/partner-ca.pem",
//	    VerifyMode: security.VerifyPeer,
//	}
//	tlsConfig, err := cfg.Build()
//
// The tlstest subpackage generates throwaway certificate authorities for
// tests.
package security
