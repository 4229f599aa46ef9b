package remote

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"

	"github.com/obsidianstack/creditmeter/server/internal/config"
)

// authRoundTripper injects authentication headers into every outgoing request.
type authRoundTripper struct {
	base http.RoundTripper
	auth config.AuthConfig
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	switch t.auth.Mode {
	case "apikey":
		req = req.Clone(req.Context())
		req.Header.Set(t.auth.Header, t.auth.Key())
	case "bearer":
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.auth.Token())
	case "basic":
		req = req.Clone(req.Context())
		req.SetBasicAuth(t.auth.Username, t.auth.Password())
	}
	return t.base.RoundTrip(req)
}

// buildHTTPClient constructs the pooled http.Client for the remote settings.
func buildHTTPClient(rc config.RemoteConfig) (*http.Client, error) {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: rc.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
	}

	if rc.Auth.Mode == "mtls" {
		cert, err := tls.LoadX509KeyPair(rc.Auth.CertFile, rc.Auth.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}

		if rc.Auth.CAFile != "" {
			caPEM, err := os.ReadFile(rc.Auth.CAFile)
			if err != nil {
				return nil, fmt.Errorf("read ca file: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(caPEM) {
				return nil, fmt.Errorf("no valid certs found in ca file %q", rc.Auth.CAFile)
			}
			tlsCfg.RootCAs = pool
		}
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	base.TLSClientConfig = tlsCfg
	// Report fan-out reuses connections to a single host.
	if base.MaxIdleConnsPerHost < rc.ReportConcurrency {
		base.MaxIdleConnsPerHost = rc.ReportConcurrency
	}

	return &http.Client{
		Transport: &authRoundTripper{base: base, auth: rc.Auth},
		Timeout:   rc.Timeout,
	}, nil
}
