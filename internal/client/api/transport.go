package api

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
)

// TLSFiles points at optional PEM files for talking to the API over TLS.
type TLSFiles struct {
	// CAFile adds a CA to the system roots. Empty keeps the system roots only.
	CAFile string
	// CertFile and KeyFile enable a client certificate when both are set.
	CertFile string
	KeyFile  string
}

// NewHTTPClient builds the *http.Client used by Client. It sets no timeout:
// a request lasts until the response arrives or its context is cancelled.
func NewHTTPClient(files TLSFiles) (*http.Client, error) {
	if files.CAFile == "" && files.CertFile == "" && files.KeyFile == "" {
		return &http.Client{}, nil
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if files.CAFile != "" {
		caCert, err := os.ReadFile(files.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA cert")
		}
		tlsConfig.RootCAs = pool
	}

	if (files.CertFile == "") != (files.KeyFile == "") {
		return nil, errors.New("client cert and key must be given together")
	}
	if files.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(files.CertFile, files.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert/key: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	return &http.Client{Transport: transport}, nil
}
