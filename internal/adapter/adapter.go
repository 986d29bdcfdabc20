package adapter

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// A MakeTLSConfig returns [*tls.Config] trusting the CA at caFile.
//
// All args are the filepaths. The client certificate is loaded only when
// both certFile and keyFile are set.
func MakeTLSConfig(caFile, certFile, keyFile string) (*tls.Config, error) {
	const op = "adapter.MakeTLSConfig"

	if caFile == "" {
		return nil, fmt.Errorf("%s: CA certificate file is required", op)
	}
	if (certFile == "") != (keyFile == "") {
		return nil, fmt.Errorf("%s: certificate and key files go together", op)
	}

	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read CA certificate file: %w", op, err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("%s: %w", op, errors.New("failed to parse CA certificate"))
	}

	cfg := &tls.Config{
		RootCAs:    caCertPool,
		MinVersion: tls.VersionTLS12,
	}

	if certFile != "" {
		clientCert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		cfg.Certificates = []tls.Certificate{clientCert}
	}
	return cfg, nil
}
