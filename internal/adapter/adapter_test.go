package adapter_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/niksmo/ecom-admin/internal/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSelfSigned(t *testing.T, dir string) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "ecom-admin test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certFile,
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile,
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certFile, keyFile
}

func TestMakeTLSConfig(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeSelfSigned(t, dir)

	t.Run("CAOnly", func(t *testing.T) {
		cfg, err := adapter.MakeTLSConfig(certFile, "", "")
		require.NoError(t, err)
		assert.NotNil(t, cfg.RootCAs)
		assert.Empty(t, cfg.Certificates)
	})

	t.Run("ClientCert", func(t *testing.T) {
		cfg, err := adapter.MakeTLSConfig(certFile, certFile, keyFile)
		require.NoError(t, err)
		assert.Len(t, cfg.Certificates, 1)
	})

	t.Run("NoCA", func(t *testing.T) {
		_, err := adapter.MakeTLSConfig("", certFile, keyFile)
		assert.Error(t, err)
	})

	t.Run("KeyWithoutCert", func(t *testing.T) {
		_, err := adapter.MakeTLSConfig(certFile, "", keyFile)
		assert.Error(t, err)
	})

	t.Run("NotPEM", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.pem")
		require.NoError(t, os.WriteFile(bad, []byte("not a certificate"), 0o600))
		_, err := adapter.MakeTLSConfig(bad, "", "")
		assert.Error(t, err)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := adapter.MakeTLSConfig(filepath.Join(dir, "nope.pem"), "", "")
		assert.Error(t, err)
	})
}
