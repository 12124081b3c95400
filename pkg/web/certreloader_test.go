package web

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matryer/is"
)

func generateTestCert(t *testing.T, certPath, keyPath, cn string) {
	t.Helper()
	is := is.New(t)

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	is.NoErr(err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject: pkix.Name{
			CommonName: cn,
		},
		NotBefore: time.Now(),
		NotAfter:  time.Now().Add(time.Hour),
	}

	certBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	is.NoErr(err)

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certBytes})
	is.NoErr(os.WriteFile(certPath, certPEM, 0o600))
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})
	is.NoErr(os.WriteFile(keyPath, keyPEM, 0o600))
}

func TestCertReloader(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")

	generateTestCert(t, certPath, keyPath, "cert-v1")

	cr, err := NewCertReloader(certPath, keyPath, log.New(os.Stderr))
	is.NoErr(err)
	getCert := cr.GetCertificateFunc()

	cert1, err := getCert(nil)
	is.NoErr(err)

	generateTestCert(t, certPath, keyPath, "cert-v2")
	is.NoErr(cr.Reload())

	cert2, err := getCert(nil)
	is.NoErr(err)
	is.True(cert1 != cert2)

	// A broken pair keeps the current certificate.
	is.NoErr(os.WriteFile(certPath, []byte("garbage"), 0o600))
	is.True(cr.Reload() != nil)
	cert3, err := getCert(nil)
	is.NoErr(err)
	is.True(cert3 == cert2)
}

func TestCertReloaderMissingFiles(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	_, err := NewCertReloader(filepath.Join(dir, "cert.pem"), filepath.Join(dir, "key.pem"), log.New(os.Stderr))
	is.True(err != nil)
}
