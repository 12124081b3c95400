package web

import (
	"crypto/tls"
	"sync"

	"github.com/charmbracelet/log"
)

// CertReloader serves a TLS certificate that can be swapped at runtime.
type CertReloader struct {
	certMu   sync.RWMutex
	cert     *tls.Certificate
	certPath string
	keyPath  string
	logger   *log.Logger
}

// NewCertReloader loads the certificate and key and reloads them whenever
// the process receives SIGHUP, on platforms that have it.
func NewCertReloader(certPath, keyPath string, logger *log.Logger) (*CertReloader, error) {
	cr := &CertReloader{
		certPath: certPath,
		keyPath:  keyPath,
		logger:   logger,
	}
	if err := cr.Reload(); err != nil {
		return nil, err
	}

	cr.watch()
	return cr, nil
}

// Reload reads the certificate and key from disk again. The old
// certificate is kept when loading fails.
func (cr *CertReloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(cr.certPath, cr.keyPath)
	if err != nil {
		return err //nolint:wrapcheck
	}

	cr.certMu.Lock()
	defer cr.certMu.Unlock()
	cr.cert = &cert
	return nil
}

// GetCertificateFunc returns a function that can be used with tls.Config.GetCertificate.
func (cr *CertReloader) GetCertificateFunc() func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
		cr.certMu.RLock()
		defer cr.certMu.RUnlock()
		return cr.cert, nil
	}
}
