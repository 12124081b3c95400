//go:build unix

package web

import (
	"os"
	"os/signal"
	"syscall"
)

func (cr *CertReloader) watch() {
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGHUP)
		for range sigChan {
			cr.logger.Info("attempting to reload TLS certificate and key", "cert", cr.certPath, "key", cr.keyPath)
			if err := cr.Reload(); err != nil {
				cr.logger.Error("failed to reload TLS certificate, keeping old certificate", "err", err)
			}
		}
	}()
}
