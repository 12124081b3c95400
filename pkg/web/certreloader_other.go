//go:build !unix

package web

func (cr *CertReloader) watch() {}
