package config

import (
	"errors"

	"github.com/charmbracelet/keygen"
)

var (
	// ErrNilConfig is returned when a nil config is passed to a function.
	ErrNilConfig = errors.New("nil config")

	// ErrEmptyKeyPath is returned when the auth key path is empty.
	ErrEmptyKeyPath = errors.New("empty auth key path")
)

// KeyPair returns the key pair used to sign session tokens. The key is
// created on first use.
func (c AuthConfig) KeyPair() (*keygen.SSHKeyPair, error) {
	if c.KeyPath == "" {
		return nil, ErrEmptyKeyPath
	}

	return keygen.New(c.KeyPath, keygen.WithKeyType(keygen.Ed25519), keygen.WithWrite())
}

// KeyPair returns the server's session signing key pair.
func KeyPair(cfg *Config) (*keygen.SSHKeyPair, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	return cfg.Auth.KeyPair()
}
