package jwk

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/printnow/portal/pkg/config"
)

func TestBadNewPair(t *testing.T) {
	_, err := NewPair(nil)
	if !errors.Is(err, config.ErrNilConfig) {
		t.Errorf("NewPair(nil) => %v, want %v", err, config.ErrNilConfig)
	}
}

func TestGoodNewPair(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	cfg.Auth.KeyPath = filepath.Join(t.TempDir(), "portal_ed25519")
	p, err := NewPair(cfg)
	is.NoErr(err)
	is.Equal(p.JWK().Algorithm, "EdDSA")
	is.Equal(len(p.KeySet().Keys), 1)
	is.True(p.KeySet().Keys[0].IsPublic())
}
