package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/printnow/portal/pkg/config"
)

func TestGoodNewLogger(t *testing.T) {
	for _, c := range []*config.Config{
		config.DefaultConfig(),
		{},
		{Log: config.LogConfig{Path: filepath.Join(t.TempDir(), "logs", "portal.log")}},
	} {
		_, f, err := NewLogger(c)
		if err != nil {
			t.Errorf("NewLogger(%v) => _, _, %v, want _, _, nil", c, err)
		}
		if f != nil {
			f.Close()
		}
	}
}

func TestBadNewLogger(t *testing.T) {
	for _, c := range []*config.Config{
		nil,
		{Log: config.LogConfig{Path: "\x00"}},
	} {
		_, f, err := NewLogger(c)
		if err == nil {
			t.Errorf("NewLogger(%v) => _, _, nil, want error", c)
		}
		if f != nil {
			f.Close()
		}
	}
}

func TestJSONLogFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "portal.log")
	logger, f, err := NewLogger(&config.Config{Log: config.LogConfig{Format: "json", Path: path}})
	is.NoErr(err)
	logger.Info("board created", "board", 1)
	is.NoErr(f.Close())

	bts, err := os.ReadFile(path)
	is.NoErr(err)
	is.True(strings.Contains(string(bts), `"msg":"board created"`))
}
