package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestCustomConfigLocation(t *testing.T) {
	is := is.New(t)
	td := t.TempDir()
	t.Cleanup(func() {
		is.NoErr(os.Unsetenv("PORTAL_CONFIG_LOCATION"))
		is.NoErr(os.Unsetenv("PORTAL_DATA_PATH"))
	})

	// Test that we get data from the custom file location, and not from the data dir.
	is.NoErr(os.Setenv("PORTAL_CONFIG_LOCATION", "testdata/config.yaml"))
	is.NoErr(os.Setenv("PORTAL_DATA_PATH", td))
	cfg := DefaultConfig()
	is.NoErr(cfg.Parse())
	is.Equal(cfg.Name, "Test server name")
	is.Equal(cfg.HTTP.PublicURL, "https://portal.example.com")
	is.Equal(cfg.DB.DataSource, filepath.Join(td, "test.db"))

	// If we unset the custom location, then use the default location.
	is.NoErr(os.Unsetenv("PORTAL_CONFIG_LOCATION"))
	cfg = DefaultConfig()
	is.Equal(cfg.ConfigPath(), filepath.Join(td, "config.yaml"))

	// A custom location that doesn't exist falls back to the data path.
	is.NoErr(os.Setenv("PORTAL_CONFIG_LOCATION", "testdata/config_nonexistent.yaml"))
	cfg = DefaultConfig()
	is.Equal(cfg.ConfigPath(), filepath.Join(td, "config.yaml"))
}

func TestWriteAndParseConfig(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	cfg.DataPath = t.TempDir()
	cfg.Name = "Acme Portal"
	cfg.Auth.MagicLinkTTL = 10 * time.Minute
	is.NoErr(cfg.WriteConfig())
	is.True(cfg.Exist())

	parsed := DefaultConfig()
	parsed.DataPath = cfg.DataPath
	is.NoErr(parsed.ParseFile())
	is.Equal(parsed.Name, "Acme Portal")
	is.Equal(parsed.Auth.MagicLinkTTL, 10*time.Minute)
	is.Equal(parsed.Storage.Path, filepath.Join(cfg.DataPath, "attachments"))
	is.Equal(parsed.Auth.KeyPath, filepath.Join(cfg.DataPath, "keys", "portal_ed25519"))
}

func TestParseMultipleHeaders(t *testing.T) {
	is := is.New(t)
	is.NoErr(os.Setenv("PORTAL_HTTP_CORS_ALLOWED_HEADERS", "Accept,Accept-Language,User-Agent"))
	t.Cleanup(func() {
		is.NoErr(os.Unsetenv("PORTAL_HTTP_CORS_ALLOWED_HEADERS"))
	})
	cfg := DefaultConfig()
	is.NoErr(cfg.ParseEnv())
	is.Equal(cfg.HTTP.CORS.AllowedHeaders, []string{
		"Accept",
		"Accept-Language",
		"User-Agent",
	})
}

func TestParseMultipleOrigins(t *testing.T) {
	is := is.New(t)
	is.NoErr(os.Setenv("PORTAL_HTTP_CORS_ALLOWED_ORIGINS", "http://example.com,https://example.com"))
	t.Cleanup(func() {
		is.NoErr(os.Unsetenv("PORTAL_HTTP_CORS_ALLOWED_ORIGINS"))
	})
	cfg := DefaultConfig()
	is.NoErr(cfg.ParseEnv())
	is.Equal(cfg.HTTP.CORS.AllowedOrigins, []string{
		"http://localhost:8080",
		"http://example.com",
		"https://example.com",
	})
}

func TestParseDurations(t *testing.T) {
	is := is.New(t)
	is.NoErr(os.Setenv("PORTAL_AUTH_SESSION_TTL", "48h"))
	t.Cleanup(func() {
		is.NoErr(os.Unsetenv("PORTAL_AUTH_SESSION_TTL"))
	})
	cfg := DefaultConfig()
	is.NoErr(cfg.ParseEnv())
	is.Equal(cfg.Auth.SessionTTL, 48*time.Hour)
}

func TestValidateDrivers(t *testing.T) {
	for name, mod := range map[string]func(*Config){
		"db":       func(c *Config) { c.DB.Driver = "mysql" },
		"cache":    func(c *Config) { c.Cache.Driver = "memcached" },
		"realtime": func(c *Config) { c.Realtime.Driver = "nats" },
		"mail":     func(c *Config) { c.Mail.Driver = "sendgrid" },
		"smtp":     func(c *Config) { c.Mail.Driver = "smtp" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mod(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() => nil, want error")
			}
		})
	}
}

func TestEnviron(t *testing.T) {
	is := is.New(t)
	is.Equal(len((*Config)(nil).Environ()), 0)
	envs := DefaultConfig().Environ()
	is.True(len(envs) > 0)
	is.Equal(envs[1], "PORTAL_NAME=Portal")
}
