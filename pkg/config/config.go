package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// CORSConfig is the CORS configuration for the server.
type CORSConfig struct {
	AllowedHeaders []string `env:"ALLOWED_HEADERS" yaml:"allowed_headers"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" yaml:"allowed_origins"`

	AllowedMethods []string `env:"ALLOWED_METHODS" yaml:"allowed_methods"`
}

// HTTPConfig is the HTTP configuration for the server.
type HTTPConfig struct {
	// ListenAddr is the address on which the HTTP server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`

	// TLSKeyPath is the path to the TLS private key.
	TLSKeyPath string `env:"TLS_KEY_PATH" yaml:"tls_key_path"`

	// TLSCertPath is the path to the TLS certificate.
	TLSCertPath string `env:"TLS_CERT_PATH" yaml:"tls_cert_path"`

	// PublicURL is the public URL of the HTTP server.
	// Magic links and attachment URLs are built from it.
	PublicURL string `env:"PUBLIC_URL" yaml:"public_url"`

	// CORS holds the cross-origin settings for the API.
	CORS CORSConfig `envPrefix:"CORS_" yaml:"cors"`
}

// StatsConfig is the configuration for the stats server.
type StatsConfig struct {
	// Enabled is whether or not the stats server is enabled.
	Enabled bool `env:"ENABLED" yaml:"enabled"`

	// ListenAddr is the address on which the stats server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`
}

// LogConfig is the logger configuration.
type LogConfig struct {
	// Format is the format of the logs.
	// Valid values are "json", "logfmt", and "text".
	Format string `env:"FORMAT" yaml:"format"`

	// Time format for the log `ts` field.
	// Format must be described in Golang's time format.
	TimeFormat string `env:"TIME_FORMAT" yaml:"time_format"`

	// Path to a file to write logs to.
	// If not set, logs will be written to stderr.
	Path string `env:"PATH" yaml:"path"`
}

// DBConfig is the database connection configuration.
type DBConfig struct {
	// Driver is the driver for the database.
	// Valid values are "sqlite" and "postgres".
	Driver string `env:"DRIVER" yaml:"driver"`

	// DataSource is the database data source name.
	DataSource string `env:"DATA_SOURCE" yaml:"data_source"`
}

// StorageConfig is the attachment storage configuration.
type StorageConfig struct {
	// Path is the directory attachments are written to.
	Path string `env:"PATH" yaml:"path"`

	// MaxUploadSize is the maximum attachment size in bytes.
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" yaml:"max_upload_size"`

	// AllowedTypes is a list of glob patterns matched against the upload
	// content type, e.g. "image/*".
	AllowedTypes []string `env:"ALLOWED_TYPES" yaml:"allowed_types"`
}

// RedisConfig is the Redis connection configuration.
type RedisConfig struct {
	Addr string `env:"ADDR" yaml:"addr"`

	Password string `env:"PASSWORD" yaml:"password"`

	DB int `env:"DB" yaml:"db"`
}

// CacheConfig is the configuration for the session and lookup cache.
type CacheConfig struct {
	// Driver is one of "lru", "redis" or "noop".
	Driver string `env:"DRIVER" yaml:"driver"`

	// Size is the number of entries kept by the lru driver.
	Size int `env:"SIZE" yaml:"size"`

	// TTL is how long an entry stays cached.
	TTL time.Duration `env:"TTL" yaml:"ttl"`
}

// RealtimeConfig is the configuration for board change notifications.
type RealtimeConfig struct {
	// Driver is either "memory" or "redis".
	Driver string `env:"DRIVER" yaml:"driver"`

	// Channel is the Redis pub/sub channel used by the redis driver.
	Channel string `env:"CHANNEL" yaml:"channel"`
}

// AuthConfig is the authentication configuration.
type AuthConfig struct {
	// MagicLinkTTL is how long a magic link stays valid.
	MagicLinkTTL time.Duration `env:"MAGIC_LINK_TTL" yaml:"magic_link_ttl"`

	// SessionTTL is how long a session stays valid.
	SessionTTL time.Duration `env:"SESSION_TTL" yaml:"session_ttl"`

	// KeyPath is the path to the Ed25519 key used to sign session tokens.
	KeyPath string `env:"KEY_PATH" yaml:"key_path"`

	// CookieSecure marks the session cookie as HTTPS only.
	CookieSecure bool `env:"COOKIE_SECURE" yaml:"cookie_secure"`
}

// MailConfig is the outgoing mail configuration.
type MailConfig struct {
	// Driver is either "smtp" or "log". The log driver writes the message
	// to the server log instead of sending it.
	Driver string `env:"DRIVER" yaml:"driver"`

	Host string `env:"HOST" yaml:"host"`

	Port int `env:"PORT" yaml:"port"`

	Username string `env:"USERNAME" yaml:"username"`

	Password string `env:"PASSWORD" yaml:"password"`

	// From is the sender address.
	From string `env:"FROM" yaml:"from"`
}

// JobsConfig is the configuration for cron jobs.
type JobsConfig struct {
	// Cleanup is the schedule of the expired tokens and sessions cleanup.
	Cleanup string `env:"CLEANUP" yaml:"cleanup"`
}

// Config is the configuration for Portal.
type Config struct {
	// Name is the name of the server.
	Name string `env:"NAME" yaml:"name"`

	// HTTP is the configuration for the HTTP server.
	HTTP HTTPConfig `envPrefix:"HTTP_" yaml:"http"`

	// Stats is the configuration for the stats server.
	Stats StatsConfig `envPrefix:"STATS_" yaml:"stats"`

	// Log is the logger configuration.
	Log LogConfig `envPrefix:"LOG_" yaml:"log"`

	// DB is the database configuration.
	DB DBConfig `envPrefix:"DB_" yaml:"db"`

	// Storage is the attachment storage configuration.
	Storage StorageConfig `envPrefix:"STORAGE_" yaml:"storage"`

	// Redis is the Redis connection used by the redis cache and realtime drivers.
	Redis RedisConfig `envPrefix:"REDIS_" yaml:"redis"`

	// Cache is the cache configuration.
	Cache CacheConfig `envPrefix:"CACHE_" yaml:"cache"`

	// Realtime is the board change notifications configuration.
	Realtime RealtimeConfig `envPrefix:"REALTIME_" yaml:"realtime"`

	// Auth is the authentication configuration.
	Auth AuthConfig `envPrefix:"AUTH_" yaml:"auth"`

	// Mail is the outgoing mail configuration.
	Mail MailConfig `envPrefix:"MAIL_" yaml:"mail"`

	// Jobs is the configuration for cron jobs
	Jobs JobsConfig `envPrefix:"JOBS_" yaml:"jobs"`

	// DataPath is the path to the directory where Portal will store its data.
	DataPath string `env:"DATA_PATH" yaml:"-"`
}

// Environ returns the config as a list of environment variables.
func (c *Config) Environ() []string {
	envs := []string{}
	if c == nil {
		return envs
	}

	envs = append(envs, []string{
		fmt.Sprintf("PORTAL_DATA_PATH=%s", c.DataPath),
		fmt.Sprintf("PORTAL_NAME=%s", c.Name),
		fmt.Sprintf("PORTAL_HTTP_LISTEN_ADDR=%s", c.HTTP.ListenAddr),
		fmt.Sprintf("PORTAL_HTTP_TLS_KEY_PATH=%s", c.HTTP.TLSKeyPath),
		fmt.Sprintf("PORTAL_HTTP_TLS_CERT_PATH=%s", c.HTTP.TLSCertPath),
		fmt.Sprintf("PORTAL_HTTP_PUBLIC_URL=%s", c.HTTP.PublicURL),
		fmt.Sprintf("PORTAL_HTTP_CORS_ALLOWED_HEADERS=%s", strings.Join(c.HTTP.CORS.AllowedHeaders, ",")),
		fmt.Sprintf("PORTAL_HTTP_CORS_ALLOWED_ORIGINS=%s", strings.Join(c.HTTP.CORS.AllowedOrigins, ",")),
		fmt.Sprintf("PORTAL_HTTP_CORS_ALLOWED_METHODS=%s", strings.Join(c.HTTP.CORS.AllowedMethods, ",")),
		fmt.Sprintf("PORTAL_STATS_ENABLED=%t", c.Stats.Enabled),
		fmt.Sprintf("PORTAL_STATS_LISTEN_ADDR=%s", c.Stats.ListenAddr),
		fmt.Sprintf("PORTAL_LOG_FORMAT=%s", c.Log.Format),
		fmt.Sprintf("PORTAL_LOG_TIME_FORMAT=%s", c.Log.TimeFormat),
		fmt.Sprintf("PORTAL_LOG_PATH=%s", c.Log.Path),
		fmt.Sprintf("PORTAL_DB_DRIVER=%s", c.DB.Driver),
		fmt.Sprintf("PORTAL_DB_DATA_SOURCE=%s", c.DB.DataSource),
		fmt.Sprintf("PORTAL_STORAGE_PATH=%s", c.Storage.Path),
		fmt.Sprintf("PORTAL_STORAGE_MAX_UPLOAD_SIZE=%d", c.Storage.MaxUploadSize),
		fmt.Sprintf("PORTAL_STORAGE_ALLOWED_TYPES=%s", strings.Join(c.Storage.AllowedTypes, ",")),
		fmt.Sprintf("PORTAL_REDIS_ADDR=%s", c.Redis.Addr),
		fmt.Sprintf("PORTAL_REDIS_DB=%d", c.Redis.DB),
		fmt.Sprintf("PORTAL_CACHE_DRIVER=%s", c.Cache.Driver),
		fmt.Sprintf("PORTAL_CACHE_SIZE=%d", c.Cache.Size),
		fmt.Sprintf("PORTAL_CACHE_TTL=%s", c.Cache.TTL),
		fmt.Sprintf("PORTAL_REALTIME_DRIVER=%s", c.Realtime.Driver),
		fmt.Sprintf("PORTAL_REALTIME_CHANNEL=%s", c.Realtime.Channel),
		fmt.Sprintf("PORTAL_AUTH_MAGIC_LINK_TTL=%s", c.Auth.MagicLinkTTL),
		fmt.Sprintf("PORTAL_AUTH_SESSION_TTL=%s", c.Auth.SessionTTL),
		fmt.Sprintf("PORTAL_AUTH_KEY_PATH=%s", c.Auth.KeyPath),
		fmt.Sprintf("PORTAL_AUTH_COOKIE_SECURE=%t", c.Auth.CookieSecure),
		fmt.Sprintf("PORTAL_MAIL_DRIVER=%s", c.Mail.Driver),
		fmt.Sprintf("PORTAL_MAIL_HOST=%s", c.Mail.Host),
		fmt.Sprintf("PORTAL_MAIL_PORT=%d", c.Mail.Port),
		fmt.Sprintf("PORTAL_MAIL_FROM=%s", c.Mail.From),
		fmt.Sprintf("PORTAL_JOBS_CLEANUP=%s", c.Jobs.Cleanup),
	}...)

	return envs
}

// IsDebug returns true if the server is running in debug mode.
func IsDebug() bool {
	debug, _ := strconv.ParseBool(os.Getenv("PORTAL_DEBUG"))
	return debug
}

// IsVerbose returns true if the server is running in verbose mode.
// Verbose mode is only enabled if debug mode is enabled.
func IsVerbose() bool {
	verbose, _ := strconv.ParseBool(os.Getenv("PORTAL_VERBOSE"))
	return IsDebug() && verbose
}

// parseFile parses the given file as a configuration file.
// The file must be in YAML format.
func parseFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer f.Close() // nolint: errcheck
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	return cfg.Validate()
}

// ParseFile parses the config from the default file path.
// This also calls Validate() on the config.
func (c *Config) ParseFile() error {
	return parseFile(c, c.ConfigPath())
}

// parseEnv parses the environment variables as a configuration file.
func parseEnv(cfg *Config) error {
	// Origins from the config file are kept and extended by the environment.
	origins := append([]string{}, cfg.HTTP.CORS.AllowedOrigins...)

	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix: "PORTAL_",
	}); err != nil {
		return fmt.Errorf("parse environment variables: %w", err)
	}

	if os.Getenv("PORTAL_HTTP_CORS_ALLOWED_ORIGINS") != "" {
		cfg.HTTP.CORS.AllowedOrigins = mergeUnique(origins, cfg.HTTP.CORS.AllowedOrigins)
	}

	return cfg.Validate()
}

func mergeUnique(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(a, b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ParseEnv parses the config from the environment variables.
// This also calls Validate() on the config.
func (c *Config) ParseEnv() error {
	return parseEnv(c)
}

// Parse parses the config from the default file path and environment variables.
// This also calls Validate() on the config.
func (c *Config) Parse() error {
	if err := c.ParseFile(); err != nil {
		return err
	}

	return c.ParseEnv()
}

// writeConfig writes the configuration to the given file.
func writeConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(newConfigFile(cfg)), 0o600) // nolint: errcheck, gosec
}

// WriteConfig writes the configuration to the default file.
func (c *Config) WriteConfig() error {
	return writeConfig(c, c.ConfigPath())
}

// DefaultDataPath returns the path to the data directory.
// It uses the PORTAL_DATA_PATH environment variable if set, otherwise it
// uses "data".
func DefaultDataPath() string {
	dp := os.Getenv("PORTAL_DATA_PATH")
	if dp == "" {
		dp = "data"
	}

	return dp
}

// ConfigPath returns the path to the config file.
// PORTAL_CONFIG_LOCATION takes precedence when it points to an existing file.
func (c *Config) ConfigPath() string { // nolint:revive
	if path := os.Getenv("PORTAL_CONFIG_LOCATION"); exist(path) {
		return path
	}

	return filepath.Join(c.DataPath, "config.yaml")
}

func exist(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Exist returns true if the config file exists.
func (c *Config) Exist() bool {
	return exist(c.ConfigPath())
}

// DefaultConfig returns the default Config. All the path values are relative
// to the data directory.
// Use Validate() to validate the config and ensure absolute paths.
func DefaultConfig() *Config {
	cfg := &Config{
		Name:     "Portal",
		DataPath: DefaultDataPath(),
		HTTP: HTTPConfig{
			ListenAddr: ":8080",
			PublicURL:  "http://localhost:8080",
			CORS: CORSConfig{
				AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
				AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			},
		},
		Stats: StatsConfig{
			Enabled:    true,
			ListenAddr: "localhost:8081",
		},
		Log: LogConfig{
			Format:     "text",
			TimeFormat: time.DateTime,
		},
		DB: DBConfig{
			Driver: "sqlite",
			DataSource: "portal.db" +
				"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		},
		Storage: StorageConfig{
			Path:          "attachments",
			MaxUploadSize: 25 << 20,
			AllowedTypes:  []string{"*/*"},
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Cache: CacheConfig{
			Driver: "lru",
			Size:   1024,
			TTL:    5 * time.Minute,
		},
		Realtime: RealtimeConfig{
			Driver:  "memory",
			Channel: "portal:board-changes",
		},
		Auth: AuthConfig{
			MagicLinkTTL: 15 * time.Minute,
			SessionTTL:   30 * 24 * time.Hour,
			KeyPath:      filepath.Join("keys", "portal_ed25519"),
		},
		Mail: MailConfig{
			Driver: "log",
			Port:   587,
			From:   "Portal <no-reply@localhost>",
		},
		Jobs: JobsConfig{
			Cleanup: "@every 1h",
		},
	}
	cfg.HTTP.CORS.AllowedOrigins = []string{cfg.HTTP.PublicURL}

	return cfg
}

// Validate validates the configuration.
// It updates the configuration with absolute paths.
func (c *Config) Validate() error {
	// Use absolute paths
	if !filepath.IsAbs(c.DataPath) {
		dp, err := filepath.Abs(c.DataPath)
		if err != nil {
			return err
		}
		c.DataPath = dp
	}

	c.HTTP.PublicURL = strings.TrimSuffix(c.HTTP.PublicURL, "/")

	if c.HTTP.TLSKeyPath != "" && !filepath.IsAbs(c.HTTP.TLSKeyPath) {
		c.HTTP.TLSKeyPath = filepath.Join(c.DataPath, c.HTTP.TLSKeyPath)
	}

	if c.HTTP.TLSCertPath != "" && !filepath.IsAbs(c.HTTP.TLSCertPath) {
		c.HTTP.TLSCertPath = filepath.Join(c.DataPath, c.HTTP.TLSCertPath)
	}

	if strings.HasPrefix(c.DB.Driver, "sqlite") && !filepath.IsAbs(c.DB.DataSource) {
		c.DB.DataSource = filepath.Join(c.DataPath, c.DB.DataSource)
	}

	if c.Storage.Path != "" && !filepath.IsAbs(c.Storage.Path) {
		c.Storage.Path = filepath.Join(c.DataPath, c.Storage.Path)
	}

	if c.Auth.KeyPath != "" && !filepath.IsAbs(c.Auth.KeyPath) {
		c.Auth.KeyPath = filepath.Join(c.DataPath, c.Auth.KeyPath)
	}

	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid database driver: %q", c.DB.Driver)
	}

	switch c.Cache.Driver {
	case "", "lru", "noop", "redis":
	default:
		return fmt.Errorf("invalid cache driver: %q", c.Cache.Driver)
	}

	switch c.Realtime.Driver {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("invalid realtime driver: %q", c.Realtime.Driver)
	}

	switch c.Mail.Driver {
	case "", "log", "smtp":
	default:
		return fmt.Errorf("invalid mail driver: %q", c.Mail.Driver)
	}

	if c.Mail.Driver == "smtp" && c.Mail.Host == "" {
		return fmt.Errorf("mail host is required for the smtp driver")
	}

	return nil
}
