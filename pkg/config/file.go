package config

import (
	"bytes"
	"text/template"
)

var configFileTmpl = template.Must(template.New("config").Parse(`# Portal server configuration

# The name of the server.
# This is the name used in outgoing emails.
name: "{{ .Name }}"

# Logging configuration.
log:
  # Log format to use. Valid values are "json", "logfmt", and "text".
  format: "{{ .Log.Format }}"
  # Time format for the log "timestamp" field.
  # Should be described in Golang's time format.
  time_format: "{{ .Log.TimeFormat }}"
  # Path to the log file. Leave empty to write to stderr.
  #path: "{{ .Log.Path }}"

# The HTTP server configuration.
http:
  # The address on which the HTTP server will listen.
  listen_addr: "{{ .HTTP.ListenAddr }}"

  # The path to the TLS private key.
  tls_key_path: "{{ .HTTP.TLSKeyPath }}"

  # The path to the TLS certificate.
  tls_cert_path: "{{ .HTTP.TLSCertPath }}"

  # The public URL of the HTTP server.
  # Magic links and customer portal links point here.
  # Make sure to use https:// if you are using TLS.
  public_url: "{{ .HTTP.PublicURL }}"

  # Cross-origin resource sharing.
  cors:
    allowed_headers: {{ range .HTTP.CORS.AllowedHeaders }}
      - "{{ . }}"{{ end }}
    allowed_origins: {{ range .HTTP.CORS.AllowedOrigins }}
      - "{{ . }}"{{ end }}
    allowed_methods: {{ range .HTTP.CORS.AllowedMethods }}
      - "{{ . }}"{{ end }}

# The stats server configuration.
stats:
  # Whether to serve Prometheus metrics.
  enabled: {{ .Stats.Enabled }}

  # The address on which the stats server will listen.
  listen_addr: "{{ .Stats.ListenAddr }}"

# The database configuration.
db:
  # The database driver to use.
  # Valid values are "sqlite" and "postgres".
  driver: "{{ .DB.Driver }}"
  # The database data source name.
  # This is driver specific and can be a file path or connection string.
  # Make sure foreign key support is enabled when using SQLite.
  data_source: "{{ .DB.DataSource }}"

# Attachment storage.
storage:
  # Directory attachments are written to, relative to the data path.
  path: "{{ .Storage.Path }}"
  # Maximum attachment size in bytes.
  max_upload_size: {{ .Storage.MaxUploadSize }}
  # Glob patterns of accepted content types.
  allowed_types: {{ range .Storage.AllowedTypes }}
    - "{{ . }}"{{ end }}

# Redis connection, used by the redis cache and realtime drivers.
redis:
  addr: "{{ .Redis.Addr }}"
  db: {{ .Redis.DB }}

# Session and lookup cache.
cache:
  # Valid values are "lru" and "redis".
  driver: "{{ .Cache.Driver }}"
  size: {{ .Cache.Size }}
  ttl: "{{ .Cache.TTL }}"

# Board change notifications.
realtime:
  # Valid values are "memory" and "redis".
  # Use "redis" when running more than one instance.
  driver: "{{ .Realtime.Driver }}"
  channel: "{{ .Realtime.Channel }}"

# Authentication.
auth:
  # How long a magic link stays valid.
  magic_link_ttl: "{{ .Auth.MagicLinkTTL }}"
  # How long a session stays valid.
  session_ttl: "{{ .Auth.SessionTTL }}"
  # The Ed25519 key used to sign session tokens.
  key_path: "{{ .Auth.KeyPath }}"
  # Only send the session cookie over HTTPS.
  cookie_secure: {{ .Auth.CookieSecure }}

# Outgoing mail.
mail:
  # Valid values are "smtp" and "log".
  driver: "{{ .Mail.Driver }}"
  host: "{{ .Mail.Host }}"
  port: {{ .Mail.Port }}
  username: "{{ .Mail.Username }}"
  #password: ""
  from: "{{ .Mail.From }}"

# Cron job configuration.
jobs:
  # Removes expired magic links and sessions.
  cleanup: "{{ .Jobs.Cleanup }}"
`))

func newConfigFile(cfg *Config) string {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var b bytes.Buffer
	configFileTmpl.Execute(&b, cfg) // nolint: errcheck

	return b.String()
}
