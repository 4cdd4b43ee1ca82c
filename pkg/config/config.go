package config

import "time"

// Config is the root configuration structure for Spyglass. It contains
// all configuration sections for the HTTP server, the Ollama upstream,
// the user directory, the observer hub, the event journal, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS settings.
	Server ServerConfig `yaml:"server"`

	// Ollama contains configuration for the upstream LLM service.
	Ollama OllamaConfig `yaml:"ollama"`

	// Directory contains configuration for the user directory backend.
	Directory DirectoryConfig `yaml:"directory"`

	// Hub contains configuration for the observer broadcast hub.
	Hub HubConfig `yaml:"hub"`

	// Journal contains configuration for the optional event journal.
	Journal JournalConfig `yaml:"journal"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8000", "0.0.0.0:8000").
	// Default: "127.0.0.1:8000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response. It must be long enough to cover an Ollama generation.
	// Default: 120s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request on a
	// keep-alive connection. Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// MaxHeaderBytes limits the size of request headers. Default: 1 MiB
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// ShutdownTimeout is the grace period for in-flight requests during
	// shutdown. Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// CORS contains cross-origin resource sharing settings.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS settings for the HTTP server.
type CORSConfig struct {
	// Enabled enables CORS headers. Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists origins allowed to make cross-origin requests.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods lists allowed HTTP methods.
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders lists allowed request headers.
	AllowedHeaders []string `yaml:"allowed_headers"`

	// AllowCredentials allows cookies and authorization headers.
	AllowCredentials bool `yaml:"allow_credentials"`

	// MaxAge is how long preflight results may be cached, in seconds.
	MaxAge int `yaml:"max_age"`
}

// OllamaConfig contains configuration for the upstream Ollama service.
type OllamaConfig struct {
	// BaseURL is the base URL of the Ollama API.
	// Default: "http://localhost:11434"
	BaseURL string `yaml:"base_url"`

	// Model is the model name sent with generation requests.
	// Default: "llama2"
	Model string `yaml:"model"`

	// Timeout bounds a single generation call. Model generation is slow,
	// so this is much longer than a typical HTTP timeout. Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns is the connection pool size. Default: 10
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the per-host connection pool size. Default: 5
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long idle connections are kept. Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// DirectoryBackend selects the user directory storage backend.
type DirectoryBackend string

const (
	// DirectoryMemory stores users in process memory.
	DirectoryMemory DirectoryBackend = "memory"
	// DirectorySQLite stores users in a SQLite database.
	DirectorySQLite DirectoryBackend = "sqlite"
)

// DirectoryConfig contains configuration for the user directory.
type DirectoryConfig struct {
	// Backend selects the storage backend ("memory" or "sqlite").
	// Default: "memory"
	Backend DirectoryBackend `yaml:"backend"`

	// Path is the SQLite database file path, used only when Backend is
	// "sqlite". Default: "data/directory.db"
	Path string `yaml:"path"`
}

// HubConfig contains configuration for the observer broadcast hub.
type HubConfig struct {
	// SendTimeout bounds a single delivery to one observer so a stalled
	// client cannot pin a send goroutine indefinitely. Default: 5s
	SendTimeout time.Duration `yaml:"send_timeout"`
}

// JournalConfig contains configuration for the optional event journal.
type JournalConfig struct {
	// Enabled enables journaling of broadcast events. Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend ("memory" or "sqlite").
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path, used only when Backend is
	// "sqlite". Default: "data/journal.db"
	Path string `yaml:"path"`

	// Buffer is the async write channel size. When the buffer is full,
	// records are dropped rather than blocking the pipeline. Default: 1000
	Buffer int `yaml:"buffer"`

	// RetentionDays is the maximum age of journal records in days.
	// Zero disables age-based pruning. Default: 7
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords caps the number of journal records. Zero disables the
	// cap. Default: 100000
	MaxRecords int `yaml:"max_records"`

	// PruneSchedule is a cron expression for scheduled pruning
	// (e.g., "0 3 * * *" for daily at 3 AM). Empty disables scheduled
	// pruning. Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains configuration for logging and metrics.
type TelemetryConfig struct {
	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format ("json" or "text"). Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log records.
	AddSource bool `yaml:"add_source"`

	// WatchConfig reloads the log level when the config file changes.
	// Default: false
	WatchConfig bool `yaml:"watch_config"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled enables the /metrics endpoint. Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix. Default: "spyglass"
	Namespace string `yaml:"namespace"`
}
