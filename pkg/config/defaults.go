package config

import "time"

// Default configuration values.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 120 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20 // 1 MiB
	DefaultShutdownTimeout = 10 * time.Second
	DefaultCORSEnabled     = true
	DefaultCORSMaxAge      = 3600

	// Ollama defaults
	DefaultOllamaBaseURL             = "http://localhost:11434"
	DefaultOllamaModel               = "llama2"
	DefaultOllamaTimeout             = 60 * time.Second
	DefaultOllamaMaxIdleConns        = 10
	DefaultOllamaMaxIdleConnsPerHost = 5
	DefaultOllamaIdleConnTimeout     = 90 * time.Second

	// Directory defaults
	DefaultDirectoryBackend = DirectoryMemory
	DefaultDirectoryPath    = "data/directory.db"

	// Hub defaults
	DefaultHubSendTimeout = 5 * time.Second

	// Journal defaults
	DefaultJournalBackend       = "memory"
	DefaultJournalPath          = "data/journal.db"
	DefaultJournalBuffer        = 1000
	DefaultJournalRetentionDays = 7
	DefaultJournalMaxRecords    = 100000
	DefaultJournalPruneSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "spyglass"
)

// DefaultConfig returns a configuration populated with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	// Booleans that default to true cannot be distinguished from an
	// explicit false once unmarshaled, so they are only forced on here.
	cfg.Server.CORS.Enabled = DefaultCORSEnabled
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	applyCORSDefaults(&cfg.Server.CORS)

	// Ollama defaults
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = DefaultOllamaBaseURL
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = DefaultOllamaModel
	}
	if cfg.Ollama.Timeout == 0 {
		cfg.Ollama.Timeout = DefaultOllamaTimeout
	}
	if cfg.Ollama.MaxIdleConns == 0 {
		cfg.Ollama.MaxIdleConns = DefaultOllamaMaxIdleConns
	}
	if cfg.Ollama.MaxIdleConnsPerHost == 0 {
		cfg.Ollama.MaxIdleConnsPerHost = DefaultOllamaMaxIdleConnsPerHost
	}
	if cfg.Ollama.IdleConnTimeout == 0 {
		cfg.Ollama.IdleConnTimeout = DefaultOllamaIdleConnTimeout
	}

	// Directory defaults
	if cfg.Directory.Backend == "" {
		cfg.Directory.Backend = DefaultDirectoryBackend
	}
	if cfg.Directory.Path == "" {
		cfg.Directory.Path = DefaultDirectoryPath
	}

	// Hub defaults
	if cfg.Hub.SendTimeout == 0 {
		cfg.Hub.SendTimeout = DefaultHubSendTimeout
	}

	// Journal defaults
	if cfg.Journal.Backend == "" {
		cfg.Journal.Backend = DefaultJournalBackend
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = DefaultJournalPath
	}
	if cfg.Journal.Buffer == 0 {
		cfg.Journal.Buffer = DefaultJournalBuffer
	}
	if cfg.Journal.RetentionDays == 0 {
		cfg.Journal.RetentionDays = DefaultJournalRetentionDays
	}
	if cfg.Journal.MaxRecords == 0 {
		cfg.Journal.MaxRecords = DefaultJournalMaxRecords
	}
	if cfg.Journal.PruneSchedule == "" {
		cfg.Journal.PruneSchedule = DefaultJournalPruneSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// applyCORSDefaults applies default values to CORS configuration.
func applyCORSDefaults(cors *CORSConfig) {
	// A bool zero value is indistinguishable from an explicit false, so
	// CORS is only defaulted on when no CORS field was configured at all.
	if !cors.Enabled {
		hasAnyConfig := len(cors.AllowedOrigins) > 0 ||
			len(cors.AllowedMethods) > 0 ||
			len(cors.AllowedHeaders) > 0 ||
			cors.MaxAge > 0

		if !hasAnyConfig {
			cors.Enabled = DefaultCORSEnabled
		}
	}

	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}
