package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate checks a configuration for invalid or inconsistent values.
// It returns an error describing the first problem found.
func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return err
	}
	if err := validateOllama(&cfg.Ollama); err != nil {
		return err
	}
	if err := validateDirectory(&cfg.Directory); err != nil {
		return err
	}
	if err := validateHub(&cfg.Hub); err != nil {
		return err
	}
	if err := validateJournal(&cfg.Journal); err != nil {
		return err
	}
	if err := validateTelemetry(&cfg.Telemetry); err != nil {
		return err
	}
	return nil
}

func validateServer(cfg *ServerConfig) error {
	if cfg.ListenAddress == "" {
		return fmt.Errorf("server.listen_address is required")
	}
	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		return fmt.Errorf("server.listen_address %q is not a valid host:port: %w", cfg.ListenAddress, err)
	}
	if cfg.ReadTimeout < 0 {
		return fmt.Errorf("server.read_timeout must not be negative")
	}
	if cfg.WriteTimeout < 0 {
		return fmt.Errorf("server.write_timeout must not be negative")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	return nil
}

func validateOllama(cfg *OllamaConfig) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("ollama.base_url is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("ollama.base_url %q is not a valid URL: %w", cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("ollama.base_url %q must use http or https", cfg.BaseURL)
	}
	if cfg.Model == "" {
		return fmt.Errorf("ollama.model is required")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("ollama.timeout must be positive")
	}
	return nil
}

func validateDirectory(cfg *DirectoryConfig) error {
	switch cfg.Backend {
	case DirectoryMemory:
		return nil
	case DirectorySQLite:
		if cfg.Path == "" {
			return fmt.Errorf("directory.path is required for the sqlite backend")
		}
		return nil
	default:
		return fmt.Errorf("directory.backend %q is not supported (must be memory or sqlite)", cfg.Backend)
	}
}

func validateHub(cfg *HubConfig) error {
	if cfg.SendTimeout <= 0 {
		return fmt.Errorf("hub.send_timeout must be positive")
	}
	return nil
}

func validateJournal(cfg *JournalConfig) error {
	if !cfg.Enabled {
		return nil
	}
	switch cfg.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("journal.backend %q is not supported (must be memory or sqlite)", cfg.Backend)
	}
	if cfg.Backend == "sqlite" && cfg.Path == "" {
		return fmt.Errorf("journal.path is required for the sqlite backend")
	}
	if cfg.Buffer <= 0 {
		return fmt.Errorf("journal.buffer must be positive")
	}
	if cfg.RetentionDays < 0 {
		return fmt.Errorf("journal.retention_days must not be negative")
	}
	if cfg.MaxRecords < 0 {
		return fmt.Errorf("journal.max_records must not be negative")
	}
	return nil
}

func validateTelemetry(cfg *TelemetryConfig) error {
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("telemetry.logging.level %q is not supported", cfg.Logging.Level)
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format %q is not supported", cfg.Logging.Format)
	}
	return nil
}
