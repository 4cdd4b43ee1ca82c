// Package config provides configuration loading, validation, and hot
// reload for Spyglass.
//
// Configuration is loaded from a YAML file, defaults are applied to any
// unset fields, and the result is validated. Environment variables of
// the form SPYGLASS_SECTION_FIELD override file values:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("spyglass.yaml")
//
// A Watcher can monitor the config file with fsnotify and invoke a
// reload callback with the freshly loaded configuration; Spyglass uses
// this to change the log level at runtime without a restart.
package config
