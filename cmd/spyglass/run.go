package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"mercator-hq/spyglass/pkg/config"
	"mercator-hq/spyglass/pkg/directory"
	"mercator-hq/spyglass/pkg/hub"
	"mercator-hq/spyglass/pkg/journal"
	"mercator-hq/spyglass/pkg/ollama"
	"mercator-hq/spyglass/pkg/pipeline"
	"mercator-hq/spyglass/pkg/server"
	"mercator-hq/spyglass/pkg/telemetry/logging"
	"mercator-hq/spyglass/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Spyglass server",
	Long: `Start the Spyglass server with the specified configuration.

The server listens on the configured address, serves the user directory
and LLM generation endpoints, and streams lifecycle events to observers
connected at /ws/logs.

Examples:
  # Start with default config
  spyglass run

  # Start with custom config
  spyglass run --config /etc/spyglass/spyglass.yaml

  # Override listen address
  spyglass run --listen 0.0.0.0:8000

  # Validate config without starting the server
  spyglass run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	if runFlags.dryRun {
		fmt.Println("Configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Metrics.
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics, nil)
	}

	// Broadcast hub.
	hubOpts := []hub.Option{}
	if collector != nil {
		hubOpts = append(hubOpts, hub.WithMetrics(collector.Hub))
	}
	broadcastHub := hub.New(cfg.Hub.SendTimeout, hubOpts...)

	// User directory.
	store, err := newDirectoryStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// Event pipeline, with the journal attached when enabled.
	pipelineOpts := []pipeline.Option{}
	if cfg.Journal.Enabled {
		recorder, cleanup, err := newJournal(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()
		pipelineOpts = append(pipelineOpts, pipeline.WithSink(recorder))
	}
	p := pipeline.New(broadcastHub, pipelineOpts...)

	// Config watcher for log-level hot reload.
	if cfg.Telemetry.Logging.WatchConfig {
		watcher, err := config.NewWatcher(cfgFile, logger.Slog())
		if err != nil {
			return fmt.Errorf("failed to create config watcher: %w", err)
		}
		go func() {
			err := watcher.Watch(ctx, func(newCfg *config.Config) error {
				return logger.SetLevel(newCfg.Telemetry.Logging.Level)
			})
			if err != nil {
				slog.Error("config watcher failed", "error", err)
			}
		}()
	}

	srv := server.New(cfg.Server, server.Deps{
		Store:    store,
		Ollama:   ollama.NewClient(cfg.Ollama),
		Hub:      broadcastHub,
		Pipeline: p,
		Metrics:  collector,
	})

	fmt.Printf("Spyglass %s listening on %s\n", Version, cfg.Server.ListenAddress)
	fmt.Printf("Observer stream: ws://%s/ws/logs\n", cfg.Server.ListenAddress)

	return srv.Start(ctx)
}

// loadConfig reads the config file, falling back to built-in defaults
// when the default config path does not exist.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		defaultPath := rootCmd.PersistentFlags().Lookup("config").DefValue
		if errors.Is(err, fs.ErrNotExist) && cfgFile == defaultPath {
			return config.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newDirectoryStore(cfg *config.Config) (directory.Store, error) {
	switch cfg.Directory.Backend {
	case config.DirectorySQLite:
		store, err := directory.NewSQLiteStore(cfg.Directory.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open directory database: %w", err)
		}
		slog.Info("user directory initialized", "backend", "sqlite", "path", cfg.Directory.Path)
		return store, nil
	case config.DirectoryMemory, "":
		slog.Info("user directory initialized", "backend", "memory")
		return directory.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported directory backend: %s", cfg.Directory.Backend)
	}
}

// newJournal builds the journal recorder and starts its retention
// scheduler. The returned cleanup stops both.
func newJournal(ctx context.Context, cfg *config.Config) (*journal.Recorder, func(), error) {
	var storage journal.Storage
	switch cfg.Journal.Backend {
	case "sqlite":
		sqlite, err := journal.NewSQLiteStorage(&journal.SQLiteConfig{
			Path:         cfg.Journal.Path,
			MaxOpenConns: journal.DefaultSQLiteConfig().MaxOpenConns,
			BusyTimeout:  journal.DefaultSQLiteConfig().BusyTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open journal database: %w", err)
		}
		storage = sqlite
	case "memory", "":
		storage = journal.NewMemoryStorage(cfg.Journal.MaxRecords)
	default:
		return nil, nil, fmt.Errorf("unsupported journal backend: %s", cfg.Journal.Backend)
	}

	recorder := journal.NewRecorder(storage, &journal.RecorderConfig{
		Buffer:       cfg.Journal.Buffer,
		WriteTimeout: journal.DefaultRecorderConfig().WriteTimeout,
	})

	pruner := journal.NewPruner(storage, &journal.RetentionConfig{
		RetentionDays: cfg.Journal.RetentionDays,
		MaxRecords:    int64(cfg.Journal.MaxRecords),
		PruneSchedule: cfg.Journal.PruneSchedule,
	})
	if err := pruner.Start(ctx); err != nil {
		recorder.Close()
		storage.Close()
		return nil, nil, fmt.Errorf("failed to start journal retention: %w", err)
	}

	cleanup := func() {
		pruner.Stop()
		recorder.Close()
		storage.Close()
	}
	return recorder, cleanup, nil
}
