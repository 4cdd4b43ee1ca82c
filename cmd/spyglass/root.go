package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "spyglass",
	Short: "Spyglass - live request-mirroring backend",
	Long: `Spyglass is a backend that mirrors its own request traffic to live
observers over WebSocket.

It provides:
  - A user directory with register, login, lookup, and password update
  - An LLM generation proxy to a local Ollama service
  - A broadcast hub streaming every request lifecycle as JSON events
  - An optional event journal with scheduled retention pruning`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "spyglass.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
