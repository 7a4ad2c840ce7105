package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docflow/docflow/cmd/docflow/commands"
	"github.com/docflow/docflow/logger"
)

var rootCmd = &cobra.Command{
	Use:   "docflow",
	Short: "DocFlow - contract document extraction service",
	Long: `DocFlow - OCR extraction and registration service for contract documents.

Documents are submitted as asynchronous extraction jobs, processed by a
bounded worker pool, and polled for status until a terminal state.
Finished extractions can be registered as contracts with their parties.

Available commands:
  serve    - Start the DocFlow HTTP server
  version  - Print build version

Examples:
  docflow serve                    # Start with defaults (port 8420)
  docflow serve --config ./config.toml
  docflow version`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if err := logger.Initialize(commands.JSONLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&commands.JSONLogs, "json-logs", false, "Emit structured JSON logs")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
