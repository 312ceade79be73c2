package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LeiShi1313/readrepeat/pkg/config"
	"github.com/LeiShi1313/readrepeat/pkg/logging"
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the full command tree; every call returns fresh flag state
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "readrepeat",
		Short: "ReadRepeat shadow-reading API server and worker",
		Long: `ReadRepeat - shadow-reading lessons backed by a worker job queue

The API server stores lessons, sentences and recordings and hands long-running
work (alignment, speech synthesis, clip slicing, transcription) to workers that
poll it over HTTP.

Features:
  • Lesson lifecycle with cancellable background processing
  • Sentence fine-tuning with automatic clip re-slicing
  • Whisper transcription of uploaded audio files
  • Worker pool with pluggable job processors`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default ./config/settings.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")

	rootCmd.AddCommand(
		newServeCmd(),
		newWorkerCmd(),
		newMigrateCmd(),
		newConfigCmd(),
		newTokenCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig reads the configuration and sets up logging for commands that need it.
// Explicit --log-level / --json-logs flags win over the logging section.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		config.SetConfigFile(path)
	}
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("error initializing config: %w", err)
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if cmd.Flags().Changed("log-level") || level == "" {
		level, _ = cmd.Flags().GetString("log-level")
	}
	format := cfg.Logging.Format
	if jsonLogs, _ := cmd.Flags().GetBool("json-logs"); jsonLogs {
		format = "json"
	}
	if err := logging.Setup(level, format, cmd.ErrOrStderr()); err != nil {
		return nil, err
	}
	return cfg, nil
}
