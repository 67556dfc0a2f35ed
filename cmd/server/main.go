package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/vytor/studyspace/internal/config"
	"github.com/vytor/studyspace/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "studyspace",
	Short:         "Spaced-repetition study card server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// setup loads and validates the configuration and installs the default
// logger.
func setup() (config.Config, *logger.Logger, error) {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithFormat(logger.ParseFormat(cfg.LogFormat)),
		logger.WithColors(logger.ParseFormat(cfg.LogFormat) == logger.FormatText),
	)
	logger.SetDefault(log)

	return cfg, log, cfg.Validate()
}
