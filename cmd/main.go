package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/rolesplit/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	config, err := shared.LoadConfigOrDefault(defaultConfigPath)
	if err != nil {
		logger.Warn("failed to load config, using defaults", "path", defaultConfigPath, "error", err)
		config = shared.DefaultConfig()
	}
	if err := config.ApplyEnv(); err != nil {
		logger.Fatalf("invalid environment override: %v", err)
	}
	if err := shared.ApplyLogLevel(logger, config.Log.Level); err != nil {
		logger.Warn("invalid log level in config", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "rolesplit",
		Usage:    "Split a roster spreadsheet into faculty, student and other CSV files",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		var rowErr *shared.MalformedRowError
		switch {
		case errors.As(err, &rowErr):
			logger.Error("spreadsheet rejected", "row", rowErr.Row, "reason", rowErr.Reason)
			os.Exit(2)
		case errors.Is(err, shared.ErrDecode):
			logger.Error("spreadsheet rejected", "error", err)
			os.Exit(2)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
