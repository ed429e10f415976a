package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/wrapped/internal/services"
	"github.com/desertthunder/wrapped/internal/shared"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadDotEnv(); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}
	shared.ApplyEnv(config)
	shared.SetLogLevel(logger, config.Log.Level)

	if err := config.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "wrapped",
		Usage:    "Your Spotify listening summary in the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	err := app.Run(context.Background(), os.Args)
	switch {
	case err == nil:
	case services.IsAuthError(err):
		fmt.Fprintln(os.Stderr, sessionHint(err))
		runner.Close()
		os.Exit(1)
	default:
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}

// sessionHint is the message shown when an error means the user has to log in again.
func sessionHint(err error) string {
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return "Not logged in, run `wrapped auth login`"
	}
	return "Session expired, run `wrapped auth login`"
}
