package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/wrapped/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase creates the config file if needed, initializes the database and runs migrations.
//
// With --rollback it reverts the latest applied migration instead.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}
	shared.ApplyEnv(config)

	if err := config.Validate(); err != nil {
		return err
	}

	if cmd.Bool("rollback") {
		return r.rollback(config.Storage.Path)
	}

	r.logger.Info("initializing database", "path", config.Storage.Path)

	db, err := shared.OpenDatabase(config.Storage.Path, config.Storage.MaxOpenConns, config.Storage.MaxIdleConns)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Storage.Path)

	r.writePlain("✓ Config: %s\n", configPath)
	r.writePlain("✓ Database: %s\n", config.Storage.Path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set backend.base_url in %s if the backend is not on %s\n", configPath, config.Backend.BaseURL)
	r.writePlain("2. Run 'wrapped auth login' to sign in\n")
	return nil
}

func (r *Runner) rollback(path string) error {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}

	r.logger.Info("rolled back latest migration", "path", path)
	r.writePlain("✓ Rolled back latest migration in %s\n", path)
	return nil
}
