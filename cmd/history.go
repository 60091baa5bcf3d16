package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/cratedex/internal/repositories"
	"github.com/desertthunder/cratedex/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup initializes the config file and the run-history database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
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

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ Setup complete\n")
	r.writePlain("  Config: %s\n", configPath)
	r.writePlain("  Database: %s\n", config.Database.Path)
	r.writePlain("\nNext: add your Spotify credentials to %s and run 'cratedex auth'\n", configPath)

	return nil
}

// History lists recorded export runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	limit := int(cmd.Int("limit"))
	useJSON := cmd.Bool("json")

	dbPath := r.config.Database.Path
	if dbPath == "" {
		return fmt.Errorf("%w: database.path not configured", shared.ErrMissingConfig)
	}

	if _, err := os.Stat(dbPath); err != nil {
		return r.writePlain("No export history yet. Run 'cratedex export' first.\n")
	}

	db, err := shared.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := repositories.NewRunRepository(db)
	runs, err := repo.List()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if limit > 0 && limit < len(runs) {
		runs = runs[:limit]
	}

	if useJSON {
		type runRecord struct {
			ID           string `json:"id"`
			Sequence     int    `json:"sequence"`
			UserID       string `json:"user_id"`
			UserName     string `json:"user_name"`
			TrackCount   int    `json:"track_count"`
			FeatureCount int    `json:"feature_count"`
			OutputPath   string `json:"output_path"`
			StartedAt    string `json:"started_at"`
			FinishedAt   string `json:"finished_at"`
		}

		records := make([]runRecord, 0, len(runs))
		for _, run := range runs {
			records = append(records, runRecord{
				ID:           run.ID(),
				Sequence:     run.Sequence(),
				UserID:       run.UserID(),
				UserName:     run.UserName(),
				TrackCount:   run.TrackCount(),
				FeatureCount: run.FeatureCount(),
				OutputPath:   run.OutputPath(),
				StartedAt:    run.StartedAt().Format("2006-01-02 15:04:05"),
				FinishedAt:   run.FinishedAt().Format("2006-01-02 15:04:05"),
			})
		}
		return r.writeJSON(records, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No export history yet. Run 'cratedex export' first.\n")
	}

	r.writePlain("Found %d runs:\n\n", len(runs))
	for _, run := range runs {
		elapsed := run.FinishedAt().Sub(run.StartedAt()).Round(10 * time.Millisecond)
		r.writePlain("#%d  %s\n", run.Sequence(), run.StartedAt().Format("2006-01-02 15:04:05"))
		r.writePlain("    User: %s\n", run.UserName())
		r.writePlain("    Tracks: %d (features: %d)\n", run.TrackCount(), run.FeatureCount())
		r.writePlain("    Output: %s\n", run.OutputPath())
		r.writePlain("    Elapsed: %s\n\n", elapsed)
	}

	return nil
}
