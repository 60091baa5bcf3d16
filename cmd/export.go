package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cratedex/internal/formatter"
	"github.com/desertthunder/cratedex/internal/models"
	"github.com/desertthunder/cratedex/internal/repositories"
	"github.com/desertthunder/cratedex/internal/shared"
	"github.com/desertthunder/cratedex/internal/tasks"
	"github.com/desertthunder/cratedex/internal/ui"
	"github.com/urfave/cli/v3"
)

// Export runs the liked-songs export pipeline and writes the output file.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	useUI := cmd.Bool("ui")

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized, run 'cratedex auth' first", shared.ErrServiceUnavailable)
	}

	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = r.config.Export.Output
	}
	if outputPath == "" {
		outputPath = "liked_songs.csv"
	}

	run := func(progress chan<- tasks.ProgressUpdate) (*tasks.ExportResult, error) {
		result, err := r.engine.Run(ctx, progress)
		if err != nil {
			return nil, err
		}

		if len(result.Rows) == 0 {
			return result, nil
		}

		if err := formatter.WriteCSVExport(result.Rows, outputPath); err != nil {
			return result, err
		}

		if progress != nil {
			select {
			case progress <- tasks.WriteOutputUpdate(len(result.Rows), outputPath):
			default:
			}
		}

		r.recordRun(result, outputPath)
		return result, nil
	}

	if useUI {
		result, err := r.exportWithUI(run)
		if err != nil {
			return err
		}
		if useJSON {
			return r.writeSummaryJSON(result, outputPath)
		}
		return nil
	}

	result, err := run(nil)
	if err != nil {
		reauthed, authErr := r.handleSpotifyAuthError(ctx, err, cmd)
		if !reauthed {
			return fmt.Errorf("export failed: %w", err)
		}
		if authErr != nil {
			return authErr
		}
		if result, err = run(nil); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
	}

	if useJSON {
		return r.writeSummaryJSON(result, outputPath)
	}
	return r.writeSummary(result, outputPath)
}

// exportWithUI drives the pipeline through the interactive progress view.
//
// Logs are redirected to the configured log file so they do not interfere
// with TUI rendering.
func (r *Runner) exportWithUI(run ui.RunFunc) (*tasks.ExportResult, error) {
	logPath := r.config.Export.LogFile
	if logPath == "" {
		logPath = "logs/cratedex.log"
	}

	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	previous := r.logger
	r.SetLogger(fileLogger)
	defer r.SetLogger(previous)

	model := ui.NewModel(run)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}

	return model.Result()
}

// recordRun persists run bookkeeping to the history database. Failures are
// logged and never abort the export.
func (r *Runner) recordRun(result *tasks.ExportResult, outputPath string) {
	dbPath := r.config.Database.Path
	if dbPath == "" {
		return
	}

	db, err := shared.NewDatabase(dbPath)
	if err != nil {
		r.logger.Warn("failed to open history database", "error", err)
		return
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("failed to migrate history database", "error", err)
		return
	}

	run := models.NewRun(
		result.User.ID,
		result.User.Label(),
		len(result.Rows),
		result.FeatureCount,
		outputPath,
		result.StartedAt,
		result.FinishedAt,
	)

	repo := repositories.NewRunRepository(db)
	if err := repo.Create(run); err != nil {
		r.logger.Warn("failed to record run", "error", err)
		return
	}

	r.logger.Info("run recorded", "id", run.ID(), "sequence", run.Sequence())
}

// writeSummaryJSON prints the run summary as JSON. The export artifact itself
// is always CSV; this only changes how the summary is reported.
func (r *Runner) writeSummaryJSON(result *tasks.ExportResult, outputPath string) error {
	type exportSummary struct {
		UserID       string `json:"user_id"`
		UserName     string `json:"user_name"`
		TrackCount   int    `json:"track_count"`
		FeatureCount int    `json:"feature_count"`
		OutputPath   string `json:"output_path"`
		ElapsedMS    int64  `json:"elapsed_ms"`
	}

	summary := exportSummary{}
	if result != nil {
		if result.User != nil {
			summary.UserID = result.User.ID
			summary.UserName = result.User.Label()
		}
		summary.TrackCount = len(result.Rows)
		summary.FeatureCount = result.FeatureCount
		summary.ElapsedMS = result.FinishedAt.Sub(result.StartedAt).Milliseconds()
		if len(result.Rows) > 0 {
			summary.OutputPath = outputPath
		}
	}

	return r.writeJSON(summary, true)
}

func (r *Runner) writeSummary(result *tasks.ExportResult, outputPath string) error {
	if result == nil || len(result.Rows) == 0 {
		return r.writePlain("No liked songs found; nothing to export.\n")
	}

	elapsed := result.FinishedAt.Sub(result.StartedAt).Round(10 * time.Millisecond)

	r.writePlain("✓ Exported %d tracks to %s\n", len(result.Rows), outputPath)
	r.writePlain("  User: %s\n", result.User.Label())
	r.writePlain("  Audio features: %d/%d\n", result.FeatureCount, len(result.Rows))
	r.writePlain("  Elapsed: %s\n", elapsed)

	return nil
}
