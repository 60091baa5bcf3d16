package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/cratedex/internal/models"
	"github.com/desertthunder/cratedex/internal/shared"
)

// RunRepository implements [models.Repository] for [models.Run] persistence.
type RunRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Run] = (*RunRepository)(nil)

// NewRunRepository creates a new [RunRepository] with the given database connection.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run into the database with generated ID and sequence.
func (r *RunRepository) Create(run *models.Run) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.SetID(shared.GenerateID())
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (id, sequence, user_id, user_name, track_count, feature_count, output_path, started_at, finished_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID(), sequence, run.UserID(), run.UserName(),
		run.TrackCount(), run.FeatureCount(), run.OutputPath(),
		run.StartedAt(), run.FinishedAt(), run.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID.
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `
		SELECT id, sequence, user_id, user_name, track_count, feature_count, output_path, started_at, finished_at, created_at
		FROM runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return run, nil
}

// List retrieves all runs, newest first.
func (r *RunRepository) List() ([]*models.Run, error) {
	query := `
		SELECT id, sequence, user_id, user_name, track_count, feature_count, output_path, started_at, finished_at, created_at
		FROM runs
		ORDER BY sequence DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// Delete removes a run by ID.
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.Run, error) {
	var (
		id           string
		sequence     int
		userID       string
		userName     string
		trackCount   int
		featureCount int
		outputPath   string
		startedAt    time.Time
		finishedAt   time.Time
		createdAt    time.Time
	)

	err := s.Scan(&id, &sequence, &userID, &userName, &trackCount, &featureCount, &outputPath, &startedAt, &finishedAt, &createdAt)
	if err != nil {
		return nil, err
	}

	return models.RestoreRun(id, sequence, userID, userName, trackCount, featureCount, outputPath, startedAt, finishedAt, createdAt), nil
}
