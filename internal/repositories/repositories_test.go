package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/desertthunder/cratedex/internal/models"
	"github.com/desertthunder/cratedex/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newTestRun(userID string, trackCount int) *models.Run {
	started := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return models.NewRun(userID, "Test User", trackCount, trackCount, "liked_songs.csv", started, started.Add(30*time.Second))
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	first, err := NextSequence(db, "runs")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}
	second, err := NextSequence(db, "runs")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}

	if first != 1 || second != 2 {
		t.Errorf("expected sequences 1 and 2, got %d and %d", first, second)
	}
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRunRepository(db)

		run := newTestRun("user1", 107)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", run.Sequence())
		}
	})

	t.Run("Create validates", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRunRepository(db)

		run := newTestRun("", 0) // missing user id
		if err := repo.Create(run); err == nil {
			t.Error("expected validation error for missing user id")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRunRepository(db)

		run := newTestRun("user1", 107)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}

		if got.UserID() != "user1" {
			t.Errorf("expected user1, got %s", got.UserID())
		}
		if got.TrackCount() != 107 {
			t.Errorf("expected 107 tracks, got %d", got.TrackCount())
		}
		if got.OutputPath() != "liked_songs.csv" {
			t.Errorf("unexpected output path %s", got.OutputPath())
		}
		if !got.StartedAt().Equal(run.StartedAt()) {
			t.Errorf("expected started at %v, got %v", run.StartedAt(), got.StartedAt())
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRunRepository(db)

		if _, err := repo.Get("nonexistent"); err == nil {
			t.Error("expected error for missing run")
		}
	})

	t.Run("List newest first", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRunRepository(db)

		for _, user := range []string{"first", "second", "third"} {
			if err := repo.Create(newTestRun(user, 1)); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		runs, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}
		if runs[0].UserID() != "third" || runs[2].UserID() != "first" {
			t.Errorf("expected newest first, got %s..%s", runs[0].UserID(), runs[2].UserID())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewRunRepository(db)

		run := newTestRun("user1", 1)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		if _, err := repo.Get(run.ID()); err == nil {
			t.Error("expected run gone after delete")
		}
		if err := repo.Delete(run.ID()); err == nil {
			t.Error("expected error deleting twice")
		}
	})
}
