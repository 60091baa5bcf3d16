package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestRunValidate(t *testing.T) {
	started := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid run", func(t *testing.T) {
		run := NewRun("user1", "User", 10, 9, "out.csv", started, started.Add(time.Minute))
		run.SetID("abc")
		if err := run.Validate(); err != nil {
			t.Errorf("expected valid run, got %v", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		run := NewRun("user1", "User", 10, 9, "out.csv", started, started.Add(time.Minute))
		if err := run.Validate(); err == nil {
			t.Error("expected error for missing id")
		}
	})

	t.Run("missing user id", func(t *testing.T) {
		run := NewRun("", "User", 10, 9, "out.csv", started, started.Add(time.Minute))
		run.SetID("abc")
		if err := run.Validate(); err == nil {
			t.Error("expected error for missing user id")
		}
	})

	t.Run("finished before started", func(t *testing.T) {
		run := NewRun("user1", "User", 10, 9, "out.csv", started, started.Add(-time.Minute))
		run.SetID("abc")
		if err := run.Validate(); err == nil {
			t.Error("expected error for inverted interval")
		}
	})
}

func TestExportRowJSON(t *testing.T) {
	tempo := 120.5
	key := 0
	row := ExportRow{
		Track: Track{
			ID:      "t1",
			Title:   "Song",
			Artists: "A; B",
			AddedAt: "2024-06-01T12:00:00Z",
		},
		Tempo:   &tempo,
		Key:     &key,
		Camelot: "8B",
	}

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	output := string(data)
	for _, want := range []string{`"track_id":"t1"`, `"track_name":"Song"`, `"camelot":"8B"`, `"tempo":120.5`, `"mode":null`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in JSON, got %s", want, output)
		}
	}
}
