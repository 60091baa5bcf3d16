package formatter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/cratedex/internal/models"
	tu "github.com/desertthunder/cratedex/internal/testing"
)

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func sampleRows() []models.ExportRow {
	return []models.ExportRow{
		{
			Track: models.Track{
				ID:          "track1",
				URI:         "spotify:track:track1",
				Title:       "Song One",
				Artists:     "Artist One; Artist Two",
				Album:       "Album One",
				ReleaseDate: "2020-05-01",
				DurationMS:  184000,
				Popularity:  63,
				Explicit:    true,
				AddedAt:     "2024-06-01T12:00:00Z",
			},
			Tempo:            floatPtr(120.5),
			Key:              intPtr(0),
			Mode:             intPtr(1),
			Camelot:          "8B",
			Danceability:     floatPtr(0.72),
			Energy:           floatPtr(0.81),
			Valence:          floatPtr(0.4),
			Acousticness:     floatPtr(0.013),
			Instrumentalness: floatPtr(0),
			Liveness:         floatPtr(0.1),
			Speechiness:      floatPtr(0.05),
			TimeSignature:    intPtr(4),
		},
		{
			// No audio features matched for this track
			Track: models.Track{
				ID:      "track2",
				URI:     "spotify:track:track2",
				Title:   "Song Two",
				Artists: "Artist Three",
				AddedAt: "2024-06-02T12:00:00Z",
			},
		},
	}
}

func TestExportToCSV(t *testing.T) {
	t.Run("writes fixed header", func(t *testing.T) {
		data, err := ExportToCSV(nil)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected header only, got %d records", len(records))
		}
		if len(records[0]) != 22 {
			t.Errorf("expected 22 columns, got %d", len(records[0]))
		}
		if records[0][0] != "track_id" || records[0][13] != "camelot" || records[0][21] != "time_signature" {
			t.Errorf("unexpected header: %v", records[0])
		}
	})

	t.Run("formats rows", func(t *testing.T) {
		data, err := ExportToCSV(sampleRows())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header plus 2 rows, got %d records", len(records))
		}

		row := records[1]
		if row[0] != "track1" {
			t.Errorf("expected track_id track1, got %q", row[0])
		}
		if row[3] != "Artist One; Artist Two" {
			t.Errorf("expected joined artists, got %q", row[3])
		}
		if row[6] != "184000" || row[7] != "63" || row[8] != "true" {
			t.Errorf("unexpected numeric/bool cells: %v", row[6:9])
		}
		if row[10] != "120.5" {
			t.Errorf("expected tempo 120.5, got %q", row[10])
		}
		if row[13] != "8B" {
			t.Errorf("expected camelot 8B, got %q", row[13])
		}
		if row[14] != "0.72" {
			t.Errorf("expected danceability 0.72, got %q", row[14])
		}
	})

	t.Run("absent attributes are empty cells", func(t *testing.T) {
		data, err := ExportToCSV(sampleRows())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, _ := csv.NewReader(bytes.NewReader(data)).ReadAll()
		row := records[2]
		for i := 10; i < 22; i++ {
			if row[i] != "" {
				t.Errorf("expected column %d empty for unmatched track, got %q", i, row[i])
			}
		}
		if row[6] != "0" || row[8] != "false" {
			t.Errorf("base fields keep zero defaults: %v", row[6:9])
		}
	})

	t.Run("zero is distinct from absent", func(t *testing.T) {
		rows := []models.ExportRow{{
			Track:            models.Track{ID: "t"},
			Instrumentalness: floatPtr(0),
		}}

		data, err := ExportToCSV(rows)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, _ := csv.NewReader(bytes.NewReader(data)).ReadAll()
		if records[1][18] != "0" {
			t.Errorf("expected literal 0 for present zero value, got %q", records[1][18])
		}
		if records[1][10] != "" {
			t.Errorf("expected empty cell for absent tempo, got %q", records[1][10])
		}
	})

	t.Run("repeated exports are byte identical", func(t *testing.T) {
		first, err := ExportToCSV(sampleRows())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		second, err := ExportToCSV(sampleRows())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if !bytes.Equal(first, second) {
			t.Error("expected identical output for identical input")
		}
	})
}

func TestExportToJSON(t *testing.T) {
	data, err := ExportToJSON(sampleRows())
	if err != nil {
		t.Fatalf("ExportToJSON failed: %v", err)
	}

	output := string(data)
	if !strings.Contains(output, `"track_id": "track1"`) {
		t.Errorf("JSON missing track id, got: %s", output)
	}
	if !strings.Contains(output, `"camelot": "8B"`) {
		t.Errorf("JSON missing camelot code")
	}
	if !strings.Contains(output, `"tempo": null`) {
		t.Errorf("expected null tempo for unmatched track")
	}
}

func TestWriteCSVExport(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "out", "liked_songs.csv")

		if err := WriteCSVExport(sampleRows(), path); err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("output file not written: %v", err)
		}
		if !strings.HasPrefix(string(data), "track_id,uri,track_name") {
			t.Errorf("unexpected file contents: %s", data[:60])
		}
	})

	t.Run("resolves relative paths against the working directory", func(t *testing.T) {
		wd := tu.MustGetwd(t)
		tu.MustChdir(t, t.TempDir())
		t.Cleanup(func() { tu.MustChdir(t, wd) })

		path := filepath.Join("out", "liked_songs.csv")
		if err := WriteCSVExport(sampleRows(), path); err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}

		tu.AssertFileExists(t, path)
		tu.AssertFileContains(t, path, "Song One")
		tu.AssertFileContains(t, path, "8B")
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "liked_songs.csv")
		if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := WriteCSVExport(nil, path); err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}

		data, _ := os.ReadFile(path)
		if strings.Contains(string(data), "stale") {
			t.Error("expected previous contents replaced")
		}
	})
}

func TestWriteJSONExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liked_songs.json")

	if err := WriteJSONExport(sampleRows(), path); err != nil {
		t.Fatalf("WriteJSONExport failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if !strings.Contains(string(data), `"uri": "spotify:track:track1"`) {
		t.Errorf("unexpected JSON contents")
	}
}
