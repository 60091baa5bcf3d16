// package formatter serializes export rows to output formats (CSV, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/cratedex/internal/models"
	"github.com/desertthunder/cratedex/internal/shared"
)

// ExportColumns is the fixed CSV header. Column order never varies between
// runs so repeated exports of the same library are byte-identical.
var ExportColumns = []string{
	"track_id",
	"uri",
	"track_name",
	"artists",
	"album",
	"release_date",
	"duration_ms",
	"popularity",
	"explicit",
	"added_at",
	"tempo",
	"key",
	"mode",
	"camelot",
	"danceability",
	"energy",
	"valence",
	"acousticness",
	"instrumentalness",
	"liveness",
	"speechiness",
	"time_signature",
}

// ExportToCSV converts export rows to CSV with the [ExportColumns] header.
//
// Absent attribute values (nil pointers) become empty cells.
func ExportToCSV(rows []models.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(ExportColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.ID,
			row.URI,
			row.Title,
			row.Artists,
			row.Album,
			row.ReleaseDate,
			strconv.Itoa(row.DurationMS),
			strconv.Itoa(row.Popularity),
			strconv.FormatBool(row.Explicit),
			row.AddedAt,
			formatFloat(row.Tempo),
			formatInt(row.Key),
			formatInt(row.Mode),
			row.Camelot,
			formatFloat(row.Danceability),
			formatFloat(row.Energy),
			formatFloat(row.Valence),
			formatFloat(row.Acousticness),
			formatFloat(row.Instrumentalness),
			formatFloat(row.Liveness),
			formatFloat(row.Speechiness),
			formatInt(row.TimeSignature),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts export rows to an indented JSON array.
func ExportToJSON(rows []models.ExportRow) ([]byte, error) {
	return shared.MarshalJSON(rows, true)
}

// WriteCSVExport writes rows as CSV to path, creating parent directories.
func WriteCSVExport(rows []models.ExportRow, path string) error {
	data, err := ExportToCSV(rows)
	if err != nil {
		return fmt.Errorf("failed to generate CSV: %w", err)
	}
	return writeFile(path, data)
}

// WriteJSONExport writes rows as JSON to path, creating parent directories.
func WriteJSONExport(rows []models.ExportRow, path string) error {
	data, err := ExportToJSON(rows)
	if err != nil {
		return fmt.Errorf("failed to generate JSON: %w", err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// formatFloat renders an optional float with the shortest representation
// that round-trips, or an empty cell when absent.
func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

func formatInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
