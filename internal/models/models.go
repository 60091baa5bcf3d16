// package models defines the data model for the liked-songs export tool
package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error     // Create inserts a new model into the database
	Get(id string) (T, error) // Get retrieves a model by its ID
	List() ([]T, error)       // List retrieves all models, newest first
	Delete(id string) error   // Delete removes a model from the database by its ID
}

// Track holds the normalized metadata of a single saved track.
//
// Every field carries an explicit default: missing strings normalize to "",
// missing numbers to 0 and a missing explicit flag to false. AddedAt is
// passed through verbatim in the source's timestamp format.
type Track struct {
	ID          string `json:"track_id"`
	URI         string `json:"uri"`
	Title       string `json:"track_name"`
	Artists     string `json:"artists"` // All artist names joined with "; "
	Album       string `json:"album"`
	ReleaseDate string `json:"release_date"`
	DurationMS  int    `json:"duration_ms"`
	Popularity  int    `json:"popularity"`
	Explicit    bool   `json:"explicit"`
	AddedAt     string `json:"added_at"`
}

// ExportRow is a [Track] merged with its audio-analysis attributes.
//
// Attribute fields are pointers: nil means the upstream service returned no
// value for the track, which is distinct from a literal zero. Nil fields are
// written to the CSV as empty cells.
type ExportRow struct {
	Track

	Tempo            *float64 `json:"tempo"`
	Key              *int     `json:"key"`  // Pitch class 0-11, 0 = C
	Mode             *int     `json:"mode"` // 0 = minor, 1 = major
	Camelot          string   `json:"camelot"`
	Danceability     *float64 `json:"danceability"`
	Energy           *float64 `json:"energy"`
	Valence          *float64 `json:"valence"`
	Acousticness     *float64 `json:"acousticness"`
	Instrumentalness *float64 `json:"instrumentalness"`
	Liveness         *float64 `json:"liveness"`
	Speechiness      *float64 `json:"speechiness"`
	TimeSignature    *int     `json:"time_signature"`
}

// Run records a completed export run for the history command.
type Run struct {
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
}

// NewRun creates a Run record for a completed export.
func NewRun(userID, userName string, trackCount, featureCount int, outputPath string, startedAt, finishedAt time.Time) *Run {
	return &Run{
		userID:       userID,
		userName:     userName,
		trackCount:   trackCount,
		featureCount: featureCount,
		outputPath:   outputPath,
		startedAt:    startedAt,
		finishedAt:   finishedAt,
		createdAt:    time.Now(),
	}
}

// RestoreRun reconstructs a Run from persisted values.
func RestoreRun(id string, sequence int, userID, userName string, trackCount, featureCount int, outputPath string, startedAt, finishedAt, createdAt time.Time) *Run {
	return &Run{
		id:           id,
		sequence:     sequence,
		userID:       userID,
		userName:     userName,
		trackCount:   trackCount,
		featureCount: featureCount,
		outputPath:   outputPath,
		startedAt:    startedAt,
		finishedAt:   finishedAt,
		createdAt:    createdAt,
	}
}

func (r *Run) ID() string            { return r.id }
func (r *Run) Sequence() int         { return r.sequence }
func (r *Run) UserID() string        { return r.userID }
func (r *Run) UserName() string      { return r.userName }
func (r *Run) TrackCount() int       { return r.trackCount }
func (r *Run) FeatureCount() int     { return r.featureCount }
func (r *Run) OutputPath() string    { return r.outputPath }
func (r *Run) StartedAt() time.Time  { return r.startedAt }
func (r *Run) FinishedAt() time.Time { return r.finishedAt }
func (r *Run) CreatedAt() time.Time  { return r.createdAt }

func (r *Run) SetID(id string)          { r.id = id }
func (r *Run) SetSequence(seq int)      { r.sequence = seq }
func (r *Run) SetCreatedAt(t time.Time) { r.createdAt = t }

// Validate checks that required Run fields are present.
func (r *Run) Validate() error {
	if r.id == "" {
		return fmt.Errorf("run id is required")
	}
	if r.userID == "" {
		return fmt.Errorf("run user id is required")
	}
	if r.trackCount < 0 {
		return fmt.Errorf("run track count cannot be negative")
	}
	if r.finishedAt.Before(r.startedAt) {
		return fmt.Errorf("run finished before it started")
	}
	return nil
}
