// package tasks implements the liked-songs export pipeline.
//
// The core abstraction is ExportEngine, which orchestrates the fetch, normalize,
// enrich and merge stages of an export run. Operations emit progress updates via
// channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cratedex/internal/models"
	"github.com/desertthunder/cratedex/internal/services"
	"github.com/desertthunder/cratedex/internal/shared"
	"golang.org/x/time/rate"
)

const (
	// savedTracksPageSize is the page size for saved-track retrieval.
	savedTracksPageSize = 50

	// featureBatchSize is the number of track ids per audio-features request.
	featureBatchSize = 100

	// defaultDelay is the fallback inter-request delay.
	defaultDelay = 200 * time.Millisecond
)

// Waiter blocks until the next upstream request may be issued.
//
// The production implementation is a [rate.Limiter]; tests substitute a
// counting fake to assert how often the pipeline throttles.
type Waiter interface {
	Wait(ctx context.Context) error
}

// ExportResult contains all data from a completed export run.
type ExportResult struct {
	User         *services.SpotifyUser // Authenticated user profile
	Rows         []models.ExportRow    // Final export rows in library order
	TrackIDs     []string              // Deduplicated ids used for feature lookup
	FeatureCount int                   // Tracks for which audio features were found
	StartedAt    time.Time
	FinishedAt   time.Time
}

// ExportOpts contains configuration for an ExportEngine.
type ExportOpts struct {
	Logger   *log.Logger   // Injected log capability (default: stderr logger)
	Delay    time.Duration // Inter-request delay (default 200ms)
	Throttle Waiter        // Overrides Delay-based throttling when set
}

// ExportEngine orchestrates the export pipeline: fetch the saved library,
// normalize it, enrich it with audio features, and merge the results into rows.
//
// Execution is strictly sequential; the only scheduling concern is the
// mandatory inter-request delay applied between successive page and batch
// requests, never before the first request of a run.
type ExportEngine struct {
	service  services.Service
	logger   *log.Logger
	throttle Waiter
}

// NewExportEngine creates an ExportEngine for the given service.
func NewExportEngine(svc services.Service, opts ExportOpts) *ExportEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Delay <= 0 {
		opts.Delay = defaultDelay
	}
	if opts.Throttle == nil {
		opts.Throttle = newRateWaiter(opts.Delay)
	}

	return &ExportEngine{
		service:  svc,
		logger:   opts.Logger,
		throttle: opts.Throttle,
	}
}

// newRateWaiter builds a limiter that spaces requests by the given interval.
func newRateWaiter(delay time.Duration) *rate.Limiter {
	limiter := rate.NewLimiter(rate.Every(delay), 1)
	// Drain the initial token so the first Wait enforces the full interval.
	limiter.Allow()
	return limiter
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}
