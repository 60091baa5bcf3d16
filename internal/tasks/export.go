package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/cratedex/internal/camelot"
	"github.com/desertthunder/cratedex/internal/models"
	"github.com/desertthunder/cratedex/internal/services"
	"github.com/desertthunder/cratedex/internal/shared"
)

// Run performs a full liked-songs export: profile lookup, paginated library
// fetch, normalization, batched audio-feature enrichment and the final merge.
//
// Any failure during the profile or library fetch aborts the run. Feature
// batch failures degrade to absent attributes and never abort.
func (e *ExportEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*ExportResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	result := &ExportResult{StartedAt: time.Now()}

	e.sendProgress(progress, profileUpdate())
	user, err := e.service.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch user profile: %v", shared.ErrAPIRequest, err)
	}
	result.User = user
	e.logger.Info("authed as", "name", user.Label(), "id", user.ID)

	items, err := e.FetchSavedTracks(ctx, progress)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		e.logger.Info("no liked tracks found; nothing to export")
		result.FinishedAt = time.Now()
		return result, nil
	}

	rows, trackIDs := e.CollectTracks(progress, items)
	result.TrackIDs = trackIDs

	features, err := e.FetchAudioFeatures(ctx, progress, trackIDs)
	if err != nil {
		return nil, err
	}
	result.FeatureCount = len(features)

	result.Rows = e.Assemble(progress, rows, features)
	result.FinishedAt = time.Now()
	return result, nil
}

// FetchSavedTracks retrieves every page of the user's saved tracks in order.
//
// The throttle is applied between page fetches, never before the first one.
// Any page failure is fatal to the run; retry belongs to the transport layer.
func (e *ExportEngine) FetchSavedTracks(ctx context.Context, progress chan<- ProgressUpdate) ([]services.SpotifySavedTrack, error) {
	e.logger.Info("fetching liked songs (saved tracks)")

	page, err := e.service.SavedTracks(ctx, savedTracksPageSize, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch saved tracks: %v", shared.ErrAPIRequest, err)
	}

	items := append([]services.SpotifySavedTrack(nil), page.Items...)
	e.logger.Info("fetched first page", "count", len(items))
	e.sendProgress(progress, fetchPageUpdate(len(items), page.Total))

	for page.Next != nil && *page.Next != "" {
		if err := e.throttle.Wait(ctx); err != nil {
			return nil, fmt.Errorf("throttle interrupted: %w", err)
		}

		page, err = e.service.SavedTracksNext(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to fetch next page: %v", shared.ErrAPIRequest, err)
		}

		items = append(items, page.Items...)
		e.logger.Info("fetched another page", "added", len(page.Items), "total", len(items))
		e.sendProgress(progress, fetchPageUpdate(len(items), page.Total))
	}

	e.logger.Info("total liked tracks fetched", "count", len(items))
	return items, nil
}

// CollectTracks converts raw saved-track items into normalized rows and the
// deduplicated, first-seen-ordered id list used for audio-feature lookup.
//
// All missing-field handling lives here: absent strings become "", absent
// numbers 0 and an absent explicit flag false. The addition timestamp is kept
// verbatim. Items without a track payload or a stable id are excluded from
// the export entirely; Spotify returns such entries for local files.
func (e *ExportEngine) CollectTracks(progress chan<- ProgressUpdate, items []services.SpotifySavedTrack) ([]models.Track, []string) {
	rows := make([]models.Track, 0, len(items))
	trackIDs := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		track := item.Track
		if track == nil || track.ID == "" {
			continue
		}

		names := make([]string, 0, len(track.Artists))
		for _, artist := range track.Artists {
			names = append(names, artist.Name)
		}

		rows = append(rows, models.Track{
			ID:          track.ID,
			URI:         track.URI,
			Title:       track.Name,
			Artists:     strings.Join(names, "; "),
			Album:       track.Album.Name,
			ReleaseDate: track.Album.ReleaseDate,
			DurationMS:  track.DurationMS,
			Popularity:  track.Popularity,
			Explicit:    track.Explicit,
			AddedAt:     item.AddedAt,
		})

		if _, ok := seen[track.ID]; !ok {
			seen[track.ID] = struct{}{}
			trackIDs = append(trackIDs, track.ID)
		}
	}

	e.logger.Info("base rows collected", "rows", len(rows), "unique_ids", len(trackIDs))
	e.sendProgress(progress, collectUpdate(len(rows), len(trackIDs)))
	return rows, trackIDs
}

// FetchAudioFeatures retrieves audio features for the id list in fixed-size
// batches, returning a mapping from track id to its features.
//
// A failed batch is logged and contributes zero results; the run continues
// with the remaining batches. The throttle is applied after every batch,
// success or failure. An empty id list short-circuits without a request.
func (e *ExportEngine) FetchAudioFeatures(ctx context.Context, progress chan<- ProgressUpdate, trackIDs []string) (map[string]*services.SpotifyAudioFeatures, error) {
	featuresByID := make(map[string]*services.SpotifyAudioFeatures, len(trackIDs))
	if len(trackIDs) == 0 {
		return featuresByID, nil
	}

	total := len(trackIDs)
	e.logger.Info("fetching audio features", "ids", total)

	for start := 0; start < total; start += featureBatchSize {
		end := min(start+featureBatchSize, total)
		batch := trackIDs[start:end]

		feats, err := e.service.AudioFeatures(ctx, batch)
		if err != nil {
			e.logger.Warn("audio features batch failed", "start", start, "end", end, "error", err)
			e.sendProgress(progress, featureBatchFailedUpdate(end, total, err))
		} else {
			for _, f := range feats {
				if f == nil || f.ID == "" {
					continue
				}
				featuresByID[f.ID] = f
			}
			e.logger.Info("processed batch", "start", start, "end", end, "accumulated", len(featuresByID))
			e.sendProgress(progress, featureBatchUpdate(end, total, len(featuresByID)))
		}

		if err := e.throttle.Wait(ctx); err != nil {
			return featuresByID, fmt.Errorf("throttle interrupted: %w", err)
		}
	}

	e.logger.Info("total tracks with audio features", "count", len(featuresByID))
	return featuresByID, nil
}

// Assemble joins normalized rows with their audio features, computing the
// Camelot code for each. Output order follows the input row order exactly.
//
// Rows without a matching feature entry export with all attribute fields
// absent and an empty Camelot code.
func (e *ExportEngine) Assemble(progress chan<- ProgressUpdate, rows []models.Track, features map[string]*services.SpotifyAudioFeatures) []models.ExportRow {
	out := make([]models.ExportRow, 0, len(rows))

	for _, row := range rows {
		merged := models.ExportRow{Track: row}

		if f := features[row.ID]; f != nil {
			merged.Tempo = f.Tempo
			merged.Key = f.Key
			merged.Mode = f.Mode
			merged.Danceability = f.Danceability
			merged.Energy = f.Energy
			merged.Valence = f.Valence
			merged.Acousticness = f.Acousticness
			merged.Instrumentalness = f.Instrumentalness
			merged.Liveness = f.Liveness
			merged.Speechiness = f.Speechiness
			merged.TimeSignature = f.TimeSignature
		}

		merged.Camelot = camelot.Code(merged.Key, merged.Mode)
		out = append(out, merged)
	}

	e.logger.Info("final rows assembled", "count", len(out))
	e.sendProgress(progress, assembleUpdate(len(out)))
	return out
}
