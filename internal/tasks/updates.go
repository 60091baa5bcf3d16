package tasks

import "fmt"

// ProgressUpdate represents a progress event during an export run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchProfile Phase = iota
	FetchLibrary
	Normalize
	FetchFeatures
	Assemble
	WriteOutput
)

func (p Phase) String() string {
	switch p {
	case FetchProfile:
		return "fetch_profile"
	case FetchLibrary:
		return "fetch_library"
	case Normalize:
		return "normalize"
	case FetchFeatures:
		return "fetch_features"
	case Assemble:
		return "assemble"
	case WriteOutput:
		return "write_output"
	default:
		return ""
	}
}

func profileUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchProfile,
		Step:    1,
		Total:   1,
		Message: "Fetching user profile...",
	}
}

func fetchPageUpdate(fetched, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    fetched,
		Total:   total,
		Message: fmt.Sprintf("Fetched %d of %d liked songs...", fetched, total),
	}
}

func collectUpdate(rows, uniqueIDs int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Normalize,
		Step:    rows,
		Total:   rows,
		Message: fmt.Sprintf("Collected %d rows (%d unique tracks)", rows, uniqueIDs),
	}
}

func featureBatchUpdate(processed, total, accumulated int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFeatures,
		Step:    processed,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Audio features fetched (%d matched)", processed, total, accumulated),
	}
}

func featureBatchFailedUpdate(processed, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFeatures,
		Step:    processed,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ Audio features batch failed: %v", processed, total, err),
	}
}

func assembleUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Assemble,
		Step:    count,
		Total:   count,
		Message: fmt.Sprintf("Assembled %d export rows", count),
	}
}

// WriteOutputUpdate reports the final artifact write to progress consumers.
func WriteOutputUpdate(count int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteOutput,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote %d rows to %s", count, path),
	}
}
