package tasks

import (
	"fmt"

	"github.com/desertthunder/wrapped/internal/services"
)

// ProgressUpdate represents a progress event during a dashboard load.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Number of legs settled so far
	Total   int    // Total legs in this load
	Message string // Human-readable message for display
	Err     error  // Set when the leg failed
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadStarted Phase = iota
	FetchTracks
	FetchArtists
	FetchGenres
	FetchWrapped
	LoadFinished
)

func (p Phase) String() string {
	switch p {
	case LoadStarted:
		return "load_started"
	case FetchTracks:
		return "fetch_tracks"
	case FetchArtists:
		return "fetch_artists"
	case FetchGenres:
		return "fetch_genres"
	case FetchWrapped:
		return "fetch_wrapped"
	case LoadFinished:
		return "load_finished"
	default:
		return ""
	}
}

func phaseFor(e services.Endpoint) Phase {
	switch e {
	case services.EndpointTopTracks:
		return FetchTracks
	case services.EndpointTopArtists:
		return FetchArtists
	case services.EndpointTopGenres:
		return FetchGenres
	default:
		return FetchWrapped
	}
}

func loadStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadStarted,
		Total:   total,
		Message: "Loading your listening summary...",
	}
}

func legUpdate(e services.Endpoint, step, total int, err error) ProgressUpdate {
	if err != nil {
		return ProgressUpdate{
			Phase:   phaseFor(e),
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, e, err),
			Err:     err,
			Data:    e,
		}
	}
	return ProgressUpdate{
		Phase:   phaseFor(e),
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, e),
		Data:    e,
	}
}

func loadFinishedUpdate(total int, result *LoadResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadFinished,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Loaded %d of %d sections", total-len(result.Failed), total),
		Data:    result,
	}
}
