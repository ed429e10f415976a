package tasks

import (
	"sync"
	"time"

	"github.com/desertthunder/wrapped/internal/charts"
	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/services"
	"github.com/desertthunder/wrapped/internal/shared"
)

// Dashboard holds the normalized collections behind every view.
//
// Each section is replaced wholesale when its leg settles. Results from a load
// that was superseded by [Dashboard.Reset] or a newer [Dashboard.Begin] are dropped.
type Dashboard struct {
	mu         sync.RWMutex
	generation uint64
	loading    bool

	tracks  []models.TrackSummary
	artists []models.ArtistSummary
	genres  []models.GenreEntry
	wrapped *models.WrappedSummary
	errs    map[services.Endpoint]error
}

// NewDashboard returns an empty dashboard.
func NewDashboard() *Dashboard {
	return &Dashboard{errs: map[services.Endpoint]error{}}
}

// Begin starts a new load and returns its generation.
func (d *Dashboard) Begin() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generation++
	d.loading = true
	return d.generation
}

// Finish clears the loading flag if gen is still current.
func (d *Dashboard) Finish(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen == d.generation {
		d.loading = false
	}
}

// Reset empties every section and invalidates any load in progress.
func (d *Dashboard) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generation++
	d.loading = false
	d.tracks, d.artists, d.genres, d.wrapped = nil, nil, nil, nil
	d.errs = map[services.Endpoint]error{}
}

// Apply stores the outcome of one leg. A failed leg empties its section.
// It reports false when gen is stale and nothing was written.
func (d *Dashboard) Apply(gen uint64, e services.Endpoint, body []byte, err error) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.generation {
		return false
	}

	if err != nil {
		d.errs[e] = err
		body = nil
	} else {
		delete(d.errs, e)
	}

	switch e {
	case services.EndpointTopTracks:
		d.tracks = models.DecodeTracks(body)
	case services.EndpointTopArtists:
		d.artists = models.DecodeArtists(body)
	case services.EndpointTopGenres:
		d.genres = models.DecodeGenres(body)
	case services.EndpointWrapped:
		d.wrapped = nil
		if err == nil {
			w := models.DecodeWrapped(body)
			d.wrapped = &w
		}
	}
	return true
}

// Loading reports whether a load is in progress.
func (d *Dashboard) Loading() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loading
}

func (d *Dashboard) Tracks() []models.TrackSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tracks
}

func (d *Dashboard) Artists() []models.ArtistSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.artists
}

func (d *Dashboard) Genres() []models.GenreEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.genres
}

// Wrapped returns the summary, or nil when it is not available.
func (d *Dashboard) Wrapped() *models.WrappedSummary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.wrapped
}

// Err returns the error recorded for a section by the latest load.
func (d *Dashboard) Err(e services.Endpoint) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.errs[e]
}

// Chart derives the series for view from the cached collections.
func (d *Dashboard) Chart(view charts.View) charts.Series {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return charts.Build(view, d.genres, d.artists, d.tracks)
}

// Snapshot copies the current collections into a new snapshot.
func (d *Dashboard) Snapshot() *models.Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return &models.Snapshot{
		ID:        shared.GenerateID(),
		CreatedAt: time.Now().UTC(),
		Tracks:    d.tracks,
		Artists:   d.artists,
		Genres:    d.genres,
		Wrapped:   d.wrapped,
	}
}

// Restore replaces every section with the contents of snap and invalidates any load in progress.
func (d *Dashboard) Restore(snap *models.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generation++
	d.loading = false
	d.tracks, d.artists, d.genres, d.wrapped = snap.Tracks, snap.Artists, snap.Genres, snap.Wrapped
	d.errs = map[services.Endpoint]error{}
}
