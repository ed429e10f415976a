// Package charts derives chart-ready (label, value) series from the normalized dashboard collections.
package charts

import (
	"fmt"
	"strings"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

// View selects which distribution a [Series] shows.
type View string

const (
	ViewGenre  View = "genre"
	ViewArtist View = "artist"
	ViewTrack  View = "track"
	ViewAll    View = "all"
)

// Views lists every view in display order.
var Views = []View{ViewGenre, ViewArtist, ViewTrack, ViewAll}

// Per-category entry counts used by [ViewAll].
const (
	allGenres  = 5
	allArtists = 3
	allTracks  = 3
)

// ParseView parses a view name, case-insensitively.
func ParseView(s string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Views {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: unknown chart view %q (want genre, artist, track or all)", shared.ErrInvalidArgument, s)
}

// Next returns the view after v, wrapping around.
func (v View) Next() View {
	for i, known := range Views {
		if known == v {
			return Views[(i+1)%len(Views)]
		}
	}
	return ViewGenre
}

// Title is the heading shown above a chart.
func (v View) Title() string {
	switch v {
	case ViewArtist:
		return "Artist Distribution"
	case ViewTrack:
		return "Track Distribution"
	case ViewAll:
		return "Overall Distribution"
	default:
		return "Genre Distribution"
	}
}

// Series is a derived chart: Labels, Values and Colors always have the same length.
type Series struct {
	View   View      `json:"view"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors"`
}

// Len returns the number of entries.
func (s Series) Len() int {
	return len(s.Labels)
}

// Total sums the values.
func (s Series) Total() float64 {
	var total float64
	for _, v := range s.Values {
		total += v
	}
	return total
}

func (s *Series) add(label string, value float64) {
	s.Labels = append(s.Labels, label)
	s.Values = append(s.Values, value)
}

func (s *Series) extend(o Series, limit int) {
	n := min(limit, o.Len())
	s.Labels = append(s.Labels, o.Labels[:n]...)
	s.Values = append(s.Values, o.Values[:n]...)
}

// Build derives the series for view from the cached collections.
//
// An unknown view builds the genre series.
func Build(view View, genres []models.GenreEntry, artists []models.ArtistSummary, tracks []models.TrackSummary) Series {
	var s Series
	switch view {
	case ViewArtist:
		s = artistSeries(artists)
	case ViewTrack:
		s = trackSeries(tracks)
	case ViewAll:
		s.extend(genreSeries(genres), allGenres)
		s.extend(artistSeries(artists), allArtists)
		s.extend(trackSeries(tracks), allTracks)
	default:
		view = ViewGenre
		s = genreSeries(genres)
	}

	s.View = view
	if s.Labels == nil {
		s.Labels, s.Values = []string{}, []float64{}
	}
	s.Colors = AssignColors(s.Len())
	return s
}

// genreSeries collapses genres to unique labels in first-seen order.
// Bare names add one per occurrence; counted records add their count.
func genreSeries(genres []models.GenreEntry) Series {
	var s Series
	index := make(map[string]int, len(genres))
	for _, g := range genres {
		if g.Genre == "" {
			continue
		}
		weight := 1.0
		if g.Counted {
			if g.Count <= 0 {
				continue
			}
			weight = float64(g.Count)
		}
		if i, ok := index[g.Genre]; ok {
			s.Values[i] += weight
			continue
		}
		index[g.Genre] = s.Len()
		s.add(g.Genre, weight)
	}
	return s
}

func artistSeries(artists []models.ArtistSummary) Series {
	var s Series
	for _, a := range artists {
		if a.Name == "" {
			continue
		}
		s.add(a.Name, popularityWeight(a.Popularity))
	}
	return s
}

func trackSeries(tracks []models.TrackSummary) Series {
	var s Series
	for _, t := range tracks {
		if t.Name == "" {
			continue
		}
		s.add(t.Name, popularityWeight(t.Popularity))
	}
	return s
}

// popularityWeight keeps weights positive: a missing or zero score counts as 1.
func popularityWeight(p int) float64 {
	if p <= 0 {
		return 1
	}
	return float64(p)
}
