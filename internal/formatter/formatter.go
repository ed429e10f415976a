// package formatter renders the dashboard sections and chart series as text, CSV and Markdown
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/desertthunder/wrapped/internal/models"
)

// Section sizes and empty-state texts.
const (
	TopTracksLimit  = 5
	TopArtistsLimit = 5
	TopGenresLimit  = 10

	NoTracks     = "No tracks found"
	NoArtists    = "No artists found"
	NoGenres     = "No genres found"
	NoSummary    = "No summary available"
	NotAvailable = "Not available"
)

// FormatDuration renders a listening time given in minutes.
//
// nil, zero, negative, NaN and infinite values all render as "0 minutes". Below an hour the value
// is rounded to minutes, below a day to hours, and to days beyond that.
func FormatDuration(minutes *float64) string {
	if minutes == nil || math.IsNaN(*minutes) || math.IsInf(*minutes, 0) || *minutes <= 0 {
		return "0 minutes"
	}

	m := *minutes
	switch {
	case m < 60:
		return fmt.Sprintf("%d minutes", int64(math.Round(m)))
	case m < 1440:
		return fmt.Sprintf("%d hours", int64(math.Round(m/60)))
	default:
		return fmt.Sprintf("%d days", int64(math.Round(m/1440)))
	}
}

// Card is one tile of the wrapped summary.
type Card struct {
	Title string
	Value string
}

// WrappedCards returns the four summary tiles. Missing values render as "Not available".
func WrappedCards(w *models.WrappedSummary) []Card {
	if w == nil {
		return nil
	}
	return []Card{
		{Title: "Total Listening Time", Value: FormatDuration(w.TotalListeningTime)},
		{Title: "Top Genre", Value: orNotAvailable(w.TopGenre)},
		{Title: "Favorite Artist", Value: orNotAvailable(w.TopArtist)},
		{Title: "Most Played Track", Value: orNotAvailable(w.TopTrack)},
	}
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

// FormatTracks lists the top tracks with their artists.
func FormatTracks(tracks []models.TrackSummary) string {
	if len(tracks) == 0 {
		return NoTracks
	}

	var buf strings.Builder
	for i, track := range tracks[:min(len(tracks), TopTracksLimit)] {
		fmt.Fprintf(&buf, "%d. %s", i+1, track.Name)
		if names := track.ArtistNames(); len(names) > 0 {
			fmt.Fprintf(&buf, " - %s", strings.Join(names, ", "))
		}
		buf.WriteString("\n")
	}
	return strings.TrimRight(buf.String(), "\n")
}

// FormatArtists lists the top artists with their genres.
func FormatArtists(artists []models.ArtistSummary) string {
	if len(artists) == 0 {
		return NoArtists
	}

	var buf strings.Builder
	for i, artist := range artists[:min(len(artists), TopArtistsLimit)] {
		fmt.Fprintf(&buf, "%d. %s", i+1, artist.Name)
		if len(artist.Genres) > 0 {
			fmt.Fprintf(&buf, " (%s)", strings.Join(artist.Genres, ", "))
		}
		buf.WriteString("\n")
	}
	return strings.TrimRight(buf.String(), "\n")
}

// GenreLabels returns the display text of the top genres.
func GenreLabels(genres []models.GenreEntry) []string {
	out := make([]string, 0, min(len(genres), TopGenresLimit))
	for _, g := range genres[:min(len(genres), TopGenresLimit)] {
		if g.Counted {
			out = append(out, fmt.Sprintf("%s (%d)", g.Genre, g.Count))
			continue
		}
		out = append(out, g.Genre)
	}
	return out
}

// FormatGenres renders the top genres as a single line of pills.
func FormatGenres(genres []models.GenreEntry) string {
	labels := GenreLabels(genres)
	if len(labels) == 0 {
		return NoGenres
	}

	pills := make([]string, len(labels))
	for i, l := range labels {
		pills[i] = "[" + l + "]"
	}
	return strings.Join(pills, " ")
}

// FormatWrapped renders the summary tiles one per line.
func FormatWrapped(w *models.WrappedSummary) string {
	cards := WrappedCards(w)
	if len(cards) == 0 {
		return NoSummary
	}

	width := 0
	for _, c := range cards {
		width = max(width, len(c.Title)+1)
	}

	var buf strings.Builder
	for _, c := range cards {
		fmt.Fprintf(&buf, "%-*s  %s\n", width, c.Title+":", c.Value)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// ToJSON encodes v as indented JSON.
func ToJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return buf.Bytes(), nil
}
