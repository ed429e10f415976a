package formatter

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/wrapped/internal/charts"
	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
	th "github.com/desertthunder/wrapped/internal/testing"
)

func minutes(f float64) *float64 { return &f }

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		name string
		in   *float64
		want string
	}{
		{name: "nil", in: nil, want: "0 minutes"},
		{name: "zero", in: minutes(0), want: "0 minutes"},
		{name: "negative", in: minutes(-5), want: "0 minutes"},
		{name: "NaN", in: minutes(math.NaN()), want: "0 minutes"},
		{name: "positive infinity", in: minutes(math.Inf(1)), want: "0 minutes"},
		{name: "negative infinity", in: minutes(math.Inf(-1)), want: "0 minutes"},
		{name: "minutes", in: minutes(45), want: "45 minutes"},
		{name: "rounded minutes", in: minutes(12.6), want: "13 minutes"},
		{name: "exactly one hour", in: minutes(60), want: "1 hours"},
		{name: "hours round half up", in: minutes(90), want: "2 hours"},
		{name: "just under a day", in: minutes(1439), want: "24 hours"},
		{name: "one day", in: minutes(1440), want: "1 days"},
		{name: "days", in: minutes(5000), want: "3 days"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.in); got != tt.want {
				t.Errorf("FormatDuration() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSections(t *testing.T) {
	t.Run("Empty States", func(t *testing.T) {
		if FormatTracks(nil) != NoTracks {
			t.Errorf("unexpected tracks empty state %q", FormatTracks(nil))
		}
		if FormatArtists(nil) != NoArtists {
			t.Errorf("unexpected artists empty state %q", FormatArtists(nil))
		}
		if FormatGenres(nil) != NoGenres {
			t.Errorf("unexpected genres empty state %q", FormatGenres(nil))
		}
		if FormatWrapped(nil) != NoSummary {
			t.Errorf("unexpected wrapped empty state %q", FormatWrapped(nil))
		}
	})

	t.Run("Tracks Are Limited And Show Artists", func(t *testing.T) {
		tracks := make([]models.TrackSummary, 7)
		for i := range tracks {
			tracks[i] = models.TrackSummary{Name: "Song", Artists: []models.ArtistRef{{Name: "A"}, {Name: "B"}}}
		}

		out := FormatTracks(tracks)
		lines := strings.Split(out, "\n")
		if len(lines) != TopTracksLimit {
			t.Fatalf("expected %d lines, got %d", TopTracksLimit, len(lines))
		}
		if lines[0] != "1. Song - A, B" {
			t.Errorf("unexpected first line %q", lines[0])
		}
	})

	t.Run("Artists Show Genres", func(t *testing.T) {
		out := FormatArtists([]models.ArtistSummary{
			{Name: "Band", Genres: []string{"rock", "indie"}},
			{Name: "Solo"},
		})
		if out != "1. Band (rock, indie)\n2. Solo" {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("Genres As Pills", func(t *testing.T) {
		out := FormatGenres([]models.GenreEntry{{Genre: "pop"}, {Genre: "rock", Count: 3, Counted: true}})
		if out != "[pop] [rock (3)]" {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("Wrapped Cards Use Not Available", func(t *testing.T) {
		cards := WrappedCards(&models.WrappedSummary{TotalListeningTime: minutes(90), TopArtist: "Band"})
		want := []Card{
			{Title: "Total Listening Time", Value: "2 hours"},
			{Title: "Top Genre", Value: NotAvailable},
			{Title: "Favorite Artist", Value: "Band"},
			{Title: "Most Played Track", Value: NotAvailable},
		}
		if len(cards) != len(want) {
			t.Fatalf("expected %d cards, got %d", len(want), len(cards))
		}
		for i := range want {
			if cards[i] != want[i] {
				t.Errorf("card %d = %+v, want %+v", i, cards[i], want[i])
			}
		}

		if !strings.Contains(FormatWrapped(&models.WrappedSummary{}), "0 minutes") {
			t.Error("expected zero listening time in summary")
		}
	})

	t.Run("Wrapped Values Share One Column", func(t *testing.T) {
		w := &models.WrappedSummary{TotalListeningTime: minutes(45), TopGenre: "rock", TopArtist: "Band", TopTrack: "Song"}
		values := []string{"45 minutes", "rock", "Band", "Song"}

		lines := strings.Split(FormatWrapped(w), "\n")
		if len(lines) != len(values) {
			t.Fatalf("expected %d lines, got %d", len(values), len(lines))
		}

		col := strings.Index(lines[0], values[0])
		for i, line := range lines {
			if got := strings.Index(line, values[i]); got != col {
				t.Errorf("line %d: value at column %d, want %d (%q)", i, got, col, line)
			}
		}
		if want := len("Total Listening Time:") + 2; col != want {
			t.Errorf("expected values at column %d, got %d", want, col)
		}
	})
}

func TestCharts(t *testing.T) {
	series := charts.Build(charts.ViewGenre, []models.GenreEntry{
		{Genre: "pop"}, {Genre: "pop"}, {Genre: "rock|metal"},
	}, nil, nil)

	t.Run("RenderBarChart", func(t *testing.T) {
		out := RenderBarChart(series, 10)
		lines := strings.Split(out, "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 bars, got %d: %q", len(lines), out)
		}
		if !strings.Contains(lines[0], "pop") || !strings.Contains(lines[0], "66.7%") {
			t.Errorf("unexpected first bar %q", lines[0])
		}
		if strings.Count(lines[0], "█") != 10 || strings.Count(lines[1], "█") != 5 {
			t.Errorf("bars not scaled to peak: %q", out)
		}
		if RenderBarChart(charts.Series{}, 10) != emptyChart {
			t.Error("expected empty chart message")
		}
	})

	t.Run("ExportSeriesCSV", func(t *testing.T) {
		data, err := ExportSeriesCSV(series)
		if err != nil {
			t.Fatalf("ExportSeriesCSV failed: %v", err)
		}
		output := string(data)
		if !strings.HasPrefix(output, "Label,Value,Color\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "pop,2,"+charts.Palette[0]) {
			t.Errorf("CSV missing pop row, got: %s", output)
		}
	})

	t.Run("ExportSeriesMarkdown", func(t *testing.T) {
		output := string(ExportSeriesMarkdown(series))
		if !strings.HasPrefix(output, "# "+charts.ViewGenre.Title()) {
			t.Errorf("Markdown missing heading, got: %s", output)
		}
		if !strings.Contains(output, `| 2 | rock\|metal | 1 | 33.3% |`) {
			t.Errorf("Markdown missing escaped row, got: %s", output)
		}
	})

	t.Run("RenderSeries Rejects Unknown Format", func(t *testing.T) {
		if _, err := RenderSeries(series, "xml"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("WriteSeriesExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "genres.csv")
		written, err := WriteSeriesExport(series, FormatCSV, path)
		if err != nil {
			t.Fatalf("WriteSeriesExport failed: %v", err)
		}
		th.AssertFileExists(t, written)
		if !strings.Contains(th.MustReadFile(t, written), "pop") {
			t.Error("exported file missing data")
		}
	})

	t.Run("WriteSeriesExport Bad Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "chart.md")
		if _, err := WriteSeriesExport(series, FormatMarkdown, path); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})
}

func TestToJSON(t *testing.T) {
	data, err := ToJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if string(data) != "{\n  \"a\": 1\n}\n" {
		t.Errorf("unexpected JSON %q", data)
	}
}
