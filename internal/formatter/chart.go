package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/wrapped/internal/charts"
	"github.com/desertthunder/wrapped/internal/shared"
)

// Export formats for a chart series.
const (
	FormatText     = "text"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// DefaultBarWidth is the width of the longest bar in cells.
const DefaultBarWidth = 40

const emptyChart = "No data to chart"

// RenderBarChart draws series as horizontal bars scaled so the largest value spans width cells.
func RenderBarChart(s charts.Series, width int) string {
	if s.Len() == 0 {
		return emptyChart
	}
	if width <= 0 {
		width = DefaultBarWidth
	}

	labelWidth, peak := 0, 0.0
	for i, l := range s.Labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
		peak = math.Max(peak, s.Values[i])
	}

	total := s.Total()
	label := lipgloss.NewStyle().Width(labelWidth)

	var buf strings.Builder
	for i, l := range s.Labels {
		n := max(1, int(math.Round(s.Values[i]/peak*float64(width))))
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Colors[i])).Render(strings.Repeat("█", n))
		fmt.Fprintf(&buf, "%s  %s %s (%.1f%%)\n", label.Render(l), bar, formatValue(s.Values[i]), s.Values[i]/total*100)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ExportSeriesCSV converts a series to CSV format with columns: Label, Value, Color
func ExportSeriesCSV(s charts.Series) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Label", "Value", "Color"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, l := range s.Labels {
		if err := writer.Write([]string{l, formatValue(s.Values[i]), s.Colors[i]}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportSeriesMarkdown converts a series to a Markdown table under a heading named after its view.
func ExportSeriesMarkdown(s charts.Series) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", s.View.Title())
	if s.Len() == 0 {
		buf.WriteString(emptyChart + "\n")
		return buf.Bytes()
	}

	total := s.Total()
	buf.WriteString("| # | Label | Value | Share |\n")
	buf.WriteString("|---|-------|------:|------:|\n")
	for i, l := range s.Labels {
		fmt.Fprintf(&buf, "| %d | %s | %s | %.1f%% |\n", i+1, escapeCell(l), formatValue(s.Values[i]), s.Values[i]/total*100)
	}

	return buf.Bytes()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderSeries renders s in the named format.
func RenderSeries(s charts.Series, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return []byte(RenderBarChart(s, DefaultBarWidth) + "\n"), nil
	case FormatCSV:
		return ExportSeriesCSV(s)
	case FormatMarkdown, "md":
		return ExportSeriesMarkdown(s), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q (text|csv|markdown)", shared.ErrInvalidFlag, format)
	}
}

// WriteSeriesExport writes s in the named format to path.
//
// Defaults to chart_{view}.{ext} as the filename.
func WriteSeriesExport(s charts.Series, format, path string) (string, error) {
	data, err := RenderSeries(s, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = fmt.Sprintf("chart_%s.%s", s.View, extension(format))
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write chart file: %w", err)
	}

	return path, nil
}

func extension(format string) string {
	switch strings.ToLower(format) {
	case FormatCSV:
		return "csv"
	case FormatMarkdown, "md":
		return "md"
	default:
		return "txt"
	}
}
