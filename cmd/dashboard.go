package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/wrapped/internal/charts"
	"github.com/desertthunder/wrapped/internal/formatter"
	"github.com/desertthunder/wrapped/internal/services"
	"github.com/desertthunder/wrapped/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Dashboard loads every section concurrently and prints the summary.
func (r *Runner) Dashboard(ctx context.Context, cmd *cli.Command) error {
	view, err := charts.ParseView(cmd.String("view"))
	if err != nil {
		return err
	}
	useJSON := cmd.Bool("json")
	save := cmd.Bool("save")

	if err := r.requireSession(ctx); err != nil {
		return err
	}

	result, err := r.load(ctx, !useJSON)
	if err != nil {
		return err
	}

	dash := r.loader.Dashboard()
	snap := dash.Snapshot()

	if save {
		if err := r.snapshots.Save(ctx, snap); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		r.logger.Info("snapshot saved", "id", snap.ID)
	}

	if useJSON {
		return r.writeJSON(snap, true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Your Listening Summary")
	r.writeSection("Wrapped", formatter.FormatWrapped(dash.Wrapped()))
	r.writeSection("Top Tracks", formatter.FormatTracks(dash.Tracks()))
	r.writeSection("Top Artists", formatter.FormatArtists(dash.Artists()))
	r.writeSection("Top Genres", formatter.FormatGenres(dash.Genres()))
	r.writeSection(view.Title(), formatter.RenderBarChart(dash.Chart(view), formatter.DefaultBarWidth))

	if n := len(result.Failed); n > 0 {
		r.writePlainln("%d of %d sections could not be loaded", n, len(services.Endpoints))
	}
	if save {
		r.writePlainln("✓ Snapshot saved (%s)", snap.ID)
	}
	return nil
}

// Chart renders one distribution, from the network or the latest snapshot.
func (r *Runner) Chart(ctx context.Context, cmd *cli.Command) error {
	view, err := charts.ParseView(cmd.String("view"))
	if err != nil {
		return err
	}
	format := cmd.String("format")
	output := cmd.String("output")

	var series charts.Series
	if cmd.Bool("cached") {
		if err := r.connect(ctx); err != nil {
			return err
		}
		snap, err := r.snapshots.Latest(ctx)
		if err != nil {
			return fmt.Errorf("%w (run `wrapped dashboard --save` first)", err)
		}
		r.logger.Debug("using snapshot", "id", snap.ID, "created_at", snap.CreatedAt)

		dash := tasks.NewDashboard()
		dash.Restore(snap)
		series = dash.Chart(view)
	} else {
		if err := r.requireSession(ctx); err != nil {
			return err
		}
		if _, err := r.load(ctx, false); err != nil {
			return err
		}
		series = r.loader.Dashboard().Chart(view)
	}

	if output != "" || cmd.Bool("save") {
		path, err := formatter.WriteSeriesExport(series, format, output)
		if err != nil {
			return err
		}
		r.logger.Info("chart exported", "path", path, "entries", series.Len())
		return r.writePlain("✓ Chart saved to %s\n", path)
	}

	data, err := formatter.RenderSeries(series, format)
	if err != nil {
		return err
	}
	if format == "" || format == formatter.FormatText {
		r.writePlain("%s\n", view.Title())
	}
	_, err = r.output.Write(data)
	return err
}

// load runs one dashboard load, printing progress lines when verbose.
func (r *Runner) load(ctx context.Context, verbose bool) (*tasks.LoadResult, error) {
	if !verbose {
		return r.loader.LoadAll(ctx, nil)
	}

	progress := make(chan tasks.ProgressUpdate, len(services.Endpoints)+2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.loader.LoadAll(ctx, progress)
	close(progress)
	<-done

	return result, err
}

func (r *Runner) writeSection(title, body string) {
	r.writePlain("\n%s\n", title)
	r.writePlain("%s\n", body)
}
