package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/wrapped/internal/shared"
	"github.com/urfave/cli/v3"
)

// SnapshotList prints saved snapshots, newest first.
func (r *Runner) SnapshotList(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	snaps, err := r.snapshots.List(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if len(snaps) == 0 {
		return r.writePlain("No snapshots saved. Run `wrapped dashboard --save` to create one.\n")
	}

	r.writePlain("Found %d snapshots:\n\n", len(snaps))
	for i, s := range snaps {
		r.writePlain("%d. %s\n", i+1, s.ID)
		r.writePlain("   Saved: %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		r.writePlain("   Tracks: %d, Artists: %d, Genres: %d\n", len(s.Tracks), len(s.Artists), len(s.Genres))
	}
	return nil
}

// SnapshotShow prints one snapshot as JSON.
func (r *Runner) SnapshotShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: snapshot id", shared.ErrMissingArgument)
	}

	if err := r.connect(ctx); err != nil {
		return err
	}

	snap, err := r.snapshots.Get(ctx, id)
	if err != nil {
		return err
	}
	return r.writeJSON(snap, true)
}

// SnapshotPrune deletes all but the newest --keep snapshots.
func (r *Runner) SnapshotPrune(ctx context.Context, cmd *cli.Command) error {
	keep := int(cmd.Int("keep"))
	if keep < 0 {
		return fmt.Errorf("%w: --keep must not be negative", shared.ErrInvalidFlag)
	}

	if err := r.connect(ctx); err != nil {
		return err
	}

	n, err := r.snapshots.Prune(ctx, keep)
	if err != nil {
		return err
	}

	r.logger.Info("pruned snapshots", "deleted", n, "kept", keep)
	return r.writePlain("✓ Deleted %d snapshots\n", n)
}
