// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/desertthunder/wrapped/internal/formatter"
	"github.com/urfave/cli/v3"
)

const loginTimeout = 2 * time.Minute

func viewFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "view",
		Usage: "Chart view (genre, artist, track or all)",
		Value: "genre",
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml, initialize the database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead of applying pending ones",
			},
		},
		Action: r.SetupDatabase,
	}
}

// authCommand handles session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the backend session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in through the browser and store the session",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the login URL instead of opening a browser",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the login callback",
						Value: loginTimeout,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show whether a session is stored",
				Action: r.AuthStatus,
			},
			{
				Name:   "refresh",
				Usage:  "Exchange the refresh token for a new access token",
				Action: r.AuthRefresh,
			},
		},
	}
}

// dashboardCommand loads every section and prints the summary.
func dashboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "dashboard",
		Aliases: []string{"dash"},
		Usage:   "Load and print your listening summary",
		Flags: []cli.Flag{
			viewFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the normalized collections as JSON",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Save a snapshot for offline charts",
			},
		},
		Action: r.Dashboard,
	}
}

// chartCommand renders one distribution.
func chartCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "chart",
		Usage: "Render a distribution chart",
		Flags: []cli.Flag{
			viewFlag(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (text, csv or markdown)",
				Value:   formatter.FormatText,
			},
			&cli.BoolFlag{
				Name:  "cached",
				Usage: "Use the latest saved snapshot instead of the network",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the chart to a file",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Write the chart to chart_{view}.{ext}",
			},
		},
		Action: r.Chart,
	}
}

// snapshotCommand manages saved dashboard snapshots.
func snapshotCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "snapshot",
		Aliases: []string{"snap"},
		Usage:   "Manage saved dashboard snapshots",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved snapshots, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of snapshots to list",
						Value: 10,
					},
				},
				Action: r.SnapshotList,
			},
			{
				Name:  "show",
				Usage: "Print a snapshot as JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.SnapshotShow,
			},
			{
				Name:  "prune",
				Usage: "Delete all but the newest snapshots",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "keep",
						Usage: "Number of snapshots to keep",
						Value: 5,
					},
				},
				Action: r.SnapshotPrune,
			},
		},
	}
}

// apiCommand handles direct authenticated calls to the backend
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct authenticated calls to the backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Authenticated GET, prints the response body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Query parameter as key=value (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive dashboard",
		Flags:   []cli.Flag{viewFlag()},
		Action:  r.TUI,
	}
}
