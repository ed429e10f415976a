package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/repositories"
	"github.com/desertthunder/wrapped/internal/services"
	"github.com/desertthunder/wrapped/internal/shared"
	"github.com/desertthunder/wrapped/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Storage and the API client are opened lazily by [Runner.connect] so commands
// like setup work before a database exists.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db        *sql.DB
	store     models.TokenStore
	snapshots *repositories.SnapshotRepository
	client    *services.Client
	loader    *tasks.Loader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Store      models.TokenStore
	Snapshots  *repositories.SnapshotRepository
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.Backend.Timeout()}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		store:      opts.Store,
		snapshots:  opts.Snapshots,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, dashboardCommand, chartCommand, snapshotCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and everything it builds afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// connect opens storage, builds the API client and restores the stored session.
// It is safe to call more than once.
func (r *Runner) connect(ctx context.Context) error {
	if r.client != nil {
		return nil
	}

	if r.store == nil || r.snapshots == nil {
		if err := r.openStorage(); err != nil {
			return err
		}
	}

	r.client = services.NewClient(services.ClientOpts{
		BaseURL:           r.config.Backend.BaseURL,
		RequestsPerSecond: r.config.Backend.RequestsPerSecond,
		HTTPClient:        r.httpClient,
		Store:             r.store,
		Logger:            shared.WithLogger(r.logger, "component", "client"),
		OnExpired: func() {
			r.logger.Warn("session expired, stored tokens cleared")
		},
	})
	r.loader = tasks.NewLoader(r.client, tasks.NewDashboard(), shared.WithLogger(r.logger, "component", "loader"))

	if err := r.client.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	return nil
}

func (r *Runner) openStorage() error {
	cfg := r.config.Storage

	db, err := shared.OpenDatabase(cfg.Path, cfg.MaxOpenConns, cfg.MaxIdleConns)
	if err != nil {
		return err
	}
	r.db = db
	r.logger.Debug("database opened", "path", cfg.Path)

	if r.snapshots == nil {
		r.snapshots = repositories.NewSnapshotRepository(db)
	}

	if r.store == nil {
		path := cfg.TokenFile
		if cfg.Driver == shared.StorageFile && path == "" {
			if path, err = defaultTokenFile(); err != nil {
				return err
			}
		}
		store, err := repositories.NewTokenStore(cfg.Driver, db, path)
		if err != nil {
			return err
		}
		r.store = store
	}
	return nil
}

// Close releases the database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// requireSession connects and fails with [shared.ErrNotAuthenticated] when no session is stored.
func (r *Runner) requireSession(ctx context.Context) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	if !r.client.Authenticated() {
		return fmt.Errorf("%w: run `wrapped auth login`", shared.ErrNotAuthenticated)
	}
	return nil
}

func defaultTokenFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".wrapped", "session.json"), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
