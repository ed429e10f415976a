// package tasks loads the dashboard from the summary backend.
//
// The core abstraction is Loader, which fans out one request per section and
// emits progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wrapped/internal/services"
	"github.com/desertthunder/wrapped/internal/shared"
)

// Fetcher performs authenticated requests against the summary endpoints.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type Fetcher interface {
	Request(ctx context.Context, endpoint services.Endpoint, query url.Values) (*services.APIResponse, error)
}

// LoadResult summarizes one LoadAll call.
type LoadResult struct {
	Failed         map[services.Endpoint]error // Legs that failed, by endpoint
	SessionExpired bool                        // A refresh failed and the session was ended
	Discarded      bool                        // The load was superseded and its results dropped
}

// Loader runs the concurrent dashboard load.
type Loader struct {
	client    Fetcher
	dashboard *Dashboard
	logger    *log.Logger
}

// NewLoader creates a Loader that writes into dashboard.
func NewLoader(client Fetcher, dashboard *Dashboard, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Loader{client: client, dashboard: dashboard, logger: logger}
}

// Dashboard returns the state the loader writes into.
func (l *Loader) Dashboard() *Dashboard {
	return l.dashboard
}

// sendProgress sends a progress update through the channel without blocking.
func (l *Loader) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// LoadAll fetches every section concurrently and returns once all of them have settled.
//
// A failing leg empties its own section and does not affect the others. The
// returned error is non-nil only when a refresh failed and ended the session.
// Progress receives one LoadStarted, one update per leg and exactly one
// LoadFinished; a buffer of len(services.Endpoints)+2 never drops any.
func (l *Loader) LoadAll(ctx context.Context, progress chan<- ProgressUpdate) (*LoadResult, error) {
	if l.client == nil {
		return nil, fmt.Errorf("%w: client not initialized", shared.ErrServiceUnavailable)
	}

	total := len(services.Endpoints)
	gen := l.dashboard.Begin()
	l.sendProgress(progress, loadStartedUpdate(total))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		settled atomic.Int32
		result  = &LoadResult{Failed: map[services.Endpoint]error{}}
	)

	for _, endpoint := range services.Endpoints {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var body []byte
			resp, err := l.client.Request(ctx, endpoint, nil)
			if err == nil {
				body = resp.Body
			}

			applied := l.dashboard.Apply(gen, endpoint, body, err)

			mu.Lock()
			if err != nil {
				result.Failed[endpoint] = err
			}
			if errors.Is(err, shared.ErrRefreshFailed) {
				result.SessionExpired = true
			}
			if !applied {
				result.Discarded = true
			}
			mu.Unlock()

			if err != nil {
				l.logger.Warn("section failed", "endpoint", endpoint.String(), "error", err)
			} else {
				l.logger.Debug("section loaded", "endpoint", endpoint.String(), "bytes", len(body))
			}

			step := int(settled.Add(1))
			l.sendProgress(progress, legUpdate(endpoint, step, total, err))
		}()
	}

	wg.Wait()
	l.dashboard.Finish(gen)
	l.sendProgress(progress, loadFinishedUpdate(total, result))

	if result.SessionExpired {
		return result, fmt.Errorf("%w: login required", shared.ErrRefreshFailed)
	}
	return result, nil
}
