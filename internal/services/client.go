package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// maxAttempts bounds a request to the original call plus one retry after a refresh.
const maxAttempts = 2

// ClientOpts configures a [Client].
type ClientOpts struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	HTTPClient        *http.Client
	Store             models.TokenStore
	Logger            *log.Logger
	// OnExpired runs after a failed refresh ends the session.
	OnExpired func()
}

// Client attaches the session's access token to every request and recovers
// from a 401 by refreshing the token once and retrying.
//
// Concurrent requests that hit a 401 share a single refresh.
// Responses that complete after [Client.Logout] are discarded.
type Client struct {
	api       *APIService
	store     models.TokenStore
	logger    *log.Logger
	onExpired func()

	mu      sync.RWMutex
	session models.Session
	epoch   uint64

	flight singleflight.Group
}

// NewClient builds a client. A nil store keeps the session in memory only.
func NewClient(opts ClientOpts) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	api := NewAPIService(opts.BaseURL, httpClient)
	api.SetRateLimit(opts.RequestsPerSecond)

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Client{
		api:       api,
		store:     opts.Store,
		logger:    logger,
		onExpired: opts.OnExpired,
	}
}

// LoginURL is where the browser is sent to begin the login flow.
func (c *Client) LoginURL() string {
	return c.api.URL(loginPath)
}

// Session returns a copy of the current session.
func (c *Client) Session() models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Authenticated reports whether an access token is held.
func (c *Client) Authenticated() bool {
	return c.Session().AccessToken != ""
}

// Restore loads the persisted session, if any.
func (c *Client) Restore(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	sess, err := c.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()

	c.logger.Debug("session restored", "authenticated", !sess.Empty())
	return nil
}

// Login starts a new session from the token pair delivered by the callback.
//
// Requests still in flight for a previous session are discarded.
func (c *Client) Login(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" || refreshToken == "" {
		return fmt.Errorf("%w: both access and refresh tokens are required", shared.ErrInvalidInput)
	}

	sess := models.Session{AccessToken: accessToken, RefreshToken: refreshToken}

	c.mu.Lock()
	c.session = sess
	c.epoch++
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Save(ctx, sess); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}

	c.logger.Info("logged in")
	return nil
}

// Logout clears the session in memory and in the store.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.session = models.Session{}
	c.epoch++
	c.mu.Unlock()

	c.logger.Info("logged out")

	if c.store != nil {
		if err := c.store.Clear(ctx); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return nil
}

// Request performs an authenticated GET against one of the summary endpoints.
//
// The wrapped endpoint also receives the refresh token as a query parameter.
func (c *Client) Request(ctx context.Context, endpoint Endpoint, query url.Values) (*APIResponse, error) {
	path := endpoint.Path()
	if path == "" {
		return nil, fmt.Errorf("%w: unknown endpoint %v", shared.ErrInvalidArgument, endpoint)
	}
	return c.get(ctx, path, endpoint == EndpointWrapped, query)
}

// Get performs an authenticated GET against an arbitrary backend path.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*APIResponse, error) {
	if path == "" || path[0] != '/' {
		return nil, fmt.Errorf("%w: path must start with /", shared.ErrInvalidArgument)
	}
	return c.get(ctx, path, false, query)
}

func (c *Client) get(ctx context.Context, path string, withRefreshToken bool, query url.Values) (*APIResponse, error) {
	for attempt := 1; ; attempt++ {
		c.mu.RLock()
		sess, epoch := c.session, c.epoch
		c.mu.RUnlock()

		req := APIRequest{
			Method: http.MethodGet,
			Path:   path,
			Query:  cloneQuery(query),
			Token:  &oauth2.Token{AccessToken: sess.AccessToken, TokenType: "Bearer"},
		}
		if withRefreshToken && sess.RefreshToken != "" {
			req.Query.Set("refresh_token", sess.RefreshToken)
		}

		c.logger.Debug("request", "path", path, "attempt", attempt)
		resp, err := c.api.Do(ctx, req)
		if c.superseded(epoch) {
			return nil, fmt.Errorf("%w: %s", shared.ErrSessionClosed, path)
		}
		if err != nil {
			return nil, err
		}

		if resp.OK() {
			return resp, nil
		}

		reqErr := &RequestError{Path: path, StatusCode: resp.StatusCode, Body: resp.Body}
		if resp.StatusCode != http.StatusUnauthorized || attempt >= maxAttempts {
			return nil, reqErr
		}

		if err := c.refresh(ctx, sess.AccessToken, false); err != nil {
			return nil, err
		}
	}
}

// Refresh exchanges the refresh token for a new access token.
//
// Any failure ends the session.
func (c *Client) Refresh(ctx context.Context) error {
	return c.refresh(ctx, "", true)
}

// refresh joins or starts the single in-flight refresh. Unless forced it is a
// no-op when the session already holds a token other than stale.
func (c *Client) refresh(ctx context.Context, stale string, force bool) error {
	ch := c.flight.DoChan("refresh", func() (any, error) {
		if !force {
			current := c.Session()
			if current.AccessToken != "" && current.AccessToken != stale {
				return nil, nil
			}
		}
		return nil, c.exchange(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

func (c *Client) exchange(ctx context.Context) error {
	c.mu.RLock()
	sess, epoch := c.session, c.epoch
	c.mu.RUnlock()

	if sess.RefreshToken == "" {
		c.expire(ctx, epoch)
		return fmt.Errorf("%w: %w", shared.ErrRefreshFailed, shared.ErrNoRefreshToken)
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: sess.RefreshToken})
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err)
	}

	c.logger.Debug("refreshing access token")
	resp, err := c.api.Post(ctx, refreshPath, body)
	if err != nil {
		c.expire(ctx, epoch)
		return fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err)
	}
	if !resp.OK() {
		c.expire(ctx, epoch)
		return fmt.Errorf("%w: status %d", shared.ErrRefreshFailed, resp.StatusCode)
	}

	var out refreshResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil || out.AccessToken == "" {
		c.expire(ctx, epoch)
		return fmt.Errorf("%w: response carried no access token", shared.ErrRefreshFailed)
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return shared.ErrSessionClosed
	}
	c.session.AccessToken = out.AccessToken
	if out.RefreshToken != "" {
		c.session.RefreshToken = out.RefreshToken
	}
	next := c.session
	c.mu.Unlock()

	c.logger.Info("access token refreshed")

	if c.store != nil {
		if err := c.store.Save(ctx, next); err != nil {
			c.logger.Warn("failed to persist refreshed session", "error", err)
		}
	}
	return nil
}

// expire ends the session that was current at epoch. A session that holds
// no tokens at all has nothing to end.
func (c *Client) expire(ctx context.Context, epoch uint64) {
	c.mu.Lock()
	if c.epoch != epoch || c.session == (models.Session{}) {
		c.mu.Unlock()
		return
	}
	c.session = models.Session{}
	c.epoch++
	c.mu.Unlock()

	c.logger.Warn("session expired, login required")

	if c.store != nil {
		if err := c.store.Clear(ctx); err != nil {
			c.logger.Error("failed to clear stored session", "error", err)
		}
	}
	if c.onExpired != nil {
		c.onExpired()
	}
}

func (c *Client) superseded(epoch uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch != epoch
}

func cloneQuery(q url.Values) url.Values {
	out := url.Values{}
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// IsAuthError reports whether err means the user has to log in again.
func IsAuthError(err error) bool {
	return errors.Is(err, shared.ErrRefreshFailed) ||
		errors.Is(err, shared.ErrUnauthorized) ||
		errors.Is(err, shared.ErrNotAuthenticated)
}
