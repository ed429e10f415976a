package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
	tu "github.com/desertthunder/wrapped/internal/testing"
)

func newTestClient(t *testing.T, backend *tu.Backend, store *tu.MemoryTokenStore) *Client {
	t.Helper()
	c := NewClient(ClientOpts{BaseURL: backend.URL, Timeout: 5 * time.Second, Store: store})
	if err := c.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	return c
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	tracks := EndpointTopTracks.Path()

	t.Run("Authorized Request Succeeds Without Refresh", func(t *testing.T) {
		backend := tu.NewBackend(t, "access", "refresh")
		backend.SetBody(tracks, `[{"name":"A"}]`)
		c := newTestClient(t, backend, tu.NewMemoryTokenStore(models.Session{AccessToken: "access", RefreshToken: "refresh"}))

		resp, err := c.Request(ctx, EndpointTopTracks, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(resp.Body) != `[{"name":"A"}]` {
			t.Errorf("unexpected body %s", resp.Body)
		}
		if got := backend.LastAuthorization(tracks); got != "Bearer access" {
			t.Errorf("expected bearer header, got %q", got)
		}
		if backend.RefreshCalls() != 0 {
			t.Errorf("expected no refresh, got %d", backend.RefreshCalls())
		}
	})

	t.Run("Wrapped Request Carries Refresh Token", func(t *testing.T) {
		backend := tu.NewBackend(t, "access", "refresh")
		c := newTestClient(t, backend, tu.NewMemoryTokenStore(models.Session{AccessToken: "access", RefreshToken: "refresh"}))

		if _, err := c.Request(ctx, EndpointWrapped, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := backend.LastQuery(EndpointWrapped.Path()).Get("refresh_token"); got != "refresh" {
			t.Errorf("expected refresh_token=refresh, got %q", got)
		}

		if _, err := c.Request(ctx, EndpointTopArtists, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if backend.LastQuery(EndpointTopArtists.Path()).Has("refresh_token") {
			t.Error("refresh token should only be sent to the wrapped endpoint")
		}
	})

	t.Run("Expired Token Is Refreshed And Request Retried", func(t *testing.T) {
		backend := tu.NewBackend(t, "old", "refresh")
		store := tu.NewMemoryTokenStore(models.Session{AccessToken: "old", RefreshToken: "refresh"})
		c := newTestClient(t, backend, store)
		backend.Expire("new")

		if _, err := c.Request(ctx, EndpointTopTracks, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if backend.RefreshCalls() != 1 {
			t.Errorf("expected 1 refresh, got %d", backend.RefreshCalls())
		}
		if backend.Requests(tracks) != 2 {
			t.Errorf("expected original request plus one retry, got %d", backend.Requests(tracks))
		}
		if got := backend.LastAuthorization(tracks); got != "Bearer new" {
			t.Errorf("retry should use the new token, got %q", got)
		}
		if got := store.Stored(); got.AccessToken != "new" || got.RefreshToken != "refresh" {
			t.Errorf("expected new token persisted, got %+v", got)
		}
	})

	t.Run("Second Unauthorized Is Terminal", func(t *testing.T) {
		backend := tu.NewBackend(t, "access", "refresh")
		backend.SetStatus(tracks, http.StatusUnauthorized)
		c := newTestClient(t, backend, tu.NewMemoryTokenStore(models.Session{AccessToken: "access", RefreshToken: "refresh"}))

		_, err := c.Request(ctx, EndpointTopTracks, nil)
		if !errors.Is(err, shared.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if backend.Requests(tracks) != 2 {
			t.Errorf("expected exactly two attempts, got %d", backend.Requests(tracks))
		}
		if backend.RefreshCalls() != 1 {
			t.Errorf("expected 1 refresh, got %d", backend.RefreshCalls())
		}
	})

	t.Run("Refresh Failure Ends Session", func(t *testing.T) {
		backend := tu.NewBackend(t, "old", "refresh")
		backend.Expire("new")
		backend.FailRefresh(http.StatusUnauthorized)

		store := tu.NewMemoryTokenStore(models.Session{AccessToken: "old", RefreshToken: "refresh"})
		var expired atomic.Int32
		c := NewClient(ClientOpts{BaseURL: backend.URL, Store: store, OnExpired: func() { expired.Add(1) }})
		if err := c.Restore(ctx); err != nil {
			t.Fatalf("restore: %v", err)
		}

		_, err := c.Request(ctx, EndpointTopTracks, nil)
		if !errors.Is(err, shared.ErrRefreshFailed) {
			t.Fatalf("expected ErrRefreshFailed, got %v", err)
		}
		if c.Authenticated() || c.Session().RefreshToken != "" {
			t.Errorf("expected session cleared, got %+v", c.Session())
		}
		if !store.Stored().Empty() || store.Clears() != 1 {
			t.Errorf("expected store cleared once, got %+v after %d clears", store.Stored(), store.Clears())
		}
		if expired.Load() != 1 {
			t.Errorf("expected OnExpired once, got %d", expired.Load())
		}
		if backend.Requests(tracks) != 1 {
			t.Errorf("expected no retry after failed refresh, got %d requests", backend.Requests(tracks))
		}
	})

	t.Run("Refresh Without Refresh Token Fails Locally", func(t *testing.T) {
		backend := tu.NewBackend(t, "access", "refresh")
		c := newTestClient(t, backend, tu.NewMemoryTokenStore(models.Session{AccessToken: "stale"}))

		_, err := c.Request(ctx, EndpointTopGenres, nil)
		if !errors.Is(err, shared.ErrRefreshFailed) || !errors.Is(err, shared.ErrNoRefreshToken) {
			t.Fatalf("expected ErrRefreshFailed wrapping ErrNoRefreshToken, got %v", err)
		}
		if backend.RefreshCalls() != 0 {
			t.Errorf("expected no refresh request, got %d", backend.RefreshCalls())
		}
	})

	t.Run("Concurrent Unauthorized Requests Share One Refresh", func(t *testing.T) {
		backend := tu.NewBackend(t, "old", "refresh")
		c := newTestClient(t, backend, tu.NewMemoryTokenStore(models.Session{AccessToken: "old", RefreshToken: "refresh"}))
		backend.Expire("new")

		var wg sync.WaitGroup
		errs := make([]error, 3)
		for i, ep := range []Endpoint{EndpointTopTracks, EndpointTopArtists, EndpointTopGenres} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = c.Request(ctx, ep, nil)
			}()
		}
		wg.Wait()

		for i, err := range errs {
			if err != nil {
				t.Errorf("request %d: expected no error, got %v", i, err)
			}
		}
		if backend.RefreshCalls() != 1 {
			t.Errorf("expected exactly 1 refresh, got %d", backend.RefreshCalls())
		}
		if c.Session().AccessToken != "new" {
			t.Errorf("expected new access token, got %q", c.Session().AccessToken)
		}
	})

	t.Run("Server Error Is Request Failure", func(t *testing.T) {
		backend := tu.NewBackend(t, "access", "refresh")
		backend.SetStatus(tracks, http.StatusInternalServerError)
		c := newTestClient(t, backend, tu.NewMemoryTokenStore(models.Session{AccessToken: "access", RefreshToken: "refresh"}))

		_, err := c.Request(ctx, EndpointTopTracks, nil)
		var reqErr *RequestError
		if !errors.As(err, &reqErr) || reqErr.StatusCode != http.StatusInternalServerError {
			t.Fatalf("expected RequestError with status 500, got %v", err)
		}
		if !errors.Is(err, shared.ErrRequestFailed) {
			t.Errorf("expected ErrRequestFailed, got %v", err)
		}
		if backend.RefreshCalls() != 0 || backend.Requests(tracks) != 1 {
			t.Error("non-401 errors must not refresh or retry")
		}
	})

	t.Run("Network Failure Is Not Retried", func(t *testing.T) {
		c := NewClient(ClientOpts{
			BaseURL:    "http://example.com",
			HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))},
		})

		_, err := c.Request(ctx, EndpointTopTracks, nil)
		if !errors.Is(err, shared.ErrNetworkFailure) {
			t.Errorf("expected ErrNetworkFailure, got %v", err)
		}
	})

	t.Run("Response After Logout Is Discarded", func(t *testing.T) {
		backend := tu.NewBackend(t, "access", "refresh")
		store := tu.NewMemoryTokenStore(models.Session{AccessToken: "access", RefreshToken: "refresh"})
		c := newTestClient(t, backend, store)

		arrived, release := backend.Hold(tracks)
		defer release()

		errc := make(chan error, 1)
		go func() {
			_, err := c.Request(ctx, EndpointTopTracks, nil)
			errc <- err
		}()

		<-arrived
		if err := c.Logout(ctx); err != nil {
			t.Fatalf("logout: %v", err)
		}
		release()

		if err := <-errc; !errors.Is(err, shared.ErrSessionClosed) {
			t.Errorf("expected ErrSessionClosed, got %v", err)
		}
		if !store.Stored().Empty() {
			t.Error("expected store cleared by logout")
		}
	})

	t.Run("Unknown Endpoint", func(t *testing.T) {
		c := NewClient(ClientOpts{})
		if _, err := c.Request(ctx, Endpoint(42), nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Get Requires Absolute Path", func(t *testing.T) {
		c := NewClient(ClientOpts{})
		if _, err := c.Get(ctx, "spotify", nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestClientSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Login Persists Both Tokens", func(t *testing.T) {
		store := tu.NewMemoryTokenStore(models.Session{})
		c := NewClient(ClientOpts{Store: store})

		if err := c.Login(ctx, "a", "r"); err != nil {
			t.Fatalf("login: %v", err)
		}
		if got := store.Stored(); got != (models.Session{AccessToken: "a", RefreshToken: "r"}) {
			t.Errorf("unexpected stored session %+v", got)
		}
		if !c.Authenticated() {
			t.Error("expected client to be authenticated")
		}
	})

	t.Run("Login Rejects Partial Tokens", func(t *testing.T) {
		c := NewClient(ClientOpts{})
		if err := c.Login(ctx, "a", ""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Restore Propagates Store Errors", func(t *testing.T) {
		store := tu.NewMemoryTokenStore(models.Session{})
		store.LoadErr = errors.New("disk gone")
		c := NewClient(ClientOpts{Store: store})

		if err := c.Restore(ctx); err == nil {
			t.Error("expected restore error")
		}
	})

	t.Run("Forced Refresh Rotates Token", func(t *testing.T) {
		backend := tu.NewBackend(t, "old", "refresh")
		backend.Expire("new")
		c := newTestClient(t, backend, tu.NewMemoryTokenStore(models.Session{AccessToken: "old", RefreshToken: "refresh"}))

		if err := c.Refresh(ctx); err != nil {
			t.Fatalf("refresh: %v", err)
		}
		if c.Session().AccessToken != "new" {
			t.Errorf("expected new token, got %q", c.Session().AccessToken)
		}
	})

	t.Run("LoginURL", func(t *testing.T) {
		c := NewClient(ClientOpts{BaseURL: "http://backend"})
		if got := c.LoginURL(); got != "http://backend/auth/login" {
			t.Errorf("unexpected login URL %q", got)
		}
	})
}
