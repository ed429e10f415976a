package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wrapped/internal/shared"
)

func TestCallbackHandler(t *testing.T) {
	t.Run("Delivers Token Pair Once And Redirects", func(t *testing.T) {
		h := NewCallbackHandler()

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?token=abc&refresh=xyz", nil))

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/" {
			t.Errorf("expected redirect to /, got %q", loc)
		}

		result, ok := <-h.Result()
		if !ok || result.Error() != nil {
			t.Fatalf("expected a successful result, got %+v", result)
		}
		if result.Token.AccessToken != "abc" || result.Token.RefreshToken != "xyz" {
			t.Errorf("unexpected token %+v", result.Token)
		}
		if _, ok := <-h.Result(); ok {
			t.Error("expected result channel to be closed after delivery")
		}
	})

	t.Run("Later Hits Are Not Reprocessed", func(t *testing.T) {
		h := NewCallbackHandler()
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?token=abc&refresh=xyz", nil))

		for _, target := range []string{"/", "/?token=other&refresh=other"} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			if rec.Code != http.StatusOK {
				t.Errorf("%s: expected 200, got %d", target, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "close this window") {
				t.Errorf("%s: expected completion page", target)
			}
		}

		result := <-h.Result()
		if result.Token.AccessToken != "abc" {
			t.Errorf("first pair should win, got %q", result.Token.AccessToken)
		}
	})

	t.Run("Partial Parameters Wait", func(t *testing.T) {
		h := NewCallbackHandler()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?token=abc", nil))

		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Waiting for login") {
			t.Errorf("expected waiting page, got %d", rec.Code)
		}
		select {
		case r := <-h.Result():
			t.Errorf("expected no result, got %+v", r)
		default:
		}
	})

	t.Run("Error Parameter Fails Login", func(t *testing.T) {
		h := NewCallbackHandler()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?error=access_denied", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-h.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})
}

func TestRouter(t *testing.T) {
	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("Method Not Allowed", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("Logging Omits Query", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)
		logger.SetLevel(log.DebugLevel)

		router := NewBasicRouter()
		router.Use(Logging(logger))
		router.Handler(NewCallbackHandler())

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?token=secret&refresh=secret", nil))
		out := buf.String()
		if !strings.Contains(out, "303") {
			t.Errorf("expected status in log, got %q", out)
		}
		if strings.Contains(out, "secret") {
			t.Error("tokens must not be logged")
		}
	})

	t.Run("Recover", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(Recover(log.New(&bytes.Buffer{})))
		router.Handle(http.MethodGet, "/boom", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestCallbackServer(t *testing.T) {
	t.Run("Receives Token", func(t *testing.T) {
		s, err := StartCallbackServer("127.0.0.1:0", nil)
		if err != nil {
			t.Fatalf("failed to start: %v", err)
		}
		defer s.Shutdown()

		client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
		resp, err := client.Get("http://" + s.Addr() + "/?token=abc&refresh=xyz")
		if err != nil {
			t.Fatalf("callback request failed: %v", err)
		}
		resp.Body.Close()

		tok, err := s.Wait(context.Background(), time.Second)
		if err != nil {
			t.Fatalf("expected token, got %v", err)
		}
		if tok.AccessToken != "abc" || tok.RefreshToken != "xyz" {
			t.Errorf("unexpected token %+v", tok)
		}
	})

	t.Run("Times Out", func(t *testing.T) {
		s, err := StartCallbackServer("127.0.0.1:0", nil)
		if err != nil {
			t.Fatalf("failed to start: %v", err)
		}
		defer s.Shutdown()

		if _, err := s.Wait(context.Background(), 10*time.Millisecond); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("Address In Use", func(t *testing.T) {
		s, err := StartCallbackServer("127.0.0.1:0", nil)
		if err != nil {
			t.Fatalf("failed to start: %v", err)
		}
		defer s.Shutdown()

		if _, err := StartCallbackServer(s.Addr(), nil); err == nil {
			t.Error("expected error binding an address in use")
		}
	})
}
