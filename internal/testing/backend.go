package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// Backend is a fake summary backend. It accepts one access token at a time,
// rotates it on refresh, and records every request it sees.
type Backend struct {
	*httptest.Server

	mu            sync.Mutex
	accessToken   string
	refreshToken  string
	nextToken     string
	refreshStatus int
	refreshCalls  int
	bodies        map[string]string
	statuses      map[string]int
	requests      map[string]int
	lastAuth      map[string]string
	lastQuery     map[string]url.Values
	holds         map[string]*hold
}

type hold struct {
	once    sync.Once
	arrived chan struct{}
	release chan struct{}
}

// NewBackend starts a backend that accepts access and exchanges refresh.
// The server is closed when the test ends.
func NewBackend(t *testing.T, access, refresh string) *Backend {
	t.Helper()

	b := &Backend{
		accessToken:  access,
		refreshToken: refresh,
		nextToken:    access + "-refreshed",
		bodies:       map[string]string{},
		statuses:     map[string]int{},
		requests:     map[string]int{},
		lastAuth:     map[string]string{},
		lastQuery:    map[string]url.Values{},
		holds:        map[string]*hold{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", b.handleRefresh)
	mux.HandleFunc("/", b.handleResource)

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

// Expire invalidates the current access token. The next refresh issues next.
func (b *Backend) Expire(next string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accessToken = ""
	b.nextToken = next
}

// FailRefresh makes the refresh endpoint answer with status.
func (b *Backend) FailRefresh(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshStatus = status
}

// SetBody sets the JSON body served for path.
func (b *Backend) SetBody(path, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bodies[path] = body
}

// SetStatus forces path to answer with status regardless of the token.
func (b *Backend) SetStatus(path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses[path] = status
}

// Hold blocks requests to path until release is called. arrived is closed
// when the first such request reaches the server.
func (b *Backend) Hold(path string) (arrived <-chan struct{}, release func()) {
	h := &hold{arrived: make(chan struct{}), release: make(chan struct{})}

	b.mu.Lock()
	b.holds[path] = h
	b.mu.Unlock()

	var once sync.Once
	return h.arrived, func() { once.Do(func() { close(h.release) }) }
}

// RefreshCalls returns how many times the refresh endpoint was hit.
func (b *Backend) RefreshCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls
}

// Requests returns how many requests were made to path.
func (b *Backend) Requests(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[path]
}

// LastAuthorization returns the Authorization header of the latest request to path.
func (b *Backend) LastAuthorization(path string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuth[path]
}

// LastQuery returns the query of the latest request to path.
func (b *Backend) LastQuery(path string) url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastQuery[path]
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	b.refreshCalls++
	status := b.refreshStatus
	valid := req.RefreshToken != "" && req.RefreshToken == b.refreshToken
	if status == 0 && valid {
		b.accessToken = b.nextToken
	}
	token := b.accessToken
	b.mu.Unlock()

	switch {
	case status != 0:
		w.WriteHeader(status)
	case !valid:
		w.WriteHeader(http.StatusUnauthorized)
	default:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"access_token": token})
	}
}

func (b *Backend) handleResource(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	b.mu.Lock()
	b.requests[path]++
	b.lastAuth[path] = r.Header.Get("Authorization")
	b.lastQuery[path] = r.URL.Query()
	h := b.holds[path]
	b.mu.Unlock()

	if h != nil {
		h.once.Do(func() { close(h.arrived) })
		<-h.release
	}

	b.mu.Lock()
	status, forced := b.statuses[path]
	authorized := b.accessToken != "" && r.Header.Get("Authorization") == "Bearer "+b.accessToken
	body, ok := b.bodies[path]
	b.mu.Unlock()

	switch {
	case forced:
		w.WriteHeader(status)
	case !authorized:
		w.WriteHeader(http.StatusUnauthorized)
	default:
		if !ok {
			body = "[]"
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}
