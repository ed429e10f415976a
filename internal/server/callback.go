package server

import (
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// CallbackResult contains the outcome of a login redirect.
type CallbackResult struct {
	Token *oauth2.Token
	err   error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler captures the token pair the backend appends to its post-login redirect.
//
// The pair is consumed once: the first request carrying both token and refresh
// delivers them on [CallbackHandler.Result] and is redirected to "/" so the
// parameters leave the address bar. Every later request, with or without
// parameters, gets the completion page.
type CallbackHandler struct {
	resultChan chan CallbackResult
	once       sync.Once
	mu         sync.Mutex
	delivered  bool
}

// NewCallbackHandler creates a new callback handler.
func NewCallbackHandler() *CallbackHandler {
	return &CallbackHandler{resultChan: make(chan CallbackResult, 1)}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"GET /"}
}

// ServeHTTP handles the redirect from the backend.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	h.mu.Lock()
	if h.delivered {
		h.mu.Unlock()
		renderPage(w, http.StatusOK, donePage)
		return
	}

	if errParam := query.Get("error"); errParam != "" {
		h.delivered = true
		h.mu.Unlock()
		h.Send(CallbackResult{err: fmt.Errorf("authorization failed: %s", errParam)})
		renderPage(w, http.StatusBadRequest, failedPage)
		return
	}

	token, refresh := query.Get("token"), query.Get("refresh")
	if token == "" || refresh == "" {
		h.mu.Unlock()
		renderPage(w, http.StatusOK, waitingPage)
		return
	}

	h.delivered = true
	h.mu.Unlock()

	h.Send(CallbackResult{Token: &oauth2.Token{AccessToken: token, RefreshToken: refresh, TokenType: "Bearer"}})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Send sends the result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving login completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

type page struct {
	Title   string
	Heading string
	Body    string
	Color   string
}

var (
	donePage = page{
		Title:   "Login Complete",
		Heading: "✓ Login Complete",
		Body:    "You can close this window and return to the terminal.",
		Color:   "#1DB954",
	}
	waitingPage = page{
		Title:   "Waiting for Login",
		Heading: "Waiting for login",
		Body:    "Finish signing in with Spotify in the window that opened from the terminal.",
		Color:   "#666666",
	}
	failedPage = page{
		Title:   "Login Failed",
		Heading: "✗ Login Failed",
		Body:    "Return to the terminal and run the login command again.",
		Color:   "#E22134",
	}
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: {{.Color}}; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Heading}}</h1>
        <p>{{.Body}}</p>
    </div>
</body>
</html>
`))

func renderPage(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	pageTemplate.Execute(w, p)
}
