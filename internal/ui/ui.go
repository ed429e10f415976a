package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/wrapped/internal/charts"
	"github.com/desertthunder/wrapped/internal/formatter"
	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/services"
	"github.com/desertthunder/wrapped/internal/shared"
	"github.com/desertthunder/wrapped/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	DashboardView
	LoggedOutView
)

// Session is the part of the API client the TUI drives directly.
type Session interface {
	Logout(ctx context.Context) error
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	chart    charts.View
	session  Session
	loader   *tasks.Loader
	load     int
	progress tasks.ProgressUpdate
	result   *tasks.LoadResult
	expired  bool
	err      error
	width    int
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, session Session, loader *tasks.Loader, view charts.View) *Model {
	if view == "" {
		view = charts.ViewGenre
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.heading

	return &Model{
		ctx:     ctx,
		view:    LoadingView,
		chart:   view,
		session: session,
		loader:  loader,
		spinner: s,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the spinner and the first dashboard load.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startLoad())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		if m.view != LoadingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		p := msg.data.(progressPayload)
		if p.load != m.load {
			return m, nil
		}
		m.progress = p.update
		return m, p.next

	case MsgLoadComplete:
		p := msg.data.(loadPayload)
		if p.load != m.load {
			return m, nil
		}
		m.result = p.outcome.result
		m.err = p.outcome.err
		if errors.Is(m.err, shared.ErrRefreshFailed) {
			m.loader.Dashboard().Reset()
			m.expired = true
			m.view = LoggedOutView
			return m, nil
		}
		m.view = DashboardView
		return m, nil

	case MsgLoggedOut:
		if err, ok := msg.data.(error); ok && err != nil {
			m.err = err
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}
	if m.view == LoggedOutView {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.genre):
		m.chart = charts.ViewGenre
	case key.Matches(msg, m.keys.artist):
		m.chart = charts.ViewArtist
	case key.Matches(msg, m.keys.track):
		m.chart = charts.ViewTrack
	case key.Matches(msg, m.keys.all):
		m.chart = charts.ViewAll
	case key.Matches(msg, m.keys.cycle):
		m.chart = m.chart.Next()
	case key.Matches(msg, m.keys.reload):
		if m.view == LoadingView {
			return m, nil
		}
		m.view = LoadingView
		return m, tea.Batch(m.spinner.Tick, m.startLoad())
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	}
	return m, nil
}

// startLoad runs [tasks.Loader.LoadAll] in the background and returns the
// command that relays its progress. Messages from an older load are ignored.
func (m *Model) startLoad() tea.Cmd {
	m.load++
	m.err = nil
	m.result = nil
	m.progress = tasks.ProgressUpdate{}

	progress := make(chan tasks.ProgressUpdate, len(services.Endpoints)+2)
	done := make(chan loadOutcome, 1)

	go func() {
		result, err := m.loader.LoadAll(m.ctx, progress)
		done <- loadOutcome{result: result, err: err}
		close(progress)
	}()

	return waitForProgress(m.load, progress, done)
}

func waitForProgress(load int, progress <-chan tasks.ProgressUpdate, done <-chan loadOutcome) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return loadCompleteMsg(load, <-done)
		}
		return progressUpdateMsg(load, update, waitForProgress(load, progress, done))
	}
}

// logout drops every section and any load in flight before clearing the session.
func (m *Model) logout() tea.Cmd {
	m.load++
	m.loader.Dashboard().Reset()
	m.result = nil
	m.err = nil
	m.view = LoggedOutView

	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		if session == nil {
			return loggedOutMsg(nil)
		}
		return loggedOutMsg(session.Logout(ctx))
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.view == LoggedOutView {
		return m.renderLoggedOut()
	}
	return m.renderDashboard()
}

func (m *Model) renderDashboard() string {
	dash := m.loader.Dashboard()

	var b strings.Builder
	b.WriteString(styles.title.Render("Your Listening Summary"))
	b.WriteString("\n")

	if m.view == LoadingView {
		msg := m.progress.Message
		if msg == "" {
			msg = "Loading..."
		}
		fmt.Fprintf(&b, "%s %s\n\n", m.spinner.View(), msg)
	}
	if m.err != nil {
		fmt.Fprintf(&b, "%s\n\n", styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	m.section(&b, "Wrapped", services.EndpointWrapped, renderCards(dash.Wrapped()))
	m.section(&b, "Top Tracks", services.EndpointTopTracks, formatter.FormatTracks(dash.Tracks()))
	m.section(&b, "Top Artists", services.EndpointTopArtists, formatter.FormatArtists(dash.Artists()))
	m.section(&b, "Top Genres", services.EndpointTopGenres, formatter.FormatGenres(dash.Genres()))

	b.WriteString(styles.heading.Render(m.chart.Title()))
	b.WriteString("\n")
	b.WriteString(formatter.RenderBarChart(dash.Chart(m.chart), m.barWidth()))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) section(b *strings.Builder, title string, e services.Endpoint, body string) {
	b.WriteString(styles.heading.Render(title))
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	if err := m.loader.Dashboard().Err(e); err != nil {
		b.WriteString(styles.warn.Render(fmt.Sprintf("could not load %s", e)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (m *Model) renderLoggedOut() string {
	title := styles.title.Render("Logged out")

	msg := "You have been logged out. Run `wrapped auth login` to sign in again."
	if m.expired {
		msg = "Session expired, run `wrapped auth login`"
	}
	if m.err != nil && !m.expired {
		msg += "\n\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, msg, helpView)
}

func (m *Model) barWidth() int {
	if m.width == 0 {
		return formatter.DefaultBarWidth
	}
	return max(10, min(formatter.DefaultBarWidth, m.width/3))
}

func renderCards(w *models.WrappedSummary) string {
	cards := formatter.WrappedCards(w)
	if len(cards) == 0 {
		return formatter.NoSummary
	}

	tiles := make([]string, len(cards))
	for i, c := range cards {
		tiles[i] = styles.card.Render(styles.help.Render(c.Title) + "\n" + styles.ok.Render(c.Value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
}
