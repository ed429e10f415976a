package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wrapped/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgLoadComplete
	MsgLoggedOut
)

type loadOutcome struct {
	result *tasks.LoadResult
	err    error
}

// progressPayload carries one update and the command that waits for the next.
type progressPayload struct {
	load   int
	update tasks.ProgressUpdate
	next   tea.Cmd
}

type loadPayload struct {
	load    int
	outcome loadOutcome
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(load int, update tasks.ProgressUpdate, next tea.Cmd) Msg {
	return Msg{kind: MsgProgressUpdate, data: progressPayload{load, update, next}}
}

// loadCompleteMsg is the constructor for [MsgLoadComplete]
func loadCompleteMsg(load int, outcome loadOutcome) Msg {
	return Msg{kind: MsgLoadComplete, data: loadPayload{load, outcome}}
}

// loggedOutMsg is the constructor for [MsgLoggedOut]
func loggedOutMsg(err error) Msg {
	return Msg{kind: MsgLoggedOut, data: err}
}
