package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	genre  key.Binding
	artist key.Binding
	track  key.Binding
	all    key.Binding
	cycle  key.Binding
	reload key.Binding
	logout key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		genre:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "genres")),
		artist: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "artists")),
		track:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tracks")),
		all:    key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "all")),
		cycle:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		logout: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.cycle, k.reload, k.logout, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.genre, k.artist, k.track, k.all},
		{k.cycle, k.reload},
		{k.logout, k.quit},
	}
}
