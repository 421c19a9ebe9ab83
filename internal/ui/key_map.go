package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	enter  key.Binding
	back   key.Binding
	add    key.Binding
	remove key.Binding
	rename key.Binding
	save   key.Binding
	tab    key.Binding
	search key.Binding
	retry  key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		add:    key.NewBinding(key.WithKeys("a", "enter"), key.WithHelp("a/enter", "add")),
		remove: key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		rename: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		save:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save to Spotify")),
		tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch list")),
		search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		retry:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.add, k.remove, k.rename, k.save},
		{k.tab, k.search, k.back, k.quit},
	}
}
