package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/jamming/internal/auth"
	"github.com/desertthunder/jamming/internal/models"
	"github.com/desertthunder/jamming/internal/tasks"
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
	MsgAuthOutcome MsgKind = iota
	MsgSearchResults
	MsgProgressUpdate
	MsgSaveComplete
)

type searchResults struct {
	term   string
	tracks []models.Track
}

type saveComplete struct {
	result *tasks.SaveResult
	err    error
}

// authOutcomeMsg is the constructor for [MsgAuthOutcome]
func authOutcomeMsg(outcome auth.Outcome) Msg {
	return Msg{kind: MsgAuthOutcome, data: outcome}
}

// searchResultsMsg is the constructor for [MsgSearchResults]
func searchResultsMsg(term string, tracks []models.Track) Msg {
	return Msg{kind: MsgSearchResults, data: searchResults{term: term, tracks: tracks}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// saveCompleteMsg is the constructor for [MsgSaveComplete]
func saveCompleteMsg(result *tasks.SaveResult, err error) Msg {
	return Msg{kind: MsgSaveComplete, data: saveComplete{result: result, err: err}}
}
