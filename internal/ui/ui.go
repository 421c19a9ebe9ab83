package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/jamming/internal/auth"
	"github.com/desertthunder/jamming/internal/models"
	"github.com/desertthunder/jamming/internal/services"
	"github.com/desertthunder/jamming/internal/shared"
	"github.com/desertthunder/jamming/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	AuthView ViewState = iota
	SearchView
	ResultsView
	DraftView
	RenameView
	SavingView
	ResultView
)

// Authenticator drives the authorization flow one step at a time.
type Authenticator interface {
	// Begin returns the current outcome, redirecting when no token is cached.
	Begin(ctx context.Context) auth.Outcome
	// Complete waits for the authorization callback and returns the resulting outcome.
	Complete(ctx context.Context) auth.Outcome
}

// Opts holds the TUI's dependencies. Draft, Drafts and Auth are optional.
type Opts struct {
	Service services.Service
	Engine  *tasks.PlaylistEngine
	Drafts  tasks.DraftStore
	Draft   *models.Draft
	Auth    Authenticator
	Logger  *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	svc    services.Service
	engine *tasks.PlaylistEngine
	drafts tasks.DraftStore
	draft  *models.Draft
	auth   Authenticator
	logger *log.Logger

	width     int
	height    int
	input     textinput.Model
	nameInput textinput.Model
	results   list.Model
	draftList list.Model

	authURL      string
	status       string
	progressChan chan tasks.ProgressUpdate
	saveDone     chan Msg
	progress     tasks.ProgressUpdate
	result       *tasks.SaveResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Opts) *Model {
	draft := opts.Draft
	if draft == nil {
		draft = models.NewDraft("")
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NopLogger()
	}

	input := textinput.New()
	input.Placeholder = "Enter a song, album, or artist"
	input.CharLimit = 200
	input.Prompt = "🔍 "

	nameInput := textinput.New()
	nameInput.CharLimit = 100
	nameInput.Prompt = "Name: "

	m := &Model{
		ctx:       ctx,
		view:      AuthView,
		svc:       opts.Service,
		engine:    opts.Engine,
		drafts:    opts.Drafts,
		draft:     draft,
		auth:      opts.Auth,
		logger:    logger,
		input:     input,
		nameInput: nameInput,
		results:   newTrackList("Results"),
		draftList: newTrackList(draft.Name()),
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.refreshDraft()
	return m
}

// State returns the current view state.
func (m *Model) State() ViewState { return m.view }

// Draft returns the playlist being built.
func (m *Model) Draft() *models.Draft { return m.draft }

// Init starts authorization, or goes straight to search when no authenticator is configured.
func (m *Model) Init() tea.Cmd {
	if m.auth == nil {
		return m.enterSearch()
	}
	return m.beginAuth()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.results.SetSize(msg.Width-4, msg.Height-10)
		m.draftList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case AuthView:
			return m.handleAuthKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		case DraftView:
			return m.handleDraftKeys(msg)
		case RenameView:
			return m.handleRenameKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgAuthOutcome:
		outcome := msg.data.(auth.Outcome)
		switch outcome.Kind {
		case auth.OutcomeAuthenticated:
			m.err = nil
			m.authURL = ""
			m.status = "Connected to Spotify"
			return m, m.enterSearch()
		case auth.OutcomeRedirecting:
			m.authURL = outcome.AuthURL
			return m, m.completeAuth()
		default:
			m.err = outcome.Err
			m.logger.Warn("authorization did not complete", "outcome", outcome.Kind, "error", outcome.Err)
			return m, nil
		}

	case MsgSearchResults:
		data := msg.data.(searchResults)
		m.results.Title = fmt.Sprintf("Results for %q", data.term)
		cmd := m.results.SetItems(trackItems(data.tracks))
		m.status = fmt.Sprintf("%d results", len(data.tracks))
		if len(data.tracks) == 0 {
			m.status = "No results (the search failed or matched nothing)"
		}
		m.input.Blur()
		m.view = ResultsView
		return m, cmd

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgSaveComplete:
		data := msg.data.(saveComplete)
		m.result = data.result
		m.err = data.err
		m.progressChan = nil
		m.saveDone = nil
		m.view = ResultView
		m.refreshDraft()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.retry) && m.err != nil:
		m.err = nil
		return m, m.beginAuth()
	}
	return m, nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		term := strings.TrimSpace(m.input.Value())
		if term == "" {
			return m, nil
		}
		m.status = fmt.Sprintf("Searching for %q...", term)
		return m, m.search(term)
	case "esc":
		if len(m.results.Items()) > 0 {
			m.input.Blur()
			m.view = ResultsView
		}
		return m, nil
	case "tab":
		m.input.Blur()
		m.view = DraftView
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search), key.Matches(msg, m.keys.back):
		return m, m.enterSearch()
	case key.Matches(msg, m.keys.tab):
		m.view = DraftView
		return m, nil
	case key.Matches(msg, m.keys.add):
		if item, ok := m.results.SelectedItem().(trackItem); ok {
			m.addTrack(item.track)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) handleDraftKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		return m, m.enterSearch()
	case key.Matches(msg, m.keys.tab), key.Matches(msg, m.keys.back):
		if len(m.results.Items()) > 0 {
			m.view = ResultsView
			return m, nil
		}
		return m, m.enterSearch()
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.draftList.SelectedItem().(trackItem); ok {
			m.removeTrack(item.track)
		}
		return m, nil
	case key.Matches(msg, m.keys.rename):
		m.nameInput.SetValue(m.draft.Name())
		m.nameInput.CursorEnd()
		m.view = RenameView
		return m, m.nameInput.Focus()
	case key.Matches(msg, m.keys.save):
		if err := m.draft.ReadyToSave(); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.err = nil
		m.result = nil
		m.progress = tasks.ProgressUpdate{}
		m.view = SavingView
		return m, m.startSave()
	}

	var cmd tea.Cmd
	m.draftList, cmd = m.draftList.Update(msg)
	return m, cmd
}

func (m *Model) handleRenameKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(m.nameInput.Value())
		if name == "" {
			m.status = "Playlist name cannot be empty"
			return m, nil
		}
		m.draft.Rename(name)
		m.persist()
		m.refreshDraft()
		m.nameInput.Blur()
		m.view = DraftView
		return m, nil
	case "esc":
		m.nameInput.Blur()
		m.view = DraftView
		return m, nil
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter), key.Matches(msg, m.keys.back):
		failed := m.err != nil
		m.err = nil
		m.result = nil
		if failed {
			m.view = DraftView
			return m, nil
		}
		return m, m.enterSearch()
	}
	return m, nil
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.input, cmd = m.input.Update(msg)
	case RenameView:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case ResultsView:
		m.results, cmd = m.results.Update(msg)
	case DraftView:
		m.draftList, cmd = m.draftList.Update(msg)
	}
	return m, cmd
}

func (m *Model) enterSearch() tea.Cmd {
	m.view = SearchView
	return tea.Batch(m.input.Focus(), textinput.Blink)
}

func (m *Model) addTrack(track models.Track) {
	if !m.draft.Add(track) {
		m.status = fmt.Sprintf("%q is already in the playlist", track.Name)
		return
	}
	m.status = fmt.Sprintf("Added %q", track.Name)
	m.persist()
	m.refreshDraft()
}

func (m *Model) removeTrack(track models.Track) {
	if m.draft.Remove(track.ID) {
		m.status = fmt.Sprintf("Removed %q", track.Name)
		m.persist()
		m.refreshDraft()
	}
}

// persist writes the draft through when it is backed by a store.
func (m *Model) persist() {
	if m.drafts == nil || m.draft.ID() == "" {
		return
	}
	if err := m.drafts.Update(m.draft); err != nil {
		m.logger.Error("failed to persist draft", "error", err)
		m.status = fmt.Sprintf("Could not save draft locally: %v", err)
	}
}

func (m *Model) refreshDraft() {
	m.draftList.Title = fmt.Sprintf("%s (%d tracks)", m.draft.Name(), m.draft.Len())
	m.draftList.SetItems(trackItems(m.draft.Tracks()))
}

func (m *Model) beginAuth() tea.Cmd {
	m.view = AuthView
	return func() tea.Msg {
		return authOutcomeMsg(m.auth.Begin(m.ctx))
	}
}

func (m *Model) completeAuth() tea.Cmd {
	return func() tea.Msg {
		return authOutcomeMsg(m.auth.Complete(m.ctx))
	}
}

func (m *Model) search(term string) tea.Cmd {
	return func() tea.Msg {
		return searchResultsMsg(term, m.svc.Search(m.ctx, term))
	}
}

func (m *Model) startSave() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan Msg, 1)
	m.progressChan = progress
	m.saveDone = done

	engine, draft, ctx := m.engine, m.draft, m.ctx
	go func() {
		result, err := engine.Save(ctx, progress, draft)
		done <- saveCompleteMsg(result, err)
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.saveDone
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case AuthView:
		return m.renderAuth()
	case SearchView:
		return m.renderSearch()
	case ResultsView:
		return m.renderList(m.results, m.keys.add, m.keys.tab, m.keys.search, m.keys.quit)
	case DraftView:
		return m.renderList(m.draftList, m.keys.remove, m.keys.rename, m.keys.save, m.keys.tab, m.keys.quit)
	case RenameView:
		return m.renderRename()
	case SavingView:
		return m.renderSaving()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) renderAuth() string {
	title := styles.title.Render("Jamming")
	if m.err != nil {
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.retry, m.keys.quit})
		return fmt.Sprintf("%s\n%s\n\n%s", title, styles.err.Render(fmt.Sprintf("Authorization failed: %v", m.err)), helpView)
	}
	if m.authURL == "" {
		return fmt.Sprintf("%s\nConnecting to Spotify...", title)
	}
	return fmt.Sprintf("%s\nApprove access in your browser. If it did not open, visit:\n\n%s\n\n%s",
		title, styles.link.Render(m.authURL), styles.help.Render("Waiting for authorization..."))
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Search Spotify")
	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		m.keys.tab,
		m.keys.back,
	})
	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n\n%s", title, m.input.View(), m.renderDraftSummary(), m.renderStatus(), helpView)
}

func (m *Model) renderList(l list.Model, bindings ...key.Binding) string {
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", l.View(), m.renderDraftSummary(), m.renderStatus(), m.help.ShortHelpView(bindings))
}

func (m *Model) renderRename() string {
	title := styles.title.Render("Rename Playlist")
	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		m.keys.back,
	})
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, m.nameInput.View(), m.renderStatus(), helpView)
}

func (m *Model) renderSaving() string {
	title := styles.title.Render("Saving Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.Validate:
		phase = "Checking playlist..."
	case tasks.SavePlaylist:
		phase = fmt.Sprintf("Saving to Spotify (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.RecordHistory:
		phase = "Recording history..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
		m.keys.quit,
	})

	if m.err != nil {
		msg := styles.err.Render(fmt.Sprintf("Save failed: %v", m.err))
		var saveErr *services.SaveError
		if tasks.IsPartial(m.err) && errors.As(m.err, &saveErr) {
			msg = fmt.Sprintf("%s\n\n%s",
				styles.warn.Render("Playlist created, but not all tracks were added. Your draft was kept."),
				styles.help.Render(fmt.Sprintf("Playlist %s stopped at %s: %v", saveErr.PlaylistID, saveErr.Step, saveErr.Err)))
		}
		return fmt.Sprintf("%s\n\n%s", msg, helpView)
	}

	if m.result == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	title := styles.ok.Render("✓ Playlist Saved!")
	info := fmt.Sprintf("\nName: %s\nTracks: %d\nSpotify ID: %s", m.result.Name, m.result.TrackCount, m.result.PlaylistID)
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}

func (m *Model) renderDraftSummary() string {
	return fmt.Sprintf("%s %s", styles.badge.Render(fmt.Sprintf("%d", m.draft.Len())),
		styles.help.Render(fmt.Sprintf("Playlist: %s", m.draft.Name())))
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	return styles.warn.Render(m.status)
}
