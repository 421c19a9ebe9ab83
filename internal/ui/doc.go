// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the Jamming web page: a search bar, a results list, and the playlist being built.
//  1. [AuthView] : Waits for Spotify authorization (prints the URL the browser was sent to)
//  2. [SearchView] : Enter a search term
//  3. [ResultsView] : Browse results and add tracks to the draft
//  4. [DraftView] : Review, remove, rename and save the draft
//  5. [SavingView] / [ResultView] : Save progress and outcome
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Save progress flows through a channel from the [tasks.PlaylistEngine], providing non-blocking status reporting.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, tab, /, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
