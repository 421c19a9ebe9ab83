package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

const (
	brandGreen = "#1DB954"
	okGreen    = "#04B575"
	errRed     = "#E22134"
	warnAmber  = "#FFA42B"
	mutedGray  = "#727272"
	linkBlue   = "#2E77D0"
)

var styles = newTheme()

// theme holds the styles shared by every view.
type theme struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	link  lipgloss.Style
	badge lipgloss.Style
}

func newTheme() *theme {
	return &theme{
		title: bold(brandGreen).MarginBottom(1),
		ok:    bold(okGreen),
		err:   bold(errRed),
		warn:  fg(warnAmber),
		help:  fg(mutedGray).Italic(true),
		link:  fg(linkBlue).Underline(true),
		badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color(brandGreen)).
			Padding(0, 1),
	}
}

// trackDelegate is the default list delegate recolored so the selected track uses the brand color.
func trackDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(lipgloss.Color(brandGreen)).
		BorderForeground(lipgloss.Color(brandGreen))
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(lipgloss.Color(okGreen)).
		BorderForeground(lipgloss.Color(brandGreen))
	return d
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func bold(color string) lipgloss.Style {
	return fg(color).Bold(true)
}
