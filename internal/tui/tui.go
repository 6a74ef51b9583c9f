package tui

import (
	"os"
	"strings"

	"aethel-cli/internal/history"
	"aethel-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Run starts the interactive editor. noColor comes from the parsed config
// (AETHEL_NO_COLOR); the config layer owns env parsing.
func Run(db *store.DB, hist *history.History, s store.Store, noColor bool) error {
	applyAppearancePreference(noColor)
	m := newAppModel(db, hist, s)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

// applyAppearancePreference honors the no-color preference and AETHEL_THEME
// before any styles are rendered. Background auto-detection can misfire under
// tmux and ssh, so an explicit theme always wins.
func applyAppearancePreference(noColor bool) {
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("AETHEL_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	}
}
