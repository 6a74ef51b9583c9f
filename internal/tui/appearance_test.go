package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestApplyAppearancePreference(t *testing.T) {
	oldProfile := lipgloss.ColorProfile()
	oldBG := lipgloss.HasDarkBackground()
	t.Cleanup(func() {
		lipgloss.SetColorProfile(oldProfile)
		lipgloss.SetHasDarkBackground(oldBG)
	})

	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Setenv("AETHEL_THEME", "light")
	applyAppearancePreference(true)
	if lipgloss.ColorProfile() != termenv.Ascii {
		t.Fatalf("no-color must force the ascii profile; got %v", lipgloss.ColorProfile())
	}
	if lipgloss.HasDarkBackground() {
		t.Fatalf("light theme must clear dark background")
	}

	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Setenv("AETHEL_THEME", "dark")
	applyAppearancePreference(false)
	if lipgloss.ColorProfile() != termenv.ANSI256 {
		t.Fatalf("color must stay on; got %v", lipgloss.ColorProfile())
	}
	if !lipgloss.HasDarkBackground() {
		t.Fatalf("dark theme must set dark background")
	}
}
