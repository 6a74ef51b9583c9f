package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme/palette helpers.
//
// The TUI must remain readable on both light and dark terminal backgrounds,
// so semantic colors are lipgloss.AdaptiveColor pairs and "faint" styling is
// only applied on dark backgrounds (faint text on light terminals often
// becomes illegible).

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorAccent     lipgloss.TerminalColor = ac("27", "62") // blue
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorSurfaceBg  lipgloss.TerminalColor = ac("255", "235")
	colorSurfaceFg  lipgloss.TerminalColor = ac("235", "252")
	colorCursor     lipgloss.TerminalColor = ac("160", "203") // red-ish playhead
	colorMarker     lipgloss.TerminalColor = ac("94", "179")
	colorLockedFg   lipgloss.TerminalColor = ac("244", "246")
)

var (
	styleHeader    = lipgloss.NewStyle().Bold(true)
	styleStatus    = lipgloss.NewStyle().Foreground(colorMuted)
	styleTrackName = lipgloss.NewStyle().Foreground(colorSurfaceFg)
	styleRuler     = lipgloss.NewStyle().Foreground(colorMuted)
	styleCursorCol = lipgloss.NewStyle().Foreground(colorCursor).Bold(true)
	styleMarkerCol = lipgloss.NewStyle().Foreground(colorMarker)
	styleSelected  = lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg).Bold(true)
	styleModalBox  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// placementStyle colors a block with the object's effective color. Falls back
// to the accent when the object has none.
func placementStyle(hex string, selected, locked bool) lipgloss.Style {
	st := lipgloss.NewStyle()
	if selected {
		return styleSelected
	}
	if hex != "" {
		st = st.Foreground(lipgloss.Color(hex))
	} else {
		st = st.Foreground(colorAccent)
	}
	if locked {
		st = faintIfDark(st.Foreground(colorLockedFg))
	}
	return st
}
