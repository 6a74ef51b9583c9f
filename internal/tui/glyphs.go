package tui

import (
	"os"
	"strings"
	"sync"
)

// Terminal apps can't change the user's font; what we can do is pick between
// Unicode and ASCII glyph sets for timeline blocks and chrome, for terminals
// that don't render the block glyphs cleanly.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func applyGlyphPreference() {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("AETHEL_TUI_GLYPHS")))
	switch v {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	default:
		// Unknown value: ignore.
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphBlock() rune {
	if glyphs() == glyphSetASCII {
		return '#'
	}
	return '█'
}

func glyphRange() rune {
	if glyphs() == glyphSetASCII {
		return '='
	}
	return '▓'
}

func glyphMutation() rune {
	if glyphs() == glyphSetASCII {
		return '*'
	}
	return '◆'
}

func glyphCursor() rune {
	if glyphs() == glyphSetASCII {
		return '|'
	}
	return '┃'
}

func glyphMarker() rune {
	if glyphs() == glyphSetASCII {
		return '!'
	}
	return '▾'
}

func glyphLocked() string {
	if glyphs() == glyphSetASCII {
		return "[L]"
	}
	return "🔒"
}
