// Package docs serves the embedded help topics shown by `aethel docs`.
package docs

import (
	"embed"
	"slices"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

// Topic is one help page. Name is what the user types; Title is the line
// shown in the topic listing.
type Topic struct {
	Name  string `json:"name"`
	Title string `json:"title"`

	aliases []string
}

// Reading order, not file order: the data model first, then the editor,
// then history.
var topics = []Topic{
	{Name: "timeline", Title: "Objects, placements, tracks and the cursor"},
	{Name: "editing", Title: "Tools, gestures and snapping in the editor", aliases: []string{"editor", "tui"}},
	{Name: "undo", Title: "How undo and redo work", aliases: []string{"redo", "history"}},
}

// Topics returns every help topic in reading order.
func Topics() []Topic {
	return slices.Clone(topics)
}

// Names returns the topic names, for error text.
func Names() []string {
	out := make([]string, len(topics))
	for i, tp := range topics {
		out[i] = tp.Name
	}
	return out
}

// Get returns the markdown body for a topic name or one of its aliases.
func Get(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", false
	}
	for _, tp := range topics {
		if tp.Name != name && !slices.Contains(tp.aliases, name) {
			continue
		}
		b, err := contentFS.ReadFile("content/" + tp.Name + ".md")
		if err != nil {
			return "", false
		}
		return string(b), true
	}
	return "", false
}
