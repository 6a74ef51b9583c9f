package format

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"aethel-cli/internal/model"
	"aethel-cli/internal/store"
)

// Manuscript export: the rendered objects in display order, partitioned by
// milestones. Each milestone contributes a heading (its export title, falling
// back to its name) and an optional separator line before the next part.

const partSeparator = "* * *"

type ManuscriptPart struct {
	Title     string         `json:"title"`
	Separator string         `json:"separator,omitempty"`
	Objects   []model.Object `json:"objects"`
}

// BuildManuscript partitions the rendered objects around the milestones.
// A milestone with AfterIndex n closes the part after the n-th rendered
// object (0-based); milestones are applied in AfterIndex order.
func BuildManuscript(db *store.DB) []ManuscriptPart {
	rendered := db.RenderedObjects()

	miles := append([]model.Milestone{}, db.Milestones...)
	sort.SliceStable(miles, func(i, j int) bool { return miles[i].AfterIndex < miles[j].AfterIndex })

	var parts []ManuscriptPart
	cur := ManuscriptPart{}
	mi := 0
	for i, obj := range rendered {
		cur.Objects = append(cur.Objects, obj)
		for mi < len(miles) && miles[mi].AfterIndex == i {
			m := miles[mi]
			title := m.ExportTitle
			if title == "" {
				title = m.Name
			}
			cur.Title = title
			if m.ExportSeparator {
				cur.Separator = partSeparator
			}
			parts = append(parts, cur)
			cur = ManuscriptPart{}
			mi++
		}
	}
	if len(cur.Objects) > 0 || len(parts) == 0 {
		parts = append(parts, cur)
	}
	// Trailing milestones past the last rendered object still get their part
	// boundary metadata applied to the final part.
	for mi < len(miles) {
		m := miles[mi]
		last := &parts[len(parts)-1]
		if last.Title == "" {
			if m.ExportTitle != "" {
				last.Title = m.ExportTitle
			} else {
				last.Title = m.Name
			}
			if m.ExportSeparator {
				last.Separator = partSeparator
			}
		}
		mi++
	}
	return parts
}

// WriteMarkdown renders a manuscript payload (or any []ManuscriptPart) as
// markdown. Non-manuscript payloads fall back to pretty JSON.
func WriteMarkdown(w io.Writer, v any) error {
	parts, ok := extractParts(v)
	if !ok {
		return WriteJSON(w, v, true)
	}
	for i, part := range parts {
		if part.Title != "" {
			if _, err := fmt.Fprintf(w, "# %s\n\n", part.Title); err != nil {
				return err
			}
		}
		for _, obj := range part.Objects {
			if _, err := fmt.Fprintf(w, "## %s\n\n", obj.Name); err != nil {
				return err
			}
			if obj.ContentRef != "" {
				if _, err := fmt.Fprintf(w, "%s\n\n", strings.TrimSpace(obj.ContentRef)); err != nil {
					return err
				}
			}
		}
		if part.Separator != "" && i < len(parts)-1 {
			if _, err := fmt.Fprintf(w, "%s\n\n", part.Separator); err != nil {
				return err
			}
		}
	}
	return nil
}

func extractParts(v any) ([]ManuscriptPart, bool) {
	switch t := v.(type) {
	case []ManuscriptPart:
		return t, true
	case map[string]any:
		if data, ok := t["data"].([]ManuscriptPart); ok {
			return data, true
		}
	}
	return nil, false
}
