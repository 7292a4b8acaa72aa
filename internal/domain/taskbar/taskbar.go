package taskbar

import (
	"unicode/utf8"

	"github.com/chungquantin/chaseOS/internal/domain/window"
)

// TitleLimit is the number of characters a taskbar button shows before
// the title is cut and suffixed with an ellipsis.
const TitleLimit = 20

// Action is what clicking a taskbar entry does.
type Action string

const (
	ActionRestore Action = "restore"
	ActionFocus   Action = "focus"
)

// Entry is one taskbar button.
type Entry struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Kind        window.Kind `json:"kind"`
	IsMinimized bool        `json:"isMinimized"`
	Focused     bool        `json:"focused"`
	Action      Action      `json:"action"`
}

// Entries projects records into taskbar buttons, keeping their order.
// focused is the id of the window that currently has focus, or "".
func Entries(records []window.Record, focused string, names Namer) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, Entry{
			ID:          rec.ID,
			Title:       Truncate(Name(rec.Content, names), TitleLimit),
			Kind:        rec.Content.Kind(),
			IsMinimized: rec.IsMinimized,
			Focused:     rec.ID == focused && !rec.IsMinimized,
			Action:      ActionFor(rec),
		})
	}
	return entries
}

// ActionFor returns the click action for a record.
func ActionFor(rec window.Record) Action {
	if rec.IsMinimized {
		return ActionRestore
	}
	return ActionFocus
}

// Truncate shortens s to limit characters followed by "...". Strings at or
// under the limit are returned unchanged.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

// RenderSet returns the records a renderer should draw, back to front:
// minimized windows are left out and maximized windows sort last.
func RenderSet(records []window.Record) []window.Record {
	out := make([]window.Record, 0, len(records))
	for _, rec := range records {
		if !rec.IsMinimized {
			out = append(out, rec)
		}
	}
	sortByRenderZ(out)
	return out
}
