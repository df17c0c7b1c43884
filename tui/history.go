package tui

import "slices"

// History keeps recent commands for Up/Down recall.
type History struct {
	entries []string
	max     int
	cursor  int // -1 when not navigating
}

// NewHistory creates a history buffer holding at most max entries.
func NewHistory(max int) *History {
	return &History{
		entries: make([]string, 0, max),
		max:     max,
		cursor:  -1,
	}
}

// Push records a command. Blank lines and consecutive repeats are skipped.
func (h *History) Push(cmd string) {
	if cmd == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	h.entries = append(h.entries, cmd)
	if over := len(h.entries) - h.max; over > 0 {
		h.entries = slices.Delete(h.entries, 0, over)
	}
}

// Len reports the number of stored entries.
func (h *History) Len() int { return len(h.entries) }

// Prev steps back to an older entry, stopping at the oldest.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next steps forward. Moving past the newest entry returns ("", false) and
// leaves navigation.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= len(h.entries) {
		h.cursor = -1
		return "", false
	}
	return h.entries[h.cursor], true
}

// ResetCursor leaves navigation mode.
func (h *History) ResetCursor() {
	h.cursor = -1
}
