package viewer

import "github.com/google/uuid"

// HistoryEntry is one settled navigation. The path has the form
// "/<filename>" or "/<filename>#<hash>"; the id correlates log lines with
// the navigation that produced them.
type HistoryEntry struct {
	ID   string
	Path string
}

// History models the hosting environment's session history: an entry stack
// with a cursor, push/replace semantics and back/forward traversal.
type History struct {
	entries []HistoryEntry
	index   int
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{index: -1}
}

// Push records a new entry after the cursor, dropping any forward entries.
func (h *History) Push(path string) {
	h.entries = append(h.entries[:h.index+1], HistoryEntry{
		ID:   uuid.NewString(),
		Path: path,
	})
	h.index = len(h.entries) - 1
}

// Replace rewrites the current entry in place, keeping its position in the
// stack. On an empty history it behaves like Push.
func (h *History) Replace(path string) {
	if h.index < 0 {
		h.Push(path)
		return
	}
	h.entries[h.index].Path = path
}

// Back moves the cursor one entry back and returns it.
func (h *History) Back() (HistoryEntry, bool) {
	if h.index <= 0 {
		return HistoryEntry{}, false
	}
	h.index--
	return h.entries[h.index], true
}

// Forward moves the cursor one entry forward and returns it.
func (h *History) Forward() (HistoryEntry, bool) {
	if h.index+1 >= len(h.entries) {
		return HistoryEntry{}, false
	}
	h.index++
	return h.entries[h.index], true
}

// Current returns the entry under the cursor.
func (h *History) Current() (HistoryEntry, bool) {
	if h.index < 0 {
		return HistoryEntry{}, false
	}
	return h.entries[h.index], true
}

// Path returns the current entry's path, or "" for an empty history.
func (h *History) Path() string {
	e, ok := h.Current()
	if !ok {
		return ""
	}
	return e.Path
}

// Len reports how many entries the stack holds.
func (h *History) Len() int {
	return len(h.entries)
}
