package models

// MaxHistory is how many undo snapshots are kept.
const MaxHistory = 5

type HistoryEntry struct {
	Teams  Roster `json:"teams"`
	Period int    `json:"period"`
}

func (h HistoryEntry) Equal(other HistoryEntry) bool {
	return h.Period == other.Period && h.Teams.Equal(other.Teams)
}

// History is a bounded undo stack, newest entry first.
type History struct {
	entries []HistoryEntry
	limit   int
}

func NewHistory(entries []HistoryEntry) *History {
	h := &History{limit: MaxHistory}
	h.Replace(entries)
	return h
}

// Record pushes a deep copy of the given state unless it equals the newest entry.
// It reports whether a push happened.
func (h *History) Record(teams Roster, period int) bool {
	entry := HistoryEntry{Teams: teams.Clone(), Period: period}
	if len(h.entries) > 0 && h.entries[0].Equal(entry) {
		return false
	}

	next := make([]HistoryEntry, 0, h.limit)
	next = append(next, entry)
	next = append(next, h.entries...)
	if len(next) > h.limit {
		next = next[:h.limit]
	}
	h.entries = next
	return true
}

// Undo pops the newest entry.
func (h *History) Undo() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	entry := h.entries[0]
	h.entries = h.entries[1:]
	return entry, true
}

// Prune keeps at most n newest entries.
func (h *History) Prune(n int) {
	if n < 0 {
		n = 0
	}
	if len(h.entries) > n {
		h.entries = h.entries[:n]
	}
}

// Replace swaps the whole stack, e.g. after hydration. Extra entries are dropped.
func (h *History) Replace(entries []HistoryEntry) {
	h.entries = make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		h.entries = append(h.entries, HistoryEntry{Teams: e.Teams.Clone(), Period: e.Period})
	}
	h.Prune(h.limit)
}

func (h *History) Clear() {
	h.entries = nil
}

func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a deep copy of the stack, newest first.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	for i, e := range h.entries {
		out[i] = HistoryEntry{Teams: e.Teams.Clone(), Period: e.Period}
	}
	return out
}
