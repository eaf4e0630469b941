package panel

import (
	"strconv"
	"strings"
	"sync"
)

// PanelMarker prefixes the hash of entries that deep-link to a panel.
// Entries pushed by Manager use plain unique hashes.
const PanelMarker = "#panel-"

// Entry is one navigation entry.
type Entry struct {
	Hash    string // Empty for the base entry
	PanelID string // Panel whose opening pushed the entry
}

// HasPanelMarker reports whether the entry deep-links to a panel.
func (e Entry) HasPanelMarker() bool {
	return strings.HasPrefix(e.Hash, PanelMarker)
}

// MemoryHistory is an in-process History. It starts with one base entry.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []Entry
	seq     int
}

// NewMemoryHistory returns a history holding only the base entry.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{entries: []Entry{{}}}
}

// Push implements History.
func (h *MemoryHistory) Push(panelID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	h.entries = append(h.entries, Entry{Hash: "#" + strconv.Itoa(h.seq), PanelID: panelID})
}

// PushEntry adds an arbitrary entry, such as a panel deep link.
func (h *MemoryHistory) PushEntry(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
}

// Collapse implements History by dropping every entry above the base.
func (h *MemoryHistory) Collapse() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = h.entries[:1]
}

// Back pops the current entry and returns the one navigated to. It
// reports false when already at the base entry.
func (h *MemoryHistory) Back() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) <= 1 {
		return h.entries[0], false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.entries[len(h.entries)-1], true
}

// Current returns the current entry.
func (h *MemoryHistory) Current() Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[len(h.entries)-1]
}

// Len returns the number of entries including the base.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// GoBack pops one entry from h and routes it through m. It reports whether
// the navigation was consumed by closing a panel.
func GoBack(h *MemoryHistory, m *Manager) bool {
	entry, ok := h.Back()
	if !ok {
		return false
	}
	return m.HandleBack(entry.HasPanelMarker())
}
