// Package panel manages a stack of modal panels that share one backdrop.
// Opening a panel records a synthetic history entry so that a back
// navigation closes the topmost panel instead of leaving the screen.
package panel

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrNoSurface is returned by NewManager when no Surface is given.
var ErrNoSurface = errors.New("panel: surface is required")

// Surface renders panels and the shared backdrop.
type Surface interface {
	// HasPanel reports whether id names a known panel.
	HasPanel(id string) bool
	// ShowPanel makes id visible and resets its scroll position.
	ShowPanel(id string)
	HidePanel(id string)
	ShowBackdrop()
	HideBackdrop()
	// LockScroll suppresses scrolling of the content behind the panels.
	LockScroll()
	UnlockScroll()
}

// History records navigation entries.
type History interface {
	// Push adds a synthetic entry for an opened panel.
	Push(panelID string)
	// Collapse removes the synthetic entries once no panel is open.
	Collapse()
}

// Key is a key event relevant to panels.
type Key int

const (
	KeyOther Key = iota
	KeyEscape
)

// Change describes a panel opening or closing.
type Change struct {
	ID    string
	Open  bool
	Stack []string // Open ids after the change, oldest first
}

// Manager tracks open panels. Ids are unique in the stack.
type Manager struct {
	mu        sync.Mutex
	surface   Surface
	history   History
	logger    *slog.Logger
	stack     []string
	listeners []func(Change)
}

// NewManager returns a Manager over surface. A nil history disables
// history tracking; a nil logger uses slog.Default().
func NewManager(surface Surface, history History, logger *slog.Logger) (*Manager, error) {
	if surface == nil {
		return nil, ErrNoSurface
	}
	if history == nil {
		history = nopHistory{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{surface: surface, history: history, logger: logger}, nil
}

// OnPanelChange registers fn to run after every open and close.
func (m *Manager) OnPanelChange(fn func(Change)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Open shows id on top of the stack. It is a no-op when id is already open
// or unknown to the surface.
func (m *Manager) Open(id string) {
	m.mu.Lock()
	if m.indexLocked(id) >= 0 {
		m.mu.Unlock()
		return
	}
	if !m.surface.HasPanel(id) {
		m.mu.Unlock()
		m.logger.Debug("panel open ignored: unknown panel", "panel", id)
		return
	}

	m.surface.ShowPanel(id)
	m.stack = append(m.stack, id)
	m.surface.ShowBackdrop()
	m.surface.LockScroll()
	m.history.Push(id)
	change := m.changeLocked(id, true)
	listeners := m.listeners
	m.mu.Unlock()

	m.logger.Debug("panel opened", "panel", id, "depth", len(change.Stack))
	notify(listeners, change)
}

// Close hides id and removes it from the stack wherever it is. Closing the
// last open panel hides the backdrop, restores scrolling and collapses the
// synthetic history entries.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return
	}

	m.surface.HidePanel(id)
	m.stack = append(m.stack[:idx], m.stack[idx+1:]...)
	if len(m.stack) == 0 {
		m.surface.HideBackdrop()
		m.surface.UnlockScroll()
		m.history.Collapse()
	} else {
		m.surface.ShowBackdrop()
	}
	change := m.changeLocked(id, false)
	listeners := m.listeners
	m.mu.Unlock()

	m.logger.Debug("panel closed", "panel", id, "depth", len(change.Stack))
	notify(listeners, change)
}

// CloseTopmost closes the most recently opened panel still open. It
// reports whether a panel was closed.
func (m *Manager) CloseTopmost() bool {
	m.mu.Lock()
	if len(m.stack) == 0 {
		m.mu.Unlock()
		return false
	}
	top := m.stack[len(m.stack)-1]
	m.mu.Unlock()

	m.Close(top)
	return true
}

// CloseAll closes every open panel, newest first.
func (m *Manager) CloseAll() {
	for m.CloseTopmost() {
	}
}

// HandleKey closes the topmost panel on Escape and reports whether the key
// was consumed.
func (m *Manager) HandleKey(k Key) bool {
	if k != KeyEscape {
		return false
	}
	return m.CloseTopmost()
}

// HandleBack reacts to a back navigation. When panels are open and the
// entry navigated to carries no panel marker, the topmost panel is closed
// and HandleBack returns true: the caller should cancel the navigation.
func (m *Manager) HandleBack(entryHasPanel bool) bool {
	if entryHasPanel || len(m.Stack()) == 0 {
		return false
	}
	return m.CloseTopmost()
}

// Stack returns the open ids, oldest first.
func (m *Manager) Stack() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.stack...)
}

// IsOpen reports whether id is open.
func (m *Manager) IsOpen(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexLocked(id) >= 0
}

// Top returns the topmost open panel.
func (m *Manager) Top() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.stack) == 0 {
		return "", false
	}
	return m.stack[len(m.stack)-1], true
}

func (m *Manager) indexLocked(id string) int {
	for i, open := range m.stack {
		if open == id {
			return i
		}
	}
	return -1
}

func (m *Manager) changeLocked(id string, open bool) Change {
	return Change{ID: id, Open: open, Stack: append([]string(nil), m.stack...)}
}

func notify(listeners []func(Change), c Change) {
	for _, fn := range listeners {
		fn(c)
	}
}

type nopHistory struct{}

func (nopHistory) Push(string) {}
func (nopHistory) Collapse()   {}
