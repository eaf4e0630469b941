package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// toastExpiredMsg dismisses the toast with the same id.
type toastExpiredMsg struct {
	id uint64
}

// toaster shows one message at a time and dismisses it after a delay. It
// implements diary.Notifier.
type toaster struct {
	mu       sync.Mutex
	tick     tickFunc
	duration time.Duration
	pending  []string
	message  string
	id       uint64
}

func newToaster(d time.Duration, tick tickFunc) *toaster {
	if tick == nil {
		tick = tea.Tick
	}
	return &toaster{duration: d, tick: tick}
}

// Notify queues msg. It is shown on the next Flush.
func (t *toaster) Notify(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, msg)
}

// Flush shows the newest queued message and returns the command that
// dismisses it. A newer message replaces the one on screen.
func (t *toaster) Flush() tea.Cmd {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pending) == 0 {
		return nil
	}
	t.message = t.pending[len(t.pending)-1]
	t.pending = nil
	t.id++
	id := t.id
	if t.duration <= 0 {
		return nil
	}
	return t.tick(t.duration, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

// Expire clears the toast if msg belongs to the one on screen.
func (t *toaster) Expire(msg toastExpiredMsg) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if msg.id == t.id {
		t.message = ""
	}
}

// Message returns the visible message, or "".
func (t *toaster) Message() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.message
}
