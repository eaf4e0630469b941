package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// debounceMsg carries a scheduled autocomplete refresh back into Update.
type debounceMsg struct {
	id uint64
	fn func()
}

type tickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// tickScheduler implements autocomplete.Scheduler with tea.Tick, so
// debounced refreshes run on the Update goroutine like every other
// mutation of the model.
type tickScheduler struct {
	mu        sync.Mutex
	tick      tickFunc
	seq       uint64
	pending   []tea.Cmd
	cancelled map[uint64]bool
}

func newTickScheduler(tick tickFunc) *tickScheduler {
	if tick == nil {
		tick = tea.Tick
	}
	return &tickScheduler{tick: tick, cancelled: make(map[uint64]bool)}
}

// Schedule implements autocomplete.Scheduler. The timer starts once Drain
// hands the command to the runtime.
func (s *tickScheduler) Schedule(delay time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := s.seq
	s.pending = append(s.pending, s.tick(delay, func(time.Time) tea.Msg {
		return debounceMsg{id: id, fn: fn}
	}))
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.cancelled[id] = true
	}
}

// Drain returns the commands scheduled since the last call.
func (s *tickScheduler) Drain() tea.Cmd {
	s.mu.Lock()
	cmds := s.pending
	s.pending = nil
	s.mu.Unlock()
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Fire runs the refresh in msg unless it was cancelled.
func (s *tickScheduler) Fire(msg debounceMsg) {
	s.mu.Lock()
	cancelled := s.cancelled[msg.id]
	delete(s.cancelled, msg.id)
	s.mu.Unlock()
	if cancelled {
		return
	}
	msg.fn()
}
