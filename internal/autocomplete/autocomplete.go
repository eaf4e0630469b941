// Package autocomplete implements a filter-as-you-type suggestion widget
// that is independent of any UI toolkit. It binds to a TextField and a
// ListSurface and drives them through a two-state machine (Idle, Showing).
package autocomplete

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/runger/fooddiary/internal/candidate"
)

// Defaults applied by New.
const (
	DefaultDebounceDelay   = 50 * time.Millisecond
	DefaultEmptyQueryLimit = 5
	DefaultDisplayField    = candidate.FieldName
)

// ErrUnbound is returned by New when the input or the list is missing.
var ErrUnbound = errors.New("autocomplete: input and suggestion list are both required")

// State is the widget's visible state.
type State int

const (
	Idle    State = iota // Suggestions hidden
	Showing              // Suggestions rendered, zero or one active
)

func (s State) String() string {
	if s == Showing {
		return "showing"
	}
	return "idle"
}

// Key is a navigation key understood by HandleKey.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyEnter
	KeyEscape
)

// TextField is the bound input.
type TextField interface {
	Value() string
	SetValue(string)
}

// ListSurface is the bound suggestion container.
type ListSurface interface {
	// Render replaces the whole content with items.
	Render(items []Item)
	Show()
	Hide()
	// SetActive highlights index and scrolls it into view; -1 clears.
	SetActive(index int)
}

// Container is optionally implemented by a TextField or ListSurface to
// answer whether a pointer target lies inside it. Without it, only the
// widget itself counts as inside.
type Container interface {
	Contains(target any) bool
}

// Item is one rendered suggestion.
type Item struct {
	Value string            // Written into the input on commit
	Label string            // Template output
	Data  map[string]string // Auxiliary attributes passed to OnSelect
}

// SelectFunc receives the committed value and the item's auxiliary data.
type SelectFunc func(value string, data map[string]string)

// Template renders a candidate's label.
type Template func(c candidate.Candidate) string

// Config configures an AutoComplete. Input and List are required.
type Config struct {
	// Input is the bound text field. Required.
	Input TextField
	// List is the bound suggestion surface. Required.
	List ListSurface
	// Source yields candidates on every refresh. Default: no candidates.
	Source candidate.Source
	// DisplayField names the candidate field that is matched against the
	// query and written into Input on commit. Default "name".
	DisplayField string
	// Template renders each suggestion label. Default: the display field.
	Template Template
	// OnSelect is called once per commit. Optional; more listeners can be
	// added with AutoComplete.OnSelect.
	OnSelect SelectFunc
	// DebounceDelay is the quiet period after the last HandleInput before
	// suggestions refresh. Default 50ms; negative is rejected.
	DebounceDelay time.Duration
	// EmptyQueryLimit caps the suggestions shown for a blank query.
	// Default 5.
	EmptyQueryLimit int
	// Scheduler runs debounced refreshes. Default: time.AfterFunc, which
	// calls back on its own goroutine.
	Scheduler Scheduler
	// Logger receives warnings. Default slog.Default().
	Logger *slog.Logger
}

// AutoComplete is one bound suggestion widget.
type AutoComplete struct {
	mu sync.Mutex

	input    TextField
	list     ListSurface
	source   candidate.Source
	field    string
	template Template
	delay    time.Duration
	limit    int
	sched    Scheduler
	logger   *slog.Logger

	listeners []SelectFunc

	state  State
	items  []Item
	active int // -1 when no item is active

	debounceID    uint64
	cancelPending func()
	destroyed     bool
}

// New validates cfg and returns a bound AutoComplete. A missing Input or
// List returns ErrUnbound after logging a warning.
func New(cfg Config) (*AutoComplete, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Input == nil || cfg.List == nil {
		logger.Warn("autocomplete not initialized: missing input or suggestion list",
			"has_input", cfg.Input != nil, "has_list", cfg.List != nil)
		return nil, ErrUnbound
	}
	if cfg.DebounceDelay < 0 {
		return nil, errors.New("autocomplete: debounce delay must be >= 0")
	}
	if cfg.EmptyQueryLimit < 0 {
		return nil, errors.New("autocomplete: empty query limit must be >= 0")
	}

	ac := &AutoComplete{
		input:    cfg.Input,
		list:     cfg.List,
		source:   cfg.Source,
		field:    cfg.DisplayField,
		template: cfg.Template,
		delay:    cfg.DebounceDelay,
		limit:    cfg.EmptyQueryLimit,
		sched:    cfg.Scheduler,
		logger:   logger,
		active:   -1,
	}
	if ac.source == nil {
		ac.source = func() []candidate.Candidate { return nil }
	}
	if ac.field == "" {
		ac.field = DefaultDisplayField
	}
	if ac.template == nil {
		field := ac.field
		ac.template = func(c candidate.Candidate) string {
			v, _ := c.Field(field)
			return v
		}
	}
	if ac.delay == 0 {
		ac.delay = DefaultDebounceDelay
	}
	if ac.limit == 0 {
		ac.limit = DefaultEmptyQueryLimit
	}
	if ac.sched == nil {
		ac.sched = TimerScheduler{}
	}
	if cfg.OnSelect != nil {
		ac.listeners = append(ac.listeners, cfg.OnSelect)
	}
	return ac, nil
}

// OnSelect registers an additional selection listener.
func (a *AutoComplete) OnSelect(fn SelectFunc) {
	if fn == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// State returns the current state.
func (a *AutoComplete) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Active returns the active item index, or -1.
func (a *AutoComplete) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Items returns a copy of the currently rendered items.
func (a *AutoComplete) Items() []Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Item, len(a.items))
	copy(out, a.items)
	return out
}

// HandleInput schedules a refresh for text after the debounce delay. Each
// call replaces the previously scheduled refresh.
func (a *AutoComplete) HandleInput(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return
	}
	if a.cancelPending != nil {
		a.cancelPending()
	}
	a.debounceID++
	id := a.debounceID
	a.cancelPending = a.sched.Schedule(a.delay, func() {
		a.mu.Lock()
		stale := id != a.debounceID || a.destroyed
		if !stale {
			a.cancelPending = nil
		}
		a.mu.Unlock()
		if stale {
			return
		}
		a.FilterAndRender(text)
	})
}

// HandleFocus refreshes immediately with the input's current value.
func (a *AutoComplete) HandleFocus() {
	a.FilterAndRender(a.input.Value())
}

// FilterAndRender recomputes candidates for query and renders them. A
// non-blank query keeps candidates whose display field contains it
// case-insensitively; a blank query keeps the first EmptyQueryLimit
// candidates. Candidates without a display value never match. It returns
// the kept candidates.
func (a *AutoComplete) FilterAndRender(query string) []candidate.Candidate {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return nil
	}

	kept := a.filter(a.source(), query)
	if len(kept) == 0 {
		a.hideLocked()
		return nil
	}

	items := make([]Item, len(kept))
	for i, c := range kept {
		value, _ := c.Field(a.field)
		items[i] = Item{
			Value: value,
			Label: a.template(c),
			Data:  a.itemData(c, value),
		}
	}
	a.items = items
	a.active = -1
	a.list.Render(items)
	a.list.Show()
	a.state = Showing
	return kept
}

func (a *AutoComplete) filter(all []candidate.Candidate, query string) []candidate.Candidate {
	q := strings.ToLower(strings.TrimSpace(query))
	var kept []candidate.Candidate
	for _, c := range all {
		v, ok := c.Field(a.field)
		if !ok {
			continue
		}
		if q == "" {
			kept = append(kept, c)
			if len(kept) == a.limit {
				break
			}
			continue
		}
		if strings.Contains(strings.ToLower(v), q) {
			kept = append(kept, c)
		}
	}
	return kept
}

func (a *AutoComplete) itemData(c candidate.Candidate, value string) map[string]string {
	data := make(map[string]string, len(c.Fields)+4)
	for k, v := range c.Fields {
		data[k] = v
	}
	data["value"] = value
	data[a.field] = value
	data[candidate.FieldCount] = strconv.Itoa(c.Count)
	data[candidate.FieldScore] = strconv.Itoa(c.Score)
	data[candidate.FieldFavorite] = strconv.FormatBool(c.IsFavorite)
	return data
}

// HandleKey applies a navigation key and reports whether it was consumed.
// Keys have no effect while Idle.
func (a *AutoComplete) HandleKey(k Key) bool {
	a.mu.Lock()
	if a.destroyed || a.state != Showing || len(a.items) == 0 {
		a.mu.Unlock()
		return false
	}

	n := len(a.items)
	switch k {
	case KeyDown:
		if a.active < n-1 {
			a.active++
		} else {
			a.active = 0
		}
		a.list.SetActive(a.active)
		a.mu.Unlock()
		return true

	case KeyUp:
		if a.active > 0 {
			a.active--
		} else {
			a.active = n - 1
		}
		a.list.SetActive(a.active)
		a.mu.Unlock()
		return true

	case KeyEnter:
		if a.active < 0 {
			a.mu.Unlock()
			return true
		}
		item, listeners := a.commitLocked(a.active)
		a.mu.Unlock()
		notifySelect(listeners, item)
		return true

	case KeyEscape:
		a.hideLocked()
		a.mu.Unlock()
		return true
	}
	a.mu.Unlock()
	return false
}

// Click commits the rendered item at index: the value is written into the
// input, the list is hidden, then every listener runs once.
func (a *AutoComplete) Click(index int) {
	a.mu.Lock()
	if a.destroyed || a.state != Showing || index < 0 || index >= len(a.items) {
		a.mu.Unlock()
		return
	}
	item, listeners := a.commitLocked(index)
	a.mu.Unlock()
	notifySelect(listeners, item)
}

// commitLocked writes the item at index into the input and hides the list.
// Listeners are returned so they can run after the lock is released.
func (a *AutoComplete) commitLocked(index int) (Item, []SelectFunc) {
	item := a.items[index]
	a.input.SetValue(item.Value)
	a.hideLocked()
	listeners := make([]SelectFunc, len(a.listeners))
	copy(listeners, a.listeners)
	return item, listeners
}

func notifySelect(listeners []SelectFunc, item Item) {
	for _, fn := range listeners {
		fn(item.Value, item.Data)
	}
}

// HandlePointer hides the suggestions when target is outside both the
// input and the list.
func (a *AutoComplete) HandlePointer(target any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed {
		return
	}
	if contains(a.input, target) || contains(a.list, target) {
		return
	}
	a.hideLocked()
}

// Hide forces the Idle state.
func (a *AutoComplete) Hide() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hideLocked()
}

func (a *AutoComplete) hideLocked() {
	a.active = -1
	a.state = Idle
	a.list.Hide()
}

// Destroy cancels pending work and detaches the widget; later events are
// ignored.
func (a *AutoComplete) Destroy() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancelPending != nil {
		a.cancelPending()
		a.cancelPending = nil
	}
	a.destroyed = true
	a.listeners = nil
}

func contains(widget, target any) bool {
	if target == nil {
		return false
	}
	if c, ok := widget.(Container); ok {
		return c.Contains(target)
	}
	return widget == target
}
