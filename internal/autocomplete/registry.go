package autocomplete

import (
	"errors"
	"log/slog"
	"sync"
)

// Registry keeps named AutoComplete instances so other parts of the
// application can force a refresh, for example after the restaurant field
// changes the branch candidates.
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]*AutoComplete
	logger *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{byID: make(map[string]*AutoComplete), logger: logger}
}

// Register builds an AutoComplete from cfg and stores it under id. An
// unbound config is logged and skipped; the returned error is still
// ErrUnbound so callers can tell. Registering an existing id destroys the
// previous instance.
func (r *Registry) Register(id string, cfg Config) (*AutoComplete, error) {
	if cfg.Logger == nil {
		cfg.Logger = r.logger.With("autocomplete", id)
	}
	ac, err := New(cfg)
	if err != nil {
		if errors.Is(err, ErrUnbound) {
			r.logger.Warn("autocomplete skipped", "id", id)
		}
		return nil, err
	}

	r.mu.Lock()
	prev := r.byID[id]
	r.byID[id] = ac
	r.mu.Unlock()

	if prev != nil {
		prev.Destroy()
	}
	return ac, nil
}

// Get returns the instance registered under id.
func (r *Registry) Get(id string) (*AutoComplete, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ac, ok := r.byID[id]
	return ac, ok
}

// Refresh re-runs the filter of id with query. Unknown ids are ignored.
func (r *Registry) Refresh(id, query string) {
	if ac, ok := r.Get(id); ok {
		ac.FilterAndRender(query)
	}
}

// HandlePointer forwards a pointer event to every instance.
func (r *Registry) HandlePointer(target any) {
	r.mu.RLock()
	all := make([]*AutoComplete, 0, len(r.byID))
	for _, ac := range r.byID {
		all = append(all, ac)
	}
	r.mu.RUnlock()
	for _, ac := range all {
		ac.HandlePointer(target)
	}
}
