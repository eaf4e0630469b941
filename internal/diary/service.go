package diary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/runger/fooddiary/internal/storage"
)

// Service owns the live diary state and keeps it persisted. Every mutation
// replaces the affected collection instead of editing it in place, so
// slices handed out by Snapshot stay valid and unchanged.
type Service struct {
	mu    sync.RWMutex
	kv    storage.KV
	state State

	logger    *slog.Logger
	notifier  Notifier
	newID     func() string
	now       func() time.Time
	color     func() string
	listeners []func()
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNotifier sets where user-visible messages go.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithIDFunc replaces the id generator. Default uuid.NewString.
func WithIDFunc(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithColorFunc replaces the placeholder background color generator.
func WithColorFunc(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.color = fn
		}
	}
}

// NewService returns a Service with an empty state. Call Load to read the
// persisted diary.
func NewService(kv storage.KV, opts ...Option) *Service {
	s := &Service{
		kv:       kv,
		logger:   slog.Default(),
		notifier: nopNotifier{},
		newID:    uuid.NewString,
		now:      time.Now,
		color:    RandomColor,
		state:    State{PopularItems: PopularItems{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to run after every successful mutation or load.
func (s *Service) OnChange(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Load reads the persisted collections. Unreadable values fall back to
// empty collections; the failure is logged and the user notified, but Load
// itself does not fail. Popular items are recomputed, not read.
func (s *Service) Load(ctx context.Context) {
	next := State{
		MealLogs:  storage.LoadOrDefaultFunc(ctx, s.kv, storage.KeyMealLogs, []MealLog{}, s.loadFailed(storage.KeyMealLogs)),
		FavStores: storage.LoadOrDefaultFunc(ctx, s.kv, storage.KeyFavStores, []FavStore{}, s.loadFailed(storage.KeyFavStores)),
	}
	if next.MealLogs == nil {
		next.MealLogs = []MealLog{}
	}
	if next.FavStores == nil {
		next.FavStores = []FavStore{}
	}
	SortMealLogs(next.MealLogs)
	next.PopularItems = ComputePopularItems(next.MealLogs)

	s.mu.Lock()
	s.state = next
	listeners := s.listeners
	s.mu.Unlock()

	s.logger.Info("diary loaded", "meal_logs", len(next.MealLogs), "fav_stores", len(next.FavStores))
	notifyAll(listeners)
}

func (s *Service) loadFailed(key string) func(error) {
	return func(err error) {
		s.logger.Error("failed to read stored collection, using empty default", "key", key, "error", err)
		s.notifier.Notify("Failed to read saved data, using defaults")
	}
}

// Snapshot returns the current meal logs and favorite stores. The slices
// are never modified afterwards.
func (s *Service) Snapshot() ([]MealLog, []FavStore) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.MealLogs, s.state.FavStores
}

// State returns the current state. Its slices and map are never modified
// afterwards.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Meal returns the meal log with id.
func (s *Service) Meal(id string) (MealLog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.FindMeal(id)
}

// Store returns the favorite store with id.
func (s *Service) Store(id string) (FavStore, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.FindStore(id)
}

// SaveMeal creates m, or replaces the meal with the same id. A meal
// without an image gets a placeholder.
func (s *Service) SaveMeal(ctx context.Context, m MealLog) (MealLog, error) {
	m.Normalize()
	if err := m.Validate(); err != nil {
		return MealLog{}, err
	}
	if m.Img == "" {
		m.Img = PlaceholderImage(m.Restaurant, s.color())
	}

	s.mu.Lock()
	logs := make([]MealLog, 0, len(s.state.MealLogs)+1)
	replaced := false
	for _, existing := range s.state.MealLogs {
		if m.ID != "" && existing.ID == m.ID {
			logs = append(logs, m)
			replaced = true
			continue
		}
		logs = append(logs, existing)
	}
	if !replaced {
		if m.ID == "" {
			m.ID = s.newID()
		}
		logs = append(logs, m)
	}
	err := s.commitMealsLocked(ctx, logs)
	listeners := s.listeners
	s.mu.Unlock()
	if err != nil {
		return MealLog{}, err
	}

	s.logger.Info("meal saved", "id", m.ID, "restaurant", m.Restaurant, "updated", replaced)
	notifyAll(listeners)
	return m, nil
}

// CopyMeal saves a copy of the meal with id under a new id, dated now.
func (s *Service) CopyMeal(ctx context.Context, id string) (MealLog, error) {
	src, ok := s.Meal(id)
	if !ok {
		return MealLog{}, fmt.Errorf("meal %s: %w", id, ErrNotFound)
	}
	cp := src
	cp.ID = s.newID()
	cp.Date = LocalDateTime(s.now())
	cp.Menu = append([]MenuItem(nil), src.Menu...)
	return s.SaveMeal(ctx, cp)
}

// DeleteMeal removes the meal with id.
func (s *Service) DeleteMeal(ctx context.Context, id string) error {
	s.mu.Lock()
	logs := make([]MealLog, 0, len(s.state.MealLogs))
	for _, m := range s.state.MealLogs {
		if m.ID != id {
			logs = append(logs, m)
		}
	}
	if len(logs) == len(s.state.MealLogs) {
		s.mu.Unlock()
		return fmt.Errorf("meal %s: %w", id, ErrNotFound)
	}
	err := s.commitMealsLocked(ctx, logs)
	listeners := s.listeners
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Info("meal deleted", "id", id)
	notifyAll(listeners)
	return nil
}

// ClearMeals removes every meal log. Favorite stores are kept.
func (s *Service) ClearMeals(ctx context.Context) error {
	s.mu.Lock()
	n := len(s.state.MealLogs)
	err := s.commitMealsLocked(ctx, []MealLog{})
	listeners := s.listeners
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Info("meal logs cleared", "removed", n)
	notifyAll(listeners)
	return nil
}

// SaveFavStore creates f, or replaces the store with the same id.
func (s *Service) SaveFavStore(ctx context.Context, f FavStore) (FavStore, error) {
	f.Normalize()
	if err := f.Validate(); err != nil {
		return FavStore{}, err
	}

	s.mu.Lock()
	stores := make([]FavStore, 0, len(s.state.FavStores)+1)
	replaced := false
	for _, existing := range s.state.FavStores {
		if f.ID != "" && existing.ID == f.ID {
			stores = append(stores, f)
			replaced = true
			continue
		}
		stores = append(stores, existing)
	}
	if !replaced {
		if f.ID == "" {
			f.ID = s.newID()
		}
		stores = append(stores, f)
	}
	err := s.commitStoresLocked(ctx, stores)
	listeners := s.listeners
	s.mu.Unlock()
	if err != nil {
		return FavStore{}, err
	}

	s.logger.Info("favorite store saved", "id", f.ID, "name", f.Name, "updated", replaced)
	notifyAll(listeners)
	return f, nil
}

// DeleteFavStore removes the favorite store with id.
func (s *Service) DeleteFavStore(ctx context.Context, id string) error {
	s.mu.Lock()
	stores := make([]FavStore, 0, len(s.state.FavStores))
	for _, f := range s.state.FavStores {
		if f.ID != id {
			stores = append(stores, f)
		}
	}
	if len(stores) == len(s.state.FavStores) {
		s.mu.Unlock()
		return fmt.Errorf("favorite store %s: %w", id, ErrNotFound)
	}
	err := s.commitStoresLocked(ctx, stores)
	listeners := s.listeners
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Info("favorite store deleted", "id", id)
	notifyAll(listeners)
	return nil
}

// ReplaceAll overwrites both collections, as an import does. Popular items
// are recomputed from meals. Blank or repeated ids are replaced with fresh
// ones. If either write fails the previous diary is kept, in memory and in
// storage.
func (s *Service) ReplaceAll(ctx context.Context, meals []MealLog, stores []FavStore) error {
	logs := append([]MealLog{}, meals...)
	favs := append([]FavStore{}, stores...)

	seen := make(map[string]bool, len(logs))
	for i := range logs {
		if logs[i].ID == "" || seen[logs[i].ID] {
			logs[i].ID = s.newID()
		}
		seen[logs[i].ID] = true
	}
	clear(seen)
	for i := range favs {
		if favs[i].ID == "" || seen[favs[i].ID] {
			favs[i].ID = s.newID()
		}
		seen[favs[i].ID] = true
	}

	s.mu.Lock()
	prevFavs := s.state.FavStores
	if err := s.persistLocked(ctx, storage.KeyFavStores, favs); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.commitMealsLocked(ctx, logs); err != nil {
		if rerr := storage.SaveCompressed(ctx, s.kv, storage.KeyFavStores, prevFavs); rerr != nil {
			s.logger.Error("failed to restore favorite stores", "error", rerr)
			err = errors.Join(err, fmt.Errorf("restore %s: %w", storage.KeyFavStores, rerr))
		}
		s.mu.Unlock()
		return err
	}
	s.state.FavStores = favs
	listeners := s.listeners
	s.mu.Unlock()

	s.logger.Info("diary replaced", "meal_logs", len(logs), "fav_stores", len(favs))
	notifyAll(listeners)
	return nil
}

// commitMealsLocked sorts logs, persists them with the recomputed popular
// items and installs both. The state is unchanged if the logs cannot be
// persisted.
func (s *Service) commitMealsLocked(ctx context.Context, logs []MealLog) error {
	SortMealLogs(logs)
	if err := s.persistLocked(ctx, storage.KeyMealLogs, logs); err != nil {
		return err
	}
	popular := ComputePopularItems(logs)
	if err := s.persistLocked(ctx, storage.KeyPopularItems, popular); err != nil {
		// Popular items are recomputed on load.
		s.logger.Warn("popular items not persisted", "error", err)
	}
	s.state.MealLogs = logs
	s.state.PopularItems = popular
	return nil
}

func (s *Service) commitStoresLocked(ctx context.Context, stores []FavStore) error {
	if err := s.persistLocked(ctx, storage.KeyFavStores, stores); err != nil {
		return err
	}
	s.state.FavStores = stores
	return nil
}

func (s *Service) persistLocked(ctx context.Context, key string, v any) error {
	if err := storage.SaveCompressed(ctx, s.kv, key, v); err != nil {
		s.logger.Error("failed to persist", "key", key, "error", err)
		s.notifier.Notify("Failed to save data, please retry")
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

func notifyAll(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
