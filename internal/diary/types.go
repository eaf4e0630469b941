// Package diary holds the food diary's data model: meal logs, favorite
// stores and the derived popular-dish view.
package diary

import "errors"

var (
	// ErrInvalidMeal is returned when a meal log fails validation.
	ErrInvalidMeal = errors.New("invalid meal log")
	// ErrInvalidStore is returned when a favorite store fails validation.
	ErrInvalidStore = errors.New("invalid favorite store")
	// ErrNotFound is returned when an id does not match any record.
	ErrNotFound = errors.New("record not found")
)

// MealLog is one logged meal.
type MealLog struct {
	ID         string     `json:"id"`
	Restaurant string     `json:"restaurant"`
	Branch     string     `json:"branch,omitempty"` // Empty means unset
	Date       string     `json:"date"`             // YYYY-MM-DD or YYYY-MM-DDTHH:MM[:SS]
	Menu       []MenuItem `json:"menu"`
	TotalCost  int        `json:"totalCost"` // Derived: sum(price*amount)
	Img        string     `json:"img"`       // URL or data: URI
}

// MenuItem is a single line of a meal.
type MenuItem struct {
	Name   string `json:"name"`
	Price  int    `json:"price"`
	Amount int    `json:"amount"`
	Note   string `json:"note,omitempty"`
}

// FavStore is a user-curated restaurant with a preset menu.
// It relates to meal logs only by name.
type FavStore struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Branch    string        `json:"branch,omitempty"`
	Address   string        `json:"address,omitempty"`
	Notes     string        `json:"notes,omitempty"`
	MenuItems []FavMenuItem `json:"menuItems"`
}

// FavMenuItem is a preset dish of a favorite store.
type FavMenuItem struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// PopularItem aggregates one dish name across all meal logs.
type PopularItem struct {
	Count    int    `json:"count"`
	AvgPrice int    `json:"avgPrice"`
	Note     string `json:"note,omitempty"`
}

// PopularItems maps trimmed dish name to its aggregate.
type PopularItems map[string]PopularItem

// State is the single live copy of the diary. Everything else is derived
// from it on demand.
type State struct {
	MealLogs     []MealLog
	FavStores    []FavStore
	PopularItems PopularItems
}

// Snapshot returns read-only views of the two source collections.
// Callers must not mutate the returned slices.
func (s *State) Snapshot() ([]MealLog, []FavStore) {
	return s.MealLogs, s.FavStores
}

// FindMeal returns the meal log with the given id.
func (s *State) FindMeal(id string) (MealLog, bool) {
	for _, m := range s.MealLogs {
		if m.ID == id {
			return m, true
		}
	}
	return MealLog{}, false
}

// FindStore returns the favorite store with the given id.
func (s *State) FindStore(id string) (FavStore, bool) {
	for _, f := range s.FavStores {
		if f.ID == id {
			return f, true
		}
	}
	return FavStore{}, false
}

// FindStoreByName returns the first favorite store whose name equals name.
func (s *State) FindStoreByName(name string) (FavStore, bool) {
	for _, f := range s.FavStores {
		if f.Name == name {
			return f, true
		}
	}
	return FavStore{}, false
}
