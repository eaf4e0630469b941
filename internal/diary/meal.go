package diary

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// dateLayouts are the accepted MealLog.Date spellings.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses a meal date in any accepted layout.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Normalize trims text fields, defaults item amounts to 1 and recomputes
// TotalCost.
func (m *MealLog) Normalize() {
	m.Restaurant = strings.TrimSpace(m.Restaurant)
	m.Branch = strings.TrimSpace(m.Branch)
	m.Date = strings.TrimSpace(m.Date)
	for i := range m.Menu {
		it := &m.Menu[i]
		it.Name = strings.TrimSpace(it.Name)
		it.Note = strings.TrimSpace(it.Note)
		if it.Amount < 1 {
			it.Amount = 1
		}
	}
	m.TotalCost = m.ComputeTotal()
}

// ComputeTotal returns sum(price*amount) over the menu. Amounts below 1
// count as 1.
func (m MealLog) ComputeTotal() int {
	total := 0
	for _, it := range m.Menu {
		amount := it.Amount
		if amount < 1 {
			amount = 1
		}
		total += it.Price * amount
	}
	return total
}

// Validate checks the fields a meal log needs before it can be saved.
func (m MealLog) Validate() error {
	if strings.TrimSpace(m.Restaurant) == "" {
		return fmt.Errorf("%w: restaurant is required", ErrInvalidMeal)
	}
	if strings.TrimSpace(m.Date) == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidMeal)
	}
	if _, err := ParseDate(m.Date); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMeal, err)
	}
	if len(m.Menu) == 0 {
		return fmt.Errorf("%w: at least one menu item is required", ErrInvalidMeal)
	}
	for i, it := range m.Menu {
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("%w: menu item %d has no name", ErrInvalidMeal, i+1)
		}
		if it.Price < 0 {
			return fmt.Errorf("%w: menu item %q has a negative price", ErrInvalidMeal, it.Name)
		}
		if it.Amount < 1 {
			return fmt.Errorf("%w: menu item %q amount must be at least 1", ErrInvalidMeal, it.Name)
		}
	}
	return nil
}

// Normalize trims the store's fields and drops unnamed menu items.
func (f *FavStore) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Branch = strings.TrimSpace(f.Branch)
	f.Address = strings.TrimSpace(f.Address)
	f.Notes = strings.TrimSpace(f.Notes)
	items := make([]FavMenuItem, 0, len(f.MenuItems))
	for _, it := range f.MenuItems {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			continue
		}
		items = append(items, it)
	}
	f.MenuItems = items
}

// Validate checks the fields a favorite store needs before it can be saved.
func (f FavStore) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidStore)
	}
	named := 0
	for _, it := range f.MenuItems {
		if strings.TrimSpace(it.Name) != "" {
			named++
		}
		if it.Price < 0 {
			return fmt.Errorf("%w: menu item %q has a negative price", ErrInvalidStore, it.Name)
		}
	}
	if named == 0 {
		return fmt.Errorf("%w: at least one menu item is required", ErrInvalidStore)
	}
	return nil
}

// SortMealLogs sorts logs in place: newest date first, ties by id descending.
func SortMealLogs(logs []MealLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].Date == logs[j].Date {
			return logs[i].ID > logs[j].ID
		}
		return logs[i].Date > logs[j].Date
	})
}

// Filter narrows a meal list. Zero fields match everything.
type Filter struct {
	Restaurant string // Exact match
	Start      string // Inclusive, compared as strings (YYYY-MM-DD)
	End        string // Inclusive
}

// FilterMealLogs returns a sorted copy of the logs matching f.
func FilterMealLogs(logs []MealLog, f Filter) []MealLog {
	out := make([]MealLog, 0, len(logs))
	for _, m := range logs {
		if f.Restaurant != "" && m.Restaurant != f.Restaurant {
			continue
		}
		day := m.Date
		if len(day) > 10 {
			day = day[:10]
		}
		if f.Start != "" && day < f.Start {
			continue
		}
		if f.End != "" && day > f.End {
			continue
		}
		out = append(out, m)
	}
	SortMealLogs(out)
	return out
}

// RestaurantNames returns the distinct restaurant names in the logs in
// first-seen order.
func RestaurantNames(logs []MealLog) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range logs {
		name := strings.TrimSpace(m.Restaurant)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
