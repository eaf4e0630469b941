package diary

import (
	"math"
	"sort"
	"strings"
)

// ComputePopularItems aggregates every dish across all logs. The average is
// a running average rounded at each step, so recomputing from the same logs
// in the same order always yields the same map.
func ComputePopularItems(logs []MealLog) PopularItems {
	popular := make(PopularItems)
	for _, m := range logs {
		for _, it := range m.Menu {
			name := strings.TrimSpace(it.Name)
			if name == "" {
				continue
			}
			p, ok := popular[name]
			if !ok {
				popular[name] = PopularItem{Count: 1, AvgPrice: it.Price, Note: it.Note}
				continue
			}
			p.Count++
			p.AvgPrice = runningAvg(p.AvgPrice, it.Price, p.Count)
			popular[name] = p
		}
	}
	return popular
}

// runningAvg folds price into avg, where count already includes price.
func runningAvg(avg, price, count int) int {
	return int(math.Round(float64(avg*(count-1)+price) / float64(count)))
}

// DishStat is a per-restaurant dish aggregate.
type DishStat struct {
	Name  string
	Price int // Rounded running average
	Count int
}

// RestaurantDishes aggregates the dishes ordered at restaurant, most
// frequent first, ties by name.
func RestaurantDishes(logs []MealLog, restaurant string) []DishStat {
	restaurant = strings.TrimSpace(restaurant)
	if restaurant == "" {
		return nil
	}
	stats := make(map[string]*DishStat)
	var order []string
	for _, m := range logs {
		if strings.TrimSpace(m.Restaurant) != restaurant {
			continue
		}
		for _, it := range m.Menu {
			name := strings.TrimSpace(it.Name)
			if name == "" {
				continue
			}
			s, ok := stats[name]
			if !ok {
				stats[name] = &DishStat{Name: name, Price: it.Price, Count: 1}
				order = append(order, name)
				continue
			}
			s.Count++
			s.Price = runningAvg(s.Price, it.Price, s.Count)
		}
	}

	out := make([]DishStat, 0, len(order))
	for _, name := range order {
		out = append(out, *stats[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Recommendation sources.
const (
	SourceCustom  = "custom"  // From the favorite store's preset menu
	SourceHistory = "history" // From past meal logs
)

// Recommendation is a dish offered when filling in a meal.
type Recommendation struct {
	Name   string
	Price  int
	Count  int
	Source string
}

// MenuRecommendations lists the favorite store's preset menu followed by
// history dishes that are not already on it.
func MenuRecommendations(s *State, restaurant string) []Recommendation {
	restaurant = strings.TrimSpace(restaurant)
	if restaurant == "" {
		return nil
	}

	var out []Recommendation
	custom := make(map[string]bool)
	if store, ok := s.FindStoreByName(restaurant); ok {
		for _, it := range store.MenuItems {
			custom[it.Name] = true
			out = append(out, Recommendation{Name: it.Name, Price: it.Price, Source: SourceCustom})
		}
	}
	for _, d := range RestaurantDishes(s.MealLogs, restaurant) {
		if custom[d.Name] {
			continue
		}
		out = append(out, Recommendation{Name: d.Name, Price: d.Price, Count: d.Count, Source: SourceHistory})
	}
	return out
}

// FavMenuRecommendations lists up to limit history dishes for restaurant
// that are not in existing. limit <= 0 means 5.
func FavMenuRecommendations(logs []MealLog, restaurant string, existing []FavMenuItem, limit int) []Recommendation {
	if limit <= 0 {
		limit = 5
	}
	have := make(map[string]bool, len(existing))
	for _, it := range existing {
		have[it.Name] = true
	}
	var out []Recommendation
	for _, d := range RestaurantDishes(logs, restaurant) {
		if have[d.Name] {
			continue
		}
		out = append(out, Recommendation{Name: d.Name, Price: d.Price, Count: d.Count, Source: SourceHistory})
		if len(out) == limit {
			break
		}
	}
	return out
}

// RestaurantCount pairs a restaurant name with its visit count.
type RestaurantCount struct {
	Name  string
	Count int
}

// RecommendedFavStores lists restaurants from history that are not yet
// favorites, most visited first.
func RecommendedFavStores(logs []MealLog, favs []FavStore) []RestaurantCount {
	existing := make(map[string]bool, len(favs))
	for _, f := range favs {
		existing[strings.TrimSpace(f.Name)] = true
	}
	counts := make(map[string]int)
	var order []string
	for _, m := range logs {
		name := strings.TrimSpace(m.Restaurant)
		if name == "" || existing[name] {
			continue
		}
		if _, ok := counts[name]; !ok {
			order = append(order, name)
		}
		counts[name]++
	}
	out := make([]RestaurantCount, 0, len(order))
	for _, name := range order {
		out = append(out, RestaurantCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
