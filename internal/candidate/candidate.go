// Package candidate derives scored, deduplicated autocomplete candidates
// from diary history.
package candidate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/runger/fooddiary/internal/diary"
)

// Scoring weights.
const (
	weightFavorite = 2 // per favorite-store occurrence
	weightHistory  = 1 // per meal-log occurrence
)

// Field names exposed by candidates.
const (
	FieldName     = "name"
	FieldBranch   = "branch"
	FieldCount    = "count"
	FieldScore    = "score"
	FieldFavorite = "favorite"
)

// Candidate is an ephemeral, scored suggestion.
type Candidate struct {
	Key        string // Display value (trimmed name or branch)
	Score      int
	Count      int // Occurrences in meal-log history only
	IsFavorite bool

	// Fields carries named values for filtering and templates. Sources
	// set the display field plus count, score and favorite.
	Fields map[string]string
}

// Field returns the named field. A missing or blank field reports false.
func (c Candidate) Field(name string) (string, bool) {
	if c.Fields == nil {
		return "", false
	}
	v, ok := c.Fields[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Source produces a fresh candidate list on every call.
type Source func() []Candidate

// Snapshot returns the current meal logs and favorite stores. The returned
// slices are read, never modified.
type Snapshot func() ([]diary.MealLog, []diary.FavStore)

// Less orders two candidate keys that tie on score.
type Less func(a, b string) bool

// Options tune a source.
type Options struct {
	// Less is the secondary key for equal scores. When nil, ties keep the
	// order in which names were first seen: favorites in slice order,
	// then history in slice order.
	Less Less
}

// Static returns a Source that always yields a copy of cands.
func Static(cands []Candidate) Source {
	return func() []Candidate {
		out := make([]Candidate, len(cands))
		copy(out, cands)
		return out
	}
}

// tally accumulates scores in first-seen order.
type tally struct {
	order  []string
	score  map[string]int
	count  map[string]int
	isFave map[string]bool
}

func newTally() *tally {
	return &tally{
		score:  make(map[string]int),
		count:  make(map[string]int),
		isFave: make(map[string]bool),
	}
}

func (t *tally) add(key string, weight int, fromHistory bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	if _, seen := t.score[key]; !seen {
		t.order = append(t.order, key)
	}
	t.score[key] += weight
	if fromHistory {
		t.count[key]++
	}
}

// candidates materializes the tally sorted by score, then by opts.Less.
func (t *tally) candidates(field string, opts Options) []Candidate {
	out := make([]Candidate, 0, len(t.order))
	for _, key := range t.order {
		c := Candidate{
			Key:        key,
			Score:      t.score[key],
			Count:      t.count[key],
			IsFavorite: t.isFave[key],
		}
		c.Fields = map[string]string{
			field:         key,
			FieldCount:    strconv.Itoa(c.Count),
			FieldScore:    strconv.Itoa(c.Score),
			FieldFavorite: strconv.FormatBool(c.IsFavorite),
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if opts.Less != nil {
			return opts.Less(out[i].Key, out[j].Key)
		}
		return false
	})
	return out
}

// Restaurants scores restaurant names: each favorite store adds 2, each
// meal log adds 1.
func Restaurants(snap Snapshot, opts Options) Source {
	return func() []Candidate {
		logs, favs := snap()
		t := newTally()
		for _, f := range favs {
			name := strings.TrimSpace(f.Name)
			t.add(name, weightFavorite, false)
			if name != "" {
				t.isFave[name] = true
			}
		}
		for _, m := range logs {
			t.add(m.Restaurant, weightHistory, true)
		}
		return t.candidates(FieldName, opts)
	}
}

// Branches scores branch names of the restaurant returned by selected,
// using the same weights as Restaurants. An empty selection yields no
// candidates; unset branches are skipped.
func Branches(snap Snapshot, selected func() string, opts Options) Source {
	return func() []Candidate {
		restaurant := ""
		if selected != nil {
			restaurant = strings.TrimSpace(selected())
		}
		if restaurant == "" {
			return nil
		}

		logs, favs := snap()
		t := newTally()
		for _, f := range favs {
			if strings.TrimSpace(f.Name) != restaurant {
				continue
			}
			t.add(f.Branch, weightFavorite, false)
		}
		for _, m := range logs {
			if strings.TrimSpace(m.Restaurant) != restaurant {
				continue
			}
			t.add(m.Branch, weightHistory, true)
		}
		return t.candidates(FieldBranch, opts)
	}
}

// FrequentRestaurants scores history restaurants that are not favorites
// yet, one point per visit. It feeds the favorite-store form.
func FrequentRestaurants(snap Snapshot, opts Options) Source {
	return func() []Candidate {
		logs, favs := snap()
		favorites := make(map[string]bool, len(favs))
		for _, f := range favs {
			favorites[strings.TrimSpace(f.Name)] = true
		}
		t := newTally()
		for _, m := range logs {
			if favorites[strings.TrimSpace(m.Restaurant)] {
				continue
			}
			t.add(m.Restaurant, weightHistory, true)
		}
		return t.candidates(FieldName, opts)
	}
}
