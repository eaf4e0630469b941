// Package cmdutil provides helpers shared by the CLI and the terminal UI
// for reading and writing menu items as text.
package cmdutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/runger/fooddiary/internal/diary"
)

// ErrEmptyMenu is returned when a menu text holds no items.
var ErrEmptyMenu = errors.New("no menu items given")

// ParseMenu reads menu items written as shell-style key=value words:
//
//	name="beef noodles" price=180 amount=2 note="less spicy" name=dumplings price=60
//
// Every name= starts a new item. A bare word is shorthand for name=word.
// Missing amounts default to 1.
func ParseMenu(text string) ([]diary.MenuItem, error) {
	words, err := shlex.Split(text)
	if err != nil {
		return nil, fmt.Errorf("splitting menu: %w", err)
	}

	var items []diary.MenuItem
	for _, w := range words {
		key, value, ok := strings.Cut(w, "=")
		if !ok {
			key, value = "name", w
		}
		key = strings.ToLower(strings.TrimSpace(key))

		if key == "name" {
			items = append(items, diary.MenuItem{Name: strings.TrimSpace(value), Amount: 1})
			continue
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("%s given before any name", key)
		}
		cur := &items[len(items)-1]

		switch key {
		case "price":
			n, err := parseNonNegative(key, value)
			if err != nil {
				return nil, err
			}
			cur.Price = n
		case "amount", "qty":
			n, err := parseNonNegative(key, value)
			if err != nil {
				return nil, err
			}
			cur.Amount = n
		case "note":
			cur.Note = strings.TrimSpace(value)
		default:
			return nil, fmt.Errorf("unknown menu field %q", key)
		}
	}

	if len(items) == 0 {
		return nil, ErrEmptyMenu
	}
	return items, nil
}

// ParseFavMenu reads preset menu items for a favorite store. Only name and
// price are accepted.
func ParseFavMenu(text string) ([]diary.FavMenuItem, error) {
	items, err := ParseMenu(text)
	if err != nil {
		return nil, err
	}
	out := make([]diary.FavMenuItem, len(items))
	for i, it := range items {
		if it.Amount != 1 || it.Note != "" {
			return nil, fmt.Errorf("item %q: favorite menus take only name and price", it.Name)
		}
		out[i] = diary.FavMenuItem{Name: it.Name, Price: it.Price}
	}
	return out, nil
}

// FormatMenu writes items in the form ParseMenu reads.
func FormatMenu(items []diary.MenuItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		s := "name=" + quote(it.Name) + " price=" + strconv.Itoa(it.Price)
		if it.Amount > 1 {
			s += " amount=" + strconv.Itoa(it.Amount)
		}
		if it.Note != "" {
			s += " note=" + quote(it.Note)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// FormatFavMenu writes favorite menu items in the form ParseFavMenu reads.
func FormatFavMenu(items []diary.FavMenuItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, "name="+quote(it.Name)+" price="+strconv.Itoa(it.Price))
	}
	return strings.Join(parts, " ")
}

func parseNonNegative(key, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid value for %s: must be non-negative", key)
	}
	return n, nil
}

// quote wraps s in double quotes when shlex would otherwise split or
// unescape it.
func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n\"'\\#=") {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
