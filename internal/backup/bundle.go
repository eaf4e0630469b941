// Package backup exports the whole diary as a single compressed file and
// imports such files back, including older backup layouts.
package backup

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/runger/fooddiary/internal/diary"
	"github.com/runger/fooddiary/internal/storage"
)

// File extensions of compressed backups. LegacyExt is read but never
// written.
const (
	Ext        = ".myfood"
	LegacyExt  = ".吃吃吃"
	filePrefix = "吃吃吃_"
)

// ErrInvalidBundle is returned by Import when the content is not a
// well-formed backup.
var ErrInvalidBundle = errors.New("invalid backup file")

// Bundle groups the three persisted collections.
type Bundle struct {
	MealLogs     []diary.MealLog    `json:"mealLogs"`
	FavStores    []diary.FavStore   `json:"favStores"`
	PopularItems diary.PopularItems `json:"popularItems"`
}

// FromState copies the collections of s into a Bundle. Nil collections
// are exported as empty ones.
func FromState(s *diary.State) Bundle {
	b := Bundle{
		MealLogs:     append([]diary.MealLog{}, s.MealLogs...),
		FavStores:    append([]diary.FavStore{}, s.FavStores...),
		PopularItems: diary.PopularItems{},
	}
	for k, v := range s.PopularItems {
		b.PopularItems[k] = v
	}
	return b
}

// Export writes b as gzip-compressed JSON.
func Export(w io.Writer, b Bundle) error {
	if b.MealLogs == nil {
		b.MealLogs = []diary.MealLog{}
	}
	if b.FavStores == nil {
		b.FavStores = []diary.FavStore{}
	}
	if b.PopularItems == nil {
		b.PopularItems = diary.PopularItems{}
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}
	compressed, err := storage.Gzip(raw)
	if err != nil {
		return fmt.Errorf("compress backup: %w", err)
	}
	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// FileName returns the export file name for now, using the ROC calendar
// year (Gregorian year minus 1911), e.g. 吃吃吃_1130502-1830.myfood.
func FileName(now time.Time) string {
	return fmt.Sprintf("%s%d%02d%02d-%02d%02d%s",
		filePrefix, now.Year()-1911, int(now.Month()), now.Day(), now.Hour(), now.Minute(), Ext)
}

var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

// Import reads a backup. Files named *.myfood or *.吃吃吃, and any content
// starting with the gzip magic number, are decompressed first. Other
// content is accepted as base64-encoded JSON or plain JSON. The result is
// validated before it is returned; on error nothing is returned.
func Import(r io.Reader, fileName string) (*Bundle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}

	raw, err := decodeContent(data, fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	return parse(raw)
}

func decodeContent(data []byte, fileName string) ([]byte, error) {
	lower := strings.ToLower(fileName)
	if strings.HasSuffix(lower, Ext) || strings.HasSuffix(fileName, LegacyExt) || isGzip(data) {
		return storage.Gunzip(data)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, errors.New("empty file")
	}
	if base64Pattern.MatchString(text) {
		if decoded, err := base64.StdEncoding.DecodeString(text); err == nil {
			return decoded, nil
		}
	}
	return []byte(text), nil
}

func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// parse checks the top-level shape, then decodes the typed collections.
func parse(raw []byte) (*Bundle, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidBundle)
	}

	meals, ok := field(top, "mealLogs", "meals")
	if !ok || kind(meals) != '[' {
		return nil, fmt.Errorf("%w: mealLogs must be an array", ErrInvalidBundle)
	}
	stores, ok := field(top, "favStores", "restaurants")
	if !ok || kind(stores) != '[' {
		return nil, fmt.Errorf("%w: favStores must be an array", ErrInvalidBundle)
	}
	popular, ok := top["popularItems"]
	if !ok || kind(popular) != '{' {
		return nil, fmt.Errorf("%w: popularItems must be an object", ErrInvalidBundle)
	}

	b := &Bundle{}
	if err := json.Unmarshal(meals, &b.MealLogs); err != nil {
		return nil, fmt.Errorf("%w: mealLogs: %v", ErrInvalidBundle, err)
	}
	if err := json.Unmarshal(stores, &b.FavStores); err != nil {
		return nil, fmt.Errorf("%w: favStores: %v", ErrInvalidBundle, err)
	}
	if err := json.Unmarshal(popular, &b.PopularItems); err != nil {
		return nil, fmt.Errorf("%w: popularItems: %v", ErrInvalidBundle, err)
	}
	for i := range b.MealLogs {
		normalizeMeal(&b.MealLogs[i])
	}
	return b, nil
}

// normalizeMeal defaults missing amounts of older backups to 1 and
// recomputes the total from the menu. Names and notes are left as written.
func normalizeMeal(m *diary.MealLog) {
	for i := range m.Menu {
		if m.Menu[i].Amount < 1 {
			m.Menu[i].Amount = 1
		}
	}
	m.TotalCost = m.ComputeTotal()
}

// field returns the first present key.
func field(top map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := top[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// kind returns the first non-space byte of a JSON value.
func kind(v json.RawMessage) byte {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
