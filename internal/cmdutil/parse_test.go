package cmdutil

import (
	"errors"
	"reflect"
	"testing"

	"github.com/runger/fooddiary/internal/diary"
)

func TestParseMenu(t *testing.T) {
	tests := []struct {
		text     string
		expected []diary.MenuItem
	}{
		{
			`name=ramen price=180`,
			[]diary.MenuItem{{Name: "ramen", Price: 180, Amount: 1}},
		},
		{
			`name="beef noodles" price=180 amount=2 note="less spicy" name=dumplings price=60`,
			[]diary.MenuItem{
				{Name: "beef noodles", Price: 180, Amount: 2, Note: "less spicy"},
				{Name: "dumplings", Price: 60, Amount: 1},
			},
		},
		{
			`滷肉飯 price=35 qty=3`,
			[]diary.MenuItem{{Name: "滷肉飯", Price: 35, Amount: 3}},
		},
		{
			`NAME=tea PRICE=0`,
			[]diary.MenuItem{{Name: "tea", Price: 0, Amount: 1}},
		},
	}

	for _, tt := range tests {
		got, err := ParseMenu(tt.text)
		if err != nil {
			t.Errorf("ParseMenu(%q) error = %v", tt.text, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("ParseMenu(%q) = %+v, want %+v", tt.text, got, tt.expected)
		}
	}
}

func TestParseMenuErrors(t *testing.T) {
	tests := []string{
		``,
		`price=10`,
		`name=a price=abc`,
		`name=a price=-1`,
		`name=a amount=x`,
		`name=a color=red`,
		`name="unterminated`,
	}

	for _, text := range tests {
		if _, err := ParseMenu(text); err == nil {
			t.Errorf("ParseMenu(%q) expected error", text)
		}
	}

	if _, err := ParseMenu("   "); !errors.Is(err, ErrEmptyMenu) {
		t.Errorf("ParseMenu(blank) error = %v, want ErrEmptyMenu", err)
	}
}

func TestParseFavMenu(t *testing.T) {
	got, err := ParseFavMenu(`name=ramen price=180 name="fried rice" price=90`)
	if err != nil {
		t.Fatalf("ParseFavMenu() error = %v", err)
	}
	expected := []diary.FavMenuItem{{Name: "ramen", Price: 180}, {Name: "fried rice", Price: 90}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("ParseFavMenu() = %+v, want %+v", got, expected)
	}

	if _, err := ParseFavMenu(`name=ramen price=180 amount=2`); err == nil {
		t.Error("ParseFavMenu() with amount expected error")
	}
}

func TestFormatMenuRoundTrip(t *testing.T) {
	items := []diary.MenuItem{
		{Name: "beef noodles", Price: 180, Amount: 2, Note: `say "hi"`},
		{Name: "tea", Price: 0, Amount: 1},
		{Name: `back\slash`, Price: 5, Amount: 1},
	}

	text := FormatMenu(items)
	got, err := ParseMenu(text)
	if err != nil {
		t.Fatalf("ParseMenu(FormatMenu()) error = %v (text %q)", err, text)
	}
	if !reflect.DeepEqual(got, items) {
		t.Errorf("round trip = %+v, want %+v", got, items)
	}
}

func TestFormatFavMenu(t *testing.T) {
	items := []diary.FavMenuItem{{Name: "a b", Price: 1}, {Name: "c", Price: 2}}
	if got := FormatFavMenu(items); got != `name="a b" price=1 name=c price=2` {
		t.Errorf("FormatFavMenu() = %q", got)
	}
}
