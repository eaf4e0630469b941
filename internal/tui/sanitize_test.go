package tui

import (
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestStripANSI(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"plain":                  "plain",
		"\x1b[31mred\x1b[0m":     "red",
		"\x1b]0;title\x07text":   "text",
		"\x1b(Bcharset":          "charset",
		"牛肉麵\x1b[1m":             "牛肉麵",
		"\x1b]8;;http://x\x1b\\": "",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripANSI(in), "input %q", in)
	}
}

func TestClean(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b c", Clean("a\nb\tc"))
	assert.Equal(t, "ab", Clean("a\x00\x07b"))
	assert.Equal(t, "red", Clean("\x1b[31mred"))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated", 6, "trunc…"},
		{"鼎泰豐信義店", 7, "鼎泰豐…"},
		{"鼎泰豐", 6, "鼎泰豐"},
		{"abc", 1, "…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		got := Truncate(tt.in, tt.width)
		assert.Equal(t, tt.want, got, "Truncate(%q, %d)", tt.in, tt.width)
		assert.LessOrEqual(t, runewidth.StringWidth(got), tt.width)
	}
}

func TestMiddleTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abcdef", MiddleTruncate("abcdef", 6))
	assert.Equal(t, "ab…ef", MiddleTruncate("abcdef", 5))
	assert.Equal(t, "ab", MiddleTruncate("abcdef", 2))
	assert.Equal(t, "", MiddleTruncate("abcdef", 0))

	got := MiddleTruncate("一二三四五六", 7)
	assert.LessOrEqual(t, runewidth.StringWidth(got), 7)
	assert.Contains(t, got, "…")
}

func TestPadRight(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ab  ", PadRight("ab", 4))
	assert.Equal(t, "一 ", PadRight("一", 3))
	assert.Equal(t, "abcdef", PadRight("abcdef", 3))
}
