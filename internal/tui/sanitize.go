package tui

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ansiRE matches CSI, OSC and two-byte escape sequences.
var ansiRE = regexp.MustCompile(`\x1b(?:` +
	`\[[0-9;]*[A-Za-z]` +
	`|` +
	`\].*?(?:\x1b\\|\x07)` +
	`|` +
	`[()#*+\-./][A-Za-z0-9]` +
	`)`)

// StripANSI removes escape sequences, which imported names may carry.
func StripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

// Clean prepares stored text for a single terminal row: escapes are
// removed and line breaks become spaces.
func Clean(s string) string {
	s = StripANSI(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
}

// Truncate shortens s to maxWidth display columns, ending with an
// ellipsis when anything was cut. CJK characters count as two columns.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}
	return prefixWidth(s, maxWidth-1) + "…"
}

// MiddleTruncate keeps the head and tail of s around an ellipsis.
func MiddleTruncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth < 3 {
		return prefixWidth(s, maxWidth)
	}
	remaining := maxWidth - 1
	return prefixWidth(s, (remaining+1)/2) + "…" + suffixWidth(s, remaining/2)
}

// PadRight pads s with spaces to width display columns.
func PadRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func prefixWidth(s string, maxWidth int) string {
	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > maxWidth {
			return s[:i]
		}
		w += rw
	}
	return s
}

func suffixWidth(s string, maxWidth int) string {
	runes := []rune(s)
	w := 0
	start := len(runes)
	for i := len(runes) - 1; i >= 0; i-- {
		rw := runewidth.RuneWidth(runes[i])
		if w+rw > maxWidth {
			break
		}
		w += rw
		start = i
	}
	return string(runes[start:])
}
