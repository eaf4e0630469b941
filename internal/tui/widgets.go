package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runger/fooddiary/internal/autocomplete"
)

// field is one labelled text input. It implements autocomplete.TextField.
type field struct {
	id    string
	label string
	input textinput.Model

	// Set when the field has suggestions.
	ac   *autocomplete.AutoComplete
	list *suggestionList
}

func newField(id, label, placeholder string, width int) *field {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = 200
	in.Width = width
	return &field{id: id, label: label, input: in}
}

// Value implements autocomplete.TextField.
func (f *field) Value() string {
	return f.input.Value()
}

// SetValue implements autocomplete.TextField.
func (f *field) SetValue(v string) {
	f.input.SetValue(v)
	f.input.CursorEnd()
}

// suggestionList renders autocomplete items below a field. It implements
// autocomplete.ListSurface.
type suggestionList struct {
	items    []autocomplete.Item
	visible  bool
	active   int
	maxWidth int
}

func newSuggestionList(maxWidth int) *suggestionList {
	return &suggestionList{active: -1, maxWidth: maxWidth}
}

// Render implements autocomplete.ListSurface.
func (l *suggestionList) Render(items []autocomplete.Item) {
	l.items = items
	l.active = -1
}

// Show implements autocomplete.ListSurface.
func (l *suggestionList) Show() { l.visible = true }

// Hide implements autocomplete.ListSurface.
func (l *suggestionList) Hide() { l.visible = false }

// SetActive implements autocomplete.ListSurface.
func (l *suggestionList) SetActive(i int) { l.active = i }

// View renders the visible list, or "".
func (l *suggestionList) View() string {
	if !l.visible || len(l.items) == 0 {
		return ""
	}
	rows := make([]string, len(l.items))
	for i, it := range l.items {
		label := Truncate(Clean(it.Label), l.maxWidth)
		if i == l.active {
			rows[i] = activeSuggestionStyle.Render("› " + label)
		} else {
			rows[i] = suggestionStyle.Render("  " + label)
		}
	}
	return suggestionBoxStyle.Render(strings.Join(rows, "\n"))
}

// form is an ordered group of fields with one focused.
type form struct {
	fields []*field
	focus  int
}

func (f *form) focused() *field {
	if f.focus < 0 || f.focus >= len(f.fields) {
		return nil
	}
	return f.fields[f.focus]
}

func (f *form) field(id string) *field {
	for _, fl := range f.fields {
		if fl.id == id {
			return fl
		}
	}
	return nil
}

// focusIndex moves focus to i. Other fields lose focus and their
// suggestions close as if the pointer had moved to the new field.
func (f *form) focusIndex(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	i = (i%len(f.fields) + len(f.fields)) % len(f.fields)
	f.focus = i
	target := f.fields[i]
	var cmd tea.Cmd
	for j, fl := range f.fields {
		if j == i {
			cmd = fl.input.Focus()
			continue
		}
		fl.input.Blur()
		if fl.ac != nil {
			fl.ac.HandlePointer(target)
		}
	}
	if target.ac != nil {
		target.ac.HandleFocus()
	}
	return cmd
}

func (f *form) next() tea.Cmd { return f.focusIndex(f.focus + 1) }
func (f *form) prev() tea.Cmd { return f.focusIndex(f.focus - 1) }

// blur removes focus and closes every suggestion list.
func (f *form) blur() {
	for _, fl := range f.fields {
		fl.input.Blur()
		if fl.ac != nil {
			fl.ac.Hide()
		}
	}
}

// reset clears every field.
func (f *form) reset() {
	for _, fl := range f.fields {
		fl.input.SetValue("")
		if fl.ac != nil {
			fl.ac.Hide()
		}
	}
}

// set fills the fields from values keyed by field id.
func (f *form) set(values map[string]string) {
	for _, fl := range f.fields {
		fl.SetValue(values[fl.id])
	}
}
