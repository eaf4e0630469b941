package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/runger/fooddiary/internal/diary"
)

// chrome is the number of rows outside the meal list: title and footer.
const chrome = 3

// View implements tea.Model.
func (m *Model) View() string {
	body := m.viewMain()
	if top, ok := m.panels.Top(); ok && m.screen.visible[top] {
		body = m.viewBackdrop(m.viewPanel(top))
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.viewFooter())
}

func (m *Model) viewMain() string {
	logs := m.svc.State().MealLogs
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("吃吃吃 food diary · %d meals", len(logs))))
	b.WriteRune('\n')

	if len(logs) == 0 {
		b.WriteString(dimStyle.Render("No meals yet. Press a to add one."))
		return b.String()
	}

	rows := m.listHeight()
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	for i := start; i < len(logs) && i < start+rows; i++ {
		line := m.mealRow(logs[i])
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString(normalStyle.Render("  " + line))
		}
		if i < len(logs)-1 && i < start+rows-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func (m *Model) mealRow(meal diary.MealLog) string {
	name := Clean(meal.Restaurant)
	if meal.Branch != "" {
		name += " " + Clean(meal.Branch)
	}
	date := PadRight(diary.FormatROC(meal.Date, false), 22)
	total := priceStyle.Render(fmt.Sprintf("$%d", meal.TotalCost))
	width := m.cfg.UI.MaxItemWidth
	if m.width > 0 && m.width-34 < width {
		width = m.width - 34
	}
	return date + PadRight(Truncate(name, width), width) + "  " + total
}

func (m *Model) listHeight() int {
	h := m.height - chrome
	if h < 1 {
		h = 20
	}
	return h
}

// viewBackdrop centers a panel over a shaded backdrop.
func (m *Model) viewBackdrop(content string) string {
	if m.width <= 0 || m.height <= 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content,
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(backdropColor),
	)
}

func (m *Model) viewPanel(id string) string {
	var content string
	switch id {
	case panelMeal:
		content = m.viewForm(m.mealForm, m.mealRecs)
	case panelFavForm:
		content = m.viewForm(m.favForm, m.favRecs)
	case panelFavorites:
		content = m.viewFavorites()
	case panelPopular:
		content = m.viewPopular()
	case panelConfirm:
		content = m.viewConfirm()
	case panelHelp:
		content = viewHelp()
	}
	return panelStyle.Render(titleStyle.Render(panelTitles[id]) + "\n\n" + content)
}

func (m *Model) viewForm(f *form, recs []diary.Recommendation) string {
	var b strings.Builder
	for _, fl := range f.fields {
		b.WriteString(labelStyle.Render(fl.label))
		b.WriteString(fl.input.View())
		b.WriteRune('\n')
		if fl.list != nil {
			if v := fl.list.View(); v != "" {
				b.WriteString(v)
				b.WriteRune('\n')
			}
		}
	}
	if len(recs) > 0 {
		b.WriteRune('\n')
		b.WriteString(dimStyle.Render("Recommended (ctrl+r adds):"))
		for i, r := range recs {
			if i == 5 {
				break
			}
			b.WriteString("\n  " + recommendationRow(r))
		}
		b.WriteRune('\n')
	}
	b.WriteString("\n" + dimStyle.Render("tab next · ctrl+s save · esc close"))
	return b.String()
}

func recommendationRow(r diary.Recommendation) string {
	row := Clean(r.Name) + " " + priceStyle.Render(fmt.Sprintf("$%d", r.Price))
	if r.Source == diary.SourceCustom {
		return favoriteStyle.Render("★ ") + row
	}
	return "  " + row + dimStyle.Render(fmt.Sprintf(" ×%d", r.Count))
}

func (m *Model) viewFavorites() string {
	st := m.svc.State()
	var b strings.Builder
	if len(st.FavStores) == 0 {
		b.WriteString(dimStyle.Render("No favorite stores."))
	}
	sel := m.screen.scroll[panelFavorites]
	for i, s := range st.FavStores {
		line := Clean(s.Name)
		if s.Branch != "" {
			line += " " + Clean(s.Branch)
		}
		line = fmt.Sprintf("%s (%d dishes)", Truncate(line, m.cfg.UI.MaxItemWidth), len(s.MenuItems))
		if i == sel {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString(normalStyle.Render("  " + line))
		}
		b.WriteRune('\n')
	}

	if recs := diary.RecommendedFavStores(st.MealLogs, st.FavStores); len(recs) > 0 {
		b.WriteString("\n" + dimStyle.Render("Visited often (+ adds the first):"))
		for i, r := range recs {
			if i == 5 {
				break
			}
			b.WriteString(fmt.Sprintf("\n  %s ×%d", Clean(r.Name), r.Count))
		}
		b.WriteRune('\n')
	}
	b.WriteString("\n" + dimStyle.Render("n new · enter edit · d delete · esc close"))
	return b.String()
}

func (m *Model) viewPopular() string {
	popular := m.svc.State().PopularItems
	if len(popular) == 0 {
		return dimStyle.Render("No dishes yet.")
	}
	names := make([]string, 0, len(popular))
	for name := range popular {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := popular[names[i]], popular[names[j]]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return names[i] < names[j]
	})

	offset := m.screen.scroll[panelPopular]
	if offset > len(names)-1 {
		offset = len(names) - 1
	}
	rows := m.listHeight() - 6
	if rows < 3 {
		rows = 3
	}
	var b strings.Builder
	for i := offset; i < len(names) && i < offset+rows; i++ {
		p := popular[names[i]]
		fmt.Fprintf(&b, "%s ×%-3d avg %s\n",
			PadRight(Truncate(Clean(names[i]), m.cfg.UI.MaxItemWidth), m.cfg.UI.MaxItemWidth),
			p.Count, priceStyle.Render(fmt.Sprintf("$%d", p.AvgPrice)))
	}
	return b.String()
}

func (m *Model) viewConfirm() string {
	prompt := "Are you sure?"
	if m.confirm != nil {
		prompt = m.confirm.prompt
	}
	return prompt + "\n\n" + dimStyle.Render("y confirm · n cancel")
}

func viewHelp() string {
	keys := [][2]string{
		{"a", "add meal"},
		{"enter / e", "edit meal"},
		{"c", "copy meal to now"},
		{"d", "delete meal"},
		{"X", "delete all meals"},
		{"f", "favorite stores"},
		{"p", "popular dishes"},
		{"esc", "close panel"},
		{"alt+←", "back"},
		{"q", "quit"},
	}
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(labelStyle.Render(k[0]) + k[1] + "\n")
	}
	return b.String()
}

func (m *Model) viewFooter() string {
	if msg := m.toast.Message(); msg != "" {
		return toastStyle.Render(Clean(msg))
	}
	if m.screen.backdrop {
		return dimStyle.Render("esc close")
	}
	return dimStyle.Render("a add · e edit · c copy · d delete · f favorites · p popular · ? keys · q quit")
}
