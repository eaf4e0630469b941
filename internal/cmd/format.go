package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/runger/fooddiary/internal/cmdutil"
	"github.com/runger/fooddiary/internal/diary"
)

// shortIDLen is how much of a uuid the list views print.
const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// pad fits s into width display columns so CJK names line up.
func pad(s string, width int) string {
	s = runewidth.Truncate(s, width, "…")
	return runewidth.FillRight(s, width)
}

func printMealRow(w io.Writer, m diary.MealLog) {
	name := m.Restaurant
	if m.Branch != "" {
		name += " " + m.Branch
	}
	fmt.Fprintf(w, "%s%s%s  %s  %s  %s$%d%s\n",
		colorDim, shortID(m.ID), colorReset,
		pad(diary.FormatROC(m.Date, false), 22),
		pad(name, 28),
		colorGreen, m.TotalCost, colorReset)
}

func printMealDetail(w io.Writer, m diary.MealLog) {
	fmt.Fprintf(w, "%s%s%s\n", colorBold, m.Restaurant, colorReset)
	if m.Branch != "" {
		fmt.Fprintf(w, "  branch: %s\n", m.Branch)
	}
	fmt.Fprintf(w, "  id:     %s\n", m.ID)
	fmt.Fprintf(w, "  date:   %s (%s)\n", diary.FormatROC(m.Date, false), m.Date)
	fmt.Fprintf(w, "  total:  %s$%d%s\n", colorGreen, m.TotalCost, colorReset)
	if m.Img != "" {
		fmt.Fprintf(w, "  image:  %s\n", m.Img)
	}
	if len(m.Menu) > 0 {
		fmt.Fprintln(w, "  menu:")
		for _, it := range m.Menu {
			line := fmt.Sprintf("    %s  $%d", pad(it.Name, 20), it.Price)
			if it.Amount > 1 {
				line += fmt.Sprintf(" ×%d", it.Amount)
			}
			if it.Note != "" {
				line += "  " + colorDim + it.Note + colorReset
			}
			fmt.Fprintln(w, line)
		}
		fmt.Fprintf(w, "  %s--item %s%s\n", colorDim, cmdutil.FormatMenu(m.Menu), colorReset)
	}
}

func printFavStore(w io.Writer, f diary.FavStore) {
	name := f.Name
	if f.Branch != "" {
		name += " " + f.Branch
	}
	fmt.Fprintf(w, "%s%s%s  %s%s%s\n", colorDim, shortID(f.ID), colorReset, colorBold, name, colorReset)
	if f.Address != "" {
		fmt.Fprintf(w, "          %s\n", f.Address)
	}
	if f.Notes != "" {
		fmt.Fprintf(w, "          %s%s%s\n", colorDim, f.Notes, colorReset)
	}
	if len(f.MenuItems) > 0 {
		items := make([]string, len(f.MenuItems))
		for i, it := range f.MenuItems {
			items[i] = fmt.Sprintf("%s $%d", it.Name, it.Price)
		}
		fmt.Fprintf(w, "          %s\n", strings.Join(items, ", "))
	}
}

func printRecommendations(w io.Writer, recs []diary.Recommendation) {
	for _, r := range recs {
		tag := "★"
		if r.Source == diary.SourceHistory {
			tag = fmt.Sprintf("×%d", r.Count)
		}
		fmt.Fprintf(w, "  %s  $%-6d %s%s%s\n", pad(r.Name, 20), r.Price, colorDim, tag, colorReset)
	}
}
