package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/fooddiary/internal/diary"
)

var popularLimit int

var popularCmd = &cobra.Command{
	Use:     "popular",
	Short:   "List the dishes you order most",
	GroupID: groupDiary,
	Args:    cobra.NoArgs,
	RunE:    runPopular,
}

var recommendCmd = &cobra.Command{
	Use:     "recommend <restaurant>",
	Short:   "Suggest dishes to order at a restaurant",
	GroupID: groupDiary,
	Long: `Suggest dishes for a restaurant: the favorite store's preset menu
first, then what you ordered there before, most frequent first.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	popularCmd.Flags().IntVarP(&popularLimit, "limit", "n", 20, "Maximum number of dishes (0 for all)")
}

type popularRow struct {
	name string
	item diary.PopularItem
}

// sortedPopular orders dishes by count, then name.
func sortedPopular(items diary.PopularItems) []popularRow {
	rows := make([]popularRow, 0, len(items))
	for name, it := range items {
		rows = append(rows, popularRow{name: name, item: it})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].item.Count != rows[j].item.Count {
			return rows[i].item.Count > rows[j].item.Count
		}
		return rows[i].name < rows[j].name
	})
	return rows
}

func runPopular(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		rows := sortedPopular(a.svc.State().PopularItems)
		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintln(out, "No dishes logged yet.")
			return nil
		}
		if popularLimit > 0 && len(rows) > popularLimit {
			rows = rows[:popularLimit]
		}
		fmt.Fprintf(out, "%s%s  %-6s  %s%s\n", colorBold, pad("Dish", 24), "Times", "Avg price", colorReset)
		fmt.Fprintln(out, strings.Repeat("-", 44))
		for _, r := range rows {
			line := fmt.Sprintf("%s  %-6d  $%d", pad(r.name, 24), r.item.Count, r.item.AvgPrice)
			if r.item.Note != "" {
				line += "  " + colorDim + r.item.Note + colorReset
			}
			fmt.Fprintln(out, line)
		}
		return nil
	})
}

func runRecommend(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		state := a.svc.State()
		recs := diary.MenuRecommendations(&state, args[0])
		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintf(out, "Nothing to recommend for %s yet.\n", strings.TrimSpace(args[0]))
			return nil
		}
		fmt.Fprintf(out, "%sRecommended at %s%s\n", colorBold, strings.TrimSpace(args[0]), colorReset)
		printRecommendations(out, recs)
		return nil
	})
}
