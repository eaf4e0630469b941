package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/fooddiary/internal/autocomplete"
	"github.com/runger/fooddiary/internal/candidate"
)

var (
	suggestRestaurant string
	suggestLimit      int
	suggestScores     bool
)

var suggestCmd = &cobra.Command{
	Use:     "suggest",
	Short:   "Show autocomplete suggestions",
	GroupID: groupDiary,
	Long: `Show the suggestions the diary offers while typing. Restaurants are
ranked by visits plus a bonus for favorites; branches by the same rule
within one restaurant.

Examples:
  fooddiary suggest restaurant          # Top suggestions for an empty field
  fooddiary suggest restaurant ra       # Names containing "ra"
  fooddiary suggest branch -r Ramen`,
}

var suggestRestaurantCmd = &cobra.Command{
	Use:   "restaurant [query]",
	Short: "Suggest restaurant names",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSuggestRestaurant,
}

var suggestBranchCmd = &cobra.Command{
	Use:   "branch [query]",
	Short: "Suggest branches of a restaurant",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSuggestBranch,
}

func init() {
	for _, c := range []*cobra.Command{suggestRestaurantCmd, suggestBranchCmd} {
		c.Flags().IntVarP(&suggestLimit, "limit", "n", 0, "Suggestions for an empty query (default from config)")
		c.Flags().BoolVar(&suggestScores, "scores", false, "Print scores")
	}
	suggestBranchCmd.Flags().StringVarP(&suggestRestaurant, "restaurant", "r", "", "Restaurant the branches belong to (required)")
	_ = suggestBranchCmd.MarkFlagRequired("restaurant")

	suggestCmd.AddCommand(suggestRestaurantCmd, suggestBranchCmd)
}

func runSuggestRestaurant(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		opts := candidate.Options{Less: candidate.CollatorLess(a.cfg.UI.Locale)}
		src := candidate.Restaurants(a.svc.Snapshot, opts)
		return printSuggestions(cmd, a, src, candidate.FieldName, args)
	})
}

func runSuggestBranch(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		opts := candidate.Options{Less: candidate.CollatorLess(a.cfg.UI.Locale)}
		restaurant := suggestRestaurant
		src := candidate.Branches(a.svc.Snapshot, func() string { return restaurant }, opts)
		return printSuggestions(cmd, a, src, candidate.FieldBranch, args)
	})
}

// printSuggestions runs src through the same filter the interactive
// fields use and prints what it would render.
func printSuggestions(cmd *cobra.Command, a *app, src candidate.Source, display string, args []string) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	limit := suggestLimit
	if limit <= 0 {
		limit = a.cfg.AutoComplete.EmptyQueryLimit
	}

	list := &collectingList{}
	ac, err := autocomplete.New(autocomplete.Config{
		Input:           &staticField{value: query},
		List:            list,
		Source:          src,
		DisplayField:    display,
		EmptyQueryLimit: limit,
		Logger:          a.logger,
	})
	if err != nil {
		return err
	}
	defer ac.Destroy()

	kept := ac.FilterAndRender(query)
	out := cmd.OutOrStdout()
	if len(kept) == 0 {
		fmt.Fprintln(out, "No suggestions.")
		return nil
	}
	for i, c := range kept {
		line := list.items[i].Value
		if c.IsFavorite {
			line += " " + colorYellow + "★" + colorReset
		}
		if c.Count > 0 {
			line += fmt.Sprintf("  %s×%d%s", colorDim, c.Count, colorReset)
		}
		if suggestScores {
			line += fmt.Sprintf("  %sscore=%d%s", colorDim, c.Score, colorReset)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

// staticField is a read-only autocomplete.TextField.
type staticField struct {
	value string
}

func (f *staticField) Value() string     { return f.value }
func (f *staticField) SetValue(v string) { f.value = strings.TrimSpace(v) }

// collectingList records what autocomplete renders.
type collectingList struct {
	items   []autocomplete.Item
	visible bool
}

func (l *collectingList) Render(items []autocomplete.Item) { l.items = items }
func (l *collectingList) Show()                            { l.visible = true }
func (l *collectingList) Hide()                            { l.visible = false }
func (l *collectingList) SetActive(int)                    {}
