package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/fooddiary/internal/cmdutil"
	"github.com/runger/fooddiary/internal/diary"
)

var (
	mealRestaurant string
	mealBranch     string
	mealDate       string
	mealItems      []string
	mealImg        string
	mealCheckImage bool

	mealListRestaurant string
	mealListFrom       string
	mealListTo         string
	mealListLimit      int

	mealYes bool
)

// imageCheckTimeout bounds the HEAD request made by --check-image.
const imageCheckTimeout = 5 * time.Second

var mealCmd = &cobra.Command{
	Use:     "meal",
	Short:   "Log, list and edit meals",
	GroupID: groupDiary,
}

var mealAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a meal",
	Long: `Log a meal.

Each --item describes one or more dishes as key=value words. name= starts
a new dish; price, amount and note belong to the dish before them.
A bare word is taken as the name.

Examples:
  fooddiary meal add -r Ramen --item 'Noodle price=180'
  fooddiary meal add -r 鼎泰豐 -b 信義店 --item 'name="小籠包" price=250 amount=2 note=辣'
  fooddiary meal add -r Curry --date 2024-05-01 --img https://example.com/curry.png`,
	Args: cobra.NoArgs,
	RunE: runMealAdd,
}

var mealListCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged meals, newest first",
	Args:  cobra.NoArgs,
	RunE:  runMealList,
}

var mealShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one meal",
	Args:  cobra.ExactArgs(1),
	RunE:  runMealShow,
}

var mealEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a logged meal",
	Long: `Change a logged meal. Only the flags given are changed; --item
replaces the whole menu.`,
	Args: cobra.ExactArgs(1),
	RunE: runMealEdit,
}

var mealCopyCmd = &cobra.Command{
	Use:   "copy <id>",
	Short: "Log a meal again, dated now",
	Args:  cobra.ExactArgs(1),
	RunE:  runMealCopy,
}

var mealDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a meal",
	Args:  cobra.ExactArgs(1),
	RunE:  runMealDelete,
}

var mealClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every logged meal (favorite stores are kept)",
	Args:  cobra.NoArgs,
	RunE:  runMealClear,
}

func init() {
	for _, c := range []*cobra.Command{mealAddCmd, mealEditCmd} {
		c.Flags().StringVarP(&mealRestaurant, "restaurant", "r", "", "Restaurant name")
		c.Flags().StringVarP(&mealBranch, "branch", "b", "", "Branch")
		c.Flags().StringVarP(&mealDate, "date", "d", "", "Date, YYYY-MM-DD or YYYY-MM-DDTHH:MM (default now)")
		c.Flags().StringArrayVarP(&mealItems, "item", "i", nil, "Dishes as key=value words (repeatable)")
		c.Flags().StringVar(&mealImg, "img", "", "Image URL, Google Drive share link or data: URI")
		c.Flags().BoolVar(&mealCheckImage, "check-image", false, "Fetch the image before saving")
	}

	mealListCmd.Flags().StringVarP(&mealListRestaurant, "restaurant", "r", "", "Only meals at this restaurant")
	mealListCmd.Flags().StringVar(&mealListFrom, "from", "", "First day, YYYY-MM-DD")
	mealListCmd.Flags().StringVar(&mealListTo, "to", "", "Last day, YYYY-MM-DD")
	mealListCmd.Flags().IntVarP(&mealListLimit, "limit", "n", 20, "Maximum number of meals (0 for all)")

	mealClearCmd.Flags().BoolVarP(&mealYes, "yes", "y", false, "Do not ask for confirmation")

	mealCmd.AddCommand(mealAddCmd, mealListCmd, mealShowCmd, mealEditCmd, mealCopyCmd, mealDeleteCmd, mealClearCmd)
}

func runMealAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		m := diary.MealLog{
			Restaurant: mealRestaurant,
			Branch:     mealBranch,
			Date:       mealDate,
		}
		if m.Date == "" {
			m.Date = diary.LocalDateTime(time.Now())
		}
		menu, err := parseItems(mealItems)
		if err != nil {
			return err
		}
		m.Menu = menu
		if m.Img, err = resolveImage(ctx, a, mealImg); err != nil {
			return err
		}

		saved, err := a.svc.SaveMeal(ctx, m)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%sSaved%s %s ($%d)\n", colorGreen, colorReset, saved.Restaurant, saved.TotalCost)
		fmt.Fprintf(out, "  id: %s\n", saved.ID)
		return nil
	})
}

func runMealList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		logs, _ := a.svc.Snapshot()
		meals := diary.FilterMealLogs(logs, diary.Filter{
			Restaurant: strings.TrimSpace(mealListRestaurant),
			Start:      mealListFrom,
			End:        mealListTo,
		})
		out := cmd.OutOrStdout()
		if len(meals) == 0 {
			fmt.Fprintln(out, "No meals logged.")
			return nil
		}

		total := 0
		for _, m := range meals {
			total += m.TotalCost
		}
		shown := meals
		if mealListLimit > 0 && len(shown) > mealListLimit {
			shown = shown[:mealListLimit]
		}
		for _, m := range shown {
			printMealRow(out, m)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%sShowing %d of %d meal(s), $%d in total%s\n", colorDim, len(shown), len(meals), total, colorReset)
		return nil
	})
}

func runMealShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		m, err := findMeal(a, args[0])
		if err != nil {
			return err
		}
		printMealDetail(cmd.OutOrStdout(), m)
		return nil
	})
}

func runMealEdit(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		m, err := findMeal(a, args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("restaurant") {
			m.Restaurant = mealRestaurant
		}
		if flags.Changed("branch") {
			m.Branch = mealBranch
		}
		if flags.Changed("date") {
			m.Date = mealDate
		}
		if flags.Changed("item") {
			if m.Menu, err = parseItems(mealItems); err != nil {
				return err
			}
		}
		if flags.Changed("img") {
			if m.Img, err = resolveImage(ctx, a, mealImg); err != nil {
				return err
			}
		}

		saved, err := a.svc.SaveMeal(ctx, m)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%sUpdated%s %s ($%d)\n", colorGreen, colorReset, saved.Restaurant, saved.TotalCost)
		return nil
	})
}

func runMealCopy(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		m, err := findMeal(a, args[0])
		if err != nil {
			return err
		}
		cp, err := a.svc.CopyMeal(ctx, m.ID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%sCopied%s %s to %s\n", colorGreen, colorReset, cp.Restaurant, diary.FormatROC(cp.Date, false))
		fmt.Fprintf(out, "  id: %s\n", cp.ID)
		return nil
	})
}

func runMealDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		m, err := findMeal(a, args[0])
		if err != nil {
			return err
		}
		if err := a.svc.DeleteMeal(ctx, m.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s on %s\n", m.Restaurant, diary.FormatROC(m.Date, true))
		return nil
	})
}

func runMealClear(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		logs, _ := a.svc.Snapshot()
		out := cmd.OutOrStdout()
		if len(logs) == 0 {
			fmt.Fprintln(out, "No meals logged.")
			return nil
		}
		if !mealYes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete all %d meal(s)?", len(logs))) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		if err := a.svc.ClearMeals(ctx); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %d meal(s)\n", len(logs))
		return nil
	})
}

// parseItems joins the --item values into one menu.
func parseItems(values []string) ([]diary.MenuItem, error) {
	var menu []diary.MenuItem
	for _, v := range values {
		items, err := cmdutil.ParseMenu(v)
		if errors.Is(err, cmdutil.ErrEmptyMenu) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("--item %q: %w", v, err)
		}
		menu = append(menu, items...)
	}
	return menu, nil
}

// resolveImage turns the --img value into a stored image reference.
// Empty stays empty so the diary assigns a placeholder.
func resolveImage(ctx context.Context, a *app, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	if strings.Contains(ref, "drive.google.com") {
		direct, err := diary.DriveImageURL(ref)
		if err != nil {
			return "", err
		}
		ref = direct
	}
	if err := diary.ValidateImageURL(ref); err != nil {
		return "", err
	}
	if !mealCheckImage {
		return ref, nil
	}

	ctx, cancel := context.WithTimeout(ctx, imageCheckTimeout)
	defer cancel()
	slot := diary.NewImageSlot(nil)
	if err := slot.Load(ctx, ref, diary.CheckImage(&http.Client{Timeout: imageCheckTimeout})); err != nil {
		a.logger.Warn("image check failed", "ref", ref, "error", err)
		return "", err
	}
	return slot.Current(), nil
}

// findMeal resolves a full id or a unique id prefix.
func findMeal(a *app, ref string) (diary.MealLog, error) {
	logs, _ := a.svc.Snapshot()
	ref = strings.TrimSpace(ref)
	var match *diary.MealLog
	for i := range logs {
		if logs[i].ID == ref {
			return logs[i], nil
		}
		if ref != "" && strings.HasPrefix(logs[i].ID, ref) {
			if match != nil {
				return diary.MealLog{}, fmt.Errorf("meal id %q is ambiguous", ref)
			}
			match = &logs[i]
		}
	}
	if match == nil {
		return diary.MealLog{}, fmt.Errorf("meal %s: %w", ref, diary.ErrNotFound)
	}
	return *match, nil
}

// confirm asks a yes/no question on out and reads the answer from in.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
