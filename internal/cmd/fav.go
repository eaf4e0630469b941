package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/fooddiary/internal/cmdutil"
	"github.com/runger/fooddiary/internal/diary"
)

var (
	favName    string
	favBranch  string
	favAddress string
	favNotes   string
	favItems   []string
	favLimit   int
)

var favCmd = &cobra.Command{
	Use:     "fav",
	Short:   "Manage favorite stores",
	GroupID: groupDiary,
}

var favAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a favorite store with a preset menu",
	Long: `Add a favorite store. Its preset menu is offered first when you
log a meal there.

Examples:
  fooddiary fav add -n Ramen --item 'Chashu price=250' --item 'Gyoza price=60'
  fooddiary fav add -n 鼎泰豐 -b 信義店 --address '信義路二段194號'`,
	Args: cobra.NoArgs,
	RunE: runFavAdd,
}

var favListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite stores",
	Args:  cobra.NoArgs,
	RunE:  runFavList,
}

var favDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a favorite store",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavDelete,
}

var favRecommendCmd = &cobra.Command{
	Use:   "recommend [restaurant]",
	Short: "Suggest stores to favorite, or dishes for a store's menu",
	Long: `Without an argument, lists restaurants you visit that are not yet
favorites. With a restaurant, lists dishes from your history that its
preset menu does not have yet.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFavRecommend,
}

func init() {
	favAddCmd.Flags().StringVarP(&favName, "name", "n", "", "Store name")
	favAddCmd.Flags().StringVarP(&favBranch, "branch", "b", "", "Branch")
	favAddCmd.Flags().StringVar(&favAddress, "address", "", "Address")
	favAddCmd.Flags().StringVar(&favNotes, "notes", "", "Notes")
	favAddCmd.Flags().StringArrayVarP(&favItems, "item", "i", nil, "Preset dishes as key=value words (repeatable)")

	favRecommendCmd.Flags().IntVarP(&favLimit, "limit", "n", 5, "Maximum number of dishes")

	favCmd.AddCommand(favAddCmd, favListCmd, favDeleteCmd, favRecommendCmd)
}

func runFavAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		f := diary.FavStore{
			Name:    favName,
			Branch:  favBranch,
			Address: favAddress,
			Notes:   favNotes,
		}
		for _, v := range favItems {
			items, err := cmdutil.ParseFavMenu(v)
			if errors.Is(err, cmdutil.ErrEmptyMenu) {
				continue
			}
			if err != nil {
				return fmt.Errorf("--item %q: %w", v, err)
			}
			f.MenuItems = append(f.MenuItems, items...)
		}

		saved, err := a.svc.SaveFavStore(ctx, f)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%sSaved%s %s with %d preset dish(es)\n", colorGreen, colorReset, saved.Name, len(saved.MenuItems))
		fmt.Fprintf(out, "  id: %s\n", saved.ID)
		return nil
	})
}

func runFavList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		_, favs := a.svc.Snapshot()
		out := cmd.OutOrStdout()
		if len(favs) == 0 {
			fmt.Fprintln(out, "No favorite stores.")
			fmt.Fprintf(out, "Tip: %sfooddiary fav recommend%s lists the places you visit most.\n", colorCyan, colorReset)
			return nil
		}
		for _, f := range favs {
			printFavStore(out, f)
		}
		return nil
	})
}

func runFavDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		f, err := findFavStore(a, args[0])
		if err != nil {
			return err
		}
		if err := a.svc.DeleteFavStore(ctx, f.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted favorite %s\n", f.Name)
		return nil
	})
}

func runFavRecommend(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		logs, favs := a.svc.Snapshot()
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			recs := diary.RecommendedFavStores(logs, favs)
			if len(recs) == 0 {
				fmt.Fprintln(out, "Nothing to recommend yet.")
				return nil
			}
			fmt.Fprintf(out, "%sVisited often%s\n", colorBold, colorReset)
			for _, r := range recs {
				fmt.Fprintf(out, "  %s  %s×%d%s\n", pad(r.Name, 24), colorDim, r.Count, colorReset)
			}
			return nil
		}

		name := strings.TrimSpace(args[0])
		var existing []diary.FavMenuItem
		state := a.svc.State()
		if f, ok := state.FindStoreByName(name); ok {
			existing = f.MenuItems
		}
		recs := diary.FavMenuRecommendations(logs, name, existing, favLimit)
		if len(recs) == 0 {
			fmt.Fprintf(out, "No dishes to recommend for %s.\n", name)
			return nil
		}
		fmt.Fprintf(out, "%sOrdered at %s%s\n", colorBold, name, colorReset)
		printRecommendations(out, recs)
		return nil
	})
}

// findFavStore resolves a full id, a unique id prefix or an exact name.
func findFavStore(a *app, ref string) (diary.FavStore, error) {
	_, favs := a.svc.Snapshot()
	ref = strings.TrimSpace(ref)
	var match *diary.FavStore
	for i := range favs {
		if favs[i].ID == ref {
			return favs[i], nil
		}
		if ref != "" && strings.HasPrefix(favs[i].ID, ref) {
			if match != nil {
				return diary.FavStore{}, fmt.Errorf("store id %q is ambiguous", ref)
			}
			match = &favs[i]
		}
	}
	if match != nil {
		return *match, nil
	}
	state := a.svc.State()
	if f, ok := state.FindStoreByName(ref); ok {
		return f, nil
	}
	return diary.FavStore{}, fmt.Errorf("favorite store %s: %w", ref, diary.ErrNotFound)
}
