package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/runger/fooddiary/internal/diary"
)

var (
	seedMeals       int
	seedRestaurants int
	seedFavorites   int
	seedDays        int
	seedRandom      int64
	seedQuiet       bool
)

var seedCmd = &cobra.Command{
	Use:     "seed",
	Short:   "Fill the diary with demo meals",
	GroupID: groupData,
	Long: `Add generated meals and favorite stores to the diary, to try the
suggestions and recommendations without logging real meals first.

Use --ephemeral to seed an in-memory diary that is discarded on exit.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedMeals, "meals", 40, "Number of meals")
	seedCmd.Flags().IntVar(&seedRestaurants, "restaurants", 6, "Number of distinct restaurants")
	seedCmd.Flags().IntVar(&seedFavorites, "favorites", 2, "How many restaurants become favorite stores")
	seedCmd.Flags().IntVar(&seedDays, "days", 90, "Spread meals over this many past days")
	seedCmd.Flags().Int64Var(&seedRandom, "seed", 0, "Random seed (0 picks one)")
	seedCmd.Flags().BoolVarP(&seedQuiet, "quiet", "q", false, "Hide the progress bar")
}

// demoOptions sizes a generated diary.
type demoOptions struct {
	Meals       int
	Restaurants int
	Favorites   int
	Days        int
}

type demoRestaurant struct {
	name     string
	branches []string
	dishes   []diary.FavMenuItem
}

// generateDemo builds meals and favorite stores from fake. Meals revisit
// a small set of restaurants so that suggestions have something to rank.
func generateDemo(fake faker.Faker, now time.Time, opts demoOptions) ([]diary.MealLog, []diary.FavStore) {
	opts.Meals = max(opts.Meals, 0)
	opts.Favorites = max(opts.Favorites, 0)
	if opts.Restaurants < 1 {
		opts.Restaurants = 1
	}
	if opts.Favorites > opts.Restaurants {
		opts.Favorites = opts.Restaurants
	}
	if opts.Days < 1 {
		opts.Days = 1
	}

	restaurants := make([]demoRestaurant, opts.Restaurants)
	for i := range restaurants {
		r := demoRestaurant{name: fake.Company().Name()}
		for b := fake.IntBetween(0, 2); b > 0; b-- {
			r.branches = append(r.branches, fake.Address().City())
		}
		for d := fake.IntBetween(3, 6); d > 0; d-- {
			r.dishes = append(r.dishes, diary.FavMenuItem{Name: demoDish(fake), Price: demoPrice(fake)})
		}
		restaurants[i] = r
	}

	start := now.AddDate(0, 0, -opts.Days)
	meals := make([]diary.MealLog, 0, opts.Meals)
	for i := 0; i < opts.Meals; i++ {
		// Earlier restaurants are visited more often.
		r := restaurants[fake.IntBetween(0, fake.IntBetween(0, len(restaurants)-1))]
		m := diary.MealLog{
			Restaurant: r.name,
			Date:       diary.LocalDateTime(fake.Time().TimeBetween(start, now)),
		}
		if len(r.branches) > 0 {
			m.Branch = r.branches[fake.IntBetween(0, len(r.branches)-1)]
		}
		for n := fake.IntBetween(1, 3); n > 0; n-- {
			dish := r.dishes[fake.IntBetween(0, len(r.dishes)-1)]
			item := diary.MenuItem{Name: dish.Name, Price: dish.Price, Amount: fake.IntBetween(1, 2)}
			if fake.IntBetween(0, 4) == 0 {
				item.Note = fake.Lorem().Word()
			}
			m.Menu = append(m.Menu, item)
		}
		meals = append(meals, m)
	}

	favs := make([]diary.FavStore, 0, opts.Favorites)
	for _, r := range restaurants[:opts.Favorites] {
		f := diary.FavStore{
			Name:      r.name,
			Address:   fake.Address().StreetAddress(),
			MenuItems: append([]diary.FavMenuItem(nil), r.dishes[:2]...),
		}
		if fake.Bool() {
			f.Notes = fake.Lorem().Sentence(6)
		}
		favs = append(favs, f)
	}
	return meals, favs
}

func demoDish(fake faker.Faker) string {
	switch fake.IntBetween(0, 2) {
	case 0:
		return fake.Food().Fruit() + " " + fake.Lorem().Word()
	case 1:
		return fake.Food().Vegetable() + " " + fake.Lorem().Word()
	}
	return fake.Lorem().Word()
}

// demoPrice returns a price in whole multiples of 5.
func demoPrice(fake faker.Faker) int {
	return fake.IntBetween(8, 80) * 5
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedMeals < 0 || seedFavorites < 0 {
		return fmt.Errorf("--meals and --favorites must be >= 0")
	}
	seed := seedRandom
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	fake := faker.NewWithSeed(rand.NewSource(seed))
	meals, favs := generateDemo(fake, time.Now(), demoOptions{
		Meals:       seedMeals,
		Restaurants: seedRestaurants,
		Favorites:   seedFavorites,
		Days:        seedDays,
	})

	return withApp(cmd, func(ctx context.Context, a *app) error {
		var progress io.Writer = cmd.ErrOrStderr()
		if seedQuiet {
			progress = io.Discard
		}
		bar := progressbar.NewOptions(len(meals)+len(favs),
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("Seeding diary"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		for _, f := range favs {
			if _, err := a.svc.SaveFavStore(ctx, f); err != nil {
				return fmt.Errorf("seed favorite %s: %w", f.Name, err)
			}
			_ = bar.Add(1)
		}
		for _, m := range meals {
			if _, err := a.svc.SaveMeal(ctx, m); err != nil {
				return fmt.Errorf("seed meal at %s: %w", m.Restaurant, err)
			}
			_ = bar.Add(1)
		}
		_ = bar.Finish()

		a.logger.Info("diary seeded", "meal_logs", len(meals), "fav_stores", len(favs), "seed", seed)
		fmt.Fprintf(cmd.OutOrStdout(), "%sSeeded%s %d meal(s) and %d favorite store(s) (seed %d)\n",
			colorGreen, colorReset, len(meals), len(favs), seed)
		return nil
	})
}
