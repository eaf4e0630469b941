package cmd

import (
	"math/rand"
	"testing"
	"time"

	"github.com/jaswdr/faker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/fooddiary/internal/diary"
)

func TestGenerateDemo(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.Local)
	opts := demoOptions{Meals: 25, Restaurants: 4, Favorites: 2, Days: 30}
	meals, favs := generateDemo(faker.NewWithSeed(rand.NewSource(7)), now, opts)

	require.Len(t, meals, 25)
	require.Len(t, favs, 2)

	earliest := diary.LocalYMD(now.AddDate(0, 0, -30))
	restaurants := map[string]bool{}
	for _, m := range meals {
		m.Normalize()
		require.NoError(t, m.Validate(), "generated meals are valid")
		restaurants[m.Restaurant] = true
		day := m.Date[:10]
		assert.GreaterOrEqual(t, day, earliest)
		assert.LessOrEqual(t, day, diary.LocalYMD(now))
		for _, it := range m.Menu {
			assert.Zero(t, it.Price%5)
		}
	}
	assert.LessOrEqual(t, len(restaurants), 4)

	for _, f := range favs {
		f.Normalize()
		require.NoError(t, f.Validate())
		assert.Len(t, f.MenuItems, 2)
	}
}

func TestGenerateDemo_SameSeedSameDiary(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.Local)
	opts := demoOptions{Meals: 10, Restaurants: 3, Favorites: 1, Days: 10}
	a, af := generateDemo(faker.NewWithSeed(rand.NewSource(42)), now, opts)
	b, bf := generateDemo(faker.NewWithSeed(rand.NewSource(42)), now, opts)
	assert.Equal(t, a, b)
	assert.Equal(t, af, bf)
}

func TestGenerateDemo_ClampsOptions(t *testing.T) {
	t.Parallel()

	now := time.Now()
	meals, favs := generateDemo(faker.NewWithSeed(rand.NewSource(1)), now, demoOptions{Meals: 3, Restaurants: 0, Favorites: 5})
	assert.Len(t, meals, 3)
	assert.Len(t, favs, 1, "favorites cannot outnumber restaurants")

	meals, favs = generateDemo(faker.NewWithSeed(rand.NewSource(1)), now, demoOptions{Meals: -1, Restaurants: 2, Favorites: -3})
	assert.Empty(t, meals)
	assert.Empty(t, favs)
}

func TestSeedCommand(t *testing.T) {
	setupCLI(t)

	out := mustExecute(t, "seed", "--meals", "8", "--restaurants", "3", "--favorites", "1", "--seed", "3", "--quiet")
	assert.Contains(t, out, "Seeded 8 meal(s) and 1 favorite store(s) (seed 3)")

	assert.Contains(t, mustExecute(t, "meal", "list"), "Showing 8 of 8")
	assert.NotContains(t, mustExecute(t, "fav", "list"), "No favorite stores.")
	assert.NotContains(t, mustExecute(t, "suggest", "restaurant"), "No suggestions.")
}

func TestSeedCommand_RejectsNegativeCounts(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "", "seed", "--meals", "-1", "--quiet")
	assert.Error(t, err)
	_, err = execute(t, "", "seed", "--favorites", "-2", "--quiet")
	assert.Error(t, err)

	assert.Contains(t, mustExecute(t, "meal", "list"), "No meals logged.")
}

func TestSeedCommand_Ephemeral(t *testing.T) {
	setupCLI(t)

	out := mustExecute(t, "seed", "--ephemeral", "--meals", "5", "--quiet")
	assert.Contains(t, out, "Seeded 5 meal(s)")

	assert.Contains(t, mustExecute(t, "meal", "list"), "No meals logged.", "nothing written to disk")
}
