package diary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logsFixture() []MealLog {
	return []MealLog{
		{Restaurant: "Noodle", Menu: []MenuItem{{Name: "Beef", Price: 100, Note: "spicy"}, {Name: "Tea", Price: 30}}},
		{Restaurant: "Noodle", Menu: []MenuItem{{Name: "Beef", Price: 121}}},
		{Restaurant: "Noodle", Menu: []MenuItem{{Name: " Beef ", Price: 110}, {Name: "Egg", Price: 15}}},
		{Restaurant: "Cafe", Menu: []MenuItem{{Name: "Tea", Price: 60}, {Name: "", Price: 99}}},
	}
}

func TestComputePopularItems(t *testing.T) {
	t.Parallel()

	got := ComputePopularItems(logsFixture())
	require.Len(t, got, 3)

	// 100 -> round((100+121)/2)=111 -> round((111*2+110)/3)=111
	assert.Equal(t, PopularItem{Count: 3, AvgPrice: 111, Note: "spicy"}, got["Beef"])
	assert.Equal(t, PopularItem{Count: 2, AvgPrice: 45}, got["Tea"])
	assert.Equal(t, 1, got["Egg"].Count)

	assert.Equal(t, got, ComputePopularItems(logsFixture()), "recomputation is deterministic")
	assert.Empty(t, ComputePopularItems(nil))
}

func TestRestaurantDishes(t *testing.T) {
	t.Parallel()

	got := RestaurantDishes(logsFixture(), " Noodle ")
	require.Len(t, got, 3)
	assert.Equal(t, DishStat{Name: "Beef", Price: 111, Count: 3}, got[0])
	assert.Equal(t, "Egg", got[1].Name, "equal counts ordered by name")
	assert.Equal(t, "Tea", got[2].Name)

	assert.Nil(t, RestaurantDishes(logsFixture(), ""))
	assert.Empty(t, RestaurantDishes(logsFixture(), "Unknown"))
}

func TestMenuRecommendations(t *testing.T) {
	t.Parallel()

	s := &State{
		MealLogs: logsFixture(),
		FavStores: []FavStore{{
			Name:      "Noodle",
			MenuItems: []FavMenuItem{{Name: "Beef", Price: 120}, {Name: "Soup", Price: 50}},
		}},
	}
	got := MenuRecommendations(s, "Noodle")
	require.Len(t, got, 4)
	assert.Equal(t, Recommendation{Name: "Beef", Price: 120, Source: SourceCustom}, got[0])
	assert.Equal(t, SourceCustom, got[1].Source)
	assert.Equal(t, Recommendation{Name: "Egg", Price: 15, Count: 1, Source: SourceHistory}, got[2])
	assert.Equal(t, "Tea", got[3].Name)

	assert.Nil(t, MenuRecommendations(s, " "))
	cafe := MenuRecommendations(s, "Cafe")
	require.Len(t, cafe, 1)
	assert.Equal(t, SourceHistory, cafe[0].Source)
}

func TestFavMenuRecommendations(t *testing.T) {
	t.Parallel()

	got := FavMenuRecommendations(logsFixture(), "Noodle", []FavMenuItem{{Name: "Beef"}}, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "Egg", got[0].Name)

	got = FavMenuRecommendations(logsFixture(), "Noodle", nil, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "Beef", got[0].Name)
}

func TestRecommendedFavStores(t *testing.T) {
	t.Parallel()

	logs := append(logsFixture(), MealLog{Restaurant: "Bistro"}, MealLog{Restaurant: "Bistro"})
	got := RecommendedFavStores(logs, []FavStore{{Name: "Noodle"}})
	assert.Equal(t, []RestaurantCount{{Name: "Bistro", Count: 2}, {Name: "Cafe", Count: 1}}, got)
}
