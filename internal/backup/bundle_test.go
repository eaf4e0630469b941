package backup

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/fooddiary/internal/diary"
	"github.com/runger/fooddiary/internal/storage"
)

func sampleState() *diary.State {
	logs := []diary.MealLog{
		{
			ID:         "m2",
			Restaurant: "阿宗麵線",
			Branch:     "西門",
			Date:       "2024-05-02T12:30",
			Menu:       []diary.MenuItem{{Name: "大碗麵線", Price: 75, Amount: 2, Note: "不要香菜"}},
			TotalCost:  150,
			Img:        "https://dummyimage.com/600x400/aabbcc/FFFFFF?text=阿宗麵線",
		},
		{
			ID:         "m1",
			Restaurant: "Curry House",
			Date:       "2024-05-01",
			Menu:       []diary.MenuItem{{Name: "Katsu", Price: 220, Amount: 1}},
			TotalCost:  220,
		},
	}
	return &diary.State{
		MealLogs: logs,
		FavStores: []diary.FavStore{{
			ID:        "s1",
			Name:      "阿宗麵線",
			Branch:    "西門",
			Address:   "台北市萬華區峨眉街8號之1",
			MenuItems: []diary.FavMenuItem{{Name: "大碗麵線", Price: 75}},
		}},
		PopularItems: diary.ComputePopularItems(logs),
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	t.Parallel()

	state := sampleState()
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, FromState(state)))
	assert.True(t, isGzip(buf.Bytes()))

	got, err := Import(&buf, "backup"+Ext)
	require.NoError(t, err)
	assert.Equal(t, state.MealLogs, got.MealLogs)
	assert.Equal(t, state.FavStores, got.FavStores)
	assert.Equal(t, state.PopularItems, got.PopularItems)
}

func TestExport_EmptyState(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, Bundle{}))
	raw, err := storage.Gunzip(buf.Bytes())
	require.NoError(t, err)
	assert.JSONEq(t, `{"mealLogs":[],"favStores":[],"popularItems":{}}`, string(raw))

	got, err := Import(bytes.NewReader(buf.Bytes()), "x.myfood")
	require.NoError(t, err)
	assert.Empty(t, got.MealLogs)
}

func TestFromState_Copies(t *testing.T) {
	t.Parallel()

	state := sampleState()
	b := FromState(state)
	b.MealLogs[0].ID = "changed"
	b.PopularItems["x"] = diary.PopularItem{Count: 1}
	assert.Equal(t, "m2", state.MealLogs[0].ID)
	_, ok := state.PopularItems["x"]
	assert.False(t, ok)
}

func TestFileName(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.May, 2, 8, 5, 0, 0, time.Local)
	assert.Equal(t, "吃吃吃_1130502-0805.myfood", FileName(now))

	now = time.Date(2025, time.December, 31, 23, 59, 0, 0, time.Local)
	assert.Equal(t, "吃吃吃_1141231-2359.myfood", FileName(now))
}

func TestImport_Formats(t *testing.T) {
	t.Parallel()

	plain := `{"mealLogs":[{"id":"a","restaurant":"R","date":"2024-01-01","menu":[{"name":"x","price":10,"amount":1}],"totalCost":10,"img":""}],"favStores":[],"popularItems":{}}`

	t.Run("plain JSON", func(t *testing.T) {
		b, err := Import(strings.NewReader(plain), "backup.json")
		require.NoError(t, err)
		require.Len(t, b.MealLogs, 1)
		assert.Equal(t, "R", b.MealLogs[0].Restaurant)
	})

	t.Run("base64 JSON", func(t *testing.T) {
		enc := base64.StdEncoding.EncodeToString([]byte(plain))
		b, err := Import(strings.NewReader(enc+"\n"), "backup.txt")
		require.NoError(t, err)
		require.Len(t, b.MealLogs, 1)
	})

	t.Run("legacy extension", func(t *testing.T) {
		compressed, err := storage.Gzip([]byte(plain))
		require.NoError(t, err)
		b, err := Import(bytes.NewReader(compressed), "匯出壓縮檔_1130502"+LegacyExt)
		require.NoError(t, err)
		require.Len(t, b.MealLogs, 1)
	})

	t.Run("gzip without extension", func(t *testing.T) {
		compressed, err := storage.Gzip([]byte(plain))
		require.NoError(t, err)
		_, err = Import(bytes.NewReader(compressed), "download")
		require.NoError(t, err)
	})
}

func TestImport_LegacyKeys(t *testing.T) {
	t.Parallel()

	legacy := `{
		"meals": [{"id":"1","restaurant":"R","date":"2023-01-01","menu":[{"name":"x","price":30}],"totalCost":30,"img":""}],
		"restaurants": [{"id":"s","name":"R","menuItems":[{"name":"x","price":30}]}],
		"popularItems": {"x": {"count": 1, "avgPrice": 30}}
	}`
	b, err := Import(strings.NewReader(legacy), "old.json")
	require.NoError(t, err)
	require.Len(t, b.MealLogs, 1)
	assert.Equal(t, 1, b.MealLogs[0].Menu[0].Amount, "missing amount defaults to 1")
	require.Len(t, b.FavStores, 1)
	assert.Equal(t, "R", b.FavStores[0].Name)
	assert.Equal(t, 30, b.PopularItems["x"].AvgPrice)
}

func TestImport_RecomputesTotals(t *testing.T) {
	t.Parallel()

	edited := `{
		"mealLogs": [{"id":"1","restaurant":"R","date":"2024-05-01","menu":[{"name":"x","price":30,"amount":2},{"name":"y","price":15}],"totalCost":999}],
		"favStores": [],
		"popularItems": {}
	}`
	b, err := Import(strings.NewReader(edited), "edited.json")
	require.NoError(t, err)
	require.Len(t, b.MealLogs, 1)
	assert.Equal(t, 75, b.MealLogs[0].TotalCost)
}

func TestImport_Invalid(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":                "",
		"not json":             "hello there!",
		"array":                `[]`,
		"null":                 `null`,
		"missing mealLogs":     `{"favStores":[],"popularItems":{}}`,
		"missing favStores":    `{"mealLogs":[],"popularItems":{}}`,
		"missing popularItems": `{"mealLogs":[],"favStores":[]}`,
		"mealLogs object":      `{"mealLogs":{},"favStores":[],"popularItems":{}}`,
		"favStores string":     `{"mealLogs":[],"favStores":"x","popularItems":{}}`,
		"popularItems array":   `{"mealLogs":[],"favStores":[],"popularItems":[]}`,
		"popularItems null":    `{"mealLogs":[],"favStores":[],"popularItems":null}`,
		"wrong element type":   `{"mealLogs":[1,2],"favStores":[],"popularItems":{}}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			b, err := Import(strings.NewReader(content), "x.json")
			assert.Nil(t, b)
			assert.True(t, errors.Is(err, ErrInvalidBundle), "got %v", err)
		})
	}

	_, err := Import(strings.NewReader("not gzip"), "x.myfood")
	assert.True(t, errors.Is(err, ErrInvalidBundle))
}
