package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/fooddiary/internal/diary"
)

func TestMealAddListShow(t *testing.T) {
	setupCLI(t)

	out := mustExecute(t, "meal", "add", "-r", "Ramen", "-b", "Main", "-d", "2024-05-01",
		"--item", "Noodle price=180 amount=2", "--item", `name="Soft egg" price=30 note="half"`)
	assert.Contains(t, out, "Saved Ramen ($390)")
	id := savedID(t, out)

	mustExecute(t, "meal", "add", "-r", "Curry", "-d", "2024-04-29", "--item", "Rice price=100")

	out = mustExecute(t, "meal", "list")
	ramen := strings.Index(out, "Ramen Main")
	curry := strings.Index(out, "Curry")
	require.NotEqual(t, -1, ramen, out)
	require.NotEqual(t, -1, curry, out)
	assert.Less(t, ramen, curry, "newest first")
	assert.Contains(t, out, "113 / 5 / 01（週三）")
	assert.Contains(t, out, "Showing 2 of 2 meal(s), $490 in total")

	out = mustExecute(t, "meal", "list", "-r", "Curry")
	assert.NotContains(t, out, "Ramen")
	assert.Contains(t, out, "Showing 1 of 1")

	out = mustExecute(t, "meal", "list", "--from", "2024-04-30")
	assert.NotContains(t, out, "Curry")

	out = mustExecute(t, "meal", "show", id[:8])
	assert.Contains(t, out, "branch: Main")
	assert.Contains(t, out, "Soft egg")
	assert.Contains(t, out, "×2")
	assert.Contains(t, out, "half")
	assert.Contains(t, out, "https://dummyimage.com/600x400/", "placeholder image assigned")
}

func TestMealListEmpty(t *testing.T) {
	setupCLI(t)

	out := mustExecute(t, "meal", "list")
	assert.Contains(t, out, "No meals logged.")
}

func TestMealAdd_Invalid(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "", "meal", "add", "--item", "Noodle price=180")
	assert.ErrorIs(t, err, diary.ErrInvalidMeal)

	_, err = execute(t, "", "meal", "add", "-r", "Ramen")
	assert.ErrorIs(t, err, diary.ErrInvalidMeal, "a meal needs a dish")

	_, err = execute(t, "", "meal", "add", "-r", "Ramen", "--item", "price=10")
	assert.Error(t, err)

	_, err = execute(t, "", "meal", "add", "-r", "Ramen", "--item", "Noodle", "--img", "ftp://example.com/x.png")
	assert.ErrorIs(t, err, diary.ErrInvalidImage)

	out := mustExecute(t, "meal", "list")
	assert.Contains(t, out, "No meals logged.", "failed adds store nothing")
}

func TestMealAdd_DriveImage(t *testing.T) {
	setupCLI(t)

	out := mustExecute(t, "meal", "add", "-r", "Ramen", "--item", "Noodle",
		"--img", "https://drive.google.com/file/d/abc123/view?usp=sharing")
	id := savedID(t, out)

	out = mustExecute(t, "meal", "show", id)
	assert.Contains(t, out, "image:  https://lh3.googleusercontent.com/d/abc123")
}

func TestMealEdit(t *testing.T) {
	setupCLI(t)

	id := savedID(t, mustExecute(t, "meal", "add", "-r", "Ramen", "-d", "2024-05-01", "--item", "Noodle price=180"))

	out := mustExecute(t, "meal", "edit", id, "-b", "East")
	assert.Contains(t, out, "Updated Ramen ($180)")

	out = mustExecute(t, "meal", "show", id)
	assert.Contains(t, out, "branch: East")
	assert.Contains(t, out, "Noodle", "menu kept when --item is not given")
	assert.Contains(t, out, "2024-05-01")

	mustExecute(t, "meal", "edit", id, "--item", "Gyoza price=60 amount=3")
	out = mustExecute(t, "meal", "show", id)
	assert.NotContains(t, out, "Noodle")
	assert.Contains(t, out, "total:  $180")

	_, err := execute(t, "", "meal", "edit", "missing", "-b", "x")
	assert.ErrorIs(t, err, diary.ErrNotFound)
}

func TestMealCopyAndDelete(t *testing.T) {
	setupCLI(t)

	id := savedID(t, mustExecute(t, "meal", "add", "-r", "Ramen", "-d", "2024-05-01", "--item", "Noodle price=180"))

	out := mustExecute(t, "meal", "copy", id)
	assert.Contains(t, out, "Copied Ramen")
	copyID := savedID(t, out)
	assert.NotEqual(t, id, copyID)

	out = mustExecute(t, "meal", "list")
	assert.Contains(t, out, "Showing 2 of 2")

	out = mustExecute(t, "meal", "delete", id)
	assert.Contains(t, out, "Deleted Ramen on 113 / 5 / 01")

	out = mustExecute(t, "meal", "list")
	assert.Contains(t, out, "Showing 1 of 1")

	_, err := execute(t, "", "meal", "delete", id)
	assert.True(t, errors.Is(err, diary.ErrNotFound))
}

func TestMealClear(t *testing.T) {
	setupCLI(t)

	mustExecute(t, "meal", "add", "-r", "Ramen", "--item", "Noodle")
	mustExecute(t, "meal", "add", "-r", "Curry", "--item", "Rice")
	mustExecute(t, "fav", "add", "-n", "Ramen", "--item", "Chashu price=250")

	out, err := execute(t, "n\n", "meal", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Delete all 2 meal(s)? [y/N]")
	assert.Contains(t, out, "Cancelled.")

	out, err = execute(t, "y\n", "meal", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 2 meal(s)")

	out = mustExecute(t, "meal", "list")
	assert.Contains(t, out, "No meals logged.")
	out = mustExecute(t, "fav", "list")
	assert.Contains(t, out, "Ramen", "favorite stores survive clear")

	mustExecute(t, "meal", "add", "-r", "Curry", "--item", "Rice")
	out = mustExecute(t, "meal", "clear", "--yes")
	assert.Contains(t, out, "Deleted 1 meal(s)")
}

func TestMealShow_BlankID(t *testing.T) {
	setupCLI(t)

	mustExecute(t, "meal", "add", "-r", "A", "--item", "x")

	_, err := execute(t, "", "meal", "show", " ")
	assert.ErrorIs(t, err, diary.ErrNotFound, "a blank id is not a prefix of everything")
}

func TestParseItems(t *testing.T) {
	menu, err := parseItems([]string{"Noodle price=180", "", "Egg price=15 amount=2"})
	require.NoError(t, err)
	require.Len(t, menu, 2)
	assert.Equal(t, diary.MenuItem{Name: "Noodle", Price: 180, Amount: 1}, menu[0])
	assert.Equal(t, 2, menu[1].Amount)

	_, err = parseItems([]string{"Noodle price=abc"})
	assert.ErrorContains(t, err, `--item "Noodle price=abc"`)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"yes", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		var out strings.Builder
		got := confirm(strings.NewReader(tt.input), &out, "Sure?")
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, "Sure? [y/N] ", out.String())
	}
}
