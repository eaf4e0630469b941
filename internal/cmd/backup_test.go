package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/fooddiary/internal/backup"
)

func TestExportImportRoundTrip(t *testing.T) {
	dir := setupCLI(t)
	seedCLI(t)

	file := filepath.Join(dir, "diary.myfood")
	out := mustExecute(t, "export", "--out", file)
	assert.Contains(t, out, "Exported 3 meal(s), 1 favorite store(s)")
	assert.Contains(t, out, file)

	before := mustExecute(t, "meal", "list")

	mustExecute(t, "meal", "clear", "--yes")
	mustExecute(t, "fav", "delete", "Ramen")

	out = mustExecute(t, "import", file)
	assert.Contains(t, out, "Backup has 3 meal(s) and 1 favorite store(s).")
	assert.NotContains(t, out, "[y/N]", "an empty diary is replaced without asking")
	assert.Contains(t, out, "Imported diary.myfood")

	assert.Equal(t, before, mustExecute(t, "meal", "list"))
	assert.Contains(t, mustExecute(t, "fav", "list"), "Chashu $250")
}

func TestExport_DefaultLocation(t *testing.T) {
	dir := setupCLI(t)
	seedCLI(t)

	out := mustExecute(t, "export")
	backups := filepath.Join(dir, "data", "fooddiary", "backups")
	assert.Contains(t, out, backups)

	entries, err := os.ReadDir(backups)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	name := entries[0].Name()
	assert.True(t, strings.HasPrefix(name, "吃吃吃_"), name)
	assert.True(t, strings.HasSuffix(name, backup.Ext), name)
}

func TestExport_Stdout(t *testing.T) {
	setupCLI(t)
	seedCLI(t)

	out := mustExecute(t, "export", "--out", "-")
	b, err := backup.Import(strings.NewReader(out), "stdout.myfood")
	require.NoError(t, err)
	assert.Len(t, b.MealLogs, 3)
	assert.Len(t, b.FavStores, 1)
}

func TestImport_AsksBeforeReplacing(t *testing.T) {
	dir := setupCLI(t)
	seedCLI(t)

	file := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"mealLogs":[],"favStores":[],"popularItems":{}}`), 0644))

	out, err := execute(t, "n\n", "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Replace the current 3 meal(s) and 1 favorite store(s)? [y/N]")
	assert.Contains(t, out, "Cancelled.")
	assert.Contains(t, mustExecute(t, "meal", "list"), "Showing 3 of 3")

	mustExecute(t, "import", file, "--yes")
	assert.Contains(t, mustExecute(t, "meal", "list"), "No meals logged.")
	assert.Contains(t, mustExecute(t, "fav", "list"), "No favorite stores.")
}

func TestImport_InvalidLeavesDiary(t *testing.T) {
	dir := setupCLI(t)
	seedCLI(t)

	file := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"mealLogs":{}}`), 0644))

	_, err := execute(t, "", "import", file, "--yes")
	assert.ErrorIs(t, err, backup.ErrInvalidBundle)

	_, err = execute(t, "", "import", filepath.Join(dir, "missing.myfood"))
	assert.ErrorContains(t, err, "failed to open backup")

	assert.Contains(t, mustExecute(t, "meal", "list"), "Showing 3 of 3")
}

func TestExportPath(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 5, 2, 18, 30, 0, 0, time.Local)
	want := backup.FileName(now)

	got, err := exportPath("", filepath.Join(dir, "backups"), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backups", want), got)

	got, err = exportPath(dir, "unused", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, want), got, "an existing directory gets a generated name")

	got, err = exportPath(filepath.Join(dir, "mine.myfood"), "unused", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mine.myfood"), got)
}
