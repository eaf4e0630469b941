package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/fooddiary/internal/backup"
	"github.com/runger/fooddiary/internal/logging"
)

var (
	exportOut string
	importYes bool
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Write the whole diary to a backup file",
	GroupID: groupData,
	Long: `Write meal logs, favorite stores and popular dishes to a single
gzip-compressed backup (*.myfood).

Without --out the file goes to the backup directory (backup.dir) and is
named after the current time, e.g. 吃吃吃_1130502-1830.myfood.
--out may name a file or a directory; "-" writes to stdout.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:     "import <file>",
	Short:   "Replace the diary with a backup",
	GroupID: groupData,
	Long: `Replace the diary with the content of a backup file.

Compressed backups (*.myfood, *.吃吃吃) and plain or base64-encoded JSON
are accepted. The file is validated before anything is changed.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file or directory (- for stdout)")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Do not ask for confirmation")
}

func runExport(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		state := a.svc.State()
		bundle := backup.FromState(&state)

		if exportOut == "-" {
			return backup.Export(cmd.OutOrStdout(), bundle)
		}

		path, err := exportPath(exportOut, a.cfg.BackupDir(a.paths), time.Now())
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create backup directory: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		if err := backup.Export(f, bundle); err != nil {
			f.Close()
			_ = os.Remove(path)
			return err
		}
		info, err := f.Stat()
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}

		logging.LogExport(a.logger, path, info.Size())
		fmt.Fprintf(cmd.OutOrStdout(), "%sExported%s %d meal(s), %d favorite store(s)\n",
			colorGreen, colorReset, len(bundle.MealLogs), len(bundle.FavStores))
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", path)
		return nil
	})
}

// exportPath resolves --out. An existing directory, or an empty value,
// gets a timestamped file name.
func exportPath(out, defaultDir string, now time.Time) (string, error) {
	if out == "" {
		return filepath.Join(defaultDir, backup.FileName(now)), nil
	}
	info, err := os.Stat(out)
	if err == nil && info.IsDir() {
		return filepath.Join(out, backup.FileName(now)), nil
	}
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check %s: %w", out, err)
	}
	return out, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	bundle, err := backup.Import(f, filepath.Base(path))
	f.Close()
	if err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		out := cmd.OutOrStdout()
		logs, favs := a.svc.Snapshot()
		fmt.Fprintf(out, "Backup has %d meal(s) and %d favorite store(s).\n", len(bundle.MealLogs), len(bundle.FavStores))
		if len(logs)+len(favs) > 0 && !importYes {
			question := fmt.Sprintf("Replace the current %d meal(s) and %d favorite store(s)?", len(logs), len(favs))
			if !confirm(cmd.InOrStdin(), out, question) {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
		}

		if err := a.svc.ReplaceAll(ctx, bundle.MealLogs, bundle.FavStores); err != nil {
			return err
		}
		logging.LogImport(a.logger, path, len(bundle.MealLogs), len(bundle.FavStores))
		fmt.Fprintf(out, "%sImported%s %s\n", colorGreen, colorReset, filepath.Base(path))
		return nil
	})
}
