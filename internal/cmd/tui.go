package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/runger/fooddiary/internal/logging"
	"github.com/runger/fooddiary/internal/tui"
)

// Smallest terminal the diary layout fits in.
const (
	minTermCols = 40
	minTermRows = 12
)

var errNotTerminal = errors.New("the interactive diary needs a terminal; use the meal, fav and suggest commands in scripts")

var tuiCmd = &cobra.Command{
	Use:     "tui",
	Short:   "Open the interactive diary",
	GroupID: groupDiary,
	Long: `Open the interactive diary. This is also what runs when fooddiary is
started without a subcommand.

Keys: a add meal, enter edit, c copy, d delete, f favorite stores,
p popular dishes, ? help, q quit.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	cols, rows, ok := terminalSize(os.Stdout)
	if !ok || !isTerminal(os.Stdin) {
		return errNotTerminal
	}
	if os.Getenv("TERM") == "dumb" {
		return errors.New("TERM=dumb is not supported by the interactive diary")
	}
	if cols < minTermCols || rows < minTermRows {
		return fmt.Errorf("terminal is %dx%d, the diary needs at least %dx%d", cols, rows, minTermCols, minTermRows)
	}

	a, err := openStorage(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	// Saves rewrite whole collections, so two sessions would overwrite
	// each other.
	if !a.cfg.Storage.Ephemeral {
		release, err := acquireLock(a.cfg.DatabasePath(a.paths) + ".lock")
		if err != nil {
			return err
		}
		defer release()
	}

	logging.LogStartup(a.logger, a.startupInfo())
	defer logging.LogShutdown(a.logger, "tui exited")

	out := termenv.NewOutput(os.Stdout)
	if colorMode == "never" {
		lipgloss.SetColorProfile(termenv.Ascii)
	} else {
		lipgloss.SetColorProfile(out.ColorProfile())
	}

	return tui.Run(tui.Options{
		KV:      a.kv,
		Config:  a.cfg,
		Logger:  a.logger,
		Context: cmd.Context(),
	}, os.Stdin, os.Stdout)
}
