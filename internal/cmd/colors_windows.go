//go:build windows

package cmd

import (
	"os"

	"golang.org/x/sys/windows"
)

// terminalSize reports the console buffer window of f. ok is false when f
// is not a console.
func terminalSize(f *os.File) (cols, rows int, ok bool) {
	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(windows.Handle(f.Fd()), &info); err != nil {
		return 0, 0, false
	}
	w := info.Window
	return int(w.Right-w.Left) + 1, int(w.Bottom-w.Top) + 1, true
}

func isTerminal(f *os.File) bool {
	_, _, ok := terminalSize(f)
	return ok
}
