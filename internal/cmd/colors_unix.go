//go:build !windows

package cmd

import (
	"os"

	"golang.org/x/sys/unix"
)

// terminalSize returns the window size of f via ioctl. ok is false when f
// is not a terminal.
func terminalSize(f *os.File) (cols, rows int, ok bool) {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 0, 0, false
	}
	return int(ws.Col), int(ws.Row), true
}

func isTerminal(f *os.File) bool {
	_, _, ok := terminalSize(f)
	return ok
}
