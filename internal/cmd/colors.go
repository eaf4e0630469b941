package cmd

import (
	"os"
	"runtime"
)

// ANSI color codes for terminal output. --color decides whether they
// are used; "auto" checks the environment and whether stdout is a TTY.
var (
	colorRed    string
	colorGreen  string
	colorYellow string
	colorCyan   string
	colorDim    string
	colorBold   string
	colorReset  string
)

// colorMode is bound to --color.
var colorMode = "auto"

func init() {
	applyColorMode()
}

func enableColors() {
	colorRed = "\033[0;31m"
	colorGreen = "\033[0;32m"
	colorYellow = "\033[0;33m"
	colorCyan = "\033[0;36m"
	colorDim = "\033[2m"
	colorBold = "\033[1m"
	colorReset = "\033[0m"
}

func disableColors() {
	colorRed = ""
	colorGreen = ""
	colorYellow = ""
	colorCyan = ""
	colorDim = ""
	colorBold = ""
	colorReset = ""
}

func applyColorMode() {
	switch colorMode {
	case "always":
		enableColors()
	case "never":
		disableColors()
	default:
		if shouldDisableColors() {
			disableColors()
		} else {
			enableColors()
		}
	}
}

func shouldDisableColors() bool {
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	if os.Getenv("TERM") == "dumb" {
		return true
	}
	if !isTerminal(os.Stdout) {
		return true
	}

	if runtime.GOOS == "windows" {
		if os.Getenv("WT_SESSION") != "" || os.Getenv("TERM_PROGRAM") != "" {
			return false
		}
		return os.Getenv("ANSICON") == "" && os.Getenv("ConEmuANSI") != "ON"
	}

	return false
}
