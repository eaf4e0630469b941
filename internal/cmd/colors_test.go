package cmd

import (
	"testing"
)

func TestApplyColorMode_Always(t *testing.T) {
	origMode := colorMode
	t.Cleanup(func() {
		colorMode = origMode
		applyColorMode()
	})

	disableColors()
	if colorRed != "" {
		t.Fatal("expected colors disabled")
	}

	colorMode = "always"
	applyColorMode()

	if colorRed == "" || colorReset == "" {
		t.Error("applyColorMode(\"always\") should enable colors even when auto would disable")
	}
}

func TestApplyColorMode_Never(t *testing.T) {
	origMode := colorMode
	t.Cleanup(func() {
		colorMode = origMode
		applyColorMode()
	})

	enableColors()
	if colorRed == "" {
		t.Fatal("expected colors enabled")
	}

	colorMode = "never"
	applyColorMode()

	if colorRed != "" || colorBold != "" {
		t.Error("applyColorMode(\"never\") should disable colors")
	}
}

func TestShouldDisableColors_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if !shouldDisableColors() {
		t.Error("NO_COLOR should disable colors")
	}
}

func TestShouldDisableColors_DumbTerminal(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "dumb")
	if !shouldDisableColors() {
		t.Error("TERM=dumb should disable colors")
	}
}
