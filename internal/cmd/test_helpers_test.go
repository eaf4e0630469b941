package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setupCLI points config and data directories at a temp dir and resets
// flags and colors when the test ends.
func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, key := range []string{"FOODDIARY_DB", "FOODDIARY_DEBUG", "FOODDIARY_LOG_LEVEL", "FOODDIARY_LOCALE"} {
		t.Setenv(key, "")
	}

	oldMode := colorMode
	t.Cleanup(func() {
		resetFlags(rootCmd)
		colorMode = oldMode
		applyColorMode()
	})
	resetFlags(rootCmd)
	return dir
}

// resetFlags restores every flag of c and its subcommands to its default,
// since cobra keeps values between executions.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI with args and returns combined output. stdin
// answers confirmation prompts.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--color=never"}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// mustExecute is execute that fails the test on error.
func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, "", args...)
	if err != nil {
		t.Fatalf("fooddiary %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

var idLine = regexp.MustCompile(`id: (\S+)`)

// savedID extracts the id printed by add and copy.
func savedID(t *testing.T, out string) string {
	t.Helper()
	m := idLine.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no id in output:\n%s", out)
	}
	return m[1]
}
