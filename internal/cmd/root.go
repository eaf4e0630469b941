package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// Command groups shown in help output.
const (
	groupDiary = "diary"
	groupData  = "data"
	groupSetup = "setup"
)

var (
	flagDB        string
	flagEphemeral bool
)

var rootCmd = &cobra.Command{
	Use:   "fooddiary",
	Short: "吃吃吃 - a personal food diary",
	Long: `fooddiary - a personal food diary for the terminal
  - log meals with restaurant, branch, dishes and photo
  - suggestions ranked by how often you eat somewhere
  - favorite stores with preset menus, popular dishes, backups

Run without a subcommand to open the interactive diary.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		applyColorMode()
	},
	RunE: runTUI,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which commands use to
// bound storage work and the interactive session.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupDiary, Title: "Diary:"},
		&cobra.Group{ID: groupData, Title: "Data:"},
		&cobra.Group{ID: groupSetup, Title: "Setup:"},
	)

	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database file (overrides storage.path)")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "Keep the diary in memory only")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Colorize output: auto, always, never")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(mealCmd)
	rootCmd.AddCommand(favCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(popularCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
