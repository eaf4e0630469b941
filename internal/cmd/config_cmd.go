package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/fooddiary/internal/config"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Get or set configuration values",
	GroupID: groupSetup,
	Long: `Get or set fooddiary configuration values.

Configuration is stored in ~/.config/fooddiary/config.yaml (XDG compliant).

Keys are in the format: section.key
Sections: storage, log, autocomplete, ui, backup

Examples:
  fooddiary config list                          # List all keys
  fooddiary config get ui.locale                 # Show one value
  fooddiary config set autocomplete.debounce_ms 80
  fooddiary config path                          # Where files live`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config, database, log and backup locations",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd, configPathCmd)
}

func runConfigList(cmd *cobra.Command, args []string) error {
	paths := config.DefaultPaths()
	cfg, err := config.LoadFromFile(paths.ConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return listConfig(cmd.OutOrStdout(), cfg, paths)
}

func listConfig(w io.Writer, cfg *config.Config, paths *config.Paths) error {
	fmt.Fprintf(w, "%sConfiguration Keys%s\n", colorBold, colorReset)
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintln(w)

	var failedKeys []string
	for _, key := range config.ListKeys() {
		value, err := cfg.Get(key)
		if err != nil {
			failedKeys = append(failedKeys, key)
			continue
		}

		displayValue := value
		if displayValue == "" {
			displayValue = colorDim + "(not set)" + colorReset
		}
		fmt.Fprintf(w, "  %s%s%s = %s\n", colorCyan, key, colorReset, displayValue)
	}

	if len(failedKeys) > 0 {
		fmt.Fprintf(w, "\n%sWarning:%s Failed to retrieve keys: %s\n", colorYellow, colorReset, strings.Join(failedKeys, ", "))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Config file: %s\n", paths.ConfigFile())
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	paths := config.DefaultPaths()
	cfg, err := config.LoadFromFile(paths.ConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	value, err := cfg.Get(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if value == "" {
		fmt.Fprintf(out, "%s(not set)%s\n", colorDim, colorReset)
	} else {
		fmt.Fprintln(out, value)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	paths := config.DefaultPaths()
	cfg, err := config.LoadFromFile(paths.ConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	key, value := args[0], args[1]

	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	if err := cfg.SaveToFile(paths.ConfigFile()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s%s%s = %s\n", colorCyan, key, colorReset, value)
	fmt.Fprintf(out, "Saved to: %s\n", paths.ConfigFile())
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	paths, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database := cfg.DatabasePath(paths)
	if cfg.Storage.Ephemeral {
		database = "(in memory)"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "config:   %s\n", paths.ConfigFile())
	fmt.Fprintf(out, "database: %s\n", database)
	fmt.Fprintf(out, "log:      %s\n", cfg.LogFilePath(paths))
	fmt.Fprintf(out, "backups:  %s\n", cfg.BackupDir(paths))
	return nil
}
