package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/chimio/inxlocker/internal/config"
	"github.com/chimio/inxlocker/internal/notify"
	"github.com/chimio/inxlocker/internal/prefs"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the shared settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetInstallerCmd = &cobra.Command{
	Use:   "set-installer <package>",
	Short: "Select the installer install requests are sent to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSettings(cmd, func(e *prefs.Editor) error {
			return e.SetSelectedInstaller(args[0])
		})
	},
}

var settingsClearInstallerCmd = &cobra.Command{
	Use:   "clear-installer",
	Short: "Fall back to the platform default installer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSettings(cmd, func(e *prefs.Editor) error {
			e.ClearSelectedInstaller()
			return nil
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <true|false>",
	Short: "Set a boolean setting: " + prefs.KeyHideLauncherIcon + ", " + prefs.KeyEnableDebugLog + " or " + prefs.KeyInterceptUninstall,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[1], err)
		}
		return editSettings(cmd, func(e *prefs.Editor) error {
			return e.SetBool(args[0], value)
		})
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetInstallerCmd)
	settingsCmd.AddCommand(settingsClearInstallerCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func settingsDir() (string, error) {
	cfg, err := config.BuildConfigFromViper()
	if err != nil {
		return "", fmt.Errorf("config error: %w", err)
	}
	return cfg.SettingsDir, nil
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	dir, err := settingsDir()
	if err != nil {
		return err
	}
	store := prefs.NewStore(dir)
	if err := store.ReloadErr(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read settings: %w", err)
	}
	return printSettings(cmd.OutOrStdout(), store.Path(), store.Settings())
}

// editSettings stages an edit, commits it and notifies running hosts.
func editSettings(cmd *cobra.Command, edit func(*prefs.Editor) error) error {
	dir, err := settingsDir()
	if err != nil {
		return err
	}
	e := prefs.NewEditor(dir)
	if err := edit(e); err != nil {
		return err
	}
	settings, err := e.Commit()
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if err := notify.Send(dir); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: settings saved but broadcast failed: %v\n", err)
	}
	return printSettings(cmd.OutOrStdout(), prefs.FilePath(dir), settings)
}

func printSettings(w io.Writer, path string, settings prefs.Settings) error {
	data, err := yaml.Marshal(&settings)
	if err != nil {
		return fmt.Errorf("yaml.Marshal: %w", err)
	}
	_, err = fmt.Fprintf(w, "# %s\n%s", path, data)
	return err
}
