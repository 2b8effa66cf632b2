// Package prefs reads the settings written by the settings UI. The file is
// shared between processes; every process keeps its own cache and must call
// Reload to observe updates made elsewhere.
package prefs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// FileName is the fixed name of the shared settings file, without extension.
const FileName = "selected_installer_package"

const fileExt = ".yaml"

const (
	KeySelectedInstaller  = "selected_installer_package"
	KeyHideLauncherIcon   = "hide_launcher_icon"
	KeyEnableDebugLog     = "enable_debug_log"
	KeyInterceptUninstall = "intercept_uninstall"
)

var ErrNotLoaded = errors.New("settings not loaded")

// Settings is the typed view of the settings file.
type Settings struct {
	SelectedInstaller  string `mapstructure:"selected_installer_package" yaml:"selected_installer_package,omitempty" json:"selected_installer_package" validate:"omitempty,pkgname"`
	HideLauncherIcon   bool   `mapstructure:"hide_launcher_icon" yaml:"hide_launcher_icon" json:"hide_launcher_icon"`
	DebugLog           bool   `mapstructure:"enable_debug_log" yaml:"enable_debug_log" json:"enable_debug_log"`
	InterceptUninstall bool   `mapstructure:"intercept_uninstall" yaml:"intercept_uninstall" json:"intercept_uninstall"`
}

// DefaultSettings returns the values used when a key is absent.
func DefaultSettings() Settings {
	return Settings{
		SelectedInstaller:  "",
		HideLauncherIcon:   false,
		DebugLog:           true,
		InterceptUninstall: false,
	}
}

var boolKeys = map[string]struct{}{
	KeyHideLauncherIcon:   {},
	KeyEnableDebugLog:     {},
	KeyInterceptUninstall: {},
}

// IsBoolKey reports whether key names one of the boolean settings.
func IsBoolKey(key string) bool {
	_, ok := boolKeys[key]
	return ok
}

// FilePath returns the settings file path inside dir.
func FilePath(dir string) string {
	return filepath.Join(dir, FileName+fileExt)
}

// DefaultDir returns the platform settings directory.
// - Linux/Android: /data/local/tmp/inxlocker when writable, else user config dir
// - Other: user config dir
// - Fallback: temp directory
func DefaultDir() string {
	if runtime.GOOS == "linux" || runtime.GOOS == "android" {
		if fi, err := os.Stat("/data/local/tmp"); err == nil && fi.IsDir() {
			return "/data/local/tmp/inxlocker"
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "inxlocker")
	}
	return filepath.Join(os.TempDir(), "inxlocker")
}
