package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/chimio/inxlocker/internal/config"
	"github.com/chimio/inxlocker/internal/prefs"
	"github.com/chimio/inxlocker/internal/usergroup"
)

const oomScoreAdjPath = "/proc/self/oom_score_adj"

// DaemonSetup prepares the host process: lowers its OOM score on Android and
// makes sure the shared settings file exists and is readable.
func DaemonSetup(cfg *config.Config) error {
	if IsAndroid() {
		if err := SetOOMScoreAdj(-900); err != nil {
			slog.Warn("SetOOMScoreAdj", slog.Any("error", err))
		}
	}
	if err := PrepareSettingsDir(cfg.SettingsDir); err != nil {
		return fmt.Errorf("PrepareSettingsDir: %w", err)
	}
	if cfg.SettingsGroup != "" {
		if err := usergroup.ShareWithGroup(cfg.SettingsDir, cfg.SettingsGroup); err != nil {
			return fmt.Errorf("ShareWithGroup: %w", err)
		}
	}
	return nil
}

func IsAndroid() bool {
	if os.Getenv("ANDROID_ROOT") != "" {
		return true
	}
	checkFiles := []string{
		"/system/build.prop",
		"/system/bin/app_process",
	}
	for _, f := range checkFiles {
		if _, err := os.Stat(f); err == nil {
			return true
		}
	}
	return false
}

func SetOOMScoreAdj(score int) error {
	return os.WriteFile(oomScoreAdjPath, []byte(strconv.Itoa(score)), 0644)
}

// PrepareSettingsDir creates dir and, when absent, a settings file holding
// the defaults. Existing values are never touched.
func PrepareSettingsDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}
	if err := os.Chmod(dir, 0755); err != nil {
		return fmt.Errorf("os.Chmod: %w", err)
	}

	path := prefs.FilePath(dir)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("os.Stat: %w", err)
	}

	settings, err := prefs.NewEditor(dir).Commit()
	if err != nil {
		return fmt.Errorf("write default settings: %w", err)
	}
	slog.Info("Settings file created", slog.String("path", path), slog.Any("settings", settings))
	return nil
}
