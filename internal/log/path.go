package log

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

var (
	logDirOnce sync.Once
	logDir     string
)

// GetLogDir returns the log directory. An explicit dir wins; otherwise:
// - Linux: /var/log/inxlocker/ when writable
// - Other: ~/.inxlocker/
// - Fallback: temp directory
// The directory is created if missing.
func GetLogDir(dir string) string {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err == nil {
			return dir
		}
	}
	logDirOnce.Do(func() {
		logDir = determineLogDir()
		if err := os.MkdirAll(logDir, 0755); err != nil {
			logDir = filepath.Join(os.TempDir(), "inxlocker")
			_ = os.MkdirAll(logDir, 0755)
		}
	})
	return logDir
}

func determineLogDir() string {
	if runtime.GOOS == "linux" {
		varLogDir := "/var/log/inxlocker"
		if err := os.MkdirAll(varLogDir, 0755); err == nil {
			testFile := filepath.Join(varLogDir, ".write_test")
			if f, err := os.Create(testFile); err == nil {
				_ = f.Close()
				_ = os.Remove(testFile)
				return varLogDir
			}
		}
	}
	return getUserLogDir()
}

func getUserLogDir() string {
	homeDir, err := os.UserHomeDir()
	if err == nil {
		userLogDir := filepath.Join(homeDir, ".inxlocker")
		if err := os.MkdirAll(userLogDir, 0755); err == nil {
			return userLogDir
		}
	}
	return filepath.Join(os.TempDir(), "inxlocker")
}

// GetLogFilePath returns the full path to the main log file.
func GetLogFilePath(dir string) string {
	return filepath.Join(GetLogDir(dir), "inxlocker.log")
}

// GetStatsFilePath returns the full path to a stats file.
func GetStatsFilePath(dir string, name string) string {
	return filepath.Join(GetLogDir(dir), name)
}
