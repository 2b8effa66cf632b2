package log

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chimio/inxlocker/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestSetDebug(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	SetLogConf(&config.Config{LogLevel: "warn", NoLogFile: true})
	assert.Equal(t, slog.LevelWarn, Level())

	SetDebug(true)
	assert.Equal(t, slog.LevelDebug, Level())

	SetDebug(false)
	assert.Equal(t, slog.LevelError, Level())
}

func TestSetDebugOffSilencesInfo(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	b := NewBroadcaster()
	ch := b.Subscribe()
	SetLogConf(&config.Config{LogLevel: "info", NoLogFile: true}, b)

	SetDebug(false)
	slog.Info("Intent redirected")
	slog.Warn("Uninstall intent redirected")
	slog.Error("Redirect.Apply", slog.String("error", "boom"))

	line := string(<-ch)
	assert.Contains(t, line, "Redirect.Apply")
	assert.Len(t, ch, 0)
}

func TestSetLogConfWritesToExtraWriter(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	b := NewBroadcaster()
	ch := b.Subscribe()
	SetLogConf(&config.Config{LogLevel: "info", NoLogFile: true}, b)

	slog.Info("Intent redirected", slog.String("package", "com.example.store"))
	line := string(<-ch)
	assert.Contains(t, line, "Intent redirected")
	assert.Contains(t, line, "package=com.example.store")
}

func TestGetLogFilePathExplicitDir(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "inxlocker.log"), GetLogFilePath(dir))
	assert.Equal(t, filepath.Join(dir, "redirect_stats"), GetStatsFilePath(dir, "redirect_stats"))
}
