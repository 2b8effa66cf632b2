package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/chimio/inxlocker/internal/config"
)

// level is shared by every handler so the debug switch in the settings file
// can flip verbosity without rebuilding the logger.
var (
	level     = new(slog.LevelVar)
	baseLevel = slog.LevelInfo
)

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLogConf installs the default logger: stdout, a rotating file and, if
// given, extra writers such as the API log broadcaster.
func SetLogConf(cfg *config.Config, extra ...io.Writer) {
	writers := []io.Writer{os.Stdout}
	if !cfg.NoLogFile {
		writers = append(writers, &lumberjack.Logger{
			Filename:   GetLogFilePath(cfg.LogDir),
			MaxSize:    5, // megabytes
			MaxBackups: 5,
			MaxAge:     7, // days
			LocalTime:  true,
			Compress:   true,
		})
	}
	writers = append(writers, extra...)

	baseLevel = parseLevel(cfg.LogLevel)
	level.Set(baseLevel)

	loc := LoadLocalLocation()
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				t := a.Value.Time().In(loc)
				return slog.String(slog.TimeKey, t.Format("2006-01-02 15:04:05"))
			}
			return a
		},
	}
	logger := slog.New(slog.NewTextHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)
}

// SetDebug applies the enable_debug_log setting. Turning it off keeps only
// errors; the configured level holds until the first call.
func SetDebug(enabled bool) {
	if enabled {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(max(baseLevel, slog.LevelError))
}

func Level() slog.Level {
	return level.Level()
}

func LogHeader(version string, cfg *config.Config) {
	slog.Info("inxlocker started", "version", version, "", cfg)
	slog.Info("host info", GetOSInfo()...)
}

func LogDebugWithEvent(eventID string, site string, msg string, attrs ...any) {
	slog.Debug(msg, append([]any{slog.String("event", eventID), slog.String("site", site)}, attrs...)...)
}

func LogInfoWithEvent(eventID string, site string, msg string, attrs ...any) {
	slog.Info(msg, append([]any{slog.String("event", eventID), slog.String("site", site)}, attrs...)...)
}

func LogWarnWithEvent(eventID string, site string, msg string, attrs ...any) {
	slog.Warn(msg, append([]any{slog.String("event", eventID), slog.String("site", site)}, attrs...)...)
}

func LogErrorWithEvent(eventID string, site string, msg string, attrs ...any) {
	slog.Error(msg, append([]any{slog.String("event", eventID), slog.String("site", site)}, attrs...)...)
}

// LoadLocalLocation picks the timezone for log timestamps: $TZ, then
// /etc/localtime, then /etc/TZ (OpenWrt style), else UTC.
func LoadLocalLocation() *time.Location {
	if tz := os.Getenv("TZ"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	if _, err := os.Stat("/etc/localtime"); err == nil {
		if loc, _ := time.LoadLocation("Local"); loc != nil {
			return loc
		}
	}
	if data, err := os.ReadFile("/etc/TZ"); err == nil {
		tz := strings.TrimSpace(string(data))
		switch {
		case strings.HasPrefix(tz, "CST-8"):
			return time.FixedZone("CST", 8*3600)
		case strings.HasPrefix(tz, "UTC"):
			return time.UTC
		}
	}
	return time.UTC
}
