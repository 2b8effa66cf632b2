package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/chimio/inxlocker/internal/prefs"
)

// resetViper resets viper global state and sets the defaults the same way
// initConfig() in cmd/root.go does.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	SetDefaults(viper.GetViper())
}

// writeConfigFile writes YAML content to a temp file.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// loadConfigFile merges a YAML config file into viper.
func loadConfigFile(t *testing.T, path string) {
	t.Helper()
	viper.SetConfigFile(path)
	if err := viper.MergeInConfig(); err != nil {
		t.Fatalf("failed to merge config file: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	resetViper(t)

	cfg, err := BuildConfigFromViper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"SettingsDir", cfg.SettingsDir, prefs.DefaultDir()},
		{"ProcessName", cfg.ProcessName, SystemProcess},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogDir", cfg.LogDir, ""},
		{"NoLogFile", cfg.NoLogFile, false},
		{"APIServer", cfg.APIServer, ""},
		{"APIServerSecret", cfg.APIServerSecret, ""},
		{"Recent.Size", cfg.Recent.Size, 200},
		{"Recent.TTL", cfg.Recent.TTL, 30 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if !cfg.IsSystemProcess() {
		t.Error("default process should be the system process")
	}
}

func TestConfigFromFile(t *testing.T) {
	resetViper(t)

	yaml := `
settings-dir: /data/local/tmp/custom
process-name: com.android.documentsui
log-level: debug
log-dir: /tmp/inxlocker-logs
no-log-file: true
stats-dir: /tmp/inxlocker-stats
api-server: 127.0.0.1:9999
api-server-secret: s3cret
recent:
  size: 50
  ttl: 5m
`
	path := writeConfigFile(t, yaml)
	loadConfigFile(t, path)

	cfg, err := BuildConfigFromViper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SettingsDir != "/data/local/tmp/custom" {
		t.Errorf("SettingsDir = %v", cfg.SettingsDir)
	}
	if cfg.ProcessName != "com.android.documentsui" {
		t.Errorf("ProcessName = %v", cfg.ProcessName)
	}
	if cfg.IsSystemProcess() {
		t.Error("IsSystemProcess should be false")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.LogDir != "/tmp/inxlocker-logs" {
		t.Errorf("LogDir = %v", cfg.LogDir)
	}
	if !cfg.NoLogFile {
		t.Error("NoLogFile should be true")
	}
	if cfg.StatsDir != "/tmp/inxlocker-stats" {
		t.Errorf("StatsDir = %v", cfg.StatsDir)
	}
	if cfg.APIServer != "127.0.0.1:9999" {
		t.Errorf("APIServer = %v", cfg.APIServer)
	}
	if cfg.APIServerSecret != "s3cret" {
		t.Errorf("APIServerSecret = %v", cfg.APIServerSecret)
	}
	if cfg.Recent.Size != 50 {
		t.Errorf("Recent.Size = %v, want 50", cfg.Recent.Size)
	}
	if cfg.Recent.TTL != 5*time.Minute {
		t.Errorf("Recent.TTL = %v, want 5m", cfg.Recent.TTL)
	}
}

func TestCaseNormalization(t *testing.T) {
	resetViper(t)

	viper.Set("log-level", "DEBUG")
	viper.Set("process-name", "  com.android.chrome  ")

	cfg, err := BuildConfigFromViper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.ProcessName != "com.android.chrome" {
		t.Errorf("ProcessName = %q", cfg.ProcessName)
	}
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"bad log level", "log-level", "verbose"},
		{"bad api address", "api-server", "not an address"},
		{"zero recent size", "recent.size", 0},
		{"empty process", "process-name", " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			viper.Set(tt.key, tt.value)
			if _, err := BuildConfigFromViper(); err == nil {
				t.Errorf("expected error for %s=%v", tt.key, tt.value)
			}
		})
	}
}

func TestEnvOverride(t *testing.T) {
	resetViper(t)
	viper.SetEnvPrefix("INXLOCKER")
	viper.AutomaticEnv()
	_ = viper.BindEnv("log-level", "INXLOCKER_LOG_LEVEL")
	t.Setenv("INXLOCKER_LOG_LEVEL", "warn")

	cfg, err := BuildConfigFromViper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %v, want warn", cfg.LogLevel)
	}
}

func TestGenerateTemplateConfig(t *testing.T) {
	cfg, err := GenerateTemplateConfig(false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}

	resetViper(t)
	loadConfigFile(t, writeConfigFile(t, string(data)))
	got, err := BuildConfigFromViper()
	if err != nil {
		t.Fatalf("template does not load: %v", err)
	}
	if got.APIServer != cfg.APIServer || got.Recent != cfg.Recent {
		t.Errorf("template round trip = %+v, want %+v", got, cfg)
	}
}
