package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/chimio/inxlocker/internal/prefs"
)

// SystemProcess is the process that hosts the privileged activity starter.
const SystemProcess = "android"

type Config struct {
	SettingsDir string `mapstructure:"settings-dir" yaml:"settings-dir" json:"settings_dir" validate:"required"`
	ProcessName string `mapstructure:"process-name" yaml:"process-name" json:"process_name" validate:"required"`
	// SettingsGroup, when set, is given group ownership of the settings dir.
	SettingsGroup string `mapstructure:"settings-group" yaml:"settings-group,omitempty" json:"settings_group,omitempty"`

	LogLevel  string `mapstructure:"log-level" yaml:"log-level" json:"log_level" validate:"oneof=debug info warn error"`
	LogDir    string `mapstructure:"log-dir" yaml:"log-dir,omitempty" json:"log_dir,omitempty"`
	NoLogFile bool   `mapstructure:"no-log-file" yaml:"no-log-file,omitempty" json:"no_log_file,omitempty"`
	StatsDir  string `mapstructure:"stats-dir" yaml:"stats-dir,omitempty" json:"stats_dir,omitempty"`

	APIServer       string `mapstructure:"api-server" yaml:"api-server,omitempty" json:"api_server,omitempty" validate:"omitempty,hostname_port"`
	APIServerSecret string `mapstructure:"api-server-secret" yaml:"api-server-secret,omitempty" json:"-"`

	Recent RecentConfig `mapstructure:"recent" yaml:"recent" json:"recent"`
}

// RecentConfig sizes the in-memory audit of recent hook outcomes.
type RecentConfig struct {
	Size int           `mapstructure:"size" yaml:"size" json:"size" validate:"min=1,max=10000"`
	TTL  time.Duration `mapstructure:"ttl" yaml:"ttl" json:"ttl"`
}

// SetDefaults registers the defaults on v. cmd/root.go and the tests share it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("settings-dir", prefs.DefaultDir())
	v.SetDefault("process-name", SystemProcess)
	v.SetDefault("log-level", "info")
	v.SetDefault("recent.size", 200)
	v.SetDefault("recent.ttl", "30m")
}

// BuildConfigFromViper decodes the global viper into a validated Config.
func BuildConfigFromViper() (*Config, error) {
	return BuildConfig(viper.GetViper())
}

func BuildConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("viper.Unmarshal: %w", err)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.ProcessName = strings.TrimSpace(cfg.ProcessName)
	if cfg.SettingsDir == "" {
		cfg.SettingsDir = prefs.DefaultDir()
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return &cfg, nil
}

// IsSystemProcess reports whether the host runs in the system server.
func (c *Config) IsSystemProcess() bool {
	return c.ProcessName == SystemProcess
}

func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("Log Level", c.LogLevel),
		slog.String("Settings Dir", c.SettingsDir),
		slog.String("Process", c.ProcessName),
		slog.String("API Server", c.APIServer),
		slog.Int("Recent Size", c.Recent.Size),
		slog.Duration("Recent TTL", c.Recent.TTL),
	)
}
