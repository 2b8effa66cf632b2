package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/chimio/inxlocker/internal/prefs"
)

func GenerateTemplateConfig(writeToFile bool) (Config, error) {
	cfg := Config{
		SettingsDir: prefs.DefaultDir(),
		ProcessName: SystemProcess,

		LogLevel: "info",

		APIServer: "127.0.0.1:9010",

		Recent: RecentConfig{
			Size: 200,
			TTL:  30 * time.Minute,
		},
	}

	if writeToFile {
		data, err := yaml.Marshal(&cfg)
		if err != nil {
			return Config{}, fmt.Errorf("failed to marshal template config to YAML: %w", err)
		}
		if err := os.WriteFile("config.yaml", data, 0644); err != nil {
			return Config{}, fmt.Errorf("failed to write template config to file: %w", err)
		}
	}
	return cfg, nil
}
