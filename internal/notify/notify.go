// Package notify tells running hook hosts that the settings file changed.
// The sender drops a small broadcast file next to the settings file; every
// receiver watches the directory and reloads when it appears.
package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/chimio/inxlocker/internal/prefs"
)

// ActionPrefsUpdated identifies a settings-changed broadcast.
const ActionPrefsUpdated = "io.github.chimio.inxlocker.ACTION_PREFS_UPDATED"

// BroadcastFile is the file name the broadcast is written to.
const BroadcastFile = ".broadcast"

type Broadcast struct {
	Action string    `yaml:"action"`
	SentAt time.Time `yaml:"sent_at"`
	Sender int       `yaml:"sender"`
}

// Send publishes a settings-changed broadcast into dir.
func Send(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}
	data, err := yaml.Marshal(&Broadcast{
		Action: ActionPrefsUpdated,
		SentAt: time.Now(),
		Sender: os.Getpid(),
	})
	if err != nil {
		return fmt.Errorf("yaml.Marshal: %w", err)
	}
	if err := prefs.WriteFileAtomic(filepath.Join(dir, BroadcastFile), data, 0644); err != nil {
		return fmt.Errorf("write broadcast: %w", err)
	}
	return nil
}

// ReadBroadcast parses the broadcast file in dir.
func ReadBroadcast(dir string) (*Broadcast, error) {
	data, err := os.ReadFile(filepath.Join(dir, BroadcastFile))
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}
	var b Broadcast
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal: %w", err)
	}
	return &b, nil
}
