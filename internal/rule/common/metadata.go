package common

import (
	"github.com/chimio/inxlocker/internal/intent"
	"github.com/chimio/inxlocker/internal/prefs"
)

// Settings is the read side of the settings store the rules consult.
type Settings interface {
	GetString(key, def string) string
	GetBool(key string, def bool) bool
}

// Metadata is what a rule sees: the live intent and the current settings.
type Metadata struct {
	Intent   *intent.Intent
	Settings Settings
}

func (m *Metadata) Action() string {
	if m.Intent == nil {
		return ""
	}
	return m.Intent.Action
}

func (m *Metadata) InterceptUninstall() bool {
	if m.Settings == nil {
		return false
	}
	return m.Settings.GetBool(prefs.KeyInterceptUninstall, false)
}

func (m *Metadata) SelectedInstaller() string {
	if m.Settings == nil {
		return ""
	}
	return m.Settings.GetString(prefs.KeySelectedInstaller, "")
}
