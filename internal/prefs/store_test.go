package prefs

import (
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettingsFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(FilePath(dir), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}
}

func TestStoreDefaultsWhenMissing(t *testing.T) {
	s := NewStore(t.TempDir())
	s.Reload()

	assert.Equal(t, "", s.GetString(KeySelectedInstaller, ""))
	assert.True(t, s.GetBool(KeyEnableDebugLog, true))
	assert.False(t, s.GetBool(KeyInterceptUninstall, false))
	assert.True(t, s.LoadedAt().IsZero())
	assert.ErrorIs(t, s.Err(), ErrNotLoaded)
	assert.Equal(t, DefaultSettings(), s.Settings())
	assert.Error(t, s.ReloadErr())
}

func TestStoreReloadReflectsDisk(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	writeSettingsFile(t, dir, "selected_installer_package: com.example.store\nintercept_uninstall: false\n")
	s.Reload()
	assert.Equal(t, "com.example.store", s.GetString(KeySelectedInstaller, ""))
	assert.False(t, s.GetBool(KeyInterceptUninstall, false))

	writeSettingsFile(t, dir, "selected_installer_package: com.other.installer\nintercept_uninstall: true\n")
	// cached until the next reload
	assert.Equal(t, "com.example.store", s.GetString(KeySelectedInstaller, ""))

	s.Reload()
	assert.Equal(t, "com.other.installer", s.GetString(KeySelectedInstaller, ""))
	assert.True(t, s.GetBool(KeyInterceptUninstall, false))
	assert.False(t, s.LoadedAt().IsZero())
	assert.NoError(t, s.Err())
}

func TestStoreKeepsCacheOnCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	writeSettingsFile(t, dir, "selected_installer_package: com.example.store\n")
	s.Reload()

	writeSettingsFile(t, dir, "selected_installer_package: [unterminated\n")
	s.Reload()
	assert.Equal(t, "com.example.store", s.GetString(KeySelectedInstaller, ""))

	require.NoError(t, os.Remove(FilePath(dir)))
	s.Reload()
	assert.Equal(t, "com.example.store", s.GetString(KeySelectedInstaller, ""))
}

func TestStoreTypeMismatchReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	writeSettingsFile(t, dir, "intercept_uninstall: \"yes\"\nselected_installer_package: 42\nenable_debug_log: false\n")
	s.Reload()

	assert.False(t, s.GetBool(KeyInterceptUninstall, false))
	assert.Equal(t, "fallback", s.GetString(KeySelectedInstaller, "fallback"))

	settings := s.Settings()
	assert.False(t, settings.InterceptUninstall)
	assert.Equal(t, "", settings.SelectedInstaller)
	assert.False(t, settings.DebugLog)
}

func TestStoreSettingsView(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	writeSettingsFile(t, dir, `
selected_installer_package: com.example.store
hide_launcher_icon: true
intercept_uninstall: true
`)
	s.Reload()

	assert.Equal(t, Settings{
		SelectedInstaller:  "com.example.store",
		HideLauncherIcon:   true,
		DebugLog:           true,
		InterceptUninstall: true,
	}, s.Settings())
}

func TestOpenReturnsSameStore(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFile(t, dir, "selected_installer_package: com.example.store\n")

	a := Open(dir)
	b := Open(dir)
	assert.Same(t, a, b)
	assert.Equal(t, "com.example.store", a.GetString(KeySelectedInstaller, ""))
}

func TestStoreConcurrentReload(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	writeSettingsFile(t, dir, "selected_installer_package: com.example.store\nintercept_uninstall: true\n")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Reload()
				_ = s.GetString(KeySelectedInstaller, "")
				_ = s.GetBool(KeyInterceptUninstall, false)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, "com.example.store", s.GetString(KeySelectedInstaller, ""))
	assert.True(t, s.GetBool(KeyInterceptUninstall, false))
}
