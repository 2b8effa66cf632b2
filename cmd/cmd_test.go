package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chimio/inxlocker/internal/intent"
	"github.com/chimio/inxlocker/internal/notify"
	"github.com/chimio/inxlocker/internal/prefs"
)

// run executes the root command with args, resetting subcommand flags left
// over from earlier runs.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	checkCmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSettingsSetInstaller(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "settings", "-d", dir, "set-installer", "com.example.store")
	require.NoError(t, err)
	assert.Contains(t, out, "selected_installer_package: com.example.store")

	store := prefs.NewStore(dir)
	require.NoError(t, store.ReloadErr())
	assert.Equal(t, "com.example.store", store.GetString(prefs.KeySelectedInstaller, ""))

	b, err := notify.ReadBroadcast(dir)
	require.NoError(t, err)
	assert.Equal(t, notify.ActionPrefsUpdated, b.Action)

	_, err = run(t, "settings", "-d", dir, "clear-installer")
	require.NoError(t, err)
	store.Reload()
	assert.Equal(t, "", store.GetString(prefs.KeySelectedInstaller, ""))
}

func TestSettingsSet(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"intercept on", []string{"set", prefs.KeyInterceptUninstall, "true"}, false},
		{"debug off", []string{"set", prefs.KeyEnableDebugLog, "0"}, false},
		{"unknown key", []string{"set", "no_such_key", "true"}, true},
		{"not a bool", []string{"set", prefs.KeyHideLauncherIcon, "maybe"}, true},
		{"string key", []string{"set", prefs.KeySelectedInstaller, "true"}, true},
		{"bad package", []string{"set-installer", "not a package"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"settings", "-d", dir}, tt.args...)
			_, err := run(t, args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}

	store := prefs.NewStore(dir)
	require.NoError(t, store.ReloadErr())
	assert.True(t, store.GetBool(prefs.KeyInterceptUninstall, false))
	assert.False(t, store.GetBool(prefs.KeyEnableDebugLog, true))
}

func TestSettingsShowMissingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "absent")

	out, err := run(t, "settings", "-d", dir, "show")
	require.NoError(t, err)
	assert.Contains(t, out, prefs.FilePath(dir))
	assert.Contains(t, out, "enable_debug_log: true")

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "show never writes")
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "settings", "-d", dir, "set-installer", "com.example.store")
	require.NoError(t, err)

	out, err := run(t, "check", "-d", dir,
		"--action", intent.ActionInstallPackage,
		"--data", "content://media/123.apk")
	require.NoError(t, err)
	assert.Contains(t, out, `"decision": "should-redirect"`)
	assert.Contains(t, out, `"package": "com.example.store"`)

	out, err = run(t, "check", "-d", dir,
		"--action", intent.ActionView,
		"--type", intent.MimePackageArchive,
		"--component", "com.android.packageinstaller/.InstallActivity")
	require.NoError(t, err)
	assert.Contains(t, out, `"decision": "should-not-redirect"`)
	assert.Contains(t, out, `"rule": "EXPLICIT-COMPONENT"`)
}

func TestCheckBadFlags(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "check", "-d", dir, "--component", "nocls")
	assert.Error(t, err)

	_, err = run(t, "check", "-d", dir, "--flags", "0xZZ")
	assert.Error(t, err)
}

func TestIntentFromFlags(t *testing.T) {
	checkCmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
	})
	require.NoError(t, checkCmd.Flags().Set("action", intent.ActionDelete))
	require.NoError(t, checkCmd.Flags().Set("data", "package:com.foo.bar"))
	require.NoError(t, checkCmd.Flags().Set("flags", "0x10000000"))

	in, err := intentFromFlags(checkCmd)
	require.NoError(t, err)
	assert.Equal(t, intent.ActionDelete, in.Action)
	assert.Equal(t, "package:com.foo.bar", in.Data)
	assert.Nil(t, in.Component)
	assert.True(t, in.Flags.Has(intent.FlagActivityNewTask))
}
