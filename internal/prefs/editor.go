package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dlclark/regexp2"
	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"
)

// Android package name: at least two dot-separated segments, each starting
// with a letter.
var packageNameRegex = regexp2.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)+$`, regexp2.None)

var ErrUnknownKey = errors.New("unknown settings key")

// ValidPackageName reports whether name is a syntactically valid package name.
func ValidPackageName(name string) bool {
	ok, err := packageNameRegex.MatchString(name)
	return err == nil && ok
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("pkgname", func(fl validator.FieldLevel) bool {
		return ValidPackageName(fl.Field().String())
	})
	return v
}

// Editor is the write side used by the settings UI. Edits are staged and
// persisted by Commit under an exclusive lock, replacing the settings file
// atomically so readers in other processes never see a partial write.
type Editor struct {
	dir      string
	pending  map[string]any
	validate *validator.Validate
}

func NewEditor(dir string) *Editor {
	return &Editor{
		dir:      dir,
		pending:  make(map[string]any),
		validate: newValidator(),
	}
}

func (e *Editor) SetSelectedInstaller(pkg string) error {
	if !ValidPackageName(pkg) {
		return fmt.Errorf("invalid package name %q", pkg)
	}
	e.pending[KeySelectedInstaller] = pkg
	return nil
}

// ClearSelectedInstaller restores the platform default installer.
func (e *Editor) ClearSelectedInstaller() {
	e.pending[KeySelectedInstaller] = ""
}

func (e *Editor) SetBool(key string, value bool) error {
	if !IsBoolKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	e.pending[key] = value
	return nil
}

// Commit applies the staged edits on top of the current file contents and
// returns the resulting settings.
func (e *Editor) Commit() (Settings, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return Settings{}, fmt.Errorf("os.MkdirAll: %w", err)
	}

	unlock, err := lockExclusive(filepath.Join(e.dir, "."+FileName+".lock"))
	if err != nil {
		return Settings{}, fmt.Errorf("lockExclusive: %w", err)
	}
	defer unlock()

	path := FilePath(e.dir)
	settings := DefaultSettings()
	values, err := readValues(path)
	switch {
	case err == nil:
		if err := decodeSettings(values, &settings); err != nil {
			return Settings{}, fmt.Errorf("decodeSettings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Settings{}, fmt.Errorf("readValues: %w", err)
	}

	for key, value := range e.pending {
		switch key {
		case KeySelectedInstaller:
			settings.SelectedInstaller = value.(string)
		case KeyHideLauncherIcon:
			settings.HideLauncherIcon = value.(bool)
		case KeyEnableDebugLog:
			settings.DebugLog = value.(bool)
		case KeyInterceptUninstall:
			settings.InterceptUninstall = value.(bool)
		}
	}

	if err := e.validate.Struct(settings); err != nil {
		return Settings{}, fmt.Errorf("validate: %w", err)
	}

	data, err := yaml.Marshal(&settings)
	if err != nil {
		return Settings{}, fmt.Errorf("yaml.Marshal: %w", err)
	}
	if err := WriteFileAtomic(path, data, 0644); err != nil {
		return Settings{}, err
	}

	clear(e.pending)
	return settings, nil
}

// WriteFileAtomic replaces path with data via a temp file and rename, so
// readers see either the old or the new content.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("os.File.Write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("os.File.Sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("os.File.Close: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("os.Chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}
	return nil
}
