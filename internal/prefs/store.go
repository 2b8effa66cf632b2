package prefs

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

type cache struct {
	values   map[string]any
	loadedAt time.Time
}

// Store is a process-local cache of the settings file. Reads never block on
// I/O and never fail; Reload replaces the whole cache at once, so concurrent
// reloads settle on whichever finished last.
type Store struct {
	path  string
	cache atomic.Pointer[cache]
}

func NewStore(dir string) *Store {
	s := &Store{path: FilePath(dir)}
	s.cache.Store(&cache{values: map[string]any{}})
	return s
}

var stores sync.Map

// Open returns the process-wide Store for dir, creating and loading it on
// first use.
func Open(dir string) *Store {
	if s, ok := stores.Load(dir); ok {
		return s.(*Store)
	}
	s, loaded := stores.LoadOrStore(dir, NewStore(dir))
	store := s.(*Store)
	if !loaded {
		store.Reload()
	}
	return store
}

func (s *Store) Path() string {
	return s.path
}

// LoadedAt returns the time of the last successful reload, zero if none.
func (s *Store) LoadedAt() time.Time {
	return s.cache.Load().loadedAt
}

// Err returns ErrNotLoaded until a reload has succeeded; until then every
// read yields its default.
func (s *Store) Err() error {
	if s.LoadedAt().IsZero() {
		return ErrNotLoaded
	}
	return nil
}

// Reload re-reads the settings file. If the file is missing or unreadable
// the previous values stay in effect.
func (s *Store) Reload() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("prefs.Store.Reload", slog.String("path", s.path), slog.Any("panic", r))
		}
	}()

	values, err := readValues(s.path)
	if err != nil {
		slog.Debug("prefs.readValues", slog.String("path", s.path), slog.Any("error", err))
		return
	}
	s.cache.Store(&cache{values: values, loadedAt: time.Now()})
}

// ReloadErr is Reload for callers that want to know why a reload did not
// take effect.
func (s *Store) ReloadErr() error {
	values, err := readValues(s.path)
	if err != nil {
		return err
	}
	s.cache.Store(&cache{values: values, loadedAt: time.Now()})
	return nil
}

func (s *Store) lookup(key string) (any, bool) {
	c := s.cache.Load()
	if c == nil || c.values == nil {
		return nil, false
	}
	v, ok := c.values[key]
	return v, ok
}

func (s *Store) GetString(key, def string) (value string) {
	defer func() {
		if recover() != nil {
			value = def
		}
	}()
	v, ok := s.lookup(key)
	if !ok || v == nil {
		return def
	}
	str, ok := v.(string)
	if !ok {
		return def
	}
	return str
}

func (s *Store) GetBool(key string, def bool) (value bool) {
	defer func() {
		if recover() != nil {
			value = def
		}
	}()
	v, ok := s.lookup(key)
	if !ok || v == nil {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// Settings returns the typed view of the cache with defaults applied.
func (s *Store) Settings() Settings {
	settings := DefaultSettings()
	c := s.cache.Load()
	if c == nil {
		return settings
	}
	if err := decodeSettings(c.values, &settings); err != nil {
		slog.Debug("prefs.decodeSettings", slog.Any("error", err))
		return Settings{
			SelectedInstaller:  s.GetString(KeySelectedInstaller, ""),
			HideLauncherIcon:   s.GetBool(KeyHideLauncherIcon, false),
			DebugLog:           s.GetBool(KeyEnableDebugLog, true),
			InterceptUninstall: s.GetBool(KeyInterceptUninstall, false),
		}
	}
	return settings
}

func decodeSettings(values map[string]any, out *Settings) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(values)
}

func readValues(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("viper.ReadConfig: %w", err)
	}
	return v.AllSettings(), nil
}
