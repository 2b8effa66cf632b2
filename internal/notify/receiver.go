package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/chimio/inxlocker/internal/prefs"
)

// Receiver calls its callback whenever a matching broadcast arrives or the
// settings file itself is replaced.
type Receiver struct {
	dir          string
	settingsName string
	callback     func()
}

func NewReceiver(dir string, callback func()) *Receiver {
	return &Receiver{
		dir:          dir,
		settingsName: filepath.Base(prefs.FilePath(dir)),
		callback:     callback,
	}
}

// Start begins watching and returns once the watch is in place. The watch
// runs until ctx is done.
func (r *Receiver) Start(ctx context.Context) error {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	if err := watcher.Add(r.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("fsnotify.Watcher.Add: %w", err)
	}

	slog.Info("Settings receiver started", slog.String("dir", r.dir), slog.String("action", ActionPrefsUpdated))
	go r.loop(ctx, watcher)
	return nil
}

func (r *Receiver) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer func() {
		if err := watcher.Close(); err != nil {
			slog.Error("fsnotify.Watcher.Close", slog.Any("error", err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if r.matches(event) {
				r.fire(event)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("fsnotify.Watcher", slog.Any("error", err))
		}
	}
}

func (r *Receiver) matches(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	switch filepath.Base(event.Name) {
	case r.settingsName:
		return true
	case BroadcastFile:
		b, err := ReadBroadcast(r.dir)
		if err != nil {
			slog.Debug("ReadBroadcast", slog.Any("error", err))
			return false
		}
		if b.Action != ActionPrefsUpdated {
			slog.Debug("Ignoring broadcast", slog.String("action", b.Action))
			return false
		}
		return true
	default:
		return false
	}
}

func (r *Receiver) fire(event fsnotify.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Receiver callback panic", slog.Any("panic", rec))
		}
	}()
	slog.Debug("Settings change received", slog.String("file", event.Name), slog.String("op", event.Op.String()))
	if r.callback != nil {
		r.callback()
	}
}
