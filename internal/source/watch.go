package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cms-PdmV/PdmVPages/internal/config"
	"github.com/cms-PdmV/PdmVPages/internal/logging"
)

const DefaultDebounce = 250 * time.Millisecond

// Watcher reports dashboards whose local data.json or timestamp file was
// rewritten. Remote dashboards are ignored.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string][]string // watched file -> dashboard names
	changes  chan string
	debounce time.Duration
	logger   *slog.Logger
}

func NewWatcher(dashboards []config.Dashboard, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		fs:       fw,
		files:    make(map[string][]string),
		changes:  make(chan string, len(dashboards)+1),
		debounce: debounce,
		logger:   logging.Default(logger).With("component", "watcher"),
	}

	dirs := make(map[string]bool)
	for _, d := range dashboards {
		if IsRemote(d.Source) {
			continue
		}
		data, err := filepath.Abs(d.Source)
		if err != nil {
			continue
		}
		dir := filepath.Dir(data)
		for _, f := range []string{data, filepath.Join(dir, d.TimestampFile())} {
			w.files[f] = append(w.files[f], d.Name)
		}
		// Producers replace files, so the directory is watched.
		if !dirs[dir] {
			dirs[dir] = true
			if err := fw.Add(dir); err != nil {
				w.logger.Warn("cannot watch directory", "dir", dir, "error", err)
			}
		}
	}
	return w, nil
}

// Changes delivers the name of each dashboard that needs reloading.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Watching reports whether any local dashboard is watched.
func (w *Watcher) Watching() bool { return len(w.files) > 0 }

// Run processes file events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			for _, name := range w.files[filepath.Clean(event.Name)] {
				if t, ok := timers[name]; ok {
					t.Stop()
				}
				timers[name] = time.AfterFunc(w.debounce, func() {
					w.logger.Debug("source changed", "dashboard", name, "file", event.Name)
					select {
					case w.changes <- name:
					default:
						// A reload of this dashboard is already pending.
					}
				})
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}
