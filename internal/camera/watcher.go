package camera

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func logger() zerolog.Logger {
	return log.With().Str("component", "camera").Logger()
}

// Watcher reloads a roster file whenever it changes on disk.
type Watcher struct {
	source   FileSource
	debounce time.Duration
	onChange func([]Camera)
}

// NewWatcher creates a watcher for path. onChange receives every snapshot that
// parses cleanly; broken edits are logged and skipped.
func NewWatcher(path string, onChange func([]Camera)) *Watcher {
	return &Watcher{
		source:   FileSource{Path: path},
		debounce: 200 * time.Millisecond,
		onChange: onChange,
	}
}

// Run watches until ctx is done. The parent directory is watched rather than
// the file itself so editors that replace the file via rename are picked up.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("camera: create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.source.Path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("camera: watch %s: %w", dir, err)
	}

	target := filepath.Clean(w.source.Path)
	lg := logger()
	lg.Info().Str("path", target).Msg("watching roster file")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			lg.Warn().Err(err).Msg("roster watcher error")

		case <-pending:
			pending = nil
			cams, err := w.source.Load(ctx)
			if err != nil {
				lg.Warn().Err(err).Msg("roster reload failed, keeping last snapshot")
				continue
			}
			lg.Info().Int("cameras", len(cams)).Msg("roster reloaded")
			w.onChange(cams)
		}
	}
}
