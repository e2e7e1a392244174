package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchFiles calls onChange with the files that were written since the last
// call, once writes have been quiet for debounce. It blocks until ctx is
// done. Directories are watched rather than the files themselves so that
// editors which save by renaming are still seen.
func watchFiles(ctx context.Context, logger *slog.Logger, files []string, debounce time.Duration, onChange func([]string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	watched := make(map[string]string, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		watched[abs] = f
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}
	logger.Debug("watching", "files", len(files), "dirs", len(dirs))

	watchLoop(ctx, logger, watcher.Events, watcher.Errors, watched, debounce, onChange)
	return nil
}

// watchLoop debounces file events. watched maps absolute paths to the names
// reported to onChange.
func watchLoop(ctx context.Context, logger *slog.Logger, events <-chan fsnotify.Event, errs <-chan error,
	watched map[string]string, debounce time.Duration, onChange func([]string)) {
	pending := make(map[string]bool)
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			name, ok := watched[abs]
			if !ok {
				continue
			}
			pending[name] = true
			timer.Reset(debounce)

		case err, ok := <-errs:
			if !ok {
				return
			}
			logger.Warn("watch error", "error", err)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			clear(pending)
			slices.Sort(changed)
			onChange(changed)
		}
	}
}
