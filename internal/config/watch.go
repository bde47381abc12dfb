package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/oshokin/alarm-compiler/internal/logger"
)

// Watch calls onChange each time one of paths is written or replaced, until
// ctx is canceled. The parent directories are watched so editors that save
// through a rename are still noticed.
func Watch(ctx context.Context, paths []string, onChange func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	defer func() {
		_ = watcher.Close()
	}()

	targets := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		targets[abs] = struct{}{}

		if err = watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
		}
	}

	logger.InfoKV(ctx, "Watching for changes", "paths", paths)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}

			if _, tracked := targets[abs]; !tracked {
				continue
			}

			logger.DebugKV(ctx, "Change detected", "path", abs, "op", event.Op.String())
			onChange(abs)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.ErrorKV(ctx, "Watcher error", "error", err)
		}
	}
}
