package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/i474232898/todays-weather/internal/weather"
)

// WatchFields reloads the field table at path each time it is written and
// hands every valid table to apply. An invalid table is logged and the
// previous one stays in use. It blocks until ctx is done.
func WatchFields(ctx context.Context, path string, apply func(weather.FieldTable)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed creating file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch its directory.
	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed watching %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			table, err := weather.LoadFieldTable(path)
			if err != nil {
				log.Printf("ERROR: keeping previous field table: %v", err)
				continue
			}
			log.Printf("INFO: reloaded %d fields from %s", len(table), path)
			apply(table)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("ERROR: field table watcher: %v", err)
		}
	}
}
