// Package watch announces dump files arriving in a directory so that a
// new comparison run can be triggered without polling.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/kairu-dev/dumpaudit/internal/logger"
)

// dumpExtensions are the file suffixes treated as PostgreSQL dumps.
var dumpExtensions = map[string]struct{}{
	".sql":    {},
	".dump":   {},
	".backup": {},
}

// Watcher invokes OnDump for every dump file created in Dir.
type Watcher struct {
	Dir    string
	OnDump func(path string)
}

// Run blocks until ctx is cancelled, reporting new dump files as they
// appear. Partial writes are the importer's concern; Run only announces.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.Dir, err)
	}
	logger.L.Info("watching for dump files", "dir", w.Dir)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			if !IsDumpFile(ev.Name) {
				continue
			}
			logger.L.Info("new dump file", "path", ev.Name)
			if w.OnDump != nil {
				w.OnDump(ev.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.L.Error("watch error", "err", err)
		}
	}
}

// IsDumpFile reports whether the path looks like a dump file.
func IsDumpFile(path string) bool {
	_, ok := dumpExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
