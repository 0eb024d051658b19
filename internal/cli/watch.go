package cli

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bookvault-cli/bookvault/internal/catalog"
	"github.com/bookvault-cli/bookvault/internal/logging"
	"github.com/bookvault-cli/bookvault/internal/models"
)

// localWriteWindow is how long after one of our own mutations filesystem
// events on the catalog are still attributed to this process.
const localWriteWindow = 2 * time.Second

// sessionWatcher watches the open catalog file and warns when another
// process writes it. The design assumes single-instance access, so a foreign
// write means someone is about to corrupt the catalog; the warning is
// advisory and nothing is blocked.
type sessionWatcher struct {
	fw   *fsnotify.Watcher
	log  logging.Logger
	base string

	mu        sync.Mutex
	lastLocal time.Time
	warned    bool
}

// startSessionWatcher begins watching the directory holding the catalog at
// path. Events are matched by file name prefix so the engine's journal and
// WAL side files are covered too.
func startSessionWatcher(ctx context.Context, path string, log logging.Logger) (*sessionWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &sessionWatcher{fw: fw, log: log, base: filepath.Base(path)}
	go w.run(ctx)
	return w, nil
}

func (w *sessionWatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), w.base) {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) &&
				!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if w.suppressed() {
				continue
			}
			w.warnForeignWrite(ctx, ev)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn(ctx, "session watcher error", "error", err.Error())
		}
	}
}

// MarkLocalWrite attributes catalog file events in the near future to this
// process. Call it right before a mutating operation.
func (w *sessionWatcher) MarkLocalWrite() {
	w.mu.Lock()
	w.lastLocal = time.Now()
	w.mu.Unlock()
}

func (w *sessionWatcher) suppressed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return time.Since(w.lastLocal) < localWriteWindow
}

func (w *sessionWatcher) warnForeignWrite(ctx context.Context, ev fsnotify.Event) {
	w.log.Warn(ctx, "catalog changed on disk by another process", "file", ev.Name, "op", ev.Op.String())

	w.mu.Lock()
	already := w.warned
	w.warned = true
	w.mu.Unlock()

	// The user-facing warning is printed once per session; repeats would
	// drown the prompt.
	if !already {
		printlnFn("Warning: the catalog file was modified by another process. Close other instances to avoid corruption.")
	}
}

func (w *sessionWatcher) Close() {
	_ = w.fw.Close()
}

// watchedService wraps a catalog.Service and tells the session watcher about
// local mutations, so only foreign writes trigger the warning.
type watchedService struct {
	catalog.Service
	watcher *sessionWatcher
}

func (s *watchedService) Add(ctx context.Context, title, author string) (*models.Book, error) {
	s.watcher.MarkLocalWrite()
	return s.Service.Add(ctx, title, author)
}

func (s *watchedService) Edit(ctx context.Context, id int64, changes models.Changes) (*models.Book, error) {
	s.watcher.MarkLocalWrite()
	return s.Service.Edit(ctx, id, changes)
}

func (s *watchedService) MarkRead(ctx context.Context, id int64) (*models.Book, error) {
	s.watcher.MarkLocalWrite()
	return s.Service.MarkRead(ctx, id)
}

func (s *watchedService) Delete(ctx context.Context, id int64) error {
	s.watcher.MarkLocalWrite()
	return s.Service.Delete(ctx, id)
}

func (s *watchedService) TouchOpened(ctx context.Context, appVersion string) error {
	s.watcher.MarkLocalWrite()
	return s.Service.TouchOpened(ctx, appVersion)
}
