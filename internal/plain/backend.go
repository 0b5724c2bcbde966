// Package plain implements the flat-file storage backend for folio.
//
// Bookmarks and per-document view state live in two key files, "bookmarks"
// and "history", with one group per document. Command input history is a
// separate line-oriented file. Both key files are cached in memory, watched
// for changes made by other processes, and rewritten whole on every update.
package plain

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"gopkg.in/ini.v1"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// Backend implements types.Store on flat files.
//
// The mutex guards the cached key files, which both direct calls and the
// change watcher replace. Locking on disk is per read or write only; two
// processes that update the same store concurrently can overwrite each
// other's changes.
type Backend struct {
	mu     sync.Mutex
	dir    string
	stores map[string]*ini.File
	closed bool

	settle  time.Duration
	watcher *fsnotify.Watcher
	timers  map[string]*time.Timer
	done    chan struct{}

	log *slog.Logger
}

var (
	_ types.Store            = (*Backend)(nil)
	_ types.FileInfoAtSetter = (*Backend)(nil)
)

// watchedFiles are the cached stores reloaded on change.
var watchedFiles = []string{BookmarksFile, HistoryFile}

// Open loads the stores in dir, creating the directory and empty files as
// needed, and starts watching them. settle is how long the watcher waits
// after the last change to a file before reloading it. No backend is
// returned when a store cannot be read or parsed.
func Open(dir string, settle time.Duration) (*Backend, error) {
	if dir == "" {
		return nil, types.ErrDataDirEmpty
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	if settle <= 0 {
		settle = types.DefaultSettleDelay
	}

	b := &Backend{
		dir:    dir,
		stores: make(map[string]*ini.File),
		settle: settle,
		timers: make(map[string]*time.Timer),
		done:   make(chan struct{}),
		log:    slog.Default().With("backend", types.BackendPlain, "instance", newInstanceID()),
	}

	for _, name := range watchedFiles {
		f, err := readKeyFile(b.filePath(name))
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
		b.stores[name] = f
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		b.log.Warn("plain: could not create watcher, external changes will not be seen", "err", err)
		close(b.done)
		return b, nil
	}
	if err := watcher.Add(dir); err != nil {
		b.log.Warn("plain: could not watch data dir", "dir", dir, "err", err)
		watcher.Close()
		close(b.done)
		return b, nil
	}
	b.watcher = watcher
	go b.watchLoop()

	return b, nil
}

// Dir returns the data directory.
func (b *Backend) Dir() string {
	return b.dir
}

func (b *Backend) filePath(name string) string {
	return filepath.Join(b.dir, name)
}

// Close stops watching and drops the cache. Close is idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	var err error
	if b.watcher != nil {
		err = b.watcher.Close()
	}
	<-b.done

	for _, t := range b.timers {
		t.Stop()
	}
	return err
}

// Reload rereads every cached store from disk. A store that fails to load
// keeps its previous contents; the first such error is returned.
func (b *Backend) Reload() error {
	var first error
	for _, name := range watchedFiles {
		if err := b.reload(name); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// reload replaces the cached store name with its on-disk content.
func (b *Backend) reload(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return types.ErrStoreClosed
	}

	data, err := readLocked(b.filePath(name))
	if err != nil {
		b.log.Warn("plain: reload failed, keeping cached store", "file", name, "err", err)
		return fmt.Errorf("reloading %s: %w", name, err)
	}
	f, err := parseKeyFile(data)
	if err != nil {
		b.log.Warn("plain: reload failed, keeping cached store", "file", name, "err", err)
		return fmt.Errorf("reloading %s: %w", name, err)
	}
	b.stores[name] = f
	b.log.Debug("plain: reloaded store", "file", name)
	return nil
}

// watchLoop turns change events for the store files into reloads once the
// file has been quiet for the settle delay.
func (b *Backend) watchLoop() {
	defer close(b.done)

	targets := make(map[string]string, len(watchedFiles))
	for _, name := range watchedFiles {
		targets[filepath.Clean(b.filePath(name))] = name
	}

	for {
		select {
		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			name, watched := targets[filepath.Clean(event.Name)]
			if !watched || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) {
				continue
			}
			b.scheduleReload(name)
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			b.log.Warn("plain: watcher error", "err", err)
		}
	}
}

// scheduleReload (re)arms the settle timer of store name. Only the watch
// loop calls it, so timers needs no lock.
func (b *Backend) scheduleReload(name string) {
	if t, ok := b.timers[name]; ok {
		t.Reset(b.settle)
		return
	}
	b.timers[name] = time.AfterFunc(b.settle, func() {
		_ = b.reload(name)
	})
}

// update applies fn to a copy of store name, writes the copy to disk, and
// only then makes it the cached store. On any failure the cache is unchanged.
// The caller must hold b.mu.
func (b *Backend) update(name string, fn func(f *ini.File) error) error {
	next, err := cloneKeyFile(b.stores[name])
	if err != nil {
		return err
	}
	if err := fn(next); err != nil {
		return err
	}
	data, err := serializeKeyFile(next)
	if err != nil {
		return err
	}
	if err := writeLocked(b.filePath(name), data); err != nil {
		return err
	}
	b.stores[name] = next
	return nil
}

// newInstanceID generates a UUID v7 identifying this backend in logs.
func newInstanceID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
