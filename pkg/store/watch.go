package store

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/agentstation/grimoire/pkg/errors"
)

// watchDebounce coalesces the burst of filesystem events a single
// atomic save produces into one change notification.
const watchDebounce = 300 * time.Millisecond

// Change reports that a collection was rewritten, by this process or
// another one, together with its freshly loaded state.
type Change struct {
	Key    Key
	Record Record
}

// Watcher observes the data directory and reports collection changes.
// It is the cross-process counterpart of the in-process event bus.
type Watcher struct {
	store   *Store
	fs      *fsnotify.Watcher
	changes chan Change
}

// Watch starts watching the store's data directory. The returned
// watcher emits a Change for every settled write to a collection file
// until ctx is canceled or Close is called.
func (s *Store) Watch(ctx context.Context) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapIO("watch", s.dir, err)
	}
	if err := fs.Add(s.dir); err != nil {
		fs.Close()
		return nil, errors.WrapIO("watch", s.dir, err)
	}

	w := &Watcher{store: s, fs: fs, changes: make(chan Change, 8)}
	go w.run(ctx)
	return w, nil
}

// Changes returns the change stream. The channel is closed when the
// watcher stops.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.changes)

	// Debounce map
	debounce := make(map[Key]*time.Timer)
	var debounceMu sync.Mutex
	defer func() {
		debounceMu.Lock()
		for _, timer := range debounce {
			timer.Stop()
		}
		debounceMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			key, known := KeyForFile(filepath.Base(event.Name))
			if !known {
				continue
			}

			// Wait for the write burst to settle before reloading.
			debounceMu.Lock()
			if timer, exists := debounce[key]; exists {
				timer.Stop()
			}
			debounce[key] = time.AfterFunc(watchDebounce, func() {
				debounceMu.Lock()
				delete(debounce, key)
				debounceMu.Unlock()

				change := Change{Key: key, Record: w.store.Load(key)}
				select {
				case w.changes <- change:
				default:
					w.store.logger.Warn().Str("key", string(key)).
						Msg("Change channel full, notification dropped")
				}
			})
			debounceMu.Unlock()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.store.logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}
