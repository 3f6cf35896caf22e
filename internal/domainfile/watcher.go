package domainfile

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/tverens/craftplan/pkg/htn"
)

// Watcher reloads a domain file whenever it changes on disk. Each reload
// builds a fresh domain and hands it to the callback; the caller swaps
// it in between planning calls, so an in-flight decomposition never sees
// a half-built registry.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	done     chan struct{}
	onReload func(*htn.Domain)
	onError  func(error)
}

// NewWatcher starts watching the given domain file. onReload receives
// every successfully loaded domain; onError receives load failures and
// may be nil to ignore them.
func NewWatcher(path string, onReload func(*htn.Domain), onError func(error)) (*Watcher, error) {
	if onReload == nil {
		return nil, fmt.Errorf("watcher requires an onReload callback")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the parent directory: editors often replace files rather
	// than writing them in place, which drops a file-level watch.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		path:     path,
		watcher:  fsw,
		done:     make(chan struct{}),
		onReload: onReload,
		onError:  onError,
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	base := filepath.Base(w.path)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			domain, err := Load(w.path)
			if err != nil {
				if w.onError != nil {
					w.onError(err)
				}
				continue
			}
			w.onReload(domain)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}
