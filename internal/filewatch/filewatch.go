// Package filewatch detects changes made to a buffer's backing file by
// something other than this editor: another process, another client's
// `:w`, a VCS checkout. Unlike a project-wide file watcher, it only ever
// tracks paths a buffer has actually opened, and reports them through a
// single debounced channel rather than a typed event/op vocabulary.
package filewatch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change reports that path's on-disk contents moved since it was last
// read by this editor.
type Change struct {
	Path string
}

// Watcher multiplexes fsnotify's directory-level events down to the
// individual file paths buffers care about. fsnotify must watch a file's
// containing directory rather than the file itself, since editors that
// save by writing a temp file and renaming it over the original
// invalidate a direct file watch on every save; a directory watch
// survives that and this type filters by basename instead.
type Watcher struct {
	fsw   *fsnotify.Watcher
	delay time.Duration

	mu      sync.Mutex
	fileRef map[string]int // absolute file path -> number of buffers open on it
	dirRef  map[string]int // absolute directory -> number of Watch references to files inside it
	pending map[string]*time.Timer
	closed  bool

	changes chan Change
}

// New starts a Watcher. Returns an error if the platform's inotify (or
// equivalent) handle can't be allocated; callers should treat that as
// "external-change detection unavailable" rather than fatal.
func New() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:     fsw,
		delay:   250 * time.Millisecond,
		fileRef: make(map[string]int),
		dirRef:  make(map[string]int),
		pending: make(map[string]*time.Timer),
		changes: make(chan Change, 32),
	}
	go w.run()
	return w, nil
}

// Changes returns the channel Change values arrive on. Closed when the
// Watcher is.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Watch starts tracking path, watching its containing directory the
// first time any file inside it is referenced. Safe to call more than
// once for the same path (e.g. two buffers opened on the same file);
// Unwatch must be called an equal number of times.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.fileRef[abs]++
	if w.dirRef[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			w.fileRef[abs]--
			return err
		}
	}
	w.dirRef[dir]++
	return nil
}

// Unwatch drops one reference to path, removing the directory watch
// once nothing inside it is still referenced.
func (w *Watcher) Unwatch(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.fileRef[abs] == 0 {
		return
	}
	w.fileRef[abs]--
	if w.fileRef[abs] == 0 {
		delete(w.fileRef, abs)
	}
	w.dirRef[dir]--
	if w.dirRef[dir] <= 0 {
		delete(w.dirRef, dir)
		_ = w.fsw.Remove(dir)
	}
}

// Close stops the watcher and closes the Changes channel.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, t := range w.pending {
		t.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) run() {
	defer close(w.changes)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.schedule(ev.Name)
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Transient platform errors (watch overflow, removed
			// directory) aren't actionable here; the buffer simply
			// won't see a reload prompt until the next successful event.
		}
	}
}

// schedule debounces path, firing exactly one Change after w.delay of
// no further writes to it.
func (w *Watcher) schedule(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.fileRef[abs] == 0 {
		return
	}
	if t, ok := w.pending[abs]; ok {
		t.Reset(w.delay)
		return
	}
	w.pending[abs] = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		delete(w.pending, abs)
		closed := w.closed
		w.mu.Unlock()
		if !closed {
			w.changes <- Change{Path: abs}
		}
	})
}
