package pipeline

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// structureExt is the file extension the watcher reacts to.
const structureExt = ".pdb"

// batchQueueSize bounds settled batches waiting on a busy handler.
const batchQueueSize = 16

// Watcher watches an input directory for new structure files and delivers
// them in debounced batches. A single delivery goroutine invokes the
// handler, so batches never overlap: a slow handler delays the next batch
// rather than running concurrently with it.
type Watcher struct {
	dir     string
	onBatch func(paths []string)
	fsw     *fsnotify.Watcher
	pending map[string]struct{}
	queue   chan []string
	batches atomic.Uint32
}

// NewWatcher creates a watcher over dir and starts delivering batches to
// onBatch.
func NewWatcher(dir string, onBatch func(paths []string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		dir:     dir,
		onBatch: onBatch,
		fsw:     fsw,
		pending: make(map[string]struct{}),
		queue:   make(chan []string, batchQueueSize),
	}

	go w.watch()
	go w.deliver()

	return w, nil
}

// watch collects structure-file events and queues the settled batch after
// a quiet period. pending is only touched on this goroutine.
func (w *Watcher) watch() {
	defer close(w.queue)

	var timer *time.Timer
	var settled <-chan time.Time
	const debounce = 500 * time.Millisecond

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), structureExt) {
				continue
			}

			w.pending[event.Name] = struct{}{}

			if timer != nil && !timer.Stop() {
				<-settled
			}
			timer = time.NewTimer(debounce)
			settled = timer.C

		case <-settled:
			timer, settled = nil, nil

			paths := make([]string, 0, len(w.pending))
			for p := range w.pending {
				paths = append(paths, p)
			}
			clear(w.pending)

			if len(paths) == 0 {
				continue
			}
			sort.Strings(paths)

			w.queue <- paths

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}

			slog.Error("Watcher error", "error", err)
		}
	}
}

// deliver hands settled batches to the handler, one at a time.
func (w *Watcher) deliver() {
	for paths := range w.queue {
		count := w.batches.Add(1)
		slog.Info("New structures detected", "dir", w.dir, "count", len(paths), "batch", count)

		w.onBatch(paths)
	}
}

// BatchCount returns the number of batches delivered so far.
func (w *Watcher) BatchCount() uint32 {
	return w.batches.Load()
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
