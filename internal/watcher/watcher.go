// Package watcher bridges on-disk changes to the index store. Unlike a
// typical project-wide file watcher, it subscribes one fsnotify watch per
// indexed text file (mirroring the original scanner's per-file
// QFileSystemWatcher registrations), since only files that survived
// fingerprinting need to be watched at all.
package watcher

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/evanhughes/trigrep/internal/events"
	"github.com/evanhughes/trigrep/internal/store"
	"github.com/evanhughes/trigrep/internal/trigram"
)

// settleInterval is how long the bridge waits after the most recent
// fsnotify event for a path before treating that path as settled and
// acting on it. fsnotify fires separate WRITE events for each block an
// editor flushes, so acting on the first one re-fingerprints a half
// written file.
const settleInterval = 100 * time.Millisecond

// edit accumulates the fsnotify operations seen for one path since it
// last settled.
type edit struct {
	op fsnotify.Op
}

// Bridge subscribes to per-file change events for every indexed text file
// and keeps the index store in sync as files are edited or removed.
type Bridge struct {
	fsw   *fsnotify.Watcher
	store *store.Store
	sink  events.Sink

	watched      map[string]bool
	limitReached bool

	editMu      sync.Mutex
	edits       map[string]*edit
	settleTimer *time.Timer

	done chan struct{}
}

// New creates a bridge for st, reporting events through sink. Start must
// be called to begin processing fsnotify events.
func New(st *store.Store, sink events.Sink) (*Bridge, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Bridge{
		fsw:     fsw,
		store:   st,
		sink:    sink,
		watched: make(map[string]bool),
		edits:   make(map[string]*edit),
		done:    make(chan struct{}),
	}, nil
}

// Start begins the background event loop.
func (b *Bridge) Start() {
	go b.eventLoop()
}

// Watch registers path for change notifications, unless the watch limit
// has already been reached for this index. On the first failure to add a
// subscription, it reports WatchSubscriptionExhausted once and stops
// attempting further subscriptions until the next scan.
func (b *Bridge) Watch(path string) {
	if b.limitReached || b.watched[path] {
		return
	}
	if err := b.fsw.Add(path); err != nil {
		b.limitReached = true
		b.sink.Emit(events.ExceptionOccurredErr(&events.WatchSubscriptionExhaustedError{
			Path: b.store.RelPath(path),
			Err:  err,
		}))
		return
	}
	b.watched[path] = true
}

// UnwatchAll removes every registered subscription, for reuse by a fresh
// scan. It does not close the underlying fsnotify watcher.
func (b *Bridge) UnwatchAll() {
	for path := range b.watched {
		b.fsw.Remove(path)
	}
	b.watched = make(map[string]bool)
	b.limitReached = false
}

// Close stops the event loop and releases the underlying fsnotify
// watcher.
func (b *Bridge) Close() error {
	close(b.done)
	return b.fsw.Close()
}

func (b *Bridge) eventLoop() {
	for {
		select {
		case <-b.done:
			return
		case ev, ok := <-b.fsw.Events:
			if !ok {
				return
			}
			b.recordEdit(ev.Name, ev.Op)
		case err, ok := <-b.fsw.Errors:
			if !ok {
				return
			}
			b.sink.Emit(events.ExceptionOccurred(fmt.Sprintf("watcher error: %v", err)))
		}
	}
}

// recordEdit folds a new fsnotify event into path's accumulated edit and
// (re)arms the settle timer, so a burst of events for the same path
// collapses into one settle call once they stop arriving.
func (b *Bridge) recordEdit(path string, op fsnotify.Op) {
	b.editMu.Lock()
	defer b.editMu.Unlock()

	if e, ok := b.edits[path]; ok {
		e.op |= op
	} else {
		b.edits[path] = &edit{op: op}
	}

	if b.settleTimer != nil {
		b.settleTimer.Stop()
	}
	b.settleTimer = time.AfterFunc(settleInterval, b.settle)
}

// settle runs once settleInterval has elapsed with no further edits,
// partitioning the accumulated paths into changed and removed before
// handing them to handleChanges.
func (b *Bridge) settle() {
	b.editMu.Lock()
	edits := b.edits
	b.edits = make(map[string]*edit)
	b.editMu.Unlock()

	if len(edits) == 0 {
		return
	}

	var changed, removed []string
	for path, e := range edits {
		if e.op.Has(fsnotify.Remove) || e.op.Has(fsnotify.Rename) {
			removed = append(removed, path)
		} else if e.op.Has(fsnotify.Write) || e.op.Has(fsnotify.Create) {
			changed = append(changed, path)
		}
	}
	b.handleChanges(changed, removed)
}

// handleChanges implements the changed(path) behavior from the watcher
// bridge design: drop the stale entry, and either re-fingerprint and
// re-subscribe (file still exists) or leave it dropped and clear the
// watch-limit flag (file was removed).
func (b *Bridge) handleChanges(changed, removed []string) {
	for _, path := range changed {
		b.refresh(path)
	}
	for _, path := range removed {
		b.evict(path)
	}
}

func (b *Bridge) refresh(path string) {
	b.store.Remove(path)
	delete(b.watched, path)
	b.fsw.Remove(path)

	if _, err := os.Stat(path); err != nil {
		b.evict(path)
		return
	}

	fp, ok, err := trigram.FileFingerprint(context.Background(), path)
	if err != nil || !ok {
		return
	}
	b.store.Put(path, fp)
	b.Watch(path)
}

func (b *Bridge) evict(path string) {
	b.store.Remove(path)
	delete(b.watched, path)
	b.fsw.Remove(path)
	b.limitReached = false
}
