// Package engine owns the single current indexing or search job and the
// ordered event stream a client attaches to, mirroring the shape of the
// teacher's index+watcher pairing but generalized to the two job kinds
// this domain needs instead of one long-lived build.
package engine

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/evanhughes/trigrep/internal/events"
	"github.com/evanhughes/trigrep/internal/indexer"
	"github.com/evanhughes/trigrep/internal/search"
	"github.com/evanhughes/trigrep/internal/store"
	"github.com/evanhughes/trigrep/internal/watcher"
)

type jobKind int32

const (
	jobIdle jobKind = iota
	jobIndexing
	jobSearching
)

func (k jobKind) String() string {
	switch k {
	case jobIndexing:
		return "indexing"
	case jobSearching:
		return "searching"
	default:
		return "idle"
	}
}

// Engine serializes scan and search jobs over a shared index store,
// cancelling and joining any job already in flight before starting the
// next one. It implements events.Sink so the indexer, the search
// dispatcher, and the watcher bridge can all report through the same
// ordered channel.
type Engine struct {
	st     *store.Store
	bridge *watcher.Bridge

	eventsCh chan events.Event
	poolSize int

	mu     sync.Mutex
	job    atomic.Int32
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs an idle engine with no root bound yet. poolSize
// controls the big-file worker pool used by searches; 0 selects the
// search package's default.
func New(poolSize int) (*Engine, error) {
	e := &Engine{
		st:       store.New(""),
		eventsCh: make(chan events.Event, 256),
		poolSize: poolSize,
	}

	bridge, err := watcher.New(e.st, e)
	if err != nil {
		return nil, err
	}
	e.bridge = bridge
	bridge.Start()

	return e, nil
}

// Events returns the ordered event stream for the engine's lifetime.
// Closed only by Close.
func (e *Engine) Events() <-chan events.Event {
	return e.eventsCh
}

// State reports the job currently running: "idle", "indexing", or
// "searching".
func (e *Engine) State() string {
	return jobKind(e.job.Load()).String()
}

// Emit implements events.Sink, letting every job and the watcher bridge
// report through the same channel.
func (e *Engine) Emit(ev events.Event) {
	e.eventsCh <- ev
}

// Scan cancels and joins any job in progress, clears the index and
// watch set, and starts indexing root on a new goroutine.
func (e *Engine) Scan(root string) error {
	e.joinCurrent()

	e.bridge.UnwatchAll()
	e.st.SetRoot(root)
	e.job.Store(int32(jobIndexing))

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.job.Store(int32(jobIdle))

		if err := indexer.Index(ctx, root, e.st, e); err != nil && err != context.Canceled {
			log.Printf("indexing %s: %v", root, err)
		}
		for path := range e.st.Snapshot() {
			e.bridge.Watch(path)
		}
	}()

	return nil
}

// Search validates needle, cancels and joins any job in progress, and
// starts a search over the current index on a new goroutine. Validation
// failures are reported through the event stream and never start a job.
func (e *Engine) Search(needle []byte) error {
	if err := validateNeedle(needle); err != nil {
		e.Emit(events.ExceptionOccurred(err.Error()))
		return err
	}

	e.joinCurrent()
	e.job.Store(int32(jobSearching))

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.job.Store(int32(jobIdle))

		if err := search.Search(ctx, e.st, needle, e, e.poolSize); err != nil && err != context.Canceled {
			log.Printf("search: %v", err)
		}
	}()

	return nil
}

// Cancel requests that the in-flight job stop at its next chunk/file
// boundary. It does not block for the job to finish; call Scan or
// Search again (which join first) or Close to wait for it.
func (e *Engine) Cancel() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Close cancels and joins any running job and stops the watcher bridge.
// The event channel is left open; callers should stop reading from
// Events after Close returns.
func (e *Engine) Close() error {
	e.joinCurrent()
	return e.bridge.Close()
}

func (e *Engine) joinCurrent() {
	e.Cancel()
	e.wg.Wait()
}
