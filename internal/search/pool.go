package search

import (
	"context"

	"github.com/evanhughes/trigrep/internal/kmp"
)

type scanResult struct {
	path    string
	offsets []int
	err     error
}

// pool bounds the number of big-file scans running at once, grounded on
// the teacher's fixed semaphore in index.Index.Build, generalized from a
// hardcoded 8 to a configurable size. Every submitted scan reports back
// on a single shared channel so the caller observes results in the order
// scans actually complete rather than the order they were submitted.
type pool struct {
	sem chan struct{}
	out chan scanResult
}

func newPool(size int) *pool {
	return &pool{
		sem: make(chan struct{}, size),
		out: make(chan scanResult),
	}
}

// submit runs a scan of c on its own goroutine, gated by the pool's
// semaphore, and sends the one result it produces on the pool's shared
// output channel.
func (p *pool) submit(ctx context.Context, c candidate, needle []byte, m *kmp.Matcher) {
	go func() {
		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		offsets, err := scanFile(ctx, c.path, needle, m)
		p.out <- scanResult{path: c.path, offsets: offsets, err: err}
	}()
}

// results returns the channel every submitted scan reports on. The
// caller must read exactly as many results as it submitted tasks.
func (p *pool) results() <-chan scanResult {
	return p.out
}
