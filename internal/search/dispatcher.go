// Package search implements the candidate filter and per-file scan that
// answer a fixed-string query over an index built by internal/indexer.
package search

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/evanhughes/trigrep/internal/events"
	"github.com/evanhughes/trigrep/internal/kmp"
	"github.com/evanhughes/trigrep/internal/store"
	"github.com/evanhughes/trigrep/internal/trigram"
)

// BigFileThreshold is the byte size above which a candidate file scans
// on the worker pool instead of inline on the dispatcher goroutine.
const BigFileThreshold = 524288

// DefaultPoolSize bounds big-file scan concurrency when the caller does
// not request a specific size.
const DefaultPoolSize = 8

type candidate struct {
	path string
	size int64
}

// Search runs a fixed-string search for needle over every file currently
// in st, emitting UpdateResults once per matching file in the order
// small files are scanned inline followed by big files as their pooled
// scans complete, and finally SearchingFinished. Progress is reported as
// the fraction of candidates scanned so far, inline and pooled combined.
//
// The caller is responsible for validating needle length; Search assumes
// 1 <= len(needle).
func Search(ctx context.Context, st *store.Store, needle []byte, sink events.Sink, poolSize int) error {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}

	sink.Emit(events.Info("Searching is started..."))

	snapshot := st.Snapshot()
	candidates := filterCandidates(snapshot, needle)
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].path < candidates[j].path })

	var matcher *kmp.Matcher
	if len(needle) >= 3 {
		matcher = kmp.New(needle)
	}

	denominator := len(candidates)
	scanned := 0
	lastPercent := -1
	reportProgress := func() {
		percent := 100
		if denominator > 0 {
			percent = (scanned * 100) / denominator
			if percent > 100 {
				percent = 100
			}
		}
		if percent > lastPercent {
			lastPercent = percent
			sink.Emit(events.Progress(percent))
		}
	}

	p := newPool(poolSize)
	bigCount := 0
	cancelled := ctx.Err()

loop:
	for _, c := range candidates {
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break loop
		default:
		}

		if c.size > BigFileThreshold {
			p.submit(ctx, c, needle, matcher)
			bigCount++
			continue
		}

		offsets, err := scanFile(ctx, c.path, needle, matcher)
		emitScanResult(sink, st, c.path, offsets, err)
		scanned++
		reportProgress()
	}

	// Every submitted big-file task reports back on the pool's shared
	// channel regardless of cancellation, so reading exactly bigCount
	// results here both yields completion order and lets every pooled
	// goroutine exit before Search returns.
	for i := 0; i < bigCount; i++ {
		res := <-p.results()
		emitScanResult(sink, st, res.path, res.offsets, res.err)
		scanned++
		reportProgress()
	}

	// No error aborts a search outright: the terminal event always
	// fires, cancelled or not, so a client waiting on it never hangs.
	if lastPercent < 100 {
		sink.Emit(events.Progress(100))
	}
	sink.Emit(events.SearchingFinished())
	return cancelled
}

// filterCandidates implements the two-branch admission rule: a direct
// byte-substring probe over fingerprint keys for needles shorter than a
// trigram, the subset filter otherwise.
func filterCandidates(snapshot map[string]trigram.Fingerprint, needle []byte) []candidate {
	var needleFP trigram.Fingerprint
	if len(needle) >= 3 {
		needleFP = trigram.OfNeedle(needle)
	}

	var out []candidate
	for path, fp := range snapshot {
		var admit bool
		if len(needle) < 3 {
			admit = fp.ContainsByteSubstring(needle)
		} else {
			admit = fp.Subset(needleFP)
		}
		if !admit {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		out = append(out, candidate{path: path, size: info.Size()})
	}
	return out
}

func emitScanResult(sink events.Sink, st *store.Store, path string, offsets []int, err error) {
	if err != nil {
		if err == context.Canceled || err == context.DeadlineExceeded {
			return
		}
		sink.Emit(events.ExceptionOccurred(fmt.Sprintf("cannot scan %s: %v", st.RelPath(path), err)))
		return
	}
	if len(offsets) == 0 {
		return
	}
	sink.Emit(events.UpdateResults(st.RelPath(path), offsets))
}

// scanFile streams path through a shared CHUNK_LEN+|n| buffer, carrying
// the trailing |n|-1 bytes of each window into the next read so a match
// straddling a chunk boundary is still found, and returns every match
// offset relative to the start of the file. Needles shorter than a
// trigram bypass KMP (the failure-function offset is degenerate below
// length 3) in favor of a direct byte-equality scan over the same
// windowing.
func scanFile(ctx context.Context, path string, needle []byte, m *kmp.Matcher) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &trigram.OpenError{Path: path, Err: err}
	}
	defer f.Close()

	nl := len(needle)
	overlap := nl - 1
	buf := make([]byte, trigram.ChunkLen+nl)

	var offsets []int
	pos := 0
	carry := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		readLen := trigram.ChunkLen
		if carry+readLen > len(buf) {
			readLen = len(buf) - carry
		}
		n, rerr := f.Read(buf[carry : carry+readLen])
		if n > 0 {
			total := carry + n
			windowStart := pos - carry
			if m != nil {
				offsets = m.Scan(buf[:total], total, windowStart, offsets)
			} else {
				offsets = scanBuffer(buf[:total], total, needle, windowStart, offsets)
			}
			pos += n
			if total >= overlap {
				copy(buf[:overlap], buf[total-overlap:total])
				carry = overlap
			} else {
				carry = total
			}
		}
		if rerr != nil {
			break
		}
	}
	return offsets, nil
}

// scanBuffer is the degenerate-KMP fallback for needles of length 1-2:
// a direct byte-equality scan over the same overlap-buffer windowing
// used for the general case.
func scanBuffer(buf []byte, n int, needle []byte, windowStart int, dst []int) []int {
	nl := len(needle)
	for i := 0; i+nl <= n; i++ {
		if bytes.Equal(buf[i:i+nl], needle) {
			dst = append(dst, windowStart+i)
		}
	}
	return dst
}
