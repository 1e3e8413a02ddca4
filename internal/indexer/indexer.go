// Package indexer walks a directory tree, fingerprinting each regular
// file and inserting text files into the index store.
package indexer

import (
	"context"
	"fmt"
	"os"

	"github.com/evanhughes/trigrep/internal/events"
	"github.com/evanhughes/trigrep/internal/store"
	"github.com/evanhughes/trigrep/internal/trigram"
)

// Index walks root, fingerprinting every regular file it finds and
// inserting text files into st. Progress is reported as the percentage
// of visited files over the top-level entry count of root — an
// approximation (re-evaluating recursive totals up front would require
// a full extra traversal) that is only required to be monotonically
// non-decreasing and to reach 100 at completion.
//
// Per-file open failures are reported through sink as ExceptionOccurred
// and do not stop the walk. The walk itself stops at the next file
// boundary when ctx is cancelled; the caller is responsible for
// returning a fresh, empty store if it wants a clean slate afterward.
// Index always emits IndexingFinished before returning, cancelled or
// not; the returned error is ctx.Err() if the walk was cut short by
// cancellation, nil otherwise, so a caller can tell a cancelled run
// from a completed one without re-deriving it from ctx itself.
func Index(ctx context.Context, root string, st *store.Store, sink events.Sink) error {
	sink.Emit(events.Info("Indexing is started..."))

	denominator := topLevelEntryCount(root)
	sink.Emit(events.Info("Collecting information about files..."))

	visited := 0
	textFiles := 0
	lastPercent := -1

	reportProgress := func() {
		percent := 0
		if denominator > 0 {
			percent = (visited * 100) / denominator
			if percent > 100 {
				percent = 100
			}
		}
		if percent > lastPercent {
			lastPercent = percent
			sink.Emit(events.Progress(percent))
		}
	}

	err := walkTree(root, func(path string) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fp, ok, err := trigram.FileFingerprint(ctx, path)
		switch {
		case err == context.Canceled || err == context.DeadlineExceeded:
			return err
		case err != nil:
			sink.Emit(events.ExceptionOccurred(fmt.Sprintf("cannot open %s: %v", st.RelPath(path), err)))
		case ok:
			st.Put(path, fp)
			textFiles++
			sink.Emit(events.NewTextFile(st.RelPath(path)))
		}

		visited++
		reportProgress()
		return nil
	})

	cancelled := err == context.Canceled || err == context.DeadlineExceeded
	if err != nil && !cancelled {
		sink.Emit(events.ExceptionOccurred(fmt.Sprintf("walking %s: %v", root, err)))
	}

	if lastPercent < 100 {
		sink.Emit(events.Progress(100))
	}
	sink.Emit(events.Info(fmt.Sprintf("Done! Total number of text files: %d", textFiles)))
	sink.Emit(events.IndexingFinished())

	if cancelled {
		return err
	}
	return nil
}

// topLevelEntryCount returns the number of directory entries directly
// under root, used only as the progress denominator.
func topLevelEntryCount(root string) int {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0
	}
	return len(entries)
}
