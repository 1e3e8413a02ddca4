// Package store holds the in-memory index built by a scan: the mapping
// from absolute file path to trigram fingerprint, and the derived set of
// indexed (text) files. It is mutated by the directory indexer and the
// watcher bridge, and read by the search dispatcher.
package store

import (
	"path/filepath"
	"sync"

	"github.com/evanhughes/trigrep/internal/trigram"
)

// Store is safe for concurrent use. Readers (the search dispatcher)
// should call Snapshot once per search rather than holding the lock for
// the duration of the search, so watcher-driven replacements are not
// blocked behind a long-running scan.
type Store struct {
	mu      sync.RWMutex
	root    string
	entries map[string]trigram.Fingerprint
}

// New returns an empty store rooted at root. root is used only to derive
// display-relative paths; it changes only through SetRoot.
func New(root string) *Store {
	return &Store{
		root:    root,
		entries: make(map[string]trigram.Fingerprint),
	}
}

// Root returns the directory this store's paths are relative to.
func (s *Store) Root() string {
	return s.root
}

// Put inserts or replaces the fingerprint for an absolute path.
// Fingerprints are immutable once inserted; a watcher-triggered change
// replaces the whole entry rather than mutating it in place.
func (s *Store) Put(path string, fp trigram.Fingerprint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[path] = fp
}

// Remove deletes path from the index, if present.
func (s *Store) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, path)
}

// Has reports whether path is currently indexed.
func (s *Store) Has(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[path]
	return ok
}

// Snapshot returns a consistent point-in-time copy of the indexed paths
// and their fingerprints, for a search to iterate without holding the
// store's lock across potentially slow file scans.
func (s *Store) Snapshot() map[string]trigram.Fingerprint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]trigram.Fingerprint, len(s.entries))
	for path, fp := range s.entries {
		cp[path] = fp
	}
	return cp
}

// Len returns the number of indexed text files.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Reset clears every entry, preparing the store for a fresh scan of the
// same root.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]trigram.Fingerprint)
}

// SetRoot clears every entry and rebinds the store to a new root
// directory, for a scan of a different tree than the one last indexed.
func (s *Store) SetRoot(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
	s.entries = make(map[string]trigram.Fingerprint)
}

// RelPath returns path relative to the store's root, for display to
// consumers. Paths are stored internally as absolute.
func (s *Store) RelPath(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return path
	}
	return rel
}
