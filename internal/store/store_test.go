package store

import (
	"testing"

	"github.com/evanhughes/trigrep/internal/trigram"
)

func TestPutAndSnapshot(t *testing.T) {
	s := New("/root")
	s.Put("/root/a.txt", trigram.Of([]byte("abc")))

	if !s.Has("/root/a.txt") {
		t.Fatal("expected a.txt to be indexed")
	}
	snap := s.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(snap))
	}
}

func TestRemove(t *testing.T) {
	s := New("/root")
	s.Put("/root/a.txt", trigram.Of([]byte("abc")))
	s.Remove("/root/a.txt")
	if s.Has("/root/a.txt") {
		t.Fatal("expected a.txt to be removed")
	}
}

func TestResetClearsEntries(t *testing.T) {
	s := New("/root")
	s.Put("/root/a.txt", trigram.Of([]byte("abc")))
	s.Reset()
	if s.Len() != 0 {
		t.Errorf("expected empty store after reset, got %d entries", s.Len())
	}
}

func TestSetRootRebindsAndClears(t *testing.T) {
	s := New("/root")
	s.Put("/root/a.txt", trigram.Of([]byte("abc")))

	s.SetRoot("/other")
	if s.Len() != 0 {
		t.Errorf("expected empty store after SetRoot, got %d entries", s.Len())
	}
	if s.Root() != "/other" {
		t.Errorf("Root() = %q, want %q", s.Root(), "/other")
	}
}

func TestRelPath(t *testing.T) {
	s := New("/root")
	if got := s.RelPath("/root/sub/file.go"); got != "sub/file.go" {
		t.Errorf("RelPath = %q, want %q", got, "sub/file.go")
	}
}
