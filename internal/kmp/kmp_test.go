package kmp

import (
	"reflect"
	"testing"
)

func TestScanFindsAllOccurrences(t *testing.T) {
	m := New([]byte("abc"))
	got := m.Scan([]byte("abcabcabc"), 9, 0, nil)
	want := []int{0, 3, 6}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scan = %v, want %v", got, want)
	}
}

func TestScanOverlappingMatches(t *testing.T) {
	m := New([]byte("aaa"))
	got := m.Scan([]byte("aaaaa"), 5, 0, nil)
	want := []int{0, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scan = %v, want %v", got, want)
	}
}

func TestScanNoMatch(t *testing.T) {
	m := New([]byte("xyz"))
	got := m.Scan([]byte("abcabcabc"), 9, 0, nil)
	if len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

// TestScanAcrossChunkBoundary verifies that splitting a scan into two
// windows, with the last len(pattern)-1 bytes of the first window copied
// into the front of the second (the overlap region described by the
// search dispatcher), finds a match straddling the split exactly once
// and at the correct absolute offset.
func TestScanAcrossChunkBoundary(t *testing.T) {
	pattern := []byte("needle")
	text := "xxxxxneedlexxxxx" // match starts at offset 5
	splitAt := 7               // splits the match across the two windows

	m := New(pattern)
	overlap := len(pattern) - 1

	firstWindow := []byte(text[:splitAt])
	var got []int
	got = m.Scan(firstWindow, len(firstWindow), 0, got)

	secondStart := splitAt - overlap
	secondWindow := []byte(text[secondStart:])
	got = m.Scan(secondWindow, len(secondWindow), secondStart, got)

	want := []int{5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("boundary scan = %v, want %v", got, want)
	}
}
