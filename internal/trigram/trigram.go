// Package trigram builds trigram fingerprints for bytes and files.
//
// A fingerprint is a one-sided filter: a file can contain a needle only if,
// for every trigram of the needle, the file's count is at least the
// needle's count. The converse is not guaranteed, so callers must still
// scan candidate files with an exact matcher (see internal/kmp).
package trigram

import "bytes"

// Trigram is an ordered triple of bytes, a 3-byte sliding window.
type Trigram [3]byte

// Fingerprint is a trigram -> occurrence count multiset for one byte
// stream.
type Fingerprint map[Trigram]int

// seed primes the sliding window so the first real byte forms the first
// trigram, matching the original scanner's "\\\\" seed. The seed
// contributes synthetic trigrams to the fingerprint; this is safe only
// because the fingerprint is a subset filter, never a ground truth.
var seed = Trigram{'\\', '\\', '\\'}

// Window is a sliding 3-byte accumulator. Zero value is not seeded; use
// NewWindow.
type Window struct {
	cur Trigram
}

// NewWindow returns a window primed with the standard seed bytes.
func NewWindow() Window {
	return Window{cur: seed}
}

// Push shifts the window left by one and appends b, returning the
// resulting trigram.
func (w *Window) Push(b byte) Trigram {
	w.cur[0], w.cur[1], w.cur[2] = w.cur[1], w.cur[2], b
	return w.cur
}

// Of returns the fingerprint of an in-memory byte slice, built from a
// freshly seeded window exactly like the streaming fingerprinter.
func Of(data []byte) Fingerprint {
	fp := make(Fingerprint)
	w := NewWindow()
	for _, b := range data {
		fp[w.Push(b)]++
	}
	return fp
}

// OfNeedle returns the fingerprint of a search needle, unseeded: the
// first trigram is data[0:3] directly, then the window slides one byte
// at a time. Unlike Of, this never mixes in the seed's sentinel bytes.
// A file only ever produces the seed-prefixed trigrams Of(data) would
// add when a match starts at absolute offset 0, so fingerprinting a
// needle through the file-oriented seeded window makes Subset reject
// files that contain the needle anywhere else — silently under-admitting
// rather than merely over-admitting. data must have length >= 3; shorter
// needles bypass the subset filter entirely (see
// Fingerprint.ContainsByteSubstring).
func OfNeedle(data []byte) Fingerprint {
	fp := make(Fingerprint)
	if len(data) < 3 {
		return fp
	}
	var cur Trigram
	copy(cur[:], data[:3])
	fp[cur]++
	for i := 3; i < len(data); i++ {
		cur[0], cur[1], cur[2] = cur[1], cur[2], data[i]
		fp[cur]++
	}
	return fp
}

// Subset reports whether every trigram in needle occurs in f with at
// least the needle's count. Trigrams absent from f have an implicit
// count of zero.
func (f Fingerprint) Subset(needle Fingerprint) bool {
	for t, need := range needle {
		if f[t] < need {
			return false
		}
	}
	return true
}

// ContainsByteSubstring reports whether any trigram key in f contains n
// as a byte substring. Used for needles shorter than 3 bytes, where the
// subset filter does not apply: any occurrence of n in the file produces
// a trigram containing n, so this admits all true positives.
func (f Fingerprint) ContainsByteSubstring(n []byte) bool {
	for t := range f {
		if bytes.Contains(t[:], n) {
			return true
		}
	}
	return false
}
