// Package kmp implements Knuth-Morris-Pratt substring search over a
// boundary-preserving sliding buffer, for scanning files in fixed-size
// chunks without missing matches that straddle a chunk boundary.
package kmp

// Matcher holds the KMP failure function for a fixed pattern so it can be
// reused across many chunks of the same search without rebuilding it.
type Matcher struct {
	pattern []byte
	failure []int
}

// New builds the failure function for pattern. len(pattern) must be >= 3;
// shorter patterns degenerate the overlap-buffer layout used by Scan and
// should be matched directly instead (see internal/search).
func New(pattern []byte) *Matcher {
	failure := make([]int, len(pattern))
	for k, i := 0, 1; i < len(pattern); i++ {
		for k > 0 && pattern[i] != pattern[k] {
			k = failure[k-1]
		}
		if pattern[i] == pattern[k] {
			k++
		}
		failure[i] = k
	}
	return &Matcher{pattern: pattern, failure: failure}
}

// Scan runs KMP over buf[:n] and appends the absolute start offset of
// every match to dst. windowStart is the absolute stream position of
// buf[0], so a match found anywhere in the window — including one that
// began in the overlap copied from the previous chunk — is reported at
// its true offset in the underlying stream. Matching allows overlapping
// occurrences: on a full match the failure function shifts the state
// instead of resetting to zero, so the scan continues from the correct
// partial match rather than skipping past it.
func (m *Matcher) Scan(buf []byte, n int, windowStart int, dst []int) []int {
	pattern, failure := m.pattern, m.failure
	plen := len(pattern)

	k := 0
	for i := 0; i < n; i++ {
		for k > 0 && buf[i] != pattern[k] {
			k = failure[k-1]
		}
		if buf[i] == pattern[k] {
			k++
		}
		if k == plen {
			dst = append(dst, windowStart+i-plen+1)
			k = failure[k-1]
		}
	}
	return dst
}
