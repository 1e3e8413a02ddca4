package trigram

import "testing"

func TestWindowSeedsFirstTrigram(t *testing.T) {
	w := NewWindow()
	got := w.Push('a')
	want := Trigram{'\\', '\\', 'a'}
	if got != want {
		t.Errorf("first push = %v, want %v", got, want)
	}
}

func TestOfCountsOverlappingTrigrams(t *testing.T) {
	fp := Of([]byte("aaaa"))
	count := fp[Trigram{'a', 'a', 'a'}]
	if count != 2 {
		t.Errorf("count of 'aaa' in \"aaaa\" = %d, want 2", count)
	}
}

func TestSubsetAdmitsTrueCandidate(t *testing.T) {
	file := Of([]byte("abcabcabc"))
	needle := Of([]byte("abc"))
	if !file.Subset(needle) {
		t.Error("expected file fingerprint to admit needle")
	}
}

func TestSubsetRejectsMissingTrigram(t *testing.T) {
	file := Of([]byte("xyz"))
	needle := Of([]byte("abc"))
	if file.Subset(needle) {
		t.Error("expected file fingerprint to reject needle with absent trigram")
	}
}

func TestSubsetRejectsUndercount(t *testing.T) {
	file := Of([]byte("abc"))  // one occurrence of trigram "abc"
	needle := Of([]byte("abcabc")) // needs two
	if file.Subset(needle) {
		t.Error("expected rejection when file has fewer occurrences than needle")
	}
}

func TestOfNeedleIsUnseeded(t *testing.T) {
	fp := OfNeedle([]byte("zzz"))
	want := Fingerprint{Trigram{'z', 'z', 'z'}: 1}
	if len(fp) != len(want) || fp[Trigram{'z', 'z', 'z'}] != 1 {
		t.Errorf("OfNeedle(\"zzz\") = %v, want %v", fp, want)
	}
	if _, seeded := fp[Trigram{'\\', '\\', 'z'}]; seeded {
		t.Error("OfNeedle must not contain the seed-prefixed trigram")
	}
}

func TestOfNeedleMatchesFileAwayFromOffsetZero(t *testing.T) {
	file := Of([]byte("has the zzz trigram in it"))
	needle := OfNeedle([]byte("zzz"))
	if !file.Subset(needle) {
		t.Error("expected unseeded needle fingerprint to be admitted by a file whose match is not at offset 0")
	}
}

func TestContainsByteSubstringForShortNeedle(t *testing.T) {
	fp := Of([]byte("x"))
	if !fp.ContainsByteSubstring([]byte("x")) {
		t.Error("expected trigram key containing seeded byte and 'x' to match")
	}
	if fp.ContainsByteSubstring([]byte("q")) {
		t.Error("did not expect 'q' to be found")
	}
}
