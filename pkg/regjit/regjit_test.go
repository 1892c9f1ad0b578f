package regjit

import (
	"errors"
	"os/exec"
	"testing"
)

func requireGoToolchain(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not available")
	}
}

func TestAcquireMatchRelease(t *testing.T) {
	requireGoToolchain(t)

	h, err := Acquire(`a[0-9]+b`)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer h.Release()

	if !h.Match("a123b") {
		t.Errorf("expected a123b to match")
	}
	if h.Match("axyzb") {
		t.Errorf("expected axyzb not to match")
	}
}

func TestMatchConvenience(t *testing.T) {
	requireGoToolchain(t)

	ok, err := Match("abc", "xxabcxx")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !ok {
		t.Errorf("expected match")
	}
}

func TestSearchIsAliasOfMatch(t *testing.T) {
	requireGoToolchain(t)

	ok, err := Search("abc", "xxabcxx")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !ok {
		t.Errorf("expected match")
	}
}

func TestAcquireSyntaxErrorWraps(t *testing.T) {
	requireGoToolchain(t)

	_, err := Acquire("a{2,1}")
	if err == nil {
		t.Fatalf("expected an error for an invalid quantifier range")
	}
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompileError, got %T", err)
	}
}

func TestMustAcquirePanics(t *testing.T) {
	requireGoToolchain(t)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected MustAcquire to panic")
		}
	}()
	MustAcquire("a{2,1}")
}

func TestReleaseIsIdempotent(t *testing.T) {
	requireGoToolchain(t)

	h, err := Acquire("literal")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	h.Release()
	h.Release()
}

func TestSetVerboseTogglesSharedLogger(t *testing.T) {
	defer SetVerbose(false)

	SetVerbose(true)
	if !sharedLogger.Enabled() {
		t.Fatalf("expected SetVerbose(true) to enable the shared logger")
	}
	SetVerbose(false)
	if sharedLogger.Enabled() {
		t.Fatalf("expected SetVerbose(false) to disable the shared logger")
	}
}

func TestHandleMatchUsesPinnedArtifact(t *testing.T) {
	requireGoToolchain(t)

	h, err := Acquire(`a[0-9]+b`)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer h.Release()

	if h.artifact == nil {
		t.Fatalf("expected Acquire to pin the compiled artifact on the handle")
	}
	if !h.Match("a123b") || !h.Search("a123b") {
		t.Errorf("expected a123b to match via the pinned artifact")
	}
}

// TestLinearScanMatchesAtEndOfInput is the end-to-end regression test for
// the linear-scan plan's off-by-one: a bare $ (or a*$) has no anchored-at-
// start entry, no literal prefix, and no required chars, so it takes the
// linear-scan plan, and must still succeed at offset == len(input).
func TestLinearScanMatchesAtEndOfInput(t *testing.T) {
	requireGoToolchain(t)

	h, err := Acquire(`$`)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer h.Release()
	if !h.Match("abc") {
		t.Errorf(`expected "$" to match at end of input`)
	}

	h2, err := Acquire(`a*$`)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer h2.Release()
	if !h2.Match("bbb") {
		t.Errorf(`expected "a*$" to match "bbb" (zero a's at end of input)`)
	}
}

// TestMemchrRangeTriesOffsetsBeforeTheHit is the end-to-end regression
// test for the memchr-range plan: a required byte found ahead of the
// current offset only opens an attempt window, it isn't the only offset
// tried. (a|b)c must match "ac" starting at offset 0, not just at the
// offset where the required 'c' sits.
func TestMemchrRangeTriesOffsetsBeforeTheHit(t *testing.T) {
	requireGoToolchain(t)

	h, err := Acquire(`(a|b)c`)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer h.Release()
	if !h.Match("ac") {
		t.Errorf(`expected "(a|b)c" to match "ac"`)
	}
	if !h.Match("bc") {
		t.Errorf(`expected "(a|b)c" to match "bc"`)
	}
	if h.Match("xc") {
		t.Errorf(`expected "(a|b)c" not to match "xc"`)
	}
}

// TestMemchrRangeWordClassMatchesBenchmarkCase mirrors
// benchmarks/regexp_compare_test.go's wordClass case directly, the
// pattern that first surfaced the memchr-range bug: \w+ cannot start a
// match sitting exactly on the required '@'/'.' byte.
func TestMemchrRangeWordClassMatchesBenchmarkCase(t *testing.T) {
	requireGoToolchain(t)

	h, err := Acquire(`\w+@\w+\.\w+`)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer h.Release()
	if !h.Search("contact me@example.com please") {
		t.Errorf(`expected \w+@\w+\.\w+ to match "contact me@example.com please"`)
	}
}

func TestCacheSizeAndSetMaxSize(t *testing.T) {
	requireGoToolchain(t)

	SetCacheMaxSize(64)
	before := CacheSize()

	h, err := Acquire("zzz-unique-pattern")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer h.Release()

	if CacheSize() != before+1 {
		t.Errorf("CacheSize() = %d, want %d", CacheSize(), before+1)
	}
}
