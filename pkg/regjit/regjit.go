// Package regjit is the front API for the regjit engine (spec §4.7): a
// package-level compile cache of JIT-compiled byte-string patterns,
// exposing Acquire/Release/Match/Search plus cache administration.
//
// A typical caller acquires a pattern once, matches many inputs against
// it, and releases it when done:
//
//	h, err := regjit.Acquire(`a[0-9]+b`)
//	if err != nil {
//	    var ce *regjit.CompileError
//	    if errors.As(err, &ce) {
//	        log.Fatalf("pattern rejected: %s", ce.Kind)
//	    }
//	}
//	defer h.Release()
//	h.Match("a123b")
package regjit

import (
	"github.com/regjit/regjit/internal/cache"
	"github.com/regjit/regjit/internal/jit"
	"github.com/regjit/regjit/internal/log"
)

// CompileError reports why a pattern could not be compiled; see spec §7's
// error-kind taxonomy.
type CompileError = cache.CompileError

// CompileErrorKind classifies a CompileError.
type CompileErrorKind = cache.CompileErrorKind

// The CompileErrorKind values, re-exported from internal/cache so callers
// never need to import an internal package to inspect a CompileError.
const (
	ErrSyntax            = cache.ErrSyntax
	ErrCodegen           = cache.ErrCodegen
	ErrVerify            = cache.ErrVerify
	ErrEmit              = cache.ErrEmit
	ErrInstall           = cache.ErrInstall
	ErrConcurrentCompile = cache.ErrConcurrentCompile
)

var sharedLogger = log.New(false)

var defaultCache = cache.New(cache.Config{Logger: sharedLogger})

// SetVerbose toggles diagnostic logging for the default cache: each
// pattern's compile, the plugin build and installation, and any failure
// to remove an evicted artifact are narrated to stderr when enabled. It affects every pattern acquired afterward as well as any
// already cached; there is no way to scope it to a single pattern.
func SetVerbose(enabled bool) {
	sharedLogger.SetEnabled(enabled)
}

// Handle is an acquired, ref-counted handle on a compiled pattern. It must
// be released exactly once.
type Handle struct {
	pattern  string
	artifact *jit.Artifact
	released bool
}

// Acquire compiles pattern if necessary and returns a Handle holding a
// reference to it. The caller must call Release when done.
func Acquire(pattern string) (*Handle, error) {
	artifact, err := defaultCache.Acquire(pattern)
	if err != nil {
		return nil, err
	}
	return &Handle{pattern: pattern, artifact: artifact}, nil
}

// MustAcquire is Acquire for callers that treat a bad pattern as a
// programmer error; it panics instead of returning one.
func MustAcquire(pattern string) *Handle {
	h, err := Acquire(pattern)
	if err != nil {
		panic(err)
	}
	return h
}

// Release decrements the handle's pattern's reference count. Calling
// Release more than once on the same Handle has no further effect beyond
// the first call.
func (h *Handle) Release() {
	if h == nil || h.released {
		return
	}
	defaultCache.Release(h.pattern)
	h.released = true
}

// Match reports whether input matches the handle's pattern. It calls the
// pinned artifact directly, with no further cache lookup, acquire, or
// release.
func (h *Handle) Match(input string) bool {
	return h.artifact.Match(input)
}

// Search is Match under spec §4.7's alternate name; the core engine makes
// no distinction here, the compiled function's search plan (spec §4.4.1)
// already encodes whether the pattern is anchored or must scan. Like
// Match, it calls the pinned artifact directly.
func (h *Handle) Search(input string) bool {
	return h.artifact.Match(input)
}

// Match is a convenience that acquires pattern, matches input once, and
// releases it. For repeated matching of the same pattern, prefer Acquire
// plus Handle.Match to avoid a full compile-cache round trip per call.
func Match(pattern, input string) (bool, error) {
	return defaultCache.Match(pattern, input)
}

// Search is Match under spec §4.7's alternate name.
func Search(pattern, input string) (bool, error) {
	return defaultCache.Search(pattern, input)
}

// SetCacheMaxSize updates the default cache's capacity, triggering
// eviction of unpinned entries if the new size is smaller.
func SetCacheMaxSize(n int) {
	defaultCache.SetMaxSize(n)
}

// CacheSize returns the number of patterns currently held in the default
// cache, pinned or not.
func CacheSize() int {
	return defaultCache.Size()
}
