// Package cache implements spec §4.6's compile cache: a concurrency-safe,
// LRU-evicting, reference-counted store of compiled artifacts, with
// per-pattern in-flight compile coordination so concurrent Acquire calls
// for the same pattern share a single compile rather than racing.
//
// There is no LRU container or singleflight library anywhere in the
// retrieval pack, so this package uses container/list for the LRU (the
// idiomatic stdlib choice) and a bespoke channel-based promise/future for
// in-flight coordination, matching the teacher's preference for small,
// explicit concurrency primitives over pulling in a framework.
package cache

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/regjit/regjit/internal/codegen"
	"github.com/regjit/regjit/internal/emit"
	"github.com/regjit/regjit/internal/ir"
	"github.com/regjit/regjit/internal/jit"
	"github.com/regjit/regjit/internal/log"
	"github.com/regjit/regjit/internal/parser"
)

// DefaultMaxSize is the cache's capacity when Config.MaxSize is zero.
const DefaultMaxSize = 64

// Config configures a Cache, matching the teacher's plain-struct
// configuration style (compiler.Config).
type Config struct {
	MaxSize int
	Logger  *log.Logger
}

// entry is a compiled artifact plus its cache bookkeeping: spec §3's
// {address, resource_handle, function_name, ref_count, lru_position}.
type entry struct {
	pattern  string
	artifact *jit.Artifact
	refCount int
	elem     *list.Element
}

// inflight is spec §3's in-flight compile: a single producer fulfills it,
// any number of consumers await it via the done channel.
type inflight struct {
	done chan struct{}
	err  error
}

// Cache is a pattern-keyed store of JIT-compiled match functions.
type Cache struct {
	mu       sync.Mutex
	maxSize  int
	entries  map[string]*entry
	inflight map[string]*inflight
	lru      *list.List // most-recently-acquired at the front
	host     *jit.Host
	logger   *log.Logger
}

// New creates a Cache. A zero Config.MaxSize uses DefaultMaxSize.
func New(cfg Config) *Cache {
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(false)
	}
	return &Cache{
		maxSize:  maxSize,
		entries:  make(map[string]*entry),
		inflight: make(map[string]*inflight),
		lru:      list.New(),
		host:     jit.NewHost(logger),
		logger:   logger,
	}
}

// Acquire returns the compiled artifact for pattern, compiling it if
// necessary, and increments its reference count. The caller must call
// Release exactly once when done with the returned artifact.
func (c *Cache) Acquire(pattern string) (*jit.Artifact, error) {
	c.mu.Lock()
	if e, ok := c.entries[pattern]; ok {
		e.refCount++
		c.lru.MoveToFront(e.elem)
		c.mu.Unlock()
		return e.artifact, nil
	}

	if inf, ok := c.inflight[pattern]; ok {
		c.mu.Unlock()
		<-inf.done
		if inf.err != nil {
			return nil, &CompileError{Kind: ErrConcurrentCompile, Pattern: pattern, err: inf.err}
		}
		return c.Acquire(pattern)
	}

	inf := &inflight{done: make(chan struct{})}
	c.inflight[pattern] = inf
	c.mu.Unlock()

	artifact, err := c.compile(pattern)

	c.mu.Lock()
	delete(c.inflight, pattern)
	if err != nil {
		inf.err = err
		close(inf.done)
		c.mu.Unlock()
		return nil, err
	}

	e := &entry{pattern: pattern, artifact: artifact, refCount: 1}
	e.elem = c.lru.PushFront(e)
	c.entries[pattern] = e
	close(inf.done)
	c.mu.Unlock()
	return artifact, nil
}

// MustAcquire is Acquire for callers that treat a compile failure as
// programmer error; it panics instead of returning an error.
func (c *Cache) MustAcquire(pattern string) *jit.Artifact {
	artifact, err := c.Acquire(pattern)
	if err != nil {
		panic(fmt.Sprintf("cache: MustAcquire(%q): %v", pattern, err))
	}
	return artifact
}

// Release decrements pattern's reference count. If it reaches zero and
// the cache is over capacity, Release triggers eviction.
func (c *Cache) Release(pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[pattern]
	if !ok || e.refCount == 0 {
		return
	}
	e.refCount--
	c.evictLocked()
}

// Match reports whether input matches pattern, acquiring and releasing
// the compiled artifact around a single call.
func (c *Cache) Match(pattern, input string) (bool, error) {
	artifact, err := c.Acquire(pattern)
	if err != nil {
		return false, err
	}
	defer c.Release(pattern)
	return artifact.Match(input), nil
}

// Search is Match under a different name for front-API symmetry with
// spec §4.7; the distinction between match-at-offset-0 and scanning is
// encoded in the compiled function's search plan, not here.
func (c *Cache) Search(pattern, input string) (bool, error) {
	return c.Match(pattern, input)
}

// SetMaxSize updates the cache's capacity and triggers eviction.
func (c *Cache) SetMaxSize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n <= 0 {
		n = DefaultMaxSize
	}
	c.maxSize = n
	c.evictLocked()
}

// Size returns the number of entries currently cached, pinned or not.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked walks the LRU tail, skipping pinned (ref_count > 0) entries
// without removing them, stopping as soon as the cache is within capacity
// or the tail entry is pinned. Must be called with c.mu held.
func (c *Cache) evictLocked() {
	for len(c.entries) > c.maxSize {
		elem := c.lru.Back()
		if elem == nil {
			return
		}
		e := elem.Value.(*entry)
		if e.refCount != 0 {
			return
		}
		c.lru.Remove(elem)
		delete(c.entries, e.pattern)
		if err := e.artifact.Remove(); err != nil {
			c.logger.Log("evict %q: remove artifact: %v", e.pattern, err)
		}
	}
}

// compile parses, lowers, emits, and JIT-installs pattern. It is called
// with no lock held since it invokes the external go build toolchain.
func (c *Cache) compile(pattern string) (*jit.Artifact, error) {
	c.logger.Section(pattern)

	tree, err := parser.Parse(pattern)
	if err != nil {
		return nil, &CompileError{Kind: ErrSyntax, Pattern: pattern, err: err}
	}

	mod, err := codegen.Generate(tree)
	if err != nil {
		return nil, &CompileError{Kind: ErrCodegen, Pattern: pattern, err: err}
	}

	if err := ir.Verify(mod); err != nil {
		return nil, &CompileError{Kind: ErrVerify, Pattern: pattern, err: err}
	}

	f, err := emit.Generate(mod, "main")
	if err != nil {
		return nil, &CompileError{Kind: ErrEmit, Pattern: pattern, err: err}
	}

	c.logger.Log("installing compiled plugin for %q", pattern)
	artifact, err := c.host.Install(f)
	if err != nil {
		return nil, &CompileError{Kind: ErrInstall, Pattern: pattern, err: err}
	}
	return artifact, nil
}
