// Package jit realizes spec §4.5's "opaque optimize-then-install" step in
// idiomatic Go: it writes the emitted Go source for a pattern to a scratch
// module, shells out to `go build -buildmode=plugin` (the teacher's
// os/exec usage pattern, generalized from invoking `go run`/`go build` on
// generated files to invoking the plugin toolchain), and loads the result
// with plugin.Open/Lookup. The Go runtime cannot unload a loaded plugin;
// Remove only deletes the on-disk artifact, so a process that compiles an
// unbounded number of distinct patterns will accumulate address space for
// the lifetime of the process. This is a known, documented limitation
// rather than a bug: it mirrors spec §9's own backtracking caveat.
package jit

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"plugin"
	"runtime"
	"sync/atomic"

	"github.com/dave/jennifer/jen"

	"github.com/regjit/regjit/internal/ir"
	"github.com/regjit/regjit/internal/log"
)

var nextID int64

// modulePath and moduleRoot locate this module on disk at runtime so a
// scratch plugin module can require+replace it and import rtsupport.
// Generated pattern code only ever imports rtsupport, never anything
// under internal/, so the Go compiler's internal-import visibility rule
// never comes into play here.
const modulePath = "github.com/regjit/regjit"

func moduleRoot() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("jit: could not determine module root")
	}
	// this file lives at <root>/internal/jit/jit.go
	return filepath.Dir(filepath.Dir(filepath.Dir(file))), nil
}

// Artifact is an installed, callable compiled pattern.
type Artifact struct {
	MatchBytes func([]byte) bool
	Match      func(string) bool

	dir string
}

// Remove deletes the on-disk plugin artifact. It does not and cannot
// unload the plugin's code from the process; see the package doc.
func (a *Artifact) Remove() error {
	if a.dir == "" {
		return nil
	}
	return os.RemoveAll(a.dir)
}

// Host compiles emitted pattern source (a *jen.File) into loaded plugins.
type Host struct {
	logger *log.Logger
}

// NewHost returns a Host. A nil logger disables diagnostic output.
func NewHost(logger *log.Logger) *Host {
	if logger == nil {
		logger = log.New(false)
	}
	return &Host{logger: logger}
}

// Install emits f as Go source, compiles it as a plugin, opens it, and
// resolves MatchBytes/Match. The caller owns the returned Artifact and
// must call Remove when it is no longer needed.
func (h *Host) Install(f *jen.File) (*Artifact, error) {
	id := atomic.AddInt64(&nextID, 1)
	dir, err := os.MkdirTemp("", fmt.Sprintf("regjit-%d-", id))
	if err != nil {
		return nil, fmt.Errorf("jit: create scratch dir: %w", err)
	}

	srcPath := filepath.Join(dir, "pattern.go")
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("jit: render source: %w", err)
	}
	if err := os.WriteFile(srcPath, buf.Bytes(), 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("jit: write source: %w", err)
	}

	root, err := moduleRoot()
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	goMod := fmt.Sprintf(
		"module regjitplugin%d\n\ngo 1.21\n\nrequire %s v0.0.0\n\nreplace %s => %s\n",
		id, modulePath, modulePath, root,
	)
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte(goMod), 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("jit: write go.mod: %w", err)
	}

	soPath := filepath.Join(dir, "pattern.so")
	h.logger.Log("building plugin for %s", soPath)
	cmd := exec.Command("go", "build", "-buildmode=plugin", "-o", soPath, srcPath)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("jit: go build: %w: %s", err, stderr.String())
	}

	p, err := plugin.Open(soPath)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("jit: plugin.Open: %w", err)
	}

	matchBytesSym, err := p.Lookup("MatchBytes")
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("jit: lookup MatchBytes: %w", err)
	}
	matchSym, err := p.Lookup("Match")
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("jit: lookup Match: %w", err)
	}

	matchBytesFn, ok := matchBytesSym.(func([]byte) bool)
	if !ok {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("jit: MatchBytes has unexpected type %T", matchBytesSym)
	}
	matchFn, ok := matchSym.(func(string) bool)
	if !ok {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("jit: Match has unexpected type %T", matchSym)
	}

	h.logger.Log("installed plugin %s", soPath)
	return &Artifact{MatchBytes: matchBytesFn, Match: matchFn, dir: dir}, nil
}

// ModuleName returns the name of an ir.Module. Install does not use it:
// plugin packages must be compiled as package main, and the generated
// file's header comment does not include the module name.
func ModuleName(mod *ir.Module) string {
	return mod.Name
}
