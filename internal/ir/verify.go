package ir

import (
	"fmt"
	"os"
	"path/filepath"
)

// DumpEnabled gates the debug-only IR dump to a temporary path (spec §6).
// It never affects semantics and defaults to off.
var DumpEnabled = false

// VerificationError is spec §7's "module verification failed".
type VerificationError struct {
	Module  string
	Reason  string
	DumpTo  string
}

func (e *VerificationError) Error() string {
	if e.DumpTo != "" {
		return fmt.Sprintf("module verification failed for %q: %s (dumped to %s)", e.Module, e.Reason, e.DumpTo)
	}
	return fmt.Sprintf("module verification failed for %q: %s", e.Module, e.Reason)
}

// Verify checks the structural invariants of a Module before it is handed
// to the JIT host: every block has exactly one terminator, every jump and
// branch target resolves to a block that exists, the module has an entry
// block, and ReturnSuccess/ReturnFail are present and are bare returns.
// On failure it dumps the module as text to a temp file when DumpEnabled,
// matching spec §4.4.5's "do not invoke the optimizer on invalid IR".
func Verify(m *Module) error {
	if err := verify(m); err != nil {
		ve := err.(*VerificationError)
		if DumpEnabled {
			if path, dumpErr := dump(m); dumpErr == nil {
				ve.DumpTo = path
			}
		}
		return ve
	}
	return nil
}

func verify(m *Module) error {
	fail := func(format string, args ...interface{}) error {
		return &VerificationError{Module: m.Name, Reason: fmt.Sprintf(format, args...)}
	}

	if m.Entry == "" {
		return fail("module has no entry block set")
	}
	if _, ok := m.ByLabel[m.Entry]; !ok {
		return fail("entry block %q does not exist", m.Entry)
	}

	success, ok := m.ByLabel[ReturnSuccess]
	if !ok {
		return fail("missing %s block", ReturnSuccess)
	}
	if success.Term == nil || success.Term.Kind != TermReturn || !success.Term.ReturnValue {
		return fail("%s must be a bare return true", ReturnSuccess)
	}

	fails, ok := m.ByLabel[ReturnFail]
	if !ok {
		return fail("missing %s block", ReturnFail)
	}
	if fails.Term == nil || fails.Term.Kind != TermReturn || fails.Term.ReturnValue {
		return fail("%s must be a bare return false", ReturnFail)
	}

	for _, blk := range m.Blocks {
		if blk.Term == nil {
			return fail("block %q has no terminator", blk.Label)
		}
		switch blk.Term.Kind {
		case TermReturn:
			// nothing further to check
		case TermJump:
			if _, ok := m.ByLabel[blk.Term.Target]; !ok {
				return fail("block %q jumps to undefined label %q", blk.Label, blk.Term.Target)
			}
		case TermBranch:
			if _, ok := m.ByLabel[blk.Term.TrueTarget]; !ok {
				return fail("block %q branches to undefined true-label %q", blk.Label, blk.Term.TrueTarget)
			}
			if _, ok := m.ByLabel[blk.Term.FalseTarget]; !ok {
				return fail("block %q branches to undefined false-label %q", blk.Label, blk.Term.FalseTarget)
			}
		default:
			return fail("block %q has an unrecognized terminator kind %d", blk.Label, blk.Term.Kind)
		}
	}

	return nil
}

func dump(m *Module) (string, error) {
	f, err := os.CreateTemp("", "regjit-ir-*.txt")
	if err != nil {
		return "", err
	}
	defer f.Close()

	fmt.Fprintf(f, "module %s (entry=%s)\n", m.Name, m.Entry)
	for _, blk := range m.Blocks {
		fmt.Fprintf(f, "%s:\n", blk.Label)
		for _, in := range blk.Instr {
			fmt.Fprintf(f, "  instr kind=%d\n", in.Kind)
		}
		if blk.Term != nil {
			fmt.Fprintf(f, "  term kind=%d\n", blk.Term.Kind)
		} else {
			fmt.Fprintf(f, "  term: <missing>\n")
		}
	}
	return filepath.Clean(f.Name()), nil
}
