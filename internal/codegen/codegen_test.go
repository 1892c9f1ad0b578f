package codegen

import (
	"testing"

	"github.com/regjit/regjit/internal/ast"
	"github.com/regjit/regjit/internal/ir"
)

func mustGenerate(t *testing.T, tree *ast.Node) *ir.Module {
	t.Helper()
	mod, err := Generate(tree)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := ir.Verify(mod); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	return mod
}

func TestGenerateSingleAttemptPlan(t *testing.T) {
	// ^abc$
	tree := ast.NewConcat(
		ast.NewAnchor(ast.Start),
		ast.NewMatch('a'),
		ast.NewMatch('b'),
		ast.NewMatch('c'),
		ast.NewAnchor(ast.End),
	)
	mustGenerate(t, tree)
}

func TestGenerateBMHPlan(t *testing.T) {
	tree := ast.NewConcat(ast.NewMatch('a'), ast.NewMatch('b'), ast.NewMatch('c'))
	mod := mustGenerate(t, tree)
	entry := mod.Block(mod.Entry)
	foundBMH := false
	for _, in := range entry.Instr {
		if in.Kind == ir.InstrCallBMH {
			foundBMH = true
		}
	}
	if !foundBMH {
		t.Fatalf("expected entry block to call BMH, got %+v", entry)
	}
}

func TestGenerateMemchrPlan(t *testing.T) {
	// a[0-9]+
	tree := ast.NewConcat(
		ast.NewMatch('a'),
		ast.NewRepeat(ast.NewCharClass([]ast.Range{{Lo: '0', Hi: '9'}}, false), 1, -1, false),
	)
	mustGenerate(t, tree)
}

func TestGenerateMemchrRangePlan(t *testing.T) {
	// (a|b)c -- no concrete literal prefix byte, but required chars = {c}
	tree := ast.NewConcat(
		ast.NewAlternative(ast.NewMatch('a'), ast.NewMatch('b')),
		ast.NewMatch('c'),
	)
	mod := mustGenerate(t, tree)

	// Regression guard: the plan must be able to re-check whether the
	// live offset has run past the window opened by the last required-
	// byte hit, not just attempt the body at the hit itself.
	sawWindowCheck := false
	for _, blk := range mod.Blocks {
		if blk.Term != nil && blk.Term.Kind == ir.TermBranch && blk.Term.Cond.Kind == ir.CondOffsetExceedsSlot {
			sawWindowCheck = true
		}
	}
	if !sawWindowCheck {
		t.Fatalf("expected memchr-range plan to re-check the attempt window against the hit slot, got %+v", mod.Blocks)
	}
}

func TestGenerateLinearScanPlan(t *testing.T) {
	// [a-z]* -- optional, no required chars, no literal prefix
	tree := ast.NewRepeat(ast.NewCharClass([]ast.Range{{Lo: 'a', Hi: 'z'}}, false), 0, -1, false)
	mod := mustGenerate(t, tree)

	entry := mod.Block(mod.Entry)
	if entry.Term == nil || entry.Term.Kind != ir.TermBranch || entry.Term.Cond.Kind != ir.CondBoundsRemainInclusive {
		t.Fatalf("expected linear scan's outer loop to use an inclusive bounds check so offset == len(input) is attempted, got %+v", entry.Term)
	}
}

func TestGenerateQuantifierRange(t *testing.T) {
	tree := ast.NewConcat(
		ast.NewAnchor(ast.Start),
		ast.NewRepeat(ast.NewMatch('c'), 1, 3, false),
		ast.NewAnchor(ast.End),
	)
	mod := mustGenerate(t, tree)
	// The entry block checks ^; on success it continues into the repeat.
	entry := mod.Block(mod.Entry)
	if entry.Term == nil || entry.Term.Kind != ir.TermBranch || entry.Term.Cond.Kind != ir.CondAtStart {
		t.Fatalf("expected the entry block to check the start anchor, got %+v", entry.Term)
	}
	rep := mod.Block(entry.Term.TrueTarget)
	if rep == nil || rep.Term == nil || rep.Term.Kind != ir.TermBranch || rep.Term.Cond.Kind != ir.CondRunLength {
		t.Fatalf("expected fused run-length branch for single-byte repeat, got %+v", rep)
	}
}

func TestGenerateGeneralRepeatUsesCounterLoop(t *testing.T) {
	// (ab){2,4}
	body := ast.NewConcat(ast.NewMatch('a'), ast.NewMatch('b'))
	tree := ast.NewConcat(ast.NewAnchor(ast.Start), ast.NewRepeat(body, 2, 4, false))
	mod := mustGenerate(t, tree)

	sawCounterReset := false
	for _, blk := range mod.Blocks {
		for _, in := range blk.Instr {
			if in.Kind == ir.InstrCounterReset {
				sawCounterReset = true
			}
		}
	}
	if !sawCounterReset {
		t.Fatal("expected a counted loop for a multi-byte repeat body")
	}
}

func TestGenerateZeroWidthRepeatMinTwoRejected(t *testing.T) {
	tree := ast.NewRepeat(ast.NewAnchor(ast.Start), 2, -1, false)
	if _, err := Generate(tree); err == nil {
		t.Fatal("expected an error for a zero-width repeat body with min >= 2")
	}
}

func TestGenerateZeroWidthRepeatMinZero(t *testing.T) {
	tree := ast.NewConcat(ast.NewRepeat(ast.NewAnchor(ast.Start), 0, -1, false), ast.NewMatch('a'))
	mustGenerate(t, tree)
}

func TestGenerateWordBoundary(t *testing.T) {
	tree := ast.NewConcat(ast.NewAnchor(ast.WordBoundary), ast.NewMatch('x'))
	mustGenerate(t, tree)
}

// TestGenerateLiteralWithAnchorAvoidsBMH is the regression test for \bword:
// a literal body with an embedded, non-leading anchor must not take the BMH
// fast path, since BMHSearch has no way to re-check \b at the offset it
// finds. It must fall through to memchrPlan, which re-lowers (and so
// re-checks) the whole tree, anchor included, at each candidate offset.
func TestGenerateLiteralWithAnchorAvoidsBMH(t *testing.T) {
	// \bword
	tree := ast.NewConcat(
		ast.NewAnchor(ast.WordBoundary),
		ast.NewMatch('w'), ast.NewMatch('o'), ast.NewMatch('r'), ast.NewMatch('d'),
	)
	mod := mustGenerate(t, tree)
	entry := mod.Block(mod.Entry)

	for _, in := range entry.Instr {
		if in.Kind == ir.InstrCallBMH {
			t.Fatalf(`\bword must not compile to a naive BMH search: got %+v`, entry)
		}
	}

	sawMemchrAdvance := false
	for _, blk := range mod.Blocks {
		for _, in := range blk.Instr {
			if in.Kind == ir.InstrCallMemchrAdvance {
				sawMemchrAdvance = true
			}
		}
	}
	if !sawMemchrAdvance {
		t.Fatalf(`expected \bword to use the memchr-prefixed scan, got blocks %+v`, mod.Blocks)
	}
}

func TestGenerateCharClassBoundary(t *testing.T) {
	tree := ast.NewCharClass([]ast.Range{{Lo: 0x80, Hi: 0xff}}, false)
	mustGenerate(t, tree)
}
