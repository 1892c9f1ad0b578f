// Package codegen lowers a syntax tree into the low-level IR (internal/ir),
// choosing one of the search plans from spec §4.4.1 and implementing the
// five Repeat generation paths from §4.4.4. One Generator is created per
// compile; it holds no state that could leak between concurrent compiles.
package codegen

import (
	"fmt"

	"github.com/regjit/regjit/internal/ast"
	"github.com/regjit/regjit/internal/ir"
)

// Generator lowers a single syntax tree into an ir.Module.
type Generator struct {
	b       *ir.Builder
	counter int
}

// NewGenerator returns a Generator for a fresh module named name.
func NewGenerator(name string) *Generator {
	return &Generator{b: ir.NewBuilder(name)}
}

// Generate lowers tree into a verified-able ir.Module. It chooses a search
// plan by the priority order in spec §4.4.1: a single attempt when the
// pattern is anchored at start with no zero-width repeat, a Boyer-Moore-
// Horspool scan when the whole pattern is a literal, a memchr-prefixed scan
// when the pattern has a concrete leading byte, a memchr-range scan when a
// required-character set exists, and a linear scan otherwise.
func Generate(tree *ast.Node) (*ir.Module, error) {
	g := NewGenerator("pattern")
	entry, err := g.plan(tree)
	if err != nil {
		return nil, err
	}
	g.b.Module().Entry = entry
	return g.b.Module(), nil
}

func (g *Generator) slot(prefix string) string {
	g.counter++
	return fmt.Sprintf("%s%d", prefix, g.counter)
}

func (g *Generator) plan(tree *ast.Node) (ir.Label, error) {
	switch {
	case ast.IsAnchoredAtStart(tree) && !ast.ContainsZeroWidthRepeat(tree):
		return g.singleAttemptPlan(tree)
	case ast.IsPureLiteral(tree) && !ast.ContainsAnchor(tree):
		return g.bmhPlan(tree)
	default:
		prefix := ast.LiteralPrefix(tree)
		if len(prefix) > 0 {
			return g.memchrPlan(tree, prefix[0])
		}
		required := ast.RequiredChars(tree)
		if len(required) > 0 {
			return g.memchrRangePlan(tree, required)
		}
		return g.linearScanPlan(tree)
	}
}

// singleAttemptPlan lowers tree once at offset 0 with no outer retry loop
// (spec §4.4.1 plan 1): an anchored pattern with no zero-width repeat can
// only ever match starting at offset 0.
func (g *Generator) singleAttemptPlan(tree *ast.Node) (ir.Label, error) {
	entry, err := g.lower(tree, ir.ReturnSuccess, ir.ReturnFail)
	if err != nil {
		return "", err
	}
	return entry, nil
}

// bmhPlan uses rtsupport.BMHSearch to locate the literal needle anywhere in
// the input (spec §4.4.1 plan 2). BMHSearch is a raw substring search with
// no notion of ^/$/\b/\B, so plan() must only route here when the tree is
// anchor-free; a literal with an embedded anchor needs memchrPlan or
// linearScanPlan instead, since those re-lower (and so re-check) the whole
// tree, anchors included, at every candidate offset.
func (g *Generator) bmhPlan(tree *ast.Node) (ir.Label, error) {
	needle := ast.LiteralPrefix(tree)
	blk := g.b.NewBlock()
	blk.Instr = append(blk.Instr, ir.Instr{Kind: ir.InstrCallBMH, Needle: needle})
	g.b.Terminate(blk, ir.Terminator{
		Kind:        ir.TermBranch,
		Cond:        ir.Cond{Kind: ir.CondCallSucceeded},
		TrueTarget:  ir.ReturnSuccess,
		FalseTarget: ir.ReturnFail,
	})
	return blk.Label, nil
}

// memchrPlan scans for the first occurrence of the pattern's leading
// concrete byte, attempts a full match there, and on failure resumes the
// scan one byte past the last attempt (spec §4.4.1 plan 3).
func (g *Generator) memchrPlan(tree *ast.Node, lead byte) (ir.Label, error) {
	slot := g.slot("memchr")

	scan := g.b.NewBlock()
	scan.Instr = append(scan.Instr, ir.Instr{Kind: ir.InstrCallMemchrAdvance, Byte: lead})

	save := g.b.NewBlock()
	save.Instr = append(save.Instr, ir.Instr{Kind: ir.InstrSaveOffset, Slot: slot})

	attemptFail := g.b.NewBlock()
	attemptFail.Instr = append(attemptFail.Instr,
		ir.Instr{Kind: ir.InstrRestoreOffset, Slot: slot},
		ir.Instr{Kind: ir.InstrAdvance},
	)
	g.b.Terminate(attemptFail, ir.Terminator{Kind: ir.TermJump, Target: scan.Label})

	attemptEntry, err := g.lower(tree, ir.ReturnSuccess, attemptFail.Label)
	if err != nil {
		return "", err
	}
	g.b.Terminate(save, ir.Terminator{Kind: ir.TermJump, Target: attemptEntry})

	g.b.Terminate(scan, ir.Terminator{
		Kind:        ir.TermBranch,
		Cond:        ir.Cond{Kind: ir.CondBoundsRemain},
		TrueTarget:  save.Label,
		FalseTarget: ir.ReturnFail,
	})
	return scan.Label, nil
}

// memchrRangePlan attempts the body at every offset, using the pattern's
// required-character set only to prove how far ahead it is worth looking
// before giving up (spec §4.4.1 plan 4). A required byte at offset `hit`
// does not mean the match must start at `hit` — e.g. `(a|b)c` must match
// "ac" starting at offset 0, even though the required byte 'c' sits at
// offset 1 — so a found hit only opens an attempt window: every offset
// from the current position through hit (inclusive) is tried in turn
// before the scan needs to look for a new hit beyond it. If a forward
// scan ever runs off the end of input without finding a required byte,
// no suffix of the remaining input can match and the plan fails
// immediately, the one optimization this retains over a plain linear
// scan.
func (g *Generator) memchrRangePlan(tree *ast.Node, required map[byte]struct{}) (ir.Label, error) {
	ranges := make([]ir.Range, 0, len(required))
	for b := range required {
		ranges = append(ranges, ir.Range{Lo: b, Hi: b})
	}
	attemptSlot := g.slot("memchrRangeAttempt")
	hitSlot := g.slot("memchrRangeHit")

	// rescan marks the current offset as the start of a new attempt
	// window and looks forward for the next required byte.
	rescan := g.b.NewBlock()
	rescan.Instr = append(rescan.Instr, ir.Instr{Kind: ir.InstrSaveOffset, Slot: attemptSlot})

	scanCheck := g.b.NewBlock()
	g.b.Terminate(scanCheck, ir.Terminator{
		Kind:        ir.TermBranch,
		Cond:        ir.Cond{Kind: ir.CondBoundsRemain},
		TrueTarget:  "", // patched below
		FalseTarget: ir.ReturnFail,
	})
	g.b.Terminate(rescan, ir.Terminator{Kind: ir.TermJump, Target: scanCheck.Label})

	byteCheck := g.b.NewBlock()
	advanceAndLoop := g.b.NewBlock()
	advanceAndLoop.Instr = append(advanceAndLoop.Instr, ir.Instr{Kind: ir.InstrAdvance})
	g.b.Terminate(advanceAndLoop, ir.Terminator{Kind: ir.TermJump, Target: scanCheck.Label})

	// foundHit records where the required byte was found, then rewinds
	// offset back to the start of the attempt window so every offset in
	// the window gets a turn, not just the hit itself.
	foundHit := g.b.NewBlock()
	foundHit.Instr = append(foundHit.Instr,
		ir.Instr{Kind: ir.InstrSaveOffset, Slot: hitSlot},
		ir.Instr{Kind: ir.InstrRestoreOffset, Slot: attemptSlot},
	)

	// attemptFail rewinds to where the failed attempt started before moving
	// on, since a partially matched body can leave offset past that point.
	startSlot := g.slot("memchrRangeStart")
	attemptFail := g.b.NewBlock()
	attemptFail.Instr = append(attemptFail.Instr,
		ir.Instr{Kind: ir.InstrRestoreOffset, Slot: startSlot},
		ir.Instr{Kind: ir.InstrAdvance},
	)

	// checkWindow decides, after a failed attempt, whether the window
	// opened by the last hit still has unattempted offsets in it.
	checkWindow := g.b.NewBlock()
	g.b.Terminate(checkWindow, ir.Terminator{
		Kind:        ir.TermBranch,
		Cond:        ir.Cond{Kind: ir.CondOffsetExceedsSlot, Slot: hitSlot},
		TrueTarget:  rescan.Label,
		FalseTarget: "", // patched below
	})
	g.b.Terminate(attemptFail, ir.Terminator{Kind: ir.TermJump, Target: checkWindow.Label})

	attemptEntry, err := g.lower(tree, ir.ReturnSuccess, attemptFail.Label)
	if err != nil {
		return "", err
	}
	attempt := g.b.NewBlock()
	attempt.Instr = append(attempt.Instr, ir.Instr{Kind: ir.InstrSaveOffset, Slot: startSlot})
	g.b.Terminate(attempt, ir.Terminator{Kind: ir.TermJump, Target: attemptEntry})
	checkWindow.Term.FalseTarget = attempt.Label
	g.b.Terminate(foundHit, ir.Terminator{Kind: ir.TermJump, Target: attempt.Label})

	g.b.Terminate(byteCheck, ir.Terminator{
		Kind:        ir.TermBranch,
		Cond:        ir.Cond{Kind: ir.CondInClass, Ranges: ranges},
		TrueTarget:  foundHit.Label,
		FalseTarget: advanceAndLoop.Label,
	})
	scanCheck.Term.TrueTarget = byteCheck.Label
	return rescan.Label, nil
}

// linearScanPlan attempts a match at every offset in turn, through and
// including offset == len(input) (spec §4.4.1 plan 5, the universal
// fallback): a zero-width pattern like a bare $ only matches at end of
// input, so the scan must not stop one short of it.
func (g *Generator) linearScanPlan(tree *ast.Node) (ir.Label, error) {
	slot := g.slot("scan")

	scan := g.b.NewBlock()
	save := g.b.NewBlock()
	save.Instr = append(save.Instr, ir.Instr{Kind: ir.InstrSaveOffset, Slot: slot})

	attemptFail := g.b.NewBlock()
	attemptFail.Instr = append(attemptFail.Instr,
		ir.Instr{Kind: ir.InstrRestoreOffset, Slot: slot},
		ir.Instr{Kind: ir.InstrAdvance},
	)
	g.b.Terminate(attemptFail, ir.Terminator{Kind: ir.TermJump, Target: scan.Label})

	attemptEntry, err := g.lower(tree, ir.ReturnSuccess, attemptFail.Label)
	if err != nil {
		return "", err
	}
	g.b.Terminate(save, ir.Terminator{Kind: ir.TermJump, Target: attemptEntry})

	g.b.Terminate(scan, ir.Terminator{
		Kind:        ir.TermBranch,
		Cond:        ir.Cond{Kind: ir.CondBoundsRemainInclusive},
		TrueTarget:  save.Label,
		FalseTarget: ir.ReturnFail,
	})
	return scan.Label, nil
}
