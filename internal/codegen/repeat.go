package codegen

import (
	"fmt"

	"github.com/regjit/regjit/internal/ast"
	"github.com/regjit/regjit/internal/ir"
)

// lowerRepeat dispatches to one of the five Repeat generation paths from
// spec §4.4.4, chosen by the shape of the body:
//
//  1. zero-width body, min >= 2: impossible to generate (each rep consumes
//     nothing, so requiring two or more is unsatisfiable in any useful
//     sense) and rejected here as a compile error.
//  2. zero-width body, min == 0: the repeat contributes nothing; jump
//     straight through to onSuccess.
//  3. zero-width body, min == 1: attempt the body exactly once.
//  4. single-byte body (a literal or a character class with no nested
//     repeat): a fused count-advance-and-branch op (ir.CondRunLength).
//  5. general body: a counted loop built from explicit counter and offset
//     save/restore slots.
//
// Greedy matching only; NonGreedy is accepted by the parser but this
// generator always consumes the maximal run before checking the minimum,
// matching the teacher's single-strategy backtracking VM.
func (g *Generator) lowerRepeat(n *ast.Node, onSuccess, onFail ir.Label) (ir.Label, error) {
	switch {
	case ast.IsZeroWidth(n.Body) && n.Min >= 2:
		return "", fmt.Errorf("codegen: zero-width repeat body with min=%d has no satisfiable generation path", n.Min)
	case ast.IsZeroWidth(n.Body) && n.Min == 0:
		blk := g.b.NewBlock()
		g.b.Terminate(blk, ir.Terminator{Kind: ir.TermJump, Target: onSuccess})
		return blk.Label, nil
	case ast.IsZeroWidth(n.Body) && n.Min == 1:
		return g.lower(n.Body, onSuccess, onFail)
	}

	if byteCond, ok := singleByteCond(n.Body); ok {
		byteCond.Min = n.Min
		byteCond.Max = n.Max
		blk := g.b.NewBlock()
		g.b.Terminate(blk, ir.Terminator{
			Kind:        ir.TermBranch,
			Cond:        byteCond,
			TrueTarget:  onSuccess,
			FalseTarget: onFail,
		})
		return blk.Label, nil
	}

	return g.lowerCountedLoop(n, onSuccess, onFail)
}

// singleByteCond reports whether body matches exactly one byte per
// repetition (a literal or a character class), returning the ir.Cond
// shape CondRunLength needs.
func singleByteCond(body *ast.Node) (ir.Cond, bool) {
	switch body.Kind {
	case ast.KindMatch:
		return ir.Cond{Kind: ir.CondRunLength, Byte: body.Byte}, true
	case ast.KindCharClass:
		ranges := make([]ir.Range, len(body.Ranges))
		for i, r := range body.Ranges {
			ranges[i] = ir.Range{Lo: r.Lo, Hi: r.Hi}
		}
		return ir.Cond{Kind: ir.CondRunLength, Ranges: ranges, Negated: body.Negated}, true
	default:
		return ir.Cond{}, false
	}
}

func (g *Generator) lowerCountedLoop(n *ast.Node, onSuccess, onFail ir.Label) (ir.Label, error) {
	counterSlot := g.slot("cnt")
	offsetSlot := g.slot("repOffset")

	checkMin := g.b.NewBlock()
	g.b.Terminate(checkMin, ir.Terminator{
		Kind: ir.TermBranch,
		Cond: ir.Cond{Kind: ir.CondCounterAtLeast, Slot: counterSlot, Threshold: n.Min},
		TrueTarget:  onSuccess,
		FalseTarget: onFail,
	})

	bodyFail := g.b.NewBlock()
	bodyFail.Instr = append(bodyFail.Instr, ir.Instr{Kind: ir.InstrRestoreOffset, Slot: offsetSlot})
	g.b.Terminate(bodyFail, ir.Terminator{Kind: ir.TermJump, Target: checkMin.Label})

	loopCheck := g.b.NewBlock()

	save := g.b.NewBlock()
	save.Instr = append(save.Instr, ir.Instr{Kind: ir.InstrSaveOffset, Slot: offsetSlot})

	bodySuccess := g.b.NewBlock()
	bodySuccess.Instr = append(bodySuccess.Instr, ir.Instr{Kind: ir.InstrCounterIncrement, Slot: counterSlot})
	g.b.Terminate(bodySuccess, ir.Terminator{Kind: ir.TermJump, Target: loopCheck.Label})

	bodyEntry, err := g.lower(n.Body, bodySuccess.Label, bodyFail.Label)
	if err != nil {
		return "", err
	}
	g.b.Terminate(save, ir.Terminator{Kind: ir.TermJump, Target: bodyEntry})

	if n.Max < 0 {
		g.b.Terminate(loopCheck, ir.Terminator{Kind: ir.TermJump, Target: save.Label})
	} else {
		g.b.Terminate(loopCheck, ir.Terminator{
			Kind:        ir.TermBranch,
			Cond:        ir.Cond{Kind: ir.CondCounterBelow, Slot: counterSlot, Threshold: n.Max},
			TrueTarget:  save.Label,
			FalseTarget: checkMin.Label,
		})
	}

	entry := g.b.NewBlock()
	entry.Instr = append(entry.Instr, ir.Instr{Kind: ir.InstrCounterReset, Slot: counterSlot})
	g.b.Terminate(entry, ir.Terminator{Kind: ir.TermJump, Target: loopCheck.Label})

	return entry.Label, nil
}
