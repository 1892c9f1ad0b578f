package codegen

import (
	"fmt"

	"github.com/regjit/regjit/internal/ast"
	"github.com/regjit/regjit/internal/ir"
)

// lower emits the blocks needed to match n starting at the current offset,
// returning the label of n's entry block. onSuccess is reached with offset
// advanced past n. onFail is not guaranteed to see offset as it was when
// n's entry block was entered: a Concat whose later child fails, or a
// counted Repeat that falls short of Min, leaves offset past the bytes
// already consumed. Alternative restores offset between its branches, and
// every search plan restores it from its own saved slot before retrying.
func (g *Generator) lower(n *ast.Node, onSuccess, onFail ir.Label) (ir.Label, error) {
	switch n.Kind {
	case ast.KindMatch:
		return g.lowerMatch(n, onSuccess, onFail), nil
	case ast.KindCharClass:
		return g.lowerCharClass(n, onSuccess, onFail), nil
	case ast.KindAnchor:
		return g.lowerAnchor(n, onSuccess, onFail), nil
	case ast.KindConcat:
		return g.lowerConcat(n, onSuccess, onFail)
	case ast.KindAlternative:
		return g.lowerAlternative(n, onSuccess, onFail)
	case ast.KindRepeat:
		return g.lowerRepeat(n, onSuccess, onFail)
	default:
		return "", fmt.Errorf("codegen: unhandled node kind %v", n.Kind)
	}
}

// lowerMatch emits bounds-check-then-byte-check-then-advance for a single
// literal byte (spec §4.4.2).
func (g *Generator) lowerMatch(n *ast.Node, onSuccess, onFail ir.Label) ir.Label {
	boundsCheck := g.b.NewBlock()
	byteCheck := g.b.NewBlock()
	advance := g.b.NewBlock()
	advance.Instr = append(advance.Instr, ir.Instr{Kind: ir.InstrAdvance})

	g.b.Terminate(boundsCheck, ir.Terminator{
		Kind:        ir.TermBranch,
		Cond:        ir.Cond{Kind: ir.CondBoundsRemain},
		TrueTarget:  byteCheck.Label,
		FalseTarget: onFail,
	})
	g.b.Terminate(byteCheck, ir.Terminator{
		Kind:        ir.TermBranch,
		Cond:        ir.Cond{Kind: ir.CondByteEquals, Byte: n.Byte},
		TrueTarget:  advance.Label,
		FalseTarget: onFail,
	})
	g.b.Terminate(advance, ir.Terminator{Kind: ir.TermJump, Target: onSuccess})
	return boundsCheck.Label
}

// lowerCharClass emits bounds-check-then-class-check-then-advance (spec
// §4.4.3).
func (g *Generator) lowerCharClass(n *ast.Node, onSuccess, onFail ir.Label) ir.Label {
	boundsCheck := g.b.NewBlock()
	classCheck := g.b.NewBlock()
	advance := g.b.NewBlock()
	advance.Instr = append(advance.Instr, ir.Instr{Kind: ir.InstrAdvance})

	ranges := make([]ir.Range, len(n.Ranges))
	for i, r := range n.Ranges {
		ranges[i] = ir.Range{Lo: r.Lo, Hi: r.Hi}
	}

	g.b.Terminate(boundsCheck, ir.Terminator{
		Kind:        ir.TermBranch,
		Cond:        ir.Cond{Kind: ir.CondBoundsRemain},
		TrueTarget:  classCheck.Label,
		FalseTarget: onFail,
	})
	g.b.Terminate(classCheck, ir.Terminator{
		Kind:        ir.TermBranch,
		Cond:        ir.Cond{Kind: ir.CondInClass, Ranges: ranges, Negated: n.Negated},
		TrueTarget:  advance.Label,
		FalseTarget: onFail,
	})
	g.b.Terminate(advance, ir.Terminator{Kind: ir.TermJump, Target: onSuccess})
	return boundsCheck.Label
}

// lowerAnchor emits a zero-width assertion check with no offset advance.
func (g *Generator) lowerAnchor(n *ast.Node, onSuccess, onFail ir.Label) ir.Label {
	var kind ir.CondKind
	switch n.AnchorKind {
	case ast.Start:
		kind = ir.CondAtStart
	case ast.End:
		kind = ir.CondAtEnd
	case ast.WordBoundary:
		kind = ir.CondWordBoundary
	case ast.NonWordBoundary:
		kind = ir.CondNonWordBoundary
	}
	blk := g.b.NewBlock()
	g.b.Terminate(blk, ir.Terminator{
		Kind:        ir.TermBranch,
		Cond:        ir.Cond{Kind: kind},
		TrueTarget:  onSuccess,
		FalseTarget: onFail,
	})
	return blk.Label
}

// lowerConcat chains children right-to-left so each child's onSuccess is
// the next child's entry block; an empty Concat matches the empty string
// via a jump-through block.
func (g *Generator) lowerConcat(n *ast.Node, onSuccess, onFail ir.Label) (ir.Label, error) {
	if len(n.Children) == 0 {
		blk := g.b.NewBlock()
		g.b.Terminate(blk, ir.Terminator{Kind: ir.TermJump, Target: onSuccess})
		return blk.Label, nil
	}
	next := onSuccess
	for i := len(n.Children) - 1; i >= 0; i-- {
		entry, err := g.lower(n.Children[i], next, onFail)
		if err != nil {
			return "", err
		}
		next = entry
	}
	return next, nil
}

// lowerAlternative tries each branch in order, saving and restoring the
// offset around each attempt so a partially-consumed failed branch never
// leaks into the next one; the last branch's failure is the node's own
// failure (spec §4.4.4's ordered-choice semantics).
func (g *Generator) lowerAlternative(n *ast.Node, onSuccess, onFail ir.Label) (ir.Label, error) {
	if len(n.Children) == 0 {
		blk := g.b.NewBlock()
		g.b.Terminate(blk, ir.Terminator{Kind: ir.TermJump, Target: onFail})
		return blk.Label, nil
	}

	slot := g.slot("alt")
	next := onFail
	for i := len(n.Children) - 1; i >= 0; i-- {
		restoreAndTry := next

		branchFail := g.b.NewBlock()
		branchFail.Instr = append(branchFail.Instr, ir.Instr{Kind: ir.InstrRestoreOffset, Slot: slot})
		g.b.Terminate(branchFail, ir.Terminator{Kind: ir.TermJump, Target: restoreAndTry})

		branchEntry, err := g.lower(n.Children[i], onSuccess, branchFail.Label)
		if err != nil {
			return "", err
		}

		save := g.b.NewBlock()
		save.Instr = append(save.Instr, ir.Instr{Kind: ir.InstrSaveOffset, Slot: slot})
		g.b.Terminate(save, ir.Terminator{Kind: ir.TermJump, Target: branchEntry})

		next = save.Label
	}
	return next, nil
}
