// Package emit lowers a verified internal/ir.Module into Go source using
// github.com/dave/jennifer/jen, the teacher's code generation library.
// Every ir.Block becomes a label; every ir.Terminator becomes a goto or an
// if/goto pair. Because every jump target is resolved at generation time
// (the IR has no runtime instruction pointer to dispatch on), a single
// flat function with native Go goto statements realizes the teacher's
// label+goto idiom without needing its StepSelect dispatch switch.
package emit

import (
	"fmt"
	"sort"

	"github.com/dave/jennifer/jen"

	"github.com/regjit/regjit/internal/ir"
)

const runtimePkg = "github.com/regjit/regjit/rtsupport"

// Identifiers used in the generated match function.
const (
	InputName    = "input"
	InputLenName = "n"
	OffsetName   = "offset"
)

// Generate lowers mod into a Go source file in package pkg exposing
// Match(input string) bool and MatchBytes(input []byte) bool.
func Generate(mod *ir.Module, pkg string) (*jen.File, error) {
	if err := ir.Verify(mod); err != nil {
		return nil, err
	}

	body, err := generateBody(mod)
	if err != nil {
		return nil, err
	}

	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by regjit. DO NOT EDIT.")

	f.Func().Id("MatchBytes").Params(jen.Id(InputName).Index().Byte()).Bool().Block(body...)
	f.Line()
	f.Func().Id("Match").Params(jen.Id(InputName).String()).Bool().Block(
		jen.Return(jen.Id("MatchBytes").Call(jen.Index().Byte().Parens(jen.Id(InputName)))),
	)
	return f, nil
}

func generateBody(mod *ir.Module) ([]jen.Code, error) {
	var stmts []jen.Code
	stmts = append(stmts, jen.Id(InputLenName).Op(":=").Len(jen.Id(InputName)))
	stmts = append(stmts, jen.Id("_").Op("=").Id(InputLenName))
	stmts = append(stmts, jen.Id(OffsetName).Op(":=").Lit(0))

	for _, slot := range collectSlots(mod) {
		stmts = append(stmts, jen.Var().Id(slot).Int())
	}

	for _, countVar := range collectRunLengthCounters(mod) {
		stmts = append(stmts, jen.Var().Id(countVar).Int())
	}

	stmts = append(stmts, jen.Goto().Id(string(mod.Entry)))

	for _, blk := range mod.Blocks {
		blkStmts, err := generateBlock(blk)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, blkStmts...)
	}
	return stmts, nil
}

// collectSlots returns every named save/restore/counter slot referenced in
// mod, sorted for deterministic output.
func collectSlots(mod *ir.Module) []string {
	seen := map[string]struct{}{}
	for _, blk := range mod.Blocks {
		for _, in := range blk.Instr {
			if in.Slot != "" {
				seen[in.Slot] = struct{}{}
			}
		}
	}
	slots := make([]string, 0, len(seen))
	for s := range seen {
		slots = append(slots, s)
	}
	sort.Strings(slots)
	return slots
}

// collectRunLengthCounters returns the "count_<block>" variable name used
// by every run-length branch terminator, sorted for deterministic output.
// These must be declared at function scope (like save/restore slots)
// because the flat goto-based function body can jump over a `:=` declared
// inside a later block.
func collectRunLengthCounters(mod *ir.Module) []string {
	var names []string
	for _, blk := range mod.Blocks {
		if blk.Term != nil && blk.Term.Kind == ir.TermBranch && blk.Term.Cond.Kind == ir.CondRunLength {
			names = append(names, "count_"+string(blk.Label))
		}
	}
	sort.Strings(names)
	return names
}

// blockResult carries state from an instruction to the terminator that
// reads its outcome; only InstrCallBMH produces one.
type blockResult struct {
	successVar string
}

func generateBlock(blk *ir.Block) ([]jen.Code, error) {
	stmts := []jen.Code{jen.Id(string(blk.Label)).Op(":")}

	var result blockResult
	for _, in := range blk.Instr {
		stmt, err := generateInstr(in, &result)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	term, err := generateTerminator(blk.Term, result, string(blk.Label))
	if err != nil {
		return nil, err
	}
	return append(stmts, term...), nil
}

func generateInstr(in ir.Instr, result *blockResult) (jen.Code, error) {
	switch in.Kind {
	case ir.InstrAdvance:
		return jen.Id(OffsetName).Op("++"), nil
	case ir.InstrSaveOffset:
		return jen.Id(in.Slot).Op("=").Id(OffsetName), nil
	case ir.InstrRestoreOffset:
		return jen.Id(OffsetName).Op("=").Id(in.Slot), nil
	case ir.InstrCounterReset:
		return jen.Id(in.Slot).Op("=").Lit(0), nil
	case ir.InstrCounterIncrement:
		return jen.Id(in.Slot).Op("++"), nil
	case ir.InstrCallMemchrAdvance:
		return jen.If(
			jen.Id("idx").Op(":=").Qual(runtimePkg, "Memchr").Call(
				jen.Id(InputName).Index(jen.Id(OffsetName), jen.Empty()),
				jen.Lit(in.Byte),
			),
			jen.Id("idx").Op(">=").Lit(0),
		).Block(
			jen.Id(OffsetName).Op("+=").Id("idx"),
		).Else().Block(
			jen.Id(OffsetName).Op("=").Id(InputLenName),
		), nil
	case ir.InstrCallBMH:
		result.successVar = "idx"
		return jen.Id("idx").Op(":=").Qual(runtimePkg, "BMHSearch").Call(
			jen.Id(InputName).Index(jen.Id(OffsetName), jen.Empty()),
			literalBytes(in.Needle),
		), nil
	default:
		return nil, fmt.Errorf("emit: unsupported instruction kind %d", in.Kind)
	}
}

func literalBytes(b []byte) *jen.Statement {
	vals := make([]jen.Code, len(b))
	for i, c := range b {
		vals[i] = jen.Lit(c)
	}
	return jen.Index().Byte().Values(vals...)
}

func generateTerminator(term *ir.Terminator, result blockResult, blockLabel string) ([]jen.Code, error) {
	switch term.Kind {
	case ir.TermReturn:
		return []jen.Code{jen.Return(jen.Lit(term.ReturnValue))}, nil
	case ir.TermJump:
		return []jen.Code{jen.Goto().Id(string(term.Target))}, nil
	case ir.TermBranch:
		if term.Cond.Kind == ir.CondRunLength {
			return generateRunLengthBranch(term, blockLabel), nil
		}
		cond, err := generateCond(term.Cond, result)
		if err != nil {
			return nil, err
		}
		return []jen.Code{
			jen.If(cond).Block(jen.Goto().Id(string(term.TrueTarget))),
			jen.Goto().Id(string(term.FalseTarget)),
		}, nil
	default:
		return nil, fmt.Errorf("emit: unsupported terminator kind %d", term.Kind)
	}
}

func generateCond(c ir.Cond, result blockResult) (*jen.Statement, error) {
	switch c.Kind {
	case ir.CondAlways:
		return jen.True(), nil
	case ir.CondCallSucceeded:
		if result.successVar == "" {
			return nil, fmt.Errorf("emit: CondCallSucceeded with no preceding call instruction")
		}
		return jen.Id(result.successVar).Op(">=").Lit(0), nil
	case ir.CondBoundsRemain:
		return jen.Id(OffsetName).Op("<").Id(InputLenName), nil
	case ir.CondBoundsRemainInclusive:
		return jen.Id(OffsetName).Op("<=").Id(InputLenName), nil
	case ir.CondOffsetExceedsSlot:
		return jen.Id(OffsetName).Op(">").Id(c.Slot), nil
	case ir.CondAtStart:
		return jen.Id(OffsetName).Op("==").Lit(0), nil
	case ir.CondAtEnd:
		return jen.Id(OffsetName).Op("==").Id(InputLenName), nil
	case ir.CondByteEquals:
		return jen.Id(InputName).Index(jen.Id(OffsetName)).Op("==").Lit(c.Byte), nil
	case ir.CondInClass:
		return classBitmapCheck(c.Ranges, c.Negated), nil
	case ir.CondWordBoundary, ir.CondNonWordBoundary:
		cond := wordBoundaryExpr()
		if c.Kind == ir.CondNonWordBoundary {
			return jen.Op("!").Parens(cond), nil
		}
		return cond, nil
	case ir.CondCounterAtLeast:
		return jen.Id(c.Slot).Op(">=").Lit(c.Threshold), nil
	case ir.CondCounterBelow:
		return jen.Id(c.Slot).Op("<").Lit(c.Threshold), nil
	default:
		return nil, fmt.Errorf("emit: unsupported cond kind %d", c.Kind)
	}
}
