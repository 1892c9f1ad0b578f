package emit

import (
	"github.com/dave/jennifer/jen"

	"github.com/regjit/regjit/internal/ir"
)

// buildBitmap turns a set of inclusive byte ranges into a 256-bit (32
// byte) membership table, the same representation the teacher's
// generateBitmapCheck builds for O(1) character-class membership tests.
func buildBitmap(ranges []ir.Range) [32]byte {
	var bm [32]byte
	for _, r := range ranges {
		for c := int(r.Lo); c <= int(r.Hi); c++ {
			bm[c/8] |= 1 << uint(c%8)
		}
	}
	return bm
}

func bitmapLiteral(bm [32]byte) *jen.Statement {
	vals := make([]jen.Code, len(bm))
	for i, b := range bm {
		vals[i] = jen.Lit(b)
	}
	return jen.Index(jen.Lit(32)).Byte().Values(vals...)
}

// classBitmapCheck renders the boolean expression "input[offset] belongs
// to this character class", honoring Negated.
func classBitmapCheck(ranges []ir.Range, negated bool) *jen.Statement {
	return classBitmapCheckAt(ranges, negated, jen.Id(OffsetName))
}

func classBitmapCheckAt(ranges []ir.Range, negated bool, at *jen.Statement) *jen.Statement {
	bm := buildBitmap(ranges)
	inSet := bitmapLiteral(bm).Index(
		jen.Id(InputName).Index(at).Op("/").Lit(8),
	).Op("&").Parens(
		jen.Lit(1).Op("<<").Parens(jen.Id(InputName).Index(at.Clone()).Op("%").Lit(8)),
	).Op("!=").Lit(0)
	if negated {
		return jen.Op("!").Parens(inSet)
	}
	return inSet
}

// wordBoundaryExpr renders the boolean expression "offset sits on a
// \b word boundary": exactly one of the byte before and the byte at
// offset is a word byte ([0-9A-Za-z_]), treating the string's edges as
// non-word.
func wordBoundaryExpr() *jen.Statement {
	wordRanges := []ir.Range{{Lo: '0', Hi: '9'}, {Lo: 'A', Hi: 'Z'}, {Lo: '_', Hi: '_'}, {Lo: 'a', Hi: 'z'}}
	bm := buildBitmap(wordRanges)

	isWordBefore := jen.Parens(jen.Id(OffsetName).Op(">").Lit(0)).Op("&&").Parens(
		bitmapLiteral(bm).Index(
			jen.Id(InputName).Index(jen.Id(OffsetName).Op("-").Lit(1)).Op("/").Lit(8),
		).Op("&").Parens(
			jen.Lit(1).Op("<<").Parens(jen.Id(InputName).Index(jen.Id(OffsetName).Op("-").Lit(1)).Op("%").Lit(8)),
		).Op("!=").Lit(0),
	)
	isWordAt := jen.Parens(jen.Id(OffsetName).Op("<").Id(InputLenName)).Op("&&").Parens(
		classBitmapCheckAt(wordRanges, false, jen.Id(OffsetName)),
	)
	return jen.Parens(isWordBefore).Op("!=").Parens(isWordAt)
}

// generateRunLengthBranch emits the fused count-advance-and-branch
// sequence for a single-byte greedy Repeat (spec §4.4.4 path 4): count
// the maximal run of matching bytes capped at Max, then branch on whether
// it reached Min.
func generateRunLengthBranch(term *ir.Terminator, blockLabel string) []jen.Code {
	c := term.Cond
	countVar := "count_" + blockLabel

	var stmts []jen.Code
	if len(c.Ranges) == 0 {
		stmts = append(stmts, jen.Id(countVar).Op("=").Qual(runtimePkg, "CountChar").Call(
			jen.Id(InputName).Index(jen.Id(OffsetName), jen.Empty()),
			jen.Lit(c.Byte),
			jen.Lit(c.Max),
		))
	} else {
		match := classBitmapCheckAt(c.Ranges, c.Negated, jen.Id(OffsetName).Op("+").Id(countVar))
		boundsAndMax := jen.Id(OffsetName).Op("+").Id(countVar).Op("<").Id(InputLenName)
		if c.Max >= 0 {
			boundsAndMax = jen.Parens(boundsAndMax).Op("&&").Parens(jen.Id(countVar).Op("<").Lit(c.Max))
		}
		stmts = append(stmts,
			jen.Id(countVar).Op("=").Lit(0),
			jen.For(jen.Parens(boundsAndMax).Op("&&").Parens(match)).Block(
				jen.Id(countVar).Op("++"),
			),
		)
	}

	stmts = append(stmts,
		jen.If(jen.Id(countVar).Op(">=").Lit(c.Min)).Block(
			jen.Id(OffsetName).Op("+=").Id(countVar),
			jen.Goto().Id(string(term.TrueTarget)),
		),
		jen.Goto().Id(string(term.FalseTarget)),
	)
	return stmts
}
