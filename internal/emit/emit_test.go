package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/regjit/regjit/internal/ast"
	"github.com/regjit/regjit/internal/codegen"
)

func render(t *testing.T, tree *ast.Node) string {
	t.Helper()
	mod, err := codegen.Generate(tree)
	if err != nil {
		t.Fatalf("codegen.Generate: %v", err)
	}
	f, err := Generate(mod, "generated")
	if err != nil {
		t.Fatalf("emit.Generate: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestGeneratePureLiteralUsesBMH(t *testing.T) {
	tree := ast.NewConcat(ast.NewMatch('a'), ast.NewMatch('b'), ast.NewMatch('c'))
	src := render(t, tree)
	if !strings.Contains(src, "BMHSearch") {
		t.Fatalf("expected generated source to call BMHSearch, got:\n%s", src)
	}
	if !strings.Contains(src, "func MatchBytes(input []byte) bool") {
		t.Fatalf("expected MatchBytes signature, got:\n%s", src)
	}
	if !strings.Contains(src, "func Match(input string) bool") {
		t.Fatalf("expected Match signature, got:\n%s", src)
	}
}

func TestGenerateAnchoredExact(t *testing.T) {
	tree := ast.NewConcat(
		ast.NewAnchor(ast.Start),
		ast.NewMatch('a'),
		ast.NewMatch('b'),
		ast.NewAnchor(ast.End),
	)
	src := render(t, tree)
	if !strings.Contains(src, "offset == 0") {
		t.Fatalf("expected start-anchor check, got:\n%s", src)
	}
	if !strings.Contains(src, "offset == n") {
		t.Fatalf("expected end-anchor check, got:\n%s", src)
	}
}

func TestGenerateRepeatUsesCountChar(t *testing.T) {
	tree := ast.NewConcat(
		ast.NewAnchor(ast.Start),
		ast.NewRepeat(ast.NewMatch('c'), 1, 3, false),
	)
	src := render(t, tree)
	if !strings.Contains(src, "CountChar") {
		t.Fatalf("expected CountChar call for single-byte repeat, got:\n%s", src)
	}
}

func TestGenerateCharClassUsesBitmap(t *testing.T) {
	tree := ast.NewCharClass([]ast.Range{{Lo: 'a', Hi: 'z'}}, false)
	src := render(t, tree)
	if !strings.Contains(src, "[32]byte") {
		t.Fatalf("expected a bitmap literal for the character class, got:\n%s", src)
	}
}

func TestGenerateWordBoundary(t *testing.T) {
	tree := ast.NewConcat(ast.NewAnchor(ast.WordBoundary), ast.NewMatch('x'))
	src := render(t, tree)
	if !strings.Contains(src, "!=") {
		t.Fatalf("expected a word-boundary comparison, got:\n%s", src)
	}
}

// TestGenerateBareEndAnchorUsesInclusiveBound is the regression test for
// the linear-scan plan's off-by-one: a bare $ has no literal prefix, no
// required chars, and isn't anchored at start, so it takes the linear-scan
// plan, whose outer loop must attempt offset == len(input), not stop one
// short of it.
func TestGenerateBareEndAnchorUsesInclusiveBound(t *testing.T) {
	tree := ast.NewAnchor(ast.End)
	src := render(t, tree)
	if !strings.Contains(src, "offset <= n") {
		t.Fatalf(`expected an inclusive "offset <= n" bounds check, got:\n%s`, src)
	}
}

// TestGenerateMemchrRangeChecksWindowAgainstHit is the regression test
// for the memchr-range plan trying only the hit offset: (a|b)c's required
// byte is 'c', which can sit past where the match actually needs to
// start, so the generated source must compare the live offset against
// the saved hit slot rather than attempting only at the hit.
func TestGenerateMemchrRangeChecksWindowAgainstHit(t *testing.T) {
	tree := ast.NewConcat(
		ast.NewAlternative(ast.NewMatch('a'), ast.NewMatch('b')),
		ast.NewMatch('c'),
	)
	src := render(t, tree)
	if !strings.Contains(src, "memchrRangeHit") {
		t.Fatalf("expected the generated source to reference a saved hit slot, got:\n%s", src)
	}
}

// TestGenerateLiteralWithWordBoundaryRejectsNaiveBMH is the end-to-end
// regression test for \bword: it must never compile to a plain BMHSearch
// call, since that would report "xword" as a match (BMHSearch finds "word"
// at offset 1, with no way to check that a word boundary precedes it).
func TestGenerateLiteralWithWordBoundaryRejectsNaiveBMH(t *testing.T) {
	tree := ast.NewConcat(
		ast.NewAnchor(ast.WordBoundary),
		ast.NewMatch('w'), ast.NewMatch('o'), ast.NewMatch('r'), ast.NewMatch('d'),
	)
	src := render(t, tree)
	if strings.Contains(src, "BMHSearch") {
		t.Fatalf(`expected \bword to avoid the naive BMHSearch fast path, got:\n%s`, src)
	}
	if !strings.Contains(src, "Memchr") && !strings.Contains(src, "!=") {
		t.Fatalf(`expected \bword to re-check the word boundary at each candidate offset, got:\n%s`, src)
	}
}
