package ast

import "testing"

func TestIsZeroWidth(t *testing.T) {
	tests := []struct {
		name string
		n    *Node
		want bool
	}{
		{"anchor", NewAnchor(Start), true},
		{"match", NewMatch('a'), false},
		{"charclass", NewDotClass(), false},
		{"concat of anchors", NewConcat(NewAnchor(Start), NewAnchor(End)), true},
		{"concat with literal", NewConcat(NewAnchor(Start), NewMatch('a')), false},
		{"star over literal", NewRepeat(NewMatch('a'), 0, -1, false), true},
		{"plus over literal", NewRepeat(NewMatch('a'), 1, -1, false), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsZeroWidth(tt.n); got != tt.want {
				t.Errorf("IsZeroWidth(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestIsAnchoredAtStart(t *testing.T) {
	tests := []struct {
		name string
		n    *Node
		want bool
	}{
		{"bare start", NewAnchor(Start), true},
		{"concat starting with anchor", NewConcat(NewAnchor(Start), NewMatch('a')), true},
		{"concat not anchored", NewConcat(NewMatch('a'), NewAnchor(Start)), false},
		{"alt both anchored", NewAlternative(
			NewConcat(NewAnchor(Start), NewMatch('a')),
			NewConcat(NewAnchor(Start), NewMatch('b')),
		), true},
		{"alt one not anchored", NewAlternative(
			NewConcat(NewAnchor(Start), NewMatch('a')),
			NewMatch('b'),
		), false},
		{"repeat conservatively false", NewRepeat(NewAnchor(Start), 1, -1, false), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAnchoredAtStart(tt.n); got != tt.want {
				t.Errorf("IsAnchoredAtStart(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestContainsZeroWidthRepeat(t *testing.T) {
	if ContainsZeroWidthRepeat(NewRepeat(NewMatch('a'), 0, -1, false)) {
		t.Error("literal repeat should not be flagged")
	}
	if !ContainsZeroWidthRepeat(NewRepeat(NewAnchor(Start), 0, -1, false)) {
		t.Error("zero-width-body repeat should be flagged")
	}
}

func TestLiteralPrefix(t *testing.T) {
	n := NewConcat(NewAnchor(Start), NewMatch('a'), NewMatch('b'), NewMatch('c'))
	got := LiteralPrefix(n)
	if string(got) != "abc" {
		t.Errorf("LiteralPrefix = %q, want %q", got, "abc")
	}

	n2 := NewConcat(NewMatch('a'), NewDotClass(), NewMatch('c'))
	got2 := LiteralPrefix(n2)
	if string(got2) != "a" {
		t.Errorf("LiteralPrefix = %q, want %q", got2, "a")
	}
}

func TestIsPureLiteral(t *testing.T) {
	if !IsPureLiteral(NewConcat(NewMatch('a'), NewMatch('b'))) {
		t.Error("concat of literals should be pure")
	}
	if IsPureLiteral(NewConcat(NewMatch('a'), NewDotClass())) {
		t.Error("concat with a class should not be pure")
	}
}

func TestContainsAnchor(t *testing.T) {
	// \bword is pure-literal (anchors count as literal per spec §4.3) but
	// must still be flagged as anchor-bearing so codegen avoids the BMH plan.
	n := NewConcat(NewAnchor(WordBoundary), NewMatch('w'), NewMatch('o'), NewMatch('r'), NewMatch('d'))
	if !IsPureLiteral(n) {
		t.Error(`\bword should be pure-literal`)
	}
	if !ContainsAnchor(n) {
		t.Error(`\bword should report ContainsAnchor`)
	}
	if ContainsAnchor(NewConcat(NewMatch('a'), NewMatch('b'))) {
		t.Error("a plain literal should not report ContainsAnchor")
	}
	if !ContainsAnchor(NewRepeat(NewConcat(NewAnchor(Start), NewMatch('a')), 1, -1, false)) {
		t.Error("ContainsAnchor should look inside a Repeat body")
	}
}

func TestRequiredChars(t *testing.T) {
	n := NewAlternative(NewMatch('a'), NewMatch('b'))
	got := RequiredChars(n)
	if len(got) != 0 {
		t.Errorf("RequiredChars(a|b) = %v, want empty (no common byte)", got)
	}

	n2 := NewConcat(NewMatch('a'), NewMatch('b'))
	got2 := RequiredChars(n2)
	if _, ok := got2['a']; !ok {
		t.Error("required chars should include 'a'")
	}
	if _, ok := got2['b']; !ok {
		t.Error("required chars should include 'b'")
	}

	n3 := NewRepeat(NewMatch('a'), 0, -1, false)
	if got3 := RequiredChars(n3); len(got3) != 0 {
		t.Errorf("RequiredChars with min=0 should be empty, got %v", got3)
	}
}
