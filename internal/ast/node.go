// Package ast defines the regex syntax tree and the semantic predicates
// the code generator queries to pick a search plan.
package ast

// AnchorKind identifies a zero-width assertion.
type AnchorKind int

const (
	Start AnchorKind = iota
	End
	WordBoundary
	NonWordBoundary
)

// Range is an inclusive byte range within a CharClass.
type Range struct {
	Lo, Hi byte
}

// Node is the tagged union of syntax tree variants. Exactly one of the
// concrete fields is meaningful for a given Kind; this mirrors the
// teacher's preference for plain structs over an interface hierarchy.
type Node struct {
	Kind Kind

	// Match
	Byte byte

	// Concat, Alternative
	Children []*Node

	// Repeat
	Body      *Node
	Min       int
	Max       int // -1 means unbounded
	NonGreedy bool

	// CharClass
	Ranges   []Range
	Negated  bool
	DotClass bool

	// Anchor
	AnchorKind AnchorKind
}

// Kind discriminates Node variants.
type Kind int

const (
	KindMatch Kind = iota
	KindConcat
	KindAlternative
	KindRepeat
	KindCharClass
	KindAnchor
)

// NewMatch builds a single literal-byte node.
func NewMatch(b byte) *Node { return &Node{Kind: KindMatch, Byte: b} }

// NewConcat builds an ordered sequence node. An empty sequence is
// represented by an empty Concat (matches the empty string); the parser
// produces one for an empty group "()".
func NewConcat(children ...*Node) *Node {
	return &Node{Kind: KindConcat, Children: children}
}

// NewAlternative builds an ordered-choice node.
func NewAlternative(children ...*Node) *Node {
	return &Node{Kind: KindAlternative, Children: children}
}

// NewRepeat builds a quantifier node. max == -1 means unbounded.
func NewRepeat(body *Node, min, max int, nonGreedy bool) *Node {
	return &Node{Kind: KindRepeat, Body: body, Min: min, Max: max, NonGreedy: nonGreedy}
}

// NewCharClass builds a character class node.
func NewCharClass(ranges []Range, negated bool) *Node {
	return &Node{Kind: KindCharClass, Ranges: ranges, Negated: negated}
}

// NewDotClass builds the "." class: any byte except \n (10) and \r (13).
func NewDotClass() *Node {
	return &Node{
		Kind:     KindCharClass,
		Ranges:   []Range{{0, 9}, {11, 12}, {14, 255}},
		DotClass: true,
	}
}

// NewAnchor builds a zero-width assertion node.
func NewAnchor(kind AnchorKind) *Node { return &Node{Kind: KindAnchor, AnchorKind: kind} }
