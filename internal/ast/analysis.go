package ast

// IsZeroWidth reports whether n is treated as zero-width. True for Anchor
// and for any Repeat with Min == 0 (which may match without consuming a
// byte); false for Match and CharClass. A Concat or Alternative is
// zero-width only when every child is, and a Repeat with Min > 0 follows
// its body.
func IsZeroWidth(n *Node) bool {
	switch n.Kind {
	case KindAnchor:
		return true
	case KindMatch, KindCharClass:
		return false
	case KindConcat:
		for _, c := range n.Children {
			if !IsZeroWidth(c) {
				return false
			}
		}
		return true
	case KindAlternative:
		for _, c := range n.Children {
			if !IsZeroWidth(c) {
				return false
			}
		}
		return true
	case KindRepeat:
		if n.Min == 0 {
			return true
		}
		return IsZeroWidth(n.Body)
	default:
		return false
	}
}

// IsAnchoredAtStart reports whether every match path begins with a Start
// anchor. Concat defers to its first element, Alternative requires every
// branch, Repeat is conservatively false (spec §4.3).
func IsAnchoredAtStart(n *Node) bool {
	switch n.Kind {
	case KindAnchor:
		return n.AnchorKind == Start
	case KindConcat:
		if len(n.Children) == 0 {
			return false
		}
		return IsAnchoredAtStart(n.Children[0])
	case KindAlternative:
		if len(n.Children) == 0 {
			return false
		}
		for _, c := range n.Children {
			if !IsAnchoredAtStart(c) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ContainsZeroWidthRepeat reports whether the subtree contains a Repeat
// whose body is zero-width.
func ContainsZeroWidthRepeat(n *Node) bool {
	switch n.Kind {
	case KindRepeat:
		if IsZeroWidth(n.Body) {
			return true
		}
		return ContainsZeroWidthRepeat(n.Body)
	case KindConcat, KindAlternative:
		for _, c := range n.Children {
			if ContainsZeroWidthRepeat(c) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// LiteralPrefix returns the longest leading byte string of concatenated
// Match nodes, skipping anchors and halting at the first non-literal node.
func LiteralPrefix(n *Node) []byte {
	var out []byte
	collect := func(children []*Node) bool {
		for _, c := range children {
			switch c.Kind {
			case KindAnchor:
				continue
			case KindMatch:
				out = append(out, c.Byte)
			default:
				return false
			}
		}
		return true
	}

	switch n.Kind {
	case KindMatch:
		return []byte{n.Byte}
	case KindAnchor:
		return nil
	case KindConcat:
		collect(n.Children)
		return out
	default:
		return nil
	}
}

// IsPureLiteral reports whether the whole tree is a concatenation of
// literal bytes, ignoring anchors. Callers that need the BMH plan's naive
// substring search to actually be correct must additionally check
// ContainsAnchor: BMHSearch has no notion of ^/$/\b/\B, so a literal tree
// that also contains an anchor needs a plan that re-checks the anchor at
// each candidate offset (memchr/memchr-range/linear scan), not this one.
func IsPureLiteral(n *Node) bool {
	switch n.Kind {
	case KindMatch:
		return true
	case KindAnchor:
		return true
	case KindConcat:
		for _, c := range n.Children {
			if !IsPureLiteral(c) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ContainsAnchor reports whether the subtree contains any Anchor node
// (^, $, \b, \B) anywhere, including inside Concat/Alternative/Repeat.
func ContainsAnchor(n *Node) bool {
	switch n.Kind {
	case KindAnchor:
		return true
	case KindConcat, KindAlternative:
		for _, c := range n.Children {
			if ContainsAnchor(c) {
				return true
			}
		}
		return false
	case KindRepeat:
		return ContainsAnchor(n.Body)
	default:
		return false
	}
}

// SingleChar returns (byte, true) if n is exactly a Match node.
func SingleChar(n *Node) (byte, bool) {
	if n.Kind == KindMatch {
		return n.Byte, true
	}
	return 0, false
}

// RequiredChars returns the set of bytes that must appear in any accepted
// input: intersection across Alternative branches, empty for a Repeat with
// min=0, union across Concat (spec §4.3).
func RequiredChars(n *Node) map[byte]struct{} {
	switch n.Kind {
	case KindMatch:
		return map[byte]struct{}{n.Byte: {}}
	case KindAnchor:
		return map[byte]struct{}{}
	case KindCharClass:
		return map[byte]struct{}{}
	case KindConcat:
		out := map[byte]struct{}{}
		for _, c := range n.Children {
			for b := range RequiredChars(c) {
				out[b] = struct{}{}
			}
		}
		return out
	case KindAlternative:
		if len(n.Children) == 0 {
			return map[byte]struct{}{}
		}
		out := RequiredChars(n.Children[0])
		for _, c := range n.Children[1:] {
			next := RequiredChars(c)
			for b := range out {
				if _, ok := next[b]; !ok {
					delete(out, b)
				}
			}
		}
		return out
	case KindRepeat:
		if n.Min == 0 {
			return map[byte]struct{}{}
		}
		return RequiredChars(n.Body)
	default:
		return map[byte]struct{}{}
	}
}
