package parser

import "github.com/regjit/regjit/internal/ast"

// charClass parses the body of a '[...]' construct. The leading '[' token
// has already been consumed into p.tok; from here the lexer is driven by
// raw bytes since class content reinterprets '^' and '-' contextually,
// per spec §4.1.
func (p *Parser) charClass() (*ast.Node, error) {
	openPos := p.lex.Pos()

	negated := false
	if b, ok := p.lex.PeekByte(); ok && b == '^' {
		p.lex.NextByte()
		negated = true
	}

	var ranges []ast.Range
	first := true
	for {
		b, ok := p.lex.PeekByte()
		if !ok {
			return nil, newErr(UnclosedCharacterClass, openPos, "missing closing ']'")
		}
		if b == ']' {
			if first {
				return nil, newErr(UnterminatedCharacterSet, openPos, "empty character class")
			}
			p.lex.NextByte()
			break
		}
		first = false

		lo, err := p.classByte(openPos)
		if err != nil {
			return nil, err
		}

		if nb, ok := p.lex.PeekByte(); ok && nb == '-' {
			savedPos := p.lex.Pos()
			p.lex.NextByte() // tentatively consume '-'
			if nb2, ok2 := p.lex.PeekByte(); ok2 && nb2 != ']' {
				hi, err := p.classByte(openPos)
				if err != nil {
					return nil, err
				}
				if hi < lo {
					return nil, newErr(BadCharacterRange, openPos, "range %d-%d is reversed", lo, hi)
				}
				ranges = append(ranges, ast.Range{Lo: lo, Hi: hi})
				continue
			}
			// trailing '-' immediately before ']': a literal dash.
			p.lex.SetPos(savedPos)
		}
		ranges = append(ranges, ast.Range{Lo: lo, Hi: lo})
	}

	p.advance() // resynchronize the one-token lookahead past ']'
	return ast.NewCharClass(ranges, negated), nil
}

// classByte reads one (possibly escaped) byte from within a character
// class, using unsigned comparison semantics throughout so bytes with the
// high bit set (e.g. \x80-\xff) behave as plain 0..255 values.
func (p *Parser) classByte(openPos int) (byte, error) {
	b, ok := p.lex.NextByte()
	if !ok {
		return 0, newErr(UnclosedCharacterClass, openPos, "missing closing ']'")
	}
	if b != '\\' {
		return b, nil
	}
	nb, ok := p.lex.NextByte()
	if !ok {
		return 0, newErr(UnclosedCharacterClass, openPos, "trailing '\\' in character class")
	}
	switch nb {
	case 't':
		return '\t', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 'f':
		return '\f', nil
	case 'v':
		return '\v', nil
	case '0':
		return 0, nil
	default:
		return nb, nil
	}
}
