// Package parser implements a recursive-descent parser over the lexer's
// token stream, building an *ast.Node syntax tree.
//
// Grammar (highest to lowest precedence):
//
//	atom      := literal | '.' | charclass | group | anchor | escapeclass
//	group     := '(' ( '?:' )? expr ')'
//	postfix   := atom ( '*'|'+'|'?'|'{' n (',' m?)? '}' )? ( '?' )?
//	concat    := postfix*
//	expr      := concat ( '|' concat )*
package parser

import (
	"github.com/regjit/regjit/internal/ast"
	"github.com/regjit/regjit/internal/lexer"
)

// Parser turns a pattern into a syntax tree.
type Parser struct {
	lex *lexer.Lexer
	tok lexer.Token // one token of lookahead
}

// Parse parses pattern and returns its syntax tree, or a *SyntaxError.
func Parse(pattern string) (*ast.Node, error) {
	p := &Parser{lex: lexer.New(pattern)}
	p.advance()

	node, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != lexer.EOF {
		if p.tok.Kind == lexer.RParen {
			return nil, newErr(UnbalancedParenthesis, p.lex.Pos(), "unmatched ')'")
		}
		return nil, newErr(UnbalancedParenthesis, p.lex.Pos(), "unexpected trailing input")
	}
	return node, nil
}

func (p *Parser) advance() { p.tok = p.lex.Next() }

// expr := concat ('|' concat)*
func (p *Parser) expr() (*ast.Node, error) {
	first, err := p.concat()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != lexer.Pipe {
		return first, nil
	}

	alts := []*ast.Node{first}
	for p.tok.Kind == lexer.Pipe {
		p.advance()
		next, err := p.concat()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}
	return ast.NewAlternative(alts...), nil
}

// concat := postfix*  (zero postfixes is an empty Concat, which matches the
// empty string). An unquantified group's Concat is spliced into the
// enclosing sequence, and a sequence of exactly one node is returned as
// that node itself.
func (p *Parser) concat() (*ast.Node, error) {
	var children []*ast.Node
	for {
		switch p.tok.Kind {
		case lexer.EOF, lexer.Pipe, lexer.RParen:
			if len(children) == 1 {
				return children[0], nil
			}
			return ast.NewConcat(children...), nil
		}
		child, err := p.postfix()
		if err != nil {
			return nil, err
		}
		if child.Kind == ast.KindConcat {
			children = append(children, child.Children...)
			continue
		}
		children = append(children, child)
	}
}

// postfix := atom ( '*'|'+'|'?'|brace )? '?'?
func (p *Parser) postfix() (*ast.Node, error) {
	startPos := p.lex.Pos()
	switch p.tok.Kind {
	case lexer.Star, lexer.Plus, lexer.Question, lexer.LBrace:
		return nil, newErr(NothingToRepeat, startPos, "quantifier %s has no preceding atom", p.tok.Kind)
	}

	atomNode, err := p.atom()
	if err != nil {
		return nil, err
	}

	min, max, isQuant, err := p.maybeQuantifier()
	if err != nil {
		return nil, err
	}
	if !isQuant {
		return atomNode, nil
	}

	if atomNode.Kind == ast.KindAnchor {
		return nil, newErr(NothingToRepeat, startPos, "cannot quantify a zero-width assertion")
	}

	nonGreedy := false
	if p.tok.Kind == lexer.Question {
		nonGreedy = true
		p.advance()
	}

	// Stacked quantifiers: a**, a++, a{2}{3}, a?+, ...
	switch p.tok.Kind {
	case lexer.Star, lexer.Plus, lexer.Question, lexer.LBrace:
		return nil, newErr(MultipleRepeat, p.lex.Pos(), "quantifier applied to an already-quantified atom")
	}

	return ast.NewRepeat(atomNode, min, max, nonGreedy), nil
}

// maybeQuantifier consumes *ICE/+/?/{..} if present and returns (min, max, true)
// or (0, 0, false) if the current token is not a quantifier.
func (p *Parser) maybeQuantifier() (min, max int, isQuant bool, err error) {
	switch p.tok.Kind {
	case lexer.Star:
		p.advance()
		return 0, -1, true, nil
	case lexer.Plus:
		p.advance()
		return 1, -1, true, nil
	case lexer.Question:
		p.advance()
		return 0, 1, true, nil
	case lexer.LBrace:
		return p.braceQuantifier()
	default:
		return 0, 0, false, nil
	}
}

// braceQuantifier parses {n}, {n,}, or {n,m} after the opening '{' has
// already been peeked (not yet consumed).
func (p *Parser) braceQuantifier() (min, max int, isQuant bool, err error) {
	startPos := p.lex.Pos()
	p.advance() // consume '{'

	n, ok := p.digits()
	if !ok {
		return 0, 0, false, newErr(MalformedQuantifier, startPos, "expected a digit after '{'")
	}

	if p.tok.Kind == lexer.RBrace {
		p.advance()
		return n, n, true, nil
	}

	if p.tok.Kind != lexer.Comma {
		return 0, 0, false, newErr(MalformedQuantifier, startPos, "expected ',' or '}' in quantifier")
	}
	p.advance() // consume ','

	if p.tok.Kind == lexer.RBrace {
		p.advance()
		return n, -1, true, nil
	}

	m, ok := p.digits()
	if !ok {
		return 0, 0, false, newErr(MalformedQuantifier, startPos, "expected a digit after ','")
	}
	if p.tok.Kind != lexer.RBrace {
		return 0, 0, false, newErr(MalformedQuantifier, startPos, "unterminated '{' quantifier")
	}
	p.advance()

	if m < n {
		return 0, 0, false, newErr(MalformedQuantifier, startPos, "{%d,%d}: max < min", n, m)
	}
	return n, m, true, nil
}

// digits consumes one or more literal-digit tokens and returns their value.
func (p *Parser) digits() (int, bool) {
	if p.tok.Kind != lexer.Literal || p.tok.Byte < '0' || p.tok.Byte > '9' {
		return 0, false
	}
	n := 0
	for p.tok.Kind == lexer.Literal && p.tok.Byte >= '0' && p.tok.Byte <= '9' {
		n = n*10 + int(p.tok.Byte-'0')
		p.advance()
	}
	return n, true
}

// atom := literal | '.' | charclass | group | anchor | escapeclass
func (p *Parser) atom() (*ast.Node, error) {
	tok := p.tok
	pos := p.lex.Pos()

	switch tok.Kind {
	case lexer.Literal:
		p.advance()
		return ast.NewMatch(tok.Byte), nil
	case lexer.Dot:
		p.advance()
		return ast.NewDotClass(), nil
	case lexer.Caret:
		p.advance()
		return ast.NewAnchor(ast.Start), nil
	case lexer.Dollar:
		p.advance()
		return ast.NewAnchor(ast.End), nil
	case lexer.WordBoundary:
		p.advance()
		return ast.NewAnchor(ast.WordBoundary), nil
	case lexer.NonWordBoundary:
		p.advance()
		return ast.NewAnchor(ast.NonWordBoundary), nil
	case lexer.ClassDigit:
		p.advance()
		return ast.NewCharClass([]ast.Range{{Lo: '0', Hi: '9'}}, false), nil
	case lexer.ClassNonDigit:
		p.advance()
		return ast.NewCharClass([]ast.Range{{Lo: '0', Hi: '9'}}, true), nil
	case lexer.ClassWord:
		p.advance()
		return ast.NewCharClass(wordRanges, false), nil
	case lexer.ClassNonWord:
		p.advance()
		return ast.NewCharClass(wordRanges, true), nil
	case lexer.ClassSpace:
		p.advance()
		return ast.NewCharClass(spaceRanges, false), nil
	case lexer.ClassNonSpace:
		p.advance()
		return ast.NewCharClass(spaceRanges, true), nil
	case lexer.LBracket:
		return p.charClass()
	case lexer.LParen:
		return p.group()
	default:
		return nil, newErr(UnbalancedParenthesis, pos, "unexpected token %s", tok.Kind)
	}
}

// group := '(' ( '?:' )? expr ')'
// Capturing and non-capturing groups parse identically: no capture
// bookkeeping is performed anywhere in this engine.
func (p *Parser) group() (*ast.Node, error) {
	openPos := p.lex.Pos()
	p.advance() // consume '('

	if p.tok.Kind == lexer.Question {
		questionPos := p.lex.Pos()
		p.advance()
		if p.tok.Kind == lexer.Literal && p.tok.Byte == ':' {
			p.advance() // consume ':' - non-capturing group, parsed identically to a plain group
		} else {
			// Only "(?:" is recognized. Any other "(?..." has '?' as the
			// first atom of the group's body, which is itself invalid
			// since '?' has no preceding atom there.
			return nil, newErr(NothingToRepeat, questionPos, "quantifier ? has no preceding atom")
		}
	}

	inner, err := p.expr()
	if err != nil {
		return nil, err
	}

	if p.tok.Kind != lexer.RParen {
		return nil, newErr(UnbalancedParenthesis, openPos, "unclosed '('")
	}
	p.advance() // consume ')'
	return inner, nil
}

var wordRanges = []ast.Range{{Lo: '0', Hi: '9'}, {Lo: 'A', Hi: 'Z'}, {Lo: '_', Hi: '_'}, {Lo: 'a', Hi: 'z'}}
var spaceRanges = []ast.Range{{Lo: '\t', Hi: '\n'}, {Lo: '\f', Hi: '\r'}, {Lo: ' ', Hi: ' '}}
