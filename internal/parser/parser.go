// Package parser provides the bootstrap parser for grammar notation: it
// turns a token stream of declarations (`Name := body`) into the
// declaration AST the compiler consumes.
//
// Recognized body items:
//   - bare identifier: a terminal or rule reference
//   - `name:Rule` or `$name:Rule`: a named field capture
//   - `_`: consume one token, bind nothing
//   - `{ TERM => items; ... }`: an alternation block
//   - `(name:Rule, DELIM, TERM)`: a delimited list
//
// Lists of items stop at their terminator without consuming it, so a
// nested list's terminator can serve as the enclosing list's delimiter.
package parser

import (
	"log/slog"
	"strings"

	"github.com/metarule/metarule/internal/ast"
	"github.com/metarule/metarule/internal/types"
	"github.com/metarule/metarule/rule"
)

// Parser converts a declaration token stream into an ast.File.
type Parser struct {
	stream *rule.Stream
	vocab  rule.Vocabulary
	pos    int
	types.Logger
}

// New returns a Parser over the given stream. Pass nil for logger to
// disable logging.
func New(stream *rule.Stream, logger *slog.Logger) *Parser {
	p := &Parser{
		stream: stream,
		vocab:  stream.Vocabulary(),
		Logger: types.Logger{L: logger},
	}
	p.Log(slog.LevelDebug, "parser initialized", slog.Int("tokens", stream.Len()))
	return p
}

// ParseFile parses every declaration up to EOF.
func (p *Parser) ParseFile() (*ast.File, error) {
	file := &ast.File{}

	for {
		if p.check(rule.KindEOF) {
			break
		}
		def, err := p.parseDef()
		if err != nil {
			return nil, err
		}
		file.Defs = append(file.Defs, def)

		if p.check(rule.KindSemicolon) {
			p.advance()
			continue
		}
		if p.check(rule.KindEOF) {
			break
		}
		return nil, p.unexpected(p.vocab.Name(rule.KindEOF))
	}

	p.Log(slog.LevelDebug, "parsing complete", slog.Int("declarations", len(file.Defs)))
	return file, nil
}

func (p *Parser) parseDef() (*ast.Def, error) {
	name, err := p.expect(rule.KindIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(rule.KindDefine); err != nil {
		return nil, err
	}
	items, err := p.parseItems(rule.KindComma, rule.KindSemicolon)
	if err != nil {
		return nil, err
	}

	p.Log(slog.LevelDebug, "parsed declaration",
		slog.String("rule", name.Literal),
		slog.Int("items", len(items)))

	return &ast.Def{
		Name:    name.Literal,
		NamePos: name.Pos,
		Items:   items,
	}, nil
}

// parseItems parses delimiter-separated items and stops at the terminator
// without consuming it. A leading terminator yields an empty item list;
// a trailing delimiter before the terminator is accepted.
func (p *Parser) parseItems(delim, term rule.TokenKind) ([]ast.Item, error) {
	var items []ast.Item
	for {
		if p.check(term) {
			break
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		if p.check(delim) {
			p.advance()
			continue
		}
		if p.check(term) {
			break
		}
		return nil, p.unexpected(p.vocab.Name(term))
	}
	return items, nil
}

func (p *Parser) parseItem() (ast.Item, error) {
	tok := p.peek()
	switch tok.Kind {
	case rule.KindField:
		p.advance()
		return p.parseField(tok.Pos)

	case rule.KindIdent:
		if tok.Literal == "_" {
			p.advance()
			return &ast.DiscardItem{Pos: tok.Pos}, nil
		}
		if p.peekNth(1).Kind == rule.KindColon {
			return p.parseField(tok.Pos)
		}
		p.advance()
		return &ast.NameItem{Name: tok.Literal, Pos: tok.Pos}, nil

	case rule.KindLBrace:
		return p.parseBranch()

	case rule.KindLParen:
		return p.parseList()

	default:
		return nil, p.unexpected(strings.Join([]string{
			p.vocab.Name(rule.KindIdent),
			p.vocab.Name(rule.KindField),
			p.vocab.Name(rule.KindLBrace),
			p.vocab.Name(rule.KindLParen),
		}, ", "))
	}
}

// parseField parses `name:Rule`; the optional leading FIELD sigil has
// already been consumed by the caller.
func (p *Parser) parseField(start rule.Pos) (*ast.FieldItem, error) {
	name, err := p.expect(rule.KindIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(rule.KindColon); err != nil {
		return nil, err
	}
	ref, err := p.expect(rule.KindIdent)
	if err != nil {
		return nil, err
	}
	return &ast.FieldItem{
		Name:     name.Literal,
		RuleName: ref.Literal,
		RulePos:  ref.Pos,
		Pos:      start,
	}, nil
}

// parseBranch parses `{ TERM => items; ... }`. The arm list stops at the
// closing brace, which is then consumed here: the `_` of the notation's
// own Branch production.
func (p *Parser) parseBranch() (*ast.BranchItem, error) {
	open, err := p.expect(rule.KindLBrace)
	if err != nil {
		return nil, err
	}

	var arms []*ast.Arm
	for {
		if p.check(rule.KindRBrace) {
			break
		}
		arm, err := p.parseArm()
		if err != nil {
			return nil, err
		}
		arms = append(arms, arm)

		if p.check(rule.KindSemicolon) {
			p.advance()
			continue
		}
		if p.check(rule.KindRBrace) {
			break
		}
		return nil, p.unexpected(p.vocab.Name(rule.KindRBrace))
	}
	p.advance() // RBRACE

	return &ast.BranchItem{Arms: arms, Pos: open.Pos}, nil
}

func (p *Parser) parseArm() (*ast.Arm, error) {
	ahead, err := p.expect(rule.KindIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(rule.KindArrow); err != nil {
		return nil, err
	}
	items, err := p.parseItems(rule.KindComma, rule.KindSemicolon)
	if err != nil {
		return nil, err
	}
	return &ast.Arm{
		Ahead:    ahead.Literal,
		AheadPos: ahead.Pos,
		Items:    items,
	}, nil
}

// parseList parses `(name:Rule, DELIM, TERM)`.
func (p *Parser) parseList() (*ast.ListItem, error) {
	open, err := p.expect(rule.KindLParen)
	if err != nil {
		return nil, err
	}

	if p.check(rule.KindField) {
		p.advance()
	}
	name, err := p.expect(rule.KindIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(rule.KindColon); err != nil {
		return nil, err
	}
	elem, err := p.expect(rule.KindIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(rule.KindComma); err != nil {
		return nil, err
	}
	delim, err := p.expect(rule.KindIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(rule.KindComma); err != nil {
		return nil, err
	}
	term, err := p.expect(rule.KindIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(rule.KindRParen); err != nil {
		return nil, err
	}

	return &ast.ListItem{
		FieldName:     name.Literal,
		ElemName:      elem.Literal,
		ElemPos:       elem.Pos,
		Delimiter:     delim.Literal,
		DelimiterPos:  delim.Pos,
		Terminator:    term.Literal,
		TerminatorPos: term.Pos,
		Pos:           open.Pos,
	}, nil
}

func (p *Parser) peek() rule.Token {
	return p.stream.At(p.pos)
}

func (p *Parser) peekNth(n int) rule.Token {
	return p.stream.At(p.pos + n)
}

func (p *Parser) advance() rule.Token {
	tok := p.stream.At(p.pos)
	if p.pos < p.stream.Len() {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind rule.TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) expect(kind rule.TokenKind) (rule.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return rule.Token{}, p.unexpected(p.vocab.Name(kind))
}

func (p *Parser) unexpected(expected string) error {
	tok := p.peek()
	return &rule.UnexpectedTokenError{
		Expected: expected,
		Found:    p.vocab.Name(tok.Kind),
		Literal:  tok.Literal,
		Pos:      tok.Pos,
	}
}
