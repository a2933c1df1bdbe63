// Package lexer tokenizes grammar notation source text into the default
// vocabulary's token kinds.
//
// The notation follows the usual layout conventions: `//` line comments,
// `/* */` block comments, and automatic semicolon completion at a newline
// (or end of input) after an identifier, `}` or `)`, so declarations do not
// need explicit trailing semicolons.
package lexer

import (
	"fmt"
	"log/slog"

	"github.com/metarule/metarule/internal/types"
	"github.com/metarule/metarule/rule"
)

// Lexer tokenizes grammar notation source text.
type Lexer struct {
	source []byte
	pos    rule.Pos
	// completeSemicolon is set after tokens that may end a declaration
	// line; the next newline then yields a SEMICOLON token.
	completeSemicolon bool
	types.Logger
}

// New returns a Lexer over the given source bytes. Pass nil for logger to
// disable logging.
func New(source []byte, logger *slog.Logger) *Lexer {
	l := &Lexer{
		source: source,
		Logger: types.Logger{L: logger},
	}
	l.Log(slog.LevelDebug, "lexer initialized", slog.Int("bytes", len(source)))
	return l
}

// Tokenize consumes all source text and returns the token stream, ending
// with an explicit EOF token. It stops at the first malformed input with a
// ScanError.
func (l *Lexer) Tokenize() ([]rule.Token, error) {
	estimated := max(len(l.source)/4, 16)
	tokens := make([]rule.Token, 0, estimated)
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == rule.KindEOF {
			break
		}
	}
	l.Log(slog.LevelDebug, "tokenization complete", slog.Int("tokens", len(tokens)))
	return tokens, nil
}

func (l *Lexer) isEOF() bool {
	return l.pos.Offset >= len(l.source)
}

func (l *Lexer) peek() (byte, bool) {
	if l.isEOF() {
		return 0, false
	}
	return l.source[l.pos.Offset], true
}

func (l *Lexer) peekAt(offset int) (byte, bool) {
	idx := l.pos.Offset + offset
	if idx >= len(l.source) {
		return 0, false
	}
	return l.source[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isEOF() {
		return 0, false
	}
	b := l.source[l.pos.Offset]
	l.pos.Offset++
	if b == '\n' {
		l.pos.Line++
		l.pos.Column = 0
	} else {
		l.pos.Column++
	}
	return b, true
}

func (l *Lexer) token(kind rule.TokenKind, start rule.Pos) rule.Token {
	tok := rule.Token{
		Kind:    kind,
		Literal: string(l.source[start.Offset:l.pos.Offset]),
		Pos:     start,
	}
	if l.TraceEnabled() {
		l.Trace("token",
			slog.Int("kind", int(tok.Kind)),
			slog.String("literal", tok.Literal),
			slog.Int("offset", start.Offset))
	}
	return tok
}

func (l *Lexer) scanError(pos rule.Pos, format string, args ...any) error {
	return &rule.ScanError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// NextToken advances the lexer and returns the next token. Returns an EOF
// token once all input is consumed.
func (l *Lexer) NextToken() (rule.Token, error) {
	for {
		start := l.pos

		b, ok := l.peek()
		if !ok {
			if l.completeSemicolon {
				l.completeSemicolon = false
				return rule.Token{Kind: rule.KindSemicolon, Literal: ";", Pos: start}, nil
			}
			return rule.Token{Kind: rule.KindEOF, Pos: start}, nil
		}

		switch b {
		case ' ', '\t', '\r':
			l.advance()
			continue

		case '\n':
			l.advance()
			if l.completeSemicolon {
				l.completeSemicolon = false
				return rule.Token{Kind: rule.KindSemicolon, Literal: ";", Pos: start}, nil
			}
			continue

		case '/':
			if err := l.skipComment(); err != nil {
				return rule.Token{}, err
			}
			continue

		case '$':
			l.advance()
			l.completeSemicolon = false
			return l.token(rule.KindField, start), nil

		case ':':
			l.advance()
			l.completeSemicolon = false
			if next, ok := l.peek(); ok && next == '=' {
				l.advance()
				return l.token(rule.KindDefine, start), nil
			}
			return l.token(rule.KindColon, start), nil

		case '=':
			l.advance()
			if next, ok := l.peek(); ok && next == '>' {
				l.advance()
				l.completeSemicolon = false
				return l.token(rule.KindArrow, start), nil
			}
			return rule.Token{}, l.scanError(start, "unexpected character '='")

		case ',':
			l.advance()
			l.completeSemicolon = false
			return l.token(rule.KindComma, start), nil

		case ';':
			l.advance()
			l.completeSemicolon = false
			return l.token(rule.KindSemicolon, start), nil

		case '{':
			l.advance()
			l.completeSemicolon = false
			return l.token(rule.KindLBrace, start), nil

		case '}':
			l.advance()
			l.completeSemicolon = true
			return l.token(rule.KindRBrace, start), nil

		case '(':
			l.advance()
			l.completeSemicolon = false
			return l.token(rule.KindLParen, start), nil

		case ')':
			l.advance()
			l.completeSemicolon = true
			return l.token(rule.KindRParen, start), nil
		}

		if isIdentStart(b) {
			return l.scanIdent(start), nil
		}

		l.advance()
		return rule.Token{}, l.scanError(start, "unexpected character %q", string(b))
	}
}

// skipComment consumes a `//` line comment (leaving the newline in place
// so semicolon completion still fires) or a `/* */` block comment.
func (l *Lexer) skipComment() error {
	start := l.pos
	l.advance()

	next, ok := l.peek()
	if !ok {
		return l.scanError(start, "unexpected character '/'")
	}

	switch next {
	case '/':
		for {
			b, ok := l.peek()
			if !ok || b == '\n' {
				return nil
			}
			l.advance()
		}

	case '*':
		l.advance()
		for {
			b, ok := l.advance()
			if !ok {
				return l.scanError(start, "unterminated block comment")
			}
			if b == '*' {
				if after, ok := l.peek(); ok && after == '/' {
					l.advance()
					return nil
				}
			}
		}

	default:
		return l.scanError(start, "unexpected character '/'")
	}
}

func (l *Lexer) scanIdent(start rule.Pos) rule.Token {
	l.advance()
	for {
		b, ok := l.peek()
		if !ok || !isIdentPart(b) {
			break
		}
		l.advance()
	}
	l.completeSemicolon = true
	return l.token(rule.KindIdent, start)
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}
