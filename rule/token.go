package rule

import (
	"fmt"
	"sort"
)

// TokenKind identifies a token type. The engine treats kinds as opaque
// enumerated values; their meaning comes from the Vocabulary that maps
// terminal names to kinds.
type TokenKind int

// KindInvalid is returned by vocabulary lookups for unknown names.
const KindInvalid TokenKind = -1

// Kinds of the default vocabulary, used by the grammar notation itself.
const (
	// KindIdent is an identifier.
	KindIdent TokenKind = iota
	// KindField is the field sigil '$'.
	KindField
	// KindColon is ':'.
	KindColon
	// KindArrow is '=>'.
	KindArrow
	// KindComma is ','.
	KindComma
	// KindSemicolon is ';'.
	KindSemicolon
	// KindLBrace is '{'.
	KindLBrace
	// KindRBrace is '}'.
	KindRBrace
	// KindLParen is '('.
	KindLParen
	// KindRParen is ')'.
	KindRParen
	// KindDefine is ':='.
	KindDefine
	// KindEOF is end of input.
	KindEOF
)

// Pos is a position in source text. Offset, Line and Column are 0-based;
// String renders the conventional 1-based line:col form.
type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// Token is a single lexed token: a kind, the literal text it covers, and
// its source position. Tokens are immutable once produced; the engine only
// reads them and copies Literal into bound fields.
type Token struct {
	Kind    TokenKind
	Literal string
	Pos     Pos
}

// NewToken creates a new token.
func NewToken(kind TokenKind, literal string, pos Pos) Token {
	return Token{Kind: kind, Literal: literal, Pos: pos}
}

// Vocabulary maps terminal names to token kinds and back. The compiler uses
// it to decide whether a bare name in a grammar body is a terminal or a
// rule reference, and the engine uses it to render kinds in errors.
// A Vocabulary is immutable after construction.
type Vocabulary struct {
	kinds map[string]TokenKind
	names map[TokenKind]string
	eof   TokenKind
}

// NewVocabulary builds a vocabulary from a name→kind mapping. eofName must
// be present in the mapping; it designates the end-of-stream kind that
// terminates top-level parses.
func NewVocabulary(kinds map[string]TokenKind, eofName string) (Vocabulary, error) {
	eof, ok := kinds[eofName]
	if !ok {
		return Vocabulary{}, fmt.Errorf("vocabulary has no %q kind", eofName)
	}
	v := Vocabulary{
		kinds: make(map[string]TokenKind, len(kinds)),
		names: make(map[TokenKind]string, len(kinds)),
		eof:   eof,
	}
	for name, kind := range kinds {
		v.kinds[name] = kind
		v.names[kind] = name
	}
	return v, nil
}

// DefaultVocabulary returns the vocabulary of the grammar notation itself:
// Ident, FIELD, COLON, ARROW, COMMA, SEMICOLON, LBRACE, RBRACE, LPAREN,
// RPAREN, DEFINE and EOF.
func DefaultVocabulary() Vocabulary {
	v, err := NewVocabulary(map[string]TokenKind{
		"Ident":     KindIdent,
		"FIELD":     KindField,
		"COLON":     KindColon,
		"ARROW":     KindArrow,
		"COMMA":     KindComma,
		"SEMICOLON": KindSemicolon,
		"LBRACE":    KindLBrace,
		"RBRACE":    KindRBrace,
		"LPAREN":    KindLParen,
		"RPAREN":    KindRParen,
		"DEFINE":    KindDefine,
		"EOF":       KindEOF,
	}, "EOF")
	if err != nil {
		panic(err)
	}
	return v
}

// Kind returns the kind registered under name.
func (v Vocabulary) Kind(name string) (TokenKind, bool) {
	kind, ok := v.kinds[name]
	if !ok {
		return KindInvalid, false
	}
	return kind, true
}

// Contains returns true if name is a registered terminal name.
func (v Vocabulary) Contains(name string) bool {
	_, ok := v.kinds[name]
	return ok
}

// Name returns the terminal name registered for kind, or a numeric
// placeholder for unregistered kinds.
func (v Vocabulary) Name(kind TokenKind) string {
	if name, ok := v.names[kind]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(kind))
}

// EOF returns the designated end-of-stream kind.
func (v Vocabulary) EOF() TokenKind {
	return v.eof
}

// Names returns all registered terminal names, sorted.
func (v Vocabulary) Names() []string {
	names := make([]string, 0, len(v.kinds))
	for name := range v.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stream is an immutable, position-addressable token sequence with
// lookahead. Positions past the end yield a synthesized EOF token, so
// consumers never index out of range. A Stream carries no cursor; each
// parse invocation owns its own.
type Stream struct {
	vocab  Vocabulary
	tokens []Token
	eof    Token
}

// NewStream wraps tokens in a Stream. The token slice is copied; callers
// may reuse theirs. An explicit trailing EOF token is optional.
func NewStream(vocab Vocabulary, tokens []Token) *Stream {
	eofPos := Pos{}
	if n := len(tokens); n > 0 {
		last := tokens[n-1]
		eofPos = Pos{
			Offset: last.Pos.Offset + len(last.Literal),
			Line:   last.Pos.Line,
			Column: last.Pos.Column + len(last.Literal),
		}
	}
	return &Stream{
		vocab:  vocab,
		tokens: append([]Token(nil), tokens...),
		eof:    Token{Kind: vocab.EOF(), Pos: eofPos},
	}
}

// Len returns the number of explicit tokens in the stream.
func (s *Stream) Len() int {
	return len(s.tokens)
}

// At returns the token at index i, or a synthesized EOF token when i is
// past the end.
func (s *Stream) At(i int) Token {
	if i < 0 || i >= len(s.tokens) {
		return s.eof
	}
	return s.tokens[i]
}

// Vocabulary returns the vocabulary the stream was built against.
func (s *Stream) Vocabulary() Vocabulary {
	return s.vocab
}
