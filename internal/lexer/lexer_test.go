package lexer

import (
	"testing"

	"github.com/metarule/metarule/internal/testutil"
	"github.com/metarule/metarule/rule"
)

func tokenKinds(source string) []rule.TokenKind {
	lexer := New([]byte(source), nil)
	tokens, _ := lexer.Tokenize()
	kinds := make([]rule.TokenKind, len(tokens))
	for i, t := range tokens {
		kinds[i] = t.Kind
	}
	return kinds
}

func tokenTexts(source string) []string {
	lexer := New([]byte(source), nil)
	tokens, _ := lexer.Tokenize()
	var texts []string
	for _, t := range tokens {
		if t.Kind != rule.KindEOF {
			texts = append(texts, t.Literal)
		}
	}
	return texts
}

func TestEmptyInput(t *testing.T) {
	kinds := tokenKinds("")
	testutil.SliceEqual(t, []rule.TokenKind{rule.KindEOF}, kinds, "empty input")
}

func TestPunctuation(t *testing.T) {
	kinds := tokenKinds("$ , ; { ( :")
	expected := []rule.TokenKind{
		rule.KindField, rule.KindComma, rule.KindSemicolon,
		rule.KindLBrace, rule.KindLParen, rule.KindColon,
		rule.KindEOF,
	}
	testutil.SliceEqual(t, expected, kinds, "token kinds")
}

func TestOperators(t *testing.T) {
	kinds := tokenKinds(":= => :")
	expected := []rule.TokenKind{
		rule.KindDefine, rule.KindArrow, rule.KindColon, rule.KindEOF,
	}
	testutil.SliceEqual(t, expected, kinds, "token kinds")
}

func TestIdentifiers(t *testing.T) {
	texts := tokenTexts("File name _tmp x9")
	testutil.SliceEqual(t, []string{"File", "name", "_tmp", "x9"}, texts, "token texts")
}

func TestSemicolonCompletionAtNewline(t *testing.T) {
	kinds := tokenKinds("A := B\nC := D\n")
	expected := []rule.TokenKind{
		rule.KindIdent, rule.KindDefine, rule.KindIdent, rule.KindSemicolon,
		rule.KindIdent, rule.KindDefine, rule.KindIdent, rule.KindSemicolon,
		rule.KindEOF,
	}
	testutil.SliceEqual(t, expected, kinds, "completed kinds")
}

func TestSemicolonCompletionAtEOF(t *testing.T) {
	kinds := tokenKinds("A := B")
	expected := []rule.TokenKind{
		rule.KindIdent, rule.KindDefine, rule.KindIdent, rule.KindSemicolon,
		rule.KindEOF,
	}
	testutil.SliceEqual(t, expected, kinds, "completed kinds")
}

func TestSemicolonCompletionAfterClosers(t *testing.T) {
	kinds := tokenKinds("A := (x:B, COMMA, EOF)\n")
	testutil.Equal(t, rule.KindSemicolon, kinds[len(kinds)-2], "after RPAREN")

	kinds = tokenKinds("A := { B => C; }\n")
	testutil.Equal(t, rule.KindSemicolon, kinds[len(kinds)-2], "after RBRACE")
}

func TestNoCompletionAfterOperator(t *testing.T) {
	kinds := tokenKinds("A :=\nB")
	expected := []rule.TokenKind{
		rule.KindIdent, rule.KindDefine, rule.KindIdent, rule.KindSemicolon,
		rule.KindEOF,
	}
	testutil.SliceEqual(t, expected, kinds, "no semicolon after :=")
}

func TestNoCompletionOnBlankLine(t *testing.T) {
	kinds := tokenKinds("A := B\n\n\nC := D")
	count := 0
	for _, k := range kinds {
		if k == rule.KindSemicolon {
			count++
		}
	}
	testutil.Equal(t, 2, count, "one semicolon per declaration")
}

func TestLineComment(t *testing.T) {
	kinds := tokenKinds("A := B // trailing comment\nC := D")
	expected := []rule.TokenKind{
		rule.KindIdent, rule.KindDefine, rule.KindIdent, rule.KindSemicolon,
		rule.KindIdent, rule.KindDefine, rule.KindIdent, rule.KindSemicolon,
		rule.KindEOF,
	}
	testutil.SliceEqual(t, expected, kinds, "comment stripped, semicolon kept")
}

func TestBlockComment(t *testing.T) {
	texts := tokenTexts("A /* skip\nall this */ B")
	testutil.SliceEqual(t, []string{"A", "B"}, texts, "block comment stripped")
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, err := New([]byte("A := B /* never closed"), nil).Tokenize()
	var scanErr *rule.ScanError
	testutil.ErrorAs(t, err, &scanErr, "unterminated block comment")
	testutil.Contains(t, scanErr.Message, "unterminated", "message")
}

func TestBareEquals(t *testing.T) {
	_, err := New([]byte("A = B"), nil).Tokenize()
	var scanErr *rule.ScanError
	testutil.ErrorAs(t, err, &scanErr, "bare '='")
}

func TestUnexpectedCharacter(t *testing.T) {
	_, err := New([]byte("A := #"), nil).Tokenize()
	var scanErr *rule.ScanError
	testutil.ErrorAs(t, err, &scanErr, "unexpected character")
}

func TestPositions(t *testing.T) {
	tokens, err := New([]byte("A := B\nCc := D"), nil).Tokenize()
	testutil.NoError(t, err, "tokenize")

	testutil.Equal(t, rule.Pos{Offset: 0, Line: 0, Column: 0}, tokens[0].Pos, "first ident")
	testutil.Equal(t, "1:1", tokens[0].Pos.String(), "rendered 1-based")

	// "Cc" starts the second line.
	testutil.Equal(t, rule.Pos{Offset: 7, Line: 1, Column: 0}, tokens[4].Pos, "second line ident")
	testutil.Equal(t, "Cc", tokens[4].Literal, "second line literal")
}
