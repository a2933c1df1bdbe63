package parser

import (
	"testing"

	"github.com/metarule/metarule/internal/ast"
	"github.com/metarule/metarule/internal/lexer"
	"github.com/metarule/metarule/internal/testutil"
	"github.com/metarule/metarule/rule"
)

func parseSource(t *testing.T, source string) *ast.File {
	t.Helper()
	tokens, err := lexer.New([]byte(source), nil).Tokenize()
	testutil.NoError(t, err, "tokenize")
	file, err := New(rule.NewStream(rule.DefaultVocabulary(), tokens), nil).ParseFile()
	testutil.NoError(t, err, "parse")
	return file
}

func parseError(t *testing.T, source string) error {
	t.Helper()
	tokens, err := lexer.New([]byte(source), nil).Tokenize()
	testutil.NoError(t, err, "tokenize")
	_, err = New(rule.NewStream(rule.DefaultVocabulary(), tokens), nil).ParseFile()
	testutil.Error(t, err, "expected parse failure")
	return err
}

func TestEmptyFile(t *testing.T) {
	file := parseSource(t, "")
	testutil.Len(t, file.Defs, 0, "no declarations")
}

func TestBareNames(t *testing.T) {
	file := parseSource(t, "Pair := Ident, COLON, Ident")
	testutil.Len(t, file.Defs, 1, "declarations")

	def := file.Defs[0]
	testutil.Equal(t, "Pair", def.Name, "rule name")
	testutil.Len(t, def.Items, 3, "items")

	name, ok := def.Items[0].(*ast.NameItem)
	testutil.True(t, ok, "expected NameItem, got %T", def.Items[0])
	testutil.Equal(t, "Ident", name.Name, "first item name")
}

func TestFieldCapture(t *testing.T) {
	file := parseSource(t, "Pair := key:Ident, COLON, value:Ident")
	def := file.Defs[0]
	testutil.Len(t, def.Items, 3, "items")

	key, ok := def.Items[0].(*ast.FieldItem)
	testutil.True(t, ok, "expected FieldItem, got %T", def.Items[0])
	testutil.Equal(t, "key", key.Name, "field name")
	testutil.Equal(t, "Ident", key.RuleName, "field rule")

	value, ok := def.Items[2].(*ast.FieldItem)
	testutil.True(t, ok, "expected FieldItem, got %T", def.Items[2])
	testutil.Equal(t, "value", value.Name, "field name")
}

func TestFieldCaptureWithSigil(t *testing.T) {
	file := parseSource(t, "Pair := $key:Ident")
	field, ok := file.Defs[0].Items[0].(*ast.FieldItem)
	testutil.True(t, ok, "expected FieldItem, got %T", file.Defs[0].Items[0])
	testutil.Equal(t, "key", field.Name, "field name")
	testutil.Equal(t, "Ident", field.RuleName, "field rule")
}

func TestDiscardItem(t *testing.T) {
	file := parseSource(t, "Block := LBRACE, _, RBRACE")
	_, ok := file.Defs[0].Items[1].(*ast.DiscardItem)
	testutil.True(t, ok, "expected DiscardItem, got %T", file.Defs[0].Items[1])
}

func TestBranch(t *testing.T) {
	file := parseSource(t, `Value := {
		Ident => name:Ident;
		LPAREN => list:Group;
	}`)
	branch, ok := file.Defs[0].Items[0].(*ast.BranchItem)
	testutil.True(t, ok, "expected BranchItem, got %T", file.Defs[0].Items[0])
	testutil.Len(t, branch.Arms, 2, "arms")
	testutil.Equal(t, "Ident", branch.Arms[0].Ahead, "first arm selector")
	testutil.Equal(t, "LPAREN", branch.Arms[1].Ahead, "second arm selector")
	testutil.Len(t, branch.Arms[1].Items, 1, "second arm items")
}

func TestBranchArmSemicolonCompletion(t *testing.T) {
	// The newline after the arm body completes its semicolon.
	file := parseSource(t, "Value := { Ident => name:Ident\n}")
	branch, ok := file.Defs[0].Items[0].(*ast.BranchItem)
	testutil.True(t, ok, "expected BranchItem, got %T", file.Defs[0].Items[0])
	testutil.Len(t, branch.Arms, 1, "arms")
}

func TestEmptyBranchArm(t *testing.T) {
	file := parseSource(t, "Opt := { SEMICOLON => ; Ident => name:Ident; }")
	branch := file.Defs[0].Items[0].(*ast.BranchItem)
	testutil.Len(t, branch.Arms, 2, "arms")
	testutil.Len(t, branch.Arms[0].Items, 0, "empty arm body")
}

func TestList(t *testing.T) {
	file := parseSource(t, "File := (defs:Def, SEMICOLON, EOF)")
	list, ok := file.Defs[0].Items[0].(*ast.ListItem)
	testutil.True(t, ok, "expected ListItem, got %T", file.Defs[0].Items[0])
	testutil.Equal(t, "defs", list.FieldName, "field name")
	testutil.Equal(t, "Def", list.ElemName, "element rule")
	testutil.Equal(t, "SEMICOLON", list.Delimiter, "delimiter")
	testutil.Equal(t, "EOF", list.Terminator, "terminator")
}

func TestListWithSigil(t *testing.T) {
	file := parseSource(t, "File := ($defs:Def, SEMICOLON, EOF)")
	list, ok := file.Defs[0].Items[0].(*ast.ListItem)
	testutil.True(t, ok, "expected ListItem, got %T", file.Defs[0].Items[0])
	testutil.Equal(t, "defs", list.FieldName, "field name")
}

func TestMultipleDeclarations(t *testing.T) {
	file := parseSource(t, `
		Pair := key:Ident, COLON, value:Ident
		File := (pairs:Pair, SEMICOLON, EOF)
	`)
	testutil.Len(t, file.Defs, 2, "declarations")
	testutil.Equal(t, "Pair", file.Defs[0].Name, "first declaration")
	testutil.Equal(t, "File", file.Defs[1].Name, "second declaration")
}

func TestTrailingComma(t *testing.T) {
	file := parseSource(t, "Pair := key:Ident, COLON,;")
	testutil.Len(t, file.Defs[0].Items, 2, "trailing delimiter accepted")
}

func TestMissingDefine(t *testing.T) {
	err := parseError(t, "Pair key:Ident")
	var unexpected *rule.UnexpectedTokenError
	testutil.ErrorAs(t, err, &unexpected, "missing :=")
	testutil.Equal(t, "DEFINE", unexpected.Expected, "expected kind")
}

func TestMissingArrow(t *testing.T) {
	err := parseError(t, "Value := { Ident name:Ident }")
	var unexpected *rule.UnexpectedTokenError
	testutil.ErrorAs(t, err, &unexpected, "missing =>")
	testutil.Equal(t, "ARROW", unexpected.Expected, "expected kind")
}

func TestMalformedList(t *testing.T) {
	err := parseError(t, "File := (defs:Def, SEMICOLON)")
	var unexpected *rule.UnexpectedTokenError
	testutil.ErrorAs(t, err, &unexpected, "list needs delimiter and terminator")
}
