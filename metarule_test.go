package metarule

import (
	"context"
	"errors"
	"testing"

	"github.com/metarule/metarule/internal/testutil"
)

const pairsGrammar = `
	Pair := key:Ident, COLON, value:Ident
	File := (pairs:Pair, SEMICOLON, EOF)
`

func TestCompileAndParseText(t *testing.T) {
	table, err := Compile([]byte(pairsGrammar))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	testutil.Equal(t, 2, table.Len(), "rule count")
	testutil.Equal(t, "File", table.Entry(), "default entry")

	node, err := ParseText(context.Background(), table, []byte("host:web\nport:http"))
	if err != nil {
		t.Fatalf("ParseText failed: %v", err)
	}

	pairs, err := node.ListField("pairs")
	testutil.NoError(t, err, "pairs field")
	testutil.Len(t, pairs, 2, "pair count")

	first, ok := pairs[0].(*Node)
	testutil.True(t, ok, "expected node element, got %T", pairs[0])
	key, err := first.TextField("key")
	testutil.NoError(t, err, "key field")
	testutil.Equal(t, "host", key, "first key")
}

func TestCompileEmptyGrammar(t *testing.T) {
	_, err := Compile([]byte("// nothing but comments\n"))
	testutil.True(t, errors.Is(err, ErrNoDeclarations), "sentinel error")
}

func TestCompileScanError(t *testing.T) {
	_, err := Compile([]byte("A = B"))
	var scanErr *ScanError
	testutil.ErrorAs(t, err, &scanErr, "bare '=' rejected")
}

func TestCompileUnknownReference(t *testing.T) {
	_, err := Compile([]byte("A := b:Missing"))
	var unknown *UnknownRuleError
	testutil.ErrorAs(t, err, &unknown, "unknown reference")
	testutil.Equal(t, "Missing", unknown.Name, "name")
}

func TestWithEntry(t *testing.T) {
	table, err := Compile([]byte(pairsGrammar), WithEntry("Pair"))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	testutil.Equal(t, "Pair", table.Entry(), "entry override")

	_, err = Compile([]byte(pairsGrammar), WithEntry("Nope"))
	var unknown *UnknownRuleError
	testutil.ErrorAs(t, err, &unknown, "unknown entry")
}

func TestParseEntryOverride(t *testing.T) {
	table, err := Compile([]byte(pairsGrammar))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	// A bare pair is trailing input for File but a complete parse for Pair.
	stream := NewStream(DefaultVocabulary(), []Token{
		NewToken(KindIdent, "a", Pos{}),
		NewToken(KindColon, ":", Pos{Offset: 1}),
		NewToken(KindIdent, "b", Pos{Offset: 2}),
	})
	node, err := Parse(context.Background(), table, stream, WithEntry("Pair"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	testutil.Equal(t, "Pair", node.Rule(), "entry rule")
}

func TestWithMaxDepth(t *testing.T) {
	table, err := Compile([]byte(`Item := {
		LPAREN => LPAREN, inner:Item, RPAREN;
		Ident => name:Ident;
	}`))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	_, err = ParseText(context.Background(), table, []byte("(((((x"), WithMaxDepth(3))
	var limit *RecursionLimitError
	testutil.ErrorAs(t, err, &limit, "depth limit")
	testutil.Equal(t, 3, limit.Limit, "configured limit")
}

func TestWithVocabulary(t *testing.T) {
	// Compile a grammar whose terminals belong to a foreign token set, then
	// parse a hand-built stream of those tokens.
	const (
		kindWord TokenKind = iota
		kindSep
		kindEnd
	)
	vocab, err := NewVocabulary(map[string]TokenKind{
		"Word": kindWord,
		"Sep":  kindSep,
		"End":  kindEnd,
	}, "End")
	if err != nil {
		t.Fatalf("NewVocabulary failed: %v", err)
	}

	table, err := Compile([]byte("Words := (words:Word, Sep, End)"), WithVocabulary(vocab))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	stream := NewStream(vocab, []Token{
		NewToken(kindWord, "alpha", Pos{}),
		NewToken(kindSep, "|", Pos{}),
		NewToken(kindWord, "beta", Pos{}),
	})
	node, err := Parse(context.Background(), table, stream)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	words, err := node.ListField("words")
	testutil.NoError(t, err, "words field")
	testutil.Len(t, words, 2, "word count")
	testutil.Equal(t, "alpha", words[0].(Text).String(), "first word")
}

func TestIsCancelled(t *testing.T) {
	table, err := Compile([]byte(pairsGrammar))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ParseText(ctx, table, []byte("a:b"))
	testutil.True(t, IsCancelled(err), "cancellation detected")
	testutil.True(t, errors.Is(err, context.Canceled), "wraps context error")

	_, err = ParseText(context.Background(), table, []byte("a:"))
	testutil.False(t, IsCancelled(err), "ordinary failure is not cancellation")
}

func TestConcurrentParseText(t *testing.T) {
	table, err := Compile([]byte(pairsGrammar))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := ParseText(context.Background(), table, []byte("a:b\nc:d"))
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		testutil.NoError(t, <-done, "concurrent parse")
	}
}
