package metarule

import (
	"context"
	"strings"
	"testing"
)

const benchGrammar = `
	Pair := key:Ident, COLON, value:Ident
	Block := LBRACE, (pairs:Pair, SEMICOLON, RBRACE), _
	Item := {
		Ident => pair:Pair;
		LBRACE => block:Block;
	}
	File := (items:Item, SEMICOLON, EOF)
`

func benchInput() []byte {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString("alpha:beta\n")
		b.WriteString("{\ngamma:delta\nepsilon:zeta\n}\n")
	}
	return []byte(b.String())
}

func BenchmarkCompile(b *testing.B) {
	source := []byte(benchGrammar)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		table, err := Compile(source)
		if err != nil {
			b.Fatalf("Compile failed: %v", err)
		}
		_ = table
	}
}

func BenchmarkParseText(b *testing.B) {
	table, err := Compile([]byte(benchGrammar))
	if err != nil {
		b.Fatalf("Compile failed: %v", err)
	}
	input := benchInput()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		node, err := ParseText(ctx, table, input)
		if err != nil {
			b.Fatalf("ParseText failed: %v", err)
		}
		_ = node
	}
}
