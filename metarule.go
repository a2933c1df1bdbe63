package metarule

import (
	"context"
	"errors"
	"log/slog"

	"github.com/metarule/metarule/internal/compiler"
	"github.com/metarule/metarule/internal/interp"
	"github.com/metarule/metarule/internal/lexer"
	"github.com/metarule/metarule/internal/parser"
	"github.com/metarule/metarule/rule"
)

// ErrNoDeclarations is returned when Compile is given a grammar with no
// declarations.
var ErrNoDeclarations = rule.ErrNoDeclarations

// LevelTrace is a custom log level more verbose than Debug.
// Use for per-item iteration logging (tokens, rule dispatch, list elements).
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = slog.Level(-8)

// DefaultMaxDepth is the rule recursion limit applied when WithMaxDepth is
// not given.
const DefaultMaxDepth = interp.DefaultMaxDepth

// Option configures Compile, CompileTokens, Parse and ParseText.
type Option func(*config)

type config struct {
	logger   *slog.Logger
	vocab    *rule.Vocabulary
	entry    string
	maxDepth int
}

// WithLogger sets the logger for debug/trace output.
// If not set, no logging occurs (zero overhead).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithVocabulary sets the terminal vocabulary the grammar's bare names are
// resolved against. If not set, CompileTokens uses the stream's own
// vocabulary and Compile uses the notation's default vocabulary.
func WithVocabulary(vocab rule.Vocabulary) Option {
	return func(c *config) { c.vocab = &vocab }
}

// WithEntry sets the rule a parse starts from, overriding the table's
// default (a rule named "File" when declared, else the first declaration).
func WithEntry(name string) Option {
	return func(c *config) { c.entry = name }
}

// WithMaxDepth bounds rule recursion during a parse. Values <= 0 fall back
// to DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(c *config) { c.maxDepth = n }
}

// Compile lexes grammar notation source text and compiles it into an
// immutable rule table.
//
// Example:
//
//	table, err := metarule.Compile([]byte(`
//	    Pair := key:Ident, COLON, value:Ident
//	    File := (pairs:Pair, SEMICOLON, EOF)
//	`))
func Compile(source []byte, opts ...Option) (*rule.Table, error) {
	cfg := applyOptions(opts)

	tokens, err := lexer.New(source, cfg.logger).Tokenize()
	if err != nil {
		return nil, err
	}
	stream := rule.NewStream(rule.DefaultVocabulary(), tokens)
	return compileStream(stream, cfg)
}

// CompileTokens compiles an already-tokenized grammar. The stream must use
// the notation's default token kinds; the vocabulary the compiled rules
// resolve terminals against defaults to the stream's and can be overridden
// with WithVocabulary, which is how a grammar for a foreign token set is
// built.
func CompileTokens(stream *rule.Stream, opts ...Option) (*rule.Table, error) {
	return compileStream(stream, applyOptions(opts))
}

func compileStream(stream *rule.Stream, cfg config) (*rule.Table, error) {
	file, err := parser.New(stream, cfg.logger).ParseFile()
	if err != nil {
		return nil, err
	}

	vocab := stream.Vocabulary()
	if cfg.vocab != nil {
		vocab = *cfg.vocab
	}
	return compiler.Compile(file, vocab, cfg.entry, cfg.logger)
}

// Parse runs the table's rules over the stream and returns the bound root
// node. The table is only read: any number of Parse calls may run
// concurrently over the same table. The context is checked at sequence and
// list boundaries; cancellation surfaces as a CancelledError.
func Parse(ctx context.Context, table *rule.Table, stream *rule.Stream, opts ...Option) (*rule.Node, error) {
	cfg := applyOptions(opts)
	return interp.Run(ctx, table, cfg.entry, stream, interp.Options{
		MaxDepth: cfg.maxDepth,
		Logger:   cfg.logger,
	})
}

// ParseText lexes source with the notation's lexer and parses it with the
// table's rules. It only suits tables compiled against the default
// vocabulary; streams of foreign tokens go through Parse.
func ParseText(ctx context.Context, table *rule.Table, source []byte, opts ...Option) (*rule.Node, error) {
	cfg := applyOptions(opts)

	tokens, err := lexer.New(source, cfg.logger).Tokenize()
	if err != nil {
		return nil, err
	}
	stream := rule.NewStream(table.Vocabulary(), tokens)
	return interp.Run(ctx, table, cfg.entry, stream, interp.Options{
		MaxDepth: cfg.maxDepth,
		Logger:   cfg.logger,
	})
}

func applyOptions(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// IsCancelled reports whether err stems from context cancellation during a
// parse.
func IsCancelled(err error) bool {
	var cancelled *rule.CancelledError
	return errors.As(err, &cancelled)
}
