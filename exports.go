// Package metarule compiles grammar declarations into rule tables and
// parses token streams against them.
package metarule

import "github.com/metarule/metarule/rule"

// Type aliases for public API - all types come from the rule subpackage.

// Table is an immutable set of compiled rules.
type Table = rule.Table

// Rule is one compiled grammar rule.
type Rule = rule.Rule

// Node is a bound AST node produced by a parse.
type Node = rule.Node

// Value is a parse result bound into a node field: text, a node, or a list.
type Value = rule.Value

// Text is the literal text of a matched terminal.
type Text = rule.Text

// ValueList is an ordered sequence of list-rule results.
type ValueList = rule.ValueList

// Token is a single lexed token.
type Token = rule.Token

// TokenKind identifies a token type.
type TokenKind = rule.TokenKind

// Pos is a position in source text.
type Pos = rule.Pos

// Stream is an immutable, position-addressable token sequence.
type Stream = rule.Stream

// Vocabulary maps terminal names to token kinds and back.
type Vocabulary = rule.Vocabulary

// Kinds of the default vocabulary.
const (
	KindInvalid   = rule.KindInvalid
	KindIdent     = rule.KindIdent
	KindField     = rule.KindField
	KindColon     = rule.KindColon
	KindArrow     = rule.KindArrow
	KindComma     = rule.KindComma
	KindSemicolon = rule.KindSemicolon
	KindLBrace    = rule.KindLBrace
	KindRBrace    = rule.KindRBrace
	KindLParen    = rule.KindLParen
	KindRParen    = rule.KindRParen
	KindDefine    = rule.KindDefine
	KindEOF       = rule.KindEOF
)

// Stream and vocabulary constructors.
var (
	NewToken          = rule.NewToken
	NewStream         = rule.NewStream
	NewVocabulary     = rule.NewVocabulary
	DefaultVocabulary = rule.DefaultVocabulary
)

// Compile-time errors.
type (
	// DuplicateRuleError reports two declarations sharing a name.
	DuplicateRuleError = rule.DuplicateRuleError
	// UnknownRuleError reports a name that is neither a terminal nor a rule.
	UnknownRuleError = rule.UnknownRuleError
	// AmbiguousAlternationError reports alternation arms sharing a selector.
	AmbiguousAlternationError = rule.AmbiguousAlternationError
	// AmbiguousListError reports a list whose delimiter equals its terminator.
	AmbiguousListError = rule.AmbiguousListError
	// DuplicateFieldError reports two captures sharing a field name.
	DuplicateFieldError = rule.DuplicateFieldError
	// ScanError reports malformed grammar source text.
	ScanError = rule.ScanError
)

// Parse-time errors.
type (
	// UnexpectedTokenError reports a terminal mismatch.
	UnexpectedTokenError = rule.UnexpectedTokenError
	// NoMatchingVariantError reports that no alternation arm matched.
	NoMatchingVariantError = rule.NoMatchingVariantError
	// MalformedListError reports a token that is neither delimiter nor
	// terminator after a list element.
	MalformedListError = rule.MalformedListError
	// TrailingInputError reports leftover tokens after the entry rule.
	TrailingInputError = rule.TrailingInputError
	// RecursionLimitError reports that rule recursion exceeded the limit.
	RecursionLimitError = rule.RecursionLimitError
	// CancelledError reports context cancellation during a parse.
	CancelledError = rule.CancelledError
	// NoSuchFieldError reports access to a field a node does not declare.
	NoSuchFieldError = rule.NoSuchFieldError
	// ParseError is a rule-name context frame around a parse failure.
	ParseError = rule.ParseError
)
