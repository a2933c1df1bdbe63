package rule

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoDeclarations is returned when a grammar source contains no rule
// declarations.
var ErrNoDeclarations = errors.New("no grammar declarations provided")

// Compile-time errors. All are fatal to compilation: no partial table is
// produced when any of them occurs.

// DuplicateRuleError reports a rule name declared more than once.
type DuplicateRuleError struct {
	Name string
	Pos  Pos
}

func (e *DuplicateRuleError) Error() string {
	return fmt.Sprintf("%s: rule %q is already declared", e.Pos, e.Name)
}

// UnknownRuleError reports a name that resolves to neither a vocabulary
// terminal nor a declared rule. Referrer is the rule whose body contains
// the reference.
type UnknownRuleError struct {
	Name     string
	Referrer string
	Pos      Pos
}

func (e *UnknownRuleError) Error() string {
	if e.Referrer == "" {
		return fmt.Sprintf("unknown rule %q", e.Name)
	}
	return fmt.Sprintf("%s: rule %s: %q is neither a terminal nor a declared rule", e.Pos, e.Referrer, e.Name)
}

// AmbiguousAlternationError reports two alternation arms sharing a leading
// terminal, which would defeat one-token-lookahead selection.
type AmbiguousAlternationError struct {
	Rule     string
	Terminal string
	Pos      Pos
}

func (e *AmbiguousAlternationError) Error() string {
	return fmt.Sprintf("%s: rule %s: two alternatives start with %s", e.Pos, e.Rule, e.Terminal)
}

// AmbiguousListError reports a list whose delimiter and terminator are the
// same terminal, leaving the engine unable to decide where the list ends.
type AmbiguousListError struct {
	Rule     string
	Terminal string
	Pos      Pos
}

func (e *AmbiguousListError) Error() string {
	return fmt.Sprintf("%s: rule %s: list delimiter and terminator are both %s", e.Pos, e.Rule, e.Terminal)
}

// DuplicateFieldError reports one rule body binding the same field name
// twice.
type DuplicateFieldError struct {
	Rule string
	Name string
	Pos  Pos
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("%s: rule %s: field %q bound twice", e.Pos, e.Rule, e.Name)
}

// Parse-time errors. All are value-returned and recoverable: a failed
// parse leaves no engine state behind and the same stream may be retried.

// UnexpectedTokenError reports a terminal mismatch: the parser wanted one
// kind and found another. The cursor is left where it was before the
// match attempt.
type UnexpectedTokenError struct {
	Expected string
	Found    string
	Literal  string
	Pos      Pos
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("%s: unexpected token: want %s but have %s %q", e.Pos, e.Expected, e.Found, e.Literal)
}

// NoMatchingVariantError reports an alternation whose arms all reject the
// lookahead token. Expected lists the arm terminals in declaration order.
type NoMatchingVariantError struct {
	Rule     string
	Expected []string
	Found    string
	Literal  string
	Pos      Pos
}

func (e *NoMatchingVariantError) Error() string {
	return fmt.Sprintf("%s: rule %s: expected one of %s but have %s %q",
		e.Pos, e.Rule, strings.Join(e.Expected, ", "), e.Found, e.Literal)
}

// MalformedListError reports a list element followed by neither the
// delimiter nor the terminator.
type MalformedListError struct {
	Rule       string
	Delimiter  string
	Terminator string
	Found      string
	Literal    string
	Pos        Pos
}

func (e *MalformedListError) Error() string {
	return fmt.Sprintf("%s: rule %s: expected %s or %s after list element but have %s %q",
		e.Pos, e.Rule, e.Delimiter, e.Terminator, e.Found, e.Literal)
}

// TrailingInputError reports tokens left over after the entry rule
// parsed successfully.
type TrailingInputError struct {
	Found   string
	Literal string
	Pos     Pos
}

func (e *TrailingInputError) Error() string {
	return fmt.Sprintf("%s: trailing input: %s %q after a complete parse", e.Pos, e.Found, e.Literal)
}

// RecursionLimitError reports rule recursion exceeding the configured
// depth limit.
type RecursionLimitError struct {
	Rule  string
	Limit int
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("rule %s: recursion depth exceeds limit %d", e.Rule, e.Limit)
}

// CancelledError reports a parse aborted by context cancellation. It wraps
// the context's error.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("parse cancelled: %v", e.Err)
}

func (e *CancelledError) Unwrap() error {
	return e.Err
}

// NoSuchFieldError reports access to a field name the node does not
// declare.
type NoSuchFieldError struct {
	Rule string
	Name string
}

func (e *NoSuchFieldError) Error() string {
	return fmt.Sprintf("rule %s: no field %q", e.Rule, e.Name)
}

// ScanError reports malformed grammar notation found while lexing.
type ScanError struct {
	Message string
	Pos     Pos
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// ParseError is a context frame attached as a failure propagates out of a
// rule: it names the rule without discarding the inner cause. Use
// errors.As to reach the innermost kind.
type ParseError struct {
	Rule string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.Rule, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
