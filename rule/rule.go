// Package rule provides the compiled grammar model: token streams, rule
// tables, parsed AST nodes and the error taxonomy shared by the compiler
// and the engine.
package rule

import (
	"strings"
)

// Rule is one compiled grammar production. The variant set is closed;
// every implementation lives in this package so the engine can dispatch
// exhaustively.
type Rule interface {
	rule()
	// Describe renders the rule in grammar notation, for diagnostics
	// and table dumps.
	Describe() string
}

// Terminal matches exactly one token of Kind. Name is the vocabulary name
// the grammar referenced it by.
type Terminal struct {
	Name string
	Kind TokenKind
}

func (Terminal) rule()              {}
func (t Terminal) Describe() string { return t.Name }

// Discard consumes one token of any kind without binding it. It compiles
// from the `_` item.
type Discard struct{}

func (Discard) rule()            {}
func (Discard) Describe() string { return "_" }

// Ref is a by-name reference to another rule in the same table, resolved
// at compile time. Cycles are expressed through Refs, never through
// embedded ownership.
type Ref struct {
	Name string
}

func (Ref) rule()              {}
func (r Ref) Describe() string { return r.Name }

// Field is a named capture: Item's parse result is bound under Name in the
// enclosing node.
type Field struct {
	Name string
	Item Rule
}

func (Field) rule() {}
func (f Field) Describe() string {
	return f.Name + ":" + f.Item.Describe()
}

// Sequence matches its items in order. A failing item rewinds the cursor
// to the sequence start; no partial consumption survives.
type Sequence struct {
	Items []Rule
}

func (*Sequence) rule() {}
func (s *Sequence) Describe() string {
	parts := make([]string, len(s.Items))
	for i, item := range s.Items {
		parts[i] = item.Describe()
	}
	return strings.Join(parts, ", ")
}

// Arm is one alternative of an Alternation, keyed by its leading terminal.
type Arm struct {
	Ahead Terminal
	Body  *Sequence
}

// Alternation is a tagged union of arms. One token of lookahead selects
// the arm; the choice is committed, so a failure inside the selected arm
// is not retried against another.
type Alternation struct {
	Arms []Arm
}

func (*Alternation) rule() {}
func (a *Alternation) Describe() string {
	parts := make([]string, len(a.Arms))
	for i, arm := range a.Arms {
		parts[i] = arm.Ahead.Name + " => " + arm.Body.Describe()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// List matches Elem repeatedly, separated by Delimiter tokens, and stops
// at (without consuming) the Terminator token. The element values are
// bound as an ordered list under FieldName.
//
// Stopping at the terminator rather than one past it lets a nested list's
// terminator double as the enclosing list's delimiter.
type List struct {
	FieldName  string
	Elem       Rule
	Delimiter  Terminal
	Terminator Terminal
}

func (*List) rule() {}
func (l *List) Describe() string {
	return "(" + l.FieldName + ":" + l.Elem.Describe() + ", " +
		l.Delimiter.Name + ", " + l.Terminator.Name + ")"
}
