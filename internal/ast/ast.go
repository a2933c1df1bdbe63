// Package ast holds the declaration syntax tree produced by the bootstrap
// parser: the shape of a grammar source file before compilation into a
// rule table.
package ast

import (
	"github.com/metarule/metarule/rule"
)

// File is a whole grammar source: its declarations in source order.
type File struct {
	Defs []*Def
}

// Def is one `Name := body` declaration. Items are the comma-separated
// body items; an alternation block is a single BranchItem.
type Def struct {
	Name    string
	NamePos rule.Pos
	Items   []Item
}

// Item is one body item. The variant set is closed.
type Item interface {
	item()
	ItemPos() rule.Pos
}

// NameItem is a bare identifier: a terminal or a rule reference, resolved
// by the compiler.
type NameItem struct {
	Name string
	Pos  rule.Pos
}

func (*NameItem) item()                {}
func (n *NameItem) ItemPos() rule.Pos { return n.Pos }

// FieldItem is a named capture, written `name:Rule` or `$name:Rule`.
type FieldItem struct {
	Name     string
	RuleName string
	RulePos  rule.Pos
	Pos      rule.Pos
}

func (*FieldItem) item()                {}
func (f *FieldItem) ItemPos() rule.Pos { return f.Pos }

// DiscardItem is the `_` item: consume one token, bind nothing.
type DiscardItem struct {
	Pos rule.Pos
}

func (*DiscardItem) item()                {}
func (d *DiscardItem) ItemPos() rule.Pos { return d.Pos }

// BranchItem is an alternation block `{ TERM => items; ... }`.
type BranchItem struct {
	Arms []*Arm
	Pos  rule.Pos
}

func (*BranchItem) item()                {}
func (b *BranchItem) ItemPos() rule.Pos { return b.Pos }

// Arm is one alternative of a BranchItem, keyed by the terminal name
// before the arrow.
type Arm struct {
	Ahead    string
	AheadPos rule.Pos
	Items    []Item
}

// ListItem is a delimited repetition `(name:Rule, DELIM, TERM)`.
type ListItem struct {
	FieldName     string
	ElemName      string
	ElemPos       rule.Pos
	Delimiter     string
	DelimiterPos  rule.Pos
	Terminator    string
	TerminatorPos rule.Pos
	Pos           rule.Pos
}

func (*ListItem) item()                {}
func (l *ListItem) ItemPos() rule.Pos { return l.Pos }
