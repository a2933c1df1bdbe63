// Package compiler translates a declaration AST into an immutable rule
// table.
//
// Compilation is two-pass: every declaration name is registered before any
// body is compiled, so forward references and mutual recursion are legal.
// Name resolution checks the vocabulary first; a name that is neither a
// terminal nor a declared rule fails compilation. Compilation is pure: on
// any error no table is produced.
package compiler

import (
	"log/slog"

	"github.com/metarule/metarule/internal/ast"
	"github.com/metarule/metarule/internal/types"
	"github.com/metarule/metarule/rule"
)

// Compile builds a rule table from the declarations in file, resolving
// terminal names against vocab. entry names the default entry rule; when
// empty, a rule named "File" is preferred, falling back to the first
// declaration.
func Compile(file *ast.File, vocab rule.Vocabulary, entry string, logger *slog.Logger) (*rule.Table, error) {
	if len(file.Defs) == 0 {
		return nil, rule.ErrNoDeclarations
	}

	c := &compiler{
		vocab:    vocab,
		declared: make(map[string]*ast.Def, len(file.Defs)),
		Logger:   types.Logger{L: logger},
	}

	// Pass 1: register names.
	for _, def := range file.Defs {
		if _, ok := c.declared[def.Name]; ok {
			return nil, &rule.DuplicateRuleError{Name: def.Name, Pos: def.NamePos}
		}
		c.declared[def.Name] = def
		c.order = append(c.order, def.Name)
	}

	// Pass 2: compile bodies.
	rules := make(map[string]rule.Rule, len(file.Defs))
	for _, def := range file.Defs {
		compiled, err := c.compileDef(def)
		if err != nil {
			return nil, err
		}
		rules[def.Name] = compiled
		c.Log(slog.LevelDebug, "compiled rule",
			slog.String("rule", def.Name),
			slog.String("body", compiled.Describe()))
	}

	if entry == "" {
		entry = c.defaultEntry()
	} else if _, ok := c.declared[entry]; !ok {
		return nil, &rule.UnknownRuleError{Name: entry}
	}

	c.Log(slog.LevelDebug, "compilation complete",
		slog.Int("rules", len(rules)),
		slog.String("entry", entry))

	return rule.NewTable(vocab, rules, c.order, entry), nil
}

type compiler struct {
	vocab    rule.Vocabulary
	declared map[string]*ast.Def
	order    []string
	types.Logger
}

func (c *compiler) defaultEntry() string {
	if _, ok := c.declared["File"]; ok {
		return "File"
	}
	return c.order[0]
}

// compileDef compiles one declaration body. A body that is exactly one
// alternation block compiles to the Alternation itself; anything else
// compiles to a Sequence.
func (c *compiler) compileDef(def *ast.Def) (rule.Rule, error) {
	if len(def.Items) == 1 {
		if branch, ok := def.Items[0].(*ast.BranchItem); ok {
			return c.compileBranch(def.Name, branch)
		}
	}
	return c.compileSequence(def.Name, def.Items)
}

// compileSequence compiles an item list, enforcing field-name uniqueness
// within this one sequence. Alternation arms open their own field scope.
func (c *compiler) compileSequence(ruleName string, items []ast.Item) (*rule.Sequence, error) {
	seq := &rule.Sequence{Items: make([]rule.Rule, 0, len(items))}
	fields := make(map[string]bool)

	bind := func(name string, pos rule.Pos) error {
		if fields[name] {
			return &rule.DuplicateFieldError{Rule: ruleName, Name: name, Pos: pos}
		}
		fields[name] = true
		return nil
	}

	for _, item := range items {
		switch it := item.(type) {
		case *ast.NameItem:
			r, err := c.resolveName(ruleName, it.Name, it.Pos)
			if err != nil {
				return nil, err
			}
			seq.Items = append(seq.Items, r)

		case *ast.FieldItem:
			inner, err := c.resolveName(ruleName, it.RuleName, it.RulePos)
			if err != nil {
				return nil, err
			}
			if err := bind(it.Name, it.Pos); err != nil {
				return nil, err
			}
			seq.Items = append(seq.Items, rule.Field{Name: it.Name, Item: inner})

		case *ast.DiscardItem:
			seq.Items = append(seq.Items, rule.Discard{})

		case *ast.BranchItem:
			alt, err := c.compileBranch(ruleName, it)
			if err != nil {
				return nil, err
			}
			seq.Items = append(seq.Items, alt)

		case *ast.ListItem:
			l, err := c.compileList(ruleName, it)
			if err != nil {
				return nil, err
			}
			if err := bind(l.FieldName, it.Pos); err != nil {
				return nil, err
			}
			seq.Items = append(seq.Items, l)
		}
	}
	return seq, nil
}

// compileBranch compiles an alternation block, rejecting arms that share a
// leading terminal: one token of lookahead must select a unique arm.
func (c *compiler) compileBranch(ruleName string, branch *ast.BranchItem) (*rule.Alternation, error) {
	alt := &rule.Alternation{Arms: make([]rule.Arm, 0, len(branch.Arms))}
	seen := make(map[rule.TokenKind]bool)

	for _, arm := range branch.Arms {
		ahead, err := c.resolveTerminal(ruleName, arm.Ahead, arm.AheadPos)
		if err != nil {
			return nil, err
		}
		if seen[ahead.Kind] {
			return nil, &rule.AmbiguousAlternationError{
				Rule:     ruleName,
				Terminal: ahead.Name,
				Pos:      arm.AheadPos,
			}
		}
		seen[ahead.Kind] = true

		body, err := c.compileSequence(ruleName, arm.Items)
		if err != nil {
			return nil, err
		}
		alt.Arms = append(alt.Arms, rule.Arm{Ahead: ahead, Body: body})
	}
	return alt, nil
}

// compileList compiles a delimited repetition. Delimiter and terminator
// must be distinct terminals: if the delimiter could satisfy the
// terminator the engine could never decide where the list ends.
func (c *compiler) compileList(ruleName string, item *ast.ListItem) (*rule.List, error) {
	elem, err := c.resolveName(ruleName, item.ElemName, item.ElemPos)
	if err != nil {
		return nil, err
	}
	delim, err := c.resolveTerminal(ruleName, item.Delimiter, item.DelimiterPos)
	if err != nil {
		return nil, err
	}
	term, err := c.resolveTerminal(ruleName, item.Terminator, item.TerminatorPos)
	if err != nil {
		return nil, err
	}
	if delim.Kind == term.Kind {
		return nil, &rule.AmbiguousListError{
			Rule:     ruleName,
			Terminal: term.Name,
			Pos:      item.Pos,
		}
	}
	return &rule.List{
		FieldName:  item.FieldName,
		Elem:       elem,
		Delimiter:  delim,
		Terminator: term,
	}, nil
}

// resolveName resolves a bare name: vocabulary terminal first, then
// declared rule.
func (c *compiler) resolveName(ruleName, name string, pos rule.Pos) (rule.Rule, error) {
	if kind, ok := c.vocab.Kind(name); ok {
		return rule.Terminal{Name: name, Kind: kind}, nil
	}
	if _, ok := c.declared[name]; ok {
		return rule.Ref{Name: name}, nil
	}
	return nil, &rule.UnknownRuleError{Name: name, Referrer: ruleName, Pos: pos}
}

// resolveTerminal resolves a name that must be a terminal (an arm
// selector, list delimiter or list terminator).
func (c *compiler) resolveTerminal(ruleName, name string, pos rule.Pos) (rule.Terminal, error) {
	kind, ok := c.vocab.Kind(name)
	if !ok {
		return rule.Terminal{}, &rule.UnknownRuleError{Name: name, Referrer: ruleName, Pos: pos}
	}
	return rule.Terminal{Name: name, Kind: kind}, nil
}
