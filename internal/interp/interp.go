// Package interp executes a compiled rule table as a recursive-descent
// parser over a token stream.
//
// The engine is deterministic one-token-lookahead: alternation arms are
// selected by peeking a single token and the choice is committed, never
// retried against another arm. Sequences are atomic: a failure rewinds
// the cursor to the sequence start, so no partial consumption leaks out.
// Lists stop at their terminator without consuming it.
//
// All state for one invocation lives in the machine; the table and stream
// are only read, so any number of invocations may run concurrently over
// the same table.
package interp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/metarule/metarule/internal/types"
	"github.com/metarule/metarule/rule"
)

// DefaultMaxDepth bounds rule recursion when no explicit limit is given.
// The grammar permits unbounded self-reference, so input nesting depth is
// the only natural bound; this guards the goroutine stack.
const DefaultMaxDepth = 10000

// Options configures one parse invocation.
type Options struct {
	// MaxDepth bounds rule recursion; <= 0 means DefaultMaxDepth.
	MaxDepth int
	// Logger enables debug/trace output; nil disables logging.
	Logger *slog.Logger
}

// Run parses the stream starting from the named entry rule and returns
// the bound root node. An empty entry name selects the table's default
// entry. After the entry rule succeeds the cursor must rest at the
// stream's EOF; leftover tokens fail with TrailingInputError.
func Run(ctx context.Context, table *rule.Table, entry string, stream *rule.Stream, opts Options) (*rule.Node, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if entry == "" {
		entry = table.Entry()
	}
	if _, ok := table.Rule(entry); !ok {
		return nil, &rule.UnknownRuleError{Name: entry}
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	m := &machine{
		ctx:      ctx,
		table:    table,
		stream:   stream,
		vocab:    table.Vocabulary(),
		maxDepth: maxDepth,
		Logger:   types.Logger{L: opts.Logger},
	}

	m.Log(slog.LevelDebug, "parse started",
		slog.String("entry", entry),
		slog.Int("tokens", stream.Len()))

	v, err := m.evalRule(entry)
	if err != nil {
		m.Log(slog.LevelDebug, "parse failed", slog.String("error", err.Error()))
		return nil, err
	}

	if tok := m.peek(); tok.Kind != m.vocab.EOF() {
		return nil, &rule.TrailingInputError{
			Found:   m.vocab.Name(tok.Kind),
			Literal: tok.Literal,
			Pos:     tok.Pos,
		}
	}

	root := asNode(entry, v)
	m.Log(slog.LevelDebug, "parse complete",
		slog.String("entry", entry),
		slog.Int("consumed", m.pos))
	return root, nil
}

// asNode converts the entry rule's value into a root node. Entry rules
// normally produce nodes already; a terminal-only entry yields its text.
func asNode(entry string, v rule.Value) *rule.Node {
	switch val := v.(type) {
	case *rule.Node:
		return val
	case rule.Text:
		b := rule.NewNodeBuilder(entry)
		b.SetText(val.String())
		return b.Build()
	default:
		return rule.NewNodeBuilder(entry).Build()
	}
}

// machine is the working state of one parse invocation: the cursor into
// the stream and the rule recursion depth. It is owned exclusively by the
// invocation and discarded when it returns.
type machine struct {
	ctx      context.Context
	table    *rule.Table
	stream   *rule.Stream
	vocab    rule.Vocabulary
	pos      int
	depth    int
	maxDepth int
	types.Logger
}

func (m *machine) peek() rule.Token {
	return m.stream.At(m.pos)
}

func (m *machine) advance() rule.Token {
	tok := m.stream.At(m.pos)
	if m.pos < m.stream.Len() {
		m.pos++
	}
	return tok
}

func (m *machine) checkCancel() error {
	if err := m.ctx.Err(); err != nil {
		return &rule.CancelledError{Err: err}
	}
	return nil
}

// wrap attaches a rule-name context frame without discarding the inner
// cause. Consecutive frames for the same rule collapse to one.
func (m *machine) wrap(name string, err error) error {
	if pe, ok := err.(*rule.ParseError); ok && pe.Rule == name {
		return err
	}
	return &rule.ParseError{Rule: name, Err: err}
}

// evalRule evaluates the named rule under the recursion guard.
func (m *machine) evalRule(name string) (rule.Value, error) {
	if m.depth >= m.maxDepth {
		return nil, &rule.RecursionLimitError{Rule: name, Limit: m.maxDepth}
	}
	m.depth++
	defer func() { m.depth-- }()

	if m.TraceEnabled() {
		m.Trace("rule",
			slog.String("name", name),
			slog.Int("cursor", m.pos),
			slog.Int("depth", m.depth))
	}

	r, _ := m.table.Rule(name)
	switch body := r.(type) {
	case *rule.Sequence:
		return m.evalSequence(name, body)
	case *rule.Alternation:
		return m.evalAlternation(name, body)
	default:
		return m.evalValue(name, r)
	}
}

// evalSequence evaluates items in order, collecting named captures into
// one node. On any failure the cursor is rewound to the sequence start
// and the inner error propagates with this rule's context attached.
//
// A sequence with captures produces a node of those fields. A sequence
// that binds nothing but produced exactly one value passes it through:
// that is how an alternation arm consisting of a single rule reference
// adopts the sub-rule's node.
func (m *machine) evalSequence(name string, seq *rule.Sequence) (rule.Value, error) {
	start := m.pos
	b := rule.NewNodeBuilder(name)
	var loose rule.Value
	looseCount := 0

	fail := func(err error) (rule.Value, error) {
		m.pos = start
		return nil, m.wrap(name, err)
	}

	for _, item := range seq.Items {
		if err := m.checkCancel(); err != nil {
			return fail(err)
		}

		switch it := item.(type) {
		case rule.Terminal:
			v, err := m.matchTerminal(it)
			if err != nil {
				return fail(err)
			}
			loose = v
			looseCount++

		case rule.Discard:
			m.advance()

		case rule.Field:
			v, err := m.evalValue(name, it.Item)
			if err != nil {
				return fail(err)
			}
			b.Bind(it.Name, v)

		case *rule.List:
			vl, err := m.evalList(name, it)
			if err != nil {
				return fail(err)
			}
			b.Bind(it.FieldName, vl)

		default:
			v, err := m.evalValue(name, item)
			if err != nil {
				return fail(err)
			}
			loose = v
			looseCount++
		}
	}

	if b.Len() > 0 {
		return b.Build(), nil
	}
	if looseCount == 1 {
		return loose, nil
	}
	return b.Build(), nil
}

// evalValue evaluates a rule position that yields a value: a terminal, a
// reference, or a nested form. name is the enclosing rule, for error
// context.
func (m *machine) evalValue(name string, r rule.Rule) (rule.Value, error) {
	switch it := r.(type) {
	case rule.Terminal:
		return m.matchTerminal(it)
	case rule.Ref:
		return m.evalRule(it.Name)
	case *rule.Sequence:
		return m.evalSequence(name, it)
	case *rule.Alternation:
		return m.evalAlternation(name, it)
	case *rule.List:
		return m.evalList(name, it)
	case rule.Discard:
		tok := m.advance()
		return rule.Text{Token: tok}, nil
	default:
		return nil, &rule.UnknownRuleError{Name: r.Describe(), Referrer: name}
	}
}

// matchTerminal consumes one token of the expected kind. On mismatch the
// cursor is unchanged.
func (m *machine) matchTerminal(t rule.Terminal) (rule.Value, error) {
	tok := m.peek()
	if tok.Kind != t.Kind {
		return nil, &rule.UnexpectedTokenError{
			Expected: t.Name,
			Found:    m.vocab.Name(tok.Kind),
			Literal:  tok.Literal,
			Pos:      tok.Pos,
		}
	}
	m.advance()
	return rule.Text{Token: tok}, nil
}

// evalAlternation selects an arm by one token of lookahead and commits to
// it: a failure inside the selected arm propagates instead of trying
// another arm. The result node carries the arm's terminal name as its
// variant tag.
func (m *machine) evalAlternation(name string, alt *rule.Alternation) (rule.Value, error) {
	tok := m.peek()

	var selected *rule.Arm
	for i := range alt.Arms {
		if alt.Arms[i].Ahead.Kind == tok.Kind {
			selected = &alt.Arms[i]
			break
		}
	}
	if selected == nil {
		expected := make([]string, len(alt.Arms))
		for i, arm := range alt.Arms {
			expected[i] = arm.Ahead.Name
		}
		return nil, &rule.NoMatchingVariantError{
			Rule:     name,
			Expected: expected,
			Found:    m.vocab.Name(tok.Kind),
			Literal:  tok.Literal,
			Pos:      tok.Pos,
		}
	}

	if m.TraceEnabled() {
		m.Trace("variant selected",
			slog.String("rule", name),
			slog.String("variant", selected.Ahead.Name))
	}

	v, err := m.evalSequence(name, selected.Body)
	if err != nil {
		return nil, err
	}

	tag := selected.Ahead.Name
	switch val := v.(type) {
	case *rule.Node:
		return val.WithVariant(tag), nil
	case rule.Text:
		b := rule.NewNodeBuilder(name)
		b.SetVariant(tag)
		b.SetText(val.String())
		return b.Build(), nil
	default:
		b := rule.NewNodeBuilder(name)
		b.SetVariant(tag)
		return b.Build(), nil
	}
}

// evalList parses delimiter-separated elements and stops at the
// terminator without consuming it. Zero elements before the terminator is
// a valid, empty list; a trailing delimiter before the terminator is
// accepted.
//
// At the top level of an EOF-terminated entry rule, an element failure at
// a clean element boundary stops the list instead of propagating, so the
// leftover input is reported as TrailingInputError by Run rather than as
// a spurious element error. Nested lists always propagate element errors
// unchanged.
func (m *machine) evalList(name string, l *rule.List) (rule.ValueList, error) {
	out := rule.ValueList{}
	for {
		if err := m.checkCancel(); err != nil {
			return nil, err
		}

		tok := m.peek()
		if tok.Kind == l.Terminator.Kind {
			break
		}

		elemStart := m.pos
		v, err := m.evalValue(name, l.Elem)
		if err != nil {
			if m.lenientStop(l, err) && m.pos == elemStart {
				break
			}
			return nil, err
		}
		out = append(out, v)

		tok = m.peek()
		if tok.Kind == l.Delimiter.Kind {
			m.advance()
			continue
		}
		if tok.Kind == l.Terminator.Kind {
			break
		}
		return nil, &rule.MalformedListError{
			Rule:       name,
			Delimiter:  l.Delimiter.Name,
			Terminator: l.Terminator.Name,
			Found:      m.vocab.Name(tok.Kind),
			Literal:    tok.Literal,
			Pos:        tok.Pos,
		}
	}
	return out, nil
}

// lenientStop reports whether a failed list element should end the list
// instead of failing the parse: only at recursion depth 1 (the entry
// rule's own body) in a list terminated by the EOF kind, and never for
// cancellation or recursion-limit failures.
func (m *machine) lenientStop(l *rule.List, err error) bool {
	if m.depth != 1 || l.Terminator.Kind != m.vocab.EOF() {
		return false
	}
	var cancelled *rule.CancelledError
	var limit *rule.RecursionLimitError
	if errors.As(err, &cancelled) || errors.As(err, &limit) {
		return false
	}
	return true
}
