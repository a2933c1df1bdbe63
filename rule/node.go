package rule

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a parse result bound into a node field: a terminal's literal
// text, a nested node, or an ordered list of sub-results.
type Value interface {
	value()
	// Render writes the canonical debug form of the value.
	Render(b *strings.Builder)
}

// Text is the literal text of a matched terminal, with the token it came
// from.
type Text struct {
	Token Token
}

func (Text) value() {}

// Render writes the literal as a quoted string.
func (t Text) Render(b *strings.Builder) {
	b.WriteString(strconv.Quote(t.Token.Literal))
}

func (t Text) String() string {
	return t.Token.Literal
}

// ValueList is an ordered sequence of sub-results produced by a list rule.
type ValueList []Value

func (ValueList) value() {}

// Render writes the list as [v, v, ...].
func (vl ValueList) Render(b *strings.Builder) {
	b.WriteString("[")
	for i, v := range vl {
		if i > 0 {
			b.WriteString(", ")
		}
		v.Render(b)
	}
	b.WriteString("]")
}

// Node is a bound AST node: the producing rule's name, an optional variant
// tag when the node came through an alternation, an optional passthrough
// literal when a variant matched a bare terminal, and the named fields
// captured while parsing. Nodes are write-once; after Build they expose
// read-only accessors.
type Node struct {
	rule    string
	variant string
	text    string
	names   []string
	fields  map[string]Value
}

func (*Node) value() {}

// Rule returns the name of the rule that produced this node.
func (n *Node) Rule() string { return n.rule }

// Variant returns the alternation tag (the matched arm's leading terminal
// name), or "" for nodes not produced through an alternation.
func (n *Node) Variant() string { return n.variant }

// Text returns the passthrough literal for terminal-backed variant nodes,
// or "" when the node carries fields instead.
func (n *Node) Text() string { return n.text }

// Fields returns the captured field names in binding order.
func (n *Node) Fields() []string {
	return append([]string(nil), n.names...)
}

// Has returns true if the node declares the named field.
func (n *Node) Has(name string) bool {
	_, ok := n.fields[name]
	return ok
}

// Field returns the value bound under name. Accessing an undeclared field
// fails with NoSuchFieldError rather than returning a silent default, so
// grammar/consumer mismatches surface early.
func (n *Node) Field(name string) (Value, error) {
	v, ok := n.fields[name]
	if !ok {
		return nil, &NoSuchFieldError{Rule: n.rule, Name: name}
	}
	return v, nil
}

// TextField returns the named field as terminal text.
func (n *Node) TextField(name string) (string, error) {
	v, err := n.Field(name)
	if err != nil {
		return "", err
	}
	t, ok := v.(Text)
	if !ok {
		return "", fmt.Errorf("rule %s: field %q is %s, not text", n.rule, name, valueKind(v))
	}
	return t.Token.Literal, nil
}

// NodeField returns the named field as a nested node.
func (n *Node) NodeField(name string) (*Node, error) {
	v, err := n.Field(name)
	if err != nil {
		return nil, err
	}
	sub, ok := v.(*Node)
	if !ok {
		return nil, fmt.Errorf("rule %s: field %q is %s, not a node", n.rule, name, valueKind(v))
	}
	return sub, nil
}

// ListField returns the named field as an ordered value list.
func (n *Node) ListField(name string) (ValueList, error) {
	v, err := n.Field(name)
	if err != nil {
		return nil, err
	}
	vl, ok := v.(ValueList)
	if !ok {
		return nil, fmt.Errorf("rule %s: field %q is %s, not a list", n.rule, name, valueKind(v))
	}
	return vl, nil
}

// WithVariant returns a copy of the node carrying the given variant tag.
// The original is untouched; nodes stay write-once.
func (n *Node) WithVariant(tag string) *Node {
	clone := *n
	clone.variant = tag
	return &clone
}

// Render writes the canonical debug form: RuleName, a /variant suffix when
// tagged, then either the quoted passthrough literal or the fields in
// binding order.
func (n *Node) Render(b *strings.Builder) {
	b.WriteString(n.rule)
	if n.variant != "" {
		b.WriteString("/")
		b.WriteString(n.variant)
	}
	if len(n.names) == 0 {
		if n.text != "" {
			b.WriteString("(")
			b.WriteString(strconv.Quote(n.text))
			b.WriteString(")")
		} else {
			b.WriteString("{}")
		}
		return
	}
	b.WriteString("{")
	for i, name := range n.names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		n.fields[name].Render(b)
	}
	b.WriteString("}")
}

// String returns the canonical debug rendering. It is deterministic for a
// fixed parse result and suitable for golden fixtures.
func (n *Node) String() string {
	var b strings.Builder
	n.Render(&b)
	return b.String()
}

func valueKind(v Value) string {
	switch v.(type) {
	case Text:
		return "text"
	case *Node:
		return "a node"
	case ValueList:
		return "a list"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// NodeBuilder collects named captures while a rule is being parsed and
// produces an immutable Node. The compiler guarantees field-name
// uniqueness within one rule body; Bind panics on a duplicate name to
// surface a compiler/engine mismatch instead of silently dropping data.
type NodeBuilder struct {
	node Node
}

// NewNodeBuilder starts a node for the named rule.
func NewNodeBuilder(ruleName string) *NodeBuilder {
	return &NodeBuilder{
		node: Node{
			rule:   ruleName,
			fields: make(map[string]Value),
		},
	}
}

// Bind records a named capture. Binding order is preserved.
func (b *NodeBuilder) Bind(name string, v Value) {
	if _, ok := b.node.fields[name]; ok {
		panic(fmt.Sprintf("rule %s: field %q bound twice", b.node.rule, name))
	}
	b.node.names = append(b.node.names, name)
	b.node.fields[name] = v
}

// Len returns the number of fields bound so far.
func (b *NodeBuilder) Len() int {
	return len(b.node.names)
}

// SetVariant tags the node with the matched alternation arm.
func (b *NodeBuilder) SetVariant(tag string) {
	b.node.variant = tag
}

// SetText sets the passthrough literal for terminal-backed variant nodes.
func (b *NodeBuilder) SetText(text string) {
	b.node.text = text
}

// Build finalizes the node. The builder must not be reused afterwards.
func (b *NodeBuilder) Build() *Node {
	return &b.node
}
