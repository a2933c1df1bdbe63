package rule

import (
	"strings"
)

// Table is an immutable mapping from rule name to compiled rule, plus the
// vocabulary it was compiled against and a default entry rule. A Table is
// safe for concurrent use by any number of parses.
type Table struct {
	vocab Vocabulary
	rules map[string]Rule
	order []string
	entry string
}

// NewTable builds a table. order lists rule names in declaration order;
// every name in order must have an entry in rules. The maps and slices are
// copied.
func NewTable(vocab Vocabulary, rules map[string]Rule, order []string, entry string) *Table {
	t := &Table{
		vocab: vocab,
		rules: make(map[string]Rule, len(rules)),
		order: append([]string(nil), order...),
		entry: entry,
	}
	for name, r := range rules {
		t.rules[name] = r
	}
	return t
}

// Rule returns the compiled rule registered under name.
func (t *Table) Rule(name string) (Rule, bool) {
	r, ok := t.rules[name]
	return r, ok
}

// Names returns the rule names in declaration order.
func (t *Table) Names() []string {
	return append([]string(nil), t.order...)
}

// Len returns the number of rules in the table.
func (t *Table) Len() int {
	return len(t.rules)
}

// Entry returns the default entry rule name.
func (t *Table) Entry() string {
	return t.entry
}

// Vocabulary returns the vocabulary the table was compiled against.
func (t *Table) Vocabulary() Vocabulary {
	return t.vocab
}

// Dump renders the whole table in grammar notation, one rule per line, in
// declaration order.
func (t *Table) Dump() string {
	var b strings.Builder
	for _, name := range t.order {
		b.WriteString(name)
		b.WriteString(" := ")
		b.WriteString(t.rules[name].Describe())
		b.WriteString("\n")
	}
	return b.String()
}
