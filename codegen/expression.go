package codegen

import (
	"regexp"
	"strconv"
)

// tempRef matches the text of a temporary variable reference
var tempRef = regexp.MustCompile(`^var[0-9]*$`)

// Expr is a scalar expression built through a Table. Its text is a temporary
// reference ("varN") for everything the table has seen.
type Expr struct {
	text string
}

func (e Expr) String() string { return e.text }

// IsRef reports whether e refers to a table entry
func (e Expr) IsRef() bool { return tempRef.MatchString(e.text) }

// Table is the ordered common subexpression table of one generation call.
// Entry N is the right hand side of temporary varN. Identity is text equality
// after stripping enclosing parentheses, so a+b and b+a stay distinct.
//
// A Table is not safe for concurrent use; give every call its own.
type Table struct {
	entries []string
	index   map[string]int
}

// NewTable returns an empty table
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Len returns the number of registered entries
func (t *Table) Len() int { return len(t.entries) }

// Entries returns the right hand sides in registration order
func (t *Table) Entries() []string {
	return append([]string(nil), t.entries...)
}

// Reset empties the table
func (t *Table) Reset() {
	t.entries = t.entries[:0]
	t.index = make(map[string]int)
}

// Symbol registers a named input such as a coordinate
func (t *Table) Symbol(name string) Expr { return t.intern(name) }

// Const registers a literal with fixed 15 digit precision
func (t *Table) Const(v float64) Expr {
	return t.intern(strconv.FormatFloat(v, 'f', 15, 64))
}

func (t *Table) Add(a, b Expr) Expr { return t.intern(a.text + "+" + b.text) }
func (t *Table) Sub(a, b Expr) Expr { return t.intern(a.text + "-" + b.text) }
func (t *Table) Mul(a, b Expr) Expr { return t.intern(a.text + "*" + b.text) }

// Group wraps e in parentheses. The wrapped text normalizes back to e.
func (t *Table) Group(e Expr) Expr { return t.intern("(" + e.text + ")") }

func (t *Table) intern(s string) Expr {
	if s == "" {
		return Expr{}
	}
	s = strip(s)
	if n, ok := t.index[s]; ok {
		return Expr{text: ref(n)}
	}
	if tempRef.MatchString(s) {
		return Expr{text: s}
	}
	n := len(t.entries)
	t.entries = append(t.entries, s)
	t.index[s] = n
	return Expr{text: ref(n)}
}

func ref(n int) string { return "var" + strconv.Itoa(n) }

// strip removes enclosing parenthesis pairs, but only when the opening
// parenthesis is closed by the last character
func strip(s string) string {
	for len(s) > 1 && s[0] == '(' && s[len(s)-1] == ')' && closesAtEnd(s) {
		s = s[1 : len(s)-1]
	}
	return s
}

func closesAtEnd(s string) bool {
	var depth int
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(s)-1
			}
		}
	}
	return false
}
