package queryir

import (
	"strconv"
	"strings"

	"github.com/roach88/arq/internal/rdf"
)

// Node is a position in a triple pattern.
//
// This is a sealed interface - only Var and Const implement it.
type Node interface {
	node() // Marker method - seals interface to this package
}

// Var is a query variable, named without its '?' sigil.
type Var struct {
	Name string
}

func (Var) node() {}

// Const is a fixed RDF term.
type Const struct {
	Term rdf.Term
}

func (Const) node() {}

// Pattern is a single triple pattern.
type Pattern struct {
	S, P, O Node
}

// Nodes returns the subject, predicate and object in order.
func (p Pattern) Nodes() [3]Node {
	return [3]Node{p.S, p.P, p.O}
}

// OrderKey sorts solutions by a variable.
type OrderKey struct {
	Var        string
	Descending bool
}

// Select is a basic graph pattern query.
//
// Semantics:
//
//	SELECT [DISTINCT] <Vars> WHERE { <Patterns> } ORDER BY <OrderBy> LIMIT <Limit> OFFSET <Offset>
//
// Limit < 0 means no limit. Offset 0 means no offset.
type Select struct {
	Vars     []string
	Patterns []Pattern
	Distinct bool
	OrderBy  []OrderKey
	Limit    int
	Offset   int
}

// PatternVars returns every variable used in the patterns, in order of first
// appearance.
func (s *Select) PatternVars() []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range s.Patterns {
		for _, n := range p.Nodes() {
			if v, ok := n.(Var); ok && !seen[v.Name] {
				seen[v.Name] = true
				out = append(out, v.Name)
			}
		}
	}
	return out
}

// HiddenVarPrefix starts the names of variables the front end introduces for
// blank nodes in patterns. They never appear in a projection.
const HiddenVarPrefix = "_:"

// IsHidden reports whether name was introduced for a pattern blank node.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, HiddenVarPrefix)
}

// String renders the query back in SPARQL-like form for logs and errors.
func (s *Select) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if s.Distinct {
		b.WriteString("DISTINCT ")
	}
	for i, v := range s.Vars {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString("?" + v)
	}
	b.WriteString(" WHERE {")
	for _, p := range s.Patterns {
		b.WriteString(" ")
		for _, n := range p.Nodes() {
			b.WriteString(nodeString(n))
			b.WriteString(" ")
		}
		b.WriteString(".")
	}
	b.WriteString(" }")
	if len(s.OrderBy) > 0 {
		b.WriteString(" ORDER BY")
		for _, k := range s.OrderBy {
			if k.Descending {
				b.WriteString(" DESC(?" + k.Var + ")")
			} else {
				b.WriteString(" ?" + k.Var)
			}
		}
	}
	if s.Limit >= 0 {
		b.WriteString(" LIMIT " + strconv.Itoa(s.Limit))
	}
	if s.Offset > 0 {
		b.WriteString(" OFFSET " + strconv.Itoa(s.Offset))
	}
	return b.String()
}

func nodeString(n Node) string {
	switch n := n.(type) {
	case Var:
		if IsHidden(n.Name) {
			return n.Name
		}
		return "?" + n.Name
	case Const:
		return n.Term.String()
	default:
		return "<nil>"
	}
}
