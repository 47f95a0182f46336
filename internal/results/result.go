// Package results holds tabular query results: an ordered header of
// variable names and rows of RDF terms, one per column.
//
// A Result is produced by the store or decoded from the W3C SPARQL JSON
// results format, then turned into display strings with Strings.
package results

import (
	"errors"
	"fmt"

	"github.com/roach88/arq/internal/prefix"
	"github.com/roach88/arq/internal/rdf"
)

var (
	// ErrNoColumns is returned when a result has an empty header.
	ErrNoColumns = errors.New("result has no columns")

	// ErrRowShape is returned when a row length differs from the header.
	ErrRowShape = errors.New("row length does not match column count")

	// ErrDuplicateColumn is returned when a column name repeats.
	ErrDuplicateColumn = errors.New("duplicate column")
)

// Result is a tabular result set. A zero Term in a row means the variable
// is unbound in that solution.
type Result struct {
	Columns []string
	Rows    [][]rdf.Term
}

// Validate checks that the header is non-empty with unique names and that
// every row matches its length.
func (r *Result) Validate() error {
	if len(r.Columns) == 0 {
		return ErrNoColumns
	}
	seen := make(map[string]bool, len(r.Columns))
	for _, c := range r.Columns {
		if c == "" {
			return fmt.Errorf("%w: empty name", ErrDuplicateColumn)
		}
		if seen[c] {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		seen[c] = true
	}
	for i, row := range r.Rows {
		if len(row) != len(r.Columns) {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrRowShape, i, len(row), len(r.Columns))
		}
	}
	return nil
}

// Strings converts every cell to display text. IRIs go through reg.Compact;
// literals pass through as their lexical form; blank nodes render as
// "_:label"; unbound cells are empty. A nil registry compacts nothing.
func (r *Result) Strings(reg *prefix.Registry) ([][]string, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = prefix.New()
	}

	out := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		cells := make([]string, len(row))
		for j, term := range row {
			cells[j] = Cell(term, reg)
		}
		out[i] = cells
	}
	return out, nil
}

// Cell renders a single term for display.
func Cell(t rdf.Term, reg *prefix.Registry) string {
	switch t.Kind {
	case rdf.KindIRI:
		return reg.Compact(t.String())
	case rdf.KindLiteral:
		return t.Value
	case rdf.KindBlank:
		return t.String()
	default:
		return ""
	}
}
