// Package querysql compiles queryir queries to parameterized SQL over the
// store's terms and triples tables.
package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/arq/internal/queryir"
	"github.com/roach88/arq/internal/rdf"
)

// ColumnsPerVar is the number of result columns each projected variable
// contributes: kind, value, datatype, lang.
const ColumnsPerVar = 4

var positionColumns = [3]string{"s", "p", "o"}

// numericTypes sort numerically in ORDER BY.
var numericTypes = []any{rdf.XSDInteger, rdf.XSDDecimal, rdf.XSDDouble}

// SQLCompiler compiles a queryir.Select to SQL for SQLite.
//
// Each triple pattern i becomes an alias t<i> of the triples table. Constants
// are matched through a parameterized lookup in terms; a variable's first
// occurrence defines it and every later occurrence becomes an equality.
// Projected and ordered variables join their terms row.
//
// CRITICAL: ALL queries end in ORDER BY with a deterministic tiebreaker.
// CRITICAL: All values are parameterized, never interpolated.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts q to SQL. The result has ColumnsPerVar columns for each
// entry of q.Vars, in order; unbound projections select NULLs.
func (c *SQLCompiler) Compile(q *queryir.Select) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}
	if len(q.Patterns) == 0 {
		return "", nil, fmt.Errorf("cannot compile query without patterns")
	}

	b := &builder{refs: make(map[string]string), aliases: make(map[string]string)}

	// WHERE: constants and joins between repeated variables.
	for i, p := range q.Patterns {
		for j, n := range p.Nodes() {
			col := "t" + strconv.Itoa(i) + "." + positionColumns[j]
			switch node := n.(type) {
			case queryir.Var:
				if ref, ok := b.refs[node.Name]; ok {
					b.where = append(b.where, col+" = "+ref)
				} else {
					b.refs[node.Name] = col
				}
			case queryir.Const:
				b.where = append(b.where, col+" = (SELECT id FROM terms WHERE kind = ? AND value = ? AND datatype = ? AND lang = ?)")
				b.whereParams = append(b.whereParams, int(node.Term.Kind), node.Term.Value, node.Term.Datatype, node.Term.Lang)
			default:
				return "", nil, fmt.Errorf("pattern %d: unsupported node type: %T", i, n)
			}
		}
	}

	// SELECT list.
	var selectCols []string
	for _, v := range q.Vars {
		if _, ok := b.refs[v]; !ok {
			selectCols = append(selectCols, "NULL", "NULL", "NULL", "NULL")
			continue
		}
		a := b.termAlias(v)
		selectCols = append(selectCols, a+".kind", a+".value", a+".datatype", a+".lang")
	}

	// ORDER BY: user keys, then a stable tiebreaker.
	var orderParts []string
	var orderParams []any
	for _, k := range q.OrderBy {
		if _, ok := b.refs[k.Var]; !ok {
			return "", nil, fmt.Errorf("ORDER BY ?%s: variable not bound", k.Var)
		}
		a := b.termAlias(k.Var)
		dir := " ASC"
		if k.Descending {
			dir = " DESC"
		}
		orderParts = append(orderParts,
			a+".kind"+dir,
			"CASE WHEN "+a+".datatype IN (?, ?, ?) THEN CAST("+a+".value AS REAL) END"+dir,
			a+".value COLLATE BINARY"+dir,
		)
		orderParams = append(orderParams, numericTypes...)
	}
	orderParts = append(orderParts, c.stableOrderKey(q, selectCols)...)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if q.Distinct {
		sb.WriteString("DISTINCT ")
	}
	sb.WriteString(strings.Join(selectCols, ", "))
	sb.WriteString(" FROM ")
	for i := range q.Patterns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("triples t" + strconv.Itoa(i))
	}
	for _, j := range b.joins {
		sb.WriteString(" JOIN terms " + j.alias + " ON " + j.alias + ".id = " + j.ref)
	}
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(strings.Join(orderParts, ", "))

	params := append([]any{}, b.whereParams...)
	params = append(params, orderParams...)

	switch {
	case q.Limit >= 0:
		sb.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
		if q.Offset > 0 {
			sb.WriteString(" OFFSET ?")
			params = append(params, q.Offset)
		}
	case q.Offset > 0:
		sb.WriteString(" LIMIT -1 OFFSET ?")
		params = append(params, q.Offset)
	}

	return sb.String(), params, nil
}

// stableOrderKey returns the tiebreaker that makes row order deterministic.
// DISTINCT queries order by the projected columns; others by triple ids.
func (c *SQLCompiler) stableOrderKey(q *queryir.Select, selectCols []string) []string {
	if q.Distinct {
		var keys []string
		for _, col := range selectCols {
			if col == "NULL" {
				continue
			}
			keys = append(keys, col+" COLLATE BINARY ASC")
		}
		if len(keys) > 0 {
			return keys
		}
	}
	keys := make([]string, len(q.Patterns))
	for i := range q.Patterns {
		keys[i] = "t" + strconv.Itoa(i) + ".id ASC"
	}
	return keys
}

type termJoin struct {
	alias string
	ref   string
}

type builder struct {
	refs        map[string]string // variable → defining column
	aliases     map[string]string // variable → terms alias
	joins       []termJoin
	where       []string
	whereParams []any
}

// termAlias returns the terms alias for a bound variable, adding the join on
// first use.
func (b *builder) termAlias(v string) string {
	if a, ok := b.aliases[v]; ok {
		return a
	}
	a := "v" + strconv.Itoa(len(b.joins))
	b.aliases[v] = a
	b.joins = append(b.joins, termJoin{alias: a, ref: b.refs[v]})
	return a
}
