package querysql

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arq/internal/queryir"
	"github.com/roach88/arq/internal/rdf"
)

const ex = "http://example.com/ns#"

const termLookup = "(SELECT id FROM terms WHERE kind = ? AND value = ? AND datatype = ? AND lang = ?)"

func personQuery() *queryir.Select {
	return &queryir.Select{
		Vars: []string{"s", "name"},
		Patterns: []queryir.Pattern{
			{S: queryir.Var{Name: "s"}, P: queryir.Const{Term: rdf.IRI(rdf.RDFType)}, O: queryir.Const{Term: rdf.IRI(ex + "Person")}},
			{S: queryir.Var{Name: "s"}, P: queryir.Const{Term: rdf.IRI(ex + "name")}, O: queryir.Var{Name: "name"}},
		},
		Limit: -1,
	}
}

func TestCompile_BasicGraphPattern(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(personQuery())
	require.NoError(t, err)

	want := "SELECT v0.kind, v0.value, v0.datatype, v0.lang, v1.kind, v1.value, v1.datatype, v1.lang" +
		" FROM triples t0, triples t1" +
		" JOIN terms v0 ON v0.id = t0.s JOIN terms v1 ON v1.id = t1.o" +
		" WHERE t0.p = " + termLookup +
		" AND t0.o = " + termLookup +
		" AND t1.s = t0.s" +
		" AND t1.p = " + termLookup +
		" ORDER BY t0.id ASC, t1.id ASC"
	assert.Equal(t, want, sql)

	wantParams := []any{
		int(rdf.KindIRI), rdf.RDFType, "", "",
		int(rdf.KindIRI), ex + "Person", "", "",
		int(rdf.KindIRI), ex + "name", "", "",
	}
	if diff := cmp.Diff(wantParams, params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_PlaceholderCountMatchesParams(t *testing.T) {
	q := personQuery()
	q.OrderBy = []queryir.OrderKey{{Var: "name", Descending: true}}
	q.Limit = 10
	q.Offset = 20
	q.Patterns = append(q.Patterns, queryir.Pattern{
		S: queryir.Var{Name: "s"},
		P: queryir.Const{Term: rdf.IRI(ex + "nick")},
		O: queryir.Const{Term: rdf.LangLiteral("Al", "en")},
	})

	sql, params, err := NewSQLCompiler().Compile(q)
	require.NoError(t, err)
	assert.Equal(t, strings.Count(sql, "?"), len(params))
	assert.Equal(t, 10, params[len(params)-2])
	assert.Equal(t, 20, params[len(params)-1])
	assert.True(t, strings.HasSuffix(sql, " LIMIT ? OFFSET ?"))
}

func TestCompile_OrderBy(t *testing.T) {
	q := personQuery()
	q.OrderBy = []queryir.OrderKey{{Var: "name", Descending: true}}

	sql, params, err := NewSQLCompiler().Compile(q)
	require.NoError(t, err)

	assert.Contains(t, sql, " ORDER BY v1.kind DESC,"+
		" CASE WHEN v1.datatype IN (?, ?, ?) THEN CAST(v1.value AS REAL) END DESC,"+
		" v1.value COLLATE BINARY DESC, t0.id ASC, t1.id ASC")
	assert.Equal(t, []any{rdf.XSDInteger, rdf.XSDDecimal, rdf.XSDDouble}, params[len(params)-3:])
}

func TestCompile_OrderByNonProjectedVariableJoinsTerms(t *testing.T) {
	q := personQuery()
	q.Vars = []string{"s"}
	q.OrderBy = []queryir.OrderKey{{Var: "name"}}

	sql, _, err := NewSQLCompiler().Compile(q)
	require.NoError(t, err)
	assert.Contains(t, sql, "JOIN terms v1 ON v1.id = t1.o")
	assert.Contains(t, sql, "ORDER BY v1.kind ASC")
}

func TestCompile_Distinct(t *testing.T) {
	q := personQuery()
	q.Distinct = true

	sql, _, err := NewSQLCompiler().Compile(q)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "SELECT DISTINCT v0.kind"))
	assert.True(t, strings.HasSuffix(sql, "ORDER BY v0.kind COLLATE BINARY ASC, v0.value COLLATE BINARY ASC,"+
		" v0.datatype COLLATE BINARY ASC, v0.lang COLLATE BINARY ASC,"+
		" v1.kind COLLATE BINARY ASC, v1.value COLLATE BINARY ASC,"+
		" v1.datatype COLLATE BINARY ASC, v1.lang COLLATE BINARY ASC"))
}

func TestCompile_UnboundProjection(t *testing.T) {
	q := personQuery()
	q.Vars = []string{"s", "missing"}

	sql, _, err := NewSQLCompiler().Compile(q)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "SELECT v0.kind, v0.value, v0.datatype, v0.lang, NULL, NULL, NULL, NULL FROM"))
}

func TestCompile_OffsetWithoutLimit(t *testing.T) {
	q := personQuery()
	q.Offset = 3

	sql, params, err := NewSQLCompiler().Compile(q)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(sql, " LIMIT -1 OFFSET ?"))
	assert.Equal(t, 3, params[len(params)-1])
}

func TestCompile_RepeatedVariableInOnePattern(t *testing.T) {
	q := &queryir.Select{
		Vars:     []string{"x"},
		Patterns: []queryir.Pattern{{S: queryir.Var{Name: "x"}, P: queryir.Var{Name: "p"}, O: queryir.Var{Name: "x"}}},
		Limit:    -1,
	}
	sql, params, err := NewSQLCompiler().Compile(q)
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE t0.o = t0.s ORDER BY")
	assert.Empty(t, params)
}

func TestCompile_Errors(t *testing.T) {
	c := NewSQLCompiler()

	_, _, err := c.Compile(nil)
	assert.EqualError(t, err, "cannot compile nil query")

	_, _, err = c.Compile(&queryir.Select{Vars: []string{"x"}})
	assert.EqualError(t, err, "cannot compile query without patterns")

	q := personQuery()
	q.OrderBy = []queryir.OrderKey{{Var: "nope"}}
	_, _, err = c.Compile(q)
	assert.EqualError(t, err, "ORDER BY ?nope: variable not bound")

	q = personQuery()
	q.Patterns[0].O = nil
	_, _, err = c.Compile(q)
	assert.ErrorContains(t, err, "pattern 0: unsupported node type")
}
