package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arq/internal/queryir"
	"github.com/roach88/arq/internal/rdf"
)

const ex = "http://example.com/ns#"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func peopleTriples() []rdf.Triple {
	alice := rdf.IRI(ex + "alice")
	bob := rdf.IRI(ex + "bob")
	carol := rdf.IRI(ex + "carol")
	person := rdf.IRI(ex + "Person")
	typ := rdf.IRI(rdf.RDFType)
	name := rdf.IRI(ex + "name")
	age := rdf.IRI(ex + "age")

	return []rdf.Triple{
		{S: alice, P: typ, O: person},
		{S: alice, P: name, O: rdf.LangLiteral("Alice", "en")},
		{S: alice, P: age, O: rdf.TypedLiteral("42", rdf.XSDInteger)},
		{S: bob, P: typ, O: person},
		{S: bob, P: name, O: rdf.Literal("Bob")},
		{S: bob, P: age, O: rdf.TypedLiteral("9", rdf.XSDInteger)},
		{S: carol, P: name, O: rdf.Literal("Carol")},
		{S: rdf.Blank("b0"), P: name, O: rdf.Literal("Anonymous")},
	}
}

func v(name string) queryir.Var { return queryir.Var{Name: name} }
func c(term rdf.Term) queryir.Const { return queryir.Const{Term: term} }
func iri(local string) queryir.Const { return c(rdf.IRI(ex + local)) }

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_MemoryStoreSkipsWAL(t *testing.T) {
	s := openTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "memory"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_RejectsOtherSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA user_version = 2")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaVersion)
	assert.ErrorContains(t, err, "database has 2")
}

func TestOpen_KeepsVersionOnReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 2; i++ {
		s, err := Open(path)
		require.NoError(t, err)
		assert.NoError(t, s.verifyPragma("user_version", "1"))
		require.NoError(t, s.Close())
	}
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	require.NoError(t, err)
	_, err = s1.Load(ctx, "people.ttl", peopleTriples())
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	n, err := s2.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestLoad_RecordsLoadAndSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first, err := s.Load(ctx, "people.ttl", peopleTriples())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, 8, first.Triples)
	assert.Len(t, first.ID, 36)

	second, err := s.Load(ctx, "again.ttl", peopleTriples()[:3])
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Seq)
	assert.Equal(t, 0, second.Triples)

	loads, err := s.Loads(ctx)
	require.NoError(t, err)
	assert.Equal(t, []LoadRecord{first, second}, loads)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestLoad_RejectsUnboundTermAndRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	bad := append(peopleTriples()[:2], rdf.Triple{S: rdf.IRI(ex + "x"), P: rdf.IRI(ex + "p")})
	_, err := s.Load(ctx, "bad.ttl", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "triple 2: cannot store unbound term")

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	loads, err := s.Loads(ctx)
	require.NoError(t, err)
	assert.Empty(t, loads)
}

func TestSelect_BasicGraphPattern(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	_, err := s.Load(ctx, "people.ttl", peopleTriples())
	require.NoError(t, err)

	q := &queryir.Select{
		Vars: []string{"s", "name"},
		Patterns: []queryir.Pattern{
			{S: v("s"), P: c(rdf.IRI(rdf.RDFType)), O: iri("Person")},
			{S: v("s"), P: iri("name"), O: v("name")},
		},
		Limit: -1,
	}
	res, err := s.Select(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, []string{"s", "name"}, res.Columns)
	assert.Equal(t, [][]rdf.Term{
		{rdf.IRI(ex + "alice"), rdf.LangLiteral("Alice", "en")},
		{rdf.IRI(ex + "bob"), rdf.Literal("Bob")},
	}, res.Rows)
}

func TestSelect_OrderByNumericDescending(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	_, err := s.Load(ctx, "people.ttl", peopleTriples())
	require.NoError(t, err)

	q := &queryir.Select{
		Vars:     []string{"s", "age"},
		Patterns: []queryir.Pattern{{S: v("s"), P: iri("age"), O: v("age")}},
		OrderBy:  []queryir.OrderKey{{Var: "age", Descending: false}},
		Limit:    -1,
	}
	res, err := s.Select(ctx, q)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	// 9 sorts before 42 numerically, though "42" < "9" as text.
	assert.Equal(t, "9", res.Rows[0][1].Value)
	assert.Equal(t, "42", res.Rows[1][1].Value)

	q.OrderBy[0].Descending = true
	res, err = s.Select(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, "42", res.Rows[0][1].Value)
}

func TestSelect_LimitOffsetAndDistinct(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	_, err := s.Load(ctx, "people.ttl", peopleTriples())
	require.NoError(t, err)

	q := &queryir.Select{
		Vars:     []string{"p"},
		Patterns: []queryir.Pattern{{S: v("s"), P: v("p"), O: v("o")}},
		Distinct: true,
		Limit:    -1,
	}
	res, err := s.Select(ctx, q)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 3) // rdf:type, ex:name, ex:age

	q.Distinct = false
	q.Limit = 2
	q.Offset = 1
	res, err = s.Select(ctx, q)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, ex+"name", res.Rows[0][0].Value)
	assert.Equal(t, ex+"age", res.Rows[1][0].Value)
}

func TestSelect_UnboundProjectionAndBlankNodes(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	_, err := s.Load(ctx, "people.ttl", peopleTriples())
	require.NoError(t, err)

	q := &queryir.Select{
		Vars:     []string{"s", "nothing"},
		Patterns: []queryir.Pattern{{S: v("s"), P: iri("name"), O: c(rdf.Literal("Anonymous"))}},
		Limit:    -1,
	}
	res, err := s.Select(ctx, q)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, rdf.Blank("b0"), res.Rows[0][0])
	assert.True(t, res.Rows[0][1].IsZero())
}

func TestSelect_NoMatches(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	q := &queryir.Select{
		Vars:     []string{"s"},
		Patterns: []queryir.Pattern{{S: v("s"), P: iri("missing"), O: v("o")}},
		Limit:    -1,
	}
	res, err := s.Select(ctx, q)
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
}

func TestSelect_CompileError(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Select(context.Background(), &queryir.Select{Vars: []string{"x"}})
	assert.ErrorContains(t, err, "compile query")
}
