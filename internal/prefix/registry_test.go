package prefix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanAndRegister_SingleDeclaration(t *testing.T) {
	r := New()
	ok := r.ScanAndRegister("PREFIX ab: <http://example.com/ns/test#>")
	require.True(t, ok)

	assert.True(t, r.HasPrefix("ab"))
	assert.Equal(t, "ab:kristoff", r.Compact("<http://example.com/ns/test#kristoff>"))
}

func TestScanAndRegister_NoMatchIsNoOp(t *testing.T) {
	r := New()
	assert.False(t, r.ScanAndRegister("SELECT ?s WHERE { ?s ?p ?o }"))
	assert.Equal(t, 0, r.Len())
}

func TestScanAndRegister_OnlyFirstMatchPerCall(t *testing.T) {
	r := New()
	ok := r.ScanAndRegister("PREFIX a: <http://a.example/> PREFIX b: <http://b.example/>")
	require.True(t, ok)

	assert.True(t, r.HasPrefix("a"))
	assert.False(t, r.HasPrefix("b"))
	assert.Equal(t, 1, r.Len())
}

func TestScanAndRegister_RejectsOutOfSetCharacters(t *testing.T) {
	r := New()
	// '-' is outside the namespace character set.
	assert.False(t, r.ScanAndRegister("PREFIX x: <http://my-site.example/>"))
	assert.Equal(t, 0, r.Len())
}

func TestScanAndRegister_DigitsInNamespace(t *testing.T) {
	r := New()
	require.True(t, r.ScanAndRegister("PREFIX foaf: <http://xmlns.com/foaf/0.1/>"))
	assert.Equal(t, "foaf:name", r.Compact("<http://xmlns.com/foaf/0.1/name>"))
}

func TestScanAll_RegistersEveryDeclaration(t *testing.T) {
	query := `PREFIX ex: <http://example.com/ns#>
PREFIX foaf: <http://xmlns.com/foaf/0.1/> PREFIX owl: <http://www.w3.org/2002/07/owl#>
SELECT ?s WHERE { ?s foaf:name ?l }`

	r := New()
	n := r.ScanAll(query)
	require.Equal(t, 3, n)

	assert.Equal(t, []Entry{
		{Name: "ex", Namespace: "http://example.com/ns#"},
		{Name: "foaf", Namespace: "http://xmlns.com/foaf/0.1/"},
		{Name: "owl", Namespace: "http://www.w3.org/2002/07/owl#"},
	}, r.Entries())
}

func TestScanAll_SkipsOutOfSetDeclarations(t *testing.T) {
	// The rdfs namespace contains '-', so only ex and owl register.
	query := `PREFIX ex: <http://example.com/ns#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#> PREFIX owl: <http://www.w3.org/2002/07/owl#>
SELECT ?s WHERE { ?s rdfs:label ?l }`

	r := New()
	require.Equal(t, 2, r.ScanAll(query))

	assert.False(t, r.HasPrefix("rdfs"))
	assert.Equal(t, []Entry{
		{Name: "ex", Namespace: "http://example.com/ns#"},
		{Name: "owl", Namespace: "http://www.w3.org/2002/07/owl#"},
	}, r.Entries())
	assert.Equal(t, "<http://www.w3.org/2000/01/rdf-schema#label>",
		r.Compact("<http://www.w3.org/2000/01/rdf-schema#label>"))
}

func TestFromQuery(t *testing.T) {
	r := FromQuery("PREFIX ex: <http://example.com/ns#>\nSELECT * WHERE { ?s ?p ?o }")
	assert.Equal(t, "ex:Foo", r.Compact("<http://example.com/ns#Foo>"))
}

func TestCompact_IdentityWhenNoMatch(t *testing.T) {
	r := FromQuery("PREFIX ex: <http://example.com/ns#>")

	inputs := []string{
		"tyu",
		"<http://other.example/Foo>",
		"http://other.example/Foo",
		"",
		"<",
		"<>",
		"\"literal\"",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, in, r.Compact(in))
		})
	}
}

func TestCompact_EmptyRegistry(t *testing.T) {
	assert.Equal(t, "tyu", New().Compact("tyu"))

	var zero Registry
	assert.Equal(t, "<http://example.com/x>", zero.Compact("<http://example.com/x>"))
}

func TestCompact_BareForm(t *testing.T) {
	r := FromQuery("PREFIX ex: <http://example.com/ns#>")
	assert.Equal(t, "ex:Foo", r.Compact("http://example.com/ns#Foo"))
}

func TestCompact_FirstMatchWins(t *testing.T) {
	r := FromQuery(`PREFIX a: <http://example.com/>
PREFIX b: <http://example.com/ns#>`)

	assert.Equal(t, "a:ns#Foo", r.Compact("<http://example.com/ns#Foo>"))

	r2 := FromQuery(`PREFIX b: <http://example.com/ns#>
PREFIX a: <http://example.com/>`)
	assert.Equal(t, "b:Foo", r2.Compact("<http://example.com/ns#Foo>"))
}

func TestCompact_EmptyLocalPart(t *testing.T) {
	r := FromQuery("PREFIX ex: <http://example.com/ns#>")
	assert.Equal(t, "ex:", r.Compact("<http://example.com/ns#>"))
}

func TestCompact_MultiByteLocalPart(t *testing.T) {
	r := FromQuery("PREFIX ex: <http://example.com/ns#>")
	assert.Equal(t, "ex:Café", r.Compact("<http://example.com/ns#Café>"))
	assert.Equal(t, "ex:東京", r.Compact("<http://example.com/ns#東京>"))
}

func TestRegister(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("xsd", "http://www.w3.org/2001/XMLSchema#"))
	assert.True(t, r.HasPrefix("xsd"))

	err := r.Register("bad:name", "http://example.com/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidName))

	err = r.Register("ok", "http://example.com/with space")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidNamespace))

	err = r.Register("ok", "")
	assert.True(t, errors.Is(err, ErrInvalidNamespace))

	assert.Equal(t, 1, r.Len())
}

func TestRegister_AcceptsNamespacesTheScannerSkips(t *testing.T) {
	const rdfNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

	r := New()
	assert.False(t, r.ScanAndRegister("PREFIX rdf: <"+rdfNS+">"))

	require.NoError(t, r.Register("rdf", rdfNS))
	assert.Equal(t, "rdf:type", r.Compact("<"+rdfNS+"type>"))
}

func TestHasPrefix_ExactMatchOnly(t *testing.T) {
	r := FromQuery("PREFIX ex: <http://example.com/ns#>")
	assert.True(t, r.HasPrefix("ex"))
	assert.False(t, r.HasPrefix("e"))
	assert.False(t, r.HasPrefix("ex:"))
	assert.False(t, r.HasPrefix("EX"))
}

func TestExpand(t *testing.T) {
	r := FromQuery("PREFIX ex: <http://example.com/ns#>")

	iri, ok := r.Expand("ex:Foo")
	require.True(t, ok)
	assert.Equal(t, "http://example.com/ns#Foo", iri)

	_, ok = r.Expand("nope:Foo")
	assert.False(t, ok)

	_, ok = r.Expand("noColon")
	assert.False(t, ok)
}

func TestEntries_ReturnsCopy(t *testing.T) {
	r := FromQuery("PREFIX ex: <http://example.com/ns#>")
	entries := r.Entries()
	entries[0].Name = "changed"

	assert.True(t, r.HasPrefix("ex"))
}
