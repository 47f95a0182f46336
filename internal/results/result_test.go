package results

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arq/internal/prefix"
	"github.com/roach88/arq/internal/rdf"
)

func sampleResult() *Result {
	return &Result{
		Columns: []string{"s", "name", "age"},
		Rows: [][]rdf.Term{
			{rdf.IRI("http://example.com/ns#alice"), rdf.LangLiteral("Alice", "en"), rdf.TypedLiteral("42", rdf.XSDInteger)},
			{rdf.Blank("b0"), rdf.Literal("Bob"), {}},
			{rdf.IRI("http://other.example/carol"), rdf.Literal("http://example.com/ns#notAnIRI"), {}},
		},
	}
}

func TestStrings_DispatchesOnTermKind(t *testing.T) {
	reg := prefix.FromQuery("PREFIX ex: <http://example.com/ns#>")

	cells, err := sampleResult().Strings(reg)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"ex:alice", "Alice", "42"},
		{"_:b0", "Bob", ""},
		{"<http://other.example/carol>", "http://example.com/ns#notAnIRI", ""},
	}, cells)
}

func TestStrings_NilRegistry(t *testing.T) {
	cells, err := sampleResult().Strings(nil)
	require.NoError(t, err)
	assert.Equal(t, "<http://example.com/ns#alice>", cells[0][0])
}

func TestStrings_EmptyBody(t *testing.T) {
	res := &Result{Columns: []string{"a"}}
	cells, err := res.Strings(nil)
	require.NoError(t, err)
	assert.Empty(t, cells)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		result  *Result
		wantErr error
	}{
		{"ok", sampleResult(), nil},
		{"no columns", &Result{}, ErrNoColumns},
		{"duplicate", &Result{Columns: []string{"a", "a"}}, ErrDuplicateColumn},
		{"empty name", &Result{Columns: []string{""}}, ErrDuplicateColumn},
		{"short row", &Result{Columns: []string{"a", "b"}, Rows: [][]rdf.Term{{rdf.Literal("x")}}}, ErrRowShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestStrings_RejectsMalformed(t *testing.T) {
	res := &Result{Columns: []string{"a", "b"}, Rows: [][]rdf.Term{{rdf.Literal("only-one")}}}
	cells, err := res.Strings(nil)
	assert.ErrorIs(t, err, ErrRowShape)
	assert.Nil(t, cells)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))

	want := `{"head":{"vars":["s","name","age"]},"results":{"bindings":[` +
		`{"age":{"type":"literal","value":"42","datatype":"http://www.w3.org/2001/XMLSchema#integer"},` +
		`"name":{"type":"literal","value":"Alice","xml:lang":"en"},` +
		`"s":{"type":"uri","value":"http://example.com/ns#alice"}},` +
		`{"name":{"type":"literal","value":"Bob"},"s":{"type":"bnode","value":"b0"}},` +
		`{"name":{"type":"literal","value":"http://example.com/ns#notAnIRI"},"s":{"type":"uri","value":"http://other.example/carol"}}` +
		`]}}` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestReadJSON(t *testing.T) {
	doc := `{
  "head": {"vars": ["s", "name", "age"]},
  "results": {"bindings": [
    {"s": {"type": "uri", "value": "http://example.com/ns#alice"},
     "name": {"type": "literal", "value": "Alice", "xml:lang": "EN"},
     "age": {"type": "typed-literal", "value": "42", "datatype": "http://www.w3.org/2001/XMLSchema#integer"}},
    {"s": {"type": "bnode", "value": "b0"}, "name": {"type": "literal", "value": "Bob"}}
  ]}
}`
	res, err := ReadJSON(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{"s", "name", "age"}, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, rdf.IRI("http://example.com/ns#alice"), res.Rows[0][0])
	assert.Equal(t, rdf.LangLiteral("Alice", "en"), res.Rows[0][1])
	assert.Equal(t, rdf.TypedLiteral("42", rdf.XSDInteger), res.Rows[0][2])
	assert.Equal(t, rdf.Blank("b0"), res.Rows[1][0])
	assert.Equal(t, rdf.Literal("Bob"), res.Rows[1][1])
	assert.True(t, res.Rows[1][2].IsZero())
}

func TestReadJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"syntax", `{"head":`, "decode results"},
		{"unknown var", `{"head":{"vars":["a"]},"results":{"bindings":[{"b":{"type":"uri","value":"x"}}]}}`, `variable "b" not in head`},
		{"unknown type", `{"head":{"vars":["a"]},"results":{"bindings":[{"a":{"type":"triple","value":"x"}}]}}`, `unknown term type "triple"`},
		{"no vars", `{"head":{"vars":[]},"results":{"bindings":[]}}`, ErrNoColumns.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			if tt.name != "no vars" {
				assert.ErrorIs(t, err, ErrMalformed)
			}
		})
	}
}

func TestJSONRoundTripPreservesTerms(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))

	res, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleResult(), res)
}
