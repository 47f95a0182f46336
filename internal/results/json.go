package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/arq/internal/rdf"
)

// MediaType is the registered media type of the JSON results format.
const MediaType = "application/sparql-results+json"

type document struct {
	Head    head     `json:"head"`
	Results bindings `json:"results"`
}

type head struct {
	Vars []string `json:"vars"`
}

type bindings struct {
	Bindings []map[string]binding `json:"bindings"`
}

type binding struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// MarshalJSON encodes r in the SPARQL 1.1 JSON results format. Unbound
// cells are omitted from their solution.
func (r *Result) MarshalJSON() ([]byte, error) {
	doc := document{
		Head:    head{Vars: r.Columns},
		Results: bindings{Bindings: make([]map[string]binding, 0, len(r.Rows))},
	}
	if doc.Head.Vars == nil {
		doc.Head.Vars = []string{}
	}

	for i, row := range r.Rows {
		if len(row) != len(r.Columns) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRowShape, i, len(row), len(r.Columns))
		}
		solution := make(map[string]binding, len(row))
		for j, term := range row {
			if term.IsZero() {
				continue
			}
			solution[r.Columns[j]] = encodeTerm(term)
		}
		doc.Results.Bindings = append(doc.Results.Bindings, solution)
	}
	return json.Marshal(doc)
}

func encodeTerm(t rdf.Term) binding {
	switch t.Kind {
	case rdf.KindIRI:
		return binding{Type: "uri", Value: t.Value}
	case rdf.KindBlank:
		return binding{Type: "bnode", Value: t.Value}
	default:
		b := binding{Type: "literal", Value: t.Value}
		switch {
		case t.Lang != "":
			b.Lang = t.Lang
		case t.Datatype != rdf.XSDString:
			b.Datatype = t.Datatype
		}
		return b
	}
}

// ErrMalformed is matched by ReadJSON errors for documents that are not
// valid SPARQL JSON results.
var ErrMalformed = errors.New("malformed results document")

// WriteJSON writes r to w in the SPARQL JSON results format.
func WriteJSON(w io.Writer, r *Result) error {
	data, err := r.MarshalJSON()
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ReadJSON decodes a SPARQL JSON results document. Variables missing from a
// solution are unbound. Bindings for variables not in the header are an
// error.
func ReadJSON(rd io.Reader) (*Result, error) {
	var doc document
	dec := json.NewDecoder(rd)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode results: %w", ErrMalformed, err)
	}

	res := &Result{
		Columns: doc.Head.Vars,
		Rows:    make([][]rdf.Term, 0, len(doc.Results.Bindings)),
	}
	index := make(map[string]int, len(res.Columns))
	for i, v := range res.Columns {
		index[v] = i
	}

	for n, solution := range doc.Results.Bindings {
		row := make([]rdf.Term, len(res.Columns))
		for name, b := range solution {
			i, ok := index[name]
			if !ok {
				return nil, fmt.Errorf("%w: solution %d: variable %q not in head", ErrMalformed, n, name)
			}
			term, err := decodeTerm(b)
			if err != nil {
				return nil, fmt.Errorf("solution %d: variable %q: %w", n, name, err)
			}
			row[i] = term
		}
		res.Rows = append(res.Rows, row)
	}

	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

func decodeTerm(b binding) (rdf.Term, error) {
	switch b.Type {
	case "uri":
		return rdf.IRI(b.Value), nil
	case "bnode":
		return rdf.Blank(b.Value), nil
	case "literal", "typed-literal":
		if b.Lang != "" {
			return rdf.LangLiteral(b.Value, b.Lang), nil
		}
		return rdf.TypedLiteral(b.Value, b.Datatype), nil
	default:
		return rdf.Term{}, fmt.Errorf("%w: unknown term type %q", ErrMalformed, b.Type)
	}
}
