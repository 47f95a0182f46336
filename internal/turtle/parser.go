// Package turtle reads Turtle documents into rdf triples using the
// geoknoesis/rdf-go streaming decoder. Literal lexical forms are
// NFC-normalized so equal text stores as one term.
package turtle

import (
	"context"
	"errors"
	"fmt"
	"io"

	rdfgo "github.com/geoknoesis/rdf-go/rdf"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/arq/internal/rdf"
	"github.com/roach88/arq/internal/syntax"
)

// ErrSyntax is matched by every error for input that is not valid Turtle.
var ErrSyntax = errors.New("invalid turtle")

// Parse reads a Turtle document. Anonymous blank nodes, including the
// nodes of expanded collections, are labelled b1, b2, ... by the decoder.
func Parse(ctx context.Context, r io.Reader) ([]rdf.Triple, error) {
	src := &recordingReader{r: r}
	dec, err := rdfgo.NewReader(src, rdfgo.FormatTurtle, rdfgo.OptContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("open turtle decoder: %w", err)
	}
	defer dec.Close()

	var triples []rdf.Triple
	for {
		stmt, err := dec.Next()
		if err == io.EOF {
			if src.err != nil {
				return nil, fmt.Errorf("read turtle: %w", src.err)
			}
			return triples, nil
		}
		if err != nil {
			return nil, decodeError(ctx, src, err)
		}

		t, err := convert(stmt)
		if err != nil {
			return nil, err
		}
		triples = append(triples, t)
	}
}

func decodeError(ctx context.Context, src *recordingReader, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if src.err != nil {
		return fmt.Errorf("read turtle: %w", src.err)
	}

	var pe *rdfgo.ParseError
	if errors.As(err, &pe) {
		if pe.Line > 0 {
			pos := syntax.Pos{Line: pe.Line, Col: pe.Column}
			return fmt.Errorf("%w: %w", ErrSyntax, syntax.Errorf(pos, "%v", pe.Err))
		}
		return fmt.Errorf("%w: %v", ErrSyntax, pe.Err)
	}
	return fmt.Errorf("%w: %v", ErrSyntax, err)
}

func convert(stmt rdfgo.Statement) (rdf.Triple, error) {
	s, err := term(stmt.S)
	if err != nil {
		return rdf.Triple{}, err
	}
	o, err := term(stmt.O)
	if err != nil {
		return rdf.Triple{}, err
	}
	return rdf.Triple{S: s, P: rdf.IRI(stmt.P.Value), O: o}, nil
}

func term(t rdfgo.Term) (rdf.Term, error) {
	switch v := t.(type) {
	case rdfgo.IRI:
		return rdf.IRI(v.Value), nil
	case rdfgo.BlankNode:
		return rdf.Blank(v.ID), nil
	case rdfgo.Literal:
		lexical := norm.NFC.String(v.Lexical)
		if v.Lang != "" {
			return rdf.LangLiteral(lexical, v.Lang), nil
		}
		return rdf.TypedLiteral(lexical, v.Datatype.Value), nil
	default:
		return rdf.Term{}, fmt.Errorf("%w: quoted triple %s is not supported", ErrSyntax, t)
	}
}

// recordingReader remembers the first read failure so it is not reported
// as a syntax error.
type recordingReader struct {
	r   io.Reader
	err error
}

func (r *recordingReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF && r.err == nil {
		r.err = err
	}
	return n, err
}
