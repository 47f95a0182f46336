// Package rdf provides the RDF term model shared by the parsers, the store
// and result sets.
//
// This package imports nothing internal.
package rdf

import (
	"strings"
)

// TermKind identifies the kind of an RDF term.
type TermKind int

const (
	// KindUnbound marks a result cell with no binding. It is the zero value.
	KindUnbound TermKind = iota
	KindIRI
	KindLiteral
	KindBlank
)

func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindLiteral:
		return "literal"
	case KindBlank:
		return "blank"
	default:
		return "unbound"
	}
}

// Term is an IRI, literal or blank node.
//
// For literals Datatype is always set: plain literals carry XSDString and
// language-tagged literals carry RDFLangString.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Lang     string
}

// IRI returns an IRI term.
func IRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

// Literal returns a plain xsd:string literal.
func Literal(lexical string) Term {
	return Term{Kind: KindLiteral, Value: lexical, Datatype: XSDString}
}

// LangLiteral returns a language-tagged literal. Tags are stored lower case.
func LangLiteral(lexical, lang string) Term {
	return Term{Kind: KindLiteral, Value: lexical, Datatype: RDFLangString, Lang: strings.ToLower(lang)}
}

// TypedLiteral returns a literal with an explicit datatype. An empty
// datatype means xsd:string.
func TypedLiteral(lexical, datatype string) Term {
	if datatype == "" {
		datatype = XSDString
	}
	return Term{Kind: KindLiteral, Value: lexical, Datatype: datatype}
}

// Blank returns a blank node with the given label.
func Blank(label string) Term {
	return Term{Kind: KindBlank, Value: label}
}

// IsIRI reports whether t is an IRI.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// IsZero reports whether t is unbound.
func (t Term) IsZero() bool { return t.Kind == KindUnbound }

// Equal reports whether two terms are identical.
func (t Term) Equal(o Term) bool { return t == o }

// String returns the N-Triples form of t. Unbound terms render as "".
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		s := `"` + escapeLiteral(t.Value) + `"`
		switch {
		case t.Lang != "":
			return s + "@" + t.Lang
		case t.Datatype != "" && t.Datatype != XSDString:
			return s + "^^<" + t.Datatype + ">"
		default:
			return s
		}
	default:
		return ""
	}
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

// Triple is a single RDF statement.
type Triple struct {
	S, P, O Term
}

func (t Triple) String() string {
	return t.S.String() + " " + t.P.String() + " " + t.O.String() + " ."
}
