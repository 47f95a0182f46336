// Package sparql parses the SELECT subset of SPARQL that the store can
// evaluate: a prologue of PREFIX and BASE declarations, a projection,
// one group of triple patterns, ORDER BY, LIMIT and OFFSET.
//
// Other query forms and graph patterns are rejected with ErrUnsupported.
package sparql

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/arq/internal/queryir"
	"github.com/roach88/arq/internal/rdf"
	"github.com/roach88/arq/internal/syntax"
)

// ErrUnsupported is matched by errors for valid SPARQL outside the
// supported subset.
var ErrUnsupported = errors.New("unsupported SPARQL feature")

// unsupportedKeywords open a graph pattern or clause the store cannot
// evaluate.
var unsupportedKeywords = []string{
	"ASK", "CONSTRUCT", "DESCRIBE", "FROM", "FILTER", "OPTIONAL", "UNION",
	"MINUS", "GRAPH", "SERVICE", "BIND", "VALUES", "GROUP", "HAVING",
}

// Parse parses a SELECT query. The returned query has Limit -1 when no
// LIMIT clause is present. Blank nodes in patterns become hidden variables
// (see queryir.IsHidden).
func Parse(text string) (*queryir.Select, error) {
	p := &parser{
		lex:      syntax.NewLexer(text),
		prefixes: make(map[string]string),
	}
	return p.query()
}

type parser struct {
	lex      *syntax.Lexer
	prefixes map[string]string
	base     *url.URL
	anon     int
}

func (p *parser) next() (syntax.Token, error) { return p.lex.Next() }
func (p *parser) peek() (syntax.Token, error) { return p.lex.Peek() }

func (p *parser) expect(s string) error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	if !tok.Is(s) {
		return p.unexpected(tok, fmt.Sprintf("%q", s))
	}
	return nil
}

// unexpected reports tok, classifying known but unsupported keywords as
// ErrUnsupported.
func (p *parser) unexpected(tok syntax.Token, want string) error {
	for _, kw := range unsupportedKeywords {
		if tok.Is(kw) {
			return unsupported(tok, strings.ToUpper(tok.Value))
		}
	}
	return syntax.Errorf(tok.Pos, "expected %s, found %s", want, tok)
}

func unsupported(tok syntax.Token, what string) error {
	return fmt.Errorf("%s: %w: %s", tok.Pos, ErrUnsupported, what)
}

func (p *parser) query() (*queryir.Select, error) {
	if err := p.prologue(); err != nil {
		return nil, err
	}

	q := &queryir.Select{Limit: -1}
	if err := p.expect("SELECT"); err != nil {
		return nil, err
	}

	star, err := p.projection(q)
	if err != nil {
		return nil, err
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Is("WHERE") {
		if _, err := p.next(); err != nil {
			return nil, err
		}
	}
	if err := p.group(q); err != nil {
		return nil, err
	}
	if err := p.modifiers(q); err != nil {
		return nil, err
	}

	tok, err = p.next()
	if err != nil {
		return nil, err
	}
	if tok.Kind != syntax.EOF {
		return nil, p.unexpected(tok, "end of query")
	}

	if star {
		for _, v := range q.PatternVars() {
			if !queryir.IsHidden(v) {
				q.Vars = append(q.Vars, v)
			}
		}
	}
	return q, nil
}

func (p *parser) prologue() error {
	for {
		tok, err := p.peek()
		if err != nil {
			return err
		}
		switch {
		case tok.Is("PREFIX"):
			if _, err := p.next(); err != nil {
				return err
			}
			name, err := p.next()
			if err != nil {
				return err
			}
			if name.Kind != syntax.PName || !strings.HasSuffix(name.Value, ":") {
				return syntax.Errorf(name.Pos, "expected prefix name ending in ':', found %s", name)
			}
			iri, err := p.iriRef()
			if err != nil {
				return err
			}
			p.prefixes[strings.TrimSuffix(name.Value, ":")] = iri
		case tok.Is("BASE"):
			if _, err := p.next(); err != nil {
				return err
			}
			iri, err := p.iriRef()
			if err != nil {
				return err
			}
			base, perr := url.Parse(iri)
			if perr != nil {
				return syntax.Errorf(tok.Pos, "invalid base IRI: %v", perr)
			}
			p.base = base
		default:
			return nil
		}
	}
}

func (p *parser) iriRef() (string, error) {
	tok, err := p.next()
	if err != nil {
		return "", err
	}
	if tok.Kind != syntax.IRIRef {
		return "", syntax.Errorf(tok.Pos, "expected IRI, found %s", tok)
	}
	return p.resolve(tok.Value), nil
}

// projection parses the modifiers and variable list after SELECT and
// reports whether it was "*".
func (p *parser) projection(q *queryir.Select) (bool, error) {
	tok, err := p.peek()
	if err != nil {
		return false, err
	}
	switch {
	case tok.Is("DISTINCT"):
		q.Distinct = true
		if _, err := p.next(); err != nil {
			return false, err
		}
	case tok.Is("REDUCED"):
		// REDUCED permits but does not require duplicate elimination.
		if _, err := p.next(); err != nil {
			return false, err
		}
	}

	tok, err = p.peek()
	if err != nil {
		return false, err
	}
	if tok.Is("*") {
		_, err := p.next()
		return true, err
	}

	for {
		tok, err := p.peek()
		if err != nil {
			return false, err
		}
		switch {
		case tok.Kind == syntax.Var:
			if _, err := p.next(); err != nil {
				return false, err
			}
			q.Vars = append(q.Vars, tok.Value)
		case tok.Is("("):
			return false, unsupported(tok, "projection expressions")
		default:
			if len(q.Vars) == 0 {
				p.next() //nolint:errcheck // already peeked
				return false, p.unexpected(tok, "variable or '*'")
			}
			return false, nil
		}
	}
}

// group parses "{ triples }". Triple blocks are separated by '.', and a
// trailing '.' is allowed.
func (p *parser) group(q *queryir.Select) error {
	if err := p.expect("{"); err != nil {
		return err
	}
	for {
		tok, err := p.peek()
		if err != nil {
			return err
		}
		switch {
		case tok.Is("}"):
			_, err := p.next()
			return err
		case tok.Is("{"):
			return unsupported(tok, "nested group patterns")
		case tok.Is("("):
			return unsupported(tok, "collections")
		}

		subject, err := p.subject()
		if err != nil {
			return err
		}
		if err := p.predicateObjectList(q, subject); err != nil {
			return err
		}

		tok, err = p.peek()
		if err != nil {
			return err
		}
		if tok.Is(".") {
			if _, err := p.next(); err != nil {
				return err
			}
			continue
		}
		if !tok.Is("}") {
			p.next() //nolint:errcheck // already peeked
			return p.unexpected(tok, "'.' or '}'")
		}
	}
}

func (p *parser) subject() (queryir.Node, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case syntax.Var:
		return queryir.Var{Name: tok.Value}, nil
	case syntax.BlankLabel:
		return queryir.Var{Name: queryir.HiddenVarPrefix + tok.Value}, nil
	case syntax.IRIRef, syntax.PName:
		return p.iriTerm(tok)
	}
	if tok.Is("[") {
		return p.anonymous(tok)
	}
	return nil, p.unexpected(tok, "subject")
}

func (p *parser) predicateObjectList(q *queryir.Select, subject queryir.Node) error {
	for {
		pred, err := p.verb()
		if err != nil {
			return err
		}
		if err := p.objectList(q, subject, pred); err != nil {
			return err
		}

		tok, err := p.peek()
		if err != nil {
			return err
		}
		if !tok.Is(";") {
			return nil
		}
		for tok.Is(";") {
			if _, err := p.next(); err != nil {
				return err
			}
			if tok, err = p.peek(); err != nil {
				return err
			}
		}
		if tok.Is(".") || tok.Is("}") {
			return nil
		}
	}
}

func (p *parser) verb() (queryir.Node, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch {
	case tok.Kind == syntax.Ident && tok.Value == "a":
		return queryir.Const{Term: rdf.IRI(rdf.RDFType)}, nil
	case tok.Kind == syntax.Var:
		return queryir.Var{Name: tok.Value}, nil
	case tok.Kind == syntax.IRIRef || tok.Kind == syntax.PName:
		return p.iriTerm(tok)
	case tok.Is("("):
		return nil, unsupported(tok, "property paths")
	default:
		return nil, p.unexpected(tok, "predicate")
	}
}

func (p *parser) objectList(q *queryir.Select, subject, pred queryir.Node) error {
	for {
		obj, err := p.object()
		if err != nil {
			return err
		}
		q.Patterns = append(q.Patterns, queryir.Pattern{S: subject, P: pred, O: obj})

		tok, err := p.peek()
		if err != nil {
			return err
		}
		if !tok.Is(",") {
			return nil
		}
		if _, err := p.next(); err != nil {
			return err
		}
	}
}

func (p *parser) object() (queryir.Node, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case syntax.Var:
		return queryir.Var{Name: tok.Value}, nil
	case syntax.BlankLabel:
		return queryir.Var{Name: queryir.HiddenVarPrefix + tok.Value}, nil
	case syntax.IRIRef, syntax.PName:
		return p.iriTerm(tok)
	case syntax.String:
		return p.literal(tok)
	case syntax.Integer:
		return constant(rdf.TypedLiteral(tok.Value, rdf.XSDInteger)), nil
	case syntax.Decimal:
		return constant(rdf.TypedLiteral(tok.Value, rdf.XSDDecimal)), nil
	case syntax.Double:
		return constant(rdf.TypedLiteral(tok.Value, rdf.XSDDouble)), nil
	case syntax.Ident:
		if tok.Value == "true" || tok.Value == "false" {
			return constant(rdf.TypedLiteral(tok.Value, rdf.XSDBoolean)), nil
		}
	}
	switch {
	case tok.Is("["):
		return p.anonymous(tok)
	case tok.Is("("):
		return nil, unsupported(tok, "collections")
	}
	return nil, p.unexpected(tok, "object")
}

// anonymous finishes "[]" after its opening bracket and returns a fresh
// hidden variable. The name cannot be written as a blank node label, so it
// never joins a labelled node.
func (p *parser) anonymous(open syntax.Token) (queryir.Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if !tok.Is("]") {
		return nil, unsupported(open, "blank node property lists")
	}
	p.next() //nolint:errcheck // already peeked
	p.anon++
	return queryir.Var{Name: fmt.Sprintf("%s[]%d", queryir.HiddenVarPrefix, p.anon)}, nil
}

func (p *parser) literal(str syntax.Token) (queryir.Node, error) {
	lexical := norm.NFC.String(str.Value)

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case syntax.LangTag:
		if _, err := p.next(); err != nil {
			return nil, err
		}
		return constant(rdf.LangLiteral(lexical, tok.Value)), nil
	case syntax.DoubleCaret:
		if _, err := p.next(); err != nil {
			return nil, err
		}
		dt, err := p.next()
		if err != nil {
			return nil, err
		}
		if dt.Kind != syntax.IRIRef && dt.Kind != syntax.PName {
			return nil, syntax.Errorf(dt.Pos, "expected datatype IRI, found %s", dt)
		}
		node, err := p.iriNode(dt)
		if err != nil {
			return nil, err
		}
		return constant(rdf.TypedLiteral(lexical, node.Term.Value)), nil
	default:
		return constant(rdf.Literal(lexical)), nil
	}
}

func (p *parser) iriNode(tok syntax.Token) (queryir.Const, error) {
	if tok.Kind == syntax.IRIRef {
		return constant(rdf.IRI(p.resolve(tok.Value))), nil
	}
	name, local, _ := strings.Cut(tok.Value, ":")
	ns, ok := p.prefixes[name]
	if !ok {
		return queryir.Const{}, syntax.Errorf(tok.Pos, "undefined prefix %q", name)
	}
	return constant(rdf.IRI(ns + local)), nil
}

func constant(t rdf.Term) queryir.Const {
	return queryir.Const{Term: t}
}

// modifiers parses ORDER BY, then LIMIT and OFFSET in either order.
func (p *parser) modifiers(q *queryir.Select) error {
	tok, err := p.peek()
	if err != nil {
		return err
	}
	if tok.Is("ORDER") {
		if _, err := p.next(); err != nil {
			return err
		}
		if err := p.expect("BY"); err != nil {
			return err
		}
		if err := p.orderKeys(q); err != nil {
			return err
		}
	}

	seenLimit, seenOffset := false, false
	for {
		tok, err := p.peek()
		if err != nil {
			return err
		}
		switch {
		case tok.Is("LIMIT") && !seenLimit:
			seenLimit = true
			if q.Limit, err = p.count(); err != nil {
				return err
			}
		case tok.Is("OFFSET") && !seenOffset:
			seenOffset = true
			if q.Offset, err = p.count(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (p *parser) orderKeys(q *queryir.Select) error {
	for {
		tok, err := p.peek()
		if err != nil {
			return err
		}
		switch {
		case tok.Kind == syntax.Var:
			if _, err := p.next(); err != nil {
				return err
			}
			q.OrderBy = append(q.OrderBy, queryir.OrderKey{Var: tok.Value})
		case tok.Is("ASC") || tok.Is("DESC"):
			if _, err := p.next(); err != nil {
				return err
			}
			if err := p.expect("("); err != nil {
				return err
			}
			v, err := p.next()
			if err != nil {
				return err
			}
			if v.Kind != syntax.Var {
				return unsupported(v, "ORDER BY expressions")
			}
			if err := p.expect(")"); err != nil {
				return err
			}
			q.OrderBy = append(q.OrderBy, queryir.OrderKey{Var: v.Value, Descending: tok.Is("DESC")})
		case tok.Is("("):
			return unsupported(tok, "ORDER BY expressions")
		default:
			if len(q.OrderBy) == 0 {
				p.next() //nolint:errcheck // already peeked
				return p.unexpected(tok, "ORDER BY key")
			}
			return nil
		}
	}
}

// count consumes a LIMIT or OFFSET keyword and its non-negative integer.
func (p *parser) count() (int, error) {
	kw, err := p.next()
	if err != nil {
		return 0, err
	}
	tok, err := p.next()
	if err != nil {
		return 0, err
	}
	if tok.Kind != syntax.Integer {
		return 0, syntax.Errorf(tok.Pos, "expected integer after %s, found %s", strings.ToUpper(kw.Value), tok)
	}
	n, err := strconv.Atoi(tok.Value)
	if err != nil || n < 0 || strings.HasPrefix(tok.Value, "+") {
		return 0, syntax.Errorf(tok.Pos, "%s must be a non-negative integer, found %s", strings.ToUpper(kw.Value), tok.Value)
	}
	return n, nil
}

// resolve makes a relative IRI absolute against the current base.
func (p *parser) resolve(iri string) string {
	if p.base == nil {
		return iri
	}
	ref, err := url.Parse(iri)
	if err != nil || ref.IsAbs() {
		return iri
	}
	return p.base.ResolveReference(ref).String()
}

func (p *parser) iriTerm(tok syntax.Token) (queryir.Node, error) {
	c, err := p.iriNode(tok)
	if err != nil {
		return nil, err
	}
	return c, nil
}
