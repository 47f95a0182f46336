// Package syntax tokenizes SPARQL query text for the query front end.
package syntax

import (
	"fmt"
	"strings"
)

// Kind identifies a token.
type Kind int

const (
	EOF Kind = iota
	IRIRef
	PName
	BlankLabel
	Var
	String
	LangTag
	DoubleCaret
	Integer
	Decimal
	Double
	Ident
	Punct
)

var kindNames = map[Kind]string{
	EOF:         "end of input",
	IRIRef:      "IRI",
	PName:       "prefixed name",
	BlankLabel:  "blank node label",
	Var:         "variable",
	String:      "string",
	LangTag:     "language tag",
	DoubleCaret: "'^^'",
	Integer:     "integer",
	Decimal:     "decimal",
	Double:      "double",
	Ident:       "keyword",
	Punct:       "punctuation",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Pos is a 1-based line and column.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is a lexical token. Value holds the decoded content: IRIs without
// angle brackets, strings unescaped, variables and labels without sigils,
// language tags without '@'.
type Token struct {
	Kind  Kind
	Value string
	Pos   Pos
}

// Is reports whether t is punctuation or a keyword spelled s. Keywords
// compare case-insensitively.
func (t Token) Is(s string) bool {
	switch t.Kind {
	case Punct:
		return t.Value == s
	case Ident:
		return strings.EqualFold(t.Value, s)
	default:
		return false
	}
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return t.Kind.String()
	case Punct, Ident:
		return fmt.Sprintf("%q", t.Value)
	default:
		return fmt.Sprintf("%s %q", t.Kind, t.Value)
	}
}

// Error is a positioned syntax error.
type Error struct {
	Pos Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Errorf returns a positioned *Error.
func Errorf(pos Pos, format string, args ...any) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
