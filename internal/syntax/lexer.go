package syntax

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer splits SPARQL text into tokens.
type Lexer struct {
	src  string
	off  int
	line int
	col  int

	peeked *Token
}

// NewLexer returns a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	if l.peeked != nil {
		return *l.peeked, nil
	}
	tok, err := l.scan()
	if err != nil {
		return Token{}, err
	}
	l.peeked = &tok
	return tok, nil
}

// Next consumes and returns the next token.
func (l *Lexer) Next() (Token, error) {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok, nil
	}
	return l.scan()
}

func (l *Lexer) pos() Pos {
	return Pos{Line: l.line, Col: l.col}
}

func (l *Lexer) eof() bool {
	return l.off >= len(l.src)
}

func (l *Lexer) peekRune() rune {
	if l.eof() {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.off:])
	return r
}

func (l *Lexer) peekRuneAt(n int) rune {
	off := l.off
	for i := 0; i < n; i++ {
		if off >= len(l.src) {
			return -1
		}
		_, size := utf8.DecodeRuneInString(l.src[off:])
		off += size
	}
	if off >= len(l.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(l.src[off:])
	return r
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipSpaceAndComments() {
	for !l.eof() {
		r := l.peekRune()
		switch {
		case r == '#':
			for !l.eof() && l.peekRune() != '\n' {
				l.advance()
			}
		case unicode.IsSpace(r):
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) scan() (Token, error) {
	l.skipSpaceAndComments()
	start := l.pos()
	if l.eof() {
		return Token{Kind: EOF, Pos: start}, nil
	}

	r := l.peekRune()
	switch {
	case r == '<':
		return l.scanIRI(start)
	case r == '"' || r == '\'':
		return l.scanString(start)
	case r == '?' || r == '$':
		l.advance()
		name := l.scanName()
		if name == "" {
			return Token{}, Errorf(start, "empty variable name")
		}
		return Token{Kind: Var, Value: name, Pos: start}, nil
	case r == '@':
		l.advance()
		tag := l.scanLangTag()
		if tag == "" {
			return Token{}, Errorf(start, "empty language tag")
		}
		return Token{Kind: LangTag, Value: tag, Pos: start}, nil
	case r == '^':
		l.advance()
		if l.peekRune() != '^' {
			return Token{}, Errorf(start, "expected '^^'")
		}
		l.advance()
		return Token{Kind: DoubleCaret, Value: "^^", Pos: start}, nil
	case r == '_' && l.peekRuneAt(1) == ':':
		l.advance()
		l.advance()
		label := l.scanName()
		if label == "" {
			return Token{}, Errorf(start, "empty blank node label")
		}
		return Token{Kind: BlankLabel, Value: label, Pos: start}, nil
	case isDigit(r) || ((r == '+' || r == '-') && (isDigit(l.peekRuneAt(1)) || l.peekRuneAt(1) == '.')) ||
		(r == '.' && isDigit(l.peekRuneAt(1))):
		return l.scanNumber(start)
	case r == ':':
		l.advance()
		local := l.scanName()
		return Token{Kind: PName, Value: ":" + local, Pos: start}, nil
	case isNameStart(r):
		word := l.scanName()
		if l.peekRune() == ':' {
			l.advance()
			local := l.scanName()
			return Token{Kind: PName, Value: word + ":" + local, Pos: start}, nil
		}
		return Token{Kind: Ident, Value: word, Pos: start}, nil
	case strings.ContainsRune(".;,{}[]()*", r):
		l.advance()
		return Token{Kind: Punct, Value: string(r), Pos: start}, nil
	default:
		return Token{}, Errorf(start, "unexpected character %q", r)
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// scanName reads name characters. A '.' is kept only when another name
// character follows, so a statement terminator is never swallowed.
func (l *Lexer) scanName() string {
	var b strings.Builder
	for !l.eof() {
		r := l.peekRune()
		if isNameChar(r) {
			b.WriteRune(l.advance())
			continue
		}
		if r == '.' && isNameChar(l.peekRuneAt(1)) {
			b.WriteRune(l.advance())
			continue
		}
		break
	}
	return b.String()
}

func (l *Lexer) scanLangTag() string {
	var b strings.Builder
	for !l.eof() {
		r := l.peekRune()
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || isDigit(r) || (r == '-' && b.Len() > 0) {
			b.WriteRune(l.advance())
			continue
		}
		break
	}
	return b.String()
}

func (l *Lexer) scanIRI(start Pos) (Token, error) {
	l.advance() // '<'
	var b strings.Builder
	for {
		if l.eof() {
			return Token{}, Errorf(start, "unterminated IRI")
		}
		r := l.peekRune()
		switch {
		case r == '>':
			l.advance()
			return Token{Kind: IRIRef, Value: b.String(), Pos: start}, nil
		case r == '\\':
			escPos := l.pos()
			l.advance()
			u, err := l.scanUnicodeEscape(escPos)
			if err != nil {
				return Token{}, err
			}
			b.WriteRune(u)
		case r <= ' ' || strings.ContainsRune(`"{}|^`+"`", r):
			return Token{}, Errorf(l.pos(), "invalid character %q in IRI", r)
		default:
			b.WriteRune(l.advance())
		}
	}
}

func (l *Lexer) scanUnicodeEscape(pos Pos) (rune, error) {
	if l.eof() {
		return 0, Errorf(pos, "unterminated escape")
	}
	var n int
	switch l.advance() {
	case 'u':
		n = 4
	case 'U':
		n = 8
	default:
		return 0, Errorf(pos, "invalid escape in IRI")
	}
	return l.scanHex(pos, n)
}

func (l *Lexer) scanHex(pos Pos, n int) (rune, error) {
	if l.off+n > len(l.src) {
		return 0, Errorf(pos, "short unicode escape")
	}
	hex := l.src[l.off : l.off+n]
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, Errorf(pos, "invalid unicode escape %q", hex)
	}
	for i := 0; i < n; i++ {
		l.advance()
	}
	return rune(v), nil
}

func (l *Lexer) scanString(start Pos) (Token, error) {
	quote := l.advance()
	long := false
	if l.peekRune() == quote && l.peekRuneAt(1) == quote {
		l.advance()
		l.advance()
		long = true
	}

	var b strings.Builder
	for {
		if l.eof() {
			return Token{}, Errorf(start, "unterminated string")
		}
		r := l.peekRune()
		switch {
		case r == quote && !long:
			l.advance()
			return Token{Kind: String, Value: b.String(), Pos: start}, nil
		case r == quote && l.peekRuneAt(1) == quote && l.peekRuneAt(2) == quote:
			l.advance()
			l.advance()
			l.advance()
			return Token{Kind: String, Value: b.String(), Pos: start}, nil
		case r == '\\':
			escPos := l.pos()
			l.advance()
			e, err := l.scanStringEscape(escPos)
			if err != nil {
				return Token{}, err
			}
			b.WriteRune(e)
		case (r == '\n' || r == '\r') && !long:
			return Token{}, Errorf(l.pos(), "newline in string")
		default:
			b.WriteRune(l.advance())
		}
	}
}

func (l *Lexer) scanStringEscape(pos Pos) (rune, error) {
	if l.eof() {
		return 0, Errorf(pos, "unterminated escape")
	}
	switch c := l.advance(); c {
	case 't':
		return '\t', nil
	case 'b':
		return '\b', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 'f':
		return '\f', nil
	case '"', '\'', '\\':
		return c, nil
	case 'u':
		return l.scanHex(pos, 4)
	case 'U':
		return l.scanHex(pos, 8)
	default:
		return 0, Errorf(pos, "invalid escape '\\%c'", c)
	}
}

func (l *Lexer) scanNumber(start Pos) (Token, error) {
	var b strings.Builder
	if r := l.peekRune(); r == '+' || r == '-' {
		b.WriteRune(l.advance())
	}
	kind := Integer
	for isDigit(l.peekRune()) {
		b.WriteRune(l.advance())
	}
	if l.peekRune() == '.' && isDigit(l.peekRuneAt(1)) {
		kind = Decimal
		b.WriteRune(l.advance())
		for isDigit(l.peekRune()) {
			b.WriteRune(l.advance())
		}
	}
	if r := l.peekRune(); r == 'e' || r == 'E' {
		kind = Double
		b.WriteRune(l.advance())
		if r := l.peekRune(); r == '+' || r == '-' {
			b.WriteRune(l.advance())
		}
		if !isDigit(l.peekRune()) {
			return Token{}, Errorf(start, "malformed exponent in %q", b.String())
		}
		for isDigit(l.peekRune()) {
			b.WriteRune(l.advance())
		}
	}
	return Token{Kind: kind, Value: b.String(), Pos: start}, nil
}
