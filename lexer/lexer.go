package lexer

import (
	"bufio"
	"io"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/pontaoski/sponge/errors"
	"github.com/pontaoski/sponge/types"
	"github.com/ztrue/tracerr"
)

// Lexer turns source text into tokens on demand. It reads its input once;
// lexing the same text again needs a new Lexer.
type Lexer struct {
	pos    types.Position
	prev   types.Position
	reader *bufio.Reader
	peeked *types.Token
}

func NewLexer(reader io.Reader, filename string) *Lexer {
	return &Lexer{
		pos:    types.Position{Line: 1, Column: 0, Filename: filename},
		reader: bufio.NewReader(reader),
	}
}

func (l *Lexer) read() (rune, bool) {
	r, size, err := l.reader.ReadRune()
	if err != nil {
		if err == io.EOF {
			return 0, false
		}
		panic(err)
	}

	l.prev = l.pos
	if r == '\n' {
		l.pos.Line++
		l.pos.Column = 0
	} else {
		l.pos.Column++
	}

	if r == utf8.RuneError && size == 1 {
		panic(errors.LexError{
			Char:     r,
			Message:  "invalid UTF-8 encoding",
			Location: types.SingleCharSpan(l.pos),
		})
	}

	return r, true
}

func (l *Lexer) backup() {
	if err := l.reader.UnreadRune(); err != nil {
		panic(err)
	}

	l.pos = l.prev
}

// accept consumes the next rune if it is want.
func (l *Lexer) accept(want rune) bool {
	r, ok := l.read()
	if !ok {
		return false
	}
	if r != want {
		l.backup()
		return false
	}
	return true
}

func (l *Lexer) token(kind types.TokenKind, lit string, from types.Position) types.Token {
	return types.Token{
		Kind:     kind,
		Lit:      lit,
		Location: types.Span{From: from, To: l.pos},
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func firstChar(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func otherChar(r rune) bool {
	return firstChar(r) || isDigit(r)
}

func (l *Lexer) lexIdent(first rune, from types.Position) types.Token {
	lit := string(first)

	for {
		r, ok := l.read()
		if !ok {
			break
		}
		if !otherChar(r) {
			l.backup()
			break
		}
		lit += string(r)
	}

	if kind, ok := types.Keywords[lit]; ok {
		return l.token(kind, lit, from)
	}
	return l.token(types.IDENT, lit, from)
}

func (l *Lexer) lexInt(first rune, from types.Position) types.Token {
	lit := string(first)

	for {
		r, ok := l.read()
		if !ok {
			break
		}
		if !isDigit(r) {
			l.backup()
			break
		}
		lit += string(r)
	}

	if _, err := strconv.ParseInt(lit, 10, 64); err != nil {
		panic(errors.LexError{
			Char:     first,
			Message:  "integer literal " + lit + " out of range",
			Location: types.Span{From: from, To: l.pos},
		})
	}

	return l.token(types.INT, lit, from)
}

// lexString is called past the opening quote. Strings carry no escapes and
// may not span lines.
func (l *Lexer) lexString(from types.Position) types.Token {
	var lit []rune

	for {
		r, ok := l.read()
		if !ok || r == '\n' {
			panic(errors.LexError{
				Char:     '"',
				Message:  "unterminated string literal",
				Location: types.SingleCharSpan(from),
			})
		}
		if r == '"' {
			return l.token(types.STRING, string(lit), from)
		}
		lit = append(lit, r)
	}
}

func (l *Lexer) skipComment() {
	for {
		r, ok := l.read()
		if !ok || r == '\n' {
			return
		}
	}
}

var punctuation = map[rune]types.TokenKind{
	'(': types.LPAREN,
	')': types.RPAREN,
	'{': types.LBRACKET,
	'}': types.RBRACKET,
	',': types.COMMA,
	';': types.EOS,
	'+': types.PLUS,
	'-': types.MINUS,
	'*': types.STAR,
	'/': types.SLASH,
	'>': types.GT,
	'<': types.LT,
}

func (l *Lexer) Peek() types.Token {
	if l.peeked != nil {
		return *l.peeked
	}

	tok := l.Lex()
	l.peeked = &tok

	return tok
}

func (l *Lexer) PeekIs(k ...types.TokenKind) bool {
	token := l.Peek()
	for _, kind := range k {
		if token.Kind == kind {
			return true
		}
	}

	return false
}

func (l *Lexer) LexExpecting(k ...types.TokenKind) types.Token {
	token := l.Lex()
	for _, kind := range k {
		if token.Kind == kind {
			return token
		}
	}

	panic(errors.ParseError{
		Expected: k,
		Got:      token,
		Location: token.Location,
	})
}

// Lex returns the next token. Malformed input panics with an
// errors.LexError; Next is the non-panicking form.
func (l *Lexer) Lex() types.Token {
	if l.peeked != nil {
		defer func() { l.peeked = nil }()
		return *l.peeked
	}

	for {
		r, ok := l.read()
		if !ok {
			return l.token(types.EOF, "", l.pos)
		}
		from := l.pos

		switch {
		case r == '#':
			l.skipComment()
			continue
		case unicode.IsSpace(r):
			continue
		case r == '=':
			if l.accept('=') {
				return l.token(types.EQ, "==", from)
			}
			return l.token(types.EQUALS, "=", from)
		case r == '!':
			if l.accept('=') {
				return l.token(types.NOTEQ, "!=", from)
			}
			panic(errors.LexError{
				Char:     r,
				Message:  "expected = after !",
				Location: types.SingleCharSpan(from),
			})
		case r == '"':
			return l.lexString(from)
		case isDigit(r):
			return l.lexInt(r, from)
		case firstChar(r):
			return l.lexIdent(r, from)
		}

		if kind, ok := punctuation[r]; ok {
			return l.token(kind, string(r), from)
		}

		panic(errors.LexError{
			Char:     r,
			Location: types.SingleCharSpan(from),
		})
	}
}

// Next is Lex with lexing failures returned instead of raised.
func (l *Lexer) Next() (tok types.Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if !ok {
				panic(r)
			}
			err = tracerr.Wrap(rerr)
		}
	}()

	return l.Lex(), nil
}

// Tokens lexes the whole input. The EOF token is not included.
func Tokens(r io.Reader, filename string) ([]types.Token, error) {
	l := NewLexer(r, filename)

	var ret []types.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == types.EOF {
			return ret, nil
		}
		ret = append(ret, tok)
	}
}
