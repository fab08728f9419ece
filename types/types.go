package types

import (
	"fmt"
)

type Position struct {
	Line     int
	Column   int
	Filename string
}

type Span struct {
	From Position
	To   Position
}

type TokenKind int

const (
	EOF TokenKind = iota
	ILLEGAL

	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	COMMA

	EQUALS
	EOS
	PLUS
	MINUS
	STAR
	SLASH
	GT
	LT
	EQ
	NOTEQ

	INT
	IDENT
	STRING

	FUNC
	LET
	IF
	ELSE
	RETURN
)

var kindNames = map[TokenKind]string{
	EOF:      "EOF",
	ILLEGAL:  "ILLEGAL",
	LPAREN:   "LPAREN",
	RPAREN:   "RPAREN",
	LBRACKET: "LBRACKET",
	RBRACKET: "RBRACKET",
	COMMA:    "COMMA",
	EQUALS:   "EQUALS",
	EOS:      "EOS",
	PLUS:     "PLUS",
	MINUS:    "MINUS",
	STAR:     "STAR",
	SLASH:    "SLASH",
	GT:       "GT",
	LT:       "LT",
	EQ:       "EQ",
	NOTEQ:    "NOTEQ",
	INT:      "INT",
	IDENT:    "IDENT",
	STRING:   "STRING",
	FUNC:     "FUNC",
	LET:      "LET",
	IF:       "IF",
	ELSE:     "ELSE",
	RETURN:   "RETURN",
}

func (t TokenKind) String() string {
	if name, ok := kindNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(t))
}

// Symbol is the fixed spelling of operator, punctuation and keyword kinds.
// Kinds with a variable lexeme return "".
func (t TokenKind) Symbol() string {
	switch t {
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case LBRACKET:
		return "{"
	case RBRACKET:
		return "}"
	case COMMA:
		return ","
	case EQUALS:
		return "="
	case EOS:
		return ";"
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case STAR:
		return "*"
	case SLASH:
		return "/"
	case GT:
		return ">"
	case LT:
		return "<"
	case EQ:
		return "=="
	case NOTEQ:
		return "!="
	case FUNC:
		return "func"
	case LET:
		return "let"
	case IF:
		return "if"
	case ELSE:
		return "else"
	case RETURN:
		return "return"
	}
	return ""
}

func (t TokenKind) IsKeyword() bool {
	return t >= FUNC && t <= RETURN
}

func (t TokenKind) IsOperator() bool {
	return t >= EQUALS && t <= NOTEQ
}

func (t TokenKind) IsPunctuation() bool {
	return t >= LPAREN && t <= COMMA
}

func (t TokenKind) IsComparison() bool {
	switch t {
	case GT, LT, EQ, NOTEQ:
		return true
	}
	return false
}

var Keywords = map[string]TokenKind{
	"func":   FUNC,
	"let":    LET,
	"if":     IF,
	"else":   ELSE,
	"return": RETURN,
}

func (p Position) String() string {
	if p.Filename == "" {
		p.Filename = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.From, s.To.Line, s.To.Column)
}

func SingleCharSpan(p Position) Span {
	return Span{p, p}
}

type Token struct {
	Kind     TokenKind
	Lit      string
	Location Span
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case INT, IDENT:
		return fmt.Sprintf("%s %s", t.Kind, t.Lit)
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Lit)
}
