package errors

import (
	"fmt"
	"strings"

	"github.com/pontaoski/sponge/types"
	"github.com/ztrue/tracerr"
)

// LexError reports a character sequence that does not form a token.
type LexError struct {
	Char     rune
	Message  string
	Location types.Span
}

func (e LexError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("lex error: %s. %s", e.Message, e.Location.From)
	}
	return fmt.Sprintf("lex error: unexpected character %q. %s", e.Char, e.Location.From)
}

// ParseError is raised on the first token that does not fit the grammar.
// Either Expected or Wanted describes what the parser was looking for.
type ParseError struct {
	Expected []types.TokenKind
	Wanted   string
	Got      types.Token
	Location types.Span
}

func (e ParseError) Error() string {
	want := e.Wanted
	if want == "" {
		var kinds []string
		for _, k := range e.Expected {
			kinds = append(kinds, k.String())
		}
		if len(kinds) == 1 {
			want = kinds[0]
		} else {
			want = "one of " + strings.Join(kinds, ", ")
		}
	}
	return fmt.Sprintf("parse error: got %s, expected %s. %s", e.Got, want, e.Location.From)
}

type DuplicateFunction struct {
	Name     string
	Builtin  bool
	Location types.Span
}

func (e DuplicateFunction) Error() string {
	if e.Builtin {
		return fmt.Sprintf("function %s shadows a builtin. %s", e.Name, e.Location.From)
	}
	return fmt.Sprintf("function %s declared more than once. %s", e.Name, e.Location.From)
}

// NameError reports an identifier that resolves to nothing. Kind is
// "variable" or "function".
type NameError struct {
	Name     string
	Kind     string
	Location types.Span
}

func (e NameError) Error() string {
	if e.Location == (types.Span{}) {
		return fmt.Sprintf("name error: undefined %s %s", e.Kind, e.Name)
	}
	return fmt.Sprintf("name error: undefined %s %s. %s", e.Kind, e.Name, e.Location.From)
}

type TypeError struct {
	Message  string
	Location types.Span
}

func (e TypeError) Error() string {
	return fmt.Sprintf("type error: %s. %s", e.Message, e.Location.From)
}

// OperandTypes builds the TypeError for a binary operator applied to
// unsupported operand kinds.
func OperandTypes(op string, left, right string, loc types.Span) TypeError {
	return TypeError{
		Message:  fmt.Sprintf("operator %s is not defined for %s and %s", op, left, right),
		Location: loc,
	}
}

type DivideByZeroError struct {
	Location types.Span
}

func (e DivideByZeroError) Error() string {
	return fmt.Sprintf("division by zero. %s", e.Location.From)
}

type StackOverflow struct {
	Function string
	Depth    int
	Location types.Span
}

func (e StackOverflow) Error() string {
	return fmt.Sprintf("call depth %d exceeded calling %s. %s", e.Depth, e.Function, e.Location.From)
}

// Cause strips the stack trace wrapper added at package boundaries and
// returns the typed error underneath.
func Cause(err error) error {
	if err == nil {
		return nil
	}
	return tracerr.Unwrap(err)
}
