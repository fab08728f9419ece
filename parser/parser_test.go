package parser

import (
	"strings"
	"testing"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/sponge/ast"
	"github.com/pontaoski/sponge/errors"
	"github.com/pontaoski/sponge/types"
)

func parseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()

	prog, err := Parse(strings.NewReader("func main() { let v = "+src+"; }"), "expr.sp")
	if err != nil {
		t.Fatalf("%q: %s", src, err)
	}
	return prog.Funcs[0].Body.Stmts[0].(ast.LetBinding).Value
}

func TestFixture(t *testing.T) {
	prog, err := ParseFile("../testdata/input.sp")
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, f := range prog.Funcs {
		names = append(names, f.Name)
	}
	if got := strings.Join(names, ","); got != "test_arithmetic,test_semantic,test_minimal,main" {
		t.Fatalf("functions: %s", got)
	}

	semantic, ok := prog.Lookup("test_semantic")
	if !ok {
		t.Fatal("test_semantic missing")
	}
	ifStmt, ok := semantic.Body.Stmts[2].(ast.IfStmt)
	if !ok {
		t.Fatalf("third statement is %s", repr.String(semantic.Body.Stmts[2]))
	}
	if ifStmt.Else == nil {
		t.Fatal("else branch dropped")
	}
	if _, ok := ifStmt.Then.Stmts[0].(ast.ExprStmt).Value.(ast.PrintCall); !ok {
		t.Fatalf("print not parsed as PrintCall: %s", repr.String(ifStmt.Then.Stmts[0]))
	}

	minimal, _ := prog.Lookup("test_minimal")
	if ret, ok := minimal.Body.Stmts[0].(ast.ReturnStmt); !ok || ret.Value != nil {
		t.Fatalf("bare return: %s", repr.String(minimal.Body.Stmts[0]))
	}
}

func TestPrecedence(t *testing.T) {
	cases := map[string]string{
		"1 + 2 * 3":       "1 + 2 * 3",
		"(1 + 2) * 3":     "(1 + 2) * 3",
		"1 - 2 - 3":       "1 - 2 - 3",
		"1 - (2 - 3)":     "1 - (2 - 3)",
		"8 / 4 / 2":       "8 / 4 / 2",
		"x * 4 + 2 > 4":   "x * 4 + 2 > 4",
		"a == b + 1":      "a == b + 1",
		"(a < b) == 1":    "(a < b) == 1",
		"f() + g() * 2":   "f() + g() * 2",
		"((((7))))":       "7",
		"\"s\" != \"t\"":  "\"s\" != \"t\"",
		"1 + 2 * 3 - 4/2": "1 + 2 * 3 - 4 / 2",
	}

	for src, want := range cases {
		if got := ast.FormatExpr(parseExpr(t, src)); got != want {
			t.Errorf("%q: got %q, want %q", src, got, want)
		}
	}
}

func TestTreeShape(t *testing.T) {
	e := parseExpr(t, "1 + 2 * 3")

	add, ok := e.(ast.BinaryExpr)
	if !ok || add.Op != types.PLUS {
		t.Fatalf("root is not +: %s", repr.String(e))
	}
	mul, ok := add.Right.(ast.BinaryExpr)
	if !ok || mul.Op != types.STAR {
		t.Fatalf("right of + is not *: %s", repr.String(add.Right))
	}

	sub := parseExpr(t, "1 - 2 - 3").(ast.BinaryExpr)
	if _, ok := sub.Left.(ast.BinaryExpr); !ok {
		t.Fatalf("subtraction is not left associative: %s", repr.String(sub))
	}
}

func TestCallArguments(t *testing.T) {
	call, ok := parseExpr(t, "f(1, x, \"s\")").(ast.Call)
	if !ok {
		t.Fatal("expected a call")
	}
	if call.Function != "f" || len(call.Args) != 3 {
		t.Fatalf("got %s", repr.String(call))
	}

	pc, ok := parseExpr(t, "print()").(ast.PrintCall)
	if !ok || len(pc.Args) != 0 {
		t.Fatalf("got %s", repr.String(pc))
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src       string
		got       types.TokenKind
		line, col int
	}{
		{"func main() { let = 1; }", types.EQUALS, 1, 19},
		{"func main() { let x = 1 }", types.RBRACKET, 1, 25},
		{"func main(x) { }", types.IDENT, 1, 11},
		{"func main() {\n  print(1)\n}", types.RBRACKET, 3, 1},
		{"func main() { 1 < 2 < 3; }", types.LT, 1, 21},
		{"func main() { let x = ; }", types.EOS, 1, 23},
		{"func main() { if 1 { }", types.EOF, 1, 22},
		{"let x = 1;", types.LET, 1, 1},
		{"func main() { f(1,); }", types.RPAREN, 1, 19},
		{"func main() { f(1 2); }", types.INT, 1, 19},
	}

	for _, c := range cases {
		_, err := Parse(strings.NewReader(c.src), "bad.sp")
		if err == nil {
			t.Errorf("%q: expected an error", c.src)
			continue
		}
		perr, ok := errors.Cause(err).(errors.ParseError)
		if !ok {
			t.Errorf("%q: expected ParseError, got %T: %s", c.src, errors.Cause(err), err)
			continue
		}
		if perr.Got.Kind != c.got {
			t.Errorf("%q: found %s, want %s", c.src, perr.Got.Kind, c.got)
		}
		if perr.Location.From.Line != c.line || perr.Location.From.Column != c.col {
			t.Errorf("%q: at %s, want %d:%d", c.src, perr.Location.From, c.line, c.col)
		}
		if !strings.Contains(err.Error(), "bad.sp:") {
			t.Errorf("%q: message lacks position: %s", c.src, err)
		}
	}
}

func TestLexErrorsAbortParse(t *testing.T) {
	prog, err := Parse(strings.NewReader("func main() { print(\"oops); }"), "bad.sp")
	if prog != nil {
		t.Fatal("partial program returned")
	}
	if _, ok := errors.Cause(err).(errors.LexError); !ok {
		t.Fatalf("expected LexError, got %T: %v", errors.Cause(err), err)
	}
}

func TestDuplicateFunctions(t *testing.T) {
	_, err := Parse(strings.NewReader("func a() {} func a() {}"), "dup.sp")
	dup, ok := errors.Cause(err).(errors.DuplicateFunction)
	if !ok || dup.Name != "a" || dup.Builtin {
		t.Fatalf("got %T: %v", errors.Cause(err), err)
	}

	_, err = Parse(strings.NewReader("func print() {}"), "dup.sp")
	dup, ok = errors.Cause(err).(errors.DuplicateFunction)
	if !ok || !dup.Builtin {
		t.Fatalf("got %T: %v", errors.Cause(err), err)
	}
}

func TestParseInteractive(t *testing.T) {
	s, err := ParseInteractive("let x = 2; func f() { return 1; } print(x + f());")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Funcs) != 1 || s.Funcs[0].Name != "f" {
		t.Fatalf("funcs: %s", repr.String(s.Funcs))
	}
	if len(s.Stmts) != 2 {
		t.Fatalf("stmts: %s", repr.String(s.Stmts))
	}

	if _, err := ParseInteractive("let x = ;"); err == nil {
		t.Fatal("expected an error")
	}
}
