package parser

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pontaoski/sponge/ast"
	"github.com/pontaoski/sponge/errors"
	"github.com/pontaoski/sponge/lexer"
	"github.com/pontaoski/sponge/types"
	"github.com/ztrue/tracerr"
)

type Parser struct {
	l   *lexer.Lexer
	ast *ast.Program
}

func NewParser(l *lexer.Lexer) Parser {
	return Parser{l, ast.NewProgram()}
}

// Parse reads function declarations until the end of input. The first
// lexing or grammar error aborts the whole parse.
func (p *Parser) Parse() (prog *ast.Program, err error) {
	defer recoverInto(&err)

	for !p.l.PeekIs(types.EOF) {
		f := p.parseFunction()
		if err := p.ast.Add(f); err != nil {
			panic(err)
		}
	}

	return p.ast, nil
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		rerr, ok := r.(error)
		if ok {
			*err = tracerr.Wrap(rerr)
		} else {
			panic(r)
		}
	}
}

func Parse(r io.Reader, filename string) (*ast.Program, error) {
	p := NewParser(lexer.NewLexer(r, filename))
	return p.Parse()
}

func ParseFile(path string) (*ast.Program, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	defer handle.Close()

	return Parse(handle, path)
}

// Snippet is one chunk of interactive input: declarations and statements in
// the order they were typed.
type Snippet struct {
	Funcs []ast.FunctionDecl
	Stmts []ast.Stmt
}

// ParseInteractive accepts function declarations and bare statements in any
// order, as typed at a prompt.
func ParseInteractive(src string) (s *Snippet, err error) {
	defer recoverInto(&err)

	p := NewParser(lexer.NewLexer(strings.NewReader(src), "<repl>"))
	s = &Snippet{}
	for !p.l.PeekIs(types.EOF) {
		if p.l.PeekIs(types.FUNC) {
			s.Funcs = append(s.Funcs, p.parseFunction())
			continue
		}
		s.Stmts = append(s.Stmts, p.parseStatement())
	}

	return s, nil
}

func span(from, to types.Span) types.Span {
	return types.Span{From: from.From, To: to.To}
}

func (p *Parser) parseFunction() ast.FunctionDecl {
	start := p.l.LexExpecting(types.FUNC)
	name := p.l.LexExpecting(types.IDENT)
	p.l.LexExpecting(types.LPAREN)
	p.l.LexExpecting(types.RPAREN)
	body := p.parseBlock()

	return ast.FunctionDecl{
		Name: name.Lit,
		Body: body,
		Pos:  span(start.Location, body.Pos),
	}
}

func (p *Parser) parseBlock() ast.Block {
	open := p.l.LexExpecting(types.LBRACKET)

	var stmts []ast.Stmt
	for !p.l.PeekIs(types.RBRACKET) {
		if p.l.PeekIs(types.EOF) {
			tok := p.l.Peek()
			panic(errors.ParseError{
				Expected: []types.TokenKind{types.RBRACKET},
				Got:      tok,
				Location: tok.Location,
			})
		}
		stmts = append(stmts, p.parseStatement())
	}
	end := p.l.LexExpecting(types.RBRACKET)

	return ast.Block{
		Stmts: stmts,
		Pos:   span(open.Location, end.Location),
	}
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.l.Peek().Kind {
	case types.LET:
		start := p.l.Lex()
		name := p.l.LexExpecting(types.IDENT)
		p.l.LexExpecting(types.EQUALS)
		value := p.parseExpression()
		end := p.l.LexExpecting(types.EOS)

		return ast.LetBinding{
			Name:  name.Lit,
			Value: value,
			Pos:   span(start.Location, end.Location),
		}
	case types.IF:
		start := p.l.Lex()
		cond := p.parseExpression()
		then := p.parseBlock()
		stmt := ast.IfStmt{
			Condition: cond,
			Then:      then,
			Pos:       span(start.Location, then.Pos),
		}
		if p.l.PeekIs(types.ELSE) {
			p.l.Lex()
			elseBlock := p.parseBlock()
			stmt.Else = &elseBlock
			stmt.Pos = span(start.Location, elseBlock.Pos)
		}
		return stmt
	case types.RETURN:
		start := p.l.Lex()
		var value ast.Expr
		if !p.l.PeekIs(types.EOS) {
			value = p.parseExpression()
		}
		end := p.l.LexExpecting(types.EOS)

		return ast.ReturnStmt{
			Value: value,
			Pos:   span(start.Location, end.Location),
		}
	}

	value := p.parseExpression()
	end := p.l.LexExpecting(types.EOS)

	return ast.ExprStmt{
		Value: value,
		Pos:   span(ast.PosOf(value), end.Location),
	}
}

func (p *Parser) parseExpression() ast.Expr {
	return p.parseBinary(1)
}

// parseBinary climbs precedence levels: operands bind to the operator with
// the higher ast.Precedence, equal levels associate to the left. At most one
// comparison is allowed per level.
func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parsePrimary()
	compared := false

	for {
		op := p.l.Peek()
		prec := ast.Precedence(op.Kind)
		if prec == 0 || prec < minPrec {
			return left
		}
		if op.Kind.IsComparison() && compared {
			panic(errors.ParseError{
				Wanted:   "a single comparison (comparisons do not chain)",
				Got:      op,
				Location: op.Location,
			})
		}
		p.l.Lex()

		right := p.parseBinary(prec + 1)
		left = ast.BinaryExpr{
			Op:    op.Kind,
			Left:  left,
			Right: right,
			Pos:   span(ast.PosOf(left), ast.PosOf(right)),
		}
		if op.Kind.IsComparison() {
			compared = true
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.l.Lex()

	switch tok.Kind {
	case types.INT:
		parsed, err := strconv.ParseInt(tok.Lit, 10, 64)
		if err != nil {
			panic(err)
		}
		return ast.Lit{Value: ast.Integer(parsed), Pos: tok.Location}
	case types.STRING:
		return ast.Lit{Value: ast.Text(tok.Lit), Pos: tok.Location}
	case types.IDENT:
		if !p.l.PeekIs(types.LPAREN) {
			return ast.VarRef{Name: tok.Lit, Pos: tok.Location}
		}

		args, end := p.parseArguments()
		if tok.Lit == ast.PrintName {
			return ast.PrintCall{Args: args, Pos: span(tok.Location, end.Location)}
		}
		return ast.Call{
			Function: tok.Lit,
			Args:     args,
			Pos:      span(tok.Location, end.Location),
		}
	case types.LPAREN:
		inner := p.parseExpression()
		p.l.LexExpecting(types.RPAREN)
		return inner
	}

	panic(errors.ParseError{
		Wanted:   "an expression",
		Got:      tok,
		Location: tok.Location,
	})
}

func (p *Parser) parseArguments() ([]ast.Expr, types.Token) {
	p.l.LexExpecting(types.LPAREN)

	var args []ast.Expr
	if !p.l.PeekIs(types.RPAREN) {
		for {
			args = append(args, p.parseExpression())
			if p.l.PeekIs(types.RPAREN) {
				break
			}
			p.l.LexExpecting(types.COMMA, types.RPAREN)
		}
	}

	return args, p.l.LexExpecting(types.RPAREN)
}
