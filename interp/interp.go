package interp

import (
	"fmt"
	"io"
	"strconv"

	"github.com/coreos/pkg/capnslog"
	"github.com/pontaoski/sponge/ast"
	"github.com/pontaoski/sponge/errors"
	"github.com/pontaoski/sponge/types"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/sponge", "interp")

// Interpreter walks the AST of one program. It is not safe for concurrent
// use; independent runs should use independent interpreters.
type Interpreter struct {
	program  *ast.Program
	out      io.Writer
	stack    stack
	depth    int
	maxDepth int
}

type Option func(*Interpreter)

// WithMaxDepth bounds the call depth. Zero means unbounded.
func WithMaxDepth(n int) Option {
	return func(in *Interpreter) {
		in.maxDepth = n
	}
}

func New(program *ast.Program, out io.Writer, opts ...Option) *Interpreter {
	in := &Interpreter{
		program: program,
		out:     out,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run calls main and discards its result.
func (in *Interpreter) Run() error {
	_, err := in.Call(ast.EntryPoint)
	return err
}

// Call runs the named parameterless function to completion.
func (in *Interpreter) Call(name string) (Value, error) {
	f, err := in.program.Entry(name)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}

	plog.Debugf("running %s", name)
	v, err := in.call(f, f.Pos)
	if err != nil {
		plog.Debugf("%s aborted: %v", name, err)
		return nil, tracerr.Wrap(err)
	}
	return v, nil
}

type outcome struct {
	returned bool
	value    Value
}

var proceed = outcome{}

func (in *Interpreter) call(f *ast.FunctionDecl, at types.Span) (Value, error) {
	if in.maxDepth > 0 && in.depth >= in.maxDepth {
		return nil, errors.StackOverflow{Function: f.Name, Depth: in.maxDepth, Location: at}
	}

	in.depth++
	defer func() { in.depth-- }()

	if plog.LevelAt(capnslog.TRACE) {
		plog.Tracef("call %s depth=%d frames=%d", f.Name, in.depth, in.stack.depth())
	}

	frame := in.stack.push(-1)
	defer in.stack.pop()

	out, err := in.execBlock(f.Body, frame)
	if err != nil {
		return nil, err
	}
	if out.returned {
		return out.value, nil
	}
	return Unit{}, nil
}

func (in *Interpreter) execBlock(b ast.Block, frame int) (outcome, error) {
	for _, s := range b.Stmts {
		out, err := in.exec(s, frame)
		if err != nil || out.returned {
			return out, err
		}
	}
	return proceed, nil
}

func (in *Interpreter) exec(s ast.Stmt, frame int) (outcome, error) {
	switch st := s.(type) {
	case ast.LetBinding:
		v, err := in.eval(st.Value, frame)
		if err != nil {
			return proceed, err
		}
		in.stack.bind(frame, st.Name, v)
		return proceed, nil
	case ast.ExprStmt:
		_, err := in.eval(st.Value, frame)
		return proceed, err
	case ast.ReturnStmt:
		if st.Value == nil {
			return outcome{returned: true, value: Unit{}}, nil
		}
		v, err := in.eval(st.Value, frame)
		if err != nil {
			return proceed, err
		}
		return outcome{returned: true, value: v}, nil
	case ast.IfStmt:
		cond, err := in.eval(st.Condition, frame)
		if err != nil {
			return proceed, err
		}
		n, ok := cond.(Integer)
		if !ok {
			return proceed, errors.TypeError{
				Message:  "if condition must be Integer, got " + KindOf(cond),
				Location: ast.PosOf(st.Condition),
			}
		}

		branch := &st.Then
		if n == 0 {
			branch = st.Else
		}
		if branch == nil {
			return proceed, nil
		}

		child := in.stack.push(frame)
		plog.Tracef("enter block frame=%d parent=%d", child, frame)
		out, err := in.execBlock(*branch, child)
		in.stack.pop()
		return out, err
	}

	panic(fmt.Sprintf("unhandled statement %T", s))
}

func (in *Interpreter) eval(e ast.Expr, frame int) (Value, error) {
	switch ex := e.(type) {
	case ast.Lit:
		switch lit := ex.Value.(type) {
		case ast.Integer:
			return Integer(lit), nil
		case ast.Text:
			return Text(lit), nil
		}
		panic(fmt.Sprintf("unhandled literal %T", ex.Value))
	case ast.VarRef:
		v, ok := in.stack.lookup(frame, ex.Name)
		if !ok {
			return nil, errors.NameError{Name: ex.Name, Kind: "variable", Location: ex.Pos}
		}
		return v, nil
	case ast.BinaryExpr:
		left, err := in.eval(ex.Left, frame)
		if err != nil {
			return nil, err
		}
		right, err := in.eval(ex.Right, frame)
		if err != nil {
			return nil, err
		}
		return binary(ex.Op, left, right, ex.Pos)
	case ast.PrintCall:
		return in.print(ex, frame)
	case ast.Call:
		f, ok := in.program.Lookup(ex.Function)
		if !ok {
			return nil, errors.NameError{Name: ex.Function, Kind: "function", Location: ex.Pos}
		}
		if len(ex.Args) != 0 {
			return nil, errors.TypeError{
				Message:  fmt.Sprintf("function %s takes no arguments, got %d", ex.Function, len(ex.Args)),
				Location: ex.Pos,
			}
		}
		return in.call(f, ex.Pos)
	}

	panic(fmt.Sprintf("unhandled expression %T", e))
}

func (in *Interpreter) print(ex ast.PrintCall, frame int) (Value, error) {
	if len(ex.Args) != 1 {
		return nil, errors.TypeError{
			Message:  fmt.Sprintf("print takes exactly 1 argument, got %d", len(ex.Args)),
			Location: ex.Pos,
		}
	}

	v, err := in.eval(ex.Args[0], frame)
	if err != nil {
		return nil, err
	}

	var line string
	switch val := v.(type) {
	case Integer:
		line = strconv.FormatInt(int64(val), 10)
	case Text:
		line = string(val)
	case Unit:
		return nil, errors.TypeError{
			Message:  "print needs an Integer or Text, got Unit",
			Location: ast.PosOf(ex.Args[0]),
		}
	default:
		panic(fmt.Sprintf("unhandled value %T", v))
	}

	if _, err := io.WriteString(in.out, line+"\n"); err != nil {
		return nil, err
	}
	return Unit{}, nil
}

func binary(op types.TokenKind, left, right Value, at types.Span) (Value, error) {
	switch op {
	case types.PLUS, types.MINUS, types.STAR, types.SLASH, types.GT, types.LT:
		a, aok := left.(Integer)
		b, bok := right.(Integer)
		if !aok || !bok {
			return nil, errors.OperandTypes(op.Symbol(), KindOf(left), KindOf(right), at)
		}

		switch op {
		case types.PLUS:
			return a + b, nil
		case types.MINUS:
			return a - b, nil
		case types.STAR:
			return a * b, nil
		case types.SLASH:
			if b == 0 {
				return nil, errors.DivideByZeroError{Location: at}
			}
			return a / b, nil
		case types.GT:
			return truth(a > b), nil
		default:
			return truth(a < b), nil
		}
	case types.EQ, types.NOTEQ:
		var same bool
		switch a := left.(type) {
		case Integer:
			b, ok := right.(Integer)
			if !ok {
				return nil, errors.OperandTypes(op.Symbol(), KindOf(left), KindOf(right), at)
			}
			same = a == b
		case Text:
			b, ok := right.(Text)
			if !ok {
				return nil, errors.OperandTypes(op.Symbol(), KindOf(left), KindOf(right), at)
			}
			same = a == b
		default:
			return nil, errors.OperandTypes(op.Symbol(), KindOf(left), KindOf(right), at)
		}

		if op == types.NOTEQ {
			return truth(!same), nil
		}
		return truth(same), nil
	}

	panic(fmt.Sprintf("unhandled operator %s", op))
}
