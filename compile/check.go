package compile

import (
	"fmt"

	"github.com/pontaoski/sponge/ast"
	"github.com/pontaoski/sponge/errors"
	"github.com/pontaoski/sponge/types"
	"github.com/ztrue/tracerr"
)

// Type is the static counterpart of an interpreter value.
type Type int

const (
	Unknown Type = iota
	Int
	Str
	Void
)

func (t Type) String() string {
	switch t {
	case Int:
		return "Integer"
	case Str:
		return "Text"
	case Void:
		return "Unit"
	}
	return "unknown"
}

// unify merges two observations of the same type; Unknown matches anything.
func unify(a, b Type) (Type, bool) {
	switch {
	case a == Unknown:
		return b, true
	case b == Unknown:
		return a, true
	}
	return a, a == b
}

// Info is what the checker learned about a program.
type Info struct {
	Returns map[string]Type
}

const (
	pending = iota + 1
	done
)

type checker struct {
	prog    *ast.Program
	info    *Info
	state   map[string]int
	names   []map[string]Type
	current string
	ret     Type
	final   bool
}

// Check infers the return type of every function and rejects programs whose
// operators, conditions, prints or calls cannot succeed for any run.
func Check(prog *ast.Program) (info *Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if !ok {
				panic(r)
			}
			info, err = nil, tracerr.Wrap(rerr)
		}
	}()

	c := &checker{
		prog:  prog,
		info:  &Info{Returns: map[string]Type{}},
		state: map[string]int{},
	}

	for _, f := range prog.Funcs {
		c.returnType(f.Name, types.Span{})
	}
	for name, t := range c.info.Returns {
		if t == Unknown {
			c.info.Returns[name] = Void
		}
	}

	// bodies are checked again now that every return type is settled
	c.final = true
	for i := range prog.Funcs {
		c.function(&prog.Funcs[i])
	}

	return c.info, nil
}

func (c *checker) returnType(name string, at types.Span) Type {
	switch c.state[name] {
	case done:
		return c.info.Returns[name]
	case pending:
		return Unknown
	}

	f, ok := c.prog.Lookup(name)
	if !ok {
		panic(errors.NameError{Name: name, Kind: "function", Location: at})
	}

	c.state[name] = pending
	t := c.function(f)
	c.state[name] = done
	c.info.Returns[name] = t

	return t
}

// function checks one body and returns its inferred return type.
func (c *checker) function(f *ast.FunctionDecl) Type {
	savedNames, savedCurrent, savedRet := c.names, c.current, c.ret
	defer func() {
		c.names, c.current, c.ret = savedNames, savedCurrent, savedRet
	}()

	c.names = []map[string]Type{{}}
	c.current = f.Name
	c.ret = Unknown
	if c.final {
		c.ret = c.info.Returns[f.Name]
	}

	c.block(f.Body)
	if !terminates(f.Body) {
		c.returns(Void, f.Body.Pos)
	}
	return c.ret
}

func (c *checker) returns(t Type, at types.Span) {
	merged, ok := unify(c.ret, t)
	if !ok {
		panic(errors.TypeError{
			Message:  fmt.Sprintf("function %s returns both %s and %s", c.current, c.ret, t),
			Location: at,
		})
	}
	c.ret = merged
}

// terminates reports whether every path through b ends in a return.
func terminates(b ast.Block) bool {
	if len(b.Stmts) == 0 {
		return false
	}
	for _, s := range b.Stmts {
		switch st := s.(type) {
		case ast.ReturnStmt:
			return true
		case ast.IfStmt:
			if st.Else != nil && terminates(st.Then) && terminates(*st.Else) {
				return true
			}
		}
	}
	return false
}

func (c *checker) pushScope() {
	c.names = append(c.names, map[string]Type{})
}

func (c *checker) popScope() {
	c.names = c.names[:len(c.names)-1]
}

func (c *checker) lookup(name string) (Type, bool) {
	for i := len(c.names) - 1; i >= 0; i-- {
		if t, ok := c.names[i][name]; ok {
			return t, true
		}
	}
	return Unknown, false
}

func (c *checker) top() map[string]Type {
	return c.names[len(c.names)-1]
}

func (c *checker) block(b ast.Block) {
	for _, s := range b.Stmts {
		c.stmt(s)
	}
}

func (c *checker) stmt(s ast.Stmt) {
	switch st := s.(type) {
	case ast.LetBinding:
		c.top()[st.Name] = c.expr(st.Value)
	case ast.ExprStmt:
		c.expr(st.Value)
	case ast.ReturnStmt:
		if st.Value == nil {
			c.returns(Void, st.Pos)
		} else {
			c.returns(c.expr(st.Value), st.Pos)
		}
	case ast.IfStmt:
		if t := c.expr(st.Condition); t != Int && t != Unknown {
			panic(errors.TypeError{
				Message:  "if condition must be Integer, got " + t.String(),
				Location: ast.PosOf(st.Condition),
			})
		}
		c.pushScope()
		c.block(st.Then)
		c.popScope()
		if st.Else != nil {
			c.pushScope()
			c.block(*st.Else)
			c.popScope()
		}
	default:
		panic(fmt.Sprintf("unhandled statement %T", s))
	}
}

func (c *checker) expr(e ast.Expr) Type {
	switch ex := e.(type) {
	case ast.Lit:
		switch ex.Value.(type) {
		case ast.Integer:
			return Int
		case ast.Text:
			return Str
		}
		panic(fmt.Sprintf("unhandled literal %T", ex.Value))
	case ast.VarRef:
		t, ok := c.lookup(ex.Name)
		if !ok {
			panic(errors.NameError{Name: ex.Name, Kind: "variable", Location: ex.Pos})
		}
		return t
	case ast.BinaryExpr:
		return binaryType(ex.Op, c.expr(ex.Left), c.expr(ex.Right), ex.Pos)
	case ast.Call:
		if _, ok := c.prog.Lookup(ex.Function); !ok {
			panic(errors.NameError{Name: ex.Function, Kind: "function", Location: ex.Pos})
		}
		if len(ex.Args) != 0 {
			panic(errors.TypeError{
				Message:  fmt.Sprintf("function %s takes no arguments, got %d", ex.Function, len(ex.Args)),
				Location: ex.Pos,
			})
		}
		return c.returnType(ex.Function, ex.Pos)
	case ast.PrintCall:
		if len(ex.Args) != 1 {
			panic(errors.TypeError{
				Message:  fmt.Sprintf("print takes exactly 1 argument, got %d", len(ex.Args)),
				Location: ex.Pos,
			})
		}
		if t := c.expr(ex.Args[0]); t == Void {
			panic(errors.TypeError{
				Message:  "print needs an Integer or Text, got Unit",
				Location: ast.PosOf(ex.Args[0]),
			})
		}
		return Void
	}

	panic(fmt.Sprintf("unhandled expression %T", e))
}

func binaryType(op types.TokenKind, left, right Type, at types.Span) Type {
	bad := func() Type {
		panic(errors.OperandTypes(op.Symbol(), left.String(), right.String(), at))
	}

	switch op {
	case types.PLUS, types.MINUS, types.STAR, types.SLASH, types.GT, types.LT:
		if _, ok := unify(left, Int); !ok {
			return bad()
		}
		if _, ok := unify(right, Int); !ok {
			return bad()
		}
		return Int
	case types.EQ, types.NOTEQ:
		t, ok := unify(left, right)
		if !ok || t == Void {
			return bad()
		}
		return Int
	}

	panic(fmt.Sprintf("unhandled operator %s", op))
}
