package compile

import (
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/coreos/pkg/capnslog"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pontaoski/sponge/ast"
	"github.com/pontaoski/sponge/errors"
	spongetypes "github.com/pontaoski/sponge/types"
	"github.com/ztrue/tracerr"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/sponge", "compile")

// local is a stack slot holding a let binding. Unit bindings have no slot.
type local struct {
	ptr value.Value
	typ Type
}

type ctx struct {
	names           []map[string]local
	funcs           map[string]*ir.Func
	info            *Info
	rt              *runtime
	stringConstants map[string]constant.Constant
	module          *ir.Module

	fn     *ir.Func
	ret    Type
	block  *ir.Block
	labels int
}

func (c *ctx) pushScope() {
	c.names = append(c.names, make(map[string]local))
}

func (c *ctx) popScope() {
	c.names = c.names[:len(c.names)-1]
}

func (c *ctx) top() map[string]local {
	return c.names[len(c.names)-1]
}

func (c *ctx) lookup(name string) local {
	for i := len(c.names) - 1; i >= 0; i-- {
		val, ok := c.names[i][name]
		if ok {
			return val
		}
	}

	panic("could not lookup " + name)
}

func (c *ctx) label(base string) string {
	c.labels++
	return base + "." + strconv.Itoa(c.labels)
}

func hash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return strconv.FormatUint(uint64(h.Sum32()), 10)
}

func (c *ctx) text(s string) constant.Constant {
	if ptr, ok := c.stringConstants[s]; ok {
		return ptr
	}

	name := "sponge.str." + hash(s) + "." + strconv.Itoa(len(c.stringConstants))
	ptr := cstring(c.module, name, s)
	c.stringConstants[s] = ptr
	return ptr
}

func symbol(name string) string {
	return "sponge." + name
}

// Compile checks prog and lowers it to an LLVM module whose C entry point
// runs the Sponge main function.
func Compile(prog *ast.Program) (mod *ir.Module, err error) {
	info, err := Check(prog)
	if err != nil {
		return nil, err
	}
	if _, ok := prog.Lookup(ast.EntryPoint); !ok {
		return nil, tracerr.Wrap(errors.NameError{Name: ast.EntryPoint, Kind: "function"})
	}

	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if !ok {
				panic(r)
			}
			mod, err = nil, tracerr.Wrap(rerr)
		}
	}()

	m := ir.NewModule()
	c := &ctx{
		funcs:           map[string]*ir.Func{},
		info:            info,
		rt:              addBuiltins(m),
		stringConstants: map[string]constant.Constant{},
		module:          m,
	}

	// forward declarations first so calls can refer to later functions
	for _, f := range prog.Funcs {
		c.funcs[f.Name] = m.NewFunc(symbol(f.Name), llvmType(info.Returns[f.Name]))
	}
	for i := range prog.Funcs {
		c.function(&prog.Funcs[i])
	}

	opening := m.NewFunc("main", types.I32)
	bloc := opening.NewBlock("entry")
	bloc.NewCall(c.funcs[ast.EntryPoint])
	bloc.NewRet(constant.NewInt(types.I32, 0))

	plog.Debugf("lowered %d functions, %d string constants", len(prog.Funcs), len(c.stringConstants))
	return m, nil
}

func (c *ctx) function(f *ast.FunctionDecl) {
	c.fn = c.funcs[f.Name]
	c.ret = c.info.Returns[f.Name]
	c.block = c.fn.NewBlock("entry")
	c.names = nil

	plog.Tracef("lowering %s returning %s", f.Name, c.ret)

	c.pushScope()
	c.stmts(f.Body.Stmts)
	c.popScope()

	if c.block.Term == nil {
		if c.ret == Void {
			c.block.NewRet(nil)
		} else {
			// the checker proved every reachable path returns
			c.block.NewUnreachable()
		}
	}
}

func (c *ctx) stmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		if c.block.Term != nil {
			return
		}
		c.stmt(s)
	}
}

func (c *ctx) stmt(s ast.Stmt) {
	switch st := s.(type) {
	case ast.LetBinding:
		val, t := c.expr(st.Value)
		if t == Void {
			c.top()[st.Name] = local{typ: Void}
			return
		}

		alloca := c.block.NewAlloca(llvmType(t))
		c.block.NewStore(val, alloca)
		c.top()[st.Name] = local{ptr: alloca, typ: t}
	case ast.ExprStmt:
		c.expr(st.Value)
	case ast.ReturnStmt:
		if c.ret == Void {
			if st.Value != nil {
				c.expr(st.Value)
			}
			c.block.NewRet(nil)
			return
		}
		val, _ := c.expr(st.Value)
		c.block.NewRet(val)
	case ast.IfStmt:
		condVal, _ := c.expr(st.Condition)
		condCmp := c.block.NewICmp(enum.IPredNE, condVal, constant.NewInt(types.I64, 0))

		thenBloc := c.fn.NewBlock(c.label("then"))
		mergeBloc := c.fn.NewBlock(c.label("ifcont"))
		elseBloc := mergeBloc
		if st.Else != nil {
			elseBloc = c.fn.NewBlock(c.label("else"))
		}
		c.block.NewCondBr(condCmp, thenBloc, elseBloc)

		c.branch(thenBloc, st.Then, mergeBloc)
		if st.Else != nil {
			c.branch(elseBloc, *st.Else, mergeBloc)
		}

		c.block = mergeBloc
	default:
		panic(fmt.Sprintf("unhandled statement %T", s))
	}
}

func (c *ctx) branch(start *ir.Block, body ast.Block, merge *ir.Block) {
	c.block = start
	c.pushScope()
	c.stmts(body.Stmts)
	c.popScope()

	if c.block.Term == nil {
		c.block.NewBr(merge)
	}
}

func (c *ctx) expr(e ast.Expr) (value.Value, Type) {
	switch expr := e.(type) {
	case ast.Lit:
		switch lit := expr.Value.(type) {
		case ast.Integer:
			return constant.NewInt(types.I64, int64(lit)), Int
		case ast.Text:
			return c.text(string(lit)), Str
		}
		panic("unimplemented")
	case ast.VarRef:
		v := c.lookup(expr.Name)
		if v.typ == Void {
			return nil, Void
		}
		return c.block.NewLoad(llvmType(v.typ), v.ptr), v.typ
	case ast.BinaryExpr:
		return c.binary(expr)
	case ast.Call:
		call := c.block.NewCall(c.funcs[expr.Function])
		t := c.info.Returns[expr.Function]
		if t == Void {
			return nil, Void
		}
		return call, t
	case ast.PrintCall:
		val, t := c.expr(expr.Args[0])
		format := c.rt.intFormat
		if t == Str {
			format = c.rt.textFormat
		}
		c.block.NewCall(c.rt.printf, format, val)
		return nil, Void
	}

	panic("unhandled")
}

func (c *ctx) binary(expr ast.BinaryExpr) (value.Value, Type) {
	left, lt := c.expr(expr.Left)
	right, _ := c.expr(expr.Right)

	switch expr.Op {
	case spongetypes.PLUS:
		return c.block.NewAdd(left, right), Int
	case spongetypes.MINUS:
		return c.block.NewSub(left, right), Int
	case spongetypes.STAR:
		return c.block.NewMul(left, right), Int
	case spongetypes.SLASH:
		return c.divide(left, right, expr.Pos), Int
	case spongetypes.GT:
		return c.truth(c.block.NewICmp(enum.IPredSGT, left, right)), Int
	case spongetypes.LT:
		return c.truth(c.block.NewICmp(enum.IPredSLT, left, right)), Int
	case spongetypes.EQ, spongetypes.NOTEQ:
		pred := enum.IPredEQ
		if expr.Op == spongetypes.NOTEQ {
			pred = enum.IPredNE
		}
		if lt == Str {
			cmp := c.block.NewCall(c.rt.strcmp, left, right)
			return c.truth(c.block.NewICmp(pred, cmp, constant.NewInt(types.I32, 0))), Int
		}
		return c.truth(c.block.NewICmp(pred, left, right)), Int
	}

	panic(fmt.Sprintf("unhandled operator %s", expr.Op))
}

func (c *ctx) truth(cmp value.Value) value.Value {
	return c.block.NewZExt(cmp, types.I64)
}

// divide traps on a zero divisor and avoids the undefined sdiv of the most
// negative integer by -1, which wraps instead.
func (c *ctx) divide(left, right value.Value, at spongetypes.Span) value.Value {
	isZero := c.block.NewICmp(enum.IPredEQ, right, constant.NewInt(types.I64, 0))
	trap := c.fn.NewBlock(c.label("divzero"))
	cont := c.fn.NewBlock(c.label("div"))
	c.block.NewCondBr(isZero, trap, cont)

	trap.NewCall(c.rt.divzero, constant.NewInt(types.I64, int64(at.From.Line)))
	trap.NewUnreachable()

	c.block = cont
	isMinusOne := c.block.NewICmp(enum.IPredEQ, right, constant.NewInt(types.I64, -1))
	divisor := c.block.NewSelect(isMinusOne, constant.NewInt(types.I64, 1), right)
	quotient := c.block.NewSDiv(left, divisor)
	negated := c.block.NewSub(constant.NewInt(types.I64, 0), left)
	return c.block.NewSelect(isMinusOne, negated, quotient)
}
