package compile

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// runtime holds the libc declarations and helpers compiled programs call.
type runtime struct {
	printf  *ir.Func
	strcmp  *ir.Func
	divzero *ir.Func

	intFormat  constant.Constant
	textFormat constant.Constant
}

func cstring(m *ir.Module, name, s string) constant.Constant {
	g := m.NewGlobalDef(name, constant.NewCharArrayFromString(s+"\x00"))
	g.Immutable = true
	return constant.NewBitCast(g, types.I8Ptr)
}

func addBuiltins(m *ir.Module) *runtime {
	rt := &runtime{}

	funcs := []func(*ir.Module, *runtime){
		addLibc,
		addFormats,
		addDivZero,
	}
	for _, fn := range funcs {
		fn(m, rt)
	}

	return rt
}

func addLibc(m *ir.Module, rt *runtime) {
	rt.printf = m.NewFunc("printf", types.I32, ir.NewParam("format", types.I8Ptr))
	rt.printf.Sig.Variadic = true

	rt.strcmp = m.NewFunc("strcmp", types.I32, ir.NewParam("a", types.I8Ptr), ir.NewParam("b", types.I8Ptr))
}

func addFormats(m *ir.Module, rt *runtime) {
	rt.intFormat = cstring(m, "sponge.fmt.int", "%lld\n")
	rt.textFormat = cstring(m, "sponge.fmt.text", "%s\n")
}

// addDivZero defines the trap taken when a divisor is zero: it reports the
// source line and exits with status 1. addLibc must run first.
func addDivZero(m *ir.Module, rt *runtime) {
	exit := m.NewFunc("exit", types.Void, ir.NewParam("status", types.I32))
	msg := cstring(m, "sponge.msg.divzero", "division by zero at line %lld\n")

	fn := m.NewFunc("sponge.divzero", types.Void, ir.NewParam("line", types.I64))
	entry := fn.NewBlock("entry")
	entry.NewCall(rt.printf, msg, fn.Params[0])
	entry.NewCall(exit, constant.NewInt(types.I32, 1))
	entry.NewUnreachable()

	rt.divzero = fn
}
