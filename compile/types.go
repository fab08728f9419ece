package compile

import "github.com/llir/llvm/ir/types"

var (
	Int64   = types.I64
	TextPtr = types.I8Ptr
	Niets   = types.Void
)

func llvmType(t Type) types.Type {
	switch t {
	case Int:
		return Int64
	case Str:
		return TextPtr
	case Void:
		return Niets
	}
	panic("unresolved type " + t.String())
}
