package ast

import (
	"fmt"

	"github.com/pontaoski/sponge/types"
)

func PosOf(e Expr) types.Span {
	switch ex := e.(type) {
	case Lit:
		return ex.Pos
	case VarRef:
		return ex.Pos
	case BinaryExpr:
		return ex.Pos
	case Call:
		return ex.Pos
	case PrintCall:
		return ex.Pos
	}
	panic(fmt.Sprintf("unhandled expression %T", e))
}

func StmtPos(s Stmt) types.Span {
	switch st := s.(type) {
	case LetBinding:
		return st.Pos
	case IfStmt:
		return st.Pos
	case ReturnStmt:
		return st.Pos
	case ExprStmt:
		return st.Pos
	}
	panic(fmt.Sprintf("unhandled statement %T", s))
}
