package ast

import (
	"fmt"
	"strings"

	"github.com/pontaoski/sponge/types"
)

// Precedence is the binding power of a binary operator; 0 means the kind
// is not a binary operator.
func Precedence(op types.TokenKind) int {
	switch op {
	case types.EQ, types.NOTEQ, types.GT, types.LT:
		return 1
	case types.PLUS, types.MINUS:
		return 2
	case types.STAR, types.SLASH:
		return 3
	}
	return 0
}

type printer struct {
	b      strings.Builder
	indent int
}

func (p *printer) line(format string, args ...interface{}) {
	p.b.WriteString(strings.Repeat("    ", p.indent))
	fmt.Fprintf(&p.b, format, args...)
	p.b.WriteByte('\n')
}

// Format renders a program as canonical source text.
func Format(prog *Program) string {
	p := &printer{}
	for i, f := range prog.Funcs {
		if i > 0 {
			p.b.WriteByte('\n')
		}
		p.function(f)
	}
	return p.b.String()
}

// FormatStmt renders a single statement without indentation.
func FormatStmt(s Stmt) string {
	p := &printer{}
	p.stmt(s)
	return strings.TrimSuffix(p.b.String(), "\n")
}

func (p *printer) function(f FunctionDecl) {
	p.line("func %s() {", f.Name)
	p.block(f.Body)
	p.line("}")
}

func (p *printer) block(b Block) {
	p.indent++
	for _, s := range b.Stmts {
		p.stmt(s)
	}
	p.indent--
}

func (p *printer) stmt(s Stmt) {
	switch st := s.(type) {
	case LetBinding:
		p.line("let %s = %s;", st.Name, FormatExpr(st.Value))
	case ExprStmt:
		p.line("%s;", FormatExpr(st.Value))
	case ReturnStmt:
		if st.Value == nil {
			p.line("return;")
		} else {
			p.line("return %s;", FormatExpr(st.Value))
		}
	case IfStmt:
		p.line("if %s {", FormatExpr(st.Condition))
		p.block(st.Then)
		if st.Else != nil {
			p.line("} else {")
			p.block(*st.Else)
		}
		p.line("}")
	default:
		panic(fmt.Sprintf("unhandled statement %T", s))
	}
}

// FormatExpr renders an expression with the fewest parentheses that keep
// its shape.
func FormatExpr(e Expr) string {
	switch ex := e.(type) {
	case Lit:
		switch lit := ex.Value.(type) {
		case Integer:
			return fmt.Sprintf("%d", int64(lit))
		case Text:
			return `"` + string(lit) + `"`
		}
		panic(fmt.Sprintf("unhandled literal %T", ex.Value))
	case VarRef:
		return ex.Name
	case Call:
		return ex.Function + "(" + formatArgs(ex.Args) + ")"
	case PrintCall:
		return PrintName + "(" + formatArgs(ex.Args) + ")"
	case BinaryExpr:
		prec := Precedence(ex.Op)
		left := FormatExpr(ex.Left)
		if lp := exprPrecedence(ex.Left); lp != 0 && (lp < prec || (lp == prec && ex.Op.IsComparison())) {
			left = "(" + left + ")"
		}
		right := FormatExpr(ex.Right)
		if rp := exprPrecedence(ex.Right); rp != 0 && rp <= prec {
			right = "(" + right + ")"
		}
		return left + " " + ex.Op.Symbol() + " " + right
	}
	panic(fmt.Sprintf("unhandled expression %T", e))
}

func exprPrecedence(e Expr) int {
	if b, ok := e.(BinaryExpr); ok {
		return Precedence(b.Op)
	}
	return 0
}

func formatArgs(args []Expr) string {
	var parts []string
	for _, a := range args {
		parts = append(parts, FormatExpr(a))
	}
	return strings.Join(parts, ", ")
}
