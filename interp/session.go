package interp

import (
	"github.com/pontaoski/sponge/ast"
	"github.com/ztrue/tracerr"
)

// Session is an interpreter that outlives a single run: functions
// accumulate across inputs and top-level statements share one frame.
// Functions called from the session cannot see that frame.
type Session struct {
	in    *Interpreter
	frame int
}

func NewSession(in *Interpreter) *Session {
	return &Session{
		in:    in,
		frame: in.stack.push(-1),
	}
}

// Define adds a function, replacing an earlier one of the same name.
func (s *Session) Define(f ast.FunctionDecl) error {
	return tracerr.Wrap(s.in.program.Replace(f))
}

// Exec runs statements in the session frame. The result is the value of a
// return statement or of the last expression statement, Unit otherwise.
func (s *Session) Exec(stmts []ast.Stmt) (Value, error) {
	var last Value = Unit{}

	for _, st := range stmts {
		if es, ok := st.(ast.ExprStmt); ok {
			v, err := s.in.eval(es.Value, s.frame)
			if err != nil {
				return nil, tracerr.Wrap(err)
			}
			last = v
			continue
		}

		out, err := s.in.exec(st, s.frame)
		if err != nil {
			return nil, tracerr.Wrap(err)
		}
		if out.returned {
			return out.value, nil
		}
		last = Unit{}
	}

	return last, nil
}

// Lookup reads a binding from the session frame.
func (s *Session) Lookup(name string) (Value, bool) {
	return s.in.stack.lookup(s.frame, name)
}
