package ast

import (
	"github.com/pontaoski/sponge/errors"
	"github.com/pontaoski/sponge/types"
)

//go:generate sh -c "cd ../tool && go run . ../ast/nodes.adt ../ast/nodes.go"

const (
	EntryPoint = "main"
	PrintName  = "print"
)

// Program is a set of uniquely named functions in declaration order.
type Program struct {
	Funcs []FunctionDecl
	table map[string]int
}

func NewProgram() *Program {
	return &Program{table: map[string]int{}}
}

// Add appends a function, rejecting duplicate names and names that
// collide with builtins.
func (p *Program) Add(f FunctionDecl) error {
	if p.table == nil {
		p.table = map[string]int{}
	}
	if f.Name == PrintName {
		return errors.DuplicateFunction{Name: f.Name, Builtin: true, Location: f.Pos}
	}
	if _, ok := p.table[f.Name]; ok {
		return errors.DuplicateFunction{Name: f.Name, Location: f.Pos}
	}

	p.table[f.Name] = len(p.Funcs)
	p.Funcs = append(p.Funcs, f)
	return nil
}

// Replace is Add for interactive sessions: an existing function of the same
// name is overwritten in place.
func (p *Program) Replace(f FunctionDecl) error {
	if idx, ok := p.table[f.Name]; ok {
		p.Funcs[idx] = f
		return nil
	}
	return p.Add(f)
}

// Merge adds every function of other to p.
func (p *Program) Merge(other *Program) error {
	for _, f := range other.Funcs {
		if err := p.Add(f); err != nil {
			return err
		}
	}
	return nil
}

func (p *Program) Lookup(name string) (*FunctionDecl, bool) {
	idx, ok := p.table[name]
	if !ok {
		return nil, false
	}
	return &p.Funcs[idx], true
}

// Entry returns the function a run starts from.
func (p *Program) Entry(name string) (*FunctionDecl, error) {
	f, ok := p.Lookup(name)
	if !ok {
		return nil, errors.NameError{Name: name, Kind: "function", Location: types.Span{}}
	}
	return f, nil
}
