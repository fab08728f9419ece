package interp

// frame holds the bindings of one call or block. parent is the index of the
// enclosing frame in the arena, -1 for a function frame.
type frame struct {
	names  map[string]Value
	parent int
}

// stack is the frame arena. Frames are pushed and popped in lockstep with
// calls and blocks; popped slots keep their maps for reuse.
type stack struct {
	frames []frame
	top    int
}

func (s *stack) push(parent int) int {
	if s.top < len(s.frames) {
		f := &s.frames[s.top]
		for k := range f.names {
			delete(f.names, k)
		}
		f.parent = parent
	} else {
		s.frames = append(s.frames, frame{names: map[string]Value{}, parent: parent})
	}

	s.top++
	return s.top - 1
}

func (s *stack) pop() {
	s.top--
}

func (s *stack) depth() int {
	return s.top
}

func (s *stack) bind(at int, name string, v Value) {
	s.frames[at].names[name] = v
}

func (s *stack) lookup(at int, name string) (Value, bool) {
	for i := at; i >= 0; i = s.frames[i].parent {
		if v, ok := s.frames[i].names[name]; ok {
			return v, true
		}
	}

	return nil, false
}
