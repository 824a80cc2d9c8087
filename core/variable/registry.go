package variable

// Registry is an ordered set of uniquely named variables.
type Registry struct {
	vars   []*Variable
	byName map[string]*Variable
}

// NewRegistry registers vs in order and seals them.
func NewRegistry(vs ...*Variable) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Variable, len(vs))}
	for _, v := range vs {
		if v == nil {
			return nil, &DomainError{Reason: "nil variable"}
		}
		if _, ok := r.byName[v.name]; ok {
			return nil, &DomainError{Variable: v.name, Reason: "duplicate variable"}
		}
		if len(v.labels) == 0 {
			return nil, &DomainError{Variable: v.name, Reason: "no labels defined"}
		}
		r.vars = append(r.vars, v)
		r.byName[v.name] = v
	}
	for _, v := range r.vars {
		v.Seal()
	}
	return r, nil
}

func (r *Registry) Lookup(name string) (*Variable, bool) {
	v, ok := r.byName[name]
	return v, ok
}

func (r *Registry) Variables() []*Variable {
	return append([]*Variable(nil), r.vars...)
}

func (r *Registry) Inputs() []*Variable {
	return r.filter(Input)
}

func (r *Registry) Outputs() []*Variable {
	return r.filter(Output)
}

func (r *Registry) filter(k Kind) []*Variable {
	var vs []*Variable
	for _, v := range r.vars {
		if v.kind == k {
			vs = append(vs, v)
		}
	}
	return vs
}
