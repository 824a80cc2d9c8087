package rule

import (
	"example.com/water-quality/core/variable"
)

// Table is a rule base over two input variables expressed as data: every
// combination of a row label and a column label maps to one label of the
// output variable.
type Table struct {
	Row, Col string
	Output   string
	Entries  []Entry
}

type Entry struct {
	Row, Col string
	Output   string
}

// Rules builds one rule "Row IS r AND Col IS c THEN Output IS o" per label
// combination, in row-major label order. It fails if any combination is
// unmapped or mapped more than once.
func (t Table) Rules(reg *variable.Registry) ([]*Rule, error) {
	type cell struct{ row, col string }
	cells := make(map[cell][]string, len(t.Entries))
	for _, e := range t.Entries {
		if err := resolve(reg, Term{Variable: t.Row, Label: e.Row}, variable.Input); err != nil {
			return nil, err
		}
		if err := resolve(reg, Term{Variable: t.Col, Label: e.Col}, variable.Input); err != nil {
			return nil, err
		}
		if err := resolve(reg, Term{Variable: t.Output, Label: e.Output}, variable.Output); err != nil {
			return nil, err
		}
		k := cell{e.Row, e.Col}
		cells[k] = append(cells[k], e.Output)
	}

	rowVar, err := lookup(reg, t.Row, variable.Input)
	if err != nil {
		return nil, err
	}
	colVar, err := lookup(reg, t.Col, variable.Input)
	if err != nil {
		return nil, err
	}
	var rs []*Rule
	for _, rl := range rowVar.Labels() {
		for _, cl := range colVar.Labels() {
			outs := cells[cell{rl, cl}]
			switch {
			case len(outs) == 0:
				return nil, &TableError{Row: rl, Col: cl, Reason: "unmapped label combination"}
			case len(outs) > 1:
				return nil, &TableError{Row: rl, Col: cl, Reason: "label combination mapped more than once"}
			}
			r, err := New(reg,
				And(Is(t.Row, rl), Is(t.Col, cl)),
				Term{Variable: t.Output, Label: outs[0]})
			if err != nil {
				return nil, err
			}
			rs = append(rs, r)
		}
	}
	return rs, nil
}

func lookup(reg *variable.Registry, name string, k variable.Kind) (*variable.Variable, error) {
	v, ok := reg.Lookup(name)
	if !ok {
		return nil, &UnknownTermError{Term: Term{Variable: name}, Reason: "no such variable"}
	}
	if v.Kind() != k {
		return nil, &UnknownTermError{Term: Term{Variable: name}, Reason: "not an " + k.String() + " variable"}
	}
	return v, nil
}
