// Package engine implements Mamdani inference: min/max rule evaluation, min
// implication, max aggregation and centroid defuzzification.
package engine

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"example.com/water-quality/core/rule"
	"example.com/water-quality/core/variable"
)

// System is a fuzzy control system: a variable registry and a rule base.
// A System is immutable and may be shared between goroutines.
type System struct {
	reg     *variable.Registry
	rules   []*rule.Rule
	inputs  []*variable.Variable
	outputs []*variable.Variable
	// required lists the input variables referenced by at least one rule.
	required []string
	// curves holds the consequent curve of every rule, sampled over the
	// universe of its output variable.
	curves [][]float64
}

func NewSystem(reg *variable.Registry, rules []*rule.Rule) (*System, error) {
	s := &System{
		reg:     reg,
		rules:   append([]*rule.Rule(nil), rules...),
		inputs:  reg.Inputs(),
		outputs: reg.Outputs(),
		curves:  make([][]float64, len(rules)),
	}
	seen := make(map[string]bool)
	for i, r := range s.rules {
		if r == nil {
			return nil, fmt.Errorf("rule %d: %w", i, errNilRule)
		}
		err := r.Validate(reg)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		c := r.Consequent()
		v, _ := reg.Lookup(c.Variable)
		s.curves[i], err = v.Curve(c.Label)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		for _, name := range r.Inputs() {
			if !seen[name] {
				seen[name] = true
				s.required = append(s.required, name)
			}
		}
	}
	return s, nil
}

func (s *System) Registry() *variable.Registry { return s.reg }

func (s *System) Rules() []*rule.Rule {
	return append([]*rule.Rule(nil), s.rules...)
}

func (s *System) Inputs() []*variable.Variable {
	return append([]*variable.Variable(nil), s.inputs...)
}

func (s *System) Outputs() []*variable.Variable {
	return append([]*variable.Variable(nil), s.outputs...)
}

// Result holds the intermediate and final values of one inference.
type Result struct {
	// Fuzzified holds the degrees of every input variable with a crisp value.
	Fuzzified map[string]variable.Memberships
	// Strengths holds the firing strength of every rule, in rule order.
	Strengths []float64
	// Aggregated holds the aggregated membership curve of every output
	// variable, sampled over its universe.
	Aggregated map[string][]float64
	// Crisp holds the defuzzified value of every output variable.
	Crisp map[string]float64
}

// Infer runs one inference over the crisp inputs, keyed by variable name.
func (s *System) Infer(inputs map[string]float64) (*Result, error) {
	for _, name := range s.required {
		if _, ok := inputs[name]; !ok {
			return nil, &MissingInputError{Variable: name}
		}
	}

	res := &Result{
		Fuzzified:  make(map[string]variable.Memberships, len(s.inputs)),
		Strengths:  make([]float64, len(s.rules)),
		Aggregated: make(map[string][]float64, len(s.outputs)),
		Crisp:      make(map[string]float64, len(s.outputs)),
	}

	for _, v := range s.inputs {
		x, ok := inputs[v.Name()]
		if ok {
			res.Fuzzified[v.Name()] = v.Fuzzify(x)
		}
	}

	for i, r := range s.rules {
		res.Strengths[i] = r.Strength(res.Fuzzified)
	}

	for _, v := range s.outputs {
		res.Aggregated[v.Name()] = make([]float64, len(v.Universe()))
	}
	for i, r := range s.rules {
		st := res.Strengths[i]
		if st <= 0 {
			continue
		}
		agg := res.Aggregated[r.Consequent().Variable]
		for j, mu := range s.curves[i] {
			agg[j] = max(agg[j], min(st, mu))
		}
	}

	for _, v := range s.outputs {
		x, err := Centroid(v.Universe(), res.Aggregated[v.Name()])
		if err != nil {
			return nil, &NoRuleFiredError{Output: v.Name()}
		}
		res.Crisp[v.Name()] = x
	}
	return res, nil
}

// Centroid returns the center of gravity sum(x*mu(x))/sum(mu(x)) of the
// sampled curve mu over xs.
func Centroid(xs, mu []float64) (float64, error) {
	if len(xs) != len(mu) {
		panic("unexpected number of values")
	}
	area := floats.Sum(mu)
	if !(area > 0) {
		return 0, errZeroArea
	}
	return floats.Dot(xs, mu) / area, nil
}
