// Package rule implements fuzzy rules: an antecedent expression over input
// variable labels paired with a consequent output variable label.
package rule

import (
	"fmt"

	"example.com/water-quality/core/variable"
)

type Rule struct {
	antecedent Expr
	consequent Term
	inputs     []string
}

// New returns a rule validated against reg. Every term of antecedent must
// name a label of an input variable and consequent must name a label of an
// output variable.
func New(reg *variable.Registry, antecedent Expr, consequent Term) (*Rule, error) {
	if err := check(antecedent); err != nil {
		return nil, fmt.Errorf("invalid antecedent: %w", err)
	}
	r := &Rule{antecedent: antecedent, consequent: consequent}
	if err := r.Validate(reg); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	antecedent.walk(func(t Term) {
		if !seen[t.Variable] {
			seen[t.Variable] = true
			r.inputs = append(r.inputs, t.Variable)
		}
	})
	return r, nil
}

// Validate checks that every term of r resolves in reg.
func (r *Rule) Validate(reg *variable.Registry) error {
	var err error
	r.antecedent.walk(func(t Term) {
		if err == nil {
			err = resolve(reg, t, variable.Input)
		}
	})
	if err != nil {
		return err
	}
	return resolve(reg, r.consequent, variable.Output)
}

func resolve(reg *variable.Registry, t Term, k variable.Kind) error {
	v, ok := reg.Lookup(t.Variable)
	if !ok {
		return &UnknownTermError{Term: t, Reason: "no such variable"}
	}
	if v.Kind() != k {
		return &UnknownTermError{Term: t, Reason: "not an " + k.String() + " variable"}
	}
	if !v.HasLabel(t.Label) {
		return &UnknownTermError{Term: t, Reason: "no such label"}
	}
	return nil
}

// Strength returns the firing strength of r given the fuzzified inputs,
// keyed by variable name.
func (r *Rule) Strength(fuzzified map[string]variable.Memberships) float64 {
	return r.antecedent.eval(fuzzified)
}

func (r *Rule) Antecedent() Expr { return r.antecedent }

func (r *Rule) Consequent() Term { return r.consequent }

// Inputs returns the names of the input variables referenced by r.
func (r *Rule) Inputs() []string {
	return append([]string(nil), r.inputs...)
}

func (r *Rule) String() string {
	return "IF " + r.antecedent.String() + " THEN " + r.consequent.String()
}
