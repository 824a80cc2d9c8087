// Package variable implements linguistic variables: named numeric domains
// described by a set of labeled fuzzy sets.
package variable

import (
	"math"
	"slices"

	"example.com/water-quality/base/floats"
	"example.com/water-quality/core/membership"
)

type Kind int

const (
	Input Kind = iota
	Output
)

func (k Kind) String() string {
	switch k {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return "unknown"
	}
}

// Memberships maps each label of a variable to a degree of membership.
type Memberships map[string]float64

type Variable struct {
	name     string
	kind     Kind
	min, max float64
	step     float64
	labels   []string
	fns      map[string]membership.Function
	universe []float64
	sealed   bool
}

func New(name string, kind Kind, min, max, step float64) (*Variable, error) {
	if name == "" {
		return nil, &DomainError{Reason: "empty name"}
	}
	if kind != Input && kind != Output {
		return nil, &DomainError{Variable: name, Reason: "unknown kind"}
	}
	if !isFinite(min) || !isFinite(max) {
		return nil, &DomainError{Variable: name, Reason: "domain bounds must be finite"}
	}
	if min >= max {
		return nil, &DomainError{Variable: name, Reason: "domain minimum must be less than maximum"}
	}
	if !(step > 0) || !isFinite(step) {
		return nil, &DomainError{Variable: name, Reason: "sampling step must be positive"}
	}
	return &Variable{
		name:     name,
		kind:     kind,
		min:      min,
		max:      max,
		step:     step,
		fns:      make(map[string]membership.Function),
		universe: floats.Range(min, max, step),
	}, nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Add defines label by f. The function must be valid and its support must
// lie within the domain of v.
func (v *Variable) Add(label string, f membership.Function) error {
	if v.sealed {
		return &DomainError{Variable: v.name, Label: label, Reason: "variable is sealed"}
	}
	if label == "" {
		return &DomainError{Variable: v.name, Reason: "empty label"}
	}
	if _, ok := v.fns[label]; ok {
		return &DomainError{Variable: v.name, Label: label, Reason: "duplicate label"}
	}
	err := f.Validate()
	if err != nil {
		return &DomainError{Variable: v.name, Label: label, Reason: "invalid membership function", Err: err}
	}
	lo, hi := f.Support()
	if lo < v.min || hi > v.max {
		return &DomainError{Variable: v.name, Label: label, Reason: "support of " + f.String() + " exceeds domain"}
	}
	v.labels = append(v.labels, label)
	v.fns[label] = f
	return nil
}

// Seal prevents further labels from being added. Variables are sealed when
// they are registered.
func (v *Variable) Seal() { v.sealed = true }

func (v *Variable) Sealed() bool { return v.sealed }

func (v *Variable) Name() string  { return v.name }
func (v *Variable) Kind() Kind    { return v.kind }
func (v *Variable) Min() float64  { return v.min }
func (v *Variable) Max() float64  { return v.max }
func (v *Variable) Step() float64 { return v.step }

// Labels returns the labels of v in the order they were added.
func (v *Variable) Labels() []string {
	return slices.Clone(v.labels)
}

func (v *Variable) HasLabel(label string) bool {
	_, ok := v.fns[label]
	return ok
}

func (v *Variable) Function(label string) (membership.Function, bool) {
	f, ok := v.fns[label]
	return f, ok
}

// Contains reports whether x lies within the closed domain of v.
func (v *Variable) Contains(x float64) bool {
	return x >= v.min && x <= v.max
}

// Fuzzify evaluates every label's membership function at x.
func (v *Variable) Fuzzify(x float64) Memberships {
	m := make(Memberships, len(v.labels))
	for _, l := range v.labels {
		m[l] = v.fns[l].Degree(x)
	}
	return m
}

// Universe returns the sampled domain of v. The returned slice is shared and
// must not be modified.
func (v *Variable) Universe() []float64 {
	return v.universe
}

// Curve returns the membership function of label sampled over the universe.
func (v *Variable) Curve(label string) ([]float64, error) {
	f, ok := v.fns[label]
	if !ok {
		return nil, &DomainError{Variable: v.name, Label: label, Reason: "unknown label"}
	}
	return f.Sample(v.universe), nil
}
