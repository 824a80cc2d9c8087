// Package water defines the water-quality model: pH and hardness inputs, a
// quality output and a complete 3x3 rule table.
package water

import (
	"fmt"

	"example.com/water-quality/core/engine"
	"example.com/water-quality/core/membership"
	"example.com/water-quality/core/rule"
	"example.com/water-quality/core/variable"
)

const (
	PH       = "ph"
	Hardness = "hardness"
	Quality  = "quality"
)

const (
	Low    = "low"
	Medium = "medium"
	High   = "high"

	Poor      = "poor"
	Fair      = "fair"
	Excellent = "excellent"
)

type Set struct {
	Label string
	Fn    membership.Function
}

// Spec describes one linguistic variable of the model.
type Spec struct {
	Name           string
	Kind           variable.Kind
	Min, Max, Step float64
	Sets           []Set
}

func Variables() []Spec {
	return []Spec{
		{
			Name: PH, Kind: variable.Input, Min: 0, Max: 14, Step: 0.1,
			Sets: []Set{
				{Low, membership.Triangular(0, 0, 6)},
				{Medium, membership.Triangular(5.5, 7, 8.5)},
				{High, membership.Triangular(8, 14, 14)},
			},
		},
		{
			Name: Hardness, Kind: variable.Input, Min: 0, Max: 1200, Step: 0.1,
			Sets: []Set{
				{Low, membership.Trapezoidal(0, 0, 300, 500)},
				{Medium, membership.Triangular(100, 450, 900)},
				{High, membership.Triangular(700, 1200, 1200)},
			},
		},
		{
			Name: Quality, Kind: variable.Output, Min: 0, Max: 100, Step: 0.1,
			Sets: []Set{
				{Poor, membership.Triangular(0, 0, 40)},
				{Fair, membership.Triangular(30, 50, 70)},
				{Excellent, membership.Triangular(60, 100, 100)},
			},
		},
	}
}

// Table returns the rule table: rows are pH labels, columns hardness labels.
func Table() rule.Table {
	grid := [3][3]string{
		{Fair, Fair, Poor},
		{Excellent, Excellent, Poor},
		{Fair, Fair, Poor},
	}
	labels := [3]string{Low, Medium, High}
	t := rule.Table{Row: PH, Col: Hardness, Output: Quality}
	for i, r := range labels {
		for j, c := range labels {
			t.Entries = append(t.Entries, rule.Entry{Row: r, Col: c, Output: grid[i][j]})
		}
	}
	return t
}

// NewRegistry builds the model variables described by specs.
func NewRegistry(specs []Spec) (*variable.Registry, error) {
	vs := make([]*variable.Variable, 0, len(specs))
	for _, sp := range specs {
		v, err := variable.New(sp.Name, sp.Kind, sp.Min, sp.Max, sp.Step)
		if err != nil {
			return nil, err
		}
		for _, s := range sp.Sets {
			if err := v.Add(s.Label, s.Fn); err != nil {
				return nil, err
			}
		}
		vs = append(vs, v)
	}
	return variable.NewRegistry(vs...)
}

// NewSystem builds and validates the water-quality control system.
func NewSystem() (*engine.System, error) {
	reg, err := NewRegistry(Variables())
	if err != nil {
		return nil, fmt.Errorf("failed to build variables: %w", err)
	}
	rules, err := Table().Rules(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to build rules: %w", err)
	}
	return engine.NewSystem(reg, rules)
}
