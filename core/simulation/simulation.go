// Package simulation implements a stateful evaluation session over a fuzzy
// control system.
package simulation

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"

	"example.com/water-quality/core/engine"
	"example.com/water-quality/core/variable"
)

type Option func(*Simulation)

func WithMetrics(m *Metrics) Option {
	return func(s *Simulation) { s.metrics = m }
}

// Simulation holds the crisp inputs and the last successful inference of one
// evaluation session. A Simulation must not be used by more than one
// goroutine at a time; the underlying System may be shared.
type Simulation struct {
	log      *zap.Logger
	sys      *engine.System
	metrics  *Metrics
	inputs   map[string]float64
	warnings []DomainWarning
	result   *engine.Result
}

func New(log *zap.Logger, sys *engine.System, opts ...Option) *Simulation {
	s := &Simulation{
		log:    log,
		sys:    sys,
		inputs: make(map[string]float64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulation) System() *engine.System { return s.sys }

// SetInput sets the crisp value of the input variable name. Values outside
// the domain of the variable are accepted and recorded as a DomainWarning,
// which replaces any earlier warning for the same variable.
func (s *Simulation) SetInput(name string, x float64) error {
	v, ok := s.sys.Registry().Lookup(name)
	if !ok || v.Kind() != variable.Input {
		return fmt.Errorf("%w: %q", ErrUnknownInput, name)
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fmt.Errorf("%w: %s = %v", ErrInvalidInput, name, x)
	}
	s.warnings = slices.DeleteFunc(s.warnings, func(w DomainWarning) bool {
		return w.Variable == name
	})
	if !v.Contains(x) {
		w := DomainWarning{Variable: name, Value: x, Min: v.Min(), Max: v.Max()}
		s.warnings = append(s.warnings, w)
		s.metrics.warn()
		s.log.Warn("input outside domain",
			zap.String("variable", name),
			zap.Float64("value", x),
			zap.Float64("min", v.Min()),
			zap.Float64("max", v.Max()),
		)
	}
	s.inputs[name] = x
	return nil
}

// Compute runs one inference cycle over the current inputs and returns the
// crisp value of every output variable. On failure the result of the previous
// successful cycle is kept.
func (s *Simulation) Compute() (map[string]float64, error) {
	start := time.Now()
	res, err := s.sys.Infer(s.inputs)
	s.metrics.observe(start, err)
	if err != nil {
		s.log.Debug("inference failed", zap.Error(err))
		return nil, err
	}
	s.result = res
	s.log.Debug("inference computed",
		zap.Any("inputs", s.inputs),
		zap.Any("outputs", res.Crisp),
	)
	return maps.Clone(res.Crisp), nil
}

// Output returns the crisp value of the output variable name computed by the
// last successful cycle.
func (s *Simulation) Output(name string) (float64, bool) {
	if s.result == nil {
		return 0, false
	}
	x, ok := s.result.Crisp[name]
	return x, ok
}

// Result returns the last successful inference, or nil.
func (s *Simulation) Result() *engine.Result { return s.result }

func (s *Simulation) Warnings() []DomainWarning {
	return append([]DomainWarning(nil), s.warnings...)
}

func (s *Simulation) Inputs() map[string]float64 {
	return maps.Clone(s.inputs)
}

// Reset clears the inputs and warnings. The last result is kept.
func (s *Simulation) Reset() {
	clear(s.inputs)
	s.warnings = nil
}
