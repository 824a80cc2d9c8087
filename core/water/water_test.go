package water_test

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"example.com/water-quality/core/rule"
	"example.com/water-quality/core/simulation"
	"example.com/water-quality/core/water"
)

func newSim(t *testing.T) *simulation.Simulation {
	t.Helper()
	sys, err := water.NewSystem()
	if err != nil {
		t.Fatalf("NewSystem failed: %v", err)
	}
	return simulation.New(zap.NewNop(), sys)
}

func evaluate(t *testing.T, sim *simulation.Simulation, ph, hardness float64) float64 {
	t.Helper()
	if err := sim.SetInput(water.PH, ph); err != nil {
		t.Fatalf("SetInput(ph) failed: %v", err)
	}
	if err := sim.SetInput(water.Hardness, hardness); err != nil {
		t.Fatalf("SetInput(hardness) failed: %v", err)
	}
	out, err := sim.Compute()
	if err != nil {
		t.Fatalf("Compute(%v, %v) failed: %v", ph, hardness, err)
	}
	return out[water.Quality]
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name         string
		ph, hardness float64
		check        func(q float64) bool
		want         string
	}{
		{"Neutral soft water", 7, 300, func(q float64) bool { return q > 60 }, "> 60"},
		{"Acidic hard water", 1, 1100, func(q float64) bool { return q < 40 }, "< 40"},
		{"Alkaline soft water", 14, 0, func(q float64) bool { return q >= 30 && q <= 70 }, "within fair support"},
		{"Neutral very hard water", 7, 1200, func(q float64) bool { return q < 40 }, "< 40"},
	}

	sim := newSim(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := evaluate(t, sim, tt.ph, tt.hardness)
			if !tt.check(q) {
				t.Errorf("quality(%v, %v) = %v, want %s", tt.ph, tt.hardness, q, tt.want)
			}
			if q < 0 || q > 100 {
				t.Errorf("quality(%v, %v) = %v outside [0, 100]", tt.ph, tt.hardness, q)
			}
		})
	}
}

func TestBoundaryFiresOnlyFair(t *testing.T) {
	sim := newSim(t)
	q := evaluate(t, sim, 14, 0)
	res := sim.Result()
	sys := sim.System()
	for i, r := range sys.Rules() {
		st := res.Strengths[i]
		if st > 0 && r.Consequent().Label != water.Fair {
			t.Errorf("rule %v fired with strength %v", r, st)
		}
	}
	if math.Abs(q-50) > 1e-6 {
		t.Errorf("quality(14, 0) = %v, want 50", q)
	}
}

func TestTableIsComplete(t *testing.T) {
	sys, err := water.NewSystem()
	if err != nil {
		t.Fatalf("NewSystem failed: %v", err)
	}
	rules := sys.Rules()
	if len(rules) != 9 {
		t.Fatalf("len(Rules) = %v, want 9", len(rules))
	}
	seen := make(map[string]bool)
	for _, r := range rules {
		if seen[r.Antecedent().String()] {
			t.Errorf("duplicate antecedent %v", r.Antecedent())
		}
		seen[r.Antecedent().String()] = true
	}
}

func TestTableGapIsDetected(t *testing.T) {
	reg, err := water.NewRegistry(water.Variables())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	tab := water.Table()
	tab.Entries = tab.Entries[:len(tab.Entries)-1]
	_, err = tab.Rules(reg)
	var terr *rule.TableError
	if !errors.As(err, &terr) {
		t.Fatalf("Rules() = %v, want TableError", err)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	sim := newSim(t)
	a := evaluate(t, sim, 6.3, 612.4)
	out, err := sim.Compute()
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if math.Float64bits(a) != math.Float64bits(out[water.Quality]) {
		t.Errorf("Compute not idempotent: %v != %v", a, out[water.Quality])
	}
}

func TestQualityWithinSupportOverDomain(t *testing.T) {
	sim := newSim(t)
	for ph := 0.0; ph <= 14; ph += 0.7 {
		for hardness := 0.0; hardness <= 1200; hardness += 60 {
			q := evaluate(t, sim, ph, hardness)
			if q < 0 || q > 100 {
				t.Fatalf("quality(%v, %v) = %v outside [0, 100]", ph, hardness, q)
			}
		}
	}
}
