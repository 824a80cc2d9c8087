package simulation_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"example.com/water-quality/base/metrics"
	"example.com/water-quality/core/engine"
	"example.com/water-quality/core/simulation"
	"example.com/water-quality/core/water"
)

func newWater(t *testing.T) *engine.System {
	t.Helper()
	sys, err := water.NewSystem()
	if err != nil {
		t.Fatalf("NewSystem failed: %v", err)
	}
	return sys
}

// newUnruled returns the water variables without any rules.
func newUnruled(t *testing.T) *engine.System {
	t.Helper()
	reg, err := water.NewRegistry(water.Variables())
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	sys, err := engine.NewSystem(reg, nil)
	if err != nil {
		t.Fatalf("NewSystem failed: %v", err)
	}
	return sys
}

func TestSetInputRejectsUnknownAndInvalid(t *testing.T) {
	sim := simulation.New(zap.NewNop(), newWater(t))
	tests := []struct {
		name    string
		varName string
		x       float64
		wantErr error
	}{
		{"Unknown variable", "turbidity", 1, simulation.ErrUnknownInput},
		{"Output variable", water.Quality, 50, simulation.ErrUnknownInput},
		{"NaN", water.PH, math.NaN(), simulation.ErrInvalidInput},
		{"Inf", water.Hardness, math.Inf(1), simulation.ErrInvalidInput},
		{"Valid", water.PH, 7, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sim.SetInput(tt.varName, tt.x)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetInput(%q, %v) = %v, want %v", tt.varName, tt.x, err, tt.wantErr)
			}
		})
	}
	if got := sim.Inputs(); len(got) != 1 || got[water.PH] != 7 {
		t.Errorf("Inputs() = %v, want only ph = 7", got)
	}
}

func TestSetInputOutsideDomainWarns(t *testing.T) {
	sim := simulation.New(zap.NewNop(), newWater(t))
	if err := sim.SetInput(water.PH, 15); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}
	if err := sim.SetInput(water.Hardness, 300); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}
	ws := sim.Warnings()
	if len(ws) != 1 {
		t.Fatalf("len(Warnings) = %v, want 1", len(ws))
	}
	want := simulation.DomainWarning{Variable: water.PH, Value: 15, Min: 0, Max: 14}
	if ws[0] != want {
		t.Errorf("Warnings()[0] = %+v, want %+v", ws[0], want)
	}
	if got := sim.Inputs()[water.PH]; got != 15 {
		t.Errorf("Inputs()[ph] = %v, want 15", got)
	}

	sim.Reset()
	if len(sim.Warnings()) != 0 || len(sim.Inputs()) != 0 {
		t.Errorf("Reset did not clear inputs and warnings")
	}
}

func TestSetInputReplacesWarning(t *testing.T) {
	sim := simulation.New(zap.NewNop(), newWater(t))
	if err := sim.SetInput(water.PH, 20); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}
	if err := sim.SetInput(water.PH, 16); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}
	ws := sim.Warnings()
	if len(ws) != 1 || ws[0].Value != 16 {
		t.Fatalf("Warnings() = %v, want one warning for ph = 16", ws)
	}

	if err := sim.SetInput(water.PH, 7); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}
	if err := sim.SetInput(water.Hardness, 300); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}
	if _, err := sim.Compute(); err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if ws := sim.Warnings(); len(ws) != 0 {
		t.Errorf("Warnings() = %v after setting ph back in range, want none", ws)
	}
}

func TestComputeMissingInputKeepsResult(t *testing.T) {
	sim := simulation.New(zap.NewNop(), newWater(t))
	if _, ok := sim.Output(water.Quality); ok {
		t.Fatalf("Output before Compute reported a value")
	}
	_ = sim.SetInput(water.PH, 7)
	_ = sim.SetInput(water.Hardness, 300)
	want, err := sim.Compute()
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	sim.Reset()
	_ = sim.SetInput(water.PH, 1)
	_, err = sim.Compute()
	var merr *engine.MissingInputError
	if !errors.As(err, &merr) || merr.Variable != water.Hardness {
		t.Fatalf("Compute() = %v, want MissingInputError for hardness", err)
	}
	got, ok := sim.Output(water.Quality)
	if !ok || got != want[water.Quality] {
		t.Errorf("Output after failure = %v, %v, want %v", got, ok, want[water.Quality])
	}
}

func TestComputeNoRuleFiredEveryCycle(t *testing.T) {
	sim := simulation.New(zap.NewNop(), newUnruled(t))
	_ = sim.SetInput(water.PH, 7)
	_ = sim.SetInput(water.Hardness, 300)
	for i := 0; i < 3; i++ {
		_, err := sim.Compute()
		var nerr *engine.NoRuleFiredError
		if !errors.As(err, &nerr) || nerr.Output != water.Quality {
			t.Fatalf("Compute() #%d = %v, want NoRuleFiredError", i, err)
		}
	}
	if sim.Result() != nil {
		t.Errorf("Result() = %v, want nil", sim.Result())
	}
}

func TestComputeReturnsCopy(t *testing.T) {
	sim := simulation.New(zap.NewNop(), newWater(t))
	_ = sim.SetInput(water.PH, 7)
	_ = sim.SetInput(water.Hardness, 300)
	out, err := sim.Compute()
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	want := out[water.Quality]
	out[water.Quality] = -1
	if got, _ := sim.Output(water.Quality); got != want {
		t.Errorf("Output() = %v after caller modified result, want %v", got, want)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := simulation.NewMetrics(reg)
	sim := simulation.New(zap.NewNop(), newWater(t), simulation.WithMetrics(m))

	_ = sim.SetInput(water.PH, 20)
	_ = sim.SetInput(water.Hardness, 300)
	// pH 20 lies outside the support of every pH label.
	if _, err := sim.Compute(); err == nil {
		t.Fatalf("Compute succeeded for pH outside every label")
	}
	_ = sim.SetInput(water.PH, 7)
	if _, err := sim.Compute(); err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	sim.Reset()
	if _, err := sim.Compute(); err == nil {
		t.Fatalf("Compute succeeded without inputs")
	}

	expected := `
# HELP waterquality_sim_computations The total number of inference cycles computed successfully
# TYPE waterquality_sim_computations counter
waterquality_sim_computations 1
# HELP waterquality_sim_domain_warnings The total number of crisp inputs set outside their variable domain
# TYPE waterquality_sim_domain_warnings counter
waterquality_sim_domain_warnings 1
# HELP waterquality_sim_failures The total number of inference cycles that failed, by kind
# TYPE waterquality_sim_failures counter
waterquality_sim_failures{kind="missing_input"} 1
waterquality_sim_failures{kind="no_rule_fired"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		metrics.SimComputationsN, metrics.SimWarningsN, metrics.SimFailuresN)
	if err != nil {
		t.Error(err)
	}
	n, err := testutil.GatherAndCount(reg, metrics.SimComputeSecondsN)
	if err != nil || n != 1 {
		t.Errorf("GatherAndCount(%s) = %v, %v, want 1", metrics.SimComputeSecondsN, n, err)
	}
}

func TestDomainWarningString(t *testing.T) {
	w := simulation.DomainWarning{Variable: "ph", Value: 15, Min: 0, Max: 14}
	if got, want := w.String(), "ph = 15 outside domain [0, 14]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
