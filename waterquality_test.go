package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"example.com/water-quality/core/config"
	"example.com/water-quality/core/simulation"
	"example.com/water-quality/core/water"
)

func TestPlotPath(t *testing.T) {
	cfg := config.Default()
	cfg.Plot.Dir = "out"
	cfg.Plot.Format = "svg"
	if got, want := plotPath(cfg, "ph"), filepath.Join("out", "ph.svg"); got != want {
		t.Errorf("plotPath() = %q, want %q", got, want)
	}
}

func TestPlotMemberships(t *testing.T) {
	log = zap.NewNop()
	cfg := config.Default()
	cfg.Plot.Dir = t.TempDir()
	cfg.Plot.Format = "svg"
	plotMemberships(cfg, newSystem())
	for _, name := range []string{"ph", "hardness", "quality", "memberships"} {
		path := plotPath(cfg, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("plot %s not written: %v", path, err)
		}
	}
}

func TestSetInputs(t *testing.T) {
	log = zap.NewNop()
	sim := simulation.New(log, newSystem())
	setInputs(sim, 7, 300)
	out, err := sim.Compute()
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if q := out[water.Quality]; q <= 60 {
		t.Errorf("quality(7, 300) = %v, want > 60", q)
	}
}

func TestRunPlot(t *testing.T) {
	if os.Getenv("WATERQUALITY_PLOTS") == "" {
		t.Skip("set WATERQUALITY_PLOTS to render all plots in this integration test")
	}

	initLogger(true /* verbose */)
	dir := t.TempDir()
	runPlot("", dir, "png", 7, 300)
	for _, name := range []string{"ph", "hardness", "quality", "quality_result", "surface", "memberships"} {
		path := filepath.Join(dir, name+".png")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("plot %s not written: %v", path, err)
		}
	}
}
