package plot_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	gplot "gonum.org/v1/plot"

	"example.com/water-quality/core/simulation"
	"example.com/water-quality/core/surface"
	"example.com/water-quality/core/water"
	"example.com/water-quality/driver/plot"
)

var pngMagic = []byte("\x89PNG")

func TestMembership(t *testing.T) {
	sys, err := water.NewSystem()
	if err != nil {
		t.Fatalf("NewSystem failed: %v", err)
	}
	for _, v := range sys.Registry().Variables() {
		p, err := plot.Membership(v)
		if err != nil {
			t.Fatalf("Membership(%s) failed: %v", v.Name(), err)
		}
		var buf bytes.Buffer
		if err := plot.WriteTo(&buf, p, 12, 8, "png"); err != nil {
			t.Fatalf("WriteTo(%s) failed: %v", v.Name(), err)
		}
		if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
			t.Errorf("Membership(%s) did not render a PNG", v.Name())
		}
	}
}

func TestOutput(t *testing.T) {
	sys, err := water.NewSystem()
	if err != nil {
		t.Fatalf("NewSystem failed: %v", err)
	}
	sim := simulation.New(zap.NewNop(), sys)
	_ = sim.SetInput(water.PH, 7)
	_ = sim.SetInput(water.Hardness, 300)
	if _, err := sim.Compute(); err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	quality, _ := sys.Registry().Lookup(water.Quality)
	p, err := plot.Output(quality, sim.Result())
	if err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "quality.svg")
	if err := plot.Save(p, 16, 10, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("Save did not write %s: %v", path, err)
	}

	ph, _ := sys.Registry().Lookup(water.PH)
	if _, err := plot.Output(ph, sim.Result()); err == nil {
		t.Errorf("Output for an input variable succeeded")
	}
}

func TestSurface(t *testing.T) {
	sys, err := water.NewSystem()
	if err != nil {
		t.Fatalf("NewSystem failed: %v", err)
	}
	f := surface.Evaluator(sys, water.PH, water.Hardness, water.Quality)
	// Extend pH past its domain so some points have no output.
	xs := surface.Linspace(0, 20, 12)
	ys := surface.Linspace(0, 1200, 10)
	g, err := surface.Sweep(context.Background(), f, xs, ys, 2)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if len(g.Failed) == 0 {
		t.Fatalf("expected undefined points past pH 14")
	}
	p, err := plot.Surface(g, "quality", "ph", "hardness")
	if err != nil {
		t.Fatalf("Surface failed: %v", err)
	}
	var buf bytes.Buffer
	if err := plot.WriteTo(&buf, p, 12, 12, "png"); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Errorf("Surface did not render a PNG")
	}
}

func TestTile(t *testing.T) {
	sys, err := water.NewSystem()
	if err != nil {
		t.Fatalf("NewSystem failed: %v", err)
	}
	var ps []*gplot.Plot
	for _, v := range sys.Registry().Variables() {
		p, err := plot.Membership(v)
		if err != nil {
			t.Fatalf("Membership failed: %v", err)
		}
		ps = append(ps, p)
	}
	path := filepath.Join(t.TempDir(), "sets.png")
	if err := plot.Tile(ps, 10, 8, path); err != nil {
		t.Fatalf("Tile failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil || !bytes.HasPrefix(raw, pngMagic) {
		t.Errorf("Tile did not write a PNG: %v", err)
	}
	if err := plot.Tile(nil, 10, 8, path); err == nil {
		t.Errorf("Tile of no plots succeeded")
	}
}
