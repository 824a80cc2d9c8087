// Package plot renders membership functions, inference results and response
// surfaces with gonum/plot.
package plot

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"example.com/water-quality/core/engine"
	"example.com/water-quality/core/surface"
	"example.com/water-quality/core/variable"
)

const surfaceColors = 64

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.X.Label.Padding = vg.Points(5)
	p.Y.Label.Text = yLabel
	p.Y.Label.Padding = vg.Points(5)
	p.Add(plotter.NewGrid())
	return p
}

func curve(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

// Membership plots every label of v over its universe.
func Membership(v *variable.Variable) (*plot.Plot, error) {
	p := newPlot(v.Name(), v.Name(), "Membership")
	p.Y.Min, p.Y.Max = 0, 1.05
	p.Legend.Top = true
	for i, label := range v.Labels() {
		mu, err := v.Curve(label)
		if err != nil {
			return nil, err
		}
		line, err := plotter.NewLine(curve(v.Universe(), mu))
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(label, line)
	}
	return p, nil
}

// Output plots the labels of the output variable v dashed, the aggregated
// curve of res filled, and the crisp value as a vertical line.
func Output(v *variable.Variable, res *engine.Result) (*plot.Plot, error) {
	agg, ok := res.Aggregated[v.Name()]
	crisp, ok1 := res.Crisp[v.Name()]
	if !ok || !ok1 {
		return nil, fmt.Errorf("no result for %q", v.Name())
	}
	p := newPlot(fmt.Sprintf("%s = %.2f", v.Name(), crisp), v.Name(), "Membership")
	p.Y.Min, p.Y.Max = 0, 1.05
	p.Legend.Top = true

	for i, label := range v.Labels() {
		mu, err := v.Curve(label)
		if err != nil {
			return nil, err
		}
		line, err := plotter.NewLine(curve(v.Universe(), mu))
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(1)
		p.Add(line)
		p.Legend.Add(label, line)
	}

	area, err := plotter.NewLine(curve(v.Universe(), agg))
	if err != nil {
		return nil, err
	}
	area.FillColor = color.RGBA{R: 30, G: 120, B: 180, A: 120}
	area.Color = color.RGBA{R: 30, G: 120, B: 180, A: 255}
	p.Add(area)
	p.Legend.Add("aggregated", area)

	mark, err := plotter.NewLine(plotter.XYs{{X: crisp, Y: 0}, {X: crisp, Y: 1}})
	if err != nil {
		return nil, err
	}
	mark.Color = color.Black
	mark.Width = vg.Points(2)
	p.Add(mark)
	return p, nil
}

// Surface plots g as a heat map. Points without a defined output are drawn
// in gray.
func Surface(g *surface.Grid, title, xLabel, yLabel string) (*plot.Plot, error) {
	min, max := g.Min(), g.Max()
	if math.IsNaN(min) {
		return nil, fmt.Errorf("surface %q has no defined points", title)
	}
	p := newPlot(title, xLabel, yLabel)
	pal := moreland.SmoothBlueRed()
	pal.SetMin(min)
	pal.SetMax(max)
	if min == max {
		pal.SetMax(min + 1)
	}
	hm := plotter.NewHeatMap(g, pal.Palette(surfaceColors))
	hm.NaN = color.Gray{Y: 128}
	p.Add(hm)
	return p, nil
}

// Save writes p to path in the format given by its extension.
func Save(p *plot.Plot, widthCM, heightCM float64, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); err == nil {
			err = e
		}
	}()
	return WriteTo(f, p, widthCM, heightCM, format(path))
}

func format(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// WriteTo writes p to w in format, e.g. "png" or "svg".
func WriteTo(w io.Writer, p *plot.Plot, widthCM, heightCM float64, format string) error {
	wt, err := p.WriterTo(vg.Length(widthCM)*vg.Centimeter, vg.Length(heightCM)*vg.Centimeter, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Tile draws ps side by side into one canvas written to path.
func Tile(ps []*plot.Plot, widthCM, heightCM float64, path string) error {
	if len(ps) == 0 {
		return fmt.Errorf("no plots to tile")
	}
	w := vg.Length(widthCM) * vg.Centimeter
	h := vg.Length(heightCM) * vg.Centimeter
	c, err := draw.NewFormattedCanvas(w*vg.Length(len(ps)), h, format(path))
	if err != nil {
		return err
	}
	t := draw.Tiles{Rows: 1, Cols: len(ps)}
	canvases := plot.Align([][]*plot.Plot{ps}, t, draw.New(c))
	for j, p := range ps {
		p.Draw(canvases[0][j])
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	_, err = c.WriteTo(f)
	if e := f.Close(); err == nil {
		err = e
	}
	return err
}
