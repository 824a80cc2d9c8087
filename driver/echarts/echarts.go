// Package echarts renders membership functions and response surfaces as an
// interactive HTML page.
package echarts

import (
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"example.com/water-quality/core/surface"
	"example.com/water-quality/core/variable"
)

// maxLinePoints bounds the number of points drawn per membership curve.
const maxLinePoints = 401

var surfaceColors = []string{
	"#313695", "#4575b4", "#74add1", "#abd9e9", "#e0f3f8",
	"#ffffbf", "#fee090", "#fdae61", "#f46d43", "#d73027", "#a50026",
}

func initOpts() charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		Theme: types.ThemeWesteros,
	})
}

// Membership returns a line chart of every label of v.
func Membership(v *variable.Variable) (*charts.Line, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts(),
		charts.WithTitleOpts(opts.Title{
			Title:    v.Name(),
			Subtitle: "Fuzzy sets of " + v.Kind().String() + " variable " + v.Name(),
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
			Bottom: "20",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			Name: v.Name(),
			Min:  v.Min(),
			Max:  v.Max(),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "membership",
			Min:  0,
			Max:  1,
		}),
	)

	xs := v.Universe()
	stride := (len(xs) + maxLinePoints - 2) / (maxLinePoints - 1)
	for _, label := range v.Labels() {
		mu, err := v.Curve(label)
		if err != nil {
			return nil, err
		}
		items := make([]opts.LineData, 0, maxLinePoints)
		for i := 0; i < len(xs); i += stride {
			items = append(items, opts.LineData{Value: []interface{}{xs[i], mu[i]}})
		}
		if last := len(xs) - 1; last%stride != 0 {
			items = append(items, opts.LineData{Value: []interface{}{xs[last], mu[last]}})
		}
		line.AddSeries(label, items,
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol: opts.Bool(false),
			}),
		)
	}
	return line, nil
}

// Surface returns a 3D surface chart of g. Points without a defined output
// are left as gaps.
func Surface(g *surface.Grid, title, xName, yName, zName string) *charts.Surface3D {
	min, max := g.Min(), g.Max()
	if math.IsNaN(min) {
		min, max = 0, 1
	}
	s := charts.NewSurface3D()
	s.SetGlobalOptions(
		initOpts(),
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(min),
			Max:        float32(max),
			InRange:    &opts.VisualMapInRange{Color: surfaceColors},
		}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: xName, Type: "value"}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: yName, Type: "value"}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: zName, Type: "value"}),
		charts.WithGrid3DOpts(opts.Grid3D{
			BoxWidth:  100,
			BoxDepth:  100,
			BoxHeight: 60,
		}),
	)

	c, r := g.Dims()
	data := make([]opts.Chart3DData, 0, c*r)
	for j := 0; j < r; j++ {
		for i := 0; i < c; i++ {
			var z interface{} = g.Z(i, j)
			if math.IsNaN(g.Z(i, j)) {
				z = "-"
			}
			data = append(data, opts.Chart3DData{
				Value: []interface{}{g.X(i), g.Y(j), z},
			})
		}
	}
	s.AddSeries(zName, data)
	// AddSeries tags the series as scatter3D.
	s.MultiSeries[0].Type = types.ChartSurface3D
	return s
}

// Render writes an HTML page with cs to w.
func Render(w io.Writer, title string, cs ...components.Charter) error {
	page := components.NewPage()
	page.SetPageTitle(title)
	page.AddCharts(cs...)
	return page.Render(w)
}
