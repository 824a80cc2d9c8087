// Package surface evaluates a two-input fuzzy system over a grid of crisp
// values.
package surface

import (
	"cmp"
	"context"
	"errors"
	"math"
	"runtime"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"example.com/water-quality/base/metrics"
	"example.com/water-quality/base/zaplog"
	"example.com/water-quality/core/engine"
	"example.com/water-quality/core/simulation"
)

// Func evaluates one output for the crisp inputs x and y.
type Func func(x, y float64) (float64, error)

// Evaluator returns a Func computing outName from xName and yName. Every call
// uses a private Simulation, so the returned Func is safe for concurrent use.
func Evaluator(sys *engine.System, xName, yName, outName string, opts ...simulation.Option) Func {
	log := zap.NewNop()
	return func(x, y float64) (float64, error) {
		sim := simulation.New(log, sys, opts...)
		if err := sim.SetInput(xName, x); err != nil {
			return 0, err
		}
		if err := sim.SetInput(yName, y); err != nil {
			return 0, err
		}
		if _, err := sim.Compute(); err != nil {
			return 0, err
		}
		z, ok := sim.Output(outName)
		if !ok {
			return 0, &engine.NoRuleFiredError{Output: outName}
		}
		return z, nil
	}
}

// Linspace returns n evenly spaced values from min to max inclusive.
func Linspace(min, max float64, n int) []float64 {
	if n < 2 {
		panic("surface: at least two points required")
	}
	return floats.Span(make([]float64, n), min, max)
}

// Point identifies a grid point by column and row.
type Point struct {
	Col, Row int
	Err      error
}

// Grid holds the values of a sweep. Points without a defined output hold
// NaN and are listed in Failed. Grid implements plotter.GridXYZ.
type Grid struct {
	xs, ys []float64
	z      []float64
	Failed []Point
}

func (g *Grid) Dims() (c, r int) { return len(g.xs), len(g.ys) }

func (g *Grid) X(c int) float64 { return g.xs[c] }

func (g *Grid) Y(r int) float64 { return g.ys[r] }

func (g *Grid) Z(c, r int) float64 { return g.z[r*len(g.xs)+c] }

// Min returns the least defined value of g, or NaN if there is none.
func (g *Grid) Min() float64 {
	return g.reduce(math.Min)
}

// Max returns the greatest defined value of g, or NaN if there is none.
func (g *Grid) Max() float64 {
	return g.reduce(math.Max)
}

func (g *Grid) reduce(fn func(x, y float64) float64) float64 {
	v := math.NaN()
	for _, z := range g.z {
		if math.IsNaN(z) {
			continue
		}
		if math.IsNaN(v) {
			v = z
		} else {
			v = fn(v, z)
		}
	}
	return v
}

type Metrics struct {
	points prometheus.Counter
	failed prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		points: f.NewCounter(prometheus.CounterOpts{
			Name: metrics.SurfacePointsN,
			Help: metrics.SurfacePointsH,
		}),
		failed: f.NewCounter(prometheus.CounterOpts{
			Name: metrics.SurfacePointsFailedN,
			Help: metrics.SurfacePointsFailedH,
		}),
	}
}

type Option func(*options)

type options struct {
	log     *zap.Logger
	metrics *Metrics
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Sweep evaluates f at every point of xs × ys, one row per task with at most
// workers rows in flight. Points for which f reports a missing input or no
// fired rule are set to NaN and recorded in Grid.Failed; any other error
// aborts the sweep.
func Sweep(ctx context.Context, f Func, xs, ys []float64, workers int, opts ...Option) (*Grid, error) {
	o := options{log: zaplog.Logger()}
	for _, opt := range opts {
		opt(&o)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g := &Grid{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
		z:  make([]float64, len(xs)*len(ys)),
	}
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for r, y := range g.ys {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			row := g.z[r*len(g.xs) : (r+1)*len(g.xs)]
			var failed []Point
			for c, x := range g.xs {
				z, err := f(x, y)
				if err != nil {
					if !undefined(err) {
						return err
					}
					z = math.NaN()
					failed = append(failed, Point{Col: c, Row: r, Err: err})
				}
				row[c] = z
			}
			if len(failed) != 0 {
				mu.Lock()
				g.Failed = append(g.Failed, failed...)
				mu.Unlock()
			}
			if o.metrics != nil {
				o.metrics.points.Add(float64(len(row)))
				o.metrics.failed.Add(float64(len(failed)))
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slices.SortFunc(g.Failed, func(a, b Point) int {
		if a.Row != b.Row {
			return cmp.Compare(a.Row, b.Row)
		}
		return cmp.Compare(a.Col, b.Col)
	})
	o.log.Debug("surface computed",
		zap.Int("cols", len(g.xs)),
		zap.Int("rows", len(g.ys)),
		zap.Int("failed", len(g.Failed)),
	)
	return g, nil
}

func undefined(err error) bool {
	var merr *engine.MissingInputError
	var nerr *engine.NoRuleFiredError
	return errors.As(err, &merr) || errors.As(err, &nerr)
}
