// Package membership implements the membership functions of fuzzy sets.
package membership

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"example.com/water-quality/base/floats"
)

type Shape int

const (
	ShapeTriangular Shape = iota
	ShapeTrapezoidal
)

var (
	ErrUnknownShape = errors.New("unknown membership function shape")
	ErrDegenerate   = errors.New("degenerate membership function: all parameters are equal")
	ErrNotMonotone  = errors.New("membership function parameters must be non-decreasing")
	ErrNotFinite    = errors.New("membership function parameters must be finite")
)

func (s Shape) String() string {
	switch s {
	case ShapeTriangular:
		return "trimf"
	case ShapeTrapezoidal:
		return "trapmf"
	default:
		return "Shape(" + strconv.Itoa(int(s)) + ")"
	}
}

// Function is a triangular or trapezoidal membership function. A triangular
// function is stored as a trapezoid whose plateau is the single point b, so
// both shapes share the same parameter layout p[0] <= p[1] <= p[2] <= p[3].
type Function struct {
	shape Shape
	p     [4]float64
}

func Triangular(a, b, c float64) Function {
	return Function{shape: ShapeTriangular, p: [4]float64{a, b, b, c}}
}

func Trapezoidal(a, b, c, d float64) Function {
	return Function{shape: ShapeTrapezoidal, p: [4]float64{a, b, c, d}}
}

func (f Function) Shape() Shape { return f.shape }

// Params returns the parameters the function was constructed with.
func (f Function) Params() []float64 {
	switch f.shape {
	case ShapeTriangular:
		return []float64{f.p[0], f.p[1], f.p[3]}
	default:
		return []float64{f.p[0], f.p[1], f.p[2], f.p[3]}
	}
}

// Support returns the interval outside of which the degree is 0.
func (f Function) Support() (lo, hi float64) {
	return f.p[0], f.p[3]
}

func (f Function) Validate() error {
	if f.shape != ShapeTriangular && f.shape != ShapeTrapezoidal {
		return ErrUnknownShape
	}
	for _, v := range f.p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNotFinite
		}
	}
	if f.p[0] > f.p[1] || f.p[1] > f.p[2] || f.p[2] > f.p[3] {
		return ErrNotMonotone
	}
	if f.p[0] == f.p[3] {
		return ErrDegenerate
	}
	return nil
}

// Degree returns the degree of membership of x, a value in [0, 1]. Inputs
// outside the support, including NaN, evaluate to 0.
func (f Function) Degree(x float64) float64 {
	a, b, c, d := f.p[0], f.p[1], f.p[2], f.p[3]
	if x >= b && x <= c {
		return 1
	}
	if !(x > a && x < d) {
		return 0
	}
	if x < b {
		return floats.Clamp((x-a)/(b-a), 0, 1)
	}
	return floats.Clamp((d-x)/(d-c), 0, 1)
}

// Sample evaluates f at every point of xs.
func (f Function) Sample(xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = f.Degree(x)
	}
	return ys
}

func (f Function) String() string {
	var b strings.Builder
	b.WriteString(f.shape.String())
	b.WriteByte('(')
	for i, v := range f.Params() {
		if i != 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	b.WriteByte(')')
	return b.String()
}
