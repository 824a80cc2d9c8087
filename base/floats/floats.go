// Package floats provides numeric helpers for sampling and bounding values.
package floats

import (
	"math"
)

// Relative tolerance used when deciding whether the last sample of a range
// coincides with its upper bound.
const rangeTolerance = 1e-9

// Range returns min, min+step, min+2*step, ... up to and including max. Each
// sample is computed as min+i*step so that rounding errors do not accumulate.
// If max is not a multiple of step away from min, max is appended as the
// final sample.
func Range(min, max, step float64) []float64 {
	if !(step > 0) || !(max >= min) {
		panic("unexpected range")
	}
	span := (max - min) / step
	n := int(math.Floor(span + rangeTolerance*math.Max(1, span)))
	fs := make([]float64, 0, n+2)
	for i := 0; i <= n; i++ {
		fs = append(fs, min+float64(i)*step)
	}
	last := fs[len(fs)-1]
	if max-last > rangeTolerance*step {
		fs = append(fs, max)
	} else {
		fs[len(fs)-1] = max
	}
	return fs
}

func Clamp(x, min, max float64) float64 {
	return math.Max(min, math.Min(max, x))
}
