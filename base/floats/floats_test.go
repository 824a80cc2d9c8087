package floats_test

import (
	"math"
	"testing"

	"example.com/water-quality/base/floats"
)

func TestRange(t *testing.T) {
	tests := []struct {
		name       string
		min, max   float64
		step       float64
		wantLen    int
		wantSecond float64
	}{
		{name: "pH", min: 0, max: 14, step: 0.1, wantLen: 141, wantSecond: 0.1},
		{name: "Hardness", min: 0, max: 1200, step: 0.1, wantLen: 12001, wantSecond: 0.1},
		{name: "Quality", min: 0, max: 100, step: 0.1, wantLen: 1001, wantSecond: 0.1},
		{name: "Unit steps", min: -2, max: 2, step: 1, wantLen: 5, wantSecond: -1},
		{name: "Max off grid", min: 0, max: 1, step: 0.3, wantLen: 5, wantSecond: 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := floats.Range(tt.min, tt.max, tt.step)
			if len(got) != tt.wantLen {
				t.Fatalf("len(Range(%v, %v, %v)) = %v, want %v", tt.min, tt.max, tt.step, len(got), tt.wantLen)
			}
			if got[0] != tt.min {
				t.Errorf("Range(...)[0] = %v, want %v", got[0], tt.min)
			}
			if got[len(got)-1] != tt.max {
				t.Errorf("Range(...)[last] = %v, want %v", got[len(got)-1], tt.max)
			}
			if math.Abs(got[1]-tt.wantSecond) > 1e-12 {
				t.Errorf("Range(...)[1] = %v, want %v", got[1], tt.wantSecond)
			}
			for i := 1; i < len(got); i++ {
				if got[i] <= got[i-1] {
					t.Fatalf("Range(...) not increasing at %d: %v <= %v", i, got[i], got[i-1])
				}
			}
		})
	}

	t.Run("InvalidStep", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("Range with zero step did not panic")
			}
		}()
		floats.Range(0, 1, 0)
	})
}

func TestClamp(t *testing.T) {
	tests := []struct {
		x, min, max float64
		want        float64
	}{
		{-1, 0, 1, 0},
		{0.5, 0, 1, 0.5},
		{2, 0, 1, 1},
		{0, 0, 0, 0},
	}

	for _, tt := range tests {
		got := floats.Clamp(tt.x, tt.min, tt.max)
		if got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.x, tt.min, tt.max, got, tt.want)
		}
	}
}
