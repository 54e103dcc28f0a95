package scape

import (
	"math"
	"testing"
)

func TestCalculateFitness(t *testing.T) {
	cases := []struct {
		name      string
		steps     int
		found     int
		total     int
		want      float64
		tolerance float64
	}{
		{name: "all found no steps", steps: 0, found: 5, total: 5, want: 1},
		{name: "all found twelve steps", steps: 12, found: 5, total: 5, want: 0.94, tolerance: 1e-12},
		{name: "partial", steps: 10, found: 2, total: 5, want: 0.35, tolerance: 1e-12},
		{name: "clamped", steps: 100, found: 1, total: 5, want: 0},
		{name: "nothing found", steps: 0, found: 0, total: 5, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateFitness(tc.steps, tc.found, tc.total)
			if math.Abs(got-tc.want) > tc.tolerance {
				t.Fatalf("got=%f want=%f", got, tc.want)
			}
		})
	}
}

func TestCalculateFitnessRange(t *testing.T) {
	for total := 1; total <= 5; total++ {
		for found := 0; found <= total; found++ {
			for steps := 0; steps <= 500; steps++ {
				f := CalculateFitness(steps, found, total)
				if f < 0 || f > 1 {
					t.Fatalf("fitness out of range: steps=%d found=%d total=%d f=%f", steps, found, total, f)
				}
				if found == 0 && steps >= 200 && f != 0 {
					t.Fatalf("expected zero fitness: steps=%d f=%f", steps, f)
				}
			}
		}
	}
}
