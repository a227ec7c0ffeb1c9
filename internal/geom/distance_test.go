package geom

import (
	"math"
	"testing"
)

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name     string
		p        []float64
		p1       []float64
		expected float64
		wantErr  bool
	}{
		{name: "unit_diagonal", p: []float64{1.2, 2.0}, p1: []float64{2.0, 3.0}, expected: 1.2806248474865698},
		{name: "axis", p: []float64{10, 2.0}, p1: []float64{5, 3.0}, expected: 5.0990195135927845},
		{name: "dim_mismatch", p: []float64{5, 2.0}, p1: []float64{3}, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := EuclideanDistance(test.p, test.p1)
			if test.wantErr {
				if err == nil {
					t.Errorf("expected %v for mismatched dimensions", ErrDimNotEqual)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != test.expected {
				t.Errorf("got %f, expected %f", got, test.expected)
			}
		})
	}
}

func TestManhattanDistance(t *testing.T) {
	got, err := ManhattanDistance([]float64{1, 2, 3}, []float64{2, 0, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 3 {
		t.Errorf("got %f, expected 3", got)
	}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name     string
		p        []float64
		p1       []float64
		expected float64
	}{
		{name: "parallel", p: []float64{1, 0}, p1: []float64{2, 0}, expected: 0},
		{name: "orthogonal", p: []float64{1, 0}, p1: []float64{0, 3}, expected: 1},
		{name: "opposite", p: []float64{1, 0}, p1: []float64{-1, 0}, expected: 2},
		{name: "zero_vs_zero", p: []float64{0, 0}, p1: []float64{0, 0}, expected: 0},
		{name: "zero_vs_nonzero", p: []float64{0, 0}, p1: []float64{1, 1}, expected: 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := CosineDistance(test.p, test.p1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-test.expected) > 1e-12 {
				t.Errorf("got %f, expected %f", got, test.expected)
			}
		})
	}
}

func TestDistanceFuncFor(t *testing.T) {
	for _, typ := range []DistanceFuncType{
		DistanceFuncTypeEuclidean, DistanceFuncTypeManhattan, DistanceFuncTypeCosine,
	} {
		if _, err := DistanceFuncFor(typ); err != nil {
			t.Errorf("DistanceFuncFor(%s): %v", typ, err)
		}
	}
	if _, err := DistanceFuncFor("HAMMING"); err == nil {
		t.Error("expected an error for an unknown distance type")
	}
}
