package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ProbaResult is the shape-tagged outcome of a multi-label prediction: a
// joint (rows × classes) matrix, or one probability column per class as
// the per-output adapter produces.
type ProbaResult struct {
	Joint     *mat.Dense
	PerOutput [][]float64
}

func JointResult(m *mat.Dense) ProbaResult {
	return ProbaResult{Joint: m}
}

func PerOutputResult(columns [][]float64) ProbaResult {
	return ProbaResult{PerOutput: columns}
}

// Matrix normalizes either variant into one dense (rows × classes)
// probability matrix.
func (r ProbaResult) Matrix(rows, classes int) (*mat.Dense, error) {
	switch {
	case r.Joint != nil:
		gotRows, gotCols := r.Joint.Dims()
		if gotRows != rows || gotCols != classes {
			return nil, fmt.Errorf("joint probability matrix is %dx%d, want %dx%d", gotRows, gotCols, rows, classes)
		}
		return r.Joint, nil
	case r.PerOutput != nil:
		if len(r.PerOutput) != classes {
			return nil, fmt.Errorf("got %d per-output columns, want %d", len(r.PerOutput), classes)
		}
		out := mat.NewDense(rows, classes, nil)
		for j, col := range r.PerOutput {
			if len(col) != rows {
				return nil, fmt.Errorf("per-output column %d has %d rows, want %d", j, len(col), rows)
			}
			for i, v := range col {
				out.Set(i, j, v)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("empty probability result")
	}
}
