package experiment

import (
	"encoding/gob"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"tpsrun/internal/dataset"
)

// FoldResult is the per-fold artifact: the held-out probability matrix,
// the class ordering its columns follow, and the test-partition table.
// One file per fold, independently consumable by evaluation tooling.
type FoldResult struct {
	Fold    string
	Classes []string
	IDs     []string
	Labels  [][]string
	Proba   [][]float64
}

func NewFoldResult(fold string, classes []string, test *dataset.Grouped, proba *mat.Dense) *FoldResult {
	r := &FoldResult{
		Fold:    fold,
		Classes: append([]string(nil), classes...),
		IDs:     test.IDs(),
		Labels:  make([][]string, test.Len()),
	}
	for i, row := range test.Rows {
		r.Labels[i] = row.Labels.Labels()
	}
	rows, cols := proba.Dims()
	r.Proba = make([][]float64, rows)
	for i := 0; i < rows; i++ {
		r.Proba[i] = make([]float64, cols)
		copy(r.Proba[i], proba.RawRowView(i))
	}
	return r
}

func (r *FoldResult) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating fold artifact: %w", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(r); err != nil {
		return fmt.Errorf("encoding fold artifact: %w", err)
	}
	return nil
}

func ReadFoldResult(path string) (*FoldResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fold artifact: %w", err)
	}
	defer f.Close()
	var r FoldResult
	if err := gob.NewDecoder(f).Decode(&r); err != nil {
		return nil, fmt.Errorf("decoding fold artifact: %w", err)
	}
	return &r, nil
}
