package model

import (
	"encoding/gob"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

func init() {
	gob.Register(&MultiOutput{})
}

var _ MultiLabel = (*MultiOutput)(nil)

// MultiOutput adapts a binary classifier to a multi-column indicator
// target by fitting one independent instance per output column.
type MultiOutput struct {
	// Clfs holds the fitted per-column classifiers, exported for gob.
	Clfs []Classifier

	factory Factory
	params  Params
}

func NewMultiOutput(factory Factory, params Params) *MultiOutput {
	return &MultiOutput{factory: factory, params: params}
}

func (m *MultiOutput) FitMulti(X, Y *mat.Dense) error {
	_, cols := Y.Dims()
	m.Clfs = make([]Classifier, cols)
	for j := 0; j < cols; j++ {
		clf, err := m.factory(m.params)
		if err != nil {
			return fmt.Errorf("building classifier for output %d: %w", j, err)
		}
		y := mat.Col(nil, j, Y)
		if err := clf.Fit(X, y); err != nil {
			return fmt.Errorf("fitting output %d: %w", j, err)
		}
		m.Clfs[j] = clf
	}
	return nil
}

func (m *MultiOutput) PredictProbaMulti(X *mat.Dense) (ProbaResult, error) {
	if len(m.Clfs) == 0 {
		return ProbaResult{}, ErrNotFitted
	}
	columns := make([][]float64, len(m.Clfs))
	for j, clf := range m.Clfs {
		proba, err := clf.PredictProba(X)
		if err != nil {
			return ProbaResult{}, fmt.Errorf("predicting output %d: %w", j, err)
		}
		columns[j] = proba
	}
	return PerOutputResult(columns), nil
}
