// Package logreg provides a binary logistic-regression classifier trained
// with full-batch gradient descent. It fits one target column only, so in
// global mode the fit policy wraps it per output.
package logreg

import (
	"encoding/gob"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"tpsrun/internal/model"
)

const (
	defaultLR     = 0.1
	defaultEpochs = 200
)

func init() {
	gob.Register(&Classifier{})
	model.Register("logreg", func(params model.Params) (model.Classifier, error) {
		return New(params)
	})
}

var _ model.Classifier = (*Classifier)(nil)

type Classifier struct {
	W []float64
	B float64

	LR     float64
	Epochs int
	L2     float64
}

func New(params model.Params) (*Classifier, error) {
	c := &Classifier{
		LR:     params.Get("lr", defaultLR),
		Epochs: int(params.Get("epochs", defaultEpochs)),
		L2:     params.Get("l2", 0),
	}
	if c.LR <= 0 {
		return nil, fmt.Errorf("logreg: lr must be positive, got %v", c.LR)
	}
	if c.Epochs < 1 {
		return nil, fmt.Errorf("logreg: epochs must be >= 1, got %d", c.Epochs)
	}
	return c, nil
}

// Fit minimizes binary cross-entropy. Weights start at zero, which keeps
// training deterministic for a given input.
func (c *Classifier) Fit(X *mat.Dense, y []float64) error {
	rows, cols := X.Dims()
	if len(y) != rows {
		return fmt.Errorf("logreg: %d targets for %d rows", len(y), rows)
	}
	if rows == 0 {
		return fmt.Errorf("logreg: empty training set")
	}
	c.W = make([]float64, cols)
	c.B = 0

	grad := make([]float64, cols)
	for epoch := 0; epoch < c.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradB float64
		for i := 0; i < rows; i++ {
			row := X.RawRowView(i)
			residual := c.decision(row) - y[i]
			for j, v := range row {
				grad[j] += residual * v
			}
			gradB += residual
		}
		n := float64(rows)
		for j := range c.W {
			c.W[j] -= c.LR * (grad[j]/n + c.L2*c.W[j])
		}
		c.B -= c.LR * gradB / n
	}
	return nil
}

func (c *Classifier) PredictProba(X *mat.Dense) ([]float64, error) {
	if c.W == nil {
		return nil, model.ErrNotFitted
	}
	rows, cols := X.Dims()
	if cols != len(c.W) {
		return nil, fmt.Errorf("logreg: input has %d features, model has %d", cols, len(c.W))
	}
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = c.decision(X.RawRowView(i))
	}
	return out, nil
}

func (c *Classifier) decision(row []float64) float64 {
	sum := c.B
	for j, v := range row {
		sum += c.W[j] * v
	}
	return sigmoid(sum)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
