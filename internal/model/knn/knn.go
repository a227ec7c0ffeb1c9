// Package knn provides a brute-force k-nearest-neighbour probability
// classifier over embedding vectors. The predicted probability of a class
// is the share of the k nearest training rows positive for it, so the
// classifier fits a multi-column indicator target directly.
package knn

import (
	"encoding/gob"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"tpsrun/internal/geom"
	"tpsrun/internal/model"
)

const defaultK = 5

func init() {
	gob.Register(&Classifier{})
	model.Register("knn", func(params model.Params) (model.Classifier, error) {
		return New(params)
	})
}

var (
	_ model.Classifier = (*Classifier)(nil)
	_ model.MultiLabel = (*Classifier)(nil)
)

type Classifier struct {
	K int
	// training rows and their targets, one target column per class
	X [][]float64
	Y [][]float64

	dist geom.DistanceFunc
}

type Option func(*Classifier)

// WithDistance overrides the euclidean default.
func WithDistance(fn geom.DistanceFunc) Option {
	return func(c *Classifier) {
		c.dist = fn
	}
}

func New(params model.Params, opts ...Option) (*Classifier, error) {
	k := int(params.Get("k", defaultK))
	if k < 1 {
		return nil, fmt.Errorf("knn: k must be >= 1, got %d", k)
	}
	c := &Classifier{K: k, dist: geom.EuclideanDistance}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Classifier) Fit(X *mat.Dense, y []float64) error {
	rows, _ := X.Dims()
	if len(y) != rows {
		return fmt.Errorf("knn: %d targets for %d rows", len(y), rows)
	}
	targets := mat.NewDense(rows, 1, append([]float64(nil), y...))
	return c.FitMulti(X, targets)
}

func (c *Classifier) FitMulti(X, Y *mat.Dense) error {
	rows, _ := X.Dims()
	yRows, _ := Y.Dims()
	if rows == 0 {
		return fmt.Errorf("knn: empty training set")
	}
	if yRows != rows {
		return fmt.Errorf("knn: %d target rows for %d training rows", yRows, rows)
	}
	c.X = make([][]float64, rows)
	c.Y = make([][]float64, rows)
	for i := 0; i < rows; i++ {
		c.X[i] = append([]float64(nil), X.RawRowView(i)...)
		c.Y[i] = append([]float64(nil), Y.RawRowView(i)...)
	}
	return nil
}

func (c *Classifier) PredictProba(X *mat.Dense) ([]float64, error) {
	proba, err := c.predict(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(proba))
	for i, row := range proba {
		out[i] = row[0]
	}
	return out, nil
}

func (c *Classifier) PredictProbaMulti(X *mat.Dense) (model.ProbaResult, error) {
	proba, err := c.predict(X)
	if err != nil {
		return model.ProbaResult{}, err
	}
	rows := len(proba)
	out := mat.NewDense(rows, len(c.Y[0]), nil)
	for i, row := range proba {
		out.SetRow(i, row)
	}
	return model.JointResult(out), nil
}

func (c *Classifier) predict(X *mat.Dense) ([][]float64, error) {
	if len(c.X) == 0 {
		return nil, model.ErrNotFitted
	}
	dist := c.dist
	if dist == nil {
		// distance funcs are not serialized with the model state
		dist = geom.EuclideanDistance
	}
	k := c.K
	if k > len(c.X) {
		k = len(c.X)
	}

	rows, _ := X.Dims()
	classes := len(c.Y[0])
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		vec := X.RawRowView(i)
		distances := make([]float64, len(c.X))
		order := make([]int, len(c.X))
		for j, trainVec := range c.X {
			d, err := dist(vec, trainVec)
			if err != nil {
				return nil, fmt.Errorf("knn: distance to training row %d: %w", j, err)
			}
			distances[j] = d
			order[j] = j
		}
		sort.Slice(order, func(a, b int) bool {
			return distances[order[a]] < distances[order[b]]
		})

		proba := make([]float64, classes)
		for _, j := range order[:k] {
			for class, v := range c.Y[j] {
				proba[class] += v
			}
		}
		for class := range proba {
			proba[class] /= float64(k)
		}
		out[i] = proba
	}
	return out, nil
}
