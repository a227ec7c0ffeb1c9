package model

import (
	"errors"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrMultiOutputUnsupported signals that a classifier cannot fit a
	// multi-column indicator target directly; the fit policy reacts by
	// wrapping it in the per-output adapter.
	ErrMultiOutputUnsupported = errors.New("classifier does not support multi-output targets")

	// ErrNotFitted is returned by prediction on an unfitted model.
	ErrNotFitted = errors.New("model is not fitted")
)

// Classifier is the opaque binary fit/predict-proba capability every model
// type provides. PredictProba returns P(class=1) per input row.
type Classifier interface {
	Fit(X *mat.Dense, y []float64) error
	PredictProba(X *mat.Dense) ([]float64, error)
}

// MultiLabel is implemented by classifiers that can fit a dense 0/1
// indicator matrix jointly. FitMulti may return ErrMultiOutputUnsupported
// to reject the target shape.
type MultiLabel interface {
	FitMulti(X, Y *mat.Dense) error
	PredictProbaMulti(X *mat.Dense) (ProbaResult, error)
}

// Params are classifier hyperparameters by name.
type Params map[string]float64

// ForClass derives the hyperparameters for one class: keys prefixed with
// "<class>_" are stripped of the prefix and override nothing (all other
// keys pass through unchanged). The bool reports whether at least one
// class-specific key was present.
func (p Params) ForClass(class string) (Params, bool) {
	out := make(Params, len(p))
	prefix := class + "_"
	var specific bool
	for name, val := range p {
		if strings.HasPrefix(name, prefix) {
			specific = true
			out[strings.TrimPrefix(name, prefix)] = val
		} else {
			out[name] = val
		}
	}
	return out, specific
}

// Get returns the named parameter or the fallback.
func (p Params) Get(name string, fallback float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return fallback
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for name, val := range p {
		out[name] = val
	}
	return out
}
