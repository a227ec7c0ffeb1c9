package model

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"gonum.org/v1/gonum/mat"

	"tpsrun/internal/config"
	"tpsrun/internal/dataset"
	"tpsrun/internal/logging"
)

// Embedder resolves protein ids to their embedding design matrix.
type Embedder interface {
	Embed(ctx context.Context, ids []string) (*mat.Dense, error)
}

type Option func(*FeaturesModel)

// WithRand overrides the sampling source used for rebalancing.
func WithRand(rng *rand.Rand) Option {
	return func(m *FeaturesModel) {
		m.rng = rng
	}
}

// FeaturesModel fits classifiers over precomputed protein embeddings. In
// global mode it fits one multi-label classifier for all classes jointly
// (wrapping it per-output when the classifier rejects the indicator
// target); in per-class mode it fits independent binary classifiers for
// the classes that have class-specific hyperparameters and at least one
// positive training example.
type FeaturesModel struct {
	cfg      *config.Config
	factory  Factory
	embedder Embedder
	rng      *rand.Rand

	fitted    bool
	classes   []string
	multi     MultiLabel
	class2clf map[string]Classifier
}

func NewFeaturesModel(cfg *config.Config, factory Factory, embedder Embedder, opts ...Option) *FeaturesModel {
	m := &FeaturesModel{
		cfg:      cfg,
		factory:  factory,
		embedder: embedder,
		rng:      rand.New(rand.NewSource(cfg.RandomState)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fit trains the model on an aggregated training partition.
func (m *FeaturesModel) Fit(ctx context.Context, g *dataset.Grouped) error {
	logger := logging.FromContext(ctx)

	grouped, err := dataset.Rebalance(g, m.cfg.NegVal, m.cfg.MaxTrainNegsProportion, m.rng)
	if err != nil {
		return fmt.Errorf("rebalancing training set: %w", err)
	}
	if grouped.Len() != g.Len() {
		logger.Infow("rebalanced training set", "before", g.Len(), "after", grouped.Len())
	}

	X, err := m.embedder.Embed(ctx, grouped.IDs())
	if err != nil {
		return fmt.Errorf("embedding training ids: %w", err)
	}

	if m.cfg.PerClassOptimization {
		err = m.fitPerClass(ctx, X, grouped)
	} else {
		err = m.fitGlobal(ctx, X, grouped)
	}
	if err != nil {
		return err
	}
	m.fitted = true
	return nil
}

func (m *FeaturesModel) fitGlobal(ctx context.Context, X *mat.Dense, grouped *dataset.Grouped) error {
	logger := logging.FromContext(ctx)

	bin := NewBinarizer(m.cfg.ClassNames)
	Y := bin.FitTransform(grouped)
	m.class2clf = nil

	clf, err := m.factory(Params(m.cfg.Params))
	if err != nil {
		return fmt.Errorf("building classifier: %w", err)
	}
	if ml, ok := clf.(MultiLabel); ok {
		err := ml.FitMulti(X, Y)
		if err == nil {
			m.multi = ml
			m.classes = bin.Classes()
			return nil
		}
		if !errors.Is(err, ErrMultiOutputUnsupported) {
			return fmt.Errorf("fitting multi-label classifier: %w", err)
		}
	}

	logger.Info("falling back to per-output classifier wrapper")
	mo := NewMultiOutput(m.factory, Params(m.cfg.Params))
	if err := mo.FitMulti(X, Y); err != nil {
		return fmt.Errorf("fitting per-output wrapper: %w", err)
	}
	m.multi = mo
	m.classes = bin.Classes()
	return nil
}

func (m *FeaturesModel) fitPerClass(ctx context.Context, X *mat.Dense, grouped *dataset.Grouped) error {
	logger := logging.FromContext(ctx)

	m.multi = nil
	m.classes = append([]string(nil), m.cfg.ClassNames...)
	m.class2clf = map[string]Classifier{}
	for _, class := range m.classes {
		params, hasSpecific := Params(m.cfg.Params).ForClass(class)
		if !hasSpecific {
			continue
		}
		y := make([]float64, grouped.Len())
		var positives int
		for i, row := range grouped.Rows {
			if row.Labels.Has(class) {
				y[i] = 1
				positives++
			}
		}
		if positives == 0 {
			logger.Infow("skipping class with no positive examples", "class", class)
			continue
		}
		clf, err := m.factory(params)
		if err != nil {
			return fmt.Errorf("building classifier for class %s: %w", class, err)
		}
		if err := clf.Fit(X, y); err != nil {
			return fmt.Errorf("fitting class %s: %w", class, err)
		}
		m.class2clf[class] = clf
	}
	return nil
}

// Classes returns the authoritative post-fit class ordering.
func (m *FeaturesModel) Classes() []string {
	return m.classes
}

// PredictProba scores either an aggregated id/label table (ids are joined
// against the embedding store) or a raw embedding matrix. The result is a
// dense (rows × classes) probability matrix; in per-class mode a class
// with no stored classifier yields an all-zero column.
func (m *FeaturesModel) PredictProba(ctx context.Context, input interface{}) (*mat.Dense, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}

	var (
		X   *mat.Dense
		err error
	)
	switch v := input.(type) {
	case *dataset.Grouped:
		X, err = m.embedder.Embed(ctx, v.IDs())
		if err != nil {
			return nil, fmt.Errorf("embedding prediction ids: %w", err)
		}
	case *mat.Dense:
		X = v
	default:
		return nil, fmt.Errorf("unsupported input type %T, want *dataset.Grouped or *mat.Dense", input)
	}
	rows, _ := X.Dims()

	if m.multi != nil {
		result, err := m.multi.PredictProbaMulti(X)
		if err != nil {
			return nil, err
		}
		return result.Matrix(rows, len(m.classes))
	}

	out := mat.NewDense(rows, len(m.classes), nil)
	for j, class := range m.classes {
		clf, ok := m.class2clf[class]
		if !ok {
			continue
		}
		col, err := clf.PredictProba(X)
		if err != nil {
			return nil, fmt.Errorf("predicting class %s: %w", class, err)
		}
		for i, v := range col {
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// snapshot is the gob-encoded persistent state of a fitted model.
type snapshot struct {
	Classes   []string
	PerClass  bool
	Multi     MultiLabel
	Class2Clf map[string]Classifier
}

// Save persists the fitted model state to path.
func (m *FeaturesModel) Save(path string) error {
	if !m.fitted {
		return ErrNotFitted
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating model file: %w", err)
	}
	defer f.Close()

	snap := snapshot{
		Classes:   m.classes,
		PerClass:  m.multi == nil,
		Multi:     m.multi,
		Class2Clf: m.class2clf,
	}
	if err := gob.NewEncoder(f).Encode(&snap); err != nil {
		return fmt.Errorf("encoding model state: %w", err)
	}
	return nil
}

// Load restores a fitted model for prediction. The returned model cannot
// be refitted; the embedder may be nil when only raw-matrix prediction is
// needed.
func Load(path string, embedder Embedder) (*FeaturesModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model file: %w", err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding model state: %w", err)
	}
	return &FeaturesModel{
		embedder:  embedder,
		fitted:    true,
		classes:   snap.Classes,
		multi:     snap.Multi,
		class2clf: snap.Class2Clf,
	}, nil
}
