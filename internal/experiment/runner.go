package experiment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"tpsrun/internal/config"
	"tpsrun/internal/dataset"
	"tpsrun/internal/logging"
	"tpsrun/internal/model"
)

// Runner drives cross-validation: for every fold it partitions the
// dataset, shapes the labels, fits the model, scores the held-out rows
// and persists the fold artifact. Folds run sequentially; the first
// failure aborts the run.
type Runner struct {
	cfg    *config.Config
	info   Info
	model  *model.FeaturesModel
	table  *dataset.Table
	outDir string
}

func New(cfg *config.Config, info Info, m *model.FeaturesModel, table *dataset.Table, outputRoot string) (*Runner, error) {
	outDir := info.OutputDir(outputRoot)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir %s: %w", outDir, err)
	}
	return &Runner{cfg: cfg, info: info, model: m, table: table, outDir: outDir}, nil
}

// OutputDir is the directory the run writes its artifacts to.
func (r *Runner) OutputDir() string {
	return r.outDir
}

func (r *Runner) Run(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	folds := r.table.Folds()
	logger.Infow("starting experiment", "name", r.info.Name(), "run_id", r.info.RunID, "folds", len(folds))

	for _, fold := range folds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.runFold(ctx, fold); err != nil {
			return fmt.Errorf("fold %s: %w", fold, err)
		}
	}
	logger.Infow("experiment done", "name", r.info.Name(), "output", r.outDir)
	return nil
}

func (r *Runner) runFold(ctx context.Context, fold string) error {
	logger := logging.FromContext(ctx)
	logger.Infow("fold selected", "fold", fold)

	train, test := r.table.Partition(fold)
	train.OverrideIgnored(dataset.NeutralLabel)
	test.OverrideIgnored(dataset.NeutralLabel)

	trainSet := train.AggregateByID()
	testSet := test.AggregateByID()
	dataset.Normalize(trainSet)
	dataset.Normalize(testSet)

	if err := r.model.Fit(ctx, trainSet); err != nil {
		return fmt.Errorf("fitting: %w", err)
	}
	logger.Infow("trained model", "model", r.info.ModelType, "version", r.info.ModelVersion, "fold", fold)

	if r.cfg.SaveTrainedModel {
		path := filepath.Join(r.outDir, fmt.Sprintf("model_%s.gob", fold))
		if err := r.model.Save(path); err != nil {
			return fmt.Errorf("saving model: %w", err)
		}
	}

	proba, err := r.model.PredictProba(ctx, testSet)
	if err != nil {
		return fmt.Errorf("scoring: %w", err)
	}

	result := NewFoldResult(fold, r.model.Classes(), testSet, proba)
	path := filepath.Join(r.outDir, fmt.Sprintf("%s_results.gob", fold))
	if err := result.Write(path); err != nil {
		return err
	}
	logger.Infow("fold artifact written", "fold", fold, "path", path, "test_rows", testSet.Len())
	return nil
}
