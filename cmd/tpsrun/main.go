package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/urfave/cli/v2"

	"tpsrun/internal/buildinfo"
	"tpsrun/internal/config"
	"tpsrun/internal/database"
	"tpsrun/internal/dataset"
	"tpsrun/internal/experiment"
	"tpsrun/internal/features"
	"tpsrun/internal/logging"
	"tpsrun/internal/model"
	_ "tpsrun/internal/model/knn"
	_ "tpsrun/internal/model/logreg"
	"tpsrun/internal/shutdown"
)

func main() {
	ctx, done := shutdown.New()
	defer done()
	logger := logging.FromContext(ctx)

	app := &cli.App{
		Name:    buildinfo.Info.Name(),
		Usage:   "cross-validation experiments for TPS protein classification",
		Version: buildinfo.Info.Tag(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run a cross-validation experiment for one model type/version",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "model-type", Usage: "registered model type", Required: true},
					&cli.StringFlag{Name: "model-version", Usage: "config version under the model-type dir", Value: "v1"},
					&cli.StringFlag{Name: "config-root", Usage: "root directory with per-model configs"},
					&cli.StringFlag{Name: "output-root", Usage: "directory for experiment results"},
				},
				Action: runExperiment,
			},
			{
				Name:  "import-embeddings",
				Usage: "load protein embeddings from a CSV into the embeddings db",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "db", Usage: "embeddings db path", Required: true},
					&cli.StringFlag{Name: "csv", Usage: "CSV of id,v1,...,vn rows", Required: true},
				},
				Action: importEmbeddings,
			},
		},
	}
	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Fatal(err)
	}
}

func runExperiment(c *cli.Context) error {
	ctx := c.Context
	logger := logging.FromContext(ctx)

	var env config.Env
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("processing environment: %w", err)
	}
	configRoot := c.String("config-root")
	if configRoot == "" {
		configRoot = env.ConfigRoot
	}
	outputRoot := c.String("output-root")
	if outputRoot == "" {
		outputRoot = env.OutputRoot
	}
	modelType := c.String("model-type")
	modelVersion := c.String("model-version")

	factory, err := model.FactoryFor(modelType)
	if err != nil {
		return err
	}

	cfgPath := filepath.Join(configRoot, modelType, modelVersion, "config.yaml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", cfgPath, err)
	}
	logger.Infow("config loaded", "path", cfgPath, "model", modelType, "version", modelVersion)

	table, err := dataset.LoadCSV(cfg.DatasetPath, dataset.Columns{
		ID:     cfg.IDColName,
		Target: cfg.TargetColName,
		Split:  cfg.SplitColName,
	})
	if err != nil {
		return err
	}
	logger.Infow("dataset loaded", "path", cfg.DatasetPath, "rows", len(table.Rows), "folds", len(table.Folds()))

	db, err := database.Open(ctx, cfg.EmbeddingsPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			logger.Errorf("closing embeddings db: %v", err)
		}
	}()

	m := model.NewFeaturesModel(cfg, factory, features.New(db))
	runner, err := experiment.New(cfg, experiment.NewInfo(modelType, modelVersion), m, table, outputRoot)
	if err != nil {
		return err
	}
	return runner.Run(ctx)
}

func importEmbeddings(c *cli.Context) error {
	ctx := c.Context
	logger := logging.FromContext(ctx)

	db, err := database.Open(ctx, c.String("db"))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			logger.Errorf("closing embeddings db: %v", err)
		}
	}()

	_, err = features.New(db).ImportCSV(ctx, c.String("csv"))
	return err
}
