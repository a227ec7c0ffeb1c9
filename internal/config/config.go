package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrMissingInclude is returned when a config names an include file that
// does not exist next to it.
var ErrMissingInclude = errors.New("included config file not found")

const includeKey = "include"

// Env carries process-level settings resolved from the environment.
type Env struct {
	ConfigRoot string `envconfig:"TPS_CONFIG_ROOT" default:"configs"`
	OutputRoot string `envconfig:"TPS_OUTPUT_ROOT" default:"outputs/experiment_results"`
	Debug      bool   `envconfig:"TPS_DEBUG" default:"false"`
}

// Config describes one experiment: dataset columns, class names,
// negative-sampling behavior and classifier hyperparameters.
type Config struct {
	IDColName     string   `yaml:"id_col_name"`
	TargetColName string   `yaml:"target_col_name"`
	SplitColName  string   `yaml:"split_col_name"`
	ClassNames    []string `yaml:"class_names"`
	NegVal        string   `yaml:"neg_val"`

	MaxTrainNegsProportion float64 `yaml:"max_train_negs_proportion"`
	PerClassOptimization   bool    `yaml:"per_class_optimization"`
	RandomState            int64   `yaml:"random_state"`
	SaveTrainedModel       bool    `yaml:"save_trained_model"`

	DatasetPath    string `yaml:"tps_cleaned_csv_path"`
	EmbeddingsPath string `yaml:"representations_path"`

	// Classifier hyperparameters. Keys prefixed with "<class name>_" are
	// class-specific and only consulted in per-class mode.
	Params map[string]float64 `yaml:"params"`
}

// Load reads a YAML config document. If the document carries an "include"
// key, the named file (resolved relative to the document's directory) is
// loaded too and its keys are merged in for keys absent from the primary
// document. Primary values win on conflict.
func Load(path string) (*Config, error) {
	raw, err := loadMap(path)
	if err != nil {
		return nil, err
	}

	if inc, ok := raw[includeKey]; ok {
		delete(raw, includeKey)
		incName, ok := inc.(string)
		if !ok {
			return nil, fmt.Errorf("config %s: include value must be a string, got %T", path, inc)
		}
		incPath := filepath.Join(filepath.Dir(path), incName)
		if _, err := os.Stat(incPath); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingInclude, incPath)
		}
		included, err := loadMap(incPath)
		if err != nil {
			return nil, err
		}
		for key, val := range included {
			if _, exists := raw[key]; !exists {
				raw[key] = val
			}
		}
	}

	merged, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("re-encoding merged config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(merged, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return &cfg, nil
}

func loadMap(path string) (map[string]interface{}, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	m := map[string]interface{}{}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return m, nil
}

// Validate reports the first missing or out-of-range field.
func (c *Config) Validate() error {
	switch {
	case c.IDColName == "":
		return errors.New("id_col_name is required")
	case c.TargetColName == "":
		return errors.New("target_col_name is required")
	case c.SplitColName == "":
		return errors.New("split_col_name is required")
	case len(c.ClassNames) == 0:
		return errors.New("class_names must not be empty")
	case c.NegVal == "":
		return errors.New("neg_val is required")
	}
	if c.MaxTrainNegsProportion <= 0 || c.MaxTrainNegsProportion >= 1 {
		return fmt.Errorf("max_train_negs_proportion must be in (0,1), got %v", c.MaxTrainNegsProportion)
	}
	return nil
}
