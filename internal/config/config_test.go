package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_IncludeMerge(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
id_col_name: Uniprot ID
target_col_name: Type
split_col_name: kingdom_fold
neg_val: Negative
max_train_negs_proportion: 0.75
`)
	path := writeFile(t, dir, "config.yaml", `
include: base.yaml
neg_val: other
class_names: [A, B]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	// primary wins on conflict
	assert.Equal(t, "other", cfg.NegVal)
	// absent keys are filled from the included document
	assert.Equal(t, "Uniprot ID", cfg.IDColName)
	assert.Equal(t, "kingdom_fold", cfg.SplitColName)
	assert.Equal(t, 0.75, cfg.MaxTrainNegsProportion)
	assert.Equal(t, []string{"A", "B"}, cfg.ClassNames)
}

func TestLoad_MissingInclude(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "include: nope.yaml\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingInclude))
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "class_names: [unterminated\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		IDColName:              "Uniprot ID",
		TargetColName:          "Type",
		SplitColName:           "fold",
		ClassNames:             []string{"A"},
		NegVal:                 "Negative",
		MaxTrainNegsProportion: 0.5,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no_id_col", mutate: func(c *Config) { c.IDColName = "" }, wantErr: true},
		{name: "no_classes", mutate: func(c *Config) { c.ClassNames = nil }, wantErr: true},
		{name: "no_neg_val", mutate: func(c *Config) { c.NegVal = "" }, wantErr: true},
		{name: "proportion_zero", mutate: func(c *Config) { c.MaxTrainNegsProportion = 0 }, wantErr: true},
		{name: "proportion_one", mutate: func(c *Config) { c.MaxTrainNegsProportion = 1 }, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := valid
			cfg.ClassNames = append([]string(nil), valid.ClassNames...)
			test.mutate(&cfg)
			err := cfg.Validate()
			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
