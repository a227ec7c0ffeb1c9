package experiment

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Info describes one experiment invocation. It is immutable: the
// timestamp and run id are fixed at construction, and the current fold is
// a runner-local value, never stored here.
type Info struct {
	ModelType    string
	ModelVersion string
	RunID        uuid.UUID
	StartedAt    time.Time
}

func NewInfo(modelType, modelVersion string) Info {
	return Info{
		ModelType:    modelType,
		ModelVersion: modelVersion,
		RunID:        uuid.New(),
		StartedAt:    time.Now(),
	}
}

// Name is the detailed experiment name used in logs.
func (i Info) Name() string {
	return fmt.Sprintf("%s_%s_%s", i.ModelType, i.ModelVersion, i.StartedAt.Format("20060102-150405"))
}

// OutputDir is where this run's fold artifacts land.
func (i Info) OutputDir(base string) string {
	return filepath.Join(base, i.ModelType, i.ModelVersion, i.StartedAt.Format("20060102-150405"))
}
