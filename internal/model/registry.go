package model

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds an unfitted classifier from hyperparameters.
type Factory func(params Params) (Classifier, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a model type available by name. Model-type packages call
// it from init; importing the package wires the type in.
func Register(modelType string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[modelType]; dup {
		panic(fmt.Sprintf("model type %q registered twice", modelType))
	}
	registry[modelType] = factory
}

// FactoryFor resolves a registered model type. Unknown types error with
// the list of valid ones.
func FactoryFor(modelType string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[modelType]
	if !ok {
		return nil, fmt.Errorf("unknown model type %q, available: %v", modelType, typesLocked())
	}
	return factory, nil
}

// Types lists the registered model types sorted.
func Types() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return typesLocked()
}

func typesLocked() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
