package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestParams_ForClass(t *testing.T) {
	params := Params{
		"k":        5,
		"diterp_k": 3,
		"diterp_w": 0.5,
		"mono_k":   7,
	}

	derived, specific := params.ForClass("diterp")
	assert.True(t, specific)
	assert.Equal(t, 3.0, derived["k"])
	assert.Equal(t, 0.5, derived["w"])
	// other classes' prefixed params survive untouched
	assert.Equal(t, 7.0, derived["mono_k"])

	_, specific = params.ForClass("sesq")
	assert.False(t, specific)

	derived, specific = Params{"k": 2}.ForClass("diterp")
	assert.False(t, specific)
	assert.Equal(t, 2.0, derived["k"])
}

func TestParams_Get(t *testing.T) {
	params := Params{"k": 3}
	assert.Equal(t, 3.0, params.Get("k", 5))
	assert.Equal(t, 5.0, params.Get("absent", 5))
}

func TestRegistry(t *testing.T) {
	Register("test_stub", func(params Params) (Classifier, error) {
		return &stubClassifier{}, nil
	})

	factory, err := FactoryFor("test_stub")
	require.NoError(t, err)
	clf, err := factory(nil)
	require.NoError(t, err)
	assert.NotNil(t, clf)

	_, err = FactoryFor("no_such_model")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test_stub")
	assert.Contains(t, Types(), "test_stub")
}

func TestProbaResult_Matrix(t *testing.T) {
	joint := JointResult(mat.NewDense(2, 2, []float64{0.1, 0.9, 0.8, 0.2}))
	m, err := joint.Matrix(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 0.9, m.At(0, 1))

	perOutput := PerOutputResult([][]float64{{0.1, 0.8}, {0.9, 0.2}})
	m, err = perOutput.Matrix(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 0.9, m.At(0, 1))
	assert.Equal(t, 0.8, m.At(1, 0))

	_, err = joint.Matrix(3, 2)
	assert.Error(t, err)
	_, err = perOutput.Matrix(2, 3)
	assert.Error(t, err)
	_, err = (ProbaResult{}).Matrix(1, 1)
	assert.Error(t, err)
}
