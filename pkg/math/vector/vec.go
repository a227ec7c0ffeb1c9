package vector

// V is a dense numeric vector, the storage type for protein embeddings.
type V []float64

func New(vec []float64) V {
	return vec
}

func (v V) Dimensions() int {
	return len(v)
}

func (v V) Point(idx int) float64 {
	return v[idx]
}

func (v V) Points() []float64 {
	return v
}

func (v V) Copy() V {
	v1 := make(V, len(v))
	copy(v1, v)
	return v1
}

func (v V) Sum() float64 {
	var s float64
	for i := range v {
		s += v[i]
	}
	return s
}

func (v V) Equal(vec V) bool {
	if len(v) != len(vec) {
		return false
	}
	for i, value := range v {
		if vec[i] != value {
			return false
		}
	}
	return true
}

// MeanOf returns the element-wise mean of the given vectors. All vectors
// must share one dimension; nil is returned for empty input.
func MeanOf(vecs ...V) V {
	if len(vecs) == 0 {
		return nil
	}
	mean := make(V, len(vecs[0]))
	for _, vec := range vecs {
		for i := range mean {
			mean[i] += vec[i]
		}
	}
	n := float64(len(vecs))
	for i := range mean {
		mean[i] /= n
	}
	return mean
}
