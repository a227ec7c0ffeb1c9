package geom

import (
	"fmt"
	"math"
)

var ErrDimNotEqual = fmt.Errorf("vectors dimension is not equal")

// DistanceFunc measures how far apart two embedding vectors are.
type DistanceFunc func(vec, vec1 []float64) (float64, error)

type DistanceFuncType string

const (
	DistanceFuncTypeEuclidean DistanceFuncType = "EUCLIDEAN"
	DistanceFuncTypeManhattan DistanceFuncType = "MANHATTAN"
	DistanceFuncTypeCosine    DistanceFuncType = "COSINE"
)

// DistanceFuncFor resolves a distance function by type name.
func DistanceFuncFor(t DistanceFuncType) (DistanceFunc, error) {
	switch t {
	case DistanceFuncTypeEuclidean:
		return EuclideanDistance, nil
	case DistanceFuncTypeManhattan:
		return ManhattanDistance, nil
	case DistanceFuncTypeCosine:
		return CosineDistance, nil
	default:
		return nil, fmt.Errorf("unknown distance function type: %s", t)
	}
}

func EuclideanDistance(vec, vec1 []float64) (float64, error) {
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}
	var d float64
	for i := 0; i < len(vec); i++ {
		d += (vec[i] - vec1[i]) * (vec[i] - vec1[i])
	}
	return math.Sqrt(d), nil
}

func ManhattanDistance(vec, vec1 []float64) (float64, error) {
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}
	var d float64
	for i := 0; i < len(vec); i++ {
		d += math.Abs(vec[i] - vec1[i])
	}
	return d, nil
}

// CosineDistance is 1 - cosine similarity. Two zero vectors are at
// distance 0 from each other, a zero vector is at distance 1 from any
// non-zero vector.
func CosineDistance(vec, vec1 []float64) (float64, error) {
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}
	var dot, norm, norm1 float64
	for i := 0; i < len(vec); i++ {
		dot += vec[i] * vec1[i]
		norm += vec[i] * vec[i]
		norm1 += vec1[i] * vec1[i]
	}
	if norm == 0 && norm1 == 0 {
		return 0.0, nil
	}
	if norm == 0 || norm1 == 0 {
		return 1.0, nil
	}
	return 1 - dot/(math.Sqrt(norm)*math.Sqrt(norm1)), nil
}
