package dataset

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrInsufficientNegatives is returned when the negative-subsampling target
// cannot be met from the rows available.
var ErrInsufficientNegatives = errors.New("insufficient negative rows for rebalancing")

// Rebalance caps the share of negative rows in a training partition at
// maxProportion. Rows whose label set contains negVal are the negative
// class; when their proportion exceeds the cap, they are subsampled
// without replacement so that they make up exactly the cap given the
// constant positive count, and the result is reshuffled. A partition
// already under the cap passes through untouched.
func Rebalance(g *Grouped, negVal string, maxProportion float64, rng *rand.Rand) (*Grouped, error) {
	if g.Len() == 0 {
		return g, nil
	}
	var pos, neg []GroupedRow
	for _, row := range g.Rows {
		if row.Labels.Has(negVal) {
			neg = append(neg, row)
		} else {
			pos = append(pos, row)
		}
	}
	negsProportion := float64(len(neg)) / float64(g.Len())
	if negsProportion <= maxProportion {
		return g, nil
	}

	positiveCount := float64(len(pos))
	// truncated toward zero, matching the original sampling count
	required := int(positiveCount/(1-maxProportion) - positiveCount)
	if required <= 0 {
		return nil, fmt.Errorf("%w: %d negatives required with %d positive rows", ErrInsufficientNegatives, required, len(pos))
	}
	if required > len(neg) {
		return nil, fmt.Errorf("%w: %d required, %d available", ErrInsufficientNegatives, required, len(neg))
	}

	sampled := make([]GroupedRow, len(neg))
	copy(sampled, neg)
	rng.Shuffle(len(sampled), func(i, j int) {
		sampled[i], sampled[j] = sampled[j], sampled[i]
	})
	sampled = sampled[:required]

	out := &Grouped{Rows: make([]GroupedRow, 0, len(pos)+required)}
	out.Rows = append(out.Rows, pos...)
	out.Rows = append(out.Rows, sampled...)
	rng.Shuffle(len(out.Rows), func(i, j int) {
		out.Rows[i], out.Rows[j] = out.Rows[j], out.Rows[i]
	})
	return out, nil
}
