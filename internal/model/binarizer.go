package model

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"tpsrun/internal/dataset"
)

// Binarizer turns label sets into a dense 0/1 indicator matrix with a
// defined column-to-class ordering. After Fit, Classes() is the
// authoritative ordering for every downstream consumer.
type Binarizer struct {
	preferred []string
	classes   []string
	index     map[string]int
}

// NewBinarizer creates a binarizer. When preferred class names are given
// they fix the column order and labels outside the list are ignored;
// otherwise the columns are the sorted union of observed labels.
func NewBinarizer(preferred []string) *Binarizer {
	return &Binarizer{preferred: append([]string(nil), preferred...)}
}

func (b *Binarizer) Fit(g *dataset.Grouped) {
	if len(b.preferred) > 0 {
		b.classes = append([]string(nil), b.preferred...)
	} else {
		seen := map[string]struct{}{}
		for _, row := range g.Rows {
			for label := range row.Labels {
				seen[label] = struct{}{}
			}
		}
		b.classes = make([]string, 0, len(seen))
		for label := range seen {
			b.classes = append(b.classes, label)
		}
		sort.Strings(b.classes)
	}
	b.index = make(map[string]int, len(b.classes))
	for i, class := range b.classes {
		b.index[class] = i
	}
}

// Transform produces the (rows × classes) indicator matrix. Labels with no
// column are dropped.
func (b *Binarizer) Transform(g *dataset.Grouped) *mat.Dense {
	Y := mat.NewDense(g.Len(), len(b.classes), nil)
	for i, row := range g.Rows {
		for label := range row.Labels {
			if j, ok := b.index[label]; ok {
				Y.Set(i, j, 1)
			}
		}
	}
	return Y
}

func (b *Binarizer) FitTransform(g *dataset.Grouped) *mat.Dense {
	b.Fit(g)
	return b.Transform(g)
}

// Classes returns the fitted column ordering.
func (b *Binarizer) Classes() []string {
	return b.classes
}
