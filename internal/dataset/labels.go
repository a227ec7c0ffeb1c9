package dataset

import "sort"

const (
	// UmbrellaLabel marks generic positive-class membership, predicted
	// alongside the fine-grained classes.
	UmbrellaLabel = "is_TPS"
	// NeutralLabel replaces the label of rows excluded from evaluation.
	NeutralLabel = "other"
)

// excludedFromUmbrella are the sentinel labels whose presence keeps a row
// out of the generic positive class.
var excludedFromUmbrella = []string{"Unknown", "precursor substr"}

// LabelSet is the multi-label target of one aggregated row.
type LabelSet map[string]struct{}

func NewLabelSet(labels ...string) LabelSet {
	s := LabelSet{}
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

func (s LabelSet) Add(label string) {
	s[label] = struct{}{}
}

func (s LabelSet) Has(label string) bool {
	_, ok := s[label]
	return ok
}

func (s LabelSet) Intersects(labels []string) bool {
	for _, l := range labels {
		if s.Has(l) {
			return true
		}
	}
	return false
}

// Labels returns the set contents in sorted order.
func (s LabelSet) Labels() []string {
	out := make([]string, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func (s LabelSet) Clone() LabelSet {
	c := make(LabelSet, len(s))
	for l := range s {
		c[l] = struct{}{}
	}
	return c
}

// GroupedRow is one aggregated record: a protein ID and the union of all
// labels observed for it within a partition.
type GroupedRow struct {
	ID     string
	Labels LabelSet
}

// Grouped is an aggregated partition, ordered by first occurrence.
type Grouped struct {
	Rows []GroupedRow
}

func (g *Grouped) Len() int {
	return len(g.Rows)
}

// IDs returns the row IDs in order.
func (g *Grouped) IDs() []string {
	ids := make([]string, len(g.Rows))
	for i, row := range g.Rows {
		ids[i] = row.ID
	}
	return ids
}

// Normalize adds the umbrella label to every row whose label set does not
// contain one of the exclusion sentinels. Existing labels are never
// removed. Applied to both partitions of every fold, after aggregation.
func Normalize(g *Grouped) {
	for i := range g.Rows {
		if g.Rows[i].Labels.Intersects(excludedFromUmbrella) {
			continue
		}
		g.Rows[i].Labels.Add(UmbrellaLabel)
	}
}
