package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

// Columns names the dataset columns an experiment reads. The
// ignore-in-eval flag lives in a column named "<split>_ignore_in_eval".
type Columns struct {
	ID     string
	Target string
	Split  string
}

func (c Columns) IgnoreInEval() string {
	return c.Split + "_ignore_in_eval"
}

// Row is one record of the cleaned TPS table. Several rows may share an ID,
// each carrying a single label.
type Row struct {
	ID           string
	Label        string
	Fold         string
	IgnoreInEval bool
}

// Table is the full in-memory dataset. It is loaded once per experiment and
// shared read-only across folds; per-fold work happens on copies.
type Table struct {
	Rows []Row
}

// LoadCSV reads the dataset table from a headered CSV file.
func LoadCSV(path string, cols Columns) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}
	idx := map[string]int{}
	for i, name := range header {
		idx[name] = i
	}
	for _, required := range []string{cols.ID, cols.Target, cols.Split} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("dataset %s: missing column %q", path, required)
		}
	}
	ignoreIdx, hasIgnore := idx[cols.IgnoreInEval()]

	t := &Table{}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading dataset %s: %w", path, err)
		}
		row := Row{
			ID:    record[idx[cols.ID]],
			Label: record[idx[cols.Target]],
			Fold:  record[idx[cols.Split]],
		}
		if hasIgnore {
			v := record[ignoreIdx]
			row.IgnoreInEval = v == "1" || v == "true" || v == "True"
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("dataset %s: no rows", path)
	}
	return t, nil
}

// Folds returns the sorted distinct fold names present in the table.
func (t *Table) Folds() []string {
	seen := map[string]struct{}{}
	var folds []string
	for _, row := range t.Rows {
		if _, ok := seen[row.Fold]; !ok {
			seen[row.Fold] = struct{}{}
			folds = append(folds, row.Fold)
		}
	}
	sort.Strings(folds)
	return folds
}

// Partition splits the table into a training copy (fold mismatch) and a
// test copy (fold match). The receiver is never mutated.
func (t *Table) Partition(fold string) (train, test *Table) {
	train, test = &Table{}, &Table{}
	for _, row := range t.Rows {
		if row.Fold == fold {
			test.Rows = append(test.Rows, row)
		} else {
			train.Rows = append(train.Rows, row)
		}
	}
	return train, test
}

// OverrideIgnored replaces the label of every ignore-in-eval row with the
// neutral label. Meant for the per-fold working copies, before aggregation.
func (t *Table) OverrideIgnored(neutral string) {
	for i := range t.Rows {
		if t.Rows[i].IgnoreInEval {
			t.Rows[i].Label = neutral
		}
	}
}

// AggregateByID groups rows by ID, unioning the labels observed for each
// ID. Group order follows first occurrence in the table.
func (t *Table) AggregateByID() *Grouped {
	g := &Grouped{}
	byID := map[string]int{}
	for _, row := range t.Rows {
		i, ok := byID[row.ID]
		if !ok {
			i = len(g.Rows)
			byID[row.ID] = i
			g.Rows = append(g.Rows, GroupedRow{ID: row.ID, Labels: LabelSet{}})
		}
		g.Rows[i].Labels.Add(row.Label)
	}
	return g
}
