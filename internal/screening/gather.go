// Package screening aggregates asynchronous batch-screening output: a
// directory of per-protein JSON files mapping class name to probability,
// collapsed into one CSV for downstream analysis.
package screening

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"tpsrun/internal/logging"
)

// DefaultOutputPath names the gathered CSV inside the results root.
func DefaultOutputPath(root string, now time.Time) string {
	return filepath.Join(root, fmt.Sprintf("detections_%s.csv", now.Format("20060102-150405")))
}

// Result reports what one Gather call did.
type Result struct {
	Rows    int
	Deleted int
}

type detection struct {
	id    string
	probs map[string]float64
}

// Gather reads every non-CSV file under root as a JSON class→probability
// map and writes one CSV with an ID column plus one column per class
// (sorted union across files; a file missing a class scores 0). With
// deleteAfter set, consumed input files are removed after the CSV is
// written.
func Gather(ctx context.Context, root, outPath string, deleteAfter bool) (*Result, error) {
	logger := logging.FromContext(ctx)

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading screening results root: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.Contains(entry.Name(), ".csv") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	// each goroutine owns one slot, no shared writes
	detections := make([]detection, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			raw, err := os.ReadFile(filepath.Join(root, name))
			if err != nil {
				return fmt.Errorf("reading detection file %s: %w", name, err)
			}
			probs := map[string]float64{}
			if err := json.Unmarshal(raw, &probs); err != nil {
				return fmt.Errorf("decoding detection file %s: %w", name, err)
			}
			detections[i] = detection{id: name, probs: probs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	classSet := map[string]struct{}{}
	for _, d := range detections {
		for class := range d.probs {
			classSet[class] = struct{}{}
		}
	}
	classes := make([]string, 0, len(classSet))
	for class := range classSet {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	if err := writeCSV(outPath, classes, detections); err != nil {
		return nil, err
	}
	result := &Result{Rows: len(detections)}
	logger.Infow("screening results gathered", "path", outPath, "rows", result.Rows)

	if deleteAfter {
		for _, name := range names {
			if err := os.Remove(filepath.Join(root, name)); err != nil {
				return result, fmt.Errorf("deleting consumed file %s: %w", name, err)
			}
			result.Deleted++
		}
		logger.Infow("deleted individual detection files", "count", result.Deleted)
	}
	return result, nil
}

func writeCSV(path string, classes []string, detections []detection) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"ID"}, classes...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, d := range detections {
		record := make([]string, 0, len(header))
		record = append(record, d.id)
		for _, class := range classes {
			record = append(record, strconv.FormatFloat(d.probs[class], 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", d.id, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
