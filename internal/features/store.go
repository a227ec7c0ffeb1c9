package features

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/davecgh/go-xdr/xdr2"
	bolt "go.etcd.io/bbolt"
	"gonum.org/v1/gonum/mat"

	"tpsrun/internal/database"
	"tpsrun/internal/logging"
	"tpsrun/pkg/math/vector"
)

// ErrNotFound is returned when no embedding is stored for an id.
var ErrNotFound = errors.New("no embedding stored for id")

// ErrEmptyStore is returned when an operation needs at least one embedding.
var ErrEmptyStore = errors.New("embedding store is empty")

var bucketName = []byte("embeddings")

// Store maps protein ids to their precomputed embedding vectors, persisted
// in bolt with xdr-encoded values.
type Store struct {
	db *database.DB

	mu   sync.Mutex
	mean vector.V
}

func New(db *database.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Put(id string, vec vector.V) error {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, vec.Points()); err != nil {
		return fmt.Errorf("encoding embedding for %s: %w", id, err)
	}
	err := s.db.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("storing embedding for %s: %w", id, err)
	}
	s.mu.Lock()
	s.mean = nil // mean is stale once the contents change
	s.mu.Unlock()
	return nil
}

func (s *Store) Get(id string) (vector.V, error) {
	var raw []byte
	err := s.db.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(id)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading embedding for %s: %w", id, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return decode(raw)
}

func (s *Store) Len() (int, error) {
	var n int
	err := s.db.DB.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketName); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, err
}

// Mean returns the element-wise mean embedding over all stored ids,
// cached until the store contents change.
func (s *Store) Mean() (vector.V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mean != nil {
		return s.mean, nil
	}

	var vecs []vector.V
	err := s.db.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			vec, err := decode(v)
			if err != nil {
				return err
			}
			vecs = append(vecs, vec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("computing mean embedding: %w", err)
	}
	if len(vecs) == 0 {
		return nil, ErrEmptyStore
	}
	s.mean = vector.MeanOf(vecs...)
	return s.mean, nil
}

// Embed builds the design matrix for the given ids, one row per id in
// order. An id with no stored embedding gets the mean embedding.
func (s *Store) Embed(ctx context.Context, ids []string) (*mat.Dense, error) {
	if len(ids) == 0 {
		return nil, errors.New("no ids to embed")
	}
	mean, err := s.Mean()
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	X := mat.NewDense(len(ids), mean.Dimensions(), nil)
	var missed int
	for i, id := range ids {
		vec, err := s.Get(id)
		if errors.Is(err, ErrNotFound) {
			vec = mean
			missed++
		} else if err != nil {
			return nil, err
		}
		if vec.Dimensions() != mean.Dimensions() {
			return nil, fmt.Errorf("embedding for %s has %d dimensions, want %d", id, vec.Dimensions(), mean.Dimensions())
		}
		X.SetRow(i, vec.Points())
	}
	if missed > 0 {
		logger.Infow("substituted mean embedding", "ids", missed)
	}
	return X, nil
}

// ImportCSV loads embeddings from a headerless CSV of id,v1,...,vn rows.
func (s *Store) ImportCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening embeddings csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var count int
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("reading embeddings csv %s: %w", path, err)
		}
		if len(record) < 2 {
			return count, fmt.Errorf("embeddings csv %s: row %d has no values", path, count+1)
		}
		vec := make(vector.V, len(record)-1)
		for i, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return count, fmt.Errorf("embeddings csv %s: row %d: %w", path, count+1, err)
			}
			vec[i] = v
		}
		if err := s.Put(record[0], vec); err != nil {
			return count, err
		}
		count++
	}
	logging.FromContext(ctx).Infow("imported embeddings", "count", count, "path", path)
	return count, nil
}

func decode(raw []byte) (vector.V, error) {
	var points []float64
	if _, err := xdr.Unmarshal(bytes.NewReader(raw), &points); err != nil {
		return nil, fmt.Errorf("decoding embedding: %w", err)
	}
	return vector.New(points), nil
}
