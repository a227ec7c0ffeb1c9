package features

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tpsrun/internal/database"
	"tpsrun/pkg/math/vector"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "embs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(context.Background()) })
	return New(db)
}

func TestStore_PutGet(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put("P1", vector.New([]float64{1, 2, 3})))

	got, err := s.Get("P1")
	require.NoError(t, err)
	assert.True(t, got.Equal(vector.New([]float64{1, 2, 3})))

	_, err = s.Get("P2")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_Mean(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put("P1", vector.New([]float64{0, 2})))
	require.NoError(t, s.Put("P2", vector.New([]float64{2, 4})))

	mean, err := s.Mean()
	require.NoError(t, err)
	assert.True(t, mean.Equal(vector.New([]float64{1, 3})))

	// cache is invalidated by writes
	require.NoError(t, s.Put("P3", vector.New([]float64{4, 0})))
	mean, err = s.Mean()
	require.NoError(t, err)
	assert.True(t, mean.Equal(vector.New([]float64{2, 2})))
}

func TestStore_MeanEmpty(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Mean()
	assert.True(t, errors.Is(err, ErrEmptyStore))
}

func TestStore_Embed(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put("P1", vector.New([]float64{0, 2})))
	require.NoError(t, s.Put("P2", vector.New([]float64{2, 4})))

	X, err := s.Embed(context.Background(), []string{"P2", "unknown", "P1"})
	require.NoError(t, err)
	rows, cols := X.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []float64{2, 4}, X.RawRowView(0))
	// unknown id falls back to the mean embedding
	assert.Equal(t, []float64{1, 3}, X.RawRowView(1))
	assert.Equal(t, []float64{0, 2}, X.RawRowView(2))
}

func TestStore_ImportCSV(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(t.TempDir(), "embs.csv")
	require.NoError(t, os.WriteFile(path, []byte("P1,0.5,1.5\nP2,2.5,3.5\n"), 0o600))

	n, err := s.ImportCSV(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stored, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	vec, err := s.Get("P2")
	require.NoError(t, err)
	assert.True(t, vec.Equal(vector.New([]float64{2.5, 3.5})))
}
