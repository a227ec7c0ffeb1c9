package database

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"tpsrun/internal/logging"
)

// DB wraps the bolt handle shared by the file-backed stores.
type DB struct {
	DB *bolt.DB
}

func Open(ctx context.Context, path string) (*DB, error) {
	logger := logging.FromContext(ctx)
	logger.Infof("opening db %s", path)

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", path, err)
	}
	return &DB{DB: db}, nil
}

func (db *DB) Close(ctx context.Context) error {
	logging.FromContext(ctx).Infof("closing db connection")

	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing db connection: %w", err)
	}
	return nil
}
