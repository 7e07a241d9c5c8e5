package sql

import (
	"context"

	"github.com/leg100/lastquery/internal"
	"github.com/leg100/lastquery/internal/query"
)

var _ query.Store = (*KVStore)(nil)

// KVStore is a durable key-value store kept in the kv table. Values are
// stored byte for byte.
type KVStore struct {
	*DB
}

func NewKVStore(db *DB) *KVStore {
	return &KVStore{DB: db}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.QueryRow(ctx, `SELECT value FROM kv WHERE key = $1`, key).Scan(&value)
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.Exec(ctx, `
INSERT INTO kv (key, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`, key, string(value), internal.CurrentTimestamp())
	return err
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	_, err := s.Exec(ctx, `DELETE FROM kv WHERE key = $1`, key)
	return err
}
