package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/leg100/lastquery/internal"
	"github.com/leg100/lastquery/internal/logr"
)

type (
	// Service saves, retrieves and clears the latest query.
	Service struct {
		logr.Logger

		store Store
		key   string
		now   func() time.Time
	}

	Options struct {
		logr.Logger

		Store Store
		// Key is the slot in the store holding the record. Defaults to
		// DefaultKey.
		Key string
	}
)

func NewService(opts Options) *Service {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	return &Service{
		Logger: opts.Logger,
		store:  opts.Store,
		key:    key,
		now:    internal.CurrentTimestamp,
	}
}

// Save decodes fields from the body and replaces the stored record with
// them.
func (s *Service) Save(ctx context.Context, body io.Reader) (Record, error) {
	fields, err := decodeFields(body)
	if err != nil {
		return nil, err
	}
	rec, err := newRecord(fields, s.now())
	if err != nil {
		return nil, err
	}
	marshaled, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	if err := s.store.Set(ctx, s.key, marshaled); err != nil {
		s.Error(err, "saving query", "key", s.key)
		return nil, &StoreError{Op: "set", Err: err}
	}
	s.V(1).Info("saved query", "key", s.key, "email", rec.Email())
	return rec, nil
}

// Latest retrieves the stored record, returning internal.ErrResourceNotFound
// if there is none.
func (s *Service) Latest(ctx context.Context) (Record, error) {
	b, err := s.store.Get(ctx, s.key)
	if errors.Is(err, internal.ErrResourceNotFound) {
		return nil, internal.ErrResourceNotFound
	} else if err != nil {
		s.Error(err, "retrieving query", "key", s.key)
		return nil, &StoreError{Op: "get", Err: err}
	}
	rec, err := unmarshalRecord(b)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, internal.ErrResourceNotFound
	}
	return rec, nil
}

// Clear removes the stored record. Clearing an empty store succeeds.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.key); err != nil {
		s.Error(err, "clearing query", "key", s.key)
		return &StoreError{Op: "delete", Err: err}
	}
	s.V(1).Info("cleared query", "key", s.key)
	return nil
}
