package query

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leg100/lastquery/internal"
	"github.com/leg100/lastquery/internal/logr"
)

type fakeStore struct {
	data map[string][]byte
	// err, if non-nil, is returned from every call.
	err error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.data[key]
	if !ok {
		return nil, internal.ErrResourceNotFound
	}
	return v, nil
}

func (f *fakeStore) Set(ctx context.Context, key string, value []byte) error {
	if f.err != nil {
		return f.err
	}
	f.data[key] = value
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.data, key)
	return nil
}

func newTestHandler(t *testing.T, store Store, clearable bool) *Handler {
	t.Helper()

	svc := NewService(Options{Logger: logr.Discard(), Store: store})
	return NewHandler(logr.Discard(), svc, clearable)
}

func do(t *testing.T, h http.Handler, method, body string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(method, Path, strings.NewReader(body))
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	h.ServeHTTP(w, r)
	return w
}
