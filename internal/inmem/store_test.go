package inmem

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leg100/lastquery/internal"
	"github.com/leg100/lastquery/internal/logr"
	"github.com/leg100/lastquery/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStores(t *testing.T) map[string]query.Store {
	t.Helper()

	cache, err := NewCache(CacheConfig{})
	require.NoError(t, err)

	return map[string]query.Store{
		"memstore": NewMemStore(),
		"cache":    cache,
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()

	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, query.DefaultKey)
			assert.ErrorIs(t, err, internal.ErrResourceNotFound)

			require.NoError(t, store.Set(ctx, query.DefaultKey, []byte(`{"email":"a@b.com"}`)))
			got, err := store.Get(ctx, query.DefaultKey)
			require.NoError(t, err)
			assert.Equal(t, `{"email":"a@b.com"}`, string(got))

			require.NoError(t, store.Set(ctx, query.DefaultKey, []byte(`{"email":"x@y.com"}`)))
			got, err = store.Get(ctx, query.DefaultKey)
			require.NoError(t, err)
			assert.Equal(t, `{"email":"x@y.com"}`, string(got))

			require.NoError(t, store.Delete(ctx, query.DefaultKey))
			_, err = store.Get(ctx, query.DefaultKey)
			assert.ErrorIs(t, err, internal.ErrResourceNotFound)

			// deleting a missing key is not an error
			assert.NoError(t, store.Delete(ctx, query.DefaultKey))
		})
	}
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()

	cache, err := NewCache(CacheConfig{TTL: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	require.NoError(t, cache.Set(ctx, query.DefaultKey, []byte(`{"email":"a@b.com"}`)))

	assert.Eventually(t, func() bool {
		_, err := cache.Get(ctx, query.DefaultKey)
		return errors.Is(err, internal.ErrResourceNotFound)
	}, 5*time.Second, 100*time.Millisecond)
}

func TestCleanWindow(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, cleanWindow(time.Second))
	assert.Equal(t, time.Minute, cleanWindow(DefaultCacheTTL))
}

// TestVolatileHandler exercises the query handler against each in-memory
// store, as deployed without a database.
func TestVolatileHandler(t *testing.T) {
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			svc := query.NewService(query.Options{Logger: logr.Discard(), Store: store})
			h := query.NewHandler(logr.Discard(), svc, false)

			do := func(method, body string) *httptest.ResponseRecorder {
				w := httptest.NewRecorder()
				r := httptest.NewRequest(method, query.Path, strings.NewReader(body))
				h.ServeHTTP(w, r)
				return w
			}

			w := do("GET", "")
			assert.Equal(t, http.StatusNotFound, w.Code)

			w = do("POST", `{"email":"x@y.com","q":"hello"}`)
			require.Equal(t, http.StatusOK, w.Code)

			w = do("GET", "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"q":"hello"`)

			w = do("DELETE", "")
			assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

			// record survives the rejected delete
			w = do("GET", "")
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}
