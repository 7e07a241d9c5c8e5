package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/leg100/lastquery/internal"
	"github.com/leg100/lastquery/internal/logr"
	"github.com/leg100/lastquery/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaemon_MissingDatabaseError(t *testing.T) {
	cfg := NewConfig()
	cfg.Backend = PostgresBackend

	var missing *internal.ErrMissingParameter
	_, err := New(context.Background(), logr.Discard(), cfg)
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "database", missing.Parameter)
}

func TestDaemon_UnsupportedBackend(t *testing.T) {
	cfg := NewConfig()
	cfg.Backend = "redis"

	_, err := New(context.Background(), logr.Discard(), cfg)
	assert.ErrorIs(t, err, internal.ErrUnsupportedBackend)
}

func TestBackend_Set(t *testing.T) {
	var b Backend
	require.NoError(t, b.Set("cache"))
	assert.Equal(t, CacheBackend, b)

	assert.ErrorIs(t, b.Set("redis"), internal.ErrUnsupportedBackend)
	assert.Equal(t, CacheBackend, b, "failed set leaves value untouched")
}

func TestBackend_Durable(t *testing.T) {
	assert.False(t, MemoryBackend.Durable())
	assert.False(t, CacheBackend.Durable())
	assert.True(t, PostgresBackend.Durable())
}

func TestDaemon_Start(t *testing.T) {
	for _, backend := range []Backend{MemoryBackend, CacheBackend} {
		t.Run(string(backend), func(t *testing.T) {
			cfg := NewConfig()
			cfg.Address = "localhost:0"
			cfg.Backend = backend

			d, err := New(context.Background(), logr.Discard(), cfg)
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			started := make(chan struct{})
			done := make(chan error)
			go func() { done <- d.Start(ctx, started) }()

			select {
			case <-started:
			case err := <-done:
				t.Fatalf("daemon exited: %v", err)
			case <-time.After(5 * time.Second):
				t.Fatal("daemon did not start")
			}

			url := fmt.Sprintf("http://%s%s", d.ListenAddress, query.Path)

			resp, err := http.Post(url, "application/json", strings.NewReader(`{"email":"x@y.com"}`))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			rec, err := d.Queries.Latest(ctx)
			require.NoError(t, err)
			assert.Equal(t, "x@y.com", rec.Email())

			// volatile deployments do not permit clearing
			req, err := http.NewRequest("DELETE", url, nil)
			require.NoError(t, err)
			resp, err = http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

			cancel()
			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("daemon did not shut down")
			}
		})
	}
}
