package daemon

import (
	"fmt"
	"strings"

	"github.com/leg100/lastquery/internal"
	"github.com/leg100/lastquery/internal/inmem"
	"github.com/leg100/lastquery/internal/logr"
	"github.com/leg100/lastquery/internal/query"
)

const (
	// MemoryBackend keeps the query in a map in process memory.
	MemoryBackend Backend = "memory"
	// CacheBackend keeps the query in an in-process bigcache, expiring it
	// after a TTL.
	CacheBackend Backend = "cache"
	// PostgresBackend persists the query to a postgres database.
	PostgresBackend Backend = "postgres"
)

// Backend is the store in which the latest query is kept.
type Backend string

var backends = []Backend{MemoryBackend, CacheBackend, PostgresBackend}

// Durable reports whether the backend survives a restart of the daemon. Only
// queries in a durable backend may be cleared via the API.
func (b Backend) Durable() bool { return b == PostgresBackend }

func (b *Backend) String() string { return string(*b) }

func (b *Backend) Type() string { return "backend" }

func (b *Backend) Set(v string) error {
	for _, backend := range backends {
		if Backend(v) == backend {
			*b = backend
			return nil
		}
	}
	return fmt.Errorf("%w: %s: must be one of: %s", internal.ErrUnsupportedBackend, v, strings.Join(backendNames(), ", "))
}

func backendNames() []string {
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = string(b)
	}
	return names
}

// Config configures the lastqueryd daemon. Descriptions of each field can be
// found in the flag definitions in ./cmd/lastqueryd
type Config struct {
	Address              string
	Backend              Backend
	Database             string
	Key                  string
	CacheConfig          inmem.CacheConfig
	SSL                  bool
	CertFile, KeyFile    string
	EnableRequestLogging bool
	LogConfig            logr.Config
}

// NewConfig constructs a lastqueryd configuration with defaults.
func NewConfig() Config {
	return Config{
		Address: ":8080",
		Backend: MemoryBackend,
		Key:     query.DefaultKey,
		CacheConfig: inmem.CacheConfig{
			TTL: inmem.DefaultCacheTTL,
		},
	}
}

func (cfg *Config) Valid() error {
	if err := new(Backend).Set(string(cfg.Backend)); err != nil {
		return err
	}
	if cfg.Backend == PostgresBackend && cfg.Database == "" {
		return &internal.ErrMissingParameter{Parameter: "database"}
	}
	return nil
}
