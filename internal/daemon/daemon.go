// Package daemon configures and starts the lastqueryd daemon.
package daemon

import (
	"context"
	"fmt"
	"net"

	"github.com/leg100/lastquery/internal"
	"github.com/leg100/lastquery/internal/http"
	"github.com/leg100/lastquery/internal/inmem"
	"github.com/leg100/lastquery/internal/logr"
	"github.com/leg100/lastquery/internal/query"
	"github.com/leg100/lastquery/internal/sql"
	"golang.org/x/sync/errgroup"
)

type Daemon struct {
	Config
	logr.Logger

	Queries *query.Service

	// ListenAddress is the listening address of the daemon's http server,
	// e.g. localhost:8080
	ListenAddress *net.TCPAddr

	handlers []internal.Handlers
	db       *sql.DB
	cache    *inmem.Cache
}

// New builds a new daemon. If the postgres backend is configured then a
// connection to the database is established and it is migrated to the
// latest schema.
func New(ctx context.Context, logger logr.Logger, cfg Config) (*Daemon, error) {
	if err := cfg.Valid(); err != nil {
		return nil, err
	}

	var (
		store query.Store
		db    *sql.DB
		cache *inmem.Cache
	)
	switch cfg.Backend {
	case MemoryBackend:
		store = inmem.NewMemStore()
	case CacheBackend:
		var err error
		cache, err = inmem.NewCache(cfg.CacheConfig)
		if err != nil {
			return nil, fmt.Errorf("creating cache: %w", err)
		}
		logger.Info("started cache", "max_size", cfg.CacheConfig.Size, "ttl", cfg.CacheConfig.TTL)
		store = cache
	case PostgresBackend:
		var err error
		db, err = sql.New(ctx, logger, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("creating database pool: %w", err)
		}
		store = sql.NewKVStore(db)
	}
	if !cfg.Backend.Durable() {
		logger.Info("query is kept in memory and will be lost upon restart", "backend", cfg.Backend)
	}

	queries := query.NewService(query.Options{
		Logger: logger.WithValues("component", "query"),
		Store:  store,
		Key:    cfg.Key,
	})

	return &Daemon{
		Config:  cfg,
		Logger:  logger,
		Queries: queries,
		db:      db,
		cache:   cache,
		handlers: []internal.Handlers{
			query.NewHandler(logger, queries, cfg.Backend.Durable()),
		},
	}, nil
}

// Start the daemon's http server, blocking until the context is cancelled or
// the server fails. The started channel is closed once the server is
// listening.
func (d *Daemon) Start(ctx context.Context, started chan struct{}) error {
	// Cancel context the first time a func started with g.Go() fails
	g, ctx := errgroup.WithContext(ctx)

	// close all db connections upon exit
	if d.db != nil {
		defer d.db.Close()
	}

	// stop cache cleanup upon exit
	if d.cache != nil {
		defer func() {
			if err := d.cache.Close(); err != nil {
				d.Error(err, "closing cache")
			}
		}()
	}

	// Construct web server and start listening on port
	server, err := http.NewServer(d.Logger, http.ServerConfig{
		SSL:                  d.SSL,
		CertFile:             d.CertFile,
		KeyFile:              d.KeyFile,
		EnableRequestLogging: d.EnableRequestLogging,
		Handlers:             d.handlers,
	})
	if err != nil {
		return fmt.Errorf("setting up http server: %w", err)
	}
	ln, err := net.Listen("tcp", d.Address)
	if err != nil {
		return err
	}
	d.ListenAddress = ln.Addr().(*net.TCPAddr)

	defer ln.Close()

	g.Go(func() error {
		if err := server.Start(ctx, ln); err != nil {
			return fmt.Errorf("http server terminated: %w", err)
		}
		return nil
	})

	// Inform the caller the daemon has started
	close(started)

	// Block until error or Ctrl-C received.
	return g.Wait()
}
