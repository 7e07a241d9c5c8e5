package sql

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leg100/lastquery/internal/logr"
)

const (
	// max conns avail in a pgx pool
	defaultMaxConnections = 10
	// maxConnectWait is how long to wait for the database to accept
	// connections on startup.
	maxConnectWait = 30 * time.Second
)

// DB provides access to the postgres db
type DB struct {
	*pgxpool.Pool // db connection pool
	logr.Logger
}

// New migrates the database to the latest migration version, and then
// constructs and returns a connection pool.
func New(ctx context.Context, logger logr.Logger, connString string) (*DB, error) {
	if err := migrate(ctx, logger, connString); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	connString, err := setDefaultMaxConnections(connString, defaultMaxConnections)
	if err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("connected to database", "connstr", redact(connString))

	return &DB{Pool: pool, Logger: logger}, nil
}

// QueryRow wraps the error returned by pgx.Row.Scan()
type queryRowResult struct {
	pgx.Row
}

func (r *queryRowResult) Scan(dest ...any) error {
	if err := r.Row.Scan(dest...); err != nil {
		return toError(err)
	}
	return nil
}

func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) *queryRowResult {
	row := db.Pool.QueryRow(ctx, sql, args...)
	return &queryRowResult{Row: row}
}

// Exec executes the sql with the given args. Unlike pgxpool's Exec, it
// does not treat a command affecting zero rows as an error; callers check the
// command tag if they care.
func (db *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	cmdTag, err := db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return pgconn.CommandTag{}, toError(err)
	}
	return cmdTag, nil
}

// connect opens a single connection, retrying with exponential backoff until
// the database accepts connections or maxConnectWait elapses. An unparseable
// connection string is not retried.
func connect(ctx context.Context, logger logr.Logger, connString string) (*pgx.Conn, error) {
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	policy := backoff.WithContext(
		backoff.NewExponentialBackOff(backoff.WithMaxElapsedTime(maxConnectWait)),
		ctx,
	)
	return backoff.RetryNotifyWithData(func() (*pgx.Conn, error) {
		return pgx.ConnectConfig(ctx, cfg)
	}, policy, func(err error, next time.Duration) {
		logger.Error(err, "connecting to database", "backoff", next)
	})
}

func setDefaultMaxConnections(connString string, max int) (string, error) {
	// pg connection string can be either a URL or a DSN
	if strings.HasPrefix(connString, "postgres://") || strings.HasPrefix(connString, "postgresql://") {
		u, err := url.Parse(connString)
		if err != nil {
			return "", fmt.Errorf("parsing connection string url: %w", err)
		}
		q := u.Query()
		q.Add("pool_max_conns", strconv.Itoa(max))
		u.RawQuery = q.Encode()
		return url.PathUnescape(u.String())
	} else if connString == "" {
		// presume empty DSN
		return fmt.Sprintf("pool_max_conns=%d", max), nil
	} else {
		// presume non-empty DSN
		return fmt.Sprintf("%s pool_max_conns=%d", connString, max), nil
	}
}

// redact removes any password from a URL connection string so that it can
// be logged.
func redact(connString string) string {
	u, err := url.Parse(connString)
	if err != nil || u.User == nil {
		return connString
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	s, err := url.PathUnescape(u.String())
	if err != nil {
		return connString
	}
	return s
}
