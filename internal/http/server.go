// Package http provides the HTTP server for lastquery.
package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leg100/lastquery/internal"
	"github.com/leg100/lastquery/internal/json"
	"github.com/leg100/lastquery/internal/logr"
)

const (
	// RequestIDHeader carries a unique ID for each request, either supplied
	// by the client or generated by the server.
	RequestIDHeader = "X-Request-ID"

	// shutdownTimeout is the time given for outstanding requests to finish
	// before shutdown.
	shutdownTimeout = 1 * time.Second
)

var healthzPayload = json.MustMarshal(struct {
	Version string
	Commit  string
	Built   string
}{
	Version: internal.Version,
	Commit:  internal.Commit,
	Built:   internal.Built,
})

type (
	// ServerConfig is the http server config
	ServerConfig struct {
		SSL                  bool
		CertFile, KeyFile    string
		EnableRequestLogging bool

		Handlers []internal.Handlers
	}

	// Server is the http server for lastquery
	Server struct {
		logr.Logger
		ServerConfig

		server *http.Server
	}
)

// NewServer constructs the http server for lastquery
func NewServer(logger logr.Logger, cfg ServerConfig) (*Server, error) {
	if cfg.SSL {
		if cfg.CertFile == "" || cfg.KeyFile == "" {
			return nil, fmt.Errorf("must provide both --cert-file and --key-file")
		}
	}

	return &Server{
		Logger:       logger,
		ServerConfig: cfg,
		server:       &http.Server{Handler: NewRouter(logger, cfg)},
	}, nil
}

// NewRouter constructs the router serving all of lastquery's routes.
func NewRouter(logger logr.Logger, cfg ServerConfig) *mux.Router {
	r := mux.NewRouter()

	// Catch panics and return 500s
	r.Use(gorillaHandlers.RecoveryHandler(
		gorillaHandlers.PrintRecoveryStack(true),
		gorillaHandlers.RecoveryLogger(recoveryLogger{logger}),
	))

	// Redirect paths with a trailing slash to path without, e.g. /api/query/
	// -> /api/query. Uses an HTTP301.
	r.StrictSlash(true)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-type", "application/json")
		w.Write(healthzPayload)
	})

	for _, h := range cfg.Handlers {
		h.AddHandlers(r)
	}

	r.Use(requestID)

	// Optionally log every request
	if cfg.EnableRequestLogging {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				m := httpsnoop.CaptureMetrics(next, w, r)
				logger.Info("request",
					"duration", fmt.Sprintf("%dms", m.Duration.Milliseconds()),
					"status", m.Code,
					"method", r.Method,
					"path", fmt.Sprintf("%s?%s", r.URL.Path, r.URL.RawQuery),
					"request_id", w.Header().Get(RequestIDHeader))
			})
		})
	}
	return r
}

// Start starts serving http traffic on the given listener and waits until the server exits due to
// error or the context is cancelled.
func (s *Server) Start(ctx context.Context, ln net.Listener) (err error) {
	// buffered so the serving goroutine can exit once Start has returned
	errch := make(chan error, 1)

	go func() {
		if s.SSL {
			errch <- s.server.ServeTLS(ln, s.CertFile, s.KeyFile)
		} else {
			errch <- s.server.Serve(ln)
		}
	}()

	s.Info("started server", "address", ln.Addr().String(), "ssl", s.SSL)

	// Block until server stops listening or context is cancelled.
	select {
	case err := <-errch:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.Info("gracefully shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			return s.server.Close()
		}

		return nil
	}
}

// requestID ensures every request carries an ID, echoing it in the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// recoveryLogger logs panics caught by the recovery handler.
type recoveryLogger struct {
	logr.Logger
}

func (l recoveryLogger) Println(args ...any) {
	l.Error(fmt.Errorf("%s", fmt.Sprint(args...)), "recovered from panic")
}
