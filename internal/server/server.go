package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sngm3741/restaurant-graph/api/internal/common/logger"
	"github.com/sngm3741/restaurant-graph/api/internal/config"
	mongodoc "github.com/sngm3741/restaurant-graph/api/internal/infrastructure/mongo"
	"github.com/sngm3741/restaurant-graph/api/internal/infrastructure/ninjas"
	gqlapi "github.com/sngm3741/restaurant-graph/api/internal/interfaces/graphql"
	commonhttp "github.com/sngm3741/restaurant-graph/api/internal/interfaces/http/common"
	"github.com/sngm3741/restaurant-graph/api/internal/observability/metrics"
	"github.com/sngm3741/restaurant-graph/api/internal/restaurant/application"
)

// maxGraphQLRequestBody limits POST /graphql request bodies.
const maxGraphQLRequestBody = 1 << 20

// store is the part of the restaurant repository the server itself needs.
type store interface {
	Ping(ctx context.Context) error
	EnsureIndexes(ctx context.Context) error
}

// Server owns the HTTP listener and the Mongo client lifecycle. It is the
// composition root: New builds every collaborator from Config.
type Server struct {
	logger         logger.Logger
	client         *mongo.Client
	store          store
	graphql        http.Handler
	metricsHandler http.Handler
	metrics        *metrics.Metrics
	addr           string
	allowedOrigins []string
}

// New assembles the repository, enrichment client, resolution engine and
// GraphQL schema around an already connected Mongo client.
func New(cfg *config.Config, client *mongo.Client, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	repo := mongodoc.NewRestaurantRepository(client.Database(cfg.MongoDatabase), cfg.RestaurantCollection)
	enricher := ninjas.NewClient(ninjas.Config{
		BaseURL:    cfg.NinjasBaseURL,
		APIKey:     cfg.APIKey,
		HTTPClient: &http.Client{Timeout: cfg.UpstreamTimeout},
		Logger:     log,
		Metrics:    m,
	})
	service := application.NewRestaurantService(repo, enricher, log, m)

	schema, err := gqlapi.NewSchema(service, log)
	if err != nil {
		return nil, fmt.Errorf("parse graphql schema: %w", err)
	}

	return &Server{
		logger:         log.With(map[string]interface{}{"component": "server"}),
		client:         client,
		store:          repo,
		graphql:        gqlapi.NewHandler(schema),
		metricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		metrics:        m,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
	}, nil
}

// Run ensures the collection indexes, then serves until SIGINT/SIGTERM or a
// listener failure.
func (s *Server) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err := s.store.EnsureIndexes(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("ensure restaurant indexes: %w", err)
	}

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", map[string]interface{}{"addr": s.addr})
		errChan <- httpServer.ListenAndServe()
	}()

	return s.waitForShutdown(httpServer, errChan)
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(s.requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())
	router.Method(http.MethodGet, "/metrics", s.metricsHandler)
	router.With(middleware.RequestSize(maxGraphQLRequestBody)).Method(http.MethodPost, "/graphql", s.graphql)
	return router
}

// withCORS answers preflight requests and sets CORS headers for allowed origins.
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed treats an empty allow list as allow-all.
func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// requestLogger logs one line per request and records the HTTP metrics under
// the matched route pattern.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		s.metrics.ObserveHTTP(route, r.Method, status, started)
		s.logger.Info("http request", map[string]interface{}{
			"request_id":  middleware.GetReqID(r.Context()),
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      status,
			"bytes":       ww.BytesWritten(),
			"remote_addr": r.RemoteAddr,
			"duration_ms": time.Since(started).Milliseconds(),
		})
	})
}

// healthHandler reports store connectivity only.
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.store.Ping(ctx); err != nil {
			s.logger.WithError(err).Warn("health check failed", nil)
			commonhttp.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		commonhttp.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func (s *Server) shutdown(ctx context.Context) {
	if s.client == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.WithError(err).Error("mongo disconnect failed", nil)
	}
}

// waitForShutdown blocks until the listener fails or a signal arrives, then
// drains in-flight requests and disconnects Mongo.
func (s *Server) waitForShutdown(httpServer *http.Server, errChan <-chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", map[string]interface{}{"signal": sig.String()})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			s.logger.WithError(err).Error("http server shutdown failed", nil)
		}
	}

	s.shutdown(context.Background())
	return runErr
}
