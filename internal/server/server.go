// Package server wires configuration, services, and HTTP routes together.
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/loresearch/lore-search/internal/bus"
	"github.com/loresearch/lore-search/internal/cache"
	"github.com/loresearch/lore-search/internal/catalog"
	"github.com/loresearch/lore-search/internal/config"
	"github.com/loresearch/lore-search/internal/eval"
	"github.com/loresearch/lore-search/internal/index"
	"github.com/loresearch/lore-search/internal/notes"
	"github.com/loresearch/lore-search/internal/pkg/logger"
	"github.com/loresearch/lore-search/internal/pkg/middleware"
	"github.com/loresearch/lore-search/internal/provider"
)

// Server is the main HTTP server that wires all services together.
type Server struct {
	cfg     *config.Config
	version string
	log     *logger.Logger

	httpServer *http.Server

	// Services
	events   bus.Bus
	cache    cache.Cache
	store    index.VectorStore
	notes    *notes.Store
	provider *provider.AzureClient
	catalog  *catalog.Service
	eval     *eval.Service
	index    *index.Service

	// Handlers
	catalogHandler *catalog.Handler
	evalHandler    *eval.Handler
	indexHandler   *index.Handler
	notesHandler   *notes.Handler

	mu      sync.RWMutex
	started bool
}

// New creates a server with all dependencies built from the configuration.
func New(ctx context.Context, cfg *config.Config, version string, log *logger.Logger) (*Server, error) {
	if !cfg.ProviderConfigured() {
		return nil, fmt.Errorf("provider endpoint and api key must be configured")
	}

	s := &Server{
		cfg:     cfg,
		version: version,
		log:     log,
	}

	providerClient, err := provider.NewAzureClient(provider.Options{
		Endpoint:            cfg.Provider.Endpoint,
		APIKey:              cfg.Provider.APIKey,
		APIVersion:          cfg.Provider.APIVersion,
		CompletionDeploy:    cfg.Provider.CompletionDeploy,
		EmbeddingDeploy:     cfg.Provider.EmbeddingDeploy,
		EmbeddingDimensions: cfg.Provider.EmbeddingDimensions,
		Timeout:             time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("creating provider client: %w", err)
	}
	s.provider = providerClient

	s.events, err = buildBus(cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("creating event bus: %w", err)
	}

	s.cache, err = buildCache(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	s.store, err = buildVectorStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	s.notes, err = notes.Open(cfg.Notes.Path)
	if err != nil {
		return nil, fmt.Errorf("opening notes store: %w", err)
	}

	catalogClient := catalog.NewClient(cfg.Catalog.GraphQLURL, time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second)
	s.catalog = catalog.NewService(catalogClient, s.cache, log)

	var judge *eval.Judge
	if cfg.Eval.JudgeEnabled {
		judge = eval.NewJudge(providerClient, cfg.Eval.JudgeTemp, cfg.Eval.MaxTokens)
	}
	s.eval = eval.NewService(providerClient, judge, s.events, log)

	s.index = index.NewService(s.store, providerClient, s.catalog, s.events, log, index.Options{
		DefaultLimit:      cfg.Index.DefaultLimit,
		MaxLimit:          cfg.Index.MaxLimit,
		EnrichConcurrency: cfg.Index.EnrichConcurrent,
	})

	s.catalogHandler = catalog.NewHandler(s.catalog)
	s.evalHandler = eval.NewHandler(s.eval, s.catalog)
	s.indexHandler = index.NewHandler(s.index)
	s.notesHandler = notes.NewHandler(s.notes)

	return s, nil
}

func buildBus(cfg config.BusConfig) (bus.Bus, error) {
	switch cfg.Type {
	case "kafka":
		return bus.NewKafkaBus(bus.KafkaConfig{
			Brokers:       bus.ParseKafkaBrokers(cfg.KafkaBrokers),
			ConsumerGroup: cfg.ConsumerGroup,
		})
	default:
		return bus.NewMemoryBus(), nil
	}
}

func buildCache(cfg config.CacheConfig) (cache.Cache, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second

	switch cfg.Type {
	case "redis":
		return cache.NewRedisCache(cfg.RedisURL, ttl)
	default:
		return cache.NewMemoryCache(cfg.Size, ttl), nil
	}
}

func buildVectorStore(ctx context.Context, cfg *config.Config) (index.VectorStore, error) {
	switch cfg.Index.Backend {
	case "qdrant":
		host, port, useTLS, err := parseQdrantURL(cfg.Index.QdrantURL)
		if err != nil {
			return nil, fmt.Errorf("invalid qdrant URL: %w", err)
		}
		return index.NewQdrantStore(ctx, index.QdrantConfig{
			Host:       host,
			Port:       port,
			APIKey:     cfg.Index.QdrantAPIKey,
			UseTLS:     useTLS,
			Collection: cfg.Index.Collection,
			VectorSize: uint64(cfg.Provider.EmbeddingDimensions),
		})
	default:
		return index.NewMemoryStore(), nil
	}
}

// parseQdrantURL extracts the gRPC endpoint from a Qdrant URL.
// The HTTP URL http://localhost:6333 maps to gRPC port 6334.
func parseQdrantURL(rawURL string) (host string, port int, useTLS bool, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", 0, false, err
	}

	host = u.Hostname()
	if host == "" {
		host = "localhost"
	}

	httpPort := 6333
	if raw := u.Port(); raw != "" {
		httpPort, err = strconv.Atoi(raw)
		if err != nil {
			return "", 0, false, fmt.Errorf("invalid port: %s", raw)
		}
	}

	return host, httpPort + 1, u.Scheme == "https", nil
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	s.started = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      s.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	s.log.Info("starting HTTP server", "addr", s.cfg.Address(), "version", s.version)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server and closes all services.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("HTTP shutdown error", "error", err)
	}

	if s.store != nil {
		s.store.Close()
	}
	if s.notes != nil {
		s.notes.Close()
	}
	if s.cache != nil {
		s.cache.Close()
	}
	if s.events != nil {
		s.events.Close()
	}

	s.started = false
	s.log.Info("server stopped")
	return nil
}

// Routes assembles all HTTP routes with the middleware chain applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	s.catalogHandler.RegisterRoutes(mux)
	s.evalHandler.RegisterRoutes(mux)
	s.indexHandler.RegisterRoutes(mux)
	s.notesHandler.RegisterRoutes(mux)

	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.HandleFunc("GET /v1/version", s.handleVersion)

	var handler http.Handler = mux
	if s.cfg.Security.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(s.cfg.Security.RateLimit),
			Burst:             s.cfg.Security.RateLimit * 2,
			CleanupInterval:   time.Minute,
		})
		handler = limiter.Middleware(handler)
	}
	handler = corsMiddleware(s.cfg.Security.CORSOrigins, handler)
	handler = loggingMiddleware(s.log, handler)

	return handler
}
