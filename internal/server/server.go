// Package server provides the HTTP server that wires the answer
// pipeline and its collaborators together.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/miappbora/bora-tutor/internal/bus"
	"github.com/miappbora/bora-tutor/internal/cache"
	"github.com/miappbora/bora-tutor/internal/config"
	"github.com/miappbora/bora-tutor/internal/embedding"
	"github.com/miappbora/bora-tutor/internal/llm"
	"github.com/miappbora/bora-tutor/internal/pkg/logger"
	"github.com/miappbora/bora-tutor/internal/pkg/middleware"
	"github.com/miappbora/bora-tutor/internal/qdrant"
	"github.com/miappbora/bora-tutor/internal/rag"
)

// Server wires the pipeline services behind an HTTP API.
type Server struct {
	cfg        *config.Config
	version    string
	log        *logger.Logger
	httpServer *http.Server

	// Services
	qdrant      *qdrant.Client
	resultCache cache.Cache
	events      bus.Bus
	pipeline    *rag.Pipeline

	// Handlers
	handler     *Handler
	rateLimiter *middleware.RateLimiter

	mu      sync.RWMutex
	started bool
}

// New creates a new server with all dependencies.
func New(cfg *config.Config, version string, log *logger.Logger) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		version: version,
		log:     log,
	}

	qc, err := qdrant.NewClient(qdrant.ClientConfig{
		Host:       cfg.Qdrant.Host,
		Port:       cfg.Qdrant.Port,
		APIKey:     cfg.Qdrant.APIKey,
		UseTLS:     cfg.Qdrant.UseTLS,
		Collection: cfg.Qdrant.Collection,
		Timeout:    time.Duration(cfg.Qdrant.TimeoutSec) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	s.qdrant = qc

	embedder := embedding.New(embedding.Config{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
		APIKey:    embeddingKey(cfg),
		BaseURL:   cfg.Embedding.BaseURL,
		Timeout:   time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
	})

	chain := llm.NewChain(llm.Config{
		Provider:       cfg.LLM.Provider,
		AllowFallback:  cfg.LLM.AllowFallback,
		TolerateOutage: cfg.LLM.TolerateOutage,
		OpenAIKey:      cfg.LLM.OpenAIKey,
		OpenAIModel:    cfg.LLM.OpenAIModel,
		HFKey:          cfg.LLM.HFKey,
		HFModel:        cfg.LLM.HFModel,
		HFBaseURL:      cfg.LLM.HFBaseURL,
		Timeout:        time.Duration(cfg.LLM.TimeoutSec) * time.Second,
	}, log)

	resultCache, err := cache.New(cache.Config{
		Type:     cfg.Cache.Type,
		RedisURL: cfg.Cache.RedisURL,
	})
	if err != nil {
		qc.Close()
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	s.resultCache = resultCache

	events, err := bus.NewBus(cfg.Bus)
	if err != nil {
		qc.Close()
		resultCache.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	s.events = events

	s.pipeline = rag.NewPipeline(qc, embedder, chain, resultCache, events, rag.Config{
		DefaultTopK:       cfg.RAG.DefaultTopK,
		MaxTopK:           cfg.RAG.MaxTopK,
		MinSimilarity:     cfg.RAG.MinSimilarity,
		MaxExamples:       cfg.RAG.MaxExamples,
		FastMaxExamples:   cfg.RAG.FastMaxExamples,
		HistoryWindow:     cfg.RAG.HistoryWindow,
		CacheTTL:          cfg.RAG.CacheTTL(),
		DisableEnrichment: !cfg.RAG.EnrichmentEnabled,
		Temperature:       cfg.LLM.Temperature,
		MaxTokens:         cfg.LLM.MaxTokens,
		FastMaxTokens:     cfg.LLM.FastMaxTokens,
	}, log)

	s.handler = NewHandler(s.pipeline, qc)
	if cfg.Security.RateLimit > 0 {
		rlCfg := middleware.DefaultRateLimiterConfig()
		rlCfg.RequestsPerSecond = float64(cfg.Security.RateLimit)
		rlCfg.Burst = cfg.Security.RateLimit * 2
		s.rateLimiter = middleware.NewRateLimiter(rlCfg)
	}

	return s, nil
}

// embeddingKey prefers a dedicated embedding key, falling back to the
// LLM OpenAI key when the backends share one account.
func embeddingKey(cfg *config.Config) string {
	if cfg.Embedding.APIKey != "" {
		return cfg.Embedding.APIKey
	}
	if cfg.Embedding.Provider == "huggingface" {
		return cfg.LLM.HFKey
	}
	return cfg.LLM.OpenAIKey
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	s.started = true
	s.mu.Unlock()

	mux := s.setupRoutes()

	addr := s.cfg.Address()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	s.log.Info("Starting HTTP server", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error("HTTP shutdown error", "error", err)
		}
	}

	if s.qdrant != nil {
		s.qdrant.Close()
	}
	if s.resultCache != nil {
		s.resultCache.Close()
	}
	if s.events != nil {
		s.events.Close()
	}

	s.started = false
	s.log.Info("Server stopped")

	return nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	s.handler.RegisterRoutes(mux)
	mux.HandleFunc("/v1/health", s.handleHealth)
	mux.HandleFunc("/v1/version", s.handleVersion)

	var handler http.Handler = mux
	handler = ResponseWrapperMiddleware(handler)
	if s.rateLimiter != nil {
		handler = s.rateLimiter.Middleware(handler)
	}
	handler = middleware.CORS(s.cfg.Security.CORSOrigins)(handler)

	return wrapWithLogging(handler, s.log)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// wrapWithLogging returns a handler with request logging.
func wrapWithLogging(handler http.Handler, log *logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		handler.ServeHTTP(wrapped, r)

		log.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Health reports whether the server has started.
func (s *Server) Health() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
