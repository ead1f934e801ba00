package handlers

import (
	"context"
	"net/http"

	"github.com/nijaru/yt-transcript/config"
	"github.com/nijaru/yt-transcript/metrics"
	"github.com/nijaru/yt-transcript/middleware"
	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/utils"
	"github.com/sirupsen/logrus"
)

// TranscriptService is the part of transcription.Service the routes use.
type TranscriptService interface {
	GetTranscript(ctx context.Context, videoInput, languageCode string) (*models.TranscriptResult, error)
	ListLanguages(ctx context.Context, videoInput string) (*models.LanguageList, error)
}

// LookupReader reads back the lookup journal.
type LookupReader interface {
	RecentLookups(ctx context.Context, limit int) ([]models.Lookup, error)
}

type Server struct {
	service TranscriptService
	lookups LookupReader
	config  *config.Config
	logger  *logrus.Logger
	handler http.Handler
	server  *http.Server
}

type ServerOption func(*Server)

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithLookups exposes the journal at GET /api/lookups.
func WithLookups(lookups LookupReader) ServerOption {
	return func(s *Server) {
		s.lookups = lookups
	}
}

func NewServer(cfg *config.Config, service TranscriptService, opts ...ServerOption) *Server {
	s := &Server{
		service: service,
		config:  cfg,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.handler = s.routes()
	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the routed handler with the full middleware stack.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	s.logger.WithField("addr", s.server.Addr).Info("Starting server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, http.MethodGet, "/{$}", s.handleRoot)
	s.handle(mux, http.MethodGet, "/api/health", s.handleHealth)
	s.handle(mux, http.MethodPost, "/api/transcript", s.handleTranscript)
	s.handle(mux, http.MethodPost, "/api/transcript/languages", s.handleLanguages)
	s.handle(mux, http.MethodGet, "/api/lookups", s.handleLookups)

	if s.config.MetricsEnabled {
		s.handle(mux, http.MethodGet, "/metrics", metrics.Handler().ServeHTTP)
	}

	mux.HandleFunc("/", s.handleNotFound)

	return s.middleware(mux)
}

// handle registers h for method on path. Any other method on path gets a JSON 405.
func (s *Server) handle(mux *http.ServeMux, method, path string, h http.HandlerFunc) {
	mux.HandleFunc(method+" "+path, h)
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", method)
		utils.HandleError(w, "method not allowed", http.StatusMethodNotAllowed)
	})
}

// middleware wraps mux outermost-first. Metrics instrumentation sits directly
// on the mux so the matched route pattern is visible to it.
func (s *Server) middleware(mux http.Handler) http.Handler {
	middlewares := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.CORS(s.config.CORS),
	}
	if s.config.RequestTimeout > 0 {
		middlewares = append(middlewares, middleware.Timeout(s.config.RequestTimeout))
	}

	if s.config.RateLimit.Enabled {
		rl := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerMinute, s.config.RateLimit.Burst)
		middlewares = append(middlewares, rl.Middleware)
	}
	if s.config.MetricsEnabled {
		middlewares = append(middlewares, metrics.InstrumentHandler)
	}

	return middleware.Chain(mux, middlewares...)
}
