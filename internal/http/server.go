// Package http exposes the ledger over a JSON API. Owners are scoped by the
// X-Owner-ID header; derived views are cached per owner and invalidated on
// every mutation.
package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fiscus/internal/cache"
	"fiscus/internal/config"
	"fiscus/internal/log"
	"fiscus/internal/metrics"
	"fiscus/internal/service"
)

// defaultOwner scopes requests that carry no X-Owner-ID header.
const defaultOwner = "default"

// Asker answers a budgeting question given a ledger summary. *advisor.Advisor
// satisfies it; nil disables the chat endpoint.
type Asker interface {
	Ask(ctx context.Context, summary, question string) (string, error)
}

type Server struct {
	service    *service.LedgerService
	advisor    Asker
	logger     *log.Logger
	statsCache *cache.LRUCache[[]byte]
	cacheMgr   *cache.Manager
	limiter    *rateLimiter
	srv        *http.Server
}

func NewServer(svc *service.LedgerService, asker Asker, cfg *config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	statsCache := cache.NewLRUCache[[]byte](cfg.StatsCacheSize, cfg.StatsCacheTTL)
	cacheMgr := cache.NewManager()
	cacheMgr.Register(statsCache)
	cacheMgr.StartCleanup(time.Minute)

	s := &Server{
		service:    svc,
		advisor:    asker,
		logger:     logger,
		statsCache: statsCache,
		cacheMgr:   cacheMgr,
		limiter:    newRateLimiter(),
	}

	// every mutation drops all derived views for that owner
	svc.OnChange(func(owner string) {
		s.statsCache.DeletePrefix(owner + ":")
	})

	s.srv = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(s.rateLimit)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Get("/groups", s.handleGroups)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Get("/totals", s.handleTotals)
		r.Get("/categories", s.handleCategories)

		r.Route("/stats", func(r chi.Router) {
			r.Get("/weekly", s.handleWeekly)
			r.Get("/monthly", s.handleMonthly)
			r.Get("/yearly", s.handleYearly)
			r.Get("/categories", s.handleBreakdown)
		})

		r.Post("/chat", s.handleChat)
	})

	return r
}

// Handler returns the routed handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", log.FieldPort, s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.stop()
	s.cacheMgr.Stop()
	return s.srv.Shutdown(ctx)
}

// observe records request latency with the matched chi route pattern, so
// parameterized paths do not explode the label space.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).
			Observe(float64(time.Since(start).Milliseconds()))
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(r.RemoteAddr) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
