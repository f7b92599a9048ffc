// Package http exposes the JSON API for tours, expenses, reports and
// sessions.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tourbook/internal/cache"
	"tourbook/internal/log"
	"tourbook/internal/middleware/ratelimit"
	"tourbook/internal/middleware/security"
	"tourbook/internal/services"
)

type Server struct {
	http.Server

	tours      *services.TourService
	auth       *services.AuthService
	logger     *log.Logger
	structured *log.StructuredLogger

	rateLimiter *ratelimit.Limiter

	// respCache holds marshaled GET responses: "tours" for the list,
	// "tour:{id}" and "tour:{id}:report" per tour.
	respCache    *cache.LRUCache[[]byte]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, tours *services.TourService, authSvc *services.AuthService, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		tours:        tours,
		auth:         authSvc,
		logger:       logger.WithComponent(log.ComponentHTTP),
		rateLimiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		respCache:    cache.NewLRUCache[[]byte](200, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}
	s.structured = log.NewStructuredLogger(s.logger)
	s.cacheManager.Register(s.respCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/password", s.requireAuth(s.handleChangePassword))
	mux.HandleFunc("GET /api/auth/me", s.requireAuth(s.handleMe))

	mux.HandleFunc("GET /api/tours", s.handleListTours)
	mux.HandleFunc("POST /api/tours", s.requireAuth(s.handleCreateTour))
	mux.HandleFunc("GET /api/tours/{id}", s.handleGetTour)
	mux.HandleFunc("PUT /api/tours/{id}", s.requireAuth(s.handleUpdateTour))
	mux.HandleFunc("DELETE /api/tours/{id}", s.requireAuth(s.handleDeleteTour))

	mux.HandleFunc("POST /api/tours/{id}/expenses", s.requireAuth(s.handleAddExpense))
	mux.HandleFunc("PUT /api/tours/{id}/expenses/{expenseID}", s.requireAuth(s.handleEditExpense))
	mux.HandleFunc("DELETE /api/tours/{id}/expenses/{expenseID}", s.requireAuth(s.handleDeleteExpense))
	mux.HandleFunc("GET /api/tours/{id}/report", s.handleReport)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              addr,
		Handler:           headers.Middleware(s.withObservability(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// invalidateTour drops every cached view touched by a tour mutation.
func (s *Server) invalidateTour(id string) {
	s.respCache.Delete("tours")
	s.respCache.DeletePrefix("tour:" + id)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
