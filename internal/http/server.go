// Package http exposes the ledger views and the write path over JSON,
// CSV and one HTML report page.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/report"
	"bilancio/internal/services"
	"bilancio/internal/snapshot"
)

type Server struct {
	http.Server
	holder      *snapshot.Holder
	views       *report.Service
	writes      *services.StoreService
	displayCcy  string
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	// rendered GET responses, keyed by view, snapshot version and
	// display currency
	viewCache *cache.ViewCache[[]byte]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer wires routes and middleware. displayCcy is the default
// display currency when the request has no ?display= parameter.
func NewServer(addr string, holder *snapshot.Holder, views *report.Service, writes *services.StoreService, displayCcy string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		holder:           holder,
		views:            views,
		writes:           writes,
		displayCcy:       displayCcy,
		rateLimiter:      newRateLimiter(),
		metrics:          &securityMetrics{},
		viewCache:        cache.NewViewCache[[]byte](200, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /expenses", s.withMiddleware(s.handleListExpenses))
	mux.HandleFunc("GET /budgets", s.withMiddleware(s.handleListBudgets))
	mux.HandleFunc("GET /goals", s.withMiddleware(s.handleListGoals))
	mux.HandleFunc("GET /series/categories", s.withMiddleware(s.handleCategorySeries))
	mux.HandleFunc("GET /series/monthly", s.withMiddleware(s.handleMonthlySeries))
	mux.HandleFunc("GET /export/csv", s.withMiddleware(s.handleExportCSV))
	mux.HandleFunc("GET /report", s.withMiddleware(s.handleReport))

	mux.HandleFunc("POST /expenses", s.withMiddleware(s.handleSaveExpense))
	mux.HandleFunc("DELETE /expenses/{id}", s.withMiddleware(s.handleDeleteExpense))
	mux.HandleFunc("POST /budgets", s.withMiddleware(s.handleSaveBudget))
	mux.HandleFunc("DELETE /budgets/{id}", s.withMiddleware(s.handleDeleteBudget))
	mux.HandleFunc("POST /fx", s.withMiddleware(s.handleSaveFxRate))
	mux.HandleFunc("DELETE /fx/{code}", s.withMiddleware(s.handleDeleteFxRate))
	mux.HandleFunc("POST /fx/refresh", s.withMiddleware(s.handleRefreshFx))
	mux.HandleFunc("POST /rules", s.withMiddleware(s.handleSaveRule))
	mux.HandleFunc("DELETE /rules/{id}", s.withMiddleware(s.handleDeleteRule))
	mux.HandleFunc("POST /goals", s.withMiddleware(s.handleSaveGoal))
	mux.HandleFunc("DELETE /goals/{id}", s.withMiddleware(s.handleDeleteGoal))
	mux.HandleFunc("POST /recurring", s.withMiddleware(s.handleSaveTemplate))
	mux.HandleFunc("DELETE /recurring/{id}", s.withMiddleware(s.handleDeleteTemplate))

	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.viewCache.CleanExpired(); cleaned > 0 {
				slog.Debug("View cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutines, then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// withMiddleware adds security headers, rate limiting on mutating
// requests, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
