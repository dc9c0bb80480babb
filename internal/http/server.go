// Package http exposes the JSON API: transactions, budgets, dashboard,
// loan calculation, text extraction and expense sharing.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/adarshpathak3408/FinFlow/internal/cache"
	"github.com/adarshpathak3408/FinFlow/internal/core"
	"github.com/adarshpathak3408/FinFlow/internal/log"
	"github.com/adarshpathak3408/FinFlow/internal/services"
)

type (
	// TransactionService handles validated writes with budget evaluation
	// and async export.
	TransactionService interface {
		Create(ctx context.Context, tx core.Transaction) (services.CreateResult, error)
		Update(ctx context.Context, tx core.Transaction) error
		Delete(ctx context.Context, id string) error
	}

	// TransactionReader serves read paths straight from storage.
	TransactionReader interface {
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// BudgetStore reads and writes category ceilings.
	BudgetStore interface {
		SetBudget(ctx context.Context, category string, amount float64) error
		GetBudgets(ctx context.Context) (core.Budgets, error)
	}
)

// Options configures a Server.
type Options struct {
	Addr            string
	Service         TransactionService
	Reader          TransactionReader
	Budgets         BudgetStore
	Rates           core.RateTable
	DisplayCurrency string
	UPIVpa          string
	PayeeName       string
	Logger          *log.Logger
}

type Server struct {
	http.Server

	service TransactionService
	reader  TransactionReader
	budgets BudgetStore

	rates           core.RateTable
	displayCurrency string
	upiVPA          string
	payeeName       string

	logger      *log.Logger
	rateLimiter *rateLimiter

	// Dashboard responses are cached per display currency and dropped on
	// every write.
	dashCache *cache.Cache[dashboardResponse]

	shutdownOnce sync.Once
}

func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	rates := opts.Rates
	if rates == nil {
		rates = core.DefaultRates
	}
	displayCurrency := opts.DisplayCurrency
	if displayCurrency == "" {
		displayCurrency = core.BaseCurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		Server: http.Server{
			Addr:         opts.Addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		service:         opts.Service,
		reader:          opts.Reader,
		budgets:         opts.Budgets,
		rates:           rates,
		displayCurrency: displayCurrency,
		upiVPA:          opts.UPIVpa,
		payeeName:       opts.PayeeName,
		logger:          logger.WithComponent(log.ComponentHTTP),
		rateLimiter:     newRateLimiter(),
		dashCache:       cache.New[dashboardResponse](16, 30*time.Second),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/export", s.withMiddleware(s.handleExportTransactions))
	mux.HandleFunc("GET /api/transactions/{id}", s.withMiddleware(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withMiddleware(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleListCategories))
	mux.HandleFunc("GET /api/budgets", s.withMiddleware(s.handleGetBudgets))
	mux.HandleFunc("PUT /api/budgets", s.withMiddleware(s.handleSetBudget))
	mux.HandleFunc("GET /api/dashboard", s.withMiddleware(s.handleDashboard))
	mux.HandleFunc("POST /api/loan", s.withMiddleware(s.handleLoan))
	mux.HandleFunc("POST /api/extract/receipt", s.withMiddleware(s.handleExtractReceipt))
	mux.HandleFunc("POST /api/extract/speech", s.withMiddleware(s.handleExtractSpeech))
	mux.HandleFunc("POST /api/share", s.withMiddleware(s.handleShare))

	return s
}

// withMiddleware adds request logging, rate limiting on writes and baseline
// security headers.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()
		ip := clientIP(r)

		if isWrite(r.Method) && !s.rateLimiter.allow(ip) {
			s.logger.WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, ip,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(r.Context(), "Request completed",
			"request_id", requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.status,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, ip)
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// statusWriter captures the response status for the request log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// invalidateDashboard drops cached dashboard responses after any write.
func (s *Server) invalidateDashboard() {
	s.dashCache.Clear()
}

// Shutdown stops the rate limiter cleanup goroutine and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
