package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// Services are the application services the handlers call.
type Services struct {
	Users        *services.UserService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Dashboard    *services.DashboardService
	Invoices     *services.InvoiceService
	Reminders    *services.ReminderService
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configure the HTTP server.
type Options struct {
	Addr            string
	SecureCookies   bool
	SessionTTL      time.Duration
	MaxUploadBytes  int64
	LoginRateLimit  int
	LoginRateWindow time.Duration
	Location        *time.Location
	Logger          *applog.Logger
}

// Server is the JSON API server.
type Server struct {
	*http.Server

	svc     Services
	ready   Pinger
	opts    Options
	started time.Time

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
}

// NewServer builds the API server and its middleware chain.
func NewServer(opts Options, svc Services, ready Pinger) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}

	s := &Server{
		svc:     svc,
		ready:   ready,
		opts:    opts,
		started: time.Now(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			Requests: opts.LoginRateLimit,
			Window:   opts.LoginRateWindow,
		}),
		detector: security.NewDetector(opts.Logger.WithComponent(applog.ComponentSecurity).Logger),
	}
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = applog.Middleware(opts.Logger)(handler)

	s.Server = &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	throttled := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "too many attempts, try again later").Write(w)
	})

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.Handle("POST /api/auth/register", throttled(http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /api/auth/login", throttled(http.HandlerFunc(s.handleLogin)))
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/auth/user", s.handleCurrentUser)
	mux.Handle("PATCH /api/users/settings", s.authed(s.handleSettings))

	mux.Handle("GET /api/categories", s.authed(s.handleListCategories))
	mux.Handle("POST /api/categories", s.authed(s.handleCreateCategory))

	mux.Handle("GET /api/transactions", s.authed(s.handleListTransactions))
	mux.Handle("POST /api/transactions", s.authed(s.handleCreateTransaction))
	mux.Handle("DELETE /api/transactions", s.authed(s.handleDeleteAllTransactions))
	mux.Handle("GET /api/transactions/recent", s.authed(s.handleRecentTransactions))
	mux.Handle("GET /api/transactions/upcoming", s.authed(s.handleUpcomingTransactions))
	mux.Handle("GET /api/transactions/export", s.authed(s.handleExportTransactions))
	mux.Handle("GET /api/transactions/{id}", s.authed(s.handleGetTransaction))
	mux.Handle("PATCH /api/transactions/{id}", s.authed(s.handleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", s.authed(s.handleDeleteTransaction))
	mux.Handle("PATCH /api/transactions/{id}/status", s.authed(s.handleTransactionStatus))

	mux.Handle("GET /api/invoices", s.authed(s.handleListInvoices))
	mux.Handle("POST /api/invoices/upload", s.authed(s.handleUploadInvoice))
	mux.Handle("GET /api/invoices/{id}", s.authed(s.handleGetInvoice))
	mux.Handle("DELETE /api/invoices/{id}", s.authed(s.handleDeleteInvoice))

	mux.Handle("GET /api/reminders", s.authed(s.handleListReminders))
	mux.Handle("GET /api/reminders/upcoming", s.authed(s.handleUpcomingReminders))
	mux.Handle("PATCH /api/reminders/{id}/mark-sent", s.authed(s.handleMarkReminderSent))

	mux.Handle("GET /api/dashboard/balance", s.authed(s.handleBalance))
	mux.Handle("GET /api/dashboard/monthly-summary", s.authed(s.handleMonthlySummary))
	mux.Handle("GET /api/dashboard/monthly-summary/last-6-months", s.authed(s.handleHistory))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("no such endpoint").Write(w)
	})
}

// Shutdown stops background cleanup and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks that the database answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"database": "ok"}
	if s.ready == nil {
		checks["database"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else if err := s.ready.Ping(ctx); err != nil {
		checks["database"] = fmt.Sprintf("failed: %v", err)
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes request and security counters in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	tm := s.tracer.GetMetrics()
	var b strings.Builder
	metric := func(name, help, kind string, v int64) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s %s\n%s %d\n\n", name, help, name, kind, name, v)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", tm.TotalRequests)
	metric("http_server_errors_total", "Responses with a 5xx status", "counter", tm.ServerErrors)
	metric("security_suspicious_requests_total", "Requests blocked as probes", "counter", s.detector.GetMetrics().SuspiciousRequests)
	metric("rate_limit_blocked_total", "Auth requests rejected by the rate limiter", "counter", s.limiter.Blocked())
	metric("rate_limit_active_clients", "Clients tracked by the rate limiter", "gauge", int64(s.limiter.ActiveClients()))
	metric("uptime_seconds", "Seconds since the server started", "gauge", int64(time.Since(s.started).Seconds()))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

// now returns the current time in the configured zone.
func (s *Server) now() time.Time {
	return time.Now().In(s.opts.Location)
}
