package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/ocr"
	"fintrack/internal/services"

	"golang.org/x/sync/errgroup"
)

const sessionCleanupInterval = 5 * time.Minute

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)
	loc := cfg.Location()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	sessionStore := cache.NewLRUCache[auth.Session](cfg.SessionCacheSize, cfg.SessionTTL)
	caches := cache.NewManager(logger.Logger)
	caches.Register("sessions", sessionStore)

	svc := apphttp.Services{
		Users:        services.NewUserService(repo, auth.NewSessions(sessionStore)),
		Categories:   services.NewCategoryService(repo),
		Transactions: services.NewTransactionService(repo, loc),
		Dashboard:    services.NewDashboardService(repo, cfg.Policy(), loc),
		Invoices:     services.NewInvoiceService(repo, ocr.NoopExtractor{}),
		Reminders:    services.NewReminderService(repo),
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:            ":" + cfg.Port,
		SecureCookies:   cfg.SecureCookies,
		SessionTTL:      cfg.SessionTTL,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		LoginRateLimit:  cfg.LoginRateLimit,
		LoginRateWindow: cfg.LoginRateWindow,
		Location:        loc,
		Logger:          logger,
	}, svc, repo)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	caches.StartCleanup(ctx, sessionCleanupInterval)
	defer caches.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fintrack server",
			"port", cfg.Port,
			"balance_policy", cfg.Policy(),
			"timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		cli.Fatal(logger, "Server error", err, "port", cfg.Port)
	}
	logger.Info("Server stopped gracefully")
}
