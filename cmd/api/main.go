package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"vetdesk/internal/auth"
	"vetdesk/internal/clinic"
	"vetdesk/internal/config"
	transporthttp "vetdesk/internal/http"
	"vetdesk/internal/notify"
	"vetdesk/internal/platform/database"
	"vetdesk/internal/platform/logging"
	"vetdesk/internal/platform/migrate"
)

const sessionCleanupInterval = time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)

	authRepo, clinicRepo, cleanup, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize repositories", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	google, err := auth.NewGoogleAuthenticator(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL)
	if err != nil {
		logger.Error("google discovery failed", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(authRepo, auth.DefaultSessionTTL)
	flow := auth.NewFlow(google, authService)
	origins := auth.NewOriginPolicy(cfg.AllowedAppOrigins)
	clinicSvc := clinic.NewService(clinicRepo)
	whatsapp := notify.NewWhatsAppClient(&http.Client{Timeout: 10 * time.Second}, cfg.WhatsAppToken, cfg.WhatsAppPhoneID)

	router := transporthttp.NewRouter(cfg, flow, authService, origins, clinicSvc, whatsapp, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go runSessionCleanup(ctx, authService, logger)

	go func() {
		logger.Info("vetdesk API listening", "addr", srv.Addr, "store", cfg.DataStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *slog.Logger) (auth.Repository, clinic.Repository, func(), error) {
	if cfg.UseInMemoryStore() {
		logger.Info("using in-memory repositories")
		return auth.NewInMemoryRepository(), clinic.NewInMemoryRepository(nil), nil, nil
	}

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}

	cleanup := func() {
		_ = db.Close()
	}

	if err := migrate.Apply(ctx, db, logger); err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	logger.Info("connected to postgres")
	return auth.NewPostgresRepository(db), clinic.NewPostgresRepository(db), cleanup, nil
}

// runSessionCleanup periodically reclaims expired session rows. Reads stay
// correct without it (expired sessions are deleted lazily on read); this keeps
// the table from accumulating rows nobody will read again.
func runSessionCleanup(ctx context.Context, authService *auth.Service, logger *slog.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := authService.CleanupExpiredSessions(ctx)
			if err != nil {
				logger.Error("session cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("expired sessions removed", "count", removed)
			}
		}
	}
}
