package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	specpkg "github.com/residentdesk/residentdesk/api"
	"github.com/residentdesk/residentdesk/internal/api"
	"github.com/residentdesk/residentdesk/internal/auth"
	"github.com/residentdesk/residentdesk/internal/config"
	"github.com/residentdesk/residentdesk/internal/database"
	"github.com/residentdesk/residentdesk/internal/issue"
	"github.com/residentdesk/residentdesk/internal/profile"
	"github.com/residentdesk/residentdesk/internal/resident"
	"github.com/residentdesk/residentdesk/internal/sweeper"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL,
		database.WithApplicationName("residentdesk-server"),
		database.WithMaxConns(cfg.DBMaxConns),
	)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	authRepo := auth.NewRepository(db.Pool())
	profileRepo := profile.NewRepository(db.Pool())
	authService := auth.NewService(authRepo, auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer), cfg.SessionTTL, cfg.BcryptCost)

	if cfg.BootstrapAdminEmail != "" {
		bootstrapSuperAdmin(ctx, authService, profileRepo, cfg.BootstrapAdminEmail)
	}

	go auth.NewListener(db.Pool(), authService).Run(ctx)
	go sweeper.New(authRepo, cfg.SessionSweep, cfg.SessionRetention).Start(ctx)

	router, err := api.NewRouter(api.RouterDeps{
		DBPinger:    db,
		Version:     cfg.Version,
		OpenAPISpec: specpkg.OpenAPISpec,
		AuthService: authService,
		Profiles:    profileRepo,
		Residents:   resident.NewRepository(db.Pool()),
		Issues:      issue.NewRepository(db.Pool()),
		GateOptions: cfg.GateOptions(),
	})
	if err != nil {
		slog.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting residentdesk server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// bootstrapSuperAdmin creates the first super admin on an empty database and
// prints its generated password once.
func bootstrapSuperAdmin(ctx context.Context, svc *auth.Service, profiles profile.Repository, email string) {
	password, err := svc.BootstrapSuperAdmin(ctx, email, profiles)
	if err != nil {
		slog.Error("failed to bootstrap super admin", "error", err)
		os.Exit(1)
	}
	if password == "" {
		return
	}
	slog.Info("bootstrapped super admin", "email", email)
	fmt.Fprintf(os.Stderr, "\nSuper admin password for %s (shown once): %s\n\n", email, password)
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
