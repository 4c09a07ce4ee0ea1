package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ctchen222/fatty-hosting/internal/api/repository"
	"ctchen222/fatty-hosting/internal/api/service"
	"ctchen222/fatty-hosting/internal/config"
	"ctchen222/fatty-hosting/internal/db"
	"ctchen222/fatty-hosting/internal/logger"
	"ctchen222/fatty-hosting/internal/notifier"
	"ctchen222/fatty-hosting/internal/ratelimit"
	"ctchen222/fatty-hosting/internal/server"
	"ctchen222/fatty-hosting/internal/telemetry"
	"ctchen222/fatty-hosting/internal/validator"

	"github.com/gin-gonic/gin"
)

const serviceName = "fatty-hosting"

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.OtelEndpoint, serviceName)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(cfg.LogLevel)

	validator.InstallGin()
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize SQLite DB
	conn, err := db.Connect(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.InitializeDB(ctx, conn); err != nil {
		return err
	}

	limiter, err := newLimiter(ctx, cfg)
	if err != nil {
		return err
	}

	n, err := newNotifier(cfg)
	if err != nil {
		return err
	}

	// Create repositories
	userRepo := repository.NewUserRepository(conn)
	requestRepo := repository.NewRequestRepository(conn)

	// Create services
	userService := service.NewUserService(userRepo, service.NewTokenIssuer(cfg.JWTSecret))
	requestService := service.NewRequestService(requestRepo, userRepo, n, cfg.AdminKey)

	srv, err := server.NewServer(server.Deps{
		UserService:    userService,
		RequestService: requestService,
		Limiter:        limiter,
		StaticDir:      cfg.StaticDir,
		ExposeDetail:   cfg.IsDevelopment(),
		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("FATTY HOSTING server started", "addr", httpServer.Addr, "env", cfg.AppEnv)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-stop:
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("Server exiting")
	return nil
}

func newLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, error) {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, using in-memory rate limiter")
		return ratelimit.NewMemoryLimiter(), nil
	}
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return ratelimit.NewRedisLimiter(rdb), nil
}

func newNotifier(cfg *config.Config) (notifier.Notifier, error) {
	if !cfg.MailEnabled() {
		slog.Warn("EMAIL_USER or EMAIL_PASSWORD not set, notifications are logged only")
		return notifier.NewLogNotifier(slog.Default()), nil
	}
	client, err := notifier.NewSMTPClient(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPassword)
	if err != nil {
		return nil, err
	}
	return notifier.NewMailNotifier(client, notifier.Options{
		From:       cfg.EmailUser,
		AdminEmail: cfg.AdminEmail,
		PanelURL:   cfg.PanelURL,
	}), nil
}
