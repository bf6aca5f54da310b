package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/c4gt/bounce/internal/config"
	"github.com/c4gt/bounce/internal/database"
	"github.com/c4gt/bounce/internal/handlers"
	middlewareCustom "github.com/c4gt/bounce/internal/middleware"
	"github.com/c4gt/bounce/internal/repositories"
	"github.com/c4gt/bounce/internal/routes"
	"github.com/c4gt/bounce/internal/services"
	pkghttp "github.com/c4gt/bounce/pkg/http"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("otp_store", cfg.OTP.Store),
		slog.String("email_provider", cfg.Email.Provider),
	)

	startupCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Initialize database
	db, err := database.NewConnection(startupCtx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(startupCtx, &cfg.Database, logger); err != nil {
			logger.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	otpStore, closeStore, err := newOTPStore(startupCtx, cfg)
	if err != nil {
		logger.Error("failed to initialize OTP store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	emailService, err := newEmailService(startupCtx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}
	cancel()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	discussionRepo := repositories.NewDiscussionRepository(db)
	levelCommentRepo := repositories.NewLevelCommentRepository(db)

	// Initialize services
	otpService := services.NewOTPService(otpStore, emailService, logger, cfg.OTP.TTL, cfg.Email.Timeout)
	authService := services.NewAuthService(userRepo, otpService, logger)
	userService := services.NewUserService(userRepo, logger)
	discussionService := services.NewDiscussionService(discussionRepo, logger)
	levelCommentService := services.NewLevelCommentService(levelCommentRepo, userRepo, logger)

	ipResolver, err := pkghttp.NewClientIPResolver(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(cfg.Server.AllowedOrigins))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService, userService),
		Discussions:   handlers.NewDiscussionHandler(discussionService),
		LevelComments: handlers.NewLevelCommentHandler(levelCommentService),
	}, middlewareCustom.RateLimitConfig{
		RequestsPerMinute: cfg.Server.AuthRateLimitRPM,
		IPResolver:        ipResolver,
	})

	router.Get("/health", handlers.NewHealthHandler(db).Health)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// newOTPStore builds the configured OTP store and a func releasing it
func newOTPStore(ctx context.Context, cfg *config.Config) (services.OTPStore, func(), error) {
	switch cfg.OTP.Store {
	case config.OTPStoreRedis:
		client, err := repositories.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		store := repositories.NewRedisOTPStore(client, cfg.Redis.KeyPrefix, cfg.OTP.ExpiredRetention)
		return store, func() { _ = client.Close() }, nil
	default:
		return repositories.NewMemoryOTPStore(), func() {}, nil
	}
}

// newEmailService builds the configured OTP notification sink
func newEmailService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.EmailService, error) {
	switch cfg.Email.Provider {
	case config.EmailProviderBrevo:
		return services.NewBrevoEmailService(
			cfg.Email.BrevoBaseURL,
			cfg.Email.BrevoAPIKey,
			cfg.Email.SenderName,
			cfg.Email.SenderEmail,
			cfg.Email.Timeout,
			logger,
		), nil
	case config.EmailProviderSES:
		return services.NewAWSSESEmailService(ctx, cfg.Email.AWSRegion, cfg.Email.SenderEmail, logger)
	case config.EmailProviderLog:
		logger.Warn("OTP codes will be written to the log instead of emailed")
		return services.NewLogEmailService(logger), nil
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.Email.Provider)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
