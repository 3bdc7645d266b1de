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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/FifiSALIOU/correction-sub000/internal/adapters/primary/http"
	mw "github.com/FifiSALIOU/correction-sub000/internal/adapters/primary/http/middleware"
	"github.com/FifiSALIOU/correction-sub000/internal/adapters/primary/websocket"
	"github.com/FifiSALIOU/correction-sub000/internal/adapters/secondary/postgres"
	"github.com/FifiSALIOU/correction-sub000/internal/auth"
	"github.com/FifiSALIOU/correction-sub000/internal/config"
	"github.com/FifiSALIOU/correction-sub000/internal/core/services"
	"github.com/FifiSALIOU/correction-sub000/internal/infrastructure/logging"
	"github.com/FifiSALIOU/correction-sub000/internal/infrastructure/scheduler"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// 3. Initialize Database Pool (read-only access to the ticketing store)
	ctx := context.Background()
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database connection established")

	// Background context shared by the hub and scheduler loops, cancelled
	// before the HTTP server drains.
	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	// 4. Initialize Security & Real-time Components
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret)
	hub := websocket.NewHub(logger)
	go hub.Run(bgCtx)

	// 5. Initialize Rate Limiters
	var generalRateLimiter, refreshRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		generalRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})

		defer generalRateLimiter.Stop()

		refreshRateLimiter = mw.NewRateLimiter(mw.RefreshRateLimiterConfig())
		defer refreshRateLimiter.Stop()
	}

	// 6. Dependency Injection (Wiring the Hexagon)

	// Error Handler
	errorHandler := httpAdapter.NewErrorHandler(logger)

	// Repositories (Secondary Adapters)
	ticketRepo := postgres.NewTicketRepository(pool)
	historyRepo := postgres.NewHistoryRepository(pool)
	technicianRepo := postgres.NewTechnicianRepository(pool)

	// Services (Core)
	attributor := services.NewDelegationAttributor(cfg.Analytics.DelegationKeywords)
	aggregator := services.NewAggregator(logger, cfg.Analytics.VolumeDays)
	analyticsService := services.NewAnalyticsService(
		ticketRepo,
		historyRepo,
		technicianRepo,
		attributor,
		aggregator,
		logger,
		services.AnalyticsOptions{
			HistoryFetchConcurrency: cfg.Analytics.HistoryFetchConcurrency,
			HistoryFetchTimeout:     cfg.Analytics.HistoryFetchTimeout,
		},
	)

	// Scheduler (Infrastructure)
	sched := scheduler.New(analyticsService, hub, cfg.Analytics.RefreshInterval, logger)
	go sched.Run(bgCtx)

	// Handlers (Primary Adapters)
	metricsHandler := httpAdapter.NewMetricsHandler(sched, analyticsService, errorHandler, logger)
	insightsHandler := httpAdapter.NewInsightsHandler(analyticsService, errorHandler, logger)
	wsHandler := httpAdapter.NewWebSocketHandler(hub, tokenManager, cfg, logger)
	healthHandler := httpAdapter.NewHealthHandler(pool, sched, cfg.Analytics.StalenessTolerance, cfg.App.Version)

	// 7. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Apply general rate limiting if enabled
	if generalRateLimiter != nil {
		r.Use(generalRateLimiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	r.Get("/health/live", healthHandler.HandleLiveness)
	r.Get("/health/ready", healthHandler.HandleReadiness)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket route (Authentication is handled inside the handler)
		r.Get("/ws", wsHandler.ServeHTTP)

		// Protected REST routes
		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(tokenManager))

			r.Route("/metrics", func(r chi.Router) {
				if refreshRateLimiter != nil {
					r.With(refreshRateLimiter.Middleware).Post("/refresh", metricsHandler.HandleRefresh)
				} else {
					r.Post("/refresh", metricsHandler.HandleRefresh)
				}
				r.Get("/", metricsHandler.HandleGetMetrics)
				r.Get("/technicians", metricsHandler.HandleTechnicianRollups)
			})
			r.Route("/tickets", insightsHandler.RegisterRoutes)
		})
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	// Stop the background loops before draining HTTP connections.
	stopBackground()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}
