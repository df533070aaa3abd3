package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/zonicbr/onboarding-platform/internal/api/router"
	"github.com/zonicbr/onboarding-platform/internal/booking"
	appconfig "github.com/zonicbr/onboarding-platform/internal/config"
	"github.com/zonicbr/onboarding-platform/internal/draft"
	"github.com/zonicbr/onboarding-platform/internal/leads"
	"github.com/zonicbr/onboarding-platform/internal/marketing"
	"github.com/zonicbr/onboarding-platform/internal/observability/metrics"
	"github.com/zonicbr/onboarding-platform/internal/onboarding"
	"github.com/zonicbr/onboarding-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting onboarding-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Record storage (pgx)
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Lead storage (database/sql + pq)
	leadsDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open leads db", "error", err)
		os.Exit(1)
	}
	defer func() { _ = leadsDB.Close() }()

	// Draft storage (redis)
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	onboardingMetrics := metrics.NewOnboardingMetrics(prometheus.DefaultRegisterer)
	leadMetrics := metrics.NewLeadMetrics(prometheus.DefaultRegisterer)

	// Record synthesis gateway
	repo := onboarding.NewPostgresRepository(pool)
	synth := onboarding.NewSynthesizer(logger, onboardingMetrics)
	service := onboarding.NewService(repo, synth, logger, onboardingMetrics)
	onboardingHandler := onboarding.NewHandler(service, logger)

	// Draft snapshots
	draftStore := draft.NewStore(redisClient, cfg.DraftRetention)
	draftHandler := draft.NewHandler(draftStore, logger)

	// Lead intake + marketing webhook
	dispatcher := marketing.NewDispatcher(cfg.LeadsWebhookURL, nil, logger, leadMetrics)
	leadsHandler := leads.NewHandler(leads.NewSQLRepository(leadsDB), dispatcher, logger, leadMetrics)

	// Scheduling proxy (optional)
	var bookingHandler *booking.Handler
	if cfg.CalAPIKey != "" {
		calClient, err := booking.New(booking.Config{
			BaseURL:      cfg.CalBaseURL,
			APIKey:       cfg.CalAPIKey,
			APIVersion:   cfg.CalAPIVersion,
			EventTypeIDs: cfg.CalEventTypeIDs,
			Logger:       logger,
		})
		if err != nil {
			logger.Error("failed to create scheduling client", "error", err)
			os.Exit(1)
		}
		bookingHandler = booking.NewHandler(calClient, logger)
	} else {
		logger.Warn("CAL_API_KEY not set, scheduling proxy disabled")
	}

	routerCfg := &router.Config{
		Logger:             logger,
		OnboardingHandler:  onboardingHandler,
		DraftHandler:       draftHandler,
		LeadsHandler:       leadsHandler,
		BookingHandler:     bookingHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		APIBearerToken:     cfg.APIBearerToken,
		AdminJWTSecret:     cfg.AdminJWTSecret,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
