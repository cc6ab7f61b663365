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

	"github.com/gin-gonic/gin"

	"github.com/graduate-tracer/survey-service/internal/cache"
	"github.com/graduate-tracer/survey-service/internal/config"
	"github.com/graduate-tracer/survey-service/internal/handlers"
	"github.com/graduate-tracer/survey-service/internal/metrics"
	"github.com/graduate-tracer/survey-service/internal/middleware"
	"github.com/graduate-tracer/survey-service/internal/repositories/postgres"
	"github.com/graduate-tracer/survey-service/internal/scheduler"
	"github.com/graduate-tracer/survey-service/internal/services"
	"github.com/graduate-tracer/survey-service/internal/utils"
	"github.com/graduate-tracer/survey-service/internal/validator"
	"github.com/graduate-tracer/survey-service/pkg"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := utils.NewLogger(cfg.Environment)
	slog.SetDefault(logger)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	redisClient, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	collector := metrics.NewCollector()

	serviceManager := services.NewServiceManager(services.Dependencies{
		Surveys:     postgres.NewSurveyPostgreSQL(db),
		Responses:   postgres.NewResponsePostgreSQL(db),
		Employment:  postgres.NewEmploymentPostgreSQL(db),
		Cache:       cache.NewRedisCache(redisClient, cache.Options{Prefix: "survey-service:", DefaultTTL: cfg.SurveyCacheTTL}, logger),
		Publisher:   publisher,
		Metrics:     collector,
		Logger:      logger,
		Validator:   validator.New(),
		SurveyCache: cfg.SurveyCacheTTL,
	})

	limiter := middleware.NewRateLimiter(cfg.SubmitRateLimit, cfg.SubmitRateBurst)
	go limiter.Run(ctx, 10*time.Minute)

	handlerManager := handlers.NewHandlerManager(serviceManager, utils.NewSlogLogger(logger), handlers.RouterOptions{
		Metrics:     collector,
		Limiter:     limiter,
		CORSOrigins: cfg.CORSAllowedOrigins,
	})

	var expiry *scheduler.Scheduler
	if cfg.CloseExpiredCron != "" {
		expiry, err = scheduler.New(serviceManager.Survey(), cfg.CloseExpiredCron, logger)
		if err != nil {
			return err
		}
		expiry.Start()
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlerManager.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if expiry != nil {
		if err := expiry.Stop(shutdownCtx); err != nil {
			logger.Warn("Expiry scheduler did not stop cleanly", "error", err)
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}
