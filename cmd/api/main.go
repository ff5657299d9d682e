package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicflow/availability-api/internal/config"
	"github.com/clinicflow/availability-api/internal/handler"
	availabilityHandler "github.com/clinicflow/availability-api/internal/handler/availability"
	"github.com/clinicflow/availability-api/internal/middleware"
	"github.com/clinicflow/availability-api/internal/repository/postgres"
	"github.com/clinicflow/availability-api/internal/router"
	availabilityService "github.com/clinicflow/availability-api/internal/service/availability"
	"github.com/clinicflow/availability-api/internal/service/integrity"
	"github.com/clinicflow/availability-api/internal/service/slotgen"
	"github.com/clinicflow/availability-api/pkg/logger"
	"github.com/clinicflow/availability-api/pkg/messaging"
	redisbroker "github.com/clinicflow/availability-api/pkg/messaging/redis"
	"github.com/clinicflow/availability-api/pkg/metrics"
)

func main() {
	appLogger := logger.NewLogger(nil)
	zl := appLogger.Zerolog()

	cfg, err := config.LoadConfig()
	if err != nil {
		appLogger.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	scheduleRepo := postgres.NewScheduleRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	blockRepo := postgres.NewBlockRepository(db)

	generator := slotgen.NewService(scheduleRepo, appointmentRepo, blockRepo)
	validator := integrity.NewValidator(*zl)
	appMetrics := metrics.NewMetrics("clinicflow", "availability")

	// The redis URL switches on the shared cache backend and the
	// cross-instance invalidation channel; without it the cache stays
	// in-process.
	var broker messaging.Broker
	var store availabilityService.Store
	if cfg.Redis.URL != "" {
		rb, err := redisbroker.NewRedisBroker(redisbroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, zl)
		if err != nil {
			appLogger.Fatal(err, "failed to connect to Redis")
		}
		defer rb.Close()
		broker = rb
		store = availabilityService.NewRedisStore(rb.(*redisbroker.RedisBroker).Client(), cfg.Cache.TTL, *zl)
	} else {
		store = availabilityService.NewMemoryStore(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	}

	availabilitySvc := availabilityService.NewService(generator, validator, store, broker, appMetrics, *zl)

	h := handler.NewHandler(db)
	availabilityH := availabilityHandler.NewHandler(availabilitySvc, generator)

	r := router.NewRouter(availabilityH, h, router.RouterConfig{
		RateRPS:       cfg.Rate.RPS,
		RateBurst:     cfg.Rate.Burst,
		Timeout:       cfg.Server.WriteTimeout,
		CORSConfig:    middleware.DefaultCORSConfig(),
		MetricsPrefix: "availability_api",
	})
	r.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if broker != nil {
		go subscribeInvalidations(ctx, broker, store, appLogger)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zl.Info().Int("port", cfg.Server.Port).Msg("starting availability API")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal(err, "server forced to shutdown")
	}

	appLogger.Info("server exited properly")
}

// subscribeInvalidations drops the local cache whenever a peer
// broadcasts a flush.
func subscribeInvalidations(ctx context.Context, broker messaging.Broker, store availabilityService.Store, l *logger.Logger) {
	msgs, err := broker.Subscribe(ctx, availabilityService.InvalidationChannel)
	if err != nil {
		l.Error(err, "failed to subscribe to cache invalidations")
		return
	}
	for range msgs {
		if err := store.Flush(ctx); err != nil {
			l.Warn("failed to flush cache on invalidation broadcast", "error", err.Error())
		}
	}
}
