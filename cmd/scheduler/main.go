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

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/segyhp/lending-engine/internal/cache"
	"github.com/segyhp/lending-engine/internal/config"
	"github.com/segyhp/lending-engine/internal/metrics"
	"github.com/segyhp/lending-engine/internal/repository"
	"github.com/segyhp/lending-engine/internal/service"
	"github.com/segyhp/lending-engine/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting lending scheduler")

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := cache.NewClient(cfg.Redis)
	if err != nil {
		log.Error("failed to initialize redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	m := metrics.New()
	lendingService := service.NewLendingService(
		repository.NewBorrowerRepository(db),
		repository.NewLoanRepository(db),
		repository.NewRepaymentRepository(db),
		cache.NewRedisStore(redisClient),
		cfg,
		log,
	).WithMetrics(m)

	c := newCron(cfg.Location(), log)

	if err := setupCronJobs(c, cfg.Scheduler, lendingService, log); err != nil {
		log.Error("failed to schedule jobs", "error", err)
		os.Exit(1)
	}

	c.Start()
	log.Info("scheduler started", "timezone", cfg.Scheduler.Timezone)

	// Expose job counters for scraping
	metricsServer := &http.Server{Addr: cfg.Scheduler.MetricsAddr, Handler: m.Handler()}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduler")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(ctx); err != nil {
		log.Error("metrics server forced to shutdown", "error", err)
	}
	<-c.Stop().Done()
	log.Info("scheduler stopped")
}
