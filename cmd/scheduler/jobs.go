package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/lending-engine/internal/config"
	"github.com/segyhp/lending-engine/internal/domain"
)

const jobTimeout = 10 * time.Minute

// cronLogger routes cron's own messages (skipped runs, recovered panics)
// through slog.
type cronLogger struct {
	log *slog.Logger
}

// Info receives cron's tick messages, which go to debug. A skipped run is
// reported as a warning.
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	level := slog.LevelDebug
	if msg == "skip" {
		level = slog.LevelWarn
	}
	l.log.Log(context.Background(), level, "cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}

// newCron builds the scheduler in the configured zone. A run still in
// progress causes the next run of the same job to be skipped.
func newCron(loc *time.Location, log *slog.Logger) *cron.Cron {
	cl := cronLogger{log: log}
	return cron.New(
		cron.WithSeconds(),
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
}

// jobs is the part of the lending service the scheduler drives.
type jobs interface {
	MarkOverdueRepayments(ctx context.Context) (int64, error)
	GenerateTodaysRepayments(ctx context.Context) (*domain.GenerateResponse, error)
}

func setupCronJobs(c *cron.Cron, cfg config.SchedulerConfig, svc jobs, log *slog.Logger) error {
	// Mark overdue repayments shortly after midnight
	if _, err := c.AddFunc(cfg.OverdueCron, func() { runMarkOverdue(svc, log) }); err != nil {
		return fmt.Errorf("overdue job %q: %w", cfg.OverdueCron, err)
	}

	// Generate repayments that fall due today
	if _, err := c.AddFunc(cfg.GenerateCron, func() { runGenerate(svc, log) }); err != nil {
		return fmt.Errorf("generate job %q: %w", cfg.GenerateCron, err)
	}

	return nil
}

func runMarkOverdue(svc jobs, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	log.Info("running overdue repayments job")
	updated, err := svc.MarkOverdueRepayments(ctx)
	if err != nil {
		log.Error("overdue repayments job failed", "error", err)
		return
	}
	log.Info("overdue repayments job finished", "updated", updated)
}

func runGenerate(svc jobs, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	log.Info("running repayment generation job")
	result, err := svc.GenerateTodaysRepayments(ctx)
	if err != nil {
		log.Error("repayment generation job failed", "error", err)
		return
	}
	log.Info("repayment generation job finished", "generated", result.Generated, "active_loans", result.ActiveLoans)
}
