package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/skyon-community/skyon-backend/config"
	"github.com/skyon-community/skyon-backend/internal/bootstrap"
	cronjob "github.com/skyon-community/skyon-backend/internal/cron"
	"github.com/skyon-community/skyon-backend/internal/logging"
)

const usage = "usage: worker [run|purge-dishes]"

func main() {
	cmd := "run"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	if cmd != "run" && cmd != "purge-dishes" {
		log.Fatal(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	app, err := bootstrap.NewApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer app.Close()

	sched := cronjob.NewScheduler(app.Location, logger.Named("cron"))
	purge := purgeDishes(app, cfg.Features.DishRetention)

	if cmd == "purge-dishes" {
		sched.RunNow("purge-dishes", purge)
		sched.Stop(context.Background())
		return
	}

	if err := sched.Add("purge-dishes", cfg.Features.DishPurgeSchedule, purge); err != nil {
		logger.Fatal("invalid schedule", zap.Error(err))
	}
	sched.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sched.Stop(ctx)
	logger.Info("worker stopped")
}

func purgeDishes(app *bootstrap.App, retention time.Duration) cronjob.Job {
	return func(ctx context.Context) error {
		n, err := app.Features.Dishes.Purge(ctx, retention)
		if err != nil {
			return fmt.Errorf("purge dishes: %w", err)
		}
		app.Log.Debug("dish purge complete", zap.Int("removed", n))
		return nil
	}
}
