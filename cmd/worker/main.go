package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/file-organizer/internal/bootstrap"
	"github.com/kirillkom/file-organizer/internal/config"
	natsqueue "github.com/kirillkom/file-organizer/internal/infrastructure/queue/nats"
	"github.com/kirillkom/file-organizer/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Service: "worker", Queue: true})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	go func() {
		if err := metrics.Serve(ctx, ":"+cfg.WorkerMetricsPort, app.Metrics.Handler(), app.Logger); err != nil {
			app.Logger.Error("metrics_server_failed", "error", err)
		}
	}()

	log.Printf("worker subscribed to %s", cfg.NATSOrganizeSubj)
	err = app.Queue.SubscribeOrganizeRequests(ctx, func(handlerCtx context.Context, req natsqueue.OrganizeRequest) error {
		organizeCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Minute)
		defer cancel()

		app.Metrics.StartFile()
		defer app.Metrics.FinishFile()
		outcome := app.Organizer.OrganizeFile(organizeCtx, req.Path, req.DryRun || cfg.DryRun)
		app.Logger.Info("organize_request_done", "file", req.Path, "status", outcome.Status, "run_id", outcome.RunID)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
