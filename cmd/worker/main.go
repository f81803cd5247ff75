package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deeplearners/fashion-assistant/internal/bootstrap"
	"github.com/deeplearners/fashion-assistant/internal/config"
)

const serviceName = "worker"

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, serviceName)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: app.WorkerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Error("worker metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	app.Logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeCatalogUploaded(ctx, func(handlerCtx context.Context, jobID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 15*time.Minute)
		defer cancel()

		if job, lookupErr := app.Jobs.GetJobByID(processCtx, jobID); lookupErr == nil {
			app.WorkerMetrics.ObserveQueueLag(serviceName, time.Since(job.CreatedAt))
		}

		app.WorkerMetrics.StartJob()
		start := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, jobID)
		app.WorkerMetrics.FinishJob(serviceName, time.Since(start), processErr)

		if processErr != nil {
			app.Logger.Error("catalog job failed", "job_id", jobID, "error", processErr)
			return processErr
		}
		if job, lookupErr := app.Jobs.GetJobByID(processCtx, jobID); lookupErr == nil {
			app.WorkerMetrics.AddProductsIndexed(serviceName, job.ProductCount)
			app.Logger.Info("catalog job ready", "job_id", jobID, "products", job.ProductCount)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
