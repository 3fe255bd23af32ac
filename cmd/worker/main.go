package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/govreg/doccompass/internal/bootstrap"
	"github.com/govreg/doccompass/internal/config"
	"github.com/govreg/doccompass/internal/observability/logging"
	"github.com/govreg/doccompass/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{WithQueue: true})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	pipeline := metrics.NewPipelineMetrics("worker")
	mux := http.NewServeMux()
	mux.Handle("/metrics", pipeline.Handler())
	metricsServer := &http.Server{
		Addr:         ":" + cfg.WorkerMetricsPort,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server error: %v", err)
		}
	}()

	runsPerMinute := cfg.WorkerRunsPerMinute
	if runsPerMinute <= 0 {
		runsPerMinute = 1
	}
	limiter := rate.NewLimiter(rate.Limit(float64(runsPerMinute)/60.0), 1)

	logger.Info("worker_subscribed", "subject", cfg.NATSRequestSubject)
	err = app.Queue.SubscribeReconcileRequests(ctx, func(handlerCtx context.Context, scope string) error {
		if err := limiter.Wait(handlerCtx); err != nil {
			return err
		}

		runCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Minute)
		defer cancel()

		pipeline.StartRun()
		started := time.Now()
		rs, err := app.ReconcileUC.Reconcile(runCtx, splitScope(scope))
		pipeline.FinishRun("worker", time.Since(started), err)
		if err != nil {
			return err
		}
		pipeline.ObserveResultSet("worker", rs)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics_shutdown_error", "error", err)
	}
}

// splitScope parses the request payload: empty means every department,
// otherwise a comma-separated list of department codes.
func splitScope(scope string) []string {
	var out []string
	for _, part := range strings.Split(scope, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
