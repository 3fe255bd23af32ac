package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/govreg/doccompass/internal/bootstrap"
	"github.com/govreg/doccompass/internal/config"
	"github.com/govreg/doccompass/internal/observability/logging"
)

func main() {
	departments := flag.String("departments", "", "comma-separated department codes (empty runs all)")
	enqueue := flag.Bool("enqueue", false, "publish a reconcile request for a worker instead of running locally")
	lastRun := flag.Bool("last-run", false, "print the latest persisted run and exit")
	flag.Parse()

	cfg := config.Load()
	logger := logging.NewTextLogger("reconciler", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{WithQueue: *enqueue})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if *lastRun {
		run, err := app.Repo.LatestRun(ctx)
		if err != nil {
			logger.Error("last_run_lookup_failed", "error", err)
			os.Exit(1)
		}
		logger.Info("last_run",
			"run_id", run.ID,
			"started_at", run.StartedAt,
			"finished_at", run.FinishedAt,
			"departments", strings.Join(run.Departments, ","),
		)
		return
	}

	if *enqueue {
		if err := app.Queue.PublishReconcileRequest(ctx, *departments); err != nil {
			logger.Error("enqueue_failed", "error", err)
			os.Exit(1)
		}
		logger.Info("reconcile_requested", "scope", *departments)
		return
	}

	rs, err := app.ReconcileUC.Reconcile(ctx, splitCodes(*departments))
	if err != nil {
		logger.Error("reconcile_failed", "error", err)
		os.Exit(1)
	}

	logger.Info("reconcile_complete",
		"run_id", rs.Run.ID,
		"departments", len(rs.Departments),
		"results", len(rs.Results),
		"conflicts", len(rs.Conflicts),
		"missing", len(rs.Missing),
		"needs_review", len(rs.NeedsReview),
		"readiness", rs.Global.ReadinessScore,
	)
}

func splitCodes(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
