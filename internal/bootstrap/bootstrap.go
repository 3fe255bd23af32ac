package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/govreg/doccompass/internal/config"
	"github.com/govreg/doccompass/internal/core/ports"
	"github.com/govreg/doccompass/internal/core/usecase"
	"github.com/govreg/doccompass/internal/infrastructure/queue/nats"
	"github.com/govreg/doccompass/internal/infrastructure/report/excel"
	"github.com/govreg/doccompass/internal/infrastructure/repository/postgres"
	"github.com/govreg/doccompass/internal/infrastructure/resilience"
	"github.com/govreg/doccompass/internal/infrastructure/scanner/localfs"
	"github.com/govreg/doccompass/internal/infrastructure/taxonomy/yamlcatalog"
)

// Options selects the optional pieces of the wiring. The one-shot reconciler
// runs without a queue; the worker subscribes to one.
type Options struct {
	WithQueue bool
}

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue       ports.MessageQueue
	Repo        ports.ResultRepository
	ReconcileUC ports.Reconciler

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	executor := resilience.NewExecutorWithLogger(resilience.DefaultConfig(), logger)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewResultRepositoryWithExecutor(db, executor)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	departmentsFile := cfg.DepartmentsFile
	if departmentsFile == "" {
		departmentsFile = filepath.Join(cfg.CatalogDir, "departments.yaml")
	}
	departments, err := yamlcatalog.LoadDepartments(departmentsFile)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load departments: %w", err)
	}

	taxonomy := yamlcatalog.New(cfg.CatalogDir)
	scanner := localfs.New(logger, localfs.WithSkipDirs(cfg.ReportSkipDirs))
	report := excel.NewWriter()

	var queue ports.MessageQueue
	closeQueue := func() {}
	if opts.WithQueue {
		q, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSRequestSubject, cfg.NATSCompletedSubject, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		queue = q
		closeQueue = q.Close
	}

	reconcileUC := usecase.NewReconcileUseCase(taxonomy, scanner, repo, report, queue, logger, usecase.Options{
		Departments:     departments,
		EvidenceRoots:   cfg.EvidenceRoots,
		ReportPath:      cfg.ReportPath,
		FuzzyThreshold:  cfg.FuzzyThreshold,
		FreshnessWindow: time.Duration(cfg.FreshnessWindowDays) * 24 * time.Hour,
		Workers:         cfg.MatchWorkers,
	})

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:       queue,
		Repo:        repo,
		ReconcileUC: reconcileUC,

		closeFn: func() {
			closeQueue()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
