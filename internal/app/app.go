// Package app wires the crawl session: the console reporter, secondary
// observers, the colly engine and the optional metrics endpoint.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/crawl-status-check/internal/config"
	"github.com/JakeFAU/crawl-status-check/internal/console"
	collyfetcher "github.com/JakeFAU/crawl-status-check/internal/fetcher/colly"
	"github.com/JakeFAU/crawl-status-check/internal/id/uuid"
	"github.com/JakeFAU/crawl-status-check/internal/metrics"
	"github.com/JakeFAU/crawl-status-check/internal/observer"
	"github.com/JakeFAU/crawl-status-check/internal/observer/sinks"
	"github.com/JakeFAU/crawl-status-check/internal/reporter"
)

// App holds the services for exactly one crawl session.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	sessionID string
	registry  *prometheus.Registry
	reporter  *reporter.Reporter
	engine    *collyfetcher.Engine
}

// New builds an App that prints its live report to out.
func New(cfg config.Config, out io.Writer, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sessionID, err := uuid.New().NewID()
	if err != nil {
		return nil, fmt.Errorf("create session id: %w", err)
	}
	logger = logger.With(zap.String("session_id", sessionID))

	registry := metrics.NewRegistry()
	promObserver, err := sinks.NewPrometheusObserver(registry)
	if err != nil {
		return nil, fmt.Errorf("init metrics observer: %w", err)
	}

	rep := reporter.New(console.New(out), reporter.Options{
		ReportFile: cfg.Report.File,
		Overwrite:  cfg.Report.Overwrite,
		Logger:     logger.Named("reporter"),
	})
	observers := []observer.Observer{rep, promObserver}
	if cfg.Logging.Outcomes {
		observers = append(observers, sinks.NewLogObserver(logger.Named("outcomes")))
	}

	engine := collyfetcher.New(collyfetcher.Config{
		UserAgent:       cfg.Crawl.UserAgent,
		Timeout:         cfg.Crawl.Timeout,
		Concurrency:     cfg.Crawl.Concurrency,
		MaxDepth:        cfg.Crawl.MaxDepth,
		InternalOnly:    cfg.Crawl.InternalOnly,
		FollowRedirects: cfg.Crawl.FollowRedirects,
	}, observer.Multi(observers...), logger.Named("engine"))

	return &App{
		cfg:       cfg,
		logger:    logger,
		sessionID: sessionID,
		registry:  registry,
		reporter:  rep,
		engine:    engine,
	}, nil
}

// SessionID identifies this crawl in logs.
func (a *App) SessionID() string {
	return a.sessionID
}

// Reporter exposes the console reporter, mainly for inspection after Run.
func (a *App) Reporter() *reporter.Reporter {
	return a.reporter
}

// Run crawls seeds and, when configured, serves metrics until the crawl ends.
func (a *App) Run(ctx context.Context, seeds []string) error {
	a.logger.Info("crawl started", zap.Strings("seeds", seeds))
	g, gctx := errgroup.WithContext(ctx)

	crawlCtx, crawlDone := context.WithCancel(gctx)
	defer crawlDone()
	serveCtx, stopServe := context.WithCancel(context.Background())
	defer stopServe()

	if addr := a.cfg.Metrics.ListenAddr; addr != "" {
		g.Go(func() error {
			return metrics.Serve(serveCtx, addr, metrics.NewRouter(a.registry), a.logger.Named("metrics"))
		})
	}
	g.Go(func() error {
		defer stopServe()
		return a.engine.Run(crawlCtx, seeds)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("crawl completed")
	return nil
}

// Close flushes the logger.
func (a *App) Close() {
	// Sync on stderr returns EINVAL on some platforms; nothing to do about it.
	_ = a.logger.Sync()
}
