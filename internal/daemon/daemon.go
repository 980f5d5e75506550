package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cfdaily/cfdaily/internal/api"
	"github.com/cfdaily/cfdaily/internal/app/catalog"
	"github.com/cfdaily/cfdaily/internal/app/cycle"
	"github.com/cfdaily/cfdaily/internal/app/reconcile"
	"github.com/cfdaily/cfdaily/internal/app/streak"
	"github.com/cfdaily/cfdaily/internal/health"
	"github.com/cfdaily/cfdaily/internal/infra/identity"
	"github.com/cfdaily/cfdaily/internal/infra/judge"
	_ "github.com/cfdaily/cfdaily/internal/infra/metrics" // Register Prometheus metrics
	"github.com/cfdaily/cfdaily/internal/infra/sqlite"
	"github.com/cfdaily/cfdaily/internal/infra/timer"
)

// staleCacheAge is how old a per-day cache entry may get before the
// sweep removes it. Entries for past days are never read again.
const staleCacheAge = 24 * time.Hour

// Daemon is the core cfdaily runtime. It wires together all services.
type Daemon struct {
	Config Config
	DB     *sqlite.DB

	Judge        *judge.Client
	Catalog      *catalog.Cache
	Reconciler   *reconcile.Reconciler
	Ledger       *streak.Ledger
	Identities   *identity.Manager
	Orchestrator *cycle.Orchestrator
	Timer        *timer.Service
	Health       *health.Checker
	Server       *api.Server

	cancel context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	home := cfdailyHome()

	db, err := sqlite.Open(home)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	jc := judge.NewClient(judge.Config{
		BaseURL:  cfg.Judge.BaseURL,
		Timeout:  parseDuration(cfg.Judge.Timeout, 10*time.Second),
		Attempts: cfg.Judge.RetryAttempts,
	})

	bounds := catalog.Bounds{
		MinRating:     cfg.Problems.MinRating,
		MaxRating:     cfg.Problems.MaxRating,
		BufferLow:     cfg.Problems.BufferLow,
		BufferHigh:    cfg.Problems.BufferHigh,
		DefaultRating: cfg.Problems.DefaultRating,
	}
	cat := catalog.New(db, jc, bounds)

	window := cfg.Judge.SubmissionWindow
	if window <= 0 {
		window = reconcile.DefaultLookback
	}
	rec := reconcile.New(jc, window)

	led := streak.NewLedger(db, cfg.Streak.WalkCeiling)
	ids := identity.NewManager(db, jc)
	orch := cycle.New(cat, rec, led, ids)

	times, err := timer.ParseTimes(cfg.Streak.CheckTimes)
	if err != nil {
		return nil, fmt.Errorf("parse check_times: %w", err)
	}

	d := &Daemon{
		Config:       cfg,
		DB:           db,
		Judge:        jc,
		Catalog:      cat,
		Reconciler:   rec,
		Ledger:       led,
		Identities:   ids,
		Orchestrator: orch,
		Health:       health.NewChecker(db, home),
	}
	d.Timer = timer.New(times, func(ctx context.Context) {
		d.Orchestrator.RunCycle(ctx, cycle.TriggerTimer)
	})

	d.Server = api.NewServer(orch, led, ids, d.Health)
	if cfg.Telemetry.Prometheus {
		d.Server.EnableMetrics()
	}

	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Startup cycle: refresh selection and streaks before serving, then
	// drop yesterday's cache entries.
	d.Orchestrator.RunCycle(ctx, cycle.TriggerStartup)
	d.Catalog.SweepStale(staleCacheAge)

	go d.Health.Run(ctx)
	go d.Timer.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	log.Printf("[daemon] serving on http://%s", addr)
	if d.Config.Telemetry.Prometheus {
		log.Printf("[daemon] metrics at http://%s/metrics", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
