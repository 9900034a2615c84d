// Package main provides the spellbench server binary: the analysis engine
// behind a WebSocket host boundary, with PostgreSQL-backed drafts, presets,
// pins, and bundle bookkeeping.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/spellbench/internal/bundles"
	"github.com/cory-johannsen/spellbench/internal/config"
	"github.com/cory-johannsen/spellbench/internal/host"
	"github.com/cory-johannsen/spellbench/internal/observability"
	"github.com/cory-johannsen/spellbench/internal/scripting"
	"github.com/cory-johannsen/spellbench/internal/server"
	"github.com/cory-johannsen/spellbench/internal/spell/eval"
	"github.com/cory-johannsen/spellbench/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	bundlesDir := flag.String("bundles", "", "bundle directory override; empty uses the configured one")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting spellbench server",
		zap.String("http_addr", cfg.HTTP.Addr()),
	)

	// Load bundled collections.
	bundleStart := time.Now()
	dir := cfg.Bundles.Dir
	if *bundlesDir != "" {
		dir = *bundlesDir
	}
	library, err := bundles.Load(dir, bundles.Options{
		InstructionLimit: scripting.DefaultInstructionLimit,
		ScriptTimeout:    cfg.Bundles.ScriptTimeout,
	}, logger)
	if err != nil {
		logger.Fatal("loading bundles", zap.Error(err))
	}
	logger.Info("bundles loaded",
		zap.Int("count", len(library.Names())),
		zap.Duration("elapsed", time.Since(bundleStart)),
	)

	// Connect to PostgreSQL for host-owned state.
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	stores := host.Stores{
		Drafts:  postgres.NewDraftRepository(pool.DB()),
		Presets: postgres.NewPresetRepository(pool.DB()),
		Pins:    postgres.NewPinRepository(pool.DB()),
		Seen:    postgres.NewSeenBundleRepository(pool.DB()),
		Params:  postgres.NewParameterValueRepository(pool.DB()),
	}

	limits := eval.Limits{
		MaxDice:    cfg.Engine.MaxDice,
		MaxSupport: cfg.Engine.MaxSupport,
	}
	hostSrv := host.NewServer(limits, stores, library, logger)

	httpSrv := &http.Server{
		Handler:     hostSrv.Handler(),
		ReadTimeout: cfg.HTTP.ReadTimeout,
	}

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("http", &server.FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", cfg.HTTP.Addr())
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.HTTP.Addr(), err)
			}
			logger.Info("host listening",
				zap.String("addr", lis.Addr().String()),
			)
			if err := httpSrv.Serve(lis); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
		StopFn: func() {
			shutdownCtx := ctx
			if cfg.HTTP.ShutdownGrace > 0 {
				var cancel context.CancelFunc
				shutdownCtx, cancel = context.WithTimeout(ctx, cfg.HTTP.ShutdownGrace)
				defer cancel()
			}
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http shutdown incomplete", zap.Error(err))
			}
			hostSrv.Shutdown()
		},
	})

	logger.Info("spellbench server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("http_addr", cfg.HTTP.Addr()),
	)

	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			for {
				time.Sleep(30 * time.Second)
				if err := pool.Health(ctx, 5*time.Second); err != nil {
					logger.Warn("database health check failed", zap.Error(err))
				}
			}
		},
		StopFn: func() {
			pool.Close()
		},
	})

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
