package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/foodcost/internal/config"
	"github.com/Simplici0/foodcost/internal/db"
	"github.com/Simplici0/foodcost/internal/formulation"
	"github.com/Simplici0/foodcost/internal/label"
	"github.com/Simplici0/foodcost/internal/logger"
	"github.com/Simplici0/foodcost/internal/migrations"
	"github.com/Simplici0/foodcost/internal/production"
	"github.com/Simplici0/foodcost/internal/reporting"
	"github.com/Simplici0/foodcost/internal/seed"
	"github.com/Simplici0/foodcost/internal/store"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type server struct {
	store      *store.Store
	engine     *formulation.Engine
	production *production.Service
	reporting  *reporting.Service
	labels     *label.Service
	margin     config.MarginPolicy
	location   *time.Location
	logger     *zap.Logger
	now        func() time.Time
}

func newServer(cfg config.Config, st *store.Store, baseLogger *zap.Logger) *server {
	engine := formulation.NewEngine(st)
	printer := label.NewPrinter(cfg.PrinterAddr, cfg.PrinterTimeout, cfg.LabelDir, logger.Named(baseLogger, "label.printer"))

	return &server{
		store:      st,
		engine:     engine,
		production: production.NewService(st, engine, logger.Named(baseLogger, "svc.production")),
		reporting:  reporting.NewService(st, logger.Named(baseLogger, "svc.reporting")),
		labels:     label.NewService(st, printer, cfg.CurrencySymbol),
		margin:     cfg.Margin,
		location:   cfg.Location(),
		logger:     logger.Named(baseLogger, "http"),
		now:        time.Now,
	}
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		baseLogger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := migrations.Up(ctx, database); err != nil {
		baseLogger.Fatal("failed to run database migrations", zap.Error(err))
	}

	if cfg.SeedDemo {
		stats, err := seed.Run(ctx, database)
		if err != nil {
			baseLogger.Fatal("failed to seed demo data", zap.Error(err))
		}
		baseLogger.Info("demo data seeded", zap.Int("inserts", stats.Inserts))
	}

	srv := newServer(cfg, store.New(database), baseLogger)

	if cfg.ReportCron != "" {
		sched := reporting.NewScheduler(cfg.ReportCron, cfg.Location(), srv.reporting, baseLogger.Named("scheduler"))
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
