package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/dairyops/coop/internal/config"
	"github.com/dairyops/coop/internal/repository/mongodb"
	"github.com/dairyops/coop/internal/repository/sheets"
	"github.com/dairyops/coop/internal/repository/store"
	"github.com/dairyops/coop/internal/scheduler"
	"github.com/dairyops/coop/internal/server/handlers"
	"github.com/dairyops/coop/internal/server/router"
	collectionsvc "github.com/dairyops/coop/internal/service/collections"
	periodsvc "github.com/dairyops/coop/internal/service/periods"
	reportsvc "github.com/dairyops/coop/internal/service/reports"
	"github.com/dairyops/coop/pkg/clients/pricing"
	"github.com/dairyops/coop/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	storeClient := store.NewClient(cfg.Store, baseLogger.Named("repo.store"))

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	// Sheet export is optional; the nightly snapshot still lands in mongo
	// without it.
	var exporter sheets.Exporter
	if cfg.Sheets.CredentialsPath != "" {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		baseLogger.Info("sheet export enabled", zap.String("range", cfg.Sheets.ReportRange))
	} else {
		baseLogger.Warn("sheets credentials missing, report export disabled")
	}

	var pricingClient pricing.Client
	if cfg.Pricing.BaseURL != "" {
		pricingClient = pricing.NewClient(cfg.Pricing)
		baseLogger.Info("pricing client enabled")
	} else {
		baseLogger.Warn("pricing base url missing, recalculation disabled")
	}

	periodsSvc := periodsvc.NewService(storeClient, baseLogger.Named("svc.periods"))
	collectionsSvc := collectionsvc.NewService(storeClient, pricingClient, cfg.Milk, baseLogger.Named("svc.collections"))
	reportsSvc := reportsvc.NewService(storeClient, baseLogger.Named("svc.reports"))

	periodsHandler := handlers.NewPeriodsHandler(periodsSvc, baseLogger.Named("handlers.periods"))
	collectionsHandler := handlers.NewCollectionsHandler(collectionsSvc, baseLogger.Named("handlers.collections"))
	reportsHandler := handlers.NewReportsHandler(reportsSvc, mongoRepo, baseLogger.Named("handlers.reports"))
	engine := router.New(periodsHandler, collectionsHandler, reportsHandler, baseLogger.Named("router"))

	// Initialize Scheduler
	sched := scheduler.NewScheduler(*cfg, reportsSvc, mongoRepo, exporter, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
