package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/itaybar/barops/internal/actuals"
	"github.com/itaybar/barops/internal/config"
	"github.com/itaybar/barops/internal/repository/mongodb"
	"github.com/itaybar/barops/internal/repository/rediscache"
	"github.com/itaybar/barops/internal/scheduler"
	"github.com/itaybar/barops/internal/server/handlers"
	"github.com/itaybar/barops/internal/server/router"
	eventsvc "github.com/itaybar/barops/internal/service/events"
	"github.com/itaybar/barops/pkg/clients/brevo"
	"github.com/itaybar/barops/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := store.EnsureIndexes(context.Background()); err != nil {
		baseLogger.Fatal("failed to ensure mongodb indexes", zap.Error(err))
	}

	eventRepo := mongodb.NewEventRepo(store)
	actualRepo := mongodb.NewActualRepo(store)
	shiftRepo := mongodb.NewWageShiftRepo(store)
	generalRepo := mongodb.NewGeneralExpenseRepo(store)
	alcoholRepo := mongodb.NewAlcoholExpenseRepo(store)
	productRepo := mongodb.NewInventoryProductRepo(store)
	customerRepo := mongodb.NewCustomerRepo(store)
	leadRepo := mongodb.NewLeadRepo(store)
	lookupRepo := mongodb.NewLookupRepo(store)

	if err := lookupRepo.EnsureDefaults(context.Background()); err != nil {
		baseLogger.Fatal("failed to seed lookup tables", zap.Error(err))
	}

	var listCache actuals.ListCache
	if cfg.Redis.Addr != "" {
		cache, err := rediscache.New(context.Background(), cfg.Redis)
		if err != nil {
			baseLogger.Warn("redis unavailable, actuals list cache disabled", zap.Error(err))
		} else {
			defer func() { _ = cache.Close() }()
			listCache = cache
			baseLogger.Info("actuals list cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	var crmClient actuals.CRMSync
	if cfg.Brevo.Enabled {
		crmClient = brevo.NewClient(cfg.Brevo)
		baseLogger.Info("brevo contact sync enabled")
	} else {
		baseLogger.Info("brevo contact sync disabled")
	}

	actualsSvc := actuals.NewService(
		eventRepo,
		shiftRepo,
		generalRepo,
		alcoholRepo,
		actualRepo,
		customerRepo,
		leadRepo,
		lookupRepo,
		crmClient,
		listCache,
		baseLogger.Named("svc.actuals"),
	)

	cascades := []eventsvc.CascadeStore{shiftRepo, generalRepo, alcoholRepo}
	eventsSvc := eventsvc.NewService(
		eventRepo,
		lookupRepo,
		leadRepo,
		actualsSvc,
		cascades,
		cfg.Maintenance.ExpireAfterDays,
		baseLogger.Named("svc.events"),
	)

	engine := router.New(router.Handlers{
		Events:    handlers.NewEventsHandler(eventsSvc, baseLogger.Named("handlers.events")),
		Actuals:   handlers.NewActualsHandler(actualsSvc, baseLogger.Named("handlers.actuals")),
		Records:   handlers.NewRecordsHandler(shiftRepo, generalRepo, alcoholRepo, productRepo, baseLogger.Named("handlers.records")),
		Directory: handlers.NewDirectoryHandler(customerRepo, leadRepo, productRepo, lookupRepo, baseLogger.Named("handlers.directory")),
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Maintenance, eventsSvc, actualsSvc, baseLogger.Named("scheduler"))
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
