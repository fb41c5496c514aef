package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/itaybar/barops/internal/actuals"
	"github.com/itaybar/barops/internal/config"
	"github.com/itaybar/barops/internal/history"
	"github.com/itaybar/barops/internal/repository/mongodb"
	"github.com/itaybar/barops/pkg/logger"
)

func main() {
	csvPath := flag.String("csv", "", "path to a historical bookkeeping CSV export")
	sheetRange := flag.String("sheet-range", "", "spreadsheet range to read history from, e.g. 'History!A1:H500'")
	flag.Parse()

	if (*csvPath == "") == (*sheetRange == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -csv or -sheet-range must be provided")
		os.Exit(2)
	}

	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var source actuals.HistorySource
	if *csvPath != "" {
		source = history.NewCSVSource(*csvPath)
	} else {
		if err := cfg.ValidateSheets(); err != nil {
			baseLogger.Fatal("sheets configuration incomplete", zap.Error(err))
		}
		sheetSource, err := history.NewSheetSource(ctx, cfg.Sheets, *sheetRange, baseLogger.Named("history.sheet"))
		if err != nil {
			baseLogger.Fatal("failed to init sheet source", zap.Error(err))
		}
		source = sheetSource
	}

	store, err := mongodb.NewStore(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := store.EnsureIndexes(ctx); err != nil {
		baseLogger.Fatal("failed to ensure mongodb indexes", zap.Error(err))
	}

	importer := actuals.NewImporter(
		mongodb.NewEventRepo(store),
		mongodb.NewWageShiftRepo(store),
		mongodb.NewGeneralExpenseRepo(store),
		mongodb.NewAlcoholExpenseRepo(store),
		mongodb.NewActualRepo(store),
		mongodb.NewLookupRepo(store),
		baseLogger.Named("importer"),
	)

	summary, err := importer.Run(ctx, source)
	if err != nil {
		baseLogger.Fatal("reconciliation failed", zap.Error(err))
	}

	baseLogger.Info("reconciliation complete",
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int64s("missing_events", summary.MissingEvents))
}
