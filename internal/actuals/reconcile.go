package actuals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/itaybar/barops/internal/domain/models"
	"github.com/itaybar/barops/internal/repository"
)

// HistoryRecord is one row of historical bookkeeping, keyed by event
// number. Figures come from a CSV export or a spreadsheet range.
type HistoryRecord struct {
	EventNumber          int64
	TotalWages           float64
	TotalTips            float64
	TotalGeneralExpenses float64
	TotalAlcoholExpenses float64
	IceExpense           float64
	Revenue              float64
	CarType              string
}

// HistorySource yields historical records for reconciliation.
type HistorySource interface {
	Records(ctx context.Context) ([]HistoryRecord, error)
}

// ImportSummary reports the outcome of one reconciliation run.
type ImportSummary struct {
	Created       int
	Updated       int
	MissingEvents []int64
}

// EventLookup resolves events by their sequential business number.
type EventLookup interface {
	ByNumber(ctx context.Context, eventNumber int64) (models.Event, error)
}

// Importer backfills event_actuals from historical figures. Per
// aggregatable field it prefers the live collection sum and falls back
// to the historical figure only when the live sum is exactly zero; ice
// always comes from history, and price falls back to historical revenue
// when the event carries none. Idempotent: the snapshot write is the
// same upsert the live path uses.
type Importer struct {
	events  EventLookup
	shifts  WageShiftRepository
	general GeneralExpenseRepository
	alcohol AlcoholExpenseRepository
	actuals ActualRepository
	lookups LookupRepository
	logger  *zap.Logger

	now func() time.Time
}

// NewImporter wires a reconciliation importer.
func NewImporter(
	events EventLookup,
	shifts WageShiftRepository,
	general GeneralExpenseRepository,
	alcohol AlcoholExpenseRepository,
	actualRepo ActualRepository,
	lookups LookupRepository,
	logger *zap.Logger,
) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		events:  events,
		shifts:  shifts,
		general: general,
		alcohol: alcohol,
		actuals: actualRepo,
		lookups: lookups,
		logger:  logger,
		now:     time.Now,
	}
}

// Run merges every record of the source into stored snapshots.
func (im *Importer) Run(ctx context.Context, source HistorySource) (ImportSummary, error) {
	records, err := source.Records(ctx)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("load history records: %w", err)
	}

	var summary ImportSummary
	for _, record := range records {
		if record.EventNumber == 0 {
			continue
		}

		event, err := im.events.ByNumber(ctx, record.EventNumber)
		if errors.Is(err, repository.ErrNotFound) {
			summary.MissingEvents = append(summary.MissingEvents, record.EventNumber)
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("load event #%d: %w", record.EventNumber, err)
		}

		created, err := im.reconcileEvent(ctx, event, record)
		if err != nil {
			return summary, fmt.Errorf("reconcile event #%d: %w", record.EventNumber, err)
		}
		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	im.logger.Info("reconciliation finished",
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("missing_events", len(summary.MissingEvents)))

	return summary, nil
}

func (im *Importer) reconcileEvent(ctx context.Context, event models.Event, record HistoryRecord) (created bool, err error) {
	shifts, err := im.shifts.FindByEvent(ctx, event.ID)
	if err != nil {
		return false, fmt.Errorf("load wage shifts: %w", err)
	}

	general, err := im.general.FindByEvent(ctx, event.ID)
	if err != nil {
		return false, fmt.Errorf("load general expenses: %w", err)
	}

	alcohol, err := im.alcohol.LinesByEvent(ctx, event.ID)
	if err != nil {
		return false, fmt.Errorf("load alcohol expenses: %w", err)
	}

	existed := true
	if _, err := im.actuals.FindByEvent(ctx, event.ID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return false, fmt.Errorf("load prior actual: %w", err)
		}
		existed = false
	}

	live := sumRawRecords(ComputeInput{
		WageShifts:      shifts,
		GeneralExpenses: general,
		AlcoholLines:    alcohol,
	})

	merged := rawTotals{
		wages:   preferLive(live.wages, record.TotalWages),
		tips:    preferLive(live.tips, record.TotalTips),
		general: preferLive(live.general, record.TotalGeneralExpenses),
		alcohol: preferLive(live.alcohol, record.TotalAlcoholExpenses),
		// Ice is never computed from live collections.
		ice:   record.IceExpense,
		price: preferLive(event.Price, record.Revenue),
	}

	snapshot := derive(event, merged, len(shifts),
		im.label(ctx, models.LookupEventType, event.EventType),
		im.label(ctx, models.LookupMenuType, event.MenuType))
	snapshot.CarType = record.CarType
	snapshot.LastSaved = im.now()

	if _, err := im.actuals.Upsert(ctx, snapshot); err != nil {
		return false, fmt.Errorf("upsert actual: %w", err)
	}

	return !existed, nil
}

// preferLive returns the live aggregate unless it is exactly zero, in
// which case the historical figure wins.
func preferLive(live, history float64) float64 {
	if live > 0 {
		return live
	}
	return history
}

func (im *Importer) label(ctx context.Context, category, code string) string {
	if code == "" {
		return ""
	}
	label, err := im.lookups.Label(ctx, category, code)
	if err != nil {
		return code
	}
	return label
}
