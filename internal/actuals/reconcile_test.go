package actuals

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/itaybar/barops/internal/domain/models"
	"github.com/itaybar/barops/internal/repository"
)

type fakeEventLookup struct {
	byNumber map[int64]models.Event
}

func (f *fakeEventLookup) ByNumber(_ context.Context, eventNumber int64) (models.Event, error) {
	event, ok := f.byNumber[eventNumber]
	if !ok {
		return models.Event{}, repository.ErrNotFound
	}
	return event, nil
}

type staticSource []HistoryRecord

func (s staticSource) Records(context.Context) ([]HistoryRecord, error) {
	return s, nil
}

type importerFixture struct {
	importer *Importer
	events   *fakeEventLookup
	shifts   *fakeShiftRepo
	general  *fakeGeneralRepo
	alcohol  *fakeAlcoholRepo
	actuals  *fakeActualRepo
}

func newImporterFixture() *importerFixture {
	f := &importerFixture{
		events:  &fakeEventLookup{byNumber: make(map[int64]models.Event)},
		shifts:  &fakeShiftRepo{shifts: make(map[primitive.ObjectID][]models.WageShift)},
		general: &fakeGeneralRepo{expenses: make(map[primitive.ObjectID][]models.GeneralExpense)},
		alcohol: &fakeAlcoholRepo{lines: make(map[primitive.ObjectID][]AlcoholLine)},
		actuals: newFakeActualRepo(),
	}
	lookups := &fakeLookupRepo{labels: map[string]string{}}
	f.importer = NewImporter(f.events, f.shifts, f.general, f.alcohol, f.actuals, lookups, nil)
	f.importer.now = func() time.Time { return time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *importerFixture) addEvent(number int64, price float64) models.Event {
	event := models.Event{
		ID:          primitive.NewObjectID(),
		EventNumber: number,
		GuestCount:  50,
		Price:       price,
		EventDate:   time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Status:      models.StatusDone,
	}
	f.events.byNumber[number] = event
	return event
}

func TestImporterRun_LiveFiguresWinOverHistory(t *testing.T) {
	f := newImporterFixture()
	event := f.addEvent(7, 9000)
	f.shifts.shifts[event.ID] = []models.WageShift{{Wage: 700}}

	summary, err := f.importer.Run(context.Background(), staticSource{{
		EventNumber: 7,
		TotalWages:  500,
		IceExpense:  60,
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)

	stored, err := f.actuals.FindByEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 700.0, stored.TotalWages)
	assert.Equal(t, 60.0, stored.IceExpense)
}

func TestImporterRun_HistoryFillsZeroLiveFields(t *testing.T) {
	f := newImporterFixture()
	event := f.addEvent(8, 0)

	summary, err := f.importer.Run(context.Background(), staticSource{{
		EventNumber:          8,
		TotalWages:           1200,
		TotalTips:            150,
		TotalGeneralExpenses: 300,
		TotalAlcoholExpenses: 450,
		IceExpense:           90,
		Revenue:              8000,
		CarType:              "transporter",
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)

	stored, err := f.actuals.FindByEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, stored.TotalWages)
	assert.Equal(t, 150.0, stored.TotalTips)
	assert.Equal(t, 300.0, stored.TotalGeneralExpenses)
	assert.Equal(t, 450.0, stored.TotalAlcoholExpenses)
	assert.Equal(t, 90.0, stored.IceExpense)
	// Event carries no price, so revenue falls back to history.
	assert.Equal(t, 8000.0, stored.PriceSnapshot)
	assert.Equal(t, 2040.0, stored.TotalExpenses)
	assert.Equal(t, "transporter", stored.CarType)
}

func TestImporterRun_IceAlwaysFromHistory(t *testing.T) {
	f := newImporterFixture()
	event := f.addEvent(9, 5000)

	// A prior snapshot with an operator-entered ice figure.
	_, err := f.actuals.Upsert(context.Background(), models.EventActual{Event: event.ID, IceExpense: 200})
	require.NoError(t, err)

	summary, err := f.importer.Run(context.Background(), staticSource{{
		EventNumber: 9,
		IceExpense:  75,
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	stored, err := f.actuals.FindByEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 75.0, stored.IceExpense)
}

func TestImporterRun_MissingEventsReported(t *testing.T) {
	f := newImporterFixture()
	f.addEvent(10, 4000)

	summary, err := f.importer.Run(context.Background(), staticSource{
		{EventNumber: 10, TotalWages: 100},
		{EventNumber: 999, TotalWages: 100},
		{EventNumber: 0, TotalWages: 100}, // blank row markers are skipped
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, []int64{999}, summary.MissingEvents)
}

func TestImporterRun_Idempotent(t *testing.T) {
	f := newImporterFixture()
	event := f.addEvent(11, 6000)

	source := staticSource{{EventNumber: 11, TotalWages: 800, IceExpense: 40}}

	first, err := f.importer.Run(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	firstStored, err := f.actuals.FindByEvent(context.Background(), event.ID)
	require.NoError(t, err)

	second, err := f.importer.Run(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Updated)

	secondStored, err := f.actuals.FindByEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, firstStored, secondStored)
}
