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

// Map-backed fakes for the collaborator interfaces.

type fakeEventRepo struct {
	events map[primitive.ObjectID]models.Event
}

func (f *fakeEventRepo) ByID(_ context.Context, id primitive.ObjectID) (models.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return models.Event{}, repository.ErrNotFound
	}
	return event, nil
}

type fakeShiftRepo struct {
	shifts map[primitive.ObjectID][]models.WageShift
}

func (f *fakeShiftRepo) FindByEvent(_ context.Context, eventID primitive.ObjectID) ([]models.WageShift, error) {
	return f.shifts[eventID], nil
}

type fakeGeneralRepo struct {
	expenses map[primitive.ObjectID][]models.GeneralExpense
}

func (f *fakeGeneralRepo) FindByEvent(_ context.Context, eventID primitive.ObjectID) ([]models.GeneralExpense, error) {
	return f.expenses[eventID], nil
}

type fakeAlcoholRepo struct {
	lines map[primitive.ObjectID][]AlcoholLine
}

func (f *fakeAlcoholRepo) LinesByEvent(_ context.Context, eventID primitive.ObjectID) ([]AlcoholLine, error) {
	return f.lines[eventID], nil
}

type fakeActualRepo struct {
	byEvent map[primitive.ObjectID]models.EventActual
}

func newFakeActualRepo() *fakeActualRepo {
	return &fakeActualRepo{byEvent: make(map[primitive.ObjectID]models.EventActual)}
}

func (f *fakeActualRepo) FindByEvent(_ context.Context, eventID primitive.ObjectID) (models.EventActual, error) {
	actual, ok := f.byEvent[eventID]
	if !ok {
		return models.EventActual{}, repository.ErrNotFound
	}
	return actual, nil
}

func (f *fakeActualRepo) All(_ context.Context) ([]models.EventActual, error) {
	out := make([]models.EventActual, 0, len(f.byEvent))
	for _, actual := range f.byEvent {
		out = append(out, actual)
	}
	return out, nil
}

func (f *fakeActualRepo) Upsert(_ context.Context, actual models.EventActual) (models.EventActual, error) {
	existing, ok := f.byEvent[actual.Event]
	if ok {
		actual.ID = existing.ID
	} else {
		actual.ID = primitive.NewObjectID()
	}
	f.byEvent[actual.Event] = actual
	return actual, nil
}

func (f *fakeActualRepo) SetIce(_ context.Context, eventID primitive.ObjectID, amount float64) (models.EventActual, error) {
	actual, ok := f.byEvent[eventID]
	if !ok {
		actual = models.EventActual{ID: primitive.NewObjectID(), Event: eventID}
	}
	actual.IceExpense = amount
	f.byEvent[eventID] = actual
	return actual, nil
}

func (f *fakeActualRepo) DeleteByEvent(_ context.Context, eventID primitive.ObjectID) (bool, error) {
	_, ok := f.byEvent[eventID]
	delete(f.byEvent, eventID)
	return ok, nil
}

func (f *fakeActualRepo) DeleteByIDs(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	var deleted int64
	for _, id := range ids {
		for event, actual := range f.byEvent {
			if actual.ID == id {
				delete(f.byEvent, event)
				deleted++
			}
		}
	}
	return deleted, nil
}

type fakeCustomerRepo struct {
	customers map[primitive.ObjectID]models.Customer
}

func (f *fakeCustomerRepo) ByID(_ context.Context, id primitive.ObjectID) (models.Customer, error) {
	customer, ok := f.customers[id]
	if !ok {
		return models.Customer{}, repository.ErrNotFound
	}
	return customer, nil
}

func (f *fakeCustomerRepo) SetPaying(_ context.Context, id primitive.ObjectID, paying bool) error {
	customer, ok := f.customers[id]
	if !ok {
		return repository.ErrNotFound
	}
	customer.PayingCustomer = paying
	f.customers[id] = customer
	return nil
}

type fakeLeadRepo struct {
	leads map[primitive.ObjectID]models.Lead
}

func (f *fakeLeadRepo) FindByEvent(_ context.Context, eventID primitive.ObjectID) (models.Lead, error) {
	for _, lead := range f.leads {
		if lead.RelatedEvent != nil && *lead.RelatedEvent == eventID {
			return lead, nil
		}
	}
	return models.Lead{}, repository.ErrNotFound
}

func (f *fakeLeadRepo) SetStatus(_ context.Context, id primitive.ObjectID, status string) error {
	lead, ok := f.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	lead.Status = status
	f.leads[id] = lead
	return nil
}

type fakeLookupRepo struct {
	labels map[string]string
}

func (f *fakeLookupRepo) Label(_ context.Context, category, code string) (string, error) {
	label, ok := f.labels[category+"/"+code]
	if !ok {
		return "", repository.ErrNotFound
	}
	return label, nil
}

type recordingCRM struct {
	calls []struct {
		Email  string
		Paying bool
	}
}

func (r *recordingCRM) UpsertContact(_ context.Context, email string, paying bool) error {
	r.calls = append(r.calls, struct {
		Email  string
		Paying bool
	}{email, paying})
	return nil
}

type fixture struct {
	svc       *Service
	events    *fakeEventRepo
	shifts    *fakeShiftRepo
	general   *fakeGeneralRepo
	alcohol   *fakeAlcoholRepo
	actuals   *fakeActualRepo
	customers *fakeCustomerRepo
	leads     *fakeLeadRepo
	crm       *recordingCRM
}

func newFixture() *fixture {
	f := &fixture{
		events:    &fakeEventRepo{events: make(map[primitive.ObjectID]models.Event)},
		shifts:    &fakeShiftRepo{shifts: make(map[primitive.ObjectID][]models.WageShift)},
		general:   &fakeGeneralRepo{expenses: make(map[primitive.ObjectID][]models.GeneralExpense)},
		alcohol:   &fakeAlcoholRepo{lines: make(map[primitive.ObjectID][]AlcoholLine)},
		actuals:   newFakeActualRepo(),
		customers: &fakeCustomerRepo{customers: make(map[primitive.ObjectID]models.Customer)},
		leads:     &fakeLeadRepo{leads: make(map[primitive.ObjectID]models.Lead)},
		crm:       &recordingCRM{},
	}
	lookups := &fakeLookupRepo{labels: map[string]string{
		models.LookupEventType + "/PRIVATE": "Private",
		models.LookupMenuType + "/CLASSIC":  "Classic",
	}}
	f.svc = NewService(f.events, f.shifts, f.general, f.alcohol, f.actuals,
		f.customers, f.leads, lookups, f.crm, nil, nil)
	f.svc.now = func() time.Time { return time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) addEvent(status string) models.Event {
	event := models.Event{
		ID:          primitive.NewObjectID(),
		EventNumber: int64(len(f.events.events)) + 1,
		GuestCount:  100,
		Price:       10000,
		EventDate:   time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
		StartTime:   "19:00",
		EndTime:     "23:00",
		EventType:   "PRIVATE",
		MenuType:    "CLASSIC",
		Status:      status,
	}
	f.events.events[event.ID] = event
	return event
}

func TestUpsertActuals_RecomputesAndCarriesIce(t *testing.T) {
	f := newFixture()
	event := f.addEvent(models.StatusDone)
	f.shifts.shifts[event.ID] = []models.WageShift{{Wage: 300}, {Wage: 300}}
	f.general.expenses[event.ID] = []models.GeneralExpense{{Amount: 400}}
	f.alcohol.lines[event.ID] = []AlcoholLine{{BottlesUsed: 2, ProductPrice: 150}}

	first, err := f.svc.UpsertActuals(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, first.IceExpense)
	assert.Equal(t, 1400.0, first.TotalExpenses)
	assert.Equal(t, "Private", first.EventTypeSnapshot)
	assert.Equal(t, "Classic", first.MenuTypeSnapshot)

	_, err = f.svc.SetIceExpense(context.Background(), event.ID, 100)
	require.NoError(t, err)

	second, err := f.svc.UpsertActuals(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, second.IceExpense)
	assert.Equal(t, 1500.0, second.TotalExpenses)
	assert.Equal(t, 8500.0, second.Profit)
	assert.Equal(t, first.ID, second.ID)
}

func TestUpsertActuals_Idempotent(t *testing.T) {
	f := newFixture()
	event := f.addEvent(models.StatusDone)
	f.shifts.shifts[event.ID] = []models.WageShift{{Wage: 250, Tip: 30}}

	first, err := f.svc.UpsertActuals(context.Background(), event.ID)
	require.NoError(t, err)

	second, err := f.svc.UpsertActuals(context.Background(), event.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSetIceExpense_PatchesOnlyIce(t *testing.T) {
	f := newFixture()
	event := f.addEvent(models.StatusDone)
	f.shifts.shifts[event.ID] = []models.WageShift{{Wage: 500}}

	before, err := f.svc.UpsertActuals(context.Background(), event.ID)
	require.NoError(t, err)

	patched, err := f.svc.SetIceExpense(context.Background(), event.ID, 80)
	require.NoError(t, err)

	assert.Equal(t, 80.0, patched.IceExpense)
	// Derived figures stay stale until the next recompute.
	assert.Equal(t, before.TotalExpenses, patched.TotalExpenses)
	assert.Equal(t, before.Profit, patched.Profit)
}

func TestSetIceExpense_RejectsNegative(t *testing.T) {
	f := newFixture()
	event := f.addEvent(models.StatusDone)

	_, err := f.svc.SetIceExpense(context.Background(), event.ID, -1)
	assert.Error(t, err)
}

func TestGetActuals_StrictNotFound(t *testing.T) {
	f := newFixture()
	event := f.addEvent(models.StatusNotClosed)

	_, err := f.svc.GetActuals(context.Background(), event.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetOrCreateActuals_LazyBlank(t *testing.T) {
	f := newFixture()
	event := f.addEvent(models.StatusNotClosed)

	created, err := f.svc.GetOrCreateActuals(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, created.Event)
	assert.Equal(t, 0.0, created.TotalExpenses)

	again, err := f.svc.GetOrCreateActuals(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
}

func TestGetOrCreateActuals_UnknownEvent(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GetOrCreateActuals(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOnStatusChange_DoneCreatesSnapshotAndSyncsCRM(t *testing.T) {
	f := newFixture()
	customer := models.Customer{ID: primitive.NewObjectID(), Name: "Dana", Email: "dana@example.com"}
	f.customers.customers[customer.ID] = customer

	event := f.addEvent(models.StatusClosed)
	event.Customer = &customer.ID
	f.events.events[event.ID] = event
	f.shifts.shifts[event.ID] = []models.WageShift{{Wage: 400}}

	lead := models.Lead{ID: primitive.NewObjectID(), Status: models.LeadStatusQualified, RelatedEvent: &event.ID}
	f.leads.leads[lead.ID] = lead

	err := f.svc.OnStatusChange(context.Background(), event.ID, models.StatusClosed, models.StatusDone)
	require.NoError(t, err)

	stored, err := f.svc.GetActuals(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 400.0, stored.TotalWages)

	assert.Equal(t, models.LeadStatusConverted, f.leads.leads[lead.ID].Status)
	assert.True(t, f.customers.customers[customer.ID].PayingCustomer)

	require.Len(t, f.crm.calls, 1)
	assert.Equal(t, "dana@example.com", f.crm.calls[0].Email)
	assert.True(t, f.crm.calls[0].Paying)
}

func TestOnStatusChange_DoneToLostDeletesSnapshot(t *testing.T) {
	f := newFixture()
	customer := models.Customer{ID: primitive.NewObjectID(), Name: "Noa", Email: "noa@example.com", PayingCustomer: true}
	f.customers.customers[customer.ID] = customer

	event := f.addEvent(models.StatusDone)
	event.Customer = &customer.ID
	f.events.events[event.ID] = event

	lead := models.Lead{ID: primitive.NewObjectID(), Status: models.LeadStatusConverted, RelatedEvent: &event.ID}
	f.leads.leads[lead.ID] = lead

	_, err := f.svc.UpsertActuals(context.Background(), event.ID)
	require.NoError(t, err)

	err = f.svc.OnStatusChange(context.Background(), event.ID, models.StatusDone, models.StatusLost)
	require.NoError(t, err)

	_, err = f.svc.GetActuals(context.Background(), event.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.Equal(t, models.LeadStatusQualified, f.leads.leads[lead.ID].Status)
	assert.False(t, f.customers.customers[customer.ID].PayingCustomer)

	require.Len(t, f.crm.calls, 1)
	assert.False(t, f.crm.calls[0].Paying)
}

func TestOnStatusChange_UnrelatedTransitionIsNoop(t *testing.T) {
	f := newFixture()
	event := f.addEvent(models.StatusNotClosed)

	err := f.svc.OnStatusChange(context.Background(), event.ID, models.StatusNotClosed, models.StatusClosed)
	require.NoError(t, err)

	_, err = f.svc.GetActuals(context.Background(), event.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSweepInvalidActuals(t *testing.T) {
	f := newFixture()

	done := f.addEvent(models.StatusDone)
	_, err := f.svc.UpsertActuals(context.Background(), done.ID)
	require.NoError(t, err)

	// A snapshot leaked by a lazy create while the event is still open.
	open := f.addEvent(models.StatusNotClosed)
	_, err = f.svc.GetOrCreateActuals(context.Background(), open.ID)
	require.NoError(t, err)

	// A snapshot whose event was deleted out from under it.
	orphanEvent := f.addEvent(models.StatusDone)
	_, err = f.svc.UpsertActuals(context.Background(), orphanEvent.ID)
	require.NoError(t, err)
	delete(f.events.events, orphanEvent.ID)

	deleted, err := f.svc.SweepInvalidActuals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	remaining, err := f.svc.ListActuals(context.Background())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, done.ID, remaining[0].Event)

	// Idempotent: nothing left to sweep.
	deleted, err = f.svc.SweepInvalidActuals(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestOnEventDeleted_CascadesSnapshot(t *testing.T) {
	f := newFixture()
	event := f.addEvent(models.StatusDone)
	_, err := f.svc.UpsertActuals(context.Background(), event.ID)
	require.NoError(t, err)

	err = f.svc.OnEventDeleted(context.Background(), event.ID)
	require.NoError(t, err)

	_, err = f.svc.GetActuals(context.Background(), event.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
