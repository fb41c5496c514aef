package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/itaybar/barops/internal/domain/models"
	"github.com/itaybar/barops/internal/repository"
)

type fakeEventStore struct {
	events map[primitive.ObjectID]models.Event
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: make(map[primitive.ObjectID]models.Event)}
}

func (f *fakeEventStore) ByID(_ context.Context, id primitive.ObjectID) (models.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return models.Event{}, repository.ErrNotFound
	}
	return event, nil
}

func (f *fakeEventStore) List(_ context.Context) ([]models.Event, error) {
	out := make([]models.Event, 0, len(f.events))
	for _, event := range f.events {
		out = append(out, event)
	}
	return out, nil
}

func (f *fakeEventStore) Create(_ context.Context, event models.Event) (models.Event, error) {
	event.ID = primitive.NewObjectID()
	event.EventNumber = int64(len(f.events)) + 1
	f.events[event.ID] = event
	return event, nil
}

func (f *fakeEventStore) Update(_ context.Context, id primitive.ObjectID, patch bson.M) (models.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return models.Event{}, repository.ErrNotFound
	}
	for key, value := range patch {
		switch key {
		case "customerName":
			event.CustomerName = value.(string)
		case "guestCount":
			event.GuestCount = value.(int)
		case "price":
			event.Price = value.(float64)
		case "status":
			event.Status = value.(string)
		case "startTime":
			event.StartTime = value.(string)
		case "endTime":
			event.EndTime = value.(string)
		case "closedAt":
			at := value.(time.Time)
			event.ClosedAt = &at
		}
	}
	f.events[id] = event
	return event, nil
}

func (f *fakeEventStore) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	_, ok := f.events[id]
	delete(f.events, id)
	return ok, nil
}

func (f *fakeEventStore) CloseExpired(_ context.Context, cutoff time.Time) (int64, error) {
	var closed int64
	for id, event := range f.events {
		if event.Status == models.StatusNotClosed && event.EventDate.Before(cutoff) {
			event.Status = models.StatusLost
			f.events[id] = event
			closed++
		}
	}
	return closed, nil
}

// passthroughLookups accepts any code and falls back to the default.
type passthroughLookups struct{}

func (passthroughLookups) ResolveOrDefault(_ context.Context, _, code, defaultCode string) (models.LookupItem, error) {
	if code == "" {
		code = defaultCode
	}
	return models.LookupItem{Code: code, Label: code, IsActive: true}, nil
}

type fakeLeadLinker struct {
	attached map[primitive.ObjectID]primitive.ObjectID
	statuses map[primitive.ObjectID]string
}

func newFakeLeadLinker() *fakeLeadLinker {
	return &fakeLeadLinker{
		attached: make(map[primitive.ObjectID]primitive.ObjectID),
		statuses: make(map[primitive.ObjectID]string),
	}
}

func (f *fakeLeadLinker) AttachEvent(_ context.Context, id, eventID primitive.ObjectID) error {
	f.attached[id] = eventID
	return nil
}

func (f *fakeLeadLinker) SetStatus(_ context.Context, id primitive.ObjectID, status string) error {
	f.statuses[id] = status
	return nil
}

type transition struct {
	EventID  primitive.ObjectID
	Previous string
	Next     string
}

type recordingSync struct {
	transitions []transition
	deletions   []primitive.ObjectID
}

func (r *recordingSync) OnStatusChange(_ context.Context, eventID primitive.ObjectID, previous, next string) error {
	r.transitions = append(r.transitions, transition{eventID, previous, next})
	return nil
}

func (r *recordingSync) OnEventDeleted(_ context.Context, eventID primitive.ObjectID) error {
	r.deletions = append(r.deletions, eventID)
	return nil
}

type countingCascade struct {
	deletions []primitive.ObjectID
}

func (c *countingCascade) DeleteByEvent(_ context.Context, eventID primitive.ObjectID) (int64, error) {
	c.deletions = append(c.deletions, eventID)
	return 1, nil
}

func newTestService() (*Service, *fakeEventStore, *fakeLeadLinker, *recordingSync, *countingCascade) {
	store := newFakeEventStore()
	leads := newFakeLeadLinker()
	sync := &recordingSync{}
	cascade := &countingCascade{}
	svc := NewService(store, passthroughLookups{}, leads, sync, []CascadeStore{cascade}, 3, nil)
	return svc, store, leads, sync, cascade
}

func validCreateInput() CreateInput {
	return CreateInput{
		CustomerName: "Dana Levi",
		EventDate:    time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		GuestCount:   80,
		StartTime:    "19:00",
		EndTime:      "23:30",
		Price:        12000,
	}
}

func TestCreate_AppliesLookupDefaults(t *testing.T) {
	svc, _, _, sync, _ := newTestService()

	event, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	assert.Equal(t, models.DefaultEventType, event.EventType)
	assert.Equal(t, models.DefaultMenuType, event.MenuType)
	assert.Equal(t, models.DefaultLeadSource, event.LeadSource)
	assert.Equal(t, models.StatusNotClosed, event.Status)
	assert.Empty(t, sync.transitions)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	missingName := validCreateInput()
	missingName.CustomerName = ""
	_, err := svc.Create(context.Background(), missingName)
	assert.Error(t, err)

	missingDate := validCreateInput()
	missingDate.EventDate = time.Time{}
	_, err = svc.Create(context.Background(), missingDate)
	assert.Error(t, err)

	badClock := validCreateInput()
	badClock.StartTime = "25:99"
	_, err = svc.Create(context.Background(), badClock)
	assert.Error(t, err)
}

func TestCreate_LinksLead(t *testing.T) {
	svc, _, leads, _, _ := newTestService()

	leadID := primitive.NewObjectID()
	in := validCreateInput()
	in.LeadID = &leadID

	event, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, event.ID, leads.attached[leadID])
	assert.Equal(t, models.LeadStatusQualified, leads.statuses[leadID])
}

func TestCreate_DirectlyDoneFiresSync(t *testing.T) {
	svc, _, _, sync, _ := newTestService()

	in := validCreateInput()
	in.StatusCode = models.StatusDone

	event, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, sync.transitions, 1)
	assert.Equal(t, event.ID, sync.transitions[0].EventID)
	assert.Equal(t, models.StatusDone, sync.transitions[0].Next)
}

func TestUpdate_StatusChangeTriggersSync(t *testing.T) {
	svc, store, _, sync, _ := newTestService()

	event, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	next := models.StatusDone
	updated, err := svc.Update(context.Background(), event.ID, UpdateInput{StatusCode: &next})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, updated.Status)

	require.Len(t, sync.transitions, 1)
	assert.Equal(t, models.StatusNotClosed, sync.transitions[0].Previous)
	assert.Equal(t, models.StatusDone, sync.transitions[0].Next)
	assert.Equal(t, models.StatusDone, store.events[event.ID].Status)
}

func TestUpdate_ClosedStampsClosedAt(t *testing.T) {
	svc, store, _, _, _ := newTestService()

	event, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	next := models.StatusClosed
	_, err = svc.Update(context.Background(), event.ID, UpdateInput{StatusCode: &next})
	require.NoError(t, err)

	assert.NotNil(t, store.events[event.ID].ClosedAt)
}

func TestUpdate_SameStatusDoesNotSync(t *testing.T) {
	svc, _, _, sync, _ := newTestService()

	event, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	price := 15000.0
	_, err = svc.Update(context.Background(), event.ID, UpdateInput{Price: &price})
	require.NoError(t, err)

	assert.Empty(t, sync.transitions)
}

func TestUpdate_EmptyPatchReturnsCurrent(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	event, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), event.ID, UpdateInput{})
	require.NoError(t, err)
	assert.Equal(t, event, got)
}

func TestDelete_Cascades(t *testing.T) {
	svc, store, _, sync, cascade := newTestService()

	event, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), event.ID))

	assert.Empty(t, store.events)
	assert.Equal(t, []primitive.ObjectID{event.ID}, sync.deletions)
	assert.Equal(t, []primitive.ObjectID{event.ID}, cascade.deletions)
}

func TestDelete_MissingEventSkipsCascade(t *testing.T) {
	svc, _, _, sync, cascade := newTestService()

	require.NoError(t, svc.Delete(context.Background(), primitive.NewObjectID()))

	assert.Empty(t, sync.deletions)
	assert.Empty(t, cascade.deletions)
}

func TestCloseExpired(t *testing.T) {
	svc, store, _, _, _ := newTestService()

	stale, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)
	event := store.events[stale.ID]
	event.EventDate = time.Now().Add(-10 * 24 * time.Hour)
	store.events[stale.ID] = event

	fresh, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	closed, err := svc.CloseExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)

	assert.Equal(t, models.StatusLost, store.events[stale.ID].Status)
	assert.Equal(t, models.StatusNotClosed, store.events[fresh.ID].Status)
}
