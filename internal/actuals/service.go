package actuals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/itaybar/barops/internal/domain/models"
	"github.com/itaybar/barops/internal/repository"
)

// Collaborator interfaces. All raw records are read through these; the
// service owns only the event_actuals collection.

type EventRepository interface {
	ByID(ctx context.Context, id primitive.ObjectID) (models.Event, error)
}

type WageShiftRepository interface {
	FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.WageShift, error)
}

type GeneralExpenseRepository interface {
	FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.GeneralExpense, error)
}

// AlcoholExpenseRepository resolves each consumption record against its
// product's current price.
type AlcoholExpenseRepository interface {
	LinesByEvent(ctx context.Context, eventID primitive.ObjectID) ([]AlcoholLine, error)
}

type ActualRepository interface {
	FindByEvent(ctx context.Context, eventID primitive.ObjectID) (models.EventActual, error)
	All(ctx context.Context) ([]models.EventActual, error)
	// Upsert atomically creates or replaces the single snapshot keyed
	// by its event reference.
	Upsert(ctx context.Context, actual models.EventActual) (models.EventActual, error)
	SetIce(ctx context.Context, eventID primitive.ObjectID, amount float64) (models.EventActual, error)
	DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) (bool, error)
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type CustomerRepository interface {
	ByID(ctx context.Context, id primitive.ObjectID) (models.Customer, error)
	SetPaying(ctx context.Context, id primitive.ObjectID, paying bool) error
}

type LeadRepository interface {
	FindByEvent(ctx context.Context, eventID primitive.ObjectID) (models.Lead, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
}

type LookupRepository interface {
	Label(ctx context.Context, category, code string) (string, error)
}

// CRMSync pushes the paying flag to the external CRM. Best-effort: the
// service logs failures and moves on.
type CRMSync interface {
	UpsertContact(ctx context.Context, email string, paying bool) error
}

// ListCache caches the full actuals listing. Nil-able: the service
// falls through to the loader when no cache is wired.
type ListCache interface {
	GetOrLoad(ctx context.Context, key string, loader func(context.Context) ([]models.EventActual, error)) ([]models.EventActual, error)
	Invalidate(ctx context.Context, keys ...string) error
}

const listCacheKey = "actuals:list"

// Service keeps event_actuals snapshots in step with the event
// lifecycle: one snapshot per event, present exactly while the event is
// DONE.
type Service struct {
	events    EventRepository
	shifts    WageShiftRepository
	general   GeneralExpenseRepository
	alcohol   AlcoholExpenseRepository
	actuals   ActualRepository
	customers CustomerRepository
	leads     LeadRepository
	lookups   LookupRepository
	crm       CRMSync
	cache     ListCache
	logger    *zap.Logger

	now func() time.Time
}

// NewService wires the actuals service. crm and cache may be nil.
func NewService(
	events EventRepository,
	shifts WageShiftRepository,
	general GeneralExpenseRepository,
	alcohol AlcoholExpenseRepository,
	actualRepo ActualRepository,
	customers CustomerRepository,
	leads LeadRepository,
	lookups LookupRepository,
	crm CRMSync,
	cache ListCache,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		events:    events,
		shifts:    shifts,
		general:   general,
		alcohol:   alcohol,
		actuals:   actualRepo,
		customers: customers,
		leads:     leads,
		lookups:   lookups,
		crm:       crm,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
}

// UpsertActuals recomputes the snapshot for one event from its raw cost
// records and stores it in a single atomic upsert. The prior snapshot's
// ice expense is carried forward.
func (s *Service) UpsertActuals(ctx context.Context, eventID primitive.ObjectID) (models.EventActual, error) {
	event, err := s.events.ByID(ctx, eventID)
	if err != nil {
		return models.EventActual{}, fmt.Errorf("load event %s: %w", eventID.Hex(), err)
	}

	shifts, err := s.shifts.FindByEvent(ctx, eventID)
	if err != nil {
		return models.EventActual{}, fmt.Errorf("load wage shifts: %w", err)
	}

	general, err := s.general.FindByEvent(ctx, eventID)
	if err != nil {
		return models.EventActual{}, fmt.Errorf("load general expenses: %w", err)
	}

	alcohol, err := s.alcohol.LinesByEvent(ctx, eventID)
	if err != nil {
		return models.EventActual{}, fmt.Errorf("load alcohol expenses: %w", err)
	}

	var priorIce float64
	prior, err := s.actuals.FindByEvent(ctx, eventID)
	switch {
	case err == nil:
		priorIce = prior.IceExpense
	case errors.Is(err, repository.ErrNotFound):
	default:
		return models.EventActual{}, fmt.Errorf("load prior actual: %w", err)
	}

	snapshot := ComputeActuals(ComputeInput{
		Event:           event,
		WageShifts:      shifts,
		GeneralExpenses: general,
		AlcoholLines:    alcohol,
		PriorIceExpense: priorIce,
		EventTypeLabel:  s.label(ctx, models.LookupEventType, event.EventType),
		MenuTypeLabel:   s.label(ctx, models.LookupMenuType, event.MenuType),
	})
	snapshot.LastSaved = s.now()

	saved, err := s.actuals.Upsert(ctx, snapshot)
	if err != nil {
		return models.EventActual{}, fmt.Errorf("upsert actual: %w", err)
	}

	s.invalidateList(ctx)
	s.logger.Info("event actuals saved",
		zap.Int64("event_number", event.EventNumber),
		zap.Float64("profit", saved.Profit))

	return saved, nil
}

// GetActuals returns the stored snapshot, or repository.ErrNotFound.
func (s *Service) GetActuals(ctx context.Context, eventID primitive.ObjectID) (models.EventActual, error) {
	return s.actuals.FindByEvent(ctx, eventID)
}

// GetOrCreateActuals returns the stored snapshot, lazily creating an
// all-zero one when none exists. Kept for UI pre-population; the zero
// row is removed by the next sweep unless the event is DONE.
func (s *Service) GetOrCreateActuals(ctx context.Context, eventID primitive.ObjectID) (models.EventActual, error) {
	actual, err := s.actuals.FindByEvent(ctx, eventID)
	if err == nil {
		return actual, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.EventActual{}, err
	}

	if _, err := s.events.ByID(ctx, eventID); err != nil {
		return models.EventActual{}, fmt.Errorf("load event %s: %w", eventID.Hex(), err)
	}

	blank := models.EventActual{Event: eventID, LastSaved: s.now()}
	created, err := s.actuals.Upsert(ctx, blank)
	if err != nil {
		return models.EventActual{}, fmt.Errorf("create blank actual: %w", err)
	}

	s.invalidateList(ctx)
	return created, nil
}

// SetIceExpense updates only the ice cost of the stored snapshot. The
// remaining fields are left as-is until the next full recompute.
func (s *Service) SetIceExpense(ctx context.Context, eventID primitive.ObjectID, amount float64) (models.EventActual, error) {
	if amount < 0 {
		return models.EventActual{}, fmt.Errorf("ice expense must not be negative")
	}

	if _, err := s.events.ByID(ctx, eventID); err != nil {
		return models.EventActual{}, fmt.Errorf("load event %s: %w", eventID.Hex(), err)
	}

	actual, err := s.actuals.SetIce(ctx, eventID, amount)
	if err != nil {
		return models.EventActual{}, fmt.Errorf("set ice expense: %w", err)
	}

	s.invalidateList(ctx)
	return actual, nil
}

// ListActuals sweeps invalid snapshots, then returns the remaining
// ones, served from cache when one is wired.
func (s *Service) ListActuals(ctx context.Context) ([]models.EventActual, error) {
	if _, err := s.SweepInvalidActuals(ctx); err != nil {
		s.logger.Warn("pre-list sweep failed", zap.Error(err))
	}

	if s.cache == nil {
		return s.actuals.All(ctx)
	}
	return s.cache.GetOrLoad(ctx, listCacheKey, s.actuals.All)
}

// OnStatusChange reacts to a persisted event status transition. Called
// by the booking workflow after the event document is updated.
func (s *Service) OnStatusChange(ctx context.Context, eventID primitive.ObjectID, previous, next string) error {
	switch {
	case next == models.StatusDone && previous != models.StatusDone:
		return s.onEventDone(ctx, eventID)
	case previous == models.StatusDone && next != models.StatusDone:
		return s.onEventReopened(ctx, eventID, next)
	default:
		return nil
	}
}

func (s *Service) onEventDone(ctx context.Context, eventID primitive.ObjectID) error {
	if _, err := s.UpsertActuals(ctx, eventID); err != nil {
		return err
	}

	s.setLeadStatus(ctx, eventID, models.LeadStatusConverted)
	s.syncCustomerPaying(ctx, eventID, true)
	return nil
}

func (s *Service) onEventReopened(ctx context.Context, eventID primitive.ObjectID, next string) error {
	deleted, err := s.actuals.DeleteByEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("delete actual: %w", err)
	}
	if deleted {
		s.invalidateList(ctx)
		s.logger.Info("event actual removed",
			zap.String("event_id", eventID.Hex()),
			zap.String("new_status", next))
	}

	s.setLeadStatus(ctx, eventID, models.LeadStatusQualified)
	s.syncCustomerPaying(ctx, eventID, false)
	return nil
}

// SweepInvalidActuals deletes snapshots whose event is missing or no
// longer DONE. Idempotent: a second pass with no state change deletes
// nothing.
func (s *Service) SweepInvalidActuals(ctx context.Context) (int64, error) {
	all, err := s.actuals.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("list actuals: %w", err)
	}

	var stale []primitive.ObjectID
	for _, actual := range all {
		event, err := s.events.ByID(ctx, actual.Event)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			stale = append(stale, actual.ID)
		case err != nil:
			return 0, fmt.Errorf("load event %s: %w", actual.Event.Hex(), err)
		case event.Status != models.StatusDone:
			stale = append(stale, actual.ID)
		}
	}

	if len(stale) == 0 {
		return 0, nil
	}

	deleted, err := s.actuals.DeleteByIDs(ctx, stale)
	if err != nil {
		return 0, fmt.Errorf("delete stale actuals: %w", err)
	}

	s.invalidateList(ctx)
	s.logger.Info("swept invalid event actuals", zap.Int64("deleted", deleted))
	return deleted, nil
}

// OnEventDeleted cascades the owning event's deletion to its snapshot.
func (s *Service) OnEventDeleted(ctx context.Context, eventID primitive.ObjectID) error {
	deleted, err := s.actuals.DeleteByEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("cascade delete actual: %w", err)
	}
	if deleted {
		s.invalidateList(ctx)
	}
	return nil
}

func (s *Service) setLeadStatus(ctx context.Context, eventID primitive.ObjectID, status string) {
	lead, err := s.leads.FindByEvent(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Warn("lead lookup failed", zap.String("event_id", eventID.Hex()), zap.Error(err))
		return
	}

	if err := s.leads.SetStatus(ctx, lead.ID, status); err != nil {
		s.logger.Warn("lead status update failed",
			zap.String("lead_id", lead.ID.Hex()),
			zap.String("status", status),
			zap.Error(err))
		return
	}

	s.logger.Info("lead status updated",
		zap.String("lead_id", lead.ID.Hex()),
		zap.String("status", status))
}

func (s *Service) syncCustomerPaying(ctx context.Context, eventID primitive.ObjectID, paying bool) {
	event, err := s.events.ByID(ctx, eventID)
	if err != nil || event.Customer == nil {
		return
	}

	customer, err := s.customers.ByID(ctx, *event.Customer)
	if err != nil {
		s.logger.Warn("customer lookup failed", zap.String("customer_id", event.Customer.Hex()), zap.Error(err))
		return
	}

	if err := s.customers.SetPaying(ctx, customer.ID, paying); err != nil {
		s.logger.Warn("customer paying flag update failed",
			zap.String("customer_id", customer.ID.Hex()),
			zap.Error(err))
	}

	if s.crm == nil || customer.Email == "" {
		return
	}

	// Fire-once: CRM failures never abort the primary write.
	if err := s.crm.UpsertContact(ctx, customer.Email, paying); err != nil {
		s.logger.Warn("crm sync failed",
			zap.String("email", customer.Email),
			zap.Bool("paying", paying),
			zap.Error(err))
	}
}

func (s *Service) label(ctx context.Context, category, code string) string {
	if code == "" {
		return ""
	}
	label, err := s.lookups.Label(ctx, category, code)
	if err != nil {
		s.logger.Debug("label lookup failed, using code",
			zap.String("category", category),
			zap.String("code", code),
			zap.Error(err))
		return code
	}
	return label
}

func (s *Service) invalidateList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, listCacheKey); err != nil {
		s.logger.Warn("actuals list cache invalidation failed", zap.Error(err))
	}
}
