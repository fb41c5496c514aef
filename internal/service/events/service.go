// Package events owns the booking workflow: event CRUD, lookup-coded
// classification, and the status transitions that drive the actuals
// lifecycle.
package events

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/itaybar/barops/internal/domain/models"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// EventStore is the persistence surface the workflow needs.
type EventStore interface {
	ByID(ctx context.Context, id primitive.ObjectID) (models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	Create(ctx context.Context, event models.Event) (models.Event, error)
	Update(ctx context.Context, id primitive.ObjectID, patch bson.M) (models.Event, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	CloseExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// LookupResolver validates classification codes and supplies defaults.
type LookupResolver interface {
	ResolveOrDefault(ctx context.Context, category, code, defaultCode string) (models.LookupItem, error)
}

// LeadLinker attaches leads to the events they turned into.
type LeadLinker interface {
	AttachEvent(ctx context.Context, id, eventID primitive.ObjectID) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
}

// ActualsSynchronizer reacts to lifecycle changes of events.
type ActualsSynchronizer interface {
	OnStatusChange(ctx context.Context, eventID primitive.ObjectID, previous, next string) error
	OnEventDeleted(ctx context.Context, eventID primitive.ObjectID) error
}

// CascadeStore removes the child records of a deleted event.
type CascadeStore interface {
	DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error)
}

// Service orchestrates the booking workflow.
type Service struct {
	store    EventStore
	lookups  LookupResolver
	leads    LeadLinker
	sync     ActualsSynchronizer
	cascades []CascadeStore
	logger   *zap.Logger

	expireAfter time.Duration
}

// NewService wires the booking service. cascades are the child-record
// stores cleaned up when an event is deleted.
func NewService(store EventStore, lookups LookupResolver, leads LeadLinker, sync ActualsSynchronizer, cascades []CascadeStore, expireAfterDays int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:       store,
		lookups:     lookups,
		leads:       leads,
		sync:        sync,
		cascades:    cascades,
		logger:      logger,
		expireAfter: time.Duration(expireAfterDays) * 24 * time.Hour,
	}
}

// CreateInput carries a new event. Classification fields hold lookup
// codes; empty codes fall back to the category defaults.
type CreateInput struct {
	EventNumber    int64
	CustomerName   string
	CustomerID     *primitive.ObjectID
	EventDate      time.Time
	Address        string
	GuestCount     int
	StartTime      string
	EndTime        string
	Price          float64
	DepositPaid    float64
	Notes          string
	EventTypeCode  string
	MenuTypeCode   string
	LeadSourceCode string
	StatusCode     string
	LeadID         *primitive.ObjectID
}

// UpdateInput carries a partial event update; nil fields are left
// untouched.
type UpdateInput struct {
	CustomerName *string
	EventDate    *time.Time
	Address      *string
	GuestCount   *int
	StartTime    *string
	EndTime      *string
	Price        *float64
	DepositPaid  *float64
	Notes        *string

	EventTypeCode *string
	MenuTypeCode  *string
	StatusCode    *string
}

// List returns all events.
func (s *Service) List(ctx context.Context) ([]models.Event, error) {
	return s.store.List(ctx)
}

// Get returns one event.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	return s.store.ByID(ctx, id)
}

// Create validates and stores a new event. When the event originates
// from a lead, the lead is linked and moved to Qualified.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Event, error) {
	if in.CustomerName == "" {
		return models.Event{}, fmt.Errorf("customerName is required")
	}
	if in.EventDate.IsZero() {
		return models.Event{}, fmt.Errorf("eventDate is required")
	}
	if err := validateClock(in.StartTime); err != nil {
		return models.Event{}, fmt.Errorf("startTime: %w", err)
	}
	if err := validateClock(in.EndTime); err != nil {
		return models.Event{}, fmt.Errorf("endTime: %w", err)
	}

	eventType, err := s.lookups.ResolveOrDefault(ctx, models.LookupEventType, in.EventTypeCode, models.DefaultEventType)
	if err != nil {
		return models.Event{}, err
	}
	menuType, err := s.lookups.ResolveOrDefault(ctx, models.LookupMenuType, in.MenuTypeCode, models.DefaultMenuType)
	if err != nil {
		return models.Event{}, err
	}
	leadSource, err := s.lookups.ResolveOrDefault(ctx, models.LookupLeadSource, in.LeadSourceCode, models.DefaultLeadSource)
	if err != nil {
		return models.Event{}, err
	}
	status, err := s.lookups.ResolveOrDefault(ctx, models.LookupEventStatus, in.StatusCode, models.DefaultStatus)
	if err != nil {
		return models.Event{}, err
	}

	event, err := s.store.Create(ctx, models.Event{
		EventNumber:  in.EventNumber,
		CustomerName: in.CustomerName,
		Customer:     in.CustomerID,
		EventDate:    in.EventDate,
		Address:      in.Address,
		GuestCount:   in.GuestCount,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		EventType:    eventType.Code,
		MenuType:     menuType.Code,
		LeadSource:   leadSource.Code,
		Status:       status.Code,
		Price:        in.Price,
		DepositPaid:  in.DepositPaid,
		Notes:        in.Notes,
	})
	if err != nil {
		return models.Event{}, fmt.Errorf("create event: %w", err)
	}

	if in.LeadID != nil {
		if err := s.leads.AttachEvent(ctx, *in.LeadID, event.ID); err != nil {
			s.logger.Warn("lead link failed", zap.String("lead_id", in.LeadID.Hex()), zap.Error(err))
		} else if err := s.leads.SetStatus(ctx, *in.LeadID, models.LeadStatusQualified); err != nil {
			s.logger.Warn("lead status update failed", zap.String("lead_id", in.LeadID.Hex()), zap.Error(err))
		}
	}

	// New events reaching DONE immediately still get their snapshot.
	if event.Status == models.StatusDone {
		if err := s.sync.OnStatusChange(ctx, event.ID, "", event.Status); err != nil {
			s.logger.Error("actuals sync after create failed", zap.String("event_id", event.ID.Hex()), zap.Error(err))
		}
	}

	return event, nil
}

// Update applies a partial update. A status change triggers the
// actuals lifecycle after the event document is persisted.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, in UpdateInput) (models.Event, error) {
	current, err := s.store.ByID(ctx, id)
	if err != nil {
		return models.Event{}, err
	}

	patch := bson.M{}
	if in.CustomerName != nil {
		patch["customerName"] = *in.CustomerName
	}
	if in.EventDate != nil {
		patch["eventDate"] = *in.EventDate
	}
	if in.Address != nil {
		patch["address"] = *in.Address
	}
	if in.GuestCount != nil {
		patch["guestCount"] = *in.GuestCount
	}
	if in.StartTime != nil {
		if err := validateClock(*in.StartTime); err != nil {
			return models.Event{}, fmt.Errorf("startTime: %w", err)
		}
		patch["startTime"] = *in.StartTime
	}
	if in.EndTime != nil {
		if err := validateClock(*in.EndTime); err != nil {
			return models.Event{}, fmt.Errorf("endTime: %w", err)
		}
		patch["endTime"] = *in.EndTime
	}
	if in.Price != nil {
		patch["price"] = *in.Price
	}
	if in.DepositPaid != nil {
		patch["depositPaid"] = *in.DepositPaid
	}
	if in.Notes != nil {
		patch["notes"] = *in.Notes
	}

	if in.EventTypeCode != nil {
		item, err := s.lookups.ResolveOrDefault(ctx, models.LookupEventType, *in.EventTypeCode, models.DefaultEventType)
		if err != nil {
			return models.Event{}, err
		}
		patch["eventType"] = item.Code
	}
	if in.MenuTypeCode != nil {
		item, err := s.lookups.ResolveOrDefault(ctx, models.LookupMenuType, *in.MenuTypeCode, models.DefaultMenuType)
		if err != nil {
			return models.Event{}, err
		}
		patch["menuType"] = item.Code
	}

	nextStatus := current.Status
	if in.StatusCode != nil {
		item, err := s.lookups.ResolveOrDefault(ctx, models.LookupEventStatus, *in.StatusCode, models.DefaultStatus)
		if err != nil {
			return models.Event{}, err
		}
		nextStatus = item.Code
		patch["status"] = item.Code
		if item.Code == models.StatusClosed && current.Status != models.StatusClosed {
			patch["closedAt"] = time.Now()
		}
	}

	if len(patch) == 0 {
		return current, nil
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return models.Event{}, fmt.Errorf("update event: %w", err)
	}

	if nextStatus != current.Status {
		if err := s.sync.OnStatusChange(ctx, id, current.Status, nextStatus); err != nil {
			// The event write already happened; surface the failure so
			// the caller can retry the recompute.
			return updated, fmt.Errorf("actuals sync: %w", err)
		}
	}

	return updated, nil
}

// Delete removes an event and cascades to its snapshot and child
// records.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return nil
	}

	if err := s.sync.OnEventDeleted(ctx, id); err != nil {
		s.logger.Error("actuals cascade failed", zap.String("event_id", id.Hex()), zap.Error(err))
	}

	for _, cascade := range s.cascades {
		if _, err := cascade.DeleteByEvent(ctx, id); err != nil {
			s.logger.Error("child record cascade failed", zap.String("event_id", id.Hex()), zap.Error(err))
		}
	}

	return nil
}

// CloseExpired moves NOT_CLOSED events whose date has passed the
// expiry window to LOST. Run from the maintenance scheduler.
func (s *Service) CloseExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.expireAfter)
	closed, err := s.store.CloseExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if closed > 0 {
		s.logger.Info("closed expired events", zap.Int64("count", closed))
	}
	return closed, nil
}

func validateClock(value string) error {
	if value == "" {
		return nil
	}
	if !clockPattern.MatchString(value) {
		return fmt.Errorf("must be HH:mm")
	}
	return nil
}
