package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/itaybar/barops/internal/domain/models"
)

// EventRepo persists events.
type EventRepo struct {
	coll *mongo.Collection
}

// NewEventRepo builds the events repository.
func NewEventRepo(store *Store) *EventRepo {
	return &EventRepo{coll: store.db.Collection(collEvents)}
}

// ByID fetches one event.
func (r *EventRepo) ByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var event models.Event
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		return models.Event{}, mapErr(err)
	}
	return event, nil
}

// ByNumber fetches one event by its sequential business number.
func (r *EventRepo) ByNumber(ctx context.Context, eventNumber int64) (models.Event, error) {
	var event models.Event
	err := r.coll.FindOne(ctx, bson.M{"eventNumber": eventNumber}).Decode(&event)
	if err != nil {
		return models.Event{}, mapErr(err)
	}
	return event, nil
}

// List returns all events, newest event date first.
func (r *EventRepo) List(ctx context.Context) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "eventDate", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

// Create inserts a new event, assigning the next sequential event
// number when none is set.
func (r *EventRepo) Create(ctx context.Context, event models.Event) (models.Event, error) {
	if event.EventNumber == 0 {
		next, err := r.nextEventNumber(ctx)
		if err != nil {
			return models.Event{}, err
		}
		event.EventNumber = next
	}

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, event)
	if err != nil {
		return models.Event{}, mapErr(err)
	}

	event.ID = result.InsertedID.(primitive.ObjectID)
	return event, nil
}

// Update applies a partial update and returns the fresh document.
func (r *EventRepo) Update(ctx context.Context, id primitive.ObjectID, patch bson.M) (models.Event, error) {
	patch["updatedAt"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Event
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": patch}, opts).Decode(&updated)
	if err != nil {
		return models.Event{}, mapErr(err)
	}
	return updated, nil
}

// Delete removes one event. Reports whether a document was deleted.
func (r *EventRepo) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// CloseExpired bulk-moves NOT_CLOSED events dated before the cutoff to
// LOST. Returns how many events were transitioned.
func (r *EventRepo) CloseExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.coll.UpdateMany(ctx,
		bson.M{
			"eventDate": bson.M{"$lt": cutoff},
			"status":    models.StatusNotClosed,
		},
		bson.M{"$set": bson.M{
			"status":    models.StatusLost,
			"updatedAt": time.Now(),
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("close expired events: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *EventRepo) nextEventNumber(ctx context.Context) (int64, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "eventNumber", Value: -1}})
	var last models.Event
	err := r.coll.FindOne(ctx, bson.M{}, opts).Decode(&last)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return 1, nil
	case err != nil:
		return 0, fmt.Errorf("find last event number: %w", err)
	}
	return last.EventNumber + 1, nil
}
