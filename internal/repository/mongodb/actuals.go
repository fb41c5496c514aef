package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/itaybar/barops/internal/domain/models"
)

// ActualRepo persists the per-event financial snapshots.
type ActualRepo struct {
	coll *mongo.Collection
}

// NewActualRepo builds the event_actuals repository.
func NewActualRepo(store *Store) *ActualRepo {
	return &ActualRepo{coll: store.db.Collection(collEventActuals)}
}

// FindByEvent fetches the snapshot for one event.
func (r *ActualRepo) FindByEvent(ctx context.Context, eventID primitive.ObjectID) (models.EventActual, error) {
	var actual models.EventActual
	err := r.coll.FindOne(ctx, bson.M{"event": eventID}).Decode(&actual)
	if err != nil {
		return models.EventActual{}, mapErr(err)
	}
	return actual, nil
}

// All returns every stored snapshot, newest event date first.
func (r *ActualRepo) All(ctx context.Context) ([]models.EventActual, error) {
	opts := options.Find().SetSort(bson.D{{Key: "eventDateSnapshot", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list event actuals: %w", err)
	}

	var actuals []models.EventActual
	if err := cursor.All(ctx, &actuals); err != nil {
		return nil, fmt.Errorf("decode event actuals: %w", err)
	}
	return actuals, nil
}

// Upsert atomically creates or replaces the snapshot keyed by its event
// reference. The unique index on event guarantees at most one document
// per event survives concurrent writers; last write wins.
func (r *ActualRepo) Upsert(ctx context.Context, actual models.EventActual) (models.EventActual, error) {
	actual.ID = primitive.NilObjectID // never overwrite _id

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved models.EventActual
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"event": actual.Event},
		bson.M{"$set": actual},
		opts,
	).Decode(&saved)
	if err != nil {
		return models.EventActual{}, mapErr(err)
	}
	return saved, nil
}

// SetIce patches only the ice expense, creating a stub snapshot when
// none exists yet.
func (r *ActualRepo) SetIce(ctx context.Context, eventID primitive.ObjectID, amount float64) (models.EventActual, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved models.EventActual
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"event": eventID},
		bson.M{"$set": bson.M{"iceExpense": amount}},
		opts,
	).Decode(&saved)
	if err != nil {
		return models.EventActual{}, mapErr(err)
	}
	return saved, nil
}

// DeleteByEvent removes the snapshot for one event.
func (r *ActualRepo) DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, bson.M{"event": eventID})
	if err != nil {
		return false, fmt.Errorf("delete event actual: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// DeleteByIDs removes the given snapshots in one call.
func (r *ActualRepo) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("delete event actuals: %w", err)
	}
	return result.DeletedCount, nil
}
