package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/itaybar/barops/internal/domain/models"
)

// WageShiftRepo persists staff wage shifts.
type WageShiftRepo struct {
	coll *mongo.Collection
}

// NewWageShiftRepo builds the wage shift repository.
func NewWageShiftRepo(store *Store) *WageShiftRepo {
	return &WageShiftRepo{coll: store.db.Collection(collWageShifts)}
}

// FindByEvent returns all shifts belonging to one event.
func (r *WageShiftRepo) FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.WageShift, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"event": eventID})
	if err != nil {
		return nil, fmt.Errorf("list wage shifts: %w", err)
	}

	var shifts []models.WageShift
	if err := cursor.All(ctx, &shifts); err != nil {
		return nil, fmt.Errorf("decode wage shifts: %w", err)
	}
	return shifts, nil
}

// Create inserts one shift, deriving its duration in minutes from the
// start and end times. Shifts crossing midnight wrap forward, unlike
// the event-level hours-of-operation calculation.
func (r *WageShiftRepo) Create(ctx context.Context, shift models.WageShift) (models.WageShift, error) {
	shift.Duration = shiftDurationMinutes(shift.StartTime, shift.EndTime)

	now := time.Now()
	shift.CreatedAt = now
	shift.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, shift)
	if err != nil {
		return models.WageShift{}, mapErr(err)
	}

	shift.ID = result.InsertedID.(primitive.ObjectID)
	return shift, nil
}

// Delete removes one shift.
func (r *WageShiftRepo) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete wage shift: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// DeleteByEvent removes all shifts of one event.
func (r *WageShiftRepo) DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{"event": eventID})
	if err != nil {
		return 0, fmt.Errorf("delete wage shifts: %w", err)
	}
	return result.DeletedCount, nil
}

// shiftDurationMinutes computes minutes between two "HH:mm" times,
// wrapping past midnight for overnight shifts. 0 when either side is
// malformed.
func shiftDurationMinutes(start, end string) int {
	startT, err := time.Parse("15:04", start)
	if err != nil {
		return 0
	}
	endT, err := time.Parse("15:04", end)
	if err != nil {
		return 0
	}

	minutes := int(endT.Sub(startT).Minutes())
	if minutes < 0 {
		minutes += 24 * 60
	}
	return minutes
}
