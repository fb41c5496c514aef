// Package mongodb implements the repository interfaces over a single
// MongoDB database.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/itaybar/barops/internal/repository"
)

// Collection names.
const (
	collEvents            = "events"
	collWageShifts        = "event_wage_shifts"
	collGeneralExpenses   = "event_general_expenses"
	collAlcoholExpenses   = "alcohol_expenses"
	collEventActuals      = "event_actuals"
	collInventoryProducts = "inventory_products"
	collLeads             = "leads"
	collCustomers         = "customers"
)

// Store owns the MongoDB connection shared by all repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to MongoDB and verifies the connection.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

// EnsureIndexes creates the indexes the core invariants rely on, most
// importantly the unique event reference on event_actuals.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	type indexSpec struct {
		coll   string
		models []mongo.IndexModel
	}

	specs := []indexSpec{
		{collEvents, []mongo.IndexModel{
			{Keys: bson.D{{Key: "eventNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "eventDate", Value: 1}}},
			{Keys: bson.D{{Key: "eventDate", Value: 1}}},
		}},
		{collEventActuals, []mongo.IndexModel{
			{Keys: bson.D{{Key: "event", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{collWageShifts, []mongo.IndexModel{
			{Keys: bson.D{{Key: "event", Value: 1}}},
		}},
		{collGeneralExpenses, []mongo.IndexModel{
			{Keys: bson.D{{Key: "event", Value: 1}}},
		}},
		{collAlcoholExpenses, []mongo.IndexModel{
			{Keys: bson.D{{Key: "event", Value: 1}, {Key: "product", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{collInventoryProducts, []mongo.IndexModel{
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{collLeads, []mongo.IndexModel{
			{Keys: bson.D{{Key: "relatedEvent", Value: 1}}},
		}},
	}

	for _, spec := range specs {
		if _, err := s.db.Collection(spec.coll).Indexes().CreateMany(ctx, spec.models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", spec.coll, err)
		}
	}

	return nil
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// mapErr translates driver errors into the repository sentinels.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	default:
		return err
	}
}
