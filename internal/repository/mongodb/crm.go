package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/itaybar/barops/internal/domain/models"
)

// CustomerRepo persists customers.
type CustomerRepo struct {
	coll *mongo.Collection
}

// NewCustomerRepo builds the customer repository.
func NewCustomerRepo(store *Store) *CustomerRepo {
	return &CustomerRepo{coll: store.db.Collection(collCustomers)}
}

// ByID fetches one customer.
func (r *CustomerRepo) ByID(ctx context.Context, id primitive.ObjectID) (models.Customer, error) {
	var customer models.Customer
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&customer)
	if err != nil {
		return models.Customer{}, mapErr(err)
	}
	return customer, nil
}

// List returns all customers by name.
func (r *CustomerRepo) List(ctx context.Context) ([]models.Customer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	var customers []models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}
	return customers, nil
}

// Create inserts one customer.
func (r *CustomerRepo) Create(ctx context.Context, customer models.Customer) (models.Customer, error) {
	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	customer.IsActive = true

	result, err := r.coll.InsertOne(ctx, customer)
	if err != nil {
		return models.Customer{}, mapErr(err)
	}

	customer.ID = result.InsertedID.(primitive.ObjectID)
	return customer, nil
}

// Update applies a partial patch and returns the updated customer.
func (r *CustomerRepo) Update(ctx context.Context, id primitive.ObjectID, patch bson.M) (models.Customer, error) {
	patch["updatedAt"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var customer models.Customer
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": patch},
		opts,
	).Decode(&customer)
	if err != nil {
		return models.Customer{}, mapErr(err)
	}
	return customer, nil
}

// SetPaying flips the paying flag.
func (r *CustomerRepo) SetPaying(ctx context.Context, id primitive.ObjectID, paying bool) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"payingCustomer": paying, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("set paying flag: %w", err)
	}
	if result.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments)
	}
	return nil
}

// LeadRepo persists sales leads.
type LeadRepo struct {
	coll *mongo.Collection
}

// NewLeadRepo builds the lead repository.
func NewLeadRepo(store *Store) *LeadRepo {
	return &LeadRepo{coll: store.db.Collection(collLeads)}
}

// FindByEvent returns the lead linked to one event.
func (r *LeadRepo) FindByEvent(ctx context.Context, eventID primitive.ObjectID) (models.Lead, error) {
	var lead models.Lead
	err := r.coll.FindOne(ctx, bson.M{"relatedEvent": eventID}).Decode(&lead)
	if err != nil {
		return models.Lead{}, mapErr(err)
	}
	return lead, nil
}

// List returns all leads, newest first.
func (r *LeadRepo) List(ctx context.Context) ([]models.Lead, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	var leads []models.Lead
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, fmt.Errorf("decode leads: %w", err)
	}
	return leads, nil
}

// Create inserts one lead.
func (r *LeadRepo) Create(ctx context.Context, lead models.Lead) (models.Lead, error) {
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}

	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, lead)
	if err != nil {
		return models.Lead{}, mapErr(err)
	}

	lead.ID = result.InsertedID.(primitive.ObjectID)
	return lead, nil
}

// AttachEvent links a lead to the event it turned into.
func (r *LeadRepo) AttachEvent(ctx context.Context, id, eventID primitive.ObjectID) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"relatedEvent": eventID, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("attach lead to event: %w", err)
	}
	if result.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments)
	}
	return nil
}

// SetStatus updates a lead's pipeline status.
func (r *LeadRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("set lead status: %w", err)
	}
	if result.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments)
	}
	return nil
}
