package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/itaybar/barops/internal/actuals"
	"github.com/itaybar/barops/internal/domain/models"
)

// GeneralExpenseRepo persists miscellaneous event cost lines.
type GeneralExpenseRepo struct {
	coll *mongo.Collection
}

// NewGeneralExpenseRepo builds the general expense repository.
func NewGeneralExpenseRepo(store *Store) *GeneralExpenseRepo {
	return &GeneralExpenseRepo{coll: store.db.Collection(collGeneralExpenses)}
}

// FindByEvent returns all general expenses of one event.
func (r *GeneralExpenseRepo) FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.GeneralExpense, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"event": eventID})
	if err != nil {
		return nil, fmt.Errorf("list general expenses: %w", err)
	}

	var expenses []models.GeneralExpense
	if err := cursor.All(ctx, &expenses); err != nil {
		return nil, fmt.Errorf("decode general expenses: %w", err)
	}
	return expenses, nil
}

// Create inserts one expense line.
func (r *GeneralExpenseRepo) Create(ctx context.Context, expense models.GeneralExpense) (models.GeneralExpense, error) {
	now := time.Now()
	expense.CreatedAt = now
	expense.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, expense)
	if err != nil {
		return models.GeneralExpense{}, mapErr(err)
	}

	expense.ID = result.InsertedID.(primitive.ObjectID)
	return expense, nil
}

// Delete removes one expense line.
func (r *GeneralExpenseRepo) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete general expense: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// DeleteByEvent removes all expense lines of one event.
func (r *GeneralExpenseRepo) DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{"event": eventID})
	if err != nil {
		return 0, fmt.Errorf("delete general expenses: %w", err)
	}
	return result.DeletedCount, nil
}

// AlcoholExpenseRepo persists per-product consumption records.
type AlcoholExpenseRepo struct {
	coll *mongo.Collection
}

// NewAlcoholExpenseRepo builds the alcohol expense repository.
func NewAlcoholExpenseRepo(store *Store) *AlcoholExpenseRepo {
	return &AlcoholExpenseRepo{coll: store.db.Collection(collAlcoholExpenses)}
}

// FindByEvent returns the raw consumption records of one event.
func (r *AlcoholExpenseRepo) FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.AlcoholExpense, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"event": eventID})
	if err != nil {
		return nil, fmt.Errorf("list alcohol expenses: %w", err)
	}

	var expenses []models.AlcoholExpense
	if err := cursor.All(ctx, &expenses); err != nil {
		return nil, fmt.Errorf("decode alcohol expenses: %w", err)
	}
	return expenses, nil
}

// LinesByEvent joins each consumption record with its product and
// returns bottle counts alongside the product's current price. Records
// whose product is missing resolve to a zero price and contribute
// nothing to the aggregate.
func (r *AlcoholExpenseRepo) LinesByEvent(ctx context.Context, eventID primitive.ObjectID) ([]actuals.AlcoholLine, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event": eventID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collInventoryProducts,
			"localField":   "product",
			"foreignField": "_id",
			"as":           "productDoc",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$productDoc",
			"preserveNullAndEmptyArrays": true,
		}}},
		{{Key: "$project", Value: bson.M{
			"bottlesUsed":  1,
			"productPrice": bson.M{"$ifNull": bson.A{"$productDoc.price", 0}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate alcohol lines: %w", err)
	}

	var rows []struct {
		BottlesUsed  int     `bson:"bottlesUsed"`
		ProductPrice float64 `bson:"productPrice"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode alcohol lines: %w", err)
	}

	lines := make([]actuals.AlcoholLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, actuals.AlcoholLine{
			BottlesUsed:  row.BottlesUsed,
			ProductPrice: row.ProductPrice,
		})
	}
	return lines, nil
}

// Upsert creates or updates the single record per (event, product).
func (r *AlcoholExpenseRepo) Upsert(ctx context.Context, expense models.AlcoholExpense) (models.AlcoholExpense, error) {
	expense.ID = primitive.NilObjectID
	expense.UpdatedAt = time.Now()
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = expense.UpdatedAt
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved models.AlcoholExpense
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"event": expense.Event, "product": expense.Product},
		bson.M{"$set": expense},
		opts,
	).Decode(&saved)
	if err != nil {
		return models.AlcoholExpense{}, mapErr(err)
	}
	return saved, nil
}

// Delete removes one consumption record.
func (r *AlcoholExpenseRepo) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete alcohol expense: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// DeleteByEvent removes all consumption records of one event.
func (r *AlcoholExpenseRepo) DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{"event": eventID})
	if err != nil {
		return 0, fmt.Errorf("delete alcohol expenses: %w", err)
	}
	return result.DeletedCount, nil
}

// InventoryProductRepo persists stocked products.
type InventoryProductRepo struct {
	coll *mongo.Collection
}

// NewInventoryProductRepo builds the inventory repository.
func NewInventoryProductRepo(store *Store) *InventoryProductRepo {
	return &InventoryProductRepo{coll: store.db.Collection(collInventoryProducts)}
}

// List returns all products, active ones first by label.
func (r *InventoryProductRepo) List(ctx context.Context) ([]models.InventoryProduct, error) {
	opts := options.Find().SetSort(bson.D{{Key: "isActive", Value: -1}, {Key: "label", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list inventory products: %w", err)
	}

	var products []models.InventoryProduct
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode inventory products: %w", err)
	}
	return products, nil
}

// ByID fetches one product.
func (r *InventoryProductRepo) ByID(ctx context.Context, id primitive.ObjectID) (models.InventoryProduct, error) {
	var product models.InventoryProduct
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		return models.InventoryProduct{}, mapErr(err)
	}
	return product, nil
}

// Create inserts one product.
func (r *InventoryProductRepo) Create(ctx context.Context, product models.InventoryProduct) (models.InventoryProduct, error) {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, product)
	if err != nil {
		return models.InventoryProduct{}, mapErr(err)
	}

	product.ID = result.InsertedID.(primitive.ObjectID)
	return product, nil
}

// SetPrice updates a product's current price.
func (r *InventoryProductRepo) SetPrice(ctx context.Context, id primitive.ObjectID, price float64) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"price": price, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("set product price: %w", err)
	}
	if result.MatchedCount == 0 {
		return mapErr(mongo.ErrNoDocuments)
	}
	return nil
}
