package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/itaybar/barops/internal/domain/models"
	"github.com/itaybar/barops/internal/repository"
)

// LookupRepo resolves classification code/label tables. Each category
// is its own collection; categories are open-ended, codes are not
// hardcoded beyond the seeded defaults.
type LookupRepo struct {
	db *mongo.Database
}

// NewLookupRepo builds the lookup repository.
func NewLookupRepo(store *Store) *LookupRepo {
	return &LookupRepo{db: store.db}
}

// Resolve returns the active lookup row for a code.
func (r *LookupRepo) Resolve(ctx context.Context, category, code string) (models.LookupItem, error) {
	var item models.LookupItem
	err := r.db.Collection(category).
		FindOne(ctx, bson.M{"code": code, "isActive": true}).
		Decode(&item)
	if err != nil {
		return models.LookupItem{}, mapErr(err)
	}
	return item, nil
}

// Label returns the display label for a code.
func (r *LookupRepo) Label(ctx context.Context, category, code string) (string, error) {
	item, err := r.Resolve(ctx, category, code)
	if err != nil {
		return "", err
	}
	return item.Label, nil
}

// List returns all active rows of one category.
func (r *LookupRepo) List(ctx context.Context, category string) ([]models.LookupItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})
	cursor, err := r.db.Collection(category).Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", category, err)
	}

	var items []models.LookupItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", category, err)
	}
	return items, nil
}

// EnsureDefaults seeds the lookup rows the workflows depend on. Safe to
// run on every startup; existing rows are left untouched.
func (r *LookupRepo) EnsureDefaults(ctx context.Context) error {
	defaults := map[string][]models.LookupItem{
		models.LookupEventStatus: {
			{Code: models.StatusNotClosed, Label: "Not closed"},
			{Code: models.StatusClosed, Label: "Closed"},
			{Code: models.StatusLost, Label: "Lost"},
			{Code: models.StatusDone, Label: "Done"},
			{Code: models.StatusPositive, Label: "Positive"},
			{Code: models.StatusPostponed, Label: "Postponed"},
		},
		models.LookupEventType: {
			{Code: models.DefaultEventType, Label: "Private"},
			{Code: "CORPORATE", Label: "Corporate"},
			{Code: "WEDDING", Label: "Wedding"},
		},
		models.LookupMenuType: {
			{Code: models.DefaultMenuType, Label: "Classic"},
			{Code: "PREMIUM", Label: "Premium"},
		},
		models.LookupLeadSource: {
			{Code: models.DefaultLeadSource, Label: "Google"},
			{Code: "INSTAGRAM", Label: "Instagram"},
			{Code: "REFERRAL", Label: "Referral"},
		},
	}

	for category, items := range defaults {
		coll := r.db.Collection(category)
		for _, item := range items {
			_, err := coll.UpdateOne(ctx,
				bson.M{"code": item.Code},
				bson.M{"$setOnInsert": bson.M{
					"code":     item.Code,
					"label":    item.Label,
					"isActive": true,
				}},
				options.Update().SetUpsert(true),
			)
			if err != nil {
				return fmt.Errorf("seed %s/%s: %w", category, item.Code, err)
			}
		}
	}

	return nil
}

// ResolveOrDefault resolves a code, substituting the category default
// when the code is empty.
func (r *LookupRepo) ResolveOrDefault(ctx context.Context, category, code, defaultCode string) (models.LookupItem, error) {
	if code == "" {
		code = defaultCode
	}

	item, err := r.Resolve(ctx, category, code)
	if errors.Is(err, repository.ErrNotFound) {
		return models.LookupItem{}, fmt.Errorf("unknown %s code %q: %w", category, code, repository.ErrNotFound)
	}
	return item, err
}
