package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeneralExpense is one miscellaneous cost line attached to an event.
type GeneralExpense struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Event       primitive.ObjectID `bson:"event" json:"event"`
	ExpenseType string             `bson:"expenseType" json:"expenseType"`
	Amount      float64            `bson:"amount" json:"amount"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`

	// Snapshot of the expense-type label at write time.
	ExpenseTypeLabelSnapshot string `bson:"expenseTypeLabelSnapshot,omitempty" json:"expenseTypeLabelSnapshot,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// AlcoholExpense records one product's consumption at one event.
// Unique per (event, product) pair.
type AlcoholExpense struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Event   primitive.ObjectID `bson:"event" json:"event"`
	Product primitive.ObjectID `bson:"product" json:"product"`

	BottlesUsed    int     `bson:"bottlesUsed" json:"bottlesUsed"`
	TotalAmount    float64 `bson:"totalAmount" json:"totalAmount"`
	AmountPerGuest float64 `bson:"amountPerGuest" json:"amountPerGuest"`

	// Denormalized for reporting convenience.
	EventNumber int64 `bson:"eventNumber,omitempty" json:"eventNumber,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// InventoryProduct is one stocked product with its current price.
type InventoryProduct struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code          string             `bson:"code" json:"code"`
	Label         string             `bson:"label" json:"label"`
	Category      string             `bson:"category,omitempty" json:"category,omitempty"`
	MenuTypeLabel string             `bson:"menuTypeLabel,omitempty" json:"menuTypeLabel,omitempty"`
	Supplier      string             `bson:"supplier,omitempty" json:"supplier,omitempty"`
	VolumeMl      float64            `bson:"volumeMl" json:"volumeMl"`
	Price         float64            `bson:"price" json:"price"`
	NetPrice      float64            `bson:"netPrice" json:"netPrice"`
	IsActive      bool               `bson:"isActive" json:"isActive"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
