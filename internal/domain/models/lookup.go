package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Lookup categories, each backed by its own collection.
const (
	LookupEventStatus        = "event_statuses"
	LookupEventType          = "event_types"
	LookupMenuType           = "menu_types"
	LookupLeadSource         = "lead_sources"
	LookupGeneralExpenseType = "general_expense_types"
)

// Default codes used when a request omits a classification.
const (
	DefaultEventType  = "PRIVATE"
	DefaultMenuType   = "CLASSIC"
	DefaultLeadSource = "GOOGLE"
	DefaultStatus     = StatusNotClosed
)

// LookupItem is one code/label row of a classification table.
type LookupItem struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code     string             `bson:"code" json:"code"`
	Label    string             `bson:"label" json:"label"`
	IsActive bool               `bson:"isActive" json:"isActive"`
}
