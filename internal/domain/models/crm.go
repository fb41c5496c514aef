package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lead statuses. Open string enumeration, these are the codes the
// lifecycle synchronizer writes.
const (
	LeadStatusNew       = "New"
	LeadStatusContacted = "Contacted"
	LeadStatusQualified = "Qualified"
	LeadStatusLost      = "Lost"
	LeadStatusConverted = "Converted"
)

// Lead is an inbound sales inquiry, optionally linked to the event it
// turned into.
type Lead struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName string             `bson:"fullName" json:"fullName"`
	Email    string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Message  string             `bson:"message,omitempty" json:"message,omitempty"`

	EventDate     *time.Time `bson:"eventDate,omitempty" json:"eventDate,omitempty"`
	EventLocation string     `bson:"eventLocation,omitempty" json:"eventLocation,omitempty"`
	GuestCount    int        `bson:"guestCount,omitempty" json:"guestCount,omitempty"`

	Status string `bson:"status" json:"status"`
	Source string `bson:"source" json:"source"`

	RelatedCustomer *primitive.ObjectID `bson:"relatedCustomer,omitempty" json:"relatedCustomer,omitempty"`
	RelatedEvent    *primitive.ObjectID `bson:"relatedEvent,omitempty" json:"relatedEvent,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Customer is a billed client of the business.
type Customer struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Company        string             `bson:"company,omitempty" json:"company,omitempty"`
	IsBusiness     bool               `bson:"isBusiness" json:"isBusiness"`
	PayingCustomer bool               `bson:"payingCustomer" json:"payingCustomer"`
	IsActive       bool               `bson:"isActive" json:"isActive"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
