package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wage shift roles.
const (
	RoleManager   = "manager"
	RoleBartender = "bartender"
	RoleLogistics = "logistics"
)

// WageShift is one staff member's paid assignment to one event.
type WageShift struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Event    primitive.ObjectID  `bson:"event" json:"event"`
	Employee *primitive.ObjectID `bson:"employee,omitempty" json:"employee,omitempty"`
	Role     string              `bson:"role" json:"role"`

	StartTime string `bson:"startTime" json:"startTime"` // "HH:mm"
	EndTime   string `bson:"endTime" json:"endTime"`     // "HH:mm"
	Duration  int    `bson:"duration,omitempty" json:"duration,omitempty"` // minutes

	Wage  float64 `bson:"wage" json:"wage"`
	Tip   float64 `bson:"tip" json:"tip"`
	Paid  bool    `bson:"paid" json:"paid"`
	Notes string  `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
