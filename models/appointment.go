package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Appointment is a bookable slot created by an administrator. IsBooked
// flips false to true only inside a successful booking transaction and
// back only when the owning booking is cancelled.
type Appointment struct {
	OID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID        string             `bson:"-" json:"id"`
	Date      string             `bson:"date" json:"date"` // YYYY-MM-DD
	StartTime string             `bson:"startTime" json:"startTime"`
	EndTime   string             `bson:"endTime" json:"endTime"`
	Duration  int                `bson:"duration" json:"duration"` // minutes
	IsBooked  bool               `bson:"isBooked" json:"isBooked"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Normalize fills the string id from the store-native identifier.
func (a *Appointment) Normalize() {
	a.ID = a.OID.Hex()
}
