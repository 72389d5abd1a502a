package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking references exactly one appointment. For the lifetime of a
// booking, the referenced appointment's IsBooked is true.
type Booking struct {
	OID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID               string             `bson:"-" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	Phone            string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Notes            string             `bson:"notes,omitempty" json:"notes,omitempty"`
	SelectedServices []string           `bson:"selectedServices" json:"selectedServices"`
	AppointmentOID   primitive.ObjectID `bson:"appointmentId" json:"-"`
	AppointmentID    string             `bson:"-" json:"appointmentId"`

	// Appointment is attached on request by a relation resolver; it is
	// an application-level lookup, not a store join.
	Appointment *Appointment `bson:"-" json:"appointment,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Normalize fills the string ids from the store-native identifiers.
func (b *Booking) Normalize() {
	b.ID = b.OID.Hex()
	b.AppointmentID = b.AppointmentOID.Hex()
}
