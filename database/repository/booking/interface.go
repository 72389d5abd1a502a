package bookingRepo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"serenity/database"
	"serenity/models"
)

// AppointmentResolver attaches the related appointment to a booking.
// It is an explicit typed resolver wired by the caller, not a runtime
// model-registry lookup, and it performs a secondary keyed read rather
// than a store join.
type AppointmentResolver func(ctx context.Context, id string) (*models.Appointment, error)

// Filter narrows FindMany results.
type Filter struct {
	Email         string
	AppointmentID string
}

// Update carries the admin-editable booking fields.
type Update struct {
	Name             *string
	Email            *string
	Phone            *string
	Notes            *string
	SelectedServices []string
}

// Repository is the typed CRUD surface for bookings. Bookings are only
// created inside the booking transaction, so the creating write is the
// transactional Insert rather than a standalone Create.
type Repository interface {
	FindMany(ctx context.Context, f Filter, opts database.ListOptions, resolve AppointmentResolver) ([]models.Booking, error)
	FindByID(ctx context.Context, id string, resolve AppointmentResolver) (*models.Booking, error)
	Update(ctx context.Context, id string, upd Update) (*models.Booking, error)

	// Transactional steps; the context is expected to be a session
	// context from the transaction coordinator.
	Insert(ctx context.Context, b *models.Booking) error
	Remove(ctx context.Context, oid primitive.ObjectID) error
}
