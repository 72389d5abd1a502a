package appointmentRepo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"serenity/database"
	"serenity/models"
)

// Filter narrows FindMany results.
type Filter struct {
	Date     string // exact day, YYYY-MM-DD
	FromDate string // lower bound on date
	OnlyFree bool   // unbooked slots only
}

// Update carries the admin-editable fields; nil means leave unchanged.
type Update struct {
	Date      *string
	StartTime *string
	EndTime   *string
	Duration  *int
}

// Repository is the typed CRUD surface for appointment slots. All
// non-transactional operations run through the retry executor.
type Repository interface {
	FindMany(ctx context.Context, f Filter, opts database.ListOptions) ([]models.Appointment, error)
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, appt *models.Appointment) (*models.Appointment, error)
	Update(ctx context.Context, id string, upd Update) (*models.Appointment, error)
	Delete(ctx context.Context, id string) (*models.Appointment, error)

	// Transactional steps. The context is expected to be a session
	// context from the transaction coordinator; they are guarded
	// conditional writes, not read-then-write.
	MarkBooked(ctx context.Context, oid primitive.ObjectID) error
	MarkFree(ctx context.Context, oid primitive.ObjectID) error
}
