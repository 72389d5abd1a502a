package scheduling

import (
	"context"

	"serenity/models"
)

// BookingInput carries the customer-submitted booking form.
type BookingInput struct {
	AppointmentID    string   `json:"appointmentId"`
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	SelectedServices []string `json:"selectedServices,omitempty"`
}

// Service composes repository operations transactionally. It is the
// only place in the system where multi-document writes happen.
type Service interface {
	// BookAppointment atomically creates a booking and flips the target
	// appointment to booked. Either both writes commit or neither is
	// retained: no appointment ends up booked without a booking
	// document, and no booking exists whose appointment is free.
	BookAppointment(ctx context.Context, in BookingInput) (*models.Booking, error)

	// CancelBooking atomically deletes the booking and frees its
	// appointment, making the slot eligible again.
	CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error)
}
