package scheduling

import (
	"context"
	"time"

	"go.uber.org/zap"

	"serenity/database"
	appointmentRepo "serenity/database/repository/appointment"
	bookingRepo "serenity/database/repository/booking"
	"serenity/models"
	"serenity/services/notification"
)

// DefaultSchedulingService is the production implementation.
type DefaultSchedulingService struct {
	Appointments appointmentRepo.Repository
	Bookings     bookingRepo.Repository
	Tx           database.TxRunner
	Dispatcher   notification.Dispatcher
	Logger       *zap.Logger
}

// BookAppointment implements the booking transaction.
//
// The initial read is advisory: it produces friendly not-found and
// already-booked errors without touching the store's write path. The
// race between two concurrent attempts is closed by MarkBooked's
// guarded write inside the transaction, whose zero-match result aborts
// everything including the booking insert.
func (s *DefaultSchedulingService) BookAppointment(ctx context.Context, in BookingInput) (*models.Booking, error) {
	oid, err := database.ParseID(in.AppointmentID)
	if err != nil {
		return nil, err
	}

	appt, err := s.Appointments.FindByID(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, &database.NotFoundError{Entity: "appointment", ID: in.AppointmentID}
	}
	if appt.IsBooked {
		return nil, &database.ConflictError{Reason: "appointment already booked"}
	}

	services := in.SelectedServices
	if services == nil {
		services = []string{}
	}
	booking := &models.Booking{
		Name:             in.Name,
		Email:            in.Email,
		Phone:            in.Phone,
		Notes:            in.Notes,
		SelectedServices: services,
		AppointmentOID:   oid,
	}

	err = s.Tx.Run(ctx,
		func(txCtx context.Context) error {
			return s.Bookings.Insert(txCtx, booking)
		},
		func(txCtx context.Context) error {
			return s.Appointments.MarkBooked(txCtx, oid)
		},
	)
	if err != nil {
		return nil, err
	}

	appt.IsBooked = true
	booking.Appointment = appt

	s.notify(func(nctx context.Context) error {
		return s.Dispatcher.BookingConfirmed(nctx, payload(booking, appt))
	})
	return booking, nil
}

// CancelBooking is the compensating inverse of BookAppointment,
// wrapped in the same transactional guarantee: deleting the booking and
// freeing the appointment commit together, so a crash cannot strand a
// slot as booked with no owning booking.
func (s *DefaultSchedulingService) CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.Bookings.FindByID(ctx, bookingID, nil)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, &database.NotFoundError{Entity: "booking", ID: bookingID}
	}

	appt, err := s.Appointments.FindByID(ctx, booking.AppointmentID)
	if err != nil {
		return nil, err
	}

	ops := []database.Op{
		func(txCtx context.Context) error {
			return s.Bookings.Remove(txCtx, booking.OID)
		},
	}
	// An appointment removed out of band leaves nothing to free; the
	// cancellation still has to delete the booking.
	if appt != nil {
		ops = append(ops, func(txCtx context.Context) error {
			return s.Appointments.MarkFree(txCtx, booking.AppointmentOID)
		})
	}
	if err := s.Tx.Run(ctx, ops...); err != nil {
		return nil, err
	}

	s.notify(func(nctx context.Context) error {
		return s.Dispatcher.BookingCancelled(nctx, payload(booking, appt))
	})
	return booking, nil
}

// notify runs a dispatch without letting its outcome reach the caller.
func (s *DefaultSchedulingService) notify(dispatch func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dispatch(ctx); err != nil {
		s.Logger.Warn("notification dispatch failed", zap.Error(err))
	}
}

func payload(b *models.Booking, appt *models.Appointment) models.NotificationPayload {
	p := models.NotificationPayload{
		BookingID:     b.ID,
		AppointmentID: b.AppointmentID,
		Name:          b.Name,
		Email:         b.Email,
		Services:      b.SelectedServices,
	}
	if appt != nil {
		p.Date = appt.Date
		p.StartTime = appt.StartTime
	}
	return p
}
