package notification

import (
	"context"

	"serenity/models"
)

// Task type names for the notification queue.
const (
	TypeBookingConfirmed = "booking:confirmed"
	TypeBookingCancelled = "booking:cancelled"
)

// Dispatcher enqueues booking notifications. Dispatch is decoupled from
// the transactional core: a dispatch failure is logged by the caller
// and never rolls back or fails the booking.
type Dispatcher interface {
	BookingConfirmed(ctx context.Context, p models.NotificationPayload) error
	BookingCancelled(ctx context.Context, p models.NotificationPayload) error
}

// Sender delivers one notification. The delivery channel itself lives
// outside this system; the production sender records the dispatch.
type Sender interface {
	Send(ctx context.Context, p models.NotificationPayload) error
}
