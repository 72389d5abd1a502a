package notification

import (
	"context"

	"go.uber.org/zap"

	"serenity/models"
)

// LogSender records dispatches in the application log. The external
// chat-bot channel is out of scope here; swapping it in means
// implementing Sender and wiring it in main.
type LogSender struct {
	Logger *zap.Logger
}

func (s *LogSender) Send(ctx context.Context, p models.NotificationPayload) error {
	s.Logger.Info("notification dispatched",
		zap.String("kind", p.Kind),
		zap.String("bookingId", p.BookingID),
		zap.String("appointmentId", p.AppointmentID),
		zap.String("email", p.Email),
		zap.String("date", p.Date),
		zap.String("startTime", p.StartTime))
	return nil
}
