package models

// NotificationPayload is the task body queued after a booking commits
// or is cancelled. Delivery is fire-and-forget; the transactional core
// never waits on it.
type NotificationPayload struct {
	Kind          string   `json:"kind"` // "booking_confirmed" or "booking_cancelled"
	BookingID     string   `json:"bookingId"`
	AppointmentID string   `json:"appointmentId"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Date          string   `json:"date"`
	StartTime     string   `json:"startTime"`
	Services      []string `json:"services,omitempty"`
}
