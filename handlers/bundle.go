package handlers

// HandlerBundle groups the route handlers so route registration takes a
// single dependency.
type HandlerBundle struct {
	Appointments *AppointmentHandler
	Bookings     *BookingHandler
	Blogs        *BlogHandler
	Admin        *AdminHandler
}
