package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appointmentRepo "serenity/database/repository/appointment"
	bookingRepo "serenity/database/repository/booking"
	"serenity/services/scheduling"
)

// BookingHandler exposes booking reads plus the transactional booking
// operations, which it delegates to the scheduling service.
type BookingHandler struct {
	Bookings     bookingRepo.Repository
	Appointments appointmentRepo.Repository
	Scheduler    scheduling.Service
}

func NewBookingHandler(bookings bookingRepo.Repository, appointments appointmentRepo.Repository, scheduler scheduling.Service) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Appointments: appointments, Scheduler: scheduler}
}

// resolver returns an appointment resolver when ?include=appointment is
// set, nil otherwise. Relation loading is opt-in per request.
func (h *BookingHandler) resolver(c *gin.Context) bookingRepo.AppointmentResolver {
	if c.Query("include") != "appointment" {
		return nil
	}
	return h.Appointments.FindByID
}

func (h *BookingHandler) List(c *gin.Context) {
	f := bookingRepo.Filter{
		Email:         c.Query("email"),
		AppointmentID: c.Query("appointmentId"),
	}
	bookings, err := h.Bookings.FindMany(c.Request.Context(), f, listOptions(c, "createdAt"), h.resolver(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.Bookings.FindByID(c.Request.Context(), c.Param("id"), h.resolver(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

// Create books an appointment. The booking insert and the slot flip
// happen in one transaction; a slot taken between the advisory check
// and the commit surfaces as a conflict.
func (h *BookingHandler) Create(c *gin.Context) {
	var in scheduling.BookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	b, err := h.Scheduler.BookAppointment(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) Update(c *gin.Context) {
	var upd bookingRepo.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	b, err := h.Bookings.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Cancel removes the booking and frees its slot atomically.
func (h *BookingHandler) Cancel(c *gin.Context) {
	b, err := h.Scheduler.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
