package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appointmentRepo "serenity/database/repository/appointment"
	recordsRepo "serenity/database/repository/records"
	"serenity/models"
)

// AppointmentHandler exposes the appointment slot CRUD. Admin mutations
// leave an audit trail.
type AppointmentHandler struct {
	Repo    appointmentRepo.Repository
	Records recordsRepo.Repository
	Logger  *zap.Logger
}

func NewAppointmentHandler(repo appointmentRepo.Repository, records recordsRepo.Repository, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{Repo: repo, Records: records, Logger: logger}
}

// List returns appointment slots, filterable by date and availability.
func (h *AppointmentHandler) List(c *gin.Context) {
	f := appointmentRepo.Filter{
		Date:     c.Query("date"),
		FromDate: c.Query("from"),
		OnlyFree: c.Query("free") == "true",
	}
	appts, err := h.Repo.FindMany(c.Request.Context(), f, listOptions(c, "date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appts)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	appt, err := h.Repo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if appt == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var appt models.Appointment
	if err := c.ShouldBindJSON(&appt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	created, err := h.Repo.Create(c.Request.Context(), &appt)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, "create", created.ID)
	c.JSON(http.StatusCreated, created)
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	var upd appointmentRepo.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	appt, err := h.Repo.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, "update", appt.ID)
	c.JSON(http.StatusOK, appt)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	appt, err := h.Repo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(c, "delete", appt.ID)
	c.JSON(http.StatusOK, appt)
}

func (h *AppointmentHandler) audit(c *gin.Context, action, id string) {
	entry := &models.AuditLog{
		Actor:    "admin",
		Action:   action,
		Entity:   "appointment",
		EntityID: id,
	}
	if err := h.Records.AppendAudit(c.Request.Context(), entry); err != nil {
		h.Logger.Warn("failed to append audit entry", zap.Error(err))
	}
}
