package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ragRepo "serenity/database/repository/rag"
	recordsRepo "serenity/database/repository/records"
	"serenity/models"
)

// AdminHandler serves the admin dashboard data: RAG systems with their
// conversations and usage, payments, and the audit trail.
type AdminHandler struct {
	Rag     ragRepo.Repository
	Records recordsRepo.Repository
}

func NewAdminHandler(rag ragRepo.Repository, records recordsRepo.Repository) *AdminHandler {
	return &AdminHandler{Rag: rag, Records: records}
}

func (h *AdminHandler) ListRagSystems(c *gin.Context) {
	systems, err := h.Rag.ListSystems(c.Request.Context(), listOptions(c, "createdAt"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, systems)
}

func (h *AdminHandler) GetRagSystem(c *gin.Context) {
	sys, err := h.Rag.GetSystem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if sys == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "rag system not found"})
		return
	}
	c.JSON(http.StatusOK, sys)
}

func (h *AdminHandler) CreateRagSystem(c *gin.Context) {
	var sys models.RagSystem
	if err := c.ShouldBindJSON(&sys); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	created, err := h.Rag.CreateSystem(c.Request.Context(), &sys)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandler) DeleteRagSystem(c *gin.Context) {
	sys, err := h.Rag.DeleteSystem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sys)
}

func (h *AdminHandler) ListConversations(c *gin.Context) {
	convs, err := h.Rag.ListConversations(c.Request.Context(), c.Param("id"), listOptions(c, "createdAt"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, convs)
}

func (h *AdminHandler) CreateConversation(c *gin.Context) {
	var conv models.Conversation
	if err := c.ShouldBindJSON(&conv); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	conv.RagSystemID = c.Param("id")
	created, err := h.Rag.CreateConversation(c.Request.Context(), &conv)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandler) ListMessages(c *gin.Context) {
	msgs, err := h.Rag.ListMessages(c.Request.Context(), c.Param("id"), listOptions(c, "createdAt"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *AdminHandler) AppendMessage(c *gin.Context) {
	var msg models.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	msg.ConversationID = c.Param("id")
	created, err := h.Rag.AppendMessage(c.Request.Context(), &msg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandler) ListUsage(c *gin.Context) {
	usage, err := h.Rag.ListUsage(c.Request.Context(), c.Param("id"), listOptions(c, "createdAt"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, usage)
}

func (h *AdminHandler) RecordUsage(c *gin.Context) {
	var rec models.UsageRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	rec.RagSystemID = c.Param("id")
	created, err := h.Rag.RecordUsage(c.Request.Context(), &rec)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandler) ListPayments(c *gin.Context) {
	payments, err := h.Records.ListPayments(c.Request.Context(), listOptions(c, "createdAt"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *AdminHandler) GetPayment(c *gin.Context) {
	p, err := h.Records.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *AdminHandler) CreatePayment(c *gin.Context) {
	var p models.Payment
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	created, err := h.Records.CreatePayment(c.Request.Context(), &p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandler) UpdatePaymentStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	p, err := h.Records.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	logs, err := h.Records.ListAudit(c.Request.Context(), listOptions(c, "createdAt"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
