package recordsRepo

import (
	"context"

	"serenity/database"
	"serenity/models"
)

// Repository backs the admin payments view and the audit trail.
type Repository interface {
	ListPayments(ctx context.Context, opts database.ListOptions) ([]models.Payment, error)
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	CreatePayment(ctx context.Context, p *models.Payment) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id, status string) (*models.Payment, error)

	AppendAudit(ctx context.Context, l *models.AuditLog) error
	ListAudit(ctx context.Context, opts database.ListOptions) ([]models.AuditLog, error)
}
