package ragRepo

import (
	"context"

	"serenity/database"
	"serenity/models"
)

// Repository backs the RAG usage dashboard: systems, their
// conversations and messages, and billable usage records. These carry
// no invariants beyond the shared repository contract.
type Repository interface {
	ListSystems(ctx context.Context, opts database.ListOptions) ([]models.RagSystem, error)
	GetSystem(ctx context.Context, id string) (*models.RagSystem, error)
	CreateSystem(ctx context.Context, sys *models.RagSystem) (*models.RagSystem, error)
	DeleteSystem(ctx context.Context, id string) (*models.RagSystem, error)

	ListConversations(ctx context.Context, ragSystemID string, opts database.ListOptions) ([]models.Conversation, error)
	CreateConversation(ctx context.Context, c *models.Conversation) (*models.Conversation, error)

	ListMessages(ctx context.Context, conversationID string, opts database.ListOptions) ([]models.Message, error)
	AppendMessage(ctx context.Context, m *models.Message) (*models.Message, error)

	ListUsage(ctx context.Context, ragSystemID string, opts database.ListOptions) ([]models.UsageRecord, error)
	RecordUsage(ctx context.Context, u *models.UsageRecord) (*models.UsageRecord, error)
}
