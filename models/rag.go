package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RagSystem describes one deployed retrieval-augmented chat system
// whose usage is billed through the dashboard.
type RagSystem struct {
	OID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID          string             `bson:"-" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Provider    string             `bson:"provider" json:"provider"`
	Model       string             `bson:"model" json:"model"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (r *RagSystem) Normalize() {
	r.ID = r.OID.Hex()
}

// Conversation groups the messages of one chat session.
type Conversation struct {
	OID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID           string             `bson:"-" json:"id"`
	RagSystemOID primitive.ObjectID `bson:"ragSystemId" json:"-"`
	RagSystemID  string             `bson:"-" json:"ragSystemId"`
	Title        string             `bson:"title,omitempty" json:"title,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (c *Conversation) Normalize() {
	c.ID = c.OID.Hex()
	c.RagSystemID = c.RagSystemOID.Hex()
}

// Message is one turn of a conversation, with token counts for billing.
type Message struct {
	OID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID               string             `bson:"-" json:"id"`
	ConversationOID  primitive.ObjectID `bson:"conversationId" json:"-"`
	ConversationID   string             `bson:"-" json:"conversationId"`
	Role             string             `bson:"role" json:"role"`
	Content          string             `bson:"content" json:"content"`
	PromptTokens     int                `bson:"promptTokens" json:"promptTokens"`
	CompletionTokens int                `bson:"completionTokens" json:"completionTokens"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

func (m *Message) Normalize() {
	m.ID = m.OID.Hex()
	m.ConversationID = m.ConversationOID.Hex()
}

// UsageRecord is one billable usage entry for a RAG system.
type UsageRecord struct {
	OID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID               string             `bson:"-" json:"id"`
	RagSystemOID     primitive.ObjectID `bson:"ragSystemId" json:"-"`
	RagSystemID      string             `bson:"-" json:"ragSystemId"`
	PromptTokens     int                `bson:"promptTokens" json:"promptTokens"`
	CompletionTokens int                `bson:"completionTokens" json:"completionTokens"`
	CostUSD          float64            `bson:"costUsd" json:"costUsd"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

func (u *UsageRecord) Normalize() {
	u.ID = u.OID.Hex()
	u.RagSystemID = u.RagSystemOID.Hex()
}
