package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment is a settled charge shown on the admin dashboard. It carries
// no gateway state; settlement happens outside this system.
type Payment struct {
	OID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID          string             `bson:"-" json:"id"`
	Reference   string             `bson:"reference" json:"reference"`
	Amount      float64            `bson:"amount" json:"amount"`
	Currency    string             `bson:"currency" json:"currency"`
	Status      string             `bson:"status" json:"status"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (p *Payment) Normalize() {
	p.ID = p.OID.Hex()
}

// AuditLog records an administrative action.
type AuditLog struct {
	OID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID        string             `bson:"-" json:"id"`
	Actor     string             `bson:"actor" json:"actor"`
	Action    string             `bson:"action" json:"action"`
	Entity    string             `bson:"entity" json:"entity"`
	EntityID  string             `bson:"entityId,omitempty" json:"entityId,omitempty"`
	Detail    string             `bson:"detail,omitempty" json:"detail,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

func (l *AuditLog) Normalize() {
	l.ID = l.OID.Hex()
}
