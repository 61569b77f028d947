package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit outcomes.
const (
	AuditSucceeded = "succeeded"
	AuditFailed    = "failed"
)

// AuditEntry records one mutating action an operator performed through the console.
type AuditEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OperatorID string             `bson:"operator_id" json:"operator_id"`
	Action     string             `bson:"action" json:"action"`     // e.g. "resolve_feedback"
	Resource   string             `bson:"resource" json:"resource"` // "feedback", "maintenance", "chat"
	ResourceID string             `bson:"resource_id,omitempty" json:"resource_id,omitempty"`
	Outcome    string             `bson:"outcome" json:"outcome"`
	Message    string             `bson:"message,omitempty" json:"message,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
