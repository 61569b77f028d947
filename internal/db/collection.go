package db

import (
	"context"

	"github.com/ukydev/ev-rental-console/internal/models"
)

// OperatorCollection defines the interface for console account operations.
type OperatorCollection interface {
	InsertOperator(ctx context.Context, op models.Operator) error
	FindOperatorByID(ctx context.Context, id string) (*models.Operator, error)
	FindOperatorByUsername(ctx context.Context, username string) (*models.Operator, error)
	FindOperatorByEmail(ctx context.Context, email string) (*models.Operator, error)
	UpdateOperator(ctx context.Context, id string, op models.Operator) error
	UpdateLastLogin(ctx context.Context, id string) error
}

// AuditLog defines the interface for the admin action log.
type AuditLog interface {
	Record(ctx context.Context, entry models.AuditEntry) error
	Find(ctx context.Context, filter AuditFilter) ([]models.AuditEntry, error)
}

// AuditFilter narrows an audit log query.
type AuditFilter struct {
	OperatorID string
	Resource   string
	ResourceID string
	Limit      int64
}
