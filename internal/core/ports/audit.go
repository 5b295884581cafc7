package ports

import (
	"context"

	"github.com/artshoppe/storefront/internal/core/domain"
)

// AuditRepository persists audit events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuditEvent) error
}

// AuditService processes a single audit event.
type AuditService interface {
	Process(ctx context.Context, event domain.AuditEvent) error
}

// AuditSink accepts audit events without blocking the caller.
type AuditSink interface {
	Record(event domain.AuditEvent)
}
