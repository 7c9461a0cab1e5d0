package ports

import (
	"context"

	"github.com/clinicdesk/health-records/internal/core/domain"
)

// AuditRepository persists audit events to the append-only trail.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

// AuditRecorder accepts audit events without blocking the caller.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}
