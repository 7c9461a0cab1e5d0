package domain

import "time"

// AuditAction names a state change recorded in the audit trail.
type AuditAction string

const (
	AuditClientRegistered AuditAction = "client.registered"
	AuditClientUpdated    AuditAction = "client.updated"
	AuditProgramCreated   AuditAction = "program.created"
	AuditProgramUpdated   AuditAction = "program.updated"
	AuditClientEnrolled   AuditAction = "client.enrolled"
	AuditClientUnenrolled AuditAction = "client.unenrolled"
)

const (
	EntityClient  = "client"
	EntityProgram = "program"
)

// AuditEvent records who changed what and when.
type AuditEvent struct {
	Action     AuditAction
	Entity     string
	EntityID   string
	Actor      string
	Details    map[string]string // optional
	OccurredAt time.Time
}
