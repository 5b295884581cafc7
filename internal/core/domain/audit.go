package domain

import "time"

// AuditKind classifies an entry in the auth audit trail.
type AuditKind string

const (
	AuditGateDenied      AuditKind = "gate_denied"
	AuditGateError       AuditKind = "gate_error"
	AuditGateRevalidated AuditKind = "gate_revalidated"
	AuditLoginSucceeded  AuditKind = "login_succeeded"
	AuditLoginFailed     AuditKind = "login_failed"
	AuditLogout          AuditKind = "logout"
	AuditAdminCreated    AuditKind = "admin_created"
	AuditAdminUpdated    AuditKind = "admin_updated"
)

// AuditEvent records a single authentication or authorization decision.
type AuditEvent struct {
	ID         string
	Kind       AuditKind
	UserID     string // empty when no identity was resolved
	ActorID    string // admin who performed a back-office change
	Path       string
	RemoteIP   string
	Reason     string
	OccurredAt time.Time
}
