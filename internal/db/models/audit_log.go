// Package models - audit_log.go defines the AuditLog model for recording the outcome
// of every wrapped action, capturing actor, action type, affected resource, a
// human-readable details line, and whether the action succeeded.
package models

import "time"

// AuditLog represents one immutable audit trail entry. Exactly one entry is
// written per wrapped action invocation, after the action concludes. Entries
// are never updated or deleted.
type AuditLog struct {
	ID             string
	ActorID        string // "anonymous" for unauthenticated link resolution
	ActorName      string
	OrganizationID *string // Nullable: anonymous flows carry no tenant
	Action         string  // "share.create", "share.resolve"
	ResourceType   *string // "job", "report", "dashboard", "shareable_link"
	ResourceID     *string // May be unknown until the wrapped action completes
	Details        *string // Human-readable outcome summary
	Succeeded      bool
	Metadata       map[string]interface{} // JSONB: additional context
	IPAddress      *string                // Client IP
	CreatedAt      time.Time
}

// AnonymousActorID is the sentinel actor recorded for unauthenticated flows
// such as public link resolution.
const AnonymousActorID = "anonymous"
