// Package models - shareable_link.go defines the ShareableLink model: a capability
// record granting anonymous, policy-gated read access to one resource via an
// unguessable public token.
package models

import "time"

// ShareableLink maps a public token to an internal resource reference plus its
// access policy. Records are created once and read many times; the subsystem
// never updates them (the Revoked flag is an extension point checked during
// resolution, not an operation this service exposes).
type ShareableLink struct {
	ID             string     `db:"id"`
	Token          string     `db:"token"` // public lookup key; never the internal resource id
	OrganizationID string     `db:"organization_id"`
	ResourceType   string     `db:"resource_type"`
	ResourceID     string     `db:"resource_id"`
	PasswordHash   *string    `db:"password_hash"` // bcrypt hash; nil when the link is open
	ExpiresAt      *time.Time `db:"expires_at"`    // nil means the link never expires
	Revoked        bool       `db:"revoked"`
	CreatedBy      string     `db:"created_by"`
	CreatedAt      time.Time  `db:"created_at"`
}

// IsExpired reports whether the link's expiry, if any, has passed at the given
// instant. An expired link is treated exactly like a nonexistent one except for
// the error kind reported to the caller.
func (l *ShareableLink) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// RequiresPassword reports whether resolution must supply a matching password.
func (l *ShareableLink) RequiresPassword() bool {
	return l.PasswordHash != nil && *l.PasswordHash != ""
}
