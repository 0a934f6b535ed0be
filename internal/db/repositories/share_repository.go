// share_repository.go implements ShareRepository, providing database queries for
// shareable link records: insertion at issuance time and token lookup at
// resolution time. Links are never updated in place by this subsystem.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/recruitbase/recruitbase/internal/db/models"
)

// ShareRepository handles database operations for shareable links
type ShareRepository struct {
	db *sqlx.DB
}

// NewShareRepository creates a new share repository
func NewShareRepository(db *sqlx.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

// Create inserts a new shareable link record. The token column carries a UNIQUE
// constraint as a backstop against generator collisions; a violation surfaces as
// an infrastructure error rather than being retried here.
func (r *ShareRepository) Create(ctx context.Context, link *models.ShareableLink) error {
	link.ID = uuid.New().String()
	link.CreatedAt = time.Now()

	query := `
		INSERT INTO shareable_links (
			id, token, organization_id, resource_type, resource_id,
			password_hash, expires_at, revoked, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		link.ID,
		link.Token,
		link.OrganizationID,
		link.ResourceType,
		link.ResourceID,
		link.PasswordHash,
		link.ExpiresAt,
		link.Revoked,
		link.CreatedBy,
		link.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create shareable link: %w", err)
	}

	return nil
}

// GetByToken retrieves a shareable link by its public token.
// Returns nil, nil when no link exists for the token.
func (r *ShareRepository) GetByToken(ctx context.Context, token string) (*models.ShareableLink, error) {
	query := `
		SELECT id, token, organization_id, resource_type, resource_id,
		       password_hash, expires_at, revoked, created_by, created_at
		FROM shareable_links
		WHERE token = $1
	`

	var link models.ShareableLink
	err := r.db.GetContext(ctx, &link, query, token)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shareable link: %w", err)
	}

	return &link, nil
}

// ListByOrganization retrieves all links issued within one organization,
// newest first.
func (r *ShareRepository) ListByOrganization(ctx context.Context, orgID string) ([]*models.ShareableLink, error) {
	query := `
		SELECT id, token, organization_id, resource_type, resource_id,
		       password_hash, expires_at, revoked, created_by, created_at
		FROM shareable_links
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`

	links := make([]*models.ShareableLink, 0)
	if err := r.db.SelectContext(ctx, &links, query, orgID); err != nil {
		return nil, fmt.Errorf("failed to list shareable links: %w", err)
	}

	return links, nil
}
