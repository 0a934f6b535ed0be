// Package share implements the shareable link subsystem: issuing unguessable,
// optionally password-protected, optionally expiring public links to jobs,
// reports, and dashboards, and resolving those links for anonymous callers.
// Both operations run through the audit wrapper (internal/audit) so every
// attempt, successful or not, leaves exactly one audit trail entry.
package share

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/recruitbase/recruitbase/internal/audit"
	"github.com/recruitbase/recruitbase/internal/auth"
	"github.com/recruitbase/recruitbase/internal/db/models"
	"github.com/recruitbase/recruitbase/internal/telemetry"
)

// LinkStore is the shareable link persistence dependency; satisfied by
// repositories.ShareRepository.
type LinkStore interface {
	Create(ctx context.Context, link *models.ShareableLink) error
	GetByToken(ctx context.Context, token string) (*models.ShareableLink, error)
}

// ActionIssue is the audit action type recorded for link issuance.
const ActionIssue = "share.create"

// Issuer mints shareable links.
type Issuer struct {
	links      LinkStore
	registry   *Registry
	recorder   *audit.Recorder
	publicURL  string
	basePath   string
	bcryptCost int
}

// NewIssuer creates an Issuer. publicURL and basePath together form the prefix
// of every issued URL (e.g. https://app.example.com + /shared).
func NewIssuer(links LinkStore, registry *Registry, recorder *audit.Recorder, publicURL, basePath string, bcryptCost int) *Issuer {
	return &Issuer{
		links:      links,
		registry:   registry,
		recorder:   recorder,
		publicURL:  strings.TrimSuffix(publicURL, "/"),
		basePath:   "/" + strings.Trim(basePath, "/"),
		bcryptCost: bcryptCost,
	}
}

// IssueRequest describes the link to mint.
type IssueRequest struct {
	ResourceType string
	ResourceID   string
	// Password, when non-empty, protects the link. Only the bcrypt hash is
	// persisted; the plaintext is held transiently.
	Password string
	// ExpirationDate is an optional RFC3339 timestamp. A past date is
	// shape-valid and yields an immediately expired link rather than an error.
	ExpirationDate string
}

// IssueResult carries the minted token and the caller-facing URL embedding it.
type IssueResult struct {
	Token        string
	ShareableURL string
	ExpiresAt    *time.Time
}

// Issue validates the request, authorizes the actor against the target
// resource, mints a token, and persists the link record, all wrapped in the
// audit recorder. On success the audit entry's resource id is the minted token;
// on failure it is the attempted resource id.
func (i *Issuer) Issue(ctx context.Context, actor audit.Actor, req IssueRequest) (IssueResult, error) {
	result, err := audit.Run(ctx, i.recorder, audit.Action[IssueResult]{
		Actor:        actor,
		Type:         ActionIssue,
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		ResourceIDFn: func(r IssueResult) string { return r.Token },
		DetailsFn: func(r IssueResult) string {
			return fmt.Sprintf("issued shareable link for %s %s", req.ResourceType, req.ResourceID)
		},
	}, func(ctx context.Context) (IssueResult, error) {
		return i.issue(ctx, actor, req)
	})

	if err == nil {
		telemetry.SharesIssuedTotal.WithLabelValues(req.ResourceType).Inc()
	}

	return result, err
}

func (i *Issuer) issue(ctx context.Context, actor audit.Actor, req IssueRequest) (IssueResult, error) {
	// Input shape.
	if !ValidResourceType(req.ResourceType) {
		return IssueResult{}, &ValidationError{Field: "resource_type",
			Reason: fmt.Sprintf("%q is not a shareable resource type", req.ResourceType)}
	}
	if strings.TrimSpace(req.ResourceID) == "" {
		return IssueResult{}, &ValidationError{Field: "resource_id", Reason: "must not be empty"}
	}
	// Resource ids are UUIDs across all shareable tables. Rejecting malformed
	// ids here keeps them from surfacing as database cast errors.
	if _, err := uuid.Parse(req.ResourceID); err != nil {
		return IssueResult{}, &ValidationError{Field: "resource_id", Reason: "must be a valid UUID"}
	}

	var expiresAt *time.Time
	if req.ExpirationDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpirationDate)
		if err != nil {
			return IssueResult{}, &ValidationError{Field: "expiration_date",
				Reason: "must be an RFC3339 timestamp"}
		}
		expiresAt = &parsed
	}

	// Authorization: the actor's organization must own the target resource.
	// Checked before token generation so no token is ever minted for a request
	// that will be rejected.
	resource, err := i.registry.Fetch(ctx, ResourceType(req.ResourceType), req.ResourceID)
	if err != nil {
		return IssueResult{}, fmt.Errorf("failed to fetch %s %s: %w", req.ResourceType, req.ResourceID, err)
	}
	if resource == nil || resource.OrganizationID != actor.OrganizationID {
		// A resource outside the caller's tenant is indistinguishable from a
		// nonexistent one.
		return IssueResult{}, &AuthorizationError{ResourceType: req.ResourceType, ResourceID: req.ResourceID}
	}

	token, err := GenerateToken()
	if err != nil {
		return IssueResult{}, err
	}

	link := &models.ShareableLink{
		Token:          token,
		OrganizationID: actor.OrganizationID,
		ResourceType:   req.ResourceType,
		ResourceID:     req.ResourceID,
		ExpiresAt:      expiresAt,
		CreatedBy:      actor.ID,
	}

	if req.Password != "" {
		hash, err := auth.HashLinkPassword(req.Password, i.bcryptCost)
		if err != nil {
			return IssueResult{}, err
		}
		link.PasswordHash = &hash
	}

	// Generate-then-persist: the token only exists once the record backing it
	// does, so a persistence failure leaves nothing reserved.
	if err := i.links.Create(ctx, link); err != nil {
		return IssueResult{}, err
	}

	return IssueResult{
		Token:        token,
		ShareableURL: fmt.Sprintf("%s%s/%s", i.publicURL, i.basePath, token),
		ExpiresAt:    expiresAt,
	}, nil
}
