package share

import (
	"context"
	"errors"
	"time"

	"github.com/recruitbase/recruitbase/internal/audit"
	"github.com/recruitbase/recruitbase/internal/auth"
	"github.com/recruitbase/recruitbase/internal/telemetry"
)

// ActionResolve is the audit action type recorded for link resolution. Every
// resolution attempt is audited, successful or not, with the anonymous actor.
const ActionResolve = "share.resolve"

// Resolver handles anonymous link resolution.
type Resolver struct {
	links      LinkStore
	registry   *Registry
	recorder   *audit.Recorder
	auditReads bool
	now        func() time.Time
}

// NewResolver creates a Resolver using the wall clock for expiry checks.
// Resolution attempts are audited by default.
func NewResolver(links LinkStore, registry *Registry, recorder *audit.Recorder) *Resolver {
	return &Resolver{links: links, registry: registry, recorder: recorder, auditReads: true, now: time.Now}
}

// DisableReadAuditing turns off audit entries for resolution attempts
// (audit.log_read_operations: false). Issuance auditing is unaffected.
func (r *Resolver) DisableReadAuditing() {
	r.auditReads = false
}

// Resolution is the successful outcome of resolving a link: the target
// resource's payload plus the link metadata a public viewer is allowed to see.
type Resolution struct {
	ResourceType ResourceType
	Resource     *Resource
	// OrganizationID is the link owner's tenant, used to attribute the
	// anonymous access in the audit trail.
	OrganizationID string
	CreatedAt      time.Time
	ExpiresAt      *time.Time
}

// Resolve looks up the token and walks the access policy in strict order:
// existence, then expiration, then password, then resource fetch. Each check
// only runs once every earlier one has passed, so the error reported never
// discloses more than the caller has already proven: a wrong password on an
// expired link reports expiry, and nothing about a link is revealed until its
// token has been presented.
//
// Failures map to the sentinel errors in errors.go; callers translate those to
// transport-level responses. Resolution is read-only and idempotent.
func (r *Resolver) Resolve(ctx context.Context, clientIP, token, password string) (Resolution, error) {
	res, err := r.run(ctx, clientIP, token, password)

	telemetry.ShareResolutionsTotal.WithLabelValues(resolutionResourceType(res), resolutionOutcome(err)).Inc()

	return res, err
}

func (r *Resolver) run(ctx context.Context, clientIP, token, password string) (Resolution, error) {
	if !r.auditReads {
		return r.resolve(ctx, token, password)
	}

	return audit.Run(ctx, r.recorder, audit.Action[Resolution]{
		Actor:        audit.Anonymous(clientIP),
		Type:         ActionResolve,
		ResourceType: "shareable_link",
		// No static resource id: an unknown token's failure entry must not
		// echo attacker-supplied input as a resource reference.
		ResourceIDFn: func(Resolution) string { return token },
		DetailsFn: func(res Resolution) string {
			return "resolved shareable link to " + string(res.ResourceType)
		},
		OrganizationIDFn: func(res Resolution) string { return res.OrganizationID },
	}, func(ctx context.Context) (Resolution, error) {
		return r.resolve(ctx, token, password)
	})
}

func (r *Resolver) resolve(ctx context.Context, token, password string) (Resolution, error) {
	link, err := r.links.GetByToken(ctx, token)
	if err != nil {
		return Resolution{}, err
	}
	if link == nil || link.Revoked {
		return Resolution{}, ErrInvalidLink
	}

	if link.IsExpired(r.now()) {
		return Resolution{}, ErrLinkExpired
	}

	if link.RequiresPassword() {
		if password == "" {
			return Resolution{}, ErrPasswordRequired
		}
		if !auth.CheckLinkPassword(password, *link.PasswordHash) {
			return Resolution{}, ErrWrongPassword
		}
	}

	resource, err := r.registry.Fetch(ctx, ResourceType(link.ResourceType), link.ResourceID)
	if err != nil {
		if errors.Is(err, errUnregisteredType) {
			// Data-integrity fault; present it as an invalid link rather than
			// leaking internals.
			return Resolution{}, ErrInvalidLink
		}
		return Resolution{}, err
	}
	if resource == nil {
		// The link outlived its target.
		return Resolution{}, ErrResourceGone
	}

	return Resolution{
		ResourceType:   resource.Type,
		Resource:       resource,
		OrganizationID: link.OrganizationID,
		CreatedAt:      link.CreatedAt,
		ExpiresAt:      link.ExpiresAt,
	}, nil
}

func resolutionResourceType(res Resolution) string {
	if res.ResourceType == "" {
		return "none"
	}
	return string(res.ResourceType)
}

func resolutionOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrLinkExpired):
		return "expired"
	case errors.Is(err, ErrPasswordRequired):
		return "password_required"
	case errors.Is(err, ErrWrongPassword):
		return "wrong_password"
	case errors.Is(err, ErrResourceGone):
		return "resource_gone"
	case errors.Is(err, ErrInvalidLink):
		return "invalid"
	default:
		return "error"
	}
}
