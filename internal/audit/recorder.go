// Package audit implements the action auditing wrapper: every state-mutating or
// security-relevant operation in Recruitbase runs through Run, which executes
// the operation and then durably records its outcome, success or failure, as
// exactly one audit log entry before the caller observes the result.
//
// Audit entries are intentionally separate from application logs because they
// have different consumers and retention requirements: application logs are
// ephemeral debug output consumed by on-call engineers, while audit entries are
// immutable records consumed by security and compliance teams. The database
// write is the primary record; entries can additionally be shipped to external
// destinations (file, webhook) via the Shipper interface.
//
// The wrapped operation's outcome and the audit write's outcome are two
// independent error channels. A failed audit write is reported through slog and
// the audit_write_failures_total metric; it is never substituted for, or allowed
// to mask, the operation's own result.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/recruitbase/recruitbase/internal/db/models"
	"github.com/recruitbase/recruitbase/internal/safego"
	"github.com/recruitbase/recruitbase/internal/telemetry"
)

// writeTimeout bounds the synchronous audit write so a slow audit store cannot
// stall the request indefinitely.
const writeTimeout = 5 * time.Second

// Actor identifies who performed an action. Unauthenticated flows use
// Anonymous.
type Actor struct {
	ID             string
	Name           string
	OrganizationID string // empty for anonymous callers
	IPAddress      string
}

// Anonymous returns the sentinel actor recorded for unauthenticated flows such
// as public link resolution.
func Anonymous(ipAddress string) Actor {
	return Actor{
		ID:        models.AnonymousActorID,
		Name:      models.AnonymousActorID,
		IPAddress: ipAddress,
	}
}

// Store is the audit log persistence dependency; satisfied by
// repositories.AuditRepository.
type Store interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Recorder writes audit entries to the store and optionally ships them to
// external destinations. Safe for concurrent use.
type Recorder struct {
	store   Store
	shipper Shipper // may be nil
}

// NewRecorder creates a Recorder. shipper may be nil when no external
// destinations are configured.
func NewRecorder(store Store, shipper Shipper) *Recorder {
	return &Recorder{store: store, shipper: shipper}
}

// Action describes the audit metadata for one wrapped operation. The resource
// id is often only known after the operation completes (e.g. a freshly minted
// link token), so it can be supplied either statically via ResourceID or
// derived from the operation's result via ResourceIDFn.
type Action[T any] struct {
	Actor        Actor
	Type         string // free-form category, e.g. "share.create"
	ResourceType string
	ResourceID   string         // static id, when known up front
	ResourceIDFn func(T) string // derived from the result on success; overrides ResourceID
	DetailsFn    func(T) string // optional human-readable success summary
	// OrganizationIDFn attributes a successful anonymous operation to a tenant
	// discovered during the operation (e.g. the owner of a resolved link). It
	// overrides the actor's organization.
	OrganizationIDFn func(T) string
	Metadata         map[string]interface{}
}

// Run executes op and records exactly one audit entry describing its outcome.
// The entry is written after op has fully concluded, never before and never
// concurrently with it. Run returns op's result and error unchanged; callers
// needing a specific error type can inspect it with errors.Is/As as usual.
func Run[T any](ctx context.Context, rec *Recorder, action Action[T], op func(context.Context) (T, error)) (T, error) {
	result, opErr := op(ctx)

	entry := &models.AuditLog{
		ActorID:   action.Actor.ID,
		ActorName: action.Actor.Name,
		Action:    action.Type,
		Succeeded: opErr == nil,
		Metadata:  action.Metadata,
	}
	if action.Actor.OrganizationID != "" {
		entry.OrganizationID = &action.Actor.OrganizationID
	}
	if action.Actor.IPAddress != "" {
		entry.IPAddress = &action.Actor.IPAddress
	}
	if action.ResourceType != "" {
		entry.ResourceType = &action.ResourceType
	}

	if opErr != nil {
		details := fmt.Sprintf("%s %s failed: %v", action.Type, action.ResourceType, opErr)
		entry.Details = &details
		if action.ResourceID != "" {
			entry.ResourceID = &action.ResourceID
		}
	} else {
		resourceID := action.ResourceID
		if action.ResourceIDFn != nil {
			resourceID = action.ResourceIDFn(result)
		}
		if resourceID != "" {
			entry.ResourceID = &resourceID
		}
		if action.DetailsFn != nil {
			details := action.DetailsFn(result)
			if details != "" {
				entry.Details = &details
			}
		}
		if action.OrganizationIDFn != nil {
			if org := action.OrganizationIDFn(result); org != "" {
				entry.OrganizationID = &org
			}
		}
	}

	rec.record(ctx, entry)

	return result, opErr
}

// record persists the entry and dispatches it to external destinations. The
// write runs under its own timeout, detached from the request's cancellation,
// so a caller dropping the connection right after the operation concludes does
// not lose the entry.
func (r *Recorder) record(ctx context.Context, entry *models.AuditLog) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := r.store.CreateAuditLog(writeCtx, entry); err != nil {
		slog.Error("failed to write audit log entry",
			"action", entry.Action,
			"actor_id", entry.ActorID,
			"error", err)
		telemetry.AuditWriteFailuresTotal.WithLabelValues(entry.Action).Inc()
	}

	if r.shipper != nil {
		// Shipping is fire-and-forget; external destinations must not add
		// latency to the request path.
		shipped := toLogEntry(entry)
		action := entry.Action
		safego.Go(func() {
			shipCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			defer cancel()
			if err := r.shipper.Ship(shipCtx, shipped); err != nil {
				slog.Error("failed to ship audit log entry", "action", action, "error", err)
				telemetry.AuditWriteFailuresTotal.WithLabelValues(action).Inc()
			}
		})
	}
}

func toLogEntry(e *models.AuditLog) *LogEntry {
	le := &LogEntry{
		Timestamp: e.CreatedAt,
		Action:    e.Action,
		ActorID:   e.ActorID,
		ActorName: e.ActorName,
		Succeeded: e.Succeeded,
		Metadata:  e.Metadata,
	}
	if e.OrganizationID != nil {
		le.OrganizationID = *e.OrganizationID
	}
	if e.ResourceType != nil {
		le.ResourceType = *e.ResourceType
	}
	if e.ResourceID != nil {
		le.ResourceID = *e.ResourceID
	}
	if e.Details != nil {
		le.Details = *e.Details
	}
	if e.IPAddress != nil {
		le.IPAddress = *e.IPAddress
	}
	return le
}
