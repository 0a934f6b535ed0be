// resource.go models the closed set of shareable resource types and the
// polymorphic dispatch table that resolves a (type, id) pair to its payload.
// Adding a new shareable resource type means adding one constant, one Register
// call at wiring time, and nothing else.
package share

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ResourceType enumerates what a shareable link may point to.
type ResourceType string

const (
	ResourceJob       ResourceType = "job"
	ResourceReport    ResourceType = "report"
	ResourceDashboard ResourceType = "dashboard"
)

// ValidResourceType reports whether s names a recognized resource type.
func ValidResourceType(s string) bool {
	switch ResourceType(s) {
	case ResourceJob, ResourceReport, ResourceDashboard:
		return true
	}
	return false
}

// Resource is the fetched payload plus the ownership metadata the issuer needs
// for its authorization check. Payload is the JSON-serializable domain object
// (models.Job, models.Report, models.Dashboard).
type Resource struct {
	Type           ResourceType
	ID             string
	OrganizationID string
	Payload        interface{}
}

// Fetcher loads one resource by id from its owning domain store.
// Returns nil, nil when the resource does not exist.
type Fetcher func(ctx context.Context, id string) (*Resource, error)

// Registry maps resource types to their fetch capability.
type Registry struct {
	fetchers map[ResourceType]Fetcher
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: make(map[ResourceType]Fetcher)}
}

// Register installs the fetcher for one resource type. Registering the same
// type twice is a wiring bug and panics at startup rather than silently
// shadowing the earlier fetcher.
func (r *Registry) Register(t ResourceType, f Fetcher) {
	if _, dup := r.fetchers[t]; dup {
		panic(fmt.Sprintf("share: fetcher for resource type %q registered twice", t))
	}
	r.fetchers[t] = f
}

// errUnregisteredType marks a stored link record referencing a resource type
// the registry does not serve. The enumeration invariant should make this
// impossible; the resolver folds it into the generic invalid-link failure.
var errUnregisteredType = errors.New("no fetcher registered for resource type")

// Fetch dispatches to the registered fetcher.
func (r *Registry) Fetch(ctx context.Context, t ResourceType, id string) (*Resource, error) {
	f, ok := r.fetchers[t]
	if !ok {
		return nil, fmt.Errorf("%w %q", errUnregisteredType, t)
	}
	return f(ctx, id)
}

// Types returns the registered resource types, sorted for stable output.
func (r *Registry) Types() []ResourceType {
	out := make([]ResourceType, 0, len(r.fetchers))
	for t := range r.fetchers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
