// Package authz defines the authorization collaborator interface for the
// scoring engine. The engine delegates every visibility and mutation
// decision here and performs no access control of its own. It ships an
// allow-all mode for development and a group-based mode for deployments
// behind a trusted identity proxy.
package authz

import "context"

// Resource names for authorization checks.
const (
	ResourceScorecards = "scorecards"
	ResourceMetrics    = "metrics"
	ResourceEntries    = "entries"
)

// Verb names for authorization checks.
const (
	VerbView   = "view"
	VerbMutate = "mutate"
)

// Request represents one authorization check.
type Request struct {
	User        string
	Groups      []string
	Resource    string
	Verb        string
	ScorecardID string // Empty for checks not scoped to a scorecard.
}

// Authorizer checks whether a caller may perform an action.
type Authorizer interface {
	Authorize(ctx context.Context, req Request) (bool, error)
}
