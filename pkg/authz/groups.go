package authz

import "context"

// GroupAuthorizer grants view access to any identified caller and mutate
// access to members of the configured groups. Group membership comes from
// the identity collaborator (headers or JWT claims).
type GroupAuthorizer struct {
	// MutatorGroups are the group names whose members may mutate. Empty
	// means nobody may mutate.
	MutatorGroups []string
}

// NewGroupAuthorizer creates a GroupAuthorizer for the given mutator groups.
func NewGroupAuthorizer(mutatorGroups []string) *GroupAuthorizer {
	return &GroupAuthorizer{MutatorGroups: mutatorGroups}
}

// Authorize allows views for identified callers and mutations for mutator
// group members.
func (g *GroupAuthorizer) Authorize(_ context.Context, req Request) (bool, error) {
	if req.User == "" {
		return false, nil
	}
	if req.Verb == VerbView {
		return true, nil
	}
	for _, want := range g.MutatorGroups {
		for _, have := range req.Groups {
			if have == want {
				return true, nil
			}
		}
	}
	return false, nil
}
