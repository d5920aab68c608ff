package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopAuthorizer(t *testing.T) {
	a := &NoopAuthorizer{}
	ok, err := a.Authorize(context.Background(), Request{})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGroupAuthorizer(t *testing.T) {
	a := NewGroupAuthorizer([]string{"scorecard-admins"})

	// Views are open to any identified caller.
	ok, err := a.Authorize(context.Background(), Request{
		User: "alice", Resource: ResourceScorecards, Verb: VerbView,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// Anonymous callers are denied outright.
	ok, err = a.Authorize(context.Background(), Request{
		Resource: ResourceScorecards, Verb: VerbView,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	// Mutations require group membership.
	ok, err = a.Authorize(context.Background(), Request{
		User: "alice", Groups: []string{"engineering"},
		Resource: ResourceMetrics, Verb: VerbMutate,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.Authorize(context.Background(), Request{
		User: "bob", Groups: []string{"engineering", "scorecard-admins"},
		Resource: ResourceMetrics, Verb: VerbMutate,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// No mutator groups configured means nobody mutates.
	none := NewGroupAuthorizer(nil)
	ok, err = none.Authorize(context.Background(), Request{
		User: "bob", Groups: []string{"scorecard-admins"},
		Resource: ResourceMetrics, Verb: VerbMutate,
	})
	require.NoError(t, err)
	assert.False(t, ok)
}
