package scorecard

// LifecycleState represents a metric's lifecycle state.
type LifecycleState string

const (
	StateActive   LifecycleState = "active"
	StateArchived LifecycleState = "archived"
	// StateDeleted is the terminal state reached by hard delete; no record
	// remains once it is entered.
	StateDeleted LifecycleState = "deleted"
)

// TransitionRule defines an allowed lifecycle transition.
type TransitionRule struct {
	From LifecycleState
	To   LifecycleState
}

// allowedTransitions defines the metric lifecycle: a metric is created
// active, may be archived and restored any number of times, and may be hard
// deleted only while archived.
var allowedTransitions = []TransitionRule{
	{From: StateActive, To: StateArchived},
	{From: StateArchived, To: StateActive},
	{From: StateArchived, To: StateDeleted},
}

// lifecycleState returns the metric's current state.
func lifecycleState(m *MetricRecord) LifecycleState {
	if m.IsActive {
		return StateActive
	}
	return StateArchived
}

// validateTransition checks that from->to is an allowed lifecycle
// transition. Same-state transitions are a no-op and allowed.
func validateTransition(from, to LifecycleState) error {
	if from == to {
		return nil
	}
	for _, t := range allowedTransitions {
		if t.From == from && t.To == to {
			return nil
		}
	}
	return conflictErrf("lifecycle transition from %s to %s is not allowed", from, to)
}
