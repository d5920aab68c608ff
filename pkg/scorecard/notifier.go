package scorecard

// Notifier receives "view is stale" signals after engine mutations so the
// presentation collaborator can re-fetch. Implementations must not block;
// signal delivery is best-effort and never fails the mutation.
type Notifier interface {
	ScorecardStale(scorecardID string)
}

// NoopNotifier discards all signals. Used when no presentation collaborator
// is wired.
type NoopNotifier struct{}

// ScorecardStale does nothing.
func (NoopNotifier) ScorecardStale(string) {}
