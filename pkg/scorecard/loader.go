package scorecard

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/authz"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/config"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/identity"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/aggregate"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/period"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/scoring"
)

// trendSpan is the number of consecutive recent periods the trend
// classifier needs. A gap inside the span makes the trend flat rather than
// comparing values from mismatched periods.
const trendSpan = 6

// OwnerInfo is the resolved owner identity attached to a metric view.
type OwnerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// EntryView is one period cell of a metric row.
type EntryView struct {
	PeriodStart string         `json:"periodStart"`
	HasValue    bool           `json:"hasValue"`
	Value       *float64       `json:"value,omitempty"`
	Note        string         `json:"note,omitempty"`
	Status      scoring.Status `json:"status,omitempty"`
	CreatedBy   string         `json:"createdBy,omitempty"`
}

// MetricSummary carries the derived numbers for one metric: the current
// period's status and its aggregates over the recorded history.
type MetricSummary struct {
	Status          scoring.Status  `json:"status"`
	HasValue        bool            `json:"hasValue"`
	PercentVsTarget *float64        `json:"percentVsTarget,omitempty"`
	Average         *float64        `json:"average,omitempty"`
	Change          *float64        `json:"change,omitempty"`
	Trend           aggregate.Trend `json:"trend"`
}

// MetricView is one metric row of a loaded scorecard.
type MetricView struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Cadence      period.Cadence `json:"cadence"`
	ScoringMode  scoring.Mode  `json:"scoringMode"`
	Unit         string        `json:"unit,omitempty"`
	DisplayOrder int           `json:"displayOrder"`
	Owner        *OwnerInfo    `json:"owner,omitempty"`
	Target       targetView    `json:"target"`
	Summary      MetricSummary `json:"summary"`
	Entries      []EntryView   `json:"entries"`
}

// targetView is the wire form of a scoring target.
type targetView struct {
	Mode  scoring.Mode `json:"mode"`
	Value *float64     `json:"value,omitempty"`
	Min   *float64     `json:"min,omitempty"`
	Max   *float64     `json:"max,omitempty"`
	Want  *bool        `json:"want,omitempty"`
}

// newTargetView builds the wire form from the typed target, so only the
// active mode's fields appear even when other columns hold stale values
// from a previous mode.
func newTargetView(target scoring.Target) targetView {
	view := targetView{Mode: target.Mode()}
	switch t := target.(type) {
	case scoring.AtLeast:
		v := t.Value
		view.Value = &v
	case scoring.AtMost:
		v := t.Value
		view.Value = &v
	case scoring.Between:
		lo, hi := t.Min, t.Max
		view.Min = &lo
		view.Max = &hi
	case scoring.YesNo:
		w := t.Want
		view.Want = &w
	}
	return view
}

// ScorecardView is the full loaded scorecard: active metric rows in display
// order, each with its recent entries and summary, plus the archived count
// so the presentation layer can offer the archive without fetching it.
type ScorecardView struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Type          string       `json:"type"`
	Metrics       []MetricView `json:"metrics"`
	ArchivedCount int64        `json:"archivedCount"`
	LoadedAt      time.Time    `json:"loadedAt"`
}

// ArchivedMetricView is one row of the lazily loaded archive listing.
type ArchivedMetricView struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Cadence       string     `json:"cadence"`
	ArchivedAt    *time.Time `json:"archivedAt,omitempty"`
	ArchivedBy    string     `json:"archivedBy,omitempty"`
	ArchiveReason string     `json:"archiveReason,omitempty"`
	EntryCount    int64      `json:"entryCount"`
}

// WindowFunc returns the number of recent periods shown for a cadence. It
// is a function so the loader always sees the live configuration.
type WindowFunc func(period.Cadence) int

// Loader assembles scorecard views. It reads through the stores, resolves
// owners via a short-TTL cache over the user directory, and asks the
// authorization collaborator before exposing anything.
type Loader struct {
	scorecards *ScorecardStore
	metrics    *MetricStore
	entries    *EntryStore
	users      *UserStore
	authorizer authz.Authorizer
	window     WindowFunc
	owners     *ownerCache
	now        func() time.Time
}

// NewLoader creates a Loader. A nil authorizer allows everything; a nil
// window func uses the built-in default windows.
func NewLoader(db *gorm.DB, authorizer authz.Authorizer, window WindowFunc) *Loader {
	if authorizer == nil {
		authorizer = &authz.NoopAuthorizer{}
	}
	if window == nil {
		window = config.Default().Window
	}
	return &Loader{
		scorecards: NewScorecardStore(db, nil),
		metrics:    NewMetricStore(db, nil),
		entries:    NewEntryStore(db, nil),
		users:      NewUserStore(db),
		authorizer: authorizer,
		window:     window,
		owners:     newOwnerCache(512, 5*time.Minute),
		now:        time.Now,
	}
}

// Load assembles the full view of an active scorecard.
func (l *Loader) Load(ctx context.Context, scorecardID string) (*ScorecardView, error) {
	if err := l.authorize(ctx, scorecardID); err != nil {
		return nil, err
	}

	card, err := l.scorecards.Get(scorecardID)
	if err != nil {
		return nil, err
	}
	if !card.IsActive {
		return nil, notFoundErrf("scorecard %s not found", scorecardID)
	}

	metrics, err := l.metrics.ListActive(scorecardID)
	if err != nil {
		return nil, err
	}
	archivedCount, err := l.metrics.CountArchived(scorecardID)
	if err != nil {
		return nil, err
	}

	view := &ScorecardView{
		ID:            card.ID,
		Name:          card.Name,
		Type:          card.Type,
		Metrics:       make([]MetricView, 0, len(metrics)),
		ArchivedCount: archivedCount,
		LoadedAt:      l.now(),
	}

	ref := l.now()
	for i := range metrics {
		row, err := l.buildMetricRow(&metrics[i], ref)
		if err != nil {
			return nil, err
		}
		view.Metrics = append(view.Metrics, *row)
	}
	return view, nil
}

// LoadArchived assembles the archive listing for a scorecard, most recently
// archived first, with per-metric entry counts.
func (l *Loader) LoadArchived(ctx context.Context, scorecardID string) ([]ArchivedMetricView, error) {
	if err := l.authorize(ctx, scorecardID); err != nil {
		return nil, err
	}
	if _, err := l.scorecards.Get(scorecardID); err != nil {
		return nil, err
	}

	archived, err := l.metrics.ListArchived(scorecardID)
	if err != nil {
		return nil, err
	}

	views := make([]ArchivedMetricView, 0, len(archived))
	for i := range archived {
		m := &archived[i]
		count, err := l.entries.CountEntries(m.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, ArchivedMetricView{
			ID:            m.ID,
			Name:          m.Name,
			Cadence:       m.Cadence,
			ArchivedAt:    m.ArchivedAt,
			ArchivedBy:    m.ArchivedBy,
			ArchiveReason: m.ArchiveReason,
			EntryCount:    count,
		})
	}
	return views, nil
}

func (l *Loader) authorize(ctx context.Context, scorecardID string) error {
	caller, _ := identity.CallerFromContext(ctx)
	allowed, err := l.authorizer.Authorize(ctx, authz.Request{
		User:        caller.UserID,
		Groups:      caller.Groups,
		Resource:    authz.ResourceScorecards,
		Verb:        authz.VerbView,
		ScorecardID: scorecardID,
	})
	if err != nil {
		return fmt.Errorf("authorize view: %w", err)
	}
	if !allowed {
		return forbiddenErrf("not allowed to view scorecard %s", scorecardID)
	}
	return nil
}

// buildMetricRow assembles one metric's view: the recent period window with
// per-cell status, plus the summary aggregates.
func (l *Loader) buildMetricRow(m *MetricRecord, ref time.Time) (*MetricView, error) {
	cadence, err := period.ParseCadence(m.Cadence)
	if err != nil {
		return nil, fmt.Errorf("metric %s: %w", m.ID, err)
	}
	target, err := m.Target()
	if err != nil {
		return nil, err
	}

	starts := period.LastN(cadence, l.window(cadence), ref)
	oldest := starts[len(starts)-1]

	records, err := l.entries.ListEntries(m.ID, &oldest)
	if err != nil {
		return nil, err
	}
	byPeriod := make(map[string]*EntryRecord, len(records))
	for i := range records {
		byPeriod[records[i].PeriodStart] = &records[i]
	}

	cells := make([]EntryView, 0, len(starts))
	for _, start := range starts {
		cell := EntryView{PeriodStart: start.String()}
		if rec, ok := byPeriod[start.String()]; ok {
			value := rec.Value
			cell.HasValue = true
			cell.Value = &value
			cell.Note = rec.Note
			cell.CreatedBy = rec.CreatedBy
			cell.Status = scoring.Evaluate(rec.Value, target)
		}
		cells = append(cells, cell)
	}

	summary, err := l.buildSummary(m, target, starts, byPeriod)
	if err != nil {
		return nil, err
	}

	row := &MetricView{
		ID:           m.ID,
		Name:         m.Name,
		Cadence:      cadence,
		ScoringMode:  target.Mode(),
		Unit:         m.Unit,
		DisplayOrder: m.DisplayOrder,
		Target:       newTargetView(target),
		Summary:      *summary,
		Entries:      cells,
	}
	if m.OwnerUserID != "" {
		owner := l.resolveOwner(m.OwnerUserID)
		row.Owner = &owner
	}
	return row, nil
}

// buildSummary derives the current-period status and the aggregates. A
// period with no entry is red and flagged HasValue=false; no value is ever
// fabricated for it.
func (l *Loader) buildSummary(m *MetricRecord, target scoring.Target, starts []period.Start, byPeriod map[string]*EntryRecord) (*MetricSummary, error) {
	summary := &MetricSummary{
		Status: scoring.StatusRed,
		Trend:  aggregate.TrendFlat,
	}

	current, hasCurrent := byPeriod[starts[0].String()]
	if hasCurrent {
		summary.HasValue = true
		summary.Status = scoring.Evaluate(current.Value, target)
		pct := scoring.PercentVsTarget(current.Value, target)
		summary.PercentVsTarget = &pct

		if len(starts) > 1 {
			if previous, ok := byPeriod[starts[1].String()]; ok {
				if change, ok := aggregate.Change(current.Value, previous.Value); ok {
					summary.Change = &change
				}
			}
		}
	}

	allValues, err := l.entries.AllValues(m.ID)
	if err != nil {
		return nil, err
	}
	if avg, ok := aggregate.Average(allValues); ok {
		summary.Average = &avg
	}

	// Trend compares recent periods against the ones just before them, so
	// it needs an unbroken run of recorded periods.
	if len(starts) >= trendSpan {
		recent := make([]float64, 0, trendSpan)
		for _, start := range starts[:trendSpan] {
			rec, ok := byPeriod[start.String()]
			if !ok {
				recent = nil
				break
			}
			recent = append(recent, rec.Value)
		}
		if len(recent) == trendSpan {
			summary.Trend = aggregate.ClassifyTrend(recent)
		}
	}
	return summary, nil
}

// resolveOwner looks up an owner identity through the cache. Directory
// misses degrade to an id-only identity so one missing user never fails a
// whole scorecard load.
func (l *Loader) resolveOwner(userID string) OwnerInfo {
	if owner, ok := l.owners.get(userID); ok {
		return owner
	}

	record, err := l.users.Get(userID)
	if err != nil {
		return OwnerInfo{ID: userID, Name: userID}
	}

	owner := OwnerInfo{ID: record.ID, Name: record.Name, Email: record.Email}
	l.owners.set(userID, owner)
	return owner
}
