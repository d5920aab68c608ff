package scorecard

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/authz"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/identity"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/aggregate"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/period"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/scoring"
)

func newTestLoader(db *gorm.DB, authorizer authz.Authorizer) *Loader {
	loader := NewLoader(db, authorizer, func(period.Cadence) int { return 8 })
	loader.now = testNow
	loader.entries.now = testNow
	return loader
}

func TestLoader_LoadAssemblesView(t *testing.T) {
	db := newTestDB(t)
	card := newTestScorecard(t, db, "Sales Team")
	metric := newTestMetric(t, db, card.ID, "Weekly Revenue", period.CadenceWeekly, scoring.AtLeast{Value: 100000})
	entryStore := NewEntryStore(db, nil)
	require.NoError(t, NewUserStore(db).Save(&UserRecord{ID: "owner-1", Name: "Alice", Email: "alice@example.com"}))

	// Fill the two most recent weeks.
	starts := period.LastN(period.CadenceWeekly, 2, testNow())
	_, err := entryStore.UpsertEntry(metric.ID, &starts[1], "100000", nil, "alice")
	require.NoError(t, err)
	_, err = entryStore.UpsertEntry(metric.ID, &starts[0], "110000", strptr("strong close"), "alice")
	require.NoError(t, err)

	loader := newTestLoader(db, nil)
	view, err := loader.Load(context.Background(), card.ID)
	require.NoError(t, err)

	assert.Equal(t, card.ID, view.ID)
	assert.Equal(t, "Sales Team", view.Name)
	assert.Equal(t, ScorecardTypeTeam, view.Type)
	assert.Equal(t, int64(0), view.ArchivedCount)
	require.Len(t, view.Metrics, 1)

	row := view.Metrics[0]
	assert.Equal(t, metric.ID, row.ID)
	require.NotNil(t, row.Owner)
	assert.Equal(t, "Alice", row.Owner.Name)
	require.Len(t, row.Entries, 8)

	// Cells run newest first; the first two carry values, the rest are empty.
	current := row.Entries[0]
	require.True(t, current.HasValue)
	assert.Equal(t, 110000.0, *current.Value)
	assert.Equal(t, "strong close", current.Note)
	assert.Equal(t, scoring.StatusGreen, current.Status)
	assert.False(t, row.Entries[2].HasValue)
	assert.Nil(t, row.Entries[2].Value)

	// Summary: green, +10% vs target, +10% over previous period.
	assert.True(t, row.Summary.HasValue)
	assert.Equal(t, scoring.StatusGreen, row.Summary.Status)
	require.NotNil(t, row.Summary.PercentVsTarget)
	assert.InDelta(t, 10.0, *row.Summary.PercentVsTarget, 1e-9)
	require.NotNil(t, row.Summary.Change)
	assert.InDelta(t, 10.0, *row.Summary.Change, 1e-9)
	require.NotNil(t, row.Summary.Average)
	assert.InDelta(t, 105000.0, *row.Summary.Average, 1e-9)
	assert.Equal(t, aggregate.TrendFlat, row.Summary.Trend)
}

func TestLoader_MissingCurrentPeriodIsRedWithoutValue(t *testing.T) {
	db := newTestDB(t)
	card := newTestScorecard(t, db, "Sales Team")
	newTestMetric(t, db, card.ID, "Weekly Revenue", period.CadenceWeekly, scoring.AtLeast{Value: 100000})

	loader := newTestLoader(db, nil)
	view, err := loader.Load(context.Background(), card.ID)
	require.NoError(t, err)
	require.Len(t, view.Metrics, 1)

	summary := view.Metrics[0].Summary
	assert.Equal(t, scoring.StatusRed, summary.Status)
	assert.False(t, summary.HasValue)
	assert.Nil(t, summary.PercentVsTarget)
	assert.Nil(t, summary.Change)
	assert.Nil(t, summary.Average)
	assert.Equal(t, aggregate.TrendFlat, summary.Trend)
}

func TestLoader_TrendNeedsUnbrokenRun(t *testing.T) {
	db := newTestDB(t)
	card := newTestScorecard(t, db, "Sales Team")
	rising := newTestMetric(t, db, card.ID, "Weekly Revenue", period.CadenceWeekly, scoring.AtLeast{Value: 1})
	gapped := newTestMetric(t, db, card.ID, "New Leads", period.CadenceWeekly, scoring.AtLeast{Value: 1})
	entryStore := NewEntryStore(db, nil)

	starts := period.LastN(period.CadenceWeekly, 6, testNow())
	// Rising: recent three weeks well above the prior three.
	for i, v := range []float64{200, 210, 220, 100, 105, 110} {
		s := starts[i]
		_, err := entryStore.UpsertEntry(rising.ID, &s, fmt.Sprintf("%g", v), nil, "alice")
		require.NoError(t, err)
	}
	// Gapped: same values but one missing week inside the span.
	for i, v := range []float64{200, 210, 220, 100, 105, 110} {
		if i == 3 {
			continue
		}
		s := starts[i]
		_, err := entryStore.UpsertEntry(gapped.ID, &s, fmt.Sprintf("%g", v), nil, "alice")
		require.NoError(t, err)
	}

	loader := newTestLoader(db, nil)
	view, err := loader.Load(context.Background(), card.ID)
	require.NoError(t, err)
	require.Len(t, view.Metrics, 2)

	assert.Equal(t, aggregate.TrendUp, view.Metrics[0].Summary.Trend)
	assert.Equal(t, aggregate.TrendFlat, view.Metrics[1].Summary.Trend)
}

func TestLoader_ChangeUndefinedWhenPreviousZero(t *testing.T) {
	db := newTestDB(t)
	card := newTestScorecard(t, db, "Sales Team")
	metric := newTestMetric(t, db, card.ID, "New Leads", period.CadenceWeekly, scoring.AtLeast{Value: 1})
	entryStore := NewEntryStore(db, nil)

	starts := period.LastN(period.CadenceWeekly, 2, testNow())
	_, err := entryStore.UpsertEntry(metric.ID, &starts[1], "0", nil, "alice")
	require.NoError(t, err)
	_, err = entryStore.UpsertEntry(metric.ID, &starts[0], "100", nil, "alice")
	require.NoError(t, err)

	loader := newTestLoader(db, nil)
	view, err := loader.Load(context.Background(), card.ID)
	require.NoError(t, err)

	// No change is reported rather than a fabricated percentage.
	assert.Nil(t, view.Metrics[0].Summary.Change)
}

func TestLoader_SkipsArchivedMetricsAndCountsThem(t *testing.T) {
	db := newTestDB(t)
	card := newTestScorecard(t, db, "Sales Team")
	active := newTestMetric(t, db, card.ID, "Weekly Revenue", period.CadenceWeekly, scoring.AtLeast{Value: 100000})
	retired := newTestMetric(t, db, card.ID, "Cold Calls", period.CadenceWeekly, scoring.AtLeast{Value: 50})
	metricStore := NewMetricStore(db, nil)
	entryStore := NewEntryStore(db, nil)

	start := period.CurrentStart(period.CadenceWeekly, testNow())
	_, err := entryStore.UpsertEntry(retired.ID, &start, "60", nil, "alice")
	require.NoError(t, err)
	_, err = metricStore.Archive(retired.ID, "manager-1", "deprecated channel")
	require.NoError(t, err)

	loader := newTestLoader(db, nil)
	view, err := loader.Load(context.Background(), card.ID)
	require.NoError(t, err)

	require.Len(t, view.Metrics, 1)
	assert.Equal(t, active.ID, view.Metrics[0].ID)
	assert.Equal(t, int64(1), view.ArchivedCount)

	archived, err := loader.LoadArchived(context.Background(), card.ID)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, retired.ID, archived[0].ID)
	assert.Equal(t, "manager-1", archived[0].ArchivedBy)
	assert.Equal(t, "deprecated channel", archived[0].ArchiveReason)
	assert.Equal(t, int64(1), archived[0].EntryCount)
}

func TestLoader_DeniedCallerGetsForbidden(t *testing.T) {
	db := newTestDB(t)
	card := newTestScorecard(t, db, "Sales Team")

	loader := newTestLoader(db, authz.NewGroupAuthorizer([]string{"scorecard-admins"}))

	// Anonymous callers are denied outright.
	_, err := loader.Load(context.Background(), card.ID)
	require.Error(t, err)
	assert.Equal(t, CodeForbidden, CodeOf(err))

	// Any identified caller may view.
	ctx := identity.WithCaller(context.Background(), identity.Caller{UserID: "alice"})
	_, err = loader.Load(ctx, card.ID)
	require.NoError(t, err)
}

func TestLoader_MissingScorecard(t *testing.T) {
	db := newTestDB(t)
	loader := newTestLoader(db, nil)

	_, err := loader.Load(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, CodeOf(err))

	// A deactivated scorecard behaves like a missing one.
	card := newTestScorecard(t, db, "Sales Team")
	require.NoError(t, NewScorecardStore(db, nil).Deactivate(card.ID))
	_, err = loader.Load(context.Background(), card.ID)
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestLoader_NilWindowUsesDefaults(t *testing.T) {
	db := newTestDB(t)
	card := newTestScorecard(t, db, "Sales Team")
	newTestMetric(t, db, card.ID, "Weekly Revenue", period.CadenceWeekly, scoring.AtLeast{Value: 100000})
	newTestMetric(t, db, card.ID, "Monthly Churn", period.CadenceMonthly, scoring.AtMost{Value: 3})

	loader := NewLoader(db, nil, nil)
	view, err := loader.Load(context.Background(), card.ID)
	require.NoError(t, err)
	require.Len(t, view.Metrics, 2)

	// Built-in windows: 13 weeks, 12 months.
	assert.Len(t, view.Metrics[0].Entries, 13)
	assert.Len(t, view.Metrics[1].Entries, 12)
}

func TestLoader_TargetViewOmitsStaleModeColumns(t *testing.T) {
	db := newTestDB(t)
	card := newTestScorecard(t, db, "Sales Team")
	metric := newTestMetric(t, db, card.ID, "Qualified Leads", period.CadenceWeekly, scoring.Between{Min: 40, Max: 80})
	metricStore := NewMetricStore(db, nil)

	// Switch modes; the between columns stay populated in the row.
	_, err := metricStore.Update(metric.ID, MetricDefinition{
		Name:    "Qualified Leads",
		Cadence: period.CadenceWeekly,
		Target:  scoring.AtLeast{Value: 50},
	})
	require.NoError(t, err)

	loader := newTestLoader(db, nil)
	view, err := loader.Load(context.Background(), card.ID)
	require.NoError(t, err)
	require.Len(t, view.Metrics, 1)

	target := view.Metrics[0].Target
	assert.Equal(t, scoring.ModeAtLeast, target.Mode)
	require.NotNil(t, target.Value)
	assert.Equal(t, 50.0, *target.Value)
	assert.Nil(t, target.Min)
	assert.Nil(t, target.Max)
	assert.Nil(t, target.Want)
}

func TestLoader_OwnerDirectoryMissDegrades(t *testing.T) {
	db := newTestDB(t)
	card := newTestScorecard(t, db, "Sales Team")
	newTestMetric(t, db, card.ID, "Weekly Revenue", period.CadenceWeekly, scoring.AtLeast{Value: 100000})

	loader := newTestLoader(db, nil)
	view, err := loader.Load(context.Background(), card.ID)
	require.NoError(t, err)

	require.NotNil(t, view.Metrics[0].Owner)
	assert.Equal(t, "owner-1", view.Metrics[0].Owner.ID)
	assert.Equal(t, "owner-1", view.Metrics[0].Owner.Name)
}
