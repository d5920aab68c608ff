package scorecard

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/period"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/scoring"
)

// newTestDB creates an in-memory SQLite DB with the engine tables migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

// testNow is a fixed reference instant so period math in tests is stable.
func testNow() time.Time {
	return time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC)
}

// recordingNotifier captures stale signals for assertions.
type recordingNotifier struct {
	staleIDs []string
}

func (n *recordingNotifier) ScorecardStale(scorecardID string) {
	n.staleIDs = append(n.staleIDs, scorecardID)
}

func newTestScorecard(t *testing.T, db *gorm.DB, name string) *ScorecardRecord {
	t.Helper()
	store := NewScorecardStore(db, nil)
	record, err := store.Create(name, ScorecardTypeTeam, "owner-1")
	require.NoError(t, err)
	return record
}

func newTestMetric(t *testing.T, db *gorm.DB, scorecardID, name string, cadence period.Cadence, target scoring.Target) *MetricRecord {
	t.Helper()
	store := NewMetricStore(db, nil)
	record, err := store.Create(MetricDefinition{
		ScorecardID: scorecardID,
		Name:        name,
		Cadence:     cadence,
		OwnerUserID: "owner-1",
		Target:      target,
	})
	require.NoError(t, err)
	return record
}

func TestScorecardStore_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	store := NewScorecardStore(db, nil)

	record, err := store.Create("  Sales Team  ", ScorecardTypeTeam, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "Sales Team", record.Name)
	assert.True(t, record.IsActive)
	assert.NotEmpty(t, record.ID)

	got, err := store.Get(record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Name, got.Name)
}

func TestScorecardStore_CreateValidation(t *testing.T) {
	db := newTestDB(t)
	store := NewScorecardStore(db, nil)

	_, err := store.Create("ab", ScorecardTypeTeam, "")
	require.Error(t, err)
	assert.Equal(t, CodeValidation, CodeOf(err))

	_, err = store.Create("Sales Team", "department", "")
	require.Error(t, err)
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestScorecardStore_DuplicateNameType(t *testing.T) {
	db := newTestDB(t)
	store := NewScorecardStore(db, nil)

	_, err := store.Create("Sales Team", ScorecardTypeTeam, "")
	require.NoError(t, err)

	_, err = store.Create("Sales Team", ScorecardTypeTeam, "")
	require.Error(t, err)
	assert.Equal(t, CodeConflict, CodeOf(err))

	// Same name under a different type is fine.
	_, err = store.Create("Sales Team", ScorecardTypeRole, "")
	require.NoError(t, err)
}

func TestScorecardStore_GetMissing(t *testing.T) {
	db := newTestDB(t)
	store := NewScorecardStore(db, nil)

	_, err := store.Get("nope")
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestScorecardStore_Deactivate(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	store := NewScorecardStore(db, notifier)

	record, err := store.Create("Sales Team", ScorecardTypeTeam, "")
	require.NoError(t, err)

	require.NoError(t, store.Deactivate(record.ID))

	active, err := store.ListActive()
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Equal(t, []string{record.ID}, notifier.staleIDs)
}

func TestUserStore_SaveUpsertsByID(t *testing.T) {
	db := newTestDB(t)
	store := NewUserStore(db)

	require.NoError(t, store.Save(&UserRecord{ID: "u1", Name: "Alice", Email: "alice@example.com"}))
	require.NoError(t, store.Save(&UserRecord{ID: "u1", Name: "Alice Smith", Email: "alice@example.com"}))

	got, err := store.Get("u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", got.Name)

	require.Error(t, store.Save(&UserRecord{Name: "no id"}))
}

func TestOwnerCache_TTLAndEviction(t *testing.T) {
	cache := newOwnerCache(2, 50*time.Millisecond)

	cache.set("u1", OwnerInfo{ID: "u1", Name: "Alice"})
	got, ok := cache.get("u1")
	require.True(t, ok)
	assert.Equal(t, "Alice", got.Name)

	// Capacity 2: inserting a third evicts the oldest.
	cache.set("u2", OwnerInfo{ID: "u2"})
	cache.set("u3", OwnerInfo{ID: "u3"})
	_, ok = cache.get("u1")
	assert.False(t, ok)

	// TTL expiry.
	time.Sleep(60 * time.Millisecond)
	_, ok = cache.get("u3")
	assert.False(t, ok)

	cache.set("u4", OwnerInfo{ID: "u4"})
	cache.invalidate("u4")
	_, ok = cache.get("u4")
	assert.False(t, ok)
}
