package scorecard

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB wires GORM over a sqlmock connection so store-layer failures
// can be injected.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

// Store failures are passed through with their original message and fall
// into the unclassified persistence code, never remapped to a domain code.
func TestStoreFailurePassesThrough(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewMetricStore(db, nil)

	dbErr := errors.New("driver: bad connection")
	mock.ExpectQuery("SELECT .* FROM `metrics`").WillReturnError(dbErr)

	_, err := store.Get("metric-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "driver: bad connection")
	assert.Equal(t, CodePersistence, CodeOf(err))
}

func TestScorecardStoreFailurePassesThrough(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewScorecardStore(db, nil)

	dbErr := errors.New("connection reset by peer")
	mock.ExpectQuery("SELECT .* FROM `scorecards`").WillReturnError(dbErr)

	_, err := store.Create("Sales Team", ScorecardTypeTeam, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.Equal(t, CodePersistence, CodeOf(err))
}
