package scorecard

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/period"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/scoring"
)

// EntryStore records metric values. The (metric, period) pair is the
// primary key, so a metric holds at most one value per period and
// re-recording replaces in place.
type EntryStore struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

// NewEntryStore creates an EntryStore. A nil notifier disables stale-view
// signals.
func NewEntryStore(db *gorm.DB, notifier Notifier) *EntryStore {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &EntryStore{db: db, notifier: notifier, now: time.Now}
}

// UpsertEntry records a value for one metric period. The raw value is
// parsed against the metric's scoring mode. A nil periodStart targets the
// metric's current period. A nil note leaves any existing note untouched;
// a non-nil note (including empty) overwrites it.
func (s *EntryStore) UpsertEntry(metricID string, periodStart *period.Start, rawValue string, note *string, authorID string) (*EntryRecord, error) {
	var metric MetricRecord
	if err := s.db.Where("id = ?", metricID).First(&metric).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErrf("metric %s not found", metricID)
		}
		return nil, fmt.Errorf("load metric: %w", err)
	}

	mode, err := scoring.ParseMode(metric.ScoringMode)
	if err != nil {
		return nil, fmt.Errorf("metric %s: %w", metricID, err)
	}
	value, err := scoring.ParseValue(rawValue, mode)
	if err != nil {
		return nil, invalidValueErrf("%v", err)
	}

	start := periodStart
	if start == nil {
		cadence, err := period.ParseCadence(metric.Cadence)
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", metricID, err)
		}
		current := period.CurrentStart(cadence, s.now())
		start = &current
	}

	record := &EntryRecord{
		MetricID:    metricID,
		PeriodStart: start.String(),
		Value:       value,
		CreatedBy:   authorID,
	}
	assign := []string{"value", "created_by", "updated_at"}
	if note != nil {
		record.Note = *note
		assign = append(assign, "note")
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "metric_id"}, {Name: "period_start"}},
		DoUpdates: clause.AssignmentColumns(assign),
	}).Create(record).Error
	if err != nil {
		return nil, fmt.Errorf("upsert entry: %w", err)
	}

	s.notifier.ScorecardStale(metric.ScorecardID)
	return s.Get(metricID, *start)
}

// DeleteEntry removes one period's value. Deleting a period with no entry
// succeeds; the end state is the same either way.
func (s *EntryStore) DeleteEntry(metricID string, periodStart period.Start) error {
	var metric MetricRecord
	if err := s.db.Where("id = ?", metricID).First(&metric).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundErrf("metric %s not found", metricID)
		}
		return fmt.Errorf("load metric: %w", err)
	}

	err := s.db.
		Where("metric_id = ? AND period_start = ?", metricID, periodStart.String()).
		Delete(&EntryRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	s.notifier.ScorecardStale(metric.ScorecardID)
	return nil
}

// UpdateNote replaces the note on an existing entry without touching its
// value. The entry must already exist.
func (s *EntryStore) UpdateNote(metricID string, periodStart period.Start, note string) (*EntryRecord, error) {
	entry, err := s.Get(metricID, periodStart)
	if err != nil {
		return nil, err
	}

	err = s.db.Model(entry).Update("note", note).Error
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return s.Get(metricID, periodStart)
}

// Get retrieves the entry for one metric period.
func (s *EntryStore) Get(metricID string, periodStart period.Start) (*EntryRecord, error) {
	var record EntryRecord
	err := s.db.
		Where("metric_id = ? AND period_start = ?", metricID, periodStart.String()).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErrf("no entry for metric %s in period %s", metricID, periodStart)
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &record, nil
}

// ListEntries returns a metric's entries newest period first. A non-nil
// oldest bound excludes periods before it. Period starts are stored as
// ISO dates, so string ordering matches calendar ordering.
func (s *EntryStore) ListEntries(metricID string, oldest *period.Start) ([]EntryRecord, error) {
	query := s.db.Where("metric_id = ?", metricID)
	if oldest != nil {
		query = query.Where("period_start >= ?", oldest.String())
	}

	var records []EntryRecord
	err := query.Order("period_start DESC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return records, nil
}

// AllValues returns every recorded value for a metric, newest period
// first. Used for all-time averages.
func (s *EntryStore) AllValues(metricID string) ([]float64, error) {
	var values []float64
	err := s.db.Model(&EntryRecord{}).
		Where("metric_id = ?", metricID).
		Order("period_start DESC").
		Pluck("value", &values).Error
	if err != nil {
		return nil, fmt.Errorf("list values: %w", err)
	}
	return values, nil
}

// CountEntries returns how many periods have recorded values for a metric.
func (s *EntryStore) CountEntries(metricID string) (int64, error) {
	var count int64
	err := s.db.Model(&EntryRecord{}).
		Where("metric_id = ?", metricID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}
