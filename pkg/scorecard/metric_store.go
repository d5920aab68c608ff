package scorecard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/period"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/scoring"
)

// minNameLength is the minimum length of metric and scorecard names.
const minNameLength = 3

// MetricStore owns the metric lifecycle: create, update, archive, restore,
// hard delete, and display ordering. All validation happens before any
// write; no operation partially applies a multi-field update.
type MetricStore struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

// NewMetricStore creates a MetricStore. A nil notifier disables stale-view
// signals.
func NewMetricStore(db *gorm.DB, notifier Notifier) *MetricStore {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &MetricStore{db: db, notifier: notifier, now: time.Now}
}

// MetricDefinition is the caller-supplied shape of a metric.
type MetricDefinition struct {
	ScorecardID string
	Name        string
	Cadence     period.Cadence
	Unit        string
	OwnerUserID string
	Target      scoring.Target
}

// validate checks the definition fields shared by create and update.
func (d *MetricDefinition) validate() error {
	if len([]rune(strings.TrimSpace(d.Name))) < minNameLength {
		return validationErrf("metric name must be at least %d characters", minNameLength)
	}
	if _, err := period.ParseCadence(string(d.Cadence)); err != nil {
		return validationErrf("%v", err)
	}
	if err := scoring.Validate(d.Target); err != nil {
		return validationErrf("%v", err)
	}
	return nil
}

// Create validates the definition and inserts an active metric at the next
// display position within its scorecard (max existing + 1, or 0 if none).
func (s *MetricStore) Create(def MetricDefinition) (*MetricRecord, error) {
	if err := def.validate(); err != nil {
		return nil, err
	}

	record := &MetricRecord{
		ID:          uuid.New().String(),
		ScorecardID: def.ScorecardID,
		Name:        strings.TrimSpace(def.Name),
		Cadence:     string(def.Cadence),
		Unit:        def.Unit,
		OwnerUserID: def.OwnerUserID,
		IsActive:    true,
	}
	applyTarget(record, def.Target)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var scorecardRow ScorecardRecord
		if err := tx.Where("id = ?", def.ScorecardID).First(&scorecardRow).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErrf("scorecard %s not found", def.ScorecardID)
			}
			return fmt.Errorf("load scorecard: %w", err)
		}

		var next int
		err := tx.Model(&MetricRecord{}).
			Where("scorecard_id = ?", def.ScorecardID).
			Select("COALESCE(MAX(display_order) + 1, 0)").
			Scan(&next).Error
		if err != nil {
			return fmt.Errorf("next display order: %w", err)
		}
		record.DisplayOrder = next

		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("create metric: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ScorecardStale(def.ScorecardID)
	return record, nil
}

// Update validates and rewrites a metric's definition fields. Display order
// and lifecycle state are never touched; the ScorecardID field of the
// definition is ignored (metrics do not move between scorecards).
func (s *MetricStore) Update(metricID string, def MetricDefinition) (*MetricRecord, error) {
	if err := def.validate(); err != nil {
		return nil, err
	}

	record, err := s.Get(metricID)
	if err != nil {
		return nil, err
	}

	updates := targetColumns(def.Target)
	updates["name"] = strings.TrimSpace(def.Name)
	updates["cadence"] = string(def.Cadence)
	updates["unit"] = def.Unit
	updates["owner_user_id"] = def.OwnerUserID

	if err := s.db.Model(record).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update metric: %w", err)
	}

	s.notifier.ScorecardStale(record.ScorecardID)
	return s.Get(metricID)
}

// Archive soft-deactivates a metric, recording who archived it, when, and
// why. Entries are untouched. Archiving an archived metric is a no-op.
func (s *MetricStore) Archive(metricID, archivedBy, reason string) (*MetricRecord, error) {
	record, err := s.Get(metricID)
	if err != nil {
		return nil, err
	}
	if lifecycleState(record) == StateArchived {
		return record, nil
	}
	if err := validateTransition(lifecycleState(record), StateArchived); err != nil {
		return nil, err
	}

	now := s.now()
	updates := map[string]any{
		"is_active":      false,
		"archived_at":    &now,
		"archived_by":    archivedBy,
		"archive_reason": reason,
	}
	if err := s.db.Model(record).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("archive metric: %w", err)
	}

	s.notifier.ScorecardStale(record.ScorecardID)
	return s.Get(metricID)
}

// Restore re-activates an archived metric and clears its archive metadata.
func (s *MetricStore) Restore(metricID string) (*MetricRecord, error) {
	record, err := s.Get(metricID)
	if err != nil {
		return nil, err
	}
	if err := validateTransition(lifecycleState(record), StateActive); err != nil {
		return nil, err
	}
	if lifecycleState(record) == StateActive {
		return record, nil
	}

	updates := map[string]any{
		"is_active":      true,
		"archived_at":    nil,
		"archived_by":    "",
		"archive_reason": "",
	}
	if err := s.db.Model(record).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("restore metric: %w", err)
	}

	s.notifier.ScorecardStale(record.ScorecardID)
	return s.Get(metricID)
}

// HardDelete permanently removes an archived metric and all its entries in
// one transaction. An active metric must be archived first; the
// confirmation token the UI collects is enforced by the calling layer.
func (s *MetricStore) HardDelete(metricID string) error {
	record, err := s.Get(metricID)
	if err != nil {
		return err
	}
	if lifecycleState(record) != StateArchived {
		return conflictErrf("metric %s is still active; archive it before deleting permanently", metricID)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("metric_id = ?", metricID).Delete(&EntryRecord{}).Error; err != nil {
			return fmt.Errorf("delete metric entries: %w", err)
		}
		if err := tx.Where("id = ?", metricID).Delete(&MetricRecord{}).Error; err != nil {
			return fmt.Errorf("delete metric: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.ScorecardStale(record.ScorecardID)
	return nil
}

// Reorder rewrites display_order so each listed metric sits at its 0-based
// index in orderedIDs. The list may cover all of a scorecard's metrics or a
// subset (one cadence grouping); every id must exist in the scorecard.
// The rewrite is a single transaction: all positions update or none do.
func (s *MetricStore) Reorder(scorecardID string, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return validationErrf("reorder requires at least one metric id")
	}
	seen := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if seen[id] {
			return validationErrf("duplicate metric id %s in reorder list", id)
		}
		seen[id] = true
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&MetricRecord{}).
			Where("scorecard_id = ? AND id IN ?", scorecardID, orderedIDs).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("verify reorder ids: %w", err)
		}
		if int(count) != len(orderedIDs) {
			return validationErrf("reorder list contains metrics not in scorecard %s", scorecardID)
		}

		for index, id := range orderedIDs {
			err := tx.Model(&MetricRecord{}).
				Where("id = ?", id).
				Update("display_order", index).Error
			if err != nil {
				return fmt.Errorf("reorder metric %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.ScorecardStale(scorecardID)
	return nil
}

// BulkResult is the per-metric outcome of a bulk operation.
type BulkResult struct {
	MetricID string `json:"metricId"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// BulkArchive archives each metric independently and reports a per-id
// outcome list. One failing id never rolls back the others.
func (s *MetricStore) BulkArchive(metricIDs []string, archivedBy, reason string) []BulkResult {
	results := make([]BulkResult, 0, len(metricIDs))
	for _, id := range metricIDs {
		if _, err := s.Archive(id, archivedBy, reason); err != nil {
			results = append(results, BulkResult{MetricID: id, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{MetricID: id, OK: true})
	}
	return results
}

// Get retrieves a metric by id.
func (s *MetricStore) Get(metricID string) (*MetricRecord, error) {
	var record MetricRecord
	err := s.db.Where("id = ?", metricID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErrf("metric %s not found", metricID)
		}
		return nil, fmt.Errorf("get metric: %w", err)
	}
	return &record, nil
}

// ListActive returns a scorecard's active metrics in display order.
func (s *MetricStore) ListActive(scorecardID string) ([]MetricRecord, error) {
	var records []MetricRecord
	err := s.db.
		Where("scorecard_id = ? AND is_active = ?", scorecardID, true).
		Order("display_order ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list active metrics: %w", err)
	}
	return records, nil
}

// ListArchived returns a scorecard's archived metrics, most recently
// archived first.
func (s *MetricStore) ListArchived(scorecardID string) ([]MetricRecord, error) {
	var records []MetricRecord
	err := s.db.
		Where("scorecard_id = ? AND is_active = ?", scorecardID, false).
		Order("archived_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list archived metrics: %w", err)
	}
	return records, nil
}

// CountArchived returns how many of a scorecard's metrics are archived.
func (s *MetricStore) CountArchived(scorecardID string) (int64, error) {
	var count int64
	err := s.db.Model(&MetricRecord{}).
		Where("scorecard_id = ? AND is_active = ?", scorecardID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count archived metrics: %w", err)
	}
	return count, nil
}
