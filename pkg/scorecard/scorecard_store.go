package scorecard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScorecardStore provides CRUD for scorecards. The scoring engine proper
// only reads scorecards; creation and deactivation live here so the full
// lifecycle has one home.
type ScorecardStore struct {
	db       *gorm.DB
	notifier Notifier
}

// NewScorecardStore creates a ScorecardStore. A nil notifier disables
// stale-view signals.
func NewScorecardStore(db *gorm.DB, notifier Notifier) *ScorecardStore {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &ScorecardStore{db: db, notifier: notifier}
}

// Create creates an active scorecard. (name, type) must be unique; a
// duplicate fails with a Conflict.
func (s *ScorecardStore) Create(name, scorecardType, ownerUserID string) (*ScorecardRecord, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < minNameLength {
		return nil, validationErrf("scorecard name must be at least %d characters", minNameLength)
	}
	if scorecardType != ScorecardTypeTeam && scorecardType != ScorecardTypeRole {
		return nil, validationErrf("unknown scorecard type %q (expected team or role)", scorecardType)
	}

	var existing ScorecardRecord
	err := s.db.Where("name = ? AND type = ?", name, scorecardType).First(&existing).Error
	switch {
	case err == nil:
		return nil, conflictErrf("a %s scorecard named %q already exists", scorecardType, name)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("check scorecard uniqueness: %w", err)
	}

	record := &ScorecardRecord{
		ID:          uuid.New().String(),
		Name:        name,
		Type:        scorecardType,
		OwnerUserID: ownerUserID,
		IsActive:    true,
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("create scorecard: %w", err)
	}
	return record, nil
}

// Get retrieves a scorecard by id.
func (s *ScorecardStore) Get(id string) (*ScorecardRecord, error) {
	var record ScorecardRecord
	err := s.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErrf("scorecard %s not found", id)
		}
		return nil, fmt.Errorf("get scorecard: %w", err)
	}
	return &record, nil
}

// ListActive returns all active scorecards ordered by name.
func (s *ScorecardStore) ListActive() ([]ScorecardRecord, error) {
	var records []ScorecardRecord
	if err := s.db.Where("is_active = ?", true).Order("name ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list scorecards: %w", err)
	}
	return records, nil
}

// Deactivate soft-deactivates a scorecard. Its metrics and entries are
// untouched.
func (s *ScorecardStore) Deactivate(id string) error {
	record, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.db.Model(record).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("deactivate scorecard: %w", err)
	}
	s.notifier.ScorecardStale(id)
	return nil
}
