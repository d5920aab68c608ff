package scorecard

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserStore is the owner directory. Profile synchronization belongs to an
// external collaborator; the engine only needs id -> identity lookups and an
// upsert for that collaborator to write through.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a UserStore.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Save creates or updates a user by id.
func (s *UserStore) Save(user *UserRecord) error {
	if user.ID == "" {
		return validationErrf("user id is required")
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email"}),
	}).Create(user).Error
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Get retrieves a user by id.
func (s *UserStore) Get(id string) (*UserRecord, error) {
	var record UserRecord
	err := s.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErrf("user %s not found", id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &record, nil
}
