package scorecard

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/scoring"
)

// Scorecard types.
const (
	ScorecardTypeTeam = "team"
	ScorecardTypeRole = "role"
)

// ScorecardRecord groups metrics for a team or a role. The engine reads it;
// creation and deactivation live in ScorecardStore. (name, type) is unique.
type ScorecardRecord struct {
	ID          string    `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Name        string    `gorm:"column:name;uniqueIndex:idx_scorecard_name_type,priority:1;not null" json:"name"`
	Type        string    `gorm:"column:type;uniqueIndex:idx_scorecard_name_type,priority:2;not null" json:"type"`
	OwnerUserID string    `gorm:"column:owner_user_id" json:"ownerUserId,omitempty"`
	IsActive    bool      `gorm:"column:is_active;default:true;not null" json:"isActive"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName returns the GORM table name.
func (ScorecardRecord) TableName() string { return "scorecards" }

// MetricRecord is a tracked measurable. The four target columns are the flat
// persisted form of the scoring target; only the columns belonging to
// scoring_mode are meaningful, the others may hold stale values from a
// previous mode.
type MetricRecord struct {
	ID            string     `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	ScorecardID   string     `gorm:"column:scorecard_id;index;not null" json:"scorecardId"`
	Name          string     `gorm:"column:name;not null" json:"name"`
	Cadence       string     `gorm:"column:cadence;not null" json:"cadence"`
	ScoringMode   string     `gorm:"column:scoring_mode;not null" json:"scoringMode"`
	Unit          string     `gorm:"column:unit" json:"unit,omitempty"`
	OwnerUserID   string     `gorm:"column:owner_user_id" json:"ownerUserId,omitempty"`
	DisplayOrder  int        `gorm:"column:display_order;not null" json:"displayOrder"`
	IsActive      bool       `gorm:"column:is_active;index;default:true;not null" json:"isActive"`
	ArchivedAt    *time.Time `gorm:"column:archived_at" json:"archivedAt,omitempty"`
	ArchivedBy    string     `gorm:"column:archived_by" json:"archivedBy,omitempty"`
	ArchiveReason string     `gorm:"column:archive_reason" json:"archiveReason,omitempty"`
	TargetValue   *float64   `gorm:"column:target_value" json:"targetValue,omitempty"`
	TargetMin     *float64   `gorm:"column:target_min" json:"targetMin,omitempty"`
	TargetMax     *float64   `gorm:"column:target_max" json:"targetMax,omitempty"`
	TargetBoolean *bool      `gorm:"column:target_boolean" json:"targetBoolean,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName returns the GORM table name.
func (MetricRecord) TableName() string { return "metrics" }

// Target reconstructs the scoring target from the persisted columns. A
// mismatch between scoring_mode and its required columns means the row
// violates the write-side validation invariant.
func (m *MetricRecord) Target() (scoring.Target, error) {
	switch scoring.Mode(m.ScoringMode) {
	case scoring.ModeAtLeast:
		if m.TargetValue == nil {
			return nil, fmt.Errorf("metric %s: at_least mode without target_value", m.ID)
		}
		return scoring.AtLeast{Value: *m.TargetValue}, nil
	case scoring.ModeAtMost:
		if m.TargetValue == nil {
			return nil, fmt.Errorf("metric %s: at_most mode without target_value", m.ID)
		}
		return scoring.AtMost{Value: *m.TargetValue}, nil
	case scoring.ModeBetween:
		if m.TargetMin == nil || m.TargetMax == nil {
			return nil, fmt.Errorf("metric %s: between mode without target_min/target_max", m.ID)
		}
		return scoring.Between{Min: *m.TargetMin, Max: *m.TargetMax}, nil
	case scoring.ModeYesNo:
		if m.TargetBoolean == nil {
			return nil, fmt.Errorf("metric %s: yes_no mode without target_boolean", m.ID)
		}
		return scoring.YesNo{Want: *m.TargetBoolean}, nil
	default:
		return nil, fmt.Errorf("metric %s: unknown scoring mode %q", m.ID, m.ScoringMode)
	}
}

// targetColumns returns the column assignments for a scoring target. Columns
// belonging to other modes are not cleared; they are ignored on read.
func targetColumns(target scoring.Target) map[string]any {
	cols := map[string]any{"scoring_mode": string(target.Mode())}
	switch t := target.(type) {
	case scoring.AtLeast:
		cols["target_value"] = t.Value
	case scoring.AtMost:
		cols["target_value"] = t.Value
	case scoring.Between:
		cols["target_min"] = t.Min
		cols["target_max"] = t.Max
	case scoring.YesNo:
		cols["target_boolean"] = t.Want
	}
	return cols
}

// applyTarget sets the mode and target columns on a record in memory.
func applyTarget(rec *MetricRecord, target scoring.Target) {
	rec.ScoringMode = string(target.Mode())
	switch t := target.(type) {
	case scoring.AtLeast:
		v := t.Value
		rec.TargetValue = &v
	case scoring.AtMost:
		v := t.Value
		rec.TargetValue = &v
	case scoring.Between:
		lo, hi := t.Min, t.Max
		rec.TargetMin = &lo
		rec.TargetMax = &hi
	case scoring.YesNo:
		w := t.Want
		rec.TargetBoolean = &w
	}
}

// EntryRecord is one recorded observation. The composite primary key
// (metric_id, period_start) enforces at most one entry per metric per
// period; period_start is stored in its canonical YYYY-MM-DD form so
// lexicographic order equals calendar order.
type EntryRecord struct {
	MetricID    string    `gorm:"primaryKey;column:metric_id;type:varchar(36)" json:"metricId"`
	PeriodStart string    `gorm:"primaryKey;column:period_start;type:varchar(10)" json:"periodStart"`
	Value       float64   `gorm:"column:value;not null" json:"value"`
	Note        string    `gorm:"column:note" json:"note,omitempty"`
	CreatedBy   string    `gorm:"column:created_by" json:"createdBy,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName returns the GORM table name.
func (EntryRecord) TableName() string { return "metric_entries" }

// UserRecord is the owner directory row read by the loader.
type UserRecord struct {
	ID    string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Name  string `gorm:"column:name" json:"name"`
	Email string `gorm:"column:email" json:"email,omitempty"`
}

// TableName returns the GORM table name.
func (UserRecord) TableName() string { return "users" }

// AutoMigrate creates or updates the engine tables.
func AutoMigrate(db *gorm.DB) error {
	for _, model := range []any{
		&ScorecardRecord{},
		&MetricRecord{},
		&EntryRecord{},
		&UserRecord{},
	} {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("auto-migrate %T: %w", model, err)
		}
	}
	return nil
}
