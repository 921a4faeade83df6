package model

import "time"

// Run is one persisted pipeline execution. Immutable once created: the
// assembled record is stored as JSON exactly as returned to the caller,
// keyed by the time-ordered run id.
type Run struct {
	RunID      string    `gorm:"primaryKey"`
	Periodo    string    `gorm:"index;not null"`
	CreatedAt  time.Time `gorm:"index;not null"`
	OutputJSON string    `gorm:"type:jsonb;not null"`
}

func (Run) TableName() string { return "runs" }
