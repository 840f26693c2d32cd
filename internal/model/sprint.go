package model

import (
	"time"

	"github.com/google/uuid"
)

// Sprint lifecycle states
const (
	SprintPlanned   = "planned"
	SprintActive    = "active"
	SprintCompleted = "completed"
)

type Sprint struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name      string    `gorm:"not null"`
	StartDate *time.Time
	EndDate   *time.Time
	Status    string `gorm:"not null;default:'planned';check:status IN ('planned', 'active', 'completed')"`
	// ArchivedCount records how many done tasks were archived when the
	// sprint was completed.
	ArchivedCount int `gorm:"not null;default:0"`
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
