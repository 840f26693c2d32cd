package model

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses, mirrored by a CHECK constraint in the schema.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusInTest     = "in-test"
	StatusDone       = "done"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusInTest, StatusDone:
		return true
	}
	return false
}

type Task struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title      string    `gorm:"not null"`
	Project    string
	Category   string
	Status     string `gorm:"not null;default:'todo';check:status IN ('todo', 'in-progress', 'in-test', 'done')"`
	Date       *time.Time
	EndDate    *time.Time
	SprintID   *uuid.UUID `gorm:"type:uuid;index"`
	Notes      string
	IsArchived bool      `gorm:"not null;default:false"`
	CreatedBy  uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt  time.Time
	// UpdatedAt is the merge clock: last-writer-wins reconciliation
	// compares this field, so every write must advance it.
	UpdatedAt time.Time `gorm:"index"`

	Sprint    *Sprint         `gorm:"foreignKey:SprintID"`
	Creator   User            `gorm:"foreignKey:CreatedBy"`
	Assignees []Assignee      `gorm:"many2many:task_assignees"`
	Checklist []ChecklistItem `gorm:"foreignKey:TaskID"`
}
