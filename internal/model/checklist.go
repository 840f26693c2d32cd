package model

import (
	"github.com/google/uuid"
)

type ChecklistItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Text      string    `gorm:"not null"`
	Completed bool      `gorm:"not null;default:false"`
	Position  int       `gorm:"not null"`

	Task Task `gorm:"foreignKey:TaskID"`
}
