package model

import (
	"github.com/google/uuid"
)

type Assignee struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name      string    `gorm:"not null"`
	Color     string    `gorm:"not null"`
	DiscordID string

	Tasks []Task `gorm:"many2many:task_assignees"`
}
