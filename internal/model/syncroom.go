package model

import (
	"time"

	"github.com/google/uuid"
)

// SyncRoom is a relay rendezvous point. Clients join by code and exchange
// whole-dataset CSV documents through it.
type SyncRoom struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Code      string    `gorm:"uniqueIndex;not null"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Creator User `gorm:"foreignKey:CreatedBy"`
}

// RoomPeer tracks a device that joined a room, for the peer list.
type RoomPeer struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	RoomID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"not null"`
	LastSeen time.Time `gorm:"not null"`

	Room SyncRoom `gorm:"foreignKey:RoomID"`
}

// RoomTask is one row of a room's materialized document. The payload is the
// JSON-encoded snapshot record; UpdatedAt duplicates the record's merge clock
// so reconciliation can run without decoding every payload.
type RoomTask struct {
	RoomID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	TaskID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Payload   []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
