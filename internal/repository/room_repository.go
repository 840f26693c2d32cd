package repository

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
	"taskboard/internal/taskcsv"
)

// Room codes avoid glyphs that read ambiguously when shared over chat.
const roomCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const roomCodeLength = 6

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create opens a new sync room with a fresh join code
func (r *RoomRepository) Create(ctx context.Context, createdBy uuid.UUID) (*model.SyncRoom, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := generateRoomCode()
		if err != nil {
			return nil, err
		}

		room := &model.SyncRoom{Code: code, CreatedBy: createdBy}
		err = r.db.WithContext(ctx).Create(room).Error
		if err == nil {
			return room, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// Code collision, roll again
	}
	return nil, fmt.Errorf("could not allocate a unique room code")
}

func generateRoomCode() (string, error) {
	code := make([]byte, roomCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomCodeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = roomCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// GetByCode retrieves a room by its join code
func (r *RoomRepository) GetByCode(ctx context.Context, code string) (*model.SyncRoom, error) {
	var room model.SyncRoom
	result := r.db.WithContext(ctx).First(&room, "code = ?", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, result.Error
	}
	return &room, nil
}

// UpsertPeer registers a device in the room, refreshing last_seen when the
// same peer name joins again.
func (r *RoomRepository) UpsertPeer(ctx context.Context, roomID uuid.UUID, name string) (*model.RoomPeer, error) {
	var peer model.RoomPeer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("room_id = ? AND name = ?", roomID, name).First(&peer).Error
		if err == nil {
			peer.LastSeen = time.Now().UTC()
			return tx.Model(&peer).Update("last_seen", peer.LastSeen).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		peer = model.RoomPeer{RoomID: roomID, Name: name, LastSeen: time.Now().UTC()}
		return tx.Create(&peer).Error
	})
	if err != nil {
		return nil, err
	}
	return &peer, nil
}

// GetPeers lists a room's devices, most recently seen first
func (r *RoomRepository) GetPeers(ctx context.Context, roomID uuid.UUID) ([]model.RoomPeer, error) {
	var peers []model.RoomPeer
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("last_seen desc").
		Find(&peers).Error
	return peers, err
}

// LoadRecords materializes the room's document as snapshot records
func (r *RoomRepository) LoadRecords(ctx context.Context, roomID uuid.UUID) ([]taskcsv.Record, error) {
	var rows []model.RoomTask
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("task_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]taskcsv.Record, 0, len(rows))
	for _, row := range rows {
		var rec taskcsv.Record
		if err := json.Unmarshal(row.Payload, &rec); err != nil {
			return nil, fmt.Errorf("room %s task %s: corrupt payload: %w", roomID, row.TaskID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveRecords upserts records into the room's document and touches the room
func (r *RoomRepository) SaveRecords(ctx context.Context, roomID uuid.UUID, records []taskcsv.Record) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			payload, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			err = tx.Exec(
				`INSERT INTO room_tasks (room_id, task_id, payload, updated_at)
				 VALUES (?, ?, ?, ?)
				 ON CONFLICT (room_id, task_id)
				 DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
				roomID, rec.ID, payload, rec.UpdatedAt,
			).Error
			if err != nil {
				return err
			}
		}
		return tx.Model(&model.SyncRoom{}).
			Where("id = ?", roomID).
			Update("updated_at", time.Now().UTC()).Error
	})
}
