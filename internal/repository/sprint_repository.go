package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
)

type SprintRepository struct {
	db *gorm.DB
}

func NewSprintRepository(db *gorm.DB) *SprintRepository {
	return &SprintRepository{db: db}
}

// Create adds a new sprint. Creating one directly in the active state goes
// through the same single-active check as Activate.
func (r *SprintRepository) Create(ctx context.Context, sprint *model.Sprint) error {
	if sprint.Status != model.SprintActive {
		return r.db.WithContext(ctx).Create(sprint).Error
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureNoActiveSprint(tx, uuid.Nil); err != nil {
			return err
		}
		return tx.Create(sprint).Error
	})
}

// GetByID retrieves a sprint by its ID
func (r *SprintRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Sprint, error) {
	var sprint model.Sprint
	result := r.db.WithContext(ctx).First(&sprint, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSprintNotFound
		}
		return nil, result.Error
	}
	return &sprint, nil
}

// GetAll retrieves every sprint, newest first
func (r *SprintRepository) GetAll(ctx context.Context) ([]model.Sprint, error) {
	var sprints []model.Sprint
	result := r.db.WithContext(ctx).Order("created_at desc").Find(&sprints)
	if result.Error != nil {
		return nil, result.Error
	}
	return sprints, nil
}

// Update updates a sprint's name and dates. Status transitions go through
// Activate and Complete.
func (r *SprintRepository) Update(ctx context.Context, sprint *model.Sprint) error {
	result := r.db.WithContext(ctx).Save(sprint)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSprintNotFound
	}
	return nil
}

// Activate moves a sprint into the active state. Fails with
// ErrActiveSprintExists while another sprint is active.
func (r *SprintRepository) Activate(ctx context.Context, id uuid.UUID) (*model.Sprint, error) {
	var sprint model.Sprint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sprint, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSprintNotFound
			}
			return err
		}
		if sprint.Status == model.SprintCompleted {
			return ErrSprintCompleted
		}
		if err := ensureNoActiveSprint(tx, id); err != nil {
			return err
		}

		sprint.Status = model.SprintActive
		return tx.Model(&sprint).Update("status", model.SprintActive).Error
	})
	if err != nil {
		return nil, err
	}
	return &sprint, nil
}

func ensureNoActiveSprint(tx *gorm.DB, excludeID uuid.UUID) error {
	var count int64
	err := tx.Model(&model.Sprint{}).
		Where("status = ? AND id <> ?", model.SprintActive, excludeID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrActiveSprintExists
	}
	return nil
}

// Complete closes a sprint: its done tasks are archived, every other task in
// the sprint is detached, and the archived count is recorded on the sprint.
func (r *SprintRepository) Complete(ctx context.Context, id uuid.UUID) (*model.Sprint, error) {
	var sprint model.Sprint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sprint, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSprintNotFound
			}
			return err
		}
		if sprint.Status == model.SprintCompleted {
			return ErrSprintCompleted
		}

		now := time.Now().UTC()

		// Archive the finished work
		archived := tx.Model(&model.Task{}).
			Where("sprint_id = ? AND status = ?", id, model.StatusDone).
			Updates(map[string]interface{}{"is_archived": true, "updated_at": now})
		if archived.Error != nil {
			return archived.Error
		}

		// Detach everything that did not finish
		detached := tx.Model(&model.Task{}).
			Where("sprint_id = ? AND status <> ?", id, model.StatusDone).
			Updates(map[string]interface{}{"sprint_id": nil, "updated_at": now})
		if detached.Error != nil {
			return detached.Error
		}

		sprint.Status = model.SprintCompleted
		sprint.ArchivedCount = int(archived.RowsAffected)
		sprint.CompletedAt = &now

		return tx.Model(&sprint).Updates(map[string]interface{}{
			"status":         model.SprintCompleted,
			"archived_count": sprint.ArchivedCount,
			"completed_at":   now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &sprint, nil
}

// Delete removes a sprint and detaches its tasks
func (r *SprintRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).
			Where("sprint_id = ?", id).
			Update("sprint_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Sprint{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSprintNotFound
		}
		return nil
	})
}
