package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
)

type ChecklistRepository struct {
	db *gorm.DB
}

func NewChecklistRepository(db *gorm.DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

// Create appends an item to the end of a task's checklist
func (r *ChecklistRepository) Create(ctx context.Context, item *model.ChecklistItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPosition struct {
			Max int
		}
		err := tx.Model(&model.ChecklistItem{}).
			Select("COALESCE(MAX(position), -1) as max").
			Where("task_id = ?", item.TaskID).
			Scan(&maxPosition).Error
		if err != nil {
			return err
		}

		item.Position = maxPosition.Max + 1
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return touchTask(tx, item.TaskID)
	})
}

func (r *ChecklistRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ChecklistItem, error) {
	var item model.ChecklistItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChecklistItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *ChecklistRepository) Update(ctx context.Context, item *model.ChecklistItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Save(item)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrChecklistItemNotFound
		}
		return touchTask(tx, item.TaskID)
	})
}

// Toggle flips an item's completed flag and returns the updated item
func (r *ChecklistRepository) Toggle(ctx context.Context, id uuid.UUID) (*model.ChecklistItem, error) {
	var item model.ChecklistItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChecklistItemNotFound
			}
			return err
		}
		item.Completed = !item.Completed
		if err := tx.Model(&item).Update("completed", item.Completed).Error; err != nil {
			return err
		}
		return touchTask(tx, item.TaskID)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ChecklistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.ChecklistItem
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChecklistItemNotFound
			}
			return err
		}
		if err := tx.Delete(&model.ChecklistItem{}, "id = ?", id).Error; err != nil {
			return err
		}
		return touchTask(tx, item.TaskID)
	})
}

// Checklist edits count as task writes for merge purposes, so the parent
// task's clock has to move.
func touchTask(tx *gorm.DB, taskID uuid.UUID) error {
	return tx.Model(&model.Task{}).
		Where("id = ?", taskID).
		Update("updated_at", gorm.Expr("NOW()")).Error
}
