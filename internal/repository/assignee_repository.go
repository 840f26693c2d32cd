package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
)

type AssigneeRepository struct {
	db *gorm.DB
}

func NewAssigneeRepository(db *gorm.DB) *AssigneeRepository {
	return &AssigneeRepository{db: db}
}

func (r *AssigneeRepository) Create(ctx context.Context, assignee *model.Assignee) error {
	return r.db.WithContext(ctx).Create(assignee).Error
}

func (r *AssigneeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Assignee, error) {
	var assignee model.Assignee
	if err := r.db.WithContext(ctx).First(&assignee, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, err
	}
	return &assignee, nil
}

func (r *AssigneeRepository) GetAll(ctx context.Context) ([]model.Assignee, error) {
	var assignees []model.Assignee
	err := r.db.WithContext(ctx).Order("name").Find(&assignees).Error
	return assignees, err
}

func (r *AssigneeRepository) Update(ctx context.Context, assignee *model.Assignee) error {
	result := r.db.WithContext(ctx).Save(assignee)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssigneeNotFound
	}
	return nil
}

// Delete removes an assignee and its task links
func (r *AssigneeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM task_assignees WHERE assignee_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Assignee{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAssigneeNotFound
		}
		return nil
	})
}
