package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
	"taskboard/internal/taskcsv"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskFilter narrows List; zero values mean "no filter".
type TaskFilter struct {
	Status   string
	Project  string
	SprintID *uuid.UUID
	Archived *bool
}

// Create adds a new task together with its checklist items
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task with its assignees and ordered checklist
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).
		Preload("Assignees").
		Preload("Checklist", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// List retrieves tasks matching the filter
func (r *TaskRepository) List(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	q := r.db.WithContext(ctx).
		Preload("Assignees").
		Preload("Checklist", func(db *gorm.DB) *gorm.DB { return db.Order("position") })

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Project != "" {
		q = q.Where("project = ?", filter.Project)
	}
	if filter.SprintID != nil {
		q = q.Where("sprint_id = ?", *filter.SprintID)
	}
	if filter.Archived != nil {
		q = q.Where("is_archived = ?", *filter.Archived)
	}

	var tasks []model.Task
	result := q.Order("created_at").Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// ListAll retrieves the full dataset, archived tasks included, for snapshot
// export and merge.
func (r *TaskRepository) ListAll(ctx context.Context) ([]model.Task, error) {
	return r.List(ctx, TaskFilter{})
}

// GetBySprintID retrieves all tasks attached to a sprint
func (r *TaskRepository) GetBySprintID(ctx context.Context, sprintID uuid.UUID) ([]model.Task, error) {
	return r.List(ctx, TaskFilter{SprintID: &sprintID})
}

// Update updates an existing task
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Omit("Assignees", "Checklist", "Sprint", "Creator").Save(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task with its checklist and assignee links
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&model.ChecklistItem{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM task_assignees WHERE task_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Task{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

// SetArchived flips the archive flag
func (r *TaskRepository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Update("is_archived", archived)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// AddAssignee links an assignee to a task
func (r *TaskRepository) AddAssignee(ctx context.Context, taskID, assigneeID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO task_assignees (task_id, assignee_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		taskID, assigneeID,
	).Error
}

// RemoveAssignee unlinks an assignee from a task
func (r *TaskRepository) RemoveAssignee(ctx context.Context, taskID, assigneeID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		"DELETE FROM task_assignees WHERE task_id = ? AND assignee_id = ?",
		taskID, assigneeID,
	).Error
}

// ApplyMerge persists a reconciliation outcome. Added records are inserted
// whole; updated records overwrite the stored row, checklist and assignee
// links included. UpdateColumns keeps the record's own updated_at, which is
// the merge clock and must not be bumped by the write itself.
func (r *TaskRepository) ApplyMerge(ctx context.Context, added, updated []taskcsv.Record, createdBy uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range added {
			task := taskcsv.ToTask(rec, createdBy)
			checklist := task.Checklist
			task.Checklist = nil
			if err := tx.Omit("Assignees", "Checklist", "Sprint", "Creator").Create(&task).Error; err != nil {
				return err
			}
			if err := writeChecklist(tx, rec.ID, checklist); err != nil {
				return err
			}
			if err := linkAssignees(tx, rec); err != nil {
				return err
			}
		}

		for _, rec := range updated {
			cols := map[string]interface{}{
				"title":       rec.Title,
				"project":     rec.Project,
				"category":    rec.Category,
				"status":      rec.Status,
				"date":        rec.Date,
				"end_date":    rec.EndDate,
				"sprint_id":   rec.SprintID,
				"notes":       rec.Notes,
				"is_archived": rec.IsArchived,
				"updated_at":  rec.UpdatedAt,
			}
			result := tx.Model(&model.Task{}).Where("id = ?", rec.ID).UpdateColumns(cols)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrTaskNotFound
			}

			if err := tx.Where("task_id = ?", rec.ID).Delete(&model.ChecklistItem{}).Error; err != nil {
				return err
			}
			task := taskcsv.ToTask(rec, createdBy)
			if err := writeChecklist(tx, rec.ID, task.Checklist); err != nil {
				return err
			}

			if err := tx.Exec("DELETE FROM task_assignees WHERE task_id = ?", rec.ID).Error; err != nil {
				return err
			}
			if err := linkAssignees(tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeChecklist(tx *gorm.DB, taskID uuid.UUID, items []model.ChecklistItem) error {
	for i := range items {
		items[i].TaskID = taskID
		if err := tx.Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Assignee ids may arrive from a device whose assignee table diverged;
// unknown ids are skipped rather than failing the merge.
func linkAssignees(tx *gorm.DB, rec taskcsv.Record) error {
	for _, assigneeID := range rec.AssigneeIDs {
		err := tx.Exec(
			`INSERT INTO task_assignees (task_id, assignee_id)
			 SELECT ?, ? WHERE EXISTS (SELECT 1 FROM assignees WHERE id = ?)
			 ON CONFLICT DO NOTHING`,
			rec.ID, assigneeID, assigneeID,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// Truncate empties the task dataset. Used by replace-mode import.
func (r *TaskRepository) Truncate(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM checklist_items").Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM task_assignees").Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM tasks").Error
	})
}

// Stats summarizes the dataset for the dashboard.
type Stats struct {
	Total     int64            `json:"total"`
	Archived  int64            `json:"archived"`
	ByStatus  map[string]int64 `json:"by_status"`
	ByProject map[string]int64 `json:"by_project"`
}

func (r *TaskRepository) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByStatus:  make(map[string]int64),
		ByProject: make(map[string]int64),
	}

	if err := r.db.WithContext(ctx).Model(&model.Task{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("is_archived = ?", true).
		Count(&stats.Archived).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byStatus []bucket
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("status as key, count(*) as count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, b := range byStatus {
		stats.ByStatus[b.Key] = b.Count
	}

	var byProject []bucket
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("project as key, count(*) as count").
		Where("project <> ''").
		Group("project").
		Scan(&byProject).Error; err != nil {
		return nil, err
	}
	for _, b := range byProject {
		stats.ByProject[b.Key] = b.Count
	}

	return stats, nil
}
