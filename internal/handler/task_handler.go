package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"taskboard/internal/branch"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/translate"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Translator is what the task handler needs from the translation client.
type Translator interface {
	Translate(ctx context.Context, text, langpair string) (string, error)
}

type TaskHandler struct {
	taskRepo   *repository.TaskRepository
	sprintRepo *repository.SprintRepository
	translator Translator
}

func NewTaskHandler(taskRepo *repository.TaskRepository, sprintRepo *repository.SprintRepository, translator Translator) *TaskHandler {
	return &TaskHandler{
		taskRepo:   taskRepo,
		sprintRepo: sprintRepo,
		translator: translator,
	}
}

// TaskRequest is the create/update payload
type TaskRequest struct {
	Title    string  `json:"title" binding:"required"`
	Project  string  `json:"project"`
	Category string  `json:"category"`
	Status   string  `json:"status"`
	Date     *string `json:"date"`
	EndDate  *string `json:"end_date"`
	SprintID *string `json:"sprint_id"`
	Notes    string  `json:"notes"`
}

type ChecklistItemResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Position  int    `json:"position"`
}

type AssigneeResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	DiscordID string `json:"discord_id,omitempty"`
}

type TaskResponse struct {
	ID         string                  `json:"id"`
	Title      string                  `json:"title"`
	Project    string                  `json:"project,omitempty"`
	Category   string                  `json:"category,omitempty"`
	Status     string                  `json:"status"`
	Date       *string                 `json:"date,omitempty"`
	EndDate    *string                 `json:"end_date,omitempty"`
	SprintID   *string                 `json:"sprint_id,omitempty"`
	Notes      string                  `json:"notes,omitempty"`
	IsArchived bool                    `json:"is_archived"`
	UpdatedAt  string                  `json:"updated_at"`
	Assignees  []AssigneeResponse      `json:"assignees,omitempty"`
	Checklist  []ChecklistItemResponse `json:"checklist,omitempty"`
}

func toTaskResponse(task *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:         task.ID.String(),
		Title:      task.Title,
		Project:    task.Project,
		Category:   task.Category,
		Status:     task.Status,
		Notes:      task.Notes,
		IsArchived: task.IsArchived,
		UpdatedAt:  task.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if task.Date != nil {
		d := task.Date.Format(dateLayout)
		resp.Date = &d
	}
	if task.EndDate != nil {
		d := task.EndDate.Format(dateLayout)
		resp.EndDate = &d
	}
	if task.SprintID != nil {
		s := task.SprintID.String()
		resp.SprintID = &s
	}
	for _, a := range task.Assignees {
		resp.Assignees = append(resp.Assignees, AssigneeResponse{
			ID:        a.ID.String(),
			Name:      a.Name,
			Color:     a.Color,
			DiscordID: a.DiscordID,
		})
	}
	for _, item := range task.Checklist {
		resp.Checklist = append(resp.Checklist, ChecklistItemResponse{
			ID:        item.ID.String(),
			Text:      item.Text,
			Completed: item.Completed,
			Position:  item.Position,
		})
	}
	return resp
}

// currentUserID pulls the authenticated user out of the gin context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}
	userID, ok := raw.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return userID, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *TaskHandler) applyRequest(c *gin.Context, task *model.Task, req TaskRequest) bool {
	task.Title = req.Title
	task.Project = req.Project
	task.Category = req.Category
	task.Notes = req.Notes

	if req.Status == "" {
		req.Status = model.StatusTodo
	}
	if !model.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return false
	}
	task.Status = req.Status

	task.Date = nil
	if req.Date != nil && *req.Date != "" {
		d, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, expected YYYY-MM-DD"})
			return false
		}
		task.Date = &d
	}

	task.EndDate = nil
	if req.EndDate != nil && *req.EndDate != "" {
		d, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date format, expected YYYY-MM-DD"})
			return false
		}
		task.EndDate = &d
	}

	task.SprintID = nil
	if req.SprintID != nil && *req.SprintID != "" {
		sprintID, err := uuid.Parse(*req.SprintID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sprint ID format"})
			return false
		}
		if _, err := h.sprintRepo.GetByID(c.Request.Context(), sprintID); err != nil {
			if errors.Is(err, repository.ErrSprintNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Sprint not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sprint"})
			}
			return false
		}
		task.SprintID = &sprintID
	}

	return true
}

// Create creates a new task
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task := &model.Task{CreatedBy: userID}
	if !h.applyRequest(c, task, req) {
		return
	}

	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

// GetByID returns a task with its assignees and checklist
func (h *TaskHandler) GetByID(c *gin.Context) {
	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// List returns tasks filtered by the query string
func (h *TaskHandler) List(c *gin.Context) {
	var filter repository.TaskFilter

	if status := c.Query("status"); status != "" {
		if !model.ValidStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		filter.Status = status
	}
	filter.Project = c.Query("project")
	if raw := c.Query("sprint_id"); raw != "" {
		sprintID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sprint ID format"})
			return
		}
		filter.SprintID = &sprintID
	}
	switch c.Query("archived") {
	case "true":
		yes := true
		filter.Archived = &yes
	case "false", "":
		// Archived tasks stay out of lists unless asked for
		no := false
		filter.Archived = &no
	case "all":
		filter.Archived = nil
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid archived filter"})
		return
	}

	tasks, err := h.taskRepo.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, toTaskResponse(&tasks[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// Update replaces a task's editable fields
func (h *TaskHandler) Update(c *gin.Context) {
	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	if !h.applyRequest(c, task, req) {
		return
	}

	if err := h.taskRepo.Update(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete removes a task
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskRepo.Delete(c.Request.Context(), taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// Archive flags a task as archived
func (h *TaskHandler) Archive(c *gin.Context) {
	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskRepo.SetArchived(c.Request.Context(), taskID, true); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task archived"})
}

// AddAssignee links an assignee to a task
func (h *TaskHandler) AddAssignee(c *gin.Context) {
	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	assigneeID, err := uuid.Parse(c.Param("assignee_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
		return
	}

	if _, err := h.taskRepo.GetByID(c.Request.Context(), taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	if err := h.taskRepo.AddAssignee(c.Request.Context(), taskID, assigneeID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Assignee added"})
}

// RemoveAssignee unlinks an assignee from a task
func (h *TaskHandler) RemoveAssignee(c *gin.Context) {
	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	assigneeID, err := uuid.Parse(c.Param("assignee_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
		return
	}

	if err := h.taskRepo.RemoveAssignee(c.Request.Context(), taskID, assigneeID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unassign"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Assignee removed"})
}

// Branch derives a git branch name from the task title. Thai titles go
// through the translation service first; when that fails the untranslated
// title is slugged instead.
func (h *TaskHandler) Branch(c *gin.Context) {
	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	flow := c.DefaultQuery("flow", branch.DefaultFlow)

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	title := task.Title
	translated := false
	if branch.HasNonASCII(title) && h.translator != nil {
		if english, err := h.translator.Translate(c.Request.Context(), title, translate.LangPairThaiEnglish); err == nil {
			title = english
			translated = true
		}
	}

	name := branch.Name(flow, title)
	if branch.Slugify(title) == "" {
		// Nothing usable survived, fall back to the id prefix
		name = branch.Name(flow, "task-"+task.ID.String()[:8])
	}

	c.JSON(http.StatusOK, gin.H{
		"branch":     name,
		"translated": translated,
	})
}
