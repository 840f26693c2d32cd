package handler

import (
	"errors"
	"net/http"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type SprintHandler struct {
	sprintRepo *repository.SprintRepository
	taskRepo   *repository.TaskRepository
}

func NewSprintHandler(sprintRepo *repository.SprintRepository, taskRepo *repository.TaskRepository) *SprintHandler {
	return &SprintHandler{
		sprintRepo: sprintRepo,
		taskRepo:   taskRepo,
	}
}

type SprintRequest struct {
	Name      string  `json:"name" binding:"required"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	// Status is only honored on create, and only "planned" or "active"
	Status string `json:"status"`
}

type SprintResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	StartDate     *string `json:"start_date,omitempty"`
	EndDate       *string `json:"end_date,omitempty"`
	Status        string  `json:"status"`
	ArchivedCount int     `json:"archived_count"`
	CompletedAt   *string `json:"completed_at,omitempty"`
}

func toSprintResponse(sprint *model.Sprint) SprintResponse {
	resp := SprintResponse{
		ID:            sprint.ID.String(),
		Name:          sprint.Name,
		Status:        sprint.Status,
		ArchivedCount: sprint.ArchivedCount,
	}
	if sprint.StartDate != nil {
		d := sprint.StartDate.Format(dateLayout)
		resp.StartDate = &d
	}
	if sprint.EndDate != nil {
		d := sprint.EndDate.Format(dateLayout)
		resp.EndDate = &d
	}
	if sprint.CompletedAt != nil {
		ts := sprint.CompletedAt.UTC().Format(time.RFC3339)
		resp.CompletedAt = &ts
	}
	return resp
}

func parseSprintDates(c *gin.Context, sprint *model.Sprint, req SprintRequest) bool {
	sprint.Name = req.Name

	sprint.StartDate = nil
	if req.StartDate != nil && *req.StartDate != "" {
		d, err := time.Parse(dateLayout, *req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date format, expected YYYY-MM-DD"})
			return false
		}
		sprint.StartDate = &d
	}

	sprint.EndDate = nil
	if req.EndDate != nil && *req.EndDate != "" {
		d, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date format, expected YYYY-MM-DD"})
			return false
		}
		sprint.EndDate = &d
	}

	if sprint.StartDate != nil && sprint.EndDate != nil && sprint.EndDate.Before(*sprint.StartDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End date must not be before start date"})
		return false
	}
	return true
}

// Create creates a sprint. Asking for the active state while another sprint
// is active fails with a conflict.
func (h *SprintHandler) Create(c *gin.Context) {
	var req SprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	sprint := &model.Sprint{Status: model.SprintPlanned}
	switch req.Status {
	case "", model.SprintPlanned:
	case model.SprintActive:
		sprint.Status = model.SprintActive
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "New sprints must be planned or active"})
		return
	}

	if !parseSprintDates(c, sprint, req) {
		return
	}

	if err := h.sprintRepo.Create(c.Request.Context(), sprint); err != nil {
		if errors.Is(err, repository.ErrActiveSprintExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Another sprint is already active"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sprint"})
		return
	}

	c.JSON(http.StatusCreated, toSprintResponse(sprint))
}

// GetAll lists all sprints
func (h *SprintHandler) GetAll(c *gin.Context) {
	sprints, err := h.sprintRepo.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sprints"})
		return
	}

	responses := make([]SprintResponse, 0, len(sprints))
	for i := range sprints {
		responses = append(responses, toSprintResponse(&sprints[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// GetByID returns one sprint
func (h *SprintHandler) GetByID(c *gin.Context) {
	sprintID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	sprint, err := h.sprintRepo.GetByID(c.Request.Context(), sprintID)
	if err != nil {
		if errors.Is(err, repository.ErrSprintNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sprint not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sprint"})
		return
	}

	c.JSON(http.StatusOK, toSprintResponse(sprint))
}

// Update renames a sprint or adjusts its dates
func (h *SprintHandler) Update(c *gin.Context) {
	sprintID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req SprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	sprint, err := h.sprintRepo.GetByID(c.Request.Context(), sprintID)
	if err != nil {
		if errors.Is(err, repository.ErrSprintNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sprint not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sprint"})
		return
	}

	if sprint.Status == model.SprintCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": "Completed sprints cannot be edited"})
		return
	}

	if !parseSprintDates(c, sprint, req) {
		return
	}

	if err := h.sprintRepo.Update(c.Request.Context(), sprint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sprint"})
		return
	}

	c.JSON(http.StatusOK, toSprintResponse(sprint))
}

// Activate makes a sprint the single active one
func (h *SprintHandler) Activate(c *gin.Context) {
	sprintID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	sprint, err := h.sprintRepo.Activate(c.Request.Context(), sprintID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSprintNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Sprint not found"})
		case errors.Is(err, repository.ErrActiveSprintExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Another sprint is already active"})
		case errors.Is(err, repository.ErrSprintCompleted):
			c.JSON(http.StatusConflict, gin.H{"error": "Completed sprints cannot be activated"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate sprint"})
		}
		return
	}

	c.JSON(http.StatusOK, toSprintResponse(sprint))
}

// Complete closes a sprint, archiving its done tasks and detaching the rest
func (h *SprintHandler) Complete(c *gin.Context) {
	sprintID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	sprint, err := h.sprintRepo.Complete(c.Request.Context(), sprintID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSprintNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Sprint not found"})
		case errors.Is(err, repository.ErrSprintCompleted):
			c.JSON(http.StatusConflict, gin.H{"error": "Sprint is already completed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete sprint"})
		}
		return
	}

	c.JSON(http.StatusOK, toSprintResponse(sprint))
}

// GetTasks lists the tasks attached to a sprint
func (h *SprintHandler) GetTasks(c *gin.Context) {
	sprintID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.sprintRepo.GetByID(c.Request.Context(), sprintID); err != nil {
		if errors.Is(err, repository.ErrSprintNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sprint not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sprint"})
		return
	}

	tasks, err := h.taskRepo.GetBySprintID(c.Request.Context(), sprintID)
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

// Delete removes a sprint and detaches its tasks
func (h *SprintHandler) Delete(c *gin.Context) {
	sprintID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.sprintRepo.Delete(c.Request.Context(), sprintID); err != nil {
		if errors.Is(err, repository.ErrSprintNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sprint not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete sprint"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sprint deleted"})
}
