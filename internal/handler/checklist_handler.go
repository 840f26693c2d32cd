package handler

import (
	"errors"
	"net/http"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type ChecklistHandler struct {
	checklistRepo *repository.ChecklistRepository
	taskRepo      *repository.TaskRepository
}

func NewChecklistHandler(checklistRepo *repository.ChecklistRepository, taskRepo *repository.TaskRepository) *ChecklistHandler {
	return &ChecklistHandler{
		checklistRepo: checklistRepo,
		taskRepo:      taskRepo,
	}
}

type ChecklistItemRequest struct {
	Text string `json:"text" binding:"required"`
}

func toChecklistResponse(item *model.ChecklistItem) ChecklistItemResponse {
	return ChecklistItemResponse{
		ID:        item.ID.String(),
		Text:      item.Text,
		Completed: item.Completed,
		Position:  item.Position,
	}
}

// Create appends an item to a task's checklist
func (h *ChecklistHandler) Create(c *gin.Context) {
	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req ChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
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

	item := &model.ChecklistItem{
		TaskID: taskID,
		Text:   req.Text,
	}
	if err := h.checklistRepo.Create(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checklist item"})
		return
	}

	c.JSON(http.StatusCreated, toChecklistResponse(item))
}

// Update rewrites an item's text
func (h *ChecklistHandler) Update(c *gin.Context) {
	itemID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req ChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	item, err := h.checklistRepo.GetByID(c.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, repository.ErrChecklistItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Checklist item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve checklist item"})
		return
	}

	item.Text = req.Text
	if err := h.checklistRepo.Update(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update checklist item"})
		return
	}

	c.JSON(http.StatusOK, toChecklistResponse(item))
}

// Toggle flips an item's completed flag
func (h *ChecklistHandler) Toggle(c *gin.Context) {
	itemID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.checklistRepo.Toggle(c.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, repository.ErrChecklistItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Checklist item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle checklist item"})
		return
	}

	c.JSON(http.StatusOK, toChecklistResponse(item))
}

// Delete removes an item
func (h *ChecklistHandler) Delete(c *gin.Context) {
	itemID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.checklistRepo.Delete(c.Request.Context(), itemID); err != nil {
		if errors.Is(err, repository.ErrChecklistItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Checklist item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete checklist item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Checklist item deleted"})
}
