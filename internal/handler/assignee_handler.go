package handler

import (
	"errors"
	"net/http"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type AssigneeHandler struct {
	assigneeRepo *repository.AssigneeRepository
}

func NewAssigneeHandler(assigneeRepo *repository.AssigneeRepository) *AssigneeHandler {
	return &AssigneeHandler{assigneeRepo: assigneeRepo}
}

type AssigneeRequest struct {
	Name      string `json:"name" binding:"required"`
	Color     string `json:"color" binding:"required"`
	DiscordID string `json:"discord_id"`
}

func toAssigneeResponse(a *model.Assignee) AssigneeResponse {
	return AssigneeResponse{
		ID:        a.ID.String(),
		Name:      a.Name,
		Color:     a.Color,
		DiscordID: a.DiscordID,
	}
}

func (h *AssigneeHandler) Create(c *gin.Context) {
	var req AssigneeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	assignee := &model.Assignee{
		Name:      req.Name,
		Color:     req.Color,
		DiscordID: req.DiscordID,
	}
	if err := h.assigneeRepo.Create(c.Request.Context(), assignee); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create assignee"})
		return
	}

	c.JSON(http.StatusCreated, toAssigneeResponse(assignee))
}

func (h *AssigneeHandler) GetAll(c *gin.Context) {
	assignees, err := h.assigneeRepo.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignees"})
		return
	}

	responses := make([]AssigneeResponse, 0, len(assignees))
	for i := range assignees {
		responses = append(responses, toAssigneeResponse(&assignees[i]))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *AssigneeHandler) Update(c *gin.Context) {
	assigneeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req AssigneeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	assignee, err := h.assigneeRepo.GetByID(c.Request.Context(), assigneeID)
	if err != nil {
		if errors.Is(err, repository.ErrAssigneeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Assignee not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignee"})
		return
	}

	assignee.Name = req.Name
	assignee.Color = req.Color
	assignee.DiscordID = req.DiscordID

	if err := h.assigneeRepo.Update(c.Request.Context(), assignee); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update assignee"})
		return
	}

	c.JSON(http.StatusOK, toAssigneeResponse(assignee))
}

func (h *AssigneeHandler) Delete(c *gin.Context) {
	assigneeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.assigneeRepo.Delete(c.Request.Context(), assigneeID); err != nil {
		if errors.Is(err, repository.ErrAssigneeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Assignee not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete assignee"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Assignee deleted"})
}
