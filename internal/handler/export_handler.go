package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskboard/internal/discord"
	"taskboard/internal/merge"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/taskcsv"

	"github.com/gin-gonic/gin"
)

// WebhookExecutor is what the export handler needs from the Discord client.
type WebhookExecutor interface {
	Execute(ctx context.Context, webhookURL string, payload discord.WebhookPayload, attachment *discord.Attachment) error
}

// ExportHandler covers the dataset surface: CSV export/import, stats and the
// Discord webhook export.
type ExportHandler struct {
	taskRepo *repository.TaskRepository
	webhooks WebhookExecutor
}

func NewExportHandler(taskRepo *repository.TaskRepository, webhooks WebhookExecutor) *ExportHandler {
	return &ExportHandler{
		taskRepo: taskRepo,
		webhooks: webhooks,
	}
}

// Export streams the whole dataset as a CSV snapshot
func (h *ExportHandler) Export(c *gin.Context) {
	tasks, err := h.taskRepo.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	records := make([]taskcsv.Record, 0, len(tasks))
	for _, task := range tasks {
		records = append(records, taskcsv.FromTask(task))
	}

	data, err := taskcsv.Encode(records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode tasks"})
		return
	}

	filename := fmt.Sprintf("taskboard-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// Import merges a CSV snapshot into the dataset and reports the partition
// counts. With ?replace=true the current dataset is dropped first, so every
// incoming record counts as added.
func (h *ExportHandler) Import(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	incoming, err := taskcsv.Decode(bytes.NewReader(body))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid CSV document: " + err.Error()})
		return
	}

	replace := c.Query("replace") == "true"
	if replace {
		if err := h.taskRepo.Truncate(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear dataset"})
			return
		}
	}

	var existing []taskcsv.Record
	if !replace {
		tasks, err := h.taskRepo.ListAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
			return
		}
		for _, task := range tasks {
			existing = append(existing, taskcsv.FromTask(task))
		}
	}

	result, _ := merge.Reconcile(existing, incoming)
	added, updated := merge.Diff(existing, incoming)

	if err := h.taskRepo.ApplyMerge(c.Request.Context(), added, updated, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply merge"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Stats summarizes the dataset
func (h *ExportHandler) Stats(c *gin.Context) {
	stats, err := h.taskRepo.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

type DiscordExportRequest struct {
	WebhookURL string `json:"webhook_url" binding:"required,url"`
}

var statusColors = map[string]int{
	model.StatusTodo:       0x95a5a6,
	model.StatusInProgress: 0x3498db,
	model.StatusInTest:     0xf39c12,
	model.StatusDone:       0x2ecc71,
}

// DiscordExport posts a task summary embed to a Discord webhook
func (h *ExportHandler) DiscordExport(c *gin.Context) {
	taskID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req DiscordExportRequest
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

	payload := buildTaskPayload(task)
	if err := h.webhooks.Execute(c.Request.Context(), req.WebhookURL, payload, nil); err != nil {
		var statusErr *discord.StatusError
		if errors.As(err, &statusErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Discord webhook failed with status %d", statusErr.StatusCode)})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Discord webhook failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task posted to Discord"})
}

func buildTaskPayload(task *model.Task) discord.WebhookPayload {
	embed := discord.Embed{
		Title:       task.Title,
		Description: task.Notes,
		Color:       statusColors[task.Status],
		Timestamp:   task.UpdatedAt.UTC().Format(time.RFC3339),
		Fields: []discord.EmbedField{
			{Name: "Status", Value: task.Status, Inline: true},
		},
	}
	if task.Project != "" {
		embed.Fields = append(embed.Fields, discord.EmbedField{Name: "Project", Value: task.Project, Inline: true})
	}
	if len(task.Checklist) > 0 {
		done := 0
		for _, item := range task.Checklist {
			if item.Completed {
				done++
			}
		}
		embed.Fields = append(embed.Fields, discord.EmbedField{
			Name:   "Checklist",
			Value:  fmt.Sprintf("%d/%d", done, len(task.Checklist)),
			Inline: true,
		})
	}
	if len(task.Assignees) > 0 {
		value := ""
		for i, a := range task.Assignees {
			if i > 0 {
				value += ", "
			}
			if a.DiscordID != "" {
				value += "<@" + a.DiscordID + ">"
			} else {
				value += a.Name
			}
		}
		embed.Fields = append(embed.Fields, discord.EmbedField{Name: "Assignees", Value: value})
	}

	return discord.WebhookPayload{
		Username: "taskboard",
		Embeds:   []discord.Embed{embed},
	}
}
