package handler

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"taskboard/internal/merge"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/taskcsv"

	"github.com/gin-gonic/gin"
)

// SyncHandler relays whole-dataset CSV documents between devices through
// named rooms.
type SyncHandler struct {
	roomRepo *repository.RoomRepository
}

func NewSyncHandler(roomRepo *repository.RoomRepository) *SyncHandler {
	return &SyncHandler{roomRepo: roomRepo}
}

type JoinRoomRequest struct {
	Code string `json:"code" binding:"required"`
	Peer string `json:"peer" binding:"required"`
}

type PeerResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastSeen string `json:"last_seen"`
}

func toPeerResponses(peers []model.RoomPeer) []PeerResponse {
	responses := make([]PeerResponse, 0, len(peers))
	for _, p := range peers {
		responses = append(responses, PeerResponse{
			ID:       p.ID.String(),
			Name:     p.Name,
			LastSeen: p.LastSeen.UTC().Format(time.RFC3339),
		})
	}
	return responses
}

// CreateRoom opens a fresh room and returns its join code
func (h *SyncHandler) CreateRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	room, err := h.roomRepo.Create(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":   room.ID.String(),
		"code": room.Code,
	})
}

// JoinRoom registers a peer in a room and returns the current peer list
func (h *SyncHandler) JoinRoom(c *gin.Context) {
	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	room, err := h.roomRepo.GetByCode(c.Request.Context(), req.Code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve room"})
		return
	}

	if _, err := h.roomRepo.UpsertPeer(c.Request.Context(), room.ID, req.Peer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join room"})
		return
	}

	peers, err := h.roomRepo.GetPeers(c.Request.Context(), room.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve peers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":  room.Code,
		"peers": toPeerResponses(peers),
	})
}

// GetPeers lists the devices that have joined a room
func (h *SyncHandler) GetPeers(c *gin.Context) {
	room, ok := h.roomFromParam(c)
	if !ok {
		return
	}

	peers, err := h.roomRepo.GetPeers(c.Request.Context(), room.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve peers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"peers": toPeerResponses(peers)})
}

// GetDocument returns the room's current dataset as CSV
func (h *SyncHandler) GetDocument(c *gin.Context) {
	room, ok := h.roomFromParam(c)
	if !ok {
		return
	}

	records, err := h.roomRepo.LoadRecords(c.Request.Context(), room.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room document"})
		return
	}

	data, err := taskcsv.Encode(records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode document"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="tasks.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// PushDocument merges a client's CSV snapshot into the room and reports the
// partition counts.
func (h *SyncHandler) PushDocument(c *gin.Context) {
	room, ok := h.roomFromParam(c)
	if !ok {
		return
	}

	result, _, ok := h.mergeIntoRoom(c, room)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, result)
}

// MergeDocument is the two-way sync: the client's snapshot is merged into
// the room, and the full merged document travels back with the counts.
func (h *SyncHandler) MergeDocument(c *gin.Context) {
	room, ok := h.roomFromParam(c)
	if !ok {
		return
	}

	result, merged, ok := h.mergeIntoRoom(c, room)
	if !ok {
		return
	}

	data, err := taskcsv.Encode(merged)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"added":     result.Added,
		"updated":   result.Updated,
		"unchanged": result.Unchanged,
		"document":  string(data),
	})
}

func (h *SyncHandler) roomFromParam(c *gin.Context) (*model.SyncRoom, bool) {
	room, err := h.roomRepo.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve room"})
		return nil, false
	}

	// A peer name on the query string refreshes the caller's presence
	if peer := c.Query("peer"); peer != "" {
		if _, err := h.roomRepo.UpsertPeer(c.Request.Context(), room.ID, peer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update peer"})
			return nil, false
		}
	}

	return room, true
}

func (h *SyncHandler) mergeIntoRoom(c *gin.Context, room *model.SyncRoom) (merge.Result, []taskcsv.Record, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return merge.Result{}, nil, false
	}

	incoming, err := taskcsv.Decode(bytes.NewReader(body))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid CSV document: " + err.Error()})
		return merge.Result{}, nil, false
	}

	existing, err := h.roomRepo.LoadRecords(c.Request.Context(), room.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room document"})
		return merge.Result{}, nil, false
	}

	result, merged := merge.Reconcile(existing, incoming)

	// Only the rows the merge actually changed get written back
	added, updated := merge.Diff(existing, incoming)
	if len(added)+len(updated) > 0 {
		changed := append(added, updated...)
		if err := h.roomRepo.SaveRecords(c.Request.Context(), room.ID, changed); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store room document"})
			return merge.Result{}, nil, false
		}
	}

	return result, merged, true
}
