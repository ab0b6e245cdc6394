package handlers

import (
	"errors"
	"net/http"
	"strings"

	"quizforge/internal/db"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SearchVideosRequest carries the tutorial search query.
type SearchVideosRequest struct {
	Query string `json:"q" binding:"required"`
}

// HandleSearchVideos searches YouTube for educational videos on the query.
func (h *Handler) HandleSearchVideos(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		h.handleErrorAndNotify(c, uuid.Nil, http.StatusUnauthorized, "Get user from context", errors.New("user not authenticated"))
		return
	}

	var req SearchVideosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Bind video search request", err)
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Validate video search request", errors.New("search query is required"))
		return
	}

	videos, err := h.Youtube.SearchEducational(c.Request.Context(), query)
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadGateway, "Search YouTube", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos, "message": "Videos fetched successfully."})
}

// CreateNotesRequest asks for AI study notes on a topic.
type CreateNotesRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// HandleCreateNotes generates study notes on a topic. Notes are returned to
// the frontend, not persisted.
func (h *Handler) HandleCreateNotes(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		h.handleErrorAndNotify(c, uuid.Nil, http.StatusUnauthorized, "Get user from context", errors.New("user not authenticated"))
		return
	}

	var req CreateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Bind notes request", err)
		return
	}

	notes, err := h.Generator.GenerateNotes(c.Request.Context(), req.Topic)
	if err != nil {
		h.respondGenerationError(c, userID, err)
		return
	}

	h.logActivity(c.Request.Context(), userID, db.ActionNotesGenerated, "notes", "",
		map[string]interface{}{"topic": req.Topic})

	c.JSON(http.StatusOK, gin.H{
		"data":    gin.H{"topic": req.Topic, "notes": notes},
		"message": "Notes generated successfully",
	})
}
