package handlers

import (
	"errors"
	"net/http"

	"quizforge/internal/db"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HandleListAttempts returns the current user's attempts, newest first.
func (h *Handler) HandleListAttempts(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		h.handleErrorAndNotify(c, uuid.Nil, http.StatusUnauthorized, "Get user from context", errors.New("user not authenticated"))
		return
	}

	attempts, err := h.DB.ListAttemptsByUser(c.Request.Context(), userID)
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusInternalServerError, "List attempts", err)
		return
	}
	c.JSON(http.StatusOK, attempts)
}

// HandleGetAttempt returns one attempt for review. Someone else's attempt
// answers 404.
func (h *Handler) HandleGetAttempt(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		h.handleErrorAndNotify(c, uuid.Nil, http.StatusUnauthorized, "Get user from context", errors.New("user not authenticated"))
		return
	}

	attemptID, err := uuid.Parse(c.Param("attemptId"))
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Parse attempt ID", err)
		return
	}

	attempt, err := h.DB.GetAttempt(c.Request.Context(), attemptID, userID)
	if errors.Is(err, db.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Attempt not found"})
		return
	}
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusInternalServerError, "Get attempt", err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}
