package handlers

import (
	"errors"
	"net/http"

	"quizforge/internal/db"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PracticeRequest asks for a graded practice set on a topic.
type PracticeRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// HandleGeneratePractice generates a graded practice set. Practice sets are
// not persisted; the frontend drives them entirely client-side.
func (h *Handler) HandleGeneratePractice(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		h.handleErrorAndNotify(c, uuid.Nil, http.StatusUnauthorized, "Get user from context", errors.New("user not authenticated"))
		return
	}

	var req PracticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Bind practice request", err)
		return
	}

	questions, err := h.Generator.GeneratePractice(c.Request.Context(), req.Topic)
	if err != nil {
		h.respondGenerationError(c, userID, err)
		return
	}

	h.logActivity(c.Request.Context(), userID, db.ActionPracticeGenerated, "practice", "",
		map[string]interface{}{"topic": req.Topic, "questions": len(questions)})

	c.JSON(http.StatusOK, gin.H{
		"topic":     req.Topic,
		"questions": questions,
	})
}
