package handlers

import (
	"errors"
	"net/http"
	"strings"

	"quizforge/internal/db"
	"quizforge/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const leaderboardLimit = 50

// HandleUserProfile returns the session profile merged with the stored
// learner statistics.
func (h *Handler) HandleUserProfile(c *gin.Context) {
	userID, profile, ok := currentUser(c)
	if !ok {
		h.handleErrorAndNotify(c, uuid.Nil, http.StatusUnauthorized, "Get user from context", errors.New("user not authenticated"))
		return
	}

	user, err := h.DB.GetUserByID(c.Request.Context(), userID)
	if errors.Is(err, db.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusInternalServerError, "Get user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"stats": gin.H{
			"number_of_tests_attempted": user.TestsAttempted,
			"total_marks":               user.AverageScore,
			"weak_tags":                 user.WeakTags,
		},
	})
}

// HandleLeaderboard returns users ordered by average score. Public.
func (h *Handler) HandleLeaderboard(c *gin.Context) {
	entries, err := h.DB.ListLeaderboard(c.Request.Context(), leaderboardLimit)
	if err != nil {
		h.handleErrorAndNotify(c, uuid.Nil, http.StatusInternalServerError, "List leaderboard", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// AddBookmarkRequest pins one question for later review.
type AddBookmarkRequest struct {
	Question models.Question `json:"question" binding:"required"`
}

// HandleAddBookmark bookmarks a question for the user. Re-bookmarking the
// same question is a no-op.
func (h *Handler) HandleAddBookmark(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		h.handleErrorAndNotify(c, uuid.Nil, http.StatusUnauthorized, "Get user from context", errors.New("user not authenticated"))
		return
	}

	var req AddBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Bind bookmark request", err)
		return
	}
	if req.Question.ID == "" || strings.TrimSpace(req.Question.Text) == "" {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Validate bookmark request", errors.New("question id and text are required"))
		return
	}

	inserted, err := h.DB.AddBookmark(c.Request.Context(), userID, req.Question)
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusInternalServerError, "Add bookmark", err)
		return
	}

	if inserted {
		h.logActivity(c.Request.Context(), userID, db.ActionQuestionBookmarked, "question", req.Question.ID, nil)
	}
	c.JSON(http.StatusOK, gin.H{"bookmarked": true, "new": inserted})
}

// HandleListBookmarks returns the user's bookmarked questions.
func (h *Handler) HandleListBookmarks(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		h.handleErrorAndNotify(c, uuid.Nil, http.StatusUnauthorized, "Get user from context", errors.New("user not authenticated"))
		return
	}

	bookmarks, err := h.DB.ListBookmarks(c.Request.Context(), userID)
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusInternalServerError, "List bookmarks", err)
		return
	}
	c.JSON(http.StatusOK, bookmarks)
}
