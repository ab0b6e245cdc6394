package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"quizforge/internal/db"
	"quizforge/internal/models"
	"quizforge/internal/quizgen"
	"quizforge/internal/scoring"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateQuizRequest defines the structure for the quiz creation request body.
type CreateQuizRequest struct {
	Topic        string `json:"topic" binding:"required"`
	NumQuestions int    `json:"numQuestions" binding:"required"`
	Difficulty   string `json:"difficulty" binding:"required"`
	TimeLimit    int    `json:"timeLimit"` // minutes, 0 = none
}

const maxQuestionsPerQuiz = 50

func validDifficulty(d string) bool {
	switch d {
	case models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced, models.DifficultyMixed:
		return true
	}
	return false
}

// HandleCreateQuiz generates a quiz on the requested topic and persists it.
func (h *Handler) HandleCreateQuiz(c *gin.Context) {
	startTime := time.Now()
	userID, profile, ok := currentUser(c)
	if !ok {
		h.handleErrorAndNotify(c, uuid.Nil, http.StatusUnauthorized, "Get user from context", errors.New("user not authenticated"))
		return
	}

	// 1. Bind and validate the request
	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Bind quiz request", err)
		return
	}
	if req.NumQuestions < 1 || req.NumQuestions > maxQuestionsPerQuiz {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Validate quiz request",
			fmt.Errorf("numQuestions must be between 1 and %d", maxQuestionsPerQuiz))
		return
	}
	if !validDifficulty(req.Difficulty) {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Validate quiz request",
			fmt.Errorf("unknown difficulty %q", req.Difficulty))
		return
	}

	// 2. Generate the questions
	log.Printf("INFO: Generating %d %s questions on %q for user %s", req.NumQuestions, req.Difficulty, req.Topic, userID)
	questions, err := h.Generator.Generate(c.Request.Context(), req.Topic, req.NumQuestions, req.Difficulty)
	if err != nil {
		h.respondGenerationError(c, userID, err)
		return
	}

	// 3. Persist the quiz
	quiz, err := h.DB.CreateQuiz(c.Request.Context(), models.Quiz{
		OwnerID:        userID,
		Topic:          req.Topic,
		RequestedCount: req.NumQuestions,
		Difficulty:     req.Difficulty,
		TimeLimit:      req.TimeLimit,
		Questions:      questions,
	})
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusInternalServerError, "Persist quiz", err)
		return
	}

	// 4. Audit + notify
	h.logActivity(c.Request.Context(), userID, db.ActionQuizCreated, "quiz", quiz.ID.String(),
		map[string]interface{}{"topic": req.Topic, "questions": len(questions), "difficulty": req.Difficulty})
	h.sendDiscordNotification(DiscordEmbed{
		Title: "🧠 Quiz Generated",
		Color: 0x00BFFF,
		Fields: []DiscordEmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (`%s`)", profile.Name, userID), Inline: false},
			{Name: "Topic", Value: req.Topic, Inline: true},
			{Name: "Questions", Value: fmt.Sprintf("%d", len(questions)), Inline: true},
			{Name: "Duration", Value: time.Since(startTime).Round(time.Millisecond).String(), Inline: true},
		},
	})

	c.JSON(http.StatusCreated, gin.H{"quizId": quiz.ID, "message": "Quiz created successfully"})
}

// respondGenerationError maps generator failures onto transport statuses:
// rejected topic 422, unparsable or under-filled 502, unreachable 503.
func (h *Handler) respondGenerationError(c *gin.Context, userID uuid.UUID, err error) {
	switch {
	case errors.Is(err, quizgen.ErrTopicRejected):
		// Valid generation outcome, distinguished from a failure.
		log.Printf("INFO: Topic rejected for user %s: %v", userID, err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "no questions produced for this topic"})
	case errors.Is(err, quizgen.ErrUnderfilled):
		h.handleErrorAndNotify(c, userID, http.StatusBadGateway, "Generation under-filled", err)
	default:
		var genErr *quizgen.GenerationError
		if errors.As(err, &genErr) && genErr.Kind == quizgen.KindUnreachable {
			h.handleErrorAndNotify(c, userID, http.StatusServiceUnavailable, "Generation service unreachable", err)
			return
		}
		h.handleErrorAndNotify(c, userID, http.StatusBadGateway, "Generation response unusable", err)
	}
}

// HandleListQuizzes returns the current user's quizzes without question
// bodies.
func (h *Handler) HandleListQuizzes(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		h.handleErrorAndNotify(c, uuid.Nil, http.StatusUnauthorized, "Get user from context", errors.New("user not authenticated"))
		return
	}

	summaries, err := h.DB.ListQuizzesByOwner(c.Request.Context(), userID)
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusInternalServerError, "List quizzes", err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// HandleGetQuiz returns one of the user's quizzes. A quiz owned by someone
// else answers 404 exactly like a missing one.
func (h *Handler) HandleGetQuiz(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		h.handleErrorAndNotify(c, uuid.Nil, http.StatusUnauthorized, "Get user from context", errors.New("user not authenticated"))
		return
	}

	quizID, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Parse quiz ID", err)
		return
	}

	quiz, err := h.DB.GetQuizOwned(c.Request.Context(), quizID, userID)
	if errors.Is(err, db.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
		return
	}
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusInternalServerError, "Get quiz", err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// HandleDeleteQuiz deletes one of the user's quizzes.
func (h *Handler) HandleDeleteQuiz(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		h.handleErrorAndNotify(c, uuid.Nil, http.StatusUnauthorized, "Get user from context", errors.New("user not authenticated"))
		return
	}

	quizID, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Parse quiz ID", err)
		return
	}

	err = h.DB.DeleteQuiz(c.Request.Context(), quizID, userID)
	if errors.Is(err, db.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
		return
	}
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusInternalServerError, "Delete quiz", err)
		return
	}

	h.logActivity(c.Request.Context(), userID, db.ActionQuizDeleted, "quiz", quizID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted successfully"})
}

// SubmitQuizRequest carries the chosen option key per question ID.
type SubmitQuizRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// HandleSubmitQuiz scores a submission, appends the attempt, and atomically
// folds the result into the user's statistics. Resubmitting the same quiz
// creates a new attempt each time.
func (h *Handler) HandleSubmitQuiz(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		h.handleErrorAndNotify(c, uuid.Nil, http.StatusUnauthorized, "Get user from context", errors.New("user not authenticated"))
		return
	}

	quizID, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Parse quiz ID", err)
		return
	}

	var req SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusBadRequest, "Bind submission", err)
		return
	}

	// 1. Load the quiz (owner-scoped)
	quiz, err := h.DB.GetQuizOwned(c.Request.Context(), quizID, userID)
	if errors.Is(err, db.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
		return
	}
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusInternalServerError, "Get quiz for submission", err)
		return
	}

	// 2. Score
	result := scoring.Score(quiz.Questions, req.Answers)
	promoted := scoring.WeakTags(result.WrongTagCounts, h.MissThreshold)

	// 3. Append the attempt
	attempt, err := h.DB.CreateAttempt(c.Request.Context(), models.Attempt{
		QuizID:          quiz.ID,
		UserID:          userID,
		Answers:         req.Answers,
		CorrectCount:    result.CorrectCount,
		WrongCount:      result.WrongCount,
		TotalQuestions:  result.TotalQuestions,
		ScorePercentage: result.ScorePercentage,
		WrongTagCounts:  result.WrongTagCounts,
	})
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusInternalServerError, "Persist attempt", err)
		return
	}

	// 4. Fold into user statistics (locked read-modify-write)
	updatedUser, err := h.DB.ApplySubmission(c.Request.Context(), userID, result, h.MissThreshold)
	if err != nil {
		h.handleErrorAndNotify(c, userID, http.StatusInternalServerError, "Apply submission to user stats", err)
		return
	}

	h.logActivity(c.Request.Context(), userID, db.ActionQuizSubmitted, "quiz", quiz.ID.String(),
		map[string]interface{}{
			"attempt_id":       attempt.ID.String(),
			"score_percentage": result.ScorePercentage,
			"correct":          result.CorrectCount,
			"wrong":            result.WrongCount,
		})

	c.JSON(http.StatusOK, gin.H{
		"attemptId":        attempt.ID,
		"result":           result,
		"promotedWeakTags": promoted,
		"user": gin.H{
			"number_of_tests_attempted": updatedUser.TestsAttempted,
			"total_marks":               updatedUser.AverageScore,
			"weak_tags":                 updatedUser.WeakTags,
		},
	})
}
