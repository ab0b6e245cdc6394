package api

import (
	"quizforge/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(router *gin.Engine, handler *handlers.Handler) {
	router.Use(CORSMiddleware())

	// --- Public Auth Routes ---
	router.GET("/login", handler.HandleGoogleLogin)                   // Initiates OAuth flow
	router.GET("/auth/google/callback", handler.HandleGoogleCallback) // Handles the redirect from Google

	api := router.Group("/api")
	{
		// Public API routes
		api.GET("/auth/status", handler.HandleAuthStatus)
		api.GET("/leaderboard", handler.HandleLeaderboard)

		// Protected API routes
		authorized := api.Group("/")
		authorized.Use(AuthRequired())
		{
			authorized.GET("/user/profile", handler.HandleUserProfile)
			authorized.POST("/logout", handler.HandleLogout)

			// --- Quiz Routes ---
			authorized.POST("/quizzes", handler.HandleCreateQuiz)           // Generate and persist a quiz
			authorized.GET("/quizzes", handler.HandleListQuizzes)           // List the current user's quizzes
			authorized.GET("/quizzes/:quizId", handler.HandleGetQuiz)       // Get a specific quiz
			authorized.DELETE("/quizzes/:quizId", handler.HandleDeleteQuiz) // Delete a specific quiz
			authorized.POST("/quizzes/:quizId/submit", handler.HandleSubmitQuiz)

			// --- Attempt Routes ---
			authorized.GET("/attempts", handler.HandleListAttempts)
			authorized.GET("/attempts/:attemptId", handler.HandleGetAttempt)

			// --- Practice ---
			authorized.POST("/practice", handler.HandleGeneratePractice)

			// --- Bookmarks ---
			authorized.POST("/user/bookmarks", handler.HandleAddBookmark)
			authorized.GET("/user/bookmarks", handler.HandleListBookmarks)

			// --- Tutorials ---
			authorized.POST("/tutorials/videos", handler.HandleSearchVideos)
			authorized.POST("/tutorials/notes", handler.HandleCreateNotes)
		}
	}
}
