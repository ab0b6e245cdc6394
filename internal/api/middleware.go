package api

import (
	"log"
	"net/http"
	"os"
	"strings"

	"quizforge/internal/api/handlers"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CORSMiddleware adds CORS headers to allow cross-origin requests
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		frontendURL := os.Getenv("FRONTEND_URL")
		if frontendURL == "" {
			frontendURL = "http://localhost:3000"
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", strings.TrimSuffix(frontendURL, "/"))
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// AuthRequired ensures the user is authenticated. It checks the session
// profile and puts the internal database UUID into the context as "userID".
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		profileValue := session.Get(handlers.ProfileSessionKey)

		profile, ok := profileValue.(handlers.UserProfile)
		if !ok || profileValue == nil || profile.DatabaseID == uuid.Nil {
			log.Printf("WARN: AuthRequired failed - profile not found, invalid type, or missing DatabaseID in session.")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required or session invalid"})
			return
		}

		c.Set("userID", profile.DatabaseID)
		c.Set("userProfile", profile)
		c.Next()
	}
}
