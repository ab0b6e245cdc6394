// Package handlers holds the gin HTTP handlers and their shared plumbing:
// Discord notifications, activity logging and error handling.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"quizforge/internal/db"
	"quizforge/internal/quizgen"
	"quizforge/internal/scoring"
	"quizforge/internal/youtube"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// UserProfile stores information about the authenticated user.
type UserProfile struct {
	DatabaseID    uuid.UUID `json:"-"`  // Our internal DB UUID (omit from JSON response to client)
	GoogleID      string    `json:"id"` // Google's ID
	Email         string    `json:"email"`
	VerifiedEmail bool      `json:"verified_email"`
	Name          string    `json:"name"`
	GivenName     string    `json:"given_name"`
	FamilyName    string    `json:"family_name"`
	Picture       string    `json:"picture"`
	Locale        string    `json:"locale"`
}

// Session keys - keep these consistent
const (
	OauthStateSessionKey = "oauthstate"
	ProfileSessionKey    = "profile"
)

// Discord embed structures (based on the webhook documentation)
type DiscordEmbedFooter struct {
	Text    string `json:"text,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type DiscordEmbedAuthor struct {
	Name    string `json:"name,omitempty"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type DiscordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"` // ISO8601 timestamp
	Color       int                 `json:"color,omitempty"`     // Decimal color code
	Footer      *DiscordEmbedFooter `json:"footer,omitempty"`
	Author      *DiscordEmbedAuthor `json:"author,omitempty"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
}

// WebhookPayload is the structure Discord expects for webhook requests with embeds
type WebhookPayload struct {
	Username string         `json:"username,omitempty"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

// Handler contains the API handlers dependencies
type Handler struct {
	OauthConfig   *oauth2.Config
	StoreName     string
	DB            *db.DB
	Generator     *quizgen.Generator
	Youtube       *youtube.Client
	DiscordClient *http.Client
	MissThreshold int

	webhookURL string
}

// NewHandler creates a new Handler. The weak-tag miss threshold comes from
// WEAK_TAG_MISS_THRESHOLD, the Discord webhook from DISCORD_WEBHOOK_URL
// (unset disables notifications).
func NewHandler(oauth *oauth2.Config, store string, database *db.DB, generator *quizgen.Generator) *Handler {
	missThreshold := scoring.DefaultMissThreshold
	if raw := os.Getenv("WEAK_TAG_MISS_THRESHOLD"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			missThreshold = parsed
		} else {
			log.Printf("WARN: Ignoring invalid WEAK_TAG_MISS_THRESHOLD %q", raw)
		}
	}

	return &Handler{
		OauthConfig:   oauth,
		StoreName:     store,
		DB:            database,
		Generator:     generator,
		Youtube:       youtube.NewClient(),
		DiscordClient: &http.Client{Timeout: 5 * time.Second},
		MissThreshold: missThreshold,
		webhookURL:    os.Getenv("DISCORD_WEBHOOK_URL"),
	}
}

// currentUser pulls the authenticated user's ID and profile out of the gin
// context, where AuthRequired put them.
func currentUser(c *gin.Context) (uuid.UUID, UserProfile, bool) {
	userIDValue, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, UserProfile{}, false
	}
	userID, ok := userIDValue.(uuid.UUID)
	if !ok {
		return uuid.Nil, UserProfile{}, false
	}

	profile := UserProfile{}
	if profileValue, exists := c.Get("userProfile"); exists {
		if p, ok := profileValue.(UserProfile); ok {
			profile = p
		}
	}
	return userID, profile, true
}

// sendDiscordNotification sends an embed message to the configured Discord
// webhook. It runs asynchronously to avoid blocking the main request flow.
func (h *Handler) sendDiscordNotification(embed DiscordEmbed) {
	go func() {
		if h.webhookURL == "" {
			return // Silently return if not configured
		}

		if embed.Timestamp == "" {
			embed.Timestamp = time.Now().Format(time.RFC3339)
		}

		payload := WebhookPayload{
			Username: "QuizForge Notifier",
			Embeds:   []DiscordEmbed{embed},
		}

		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			log.Printf("ERROR: Failed to marshal Discord embed payload: %v", err)
			return
		}

		req, err := http.NewRequest("POST", h.webhookURL, bytes.NewBuffer(jsonPayload))
		if err != nil {
			log.Printf("ERROR: Failed to create Discord embed request: %v", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.DiscordClient.Do(req)
		if err != nil {
			log.Printf("ERROR: Failed to send Discord embed notification: %v", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			log.Printf("ERROR: Discord embed notification failed with status %d: %s", resp.StatusCode, string(bodyBytes))
		} else {
			log.Printf("INFO: Sent Discord embed notification: %s", embed.Title)
		}
	}()
}

// handleErrorAndNotify logs an error, sends a Discord notification, logs to
// the activity table, and aborts the request.
func (h *Handler) handleErrorAndNotify(c *gin.Context, userID uuid.UUID, statusCode int, errorContext string, err error) {
	log.Printf("ERROR: %s: %v (UserID: %s)", errorContext, err, userID)

	h.logActivity(c.Request.Context(), userID, db.ActionError, "", "", map[string]interface{}{
		"action_attempted": errorContext,
		"error_message":    err.Error(),
		"request_path":     c.Request.URL.Path,
		"http_status":      statusCode,
	})

	errorEmbed := DiscordEmbed{
		Title:       fmt.Sprintf("🚨 API Error: %s", errorContext),
		Description: fmt.Sprintf("**Error Details:**\n```%s```", err.Error()),
		Color:       0xFF0000,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if userID != uuid.Nil {
		errorEmbed.Fields = append(errorEmbed.Fields, DiscordEmbedField{Name: "User ID", Value: fmt.Sprintf("`%s`", userID.String()), Inline: true})
	}
	errorEmbed.Fields = append(errorEmbed.Fields, DiscordEmbedField{Name: "HTTP Status", Value: fmt.Sprintf("%d", statusCode), Inline: true})
	errorEmbed.Fields = append(errorEmbed.Fields, DiscordEmbedField{Name: "Path", Value: c.Request.URL.Path, Inline: false})

	h.sendDiscordNotification(errorEmbed)

	c.AbortWithStatusJSON(statusCode, gin.H{"error": fmt.Sprintf("%s: %v", errorContext, err)})
}

// logActivity is a helper function to create activity log entries. Failures
// are logged and never block the main request flow.
func (h *Handler) logActivity(ctx context.Context, userID uuid.UUID, action, targetType, targetID string, details map[string]interface{}) {
	if err := h.DB.LogActivity(ctx, userID, action, targetType, targetID, details); err != nil {
		log.Printf("ERROR: Failed to create activity log for user %s, action %s: %v", userID, action, err)
	}
}
