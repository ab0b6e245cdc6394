package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"

	"quizforge/internal/db"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// HandleGoogleLogin: Initiates the Google OAuth flow.
func (h *Handler) HandleGoogleLogin(c *gin.Context) {
	session := sessions.Default(c)

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		log.Printf("ERROR: Failed to generate state: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate state"})
		return
	}
	oauthStateString := base64.URLEncoding.EncodeToString(stateBytes)

	session.Set(OauthStateSessionKey, oauthStateString)
	if err := session.Save(); err != nil {
		log.Printf("ERROR: Failed to save session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	url := h.OauthConfig.AuthCodeURL(oauthStateString, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// HandleGoogleCallback: Handles the redirect back from Google. First login
// creates the user with zeroed statistics; returning logins refresh the
// profile fields only.
func (h *Handler) HandleGoogleCallback(c *gin.Context) {
	session := sessions.Default(c)
	retrievedState := session.Get(OauthStateSessionKey)
	originalState := c.Query("state")

	if originalState == "" || retrievedState == nil || retrievedState.(string) != originalState {
		log.Printf("WARN: Invalid state parameter. Session state: %v, Query state: %s", retrievedState, originalState)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid state parameter."})
		return
	}

	code := c.Query("code")
	token, err := h.OauthConfig.Exchange(context.Background(), code)
	if err != nil {
		log.Printf("ERROR: Failed to exchange code: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange code"})
		return
	}

	if !token.Valid() {
		log.Printf("WARN: Retrieved invalid token.")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Retrieved invalid token"})
		return
	}

	client := h.OauthConfig.Client(context.Background(), token)
	oauth2Service, err := oauth2api.NewService(context.Background(), option.WithHTTPClient(client))
	if err != nil {
		log.Printf("ERROR: Failed to create OAuth2 service: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create OAuth2 service"})
		return
	}

	userinfo, err := oauth2Service.Userinfo.V2.Me.Get().Do()
	if err != nil {
		log.Printf("ERROR: Failed to get user info: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user info"})
		return
	}

	ctx := c.Request.Context()
	dbUser, isNewUser, err := h.DB.UpsertUser(ctx, userinfo.Id, userinfo.Email, userinfo.Name, userinfo.Picture)
	if err != nil {
		log.Printf("ERROR: Failed to upsert user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user profile"})
		return
	}
	log.Printf("INFO: User %s mapped to internal ID %s (new=%t)", dbUser.Email, dbUser.ID, isNewUser)

	h.logActivity(ctx, dbUser.ID, db.ActionUserLoggedIn, "user", dbUser.ID.String(),
		map[string]interface{}{"email": dbUser.Email, "signup": isNewUser})
	if isNewUser {
		h.sendDiscordNotification(DiscordEmbed{
			Title: fmt.Sprintf("🎉 New Signup: %s (%s)", dbUser.Name, dbUser.Email),
			Color: 0x00FF00,
		})
	} else {
		h.sendDiscordNotification(DiscordEmbed{
			Title: fmt.Sprintf("✅ User Login: %s (%s)", dbUser.Name, dbUser.Email),
			Color: 0x00FF00,
		})
	}

	profile := UserProfile{
		DatabaseID:    dbUser.ID,
		GoogleID:      userinfo.Id,
		Email:         userinfo.Email,
		VerifiedEmail: userinfo.VerifiedEmail != nil && *userinfo.VerifiedEmail,
		Name:          userinfo.Name,
		GivenName:     userinfo.GivenName,
		FamilyName:    userinfo.FamilyName,
		Picture:       userinfo.Picture,
		Locale:        userinfo.Locale,
	}

	session.Set(ProfileSessionKey, profile)
	session.Delete(OauthStateSessionKey)

	if err := session.Save(); err != nil {
		log.Printf("ERROR: Failed to save session after login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "/"
	}
	c.Redirect(http.StatusTemporaryRedirect, frontendURL)
}

// HandleLogout: Clears the session.
func (h *Handler) HandleLogout(c *gin.Context) {
	session := sessions.Default(c)
	userID, profile, _ := currentUser(c)

	session.Clear()
	session.Options(sessions.Options{MaxAge: -1})
	if err := session.Save(); err != nil {
		log.Printf("ERROR: Failed to save session during logout for user %s: %v", userID, err)
	}

	if userID != uuid.Nil {
		h.logActivity(c.Request.Context(), userID, db.ActionUserLoggedOut, "user", userID.String(), nil)
		h.sendDiscordNotification(DiscordEmbed{
			Title: fmt.Sprintf("🚪 User Logout: %s (%s)", profile.Name, profile.Email),
			Color: 0x808080,
		})
	}

	log.Printf("INFO: User session cleared for user ID: %s", userID)
	c.Status(http.StatusOK)
}

// HandleAuthStatus checks if a user is currently authenticated via session.
func (h *Handler) HandleAuthStatus(c *gin.Context) {
	session := sessions.Default(c)
	profileData := session.Get(ProfileSessionKey)

	profile, ok := profileData.(UserProfile)
	if !ok || profileData == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          profile,
	})
}
