package main

import (
	"context"
	"database/sql" // session store connection
	"encoding/gob"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizforge/internal/api"
	"quizforge/internal/api/handlers"
	"quizforge/internal/db"
	"quizforge/internal/gemini"
	"quizforge/internal/quizgen"
	"quizforge/internal/r2"

	sessions "github.com/gin-contrib/sessions"
	gsessions "github.com/gin-contrib/sessions/postgres"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	googleOauthConfig *oauth2.Config
	sessionSecretKey  []byte
	storeName         = "quizforge_session"
)

func init() {
	// Load environment variables FIRST
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("FATAL: Error loading .env file: %v", err)
		}
		log.Println("Warning: .env file not found. Relying on system environment variables.")
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Println("WARNING: SESSION_SECRET environment variable is not set or empty!")
	}
	sessionSecretKey = []byte(secret)

	// Register types needed for session storage
	gob.Register(handlers.UserProfile{})

	// --- Google OAuth Configuration ---
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL") // e.g. "http://localhost:8080/auth/google/callback"

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		log.Fatal("FATAL: GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, and GOOGLE_REDIRECT_URL environment variables must be set.")
	}

	googleOauthConfig = &oauth2.Config{
		RedirectURL:  redirectURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database and apply the schema
	database, err := db.NewDB(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Build the Gemini connectivity strategies (direct + proxies)
	geminiClients, err := gemini.NewClients(ctx, gemini.StrategiesFromEnv())
	if err != nil {
		log.Fatalf("Failed to initialize Gemini clients: %v", err)
	}
	defer func() {
		for _, c := range geminiClients {
			c.Close()
		}
	}()

	strategies := make([]quizgen.TextGenerator, len(geminiClients))
	for i, c := range geminiClients {
		strategies[i] = c
	}

	// Optional R2 archiver for raw generation exchanges
	archiveClient, err := r2.NewClient()
	if err != nil {
		log.Fatalf("Failed to initialize R2 client: %v", err)
	}
	var archiver quizgen.Archiver
	if archiveClient != nil {
		archiver = archiveClient
	}

	generator, err := quizgen.New(strategies, archiver)
	if err != nil {
		log.Fatalf("Failed to initialize question generator: %v", err)
	}

	// Set up Gin router
	router := gin.Default()

	// --- Session Configuration ---
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("FATAL: DATABASE_URL environment variable must be set.")
	}

	// A standard sql.DB pool for the session store, via the pgx stdlib
	// adapter.
	sessionDB, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to open database connection for session store: %v", err)
	}
	defer sessionDB.Close()

	if err := sessionDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database for session store: %v", err)
	}

	store, err := gsessions.NewStore(sessionDB, sessionSecretKey)
	if err != nil {
		log.Fatalf("Failed to create postgres session store: %v", err)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		Secure:   os.Getenv("SESSION_SECURE") == "true",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	router.Use(sessions.Sessions(storeName, store))

	// Set up API handlers
	handler := handlers.NewHandler(googleOauthConfig, storeName, database, generator)
	api.SetupRoutes(router, handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
