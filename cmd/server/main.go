package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/peermentor/backend/internal/router"
	"github.com/peermentor/backend/pkg/config"
	"github.com/peermentor/backend/pkg/firebase"
	"github.com/peermentor/backend/pkg/storage"
	"github.com/peermentor/backend/pkg/stream"
	"github.com/peermentor/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Stream Chat is optional; messaging routes are skipped without it
	var streamClient *stream.Client
	if cfg.StreamAPIKey != "" && cfg.StreamAPISecret != "" {
		streamClient, err = stream.NewClient(cfg.StreamAPIKey, cfg.StreamAPISecret)
		if err != nil {
			log.Fatalf("Failed to initialize Stream Chat: %v", err)
		}
	}

	// S3 is optional; upload routes are skipped without it
	var uploader *storage.S3Uploader
	if cfg.S3Bucket != "" {
		uploader, err = storage.NewS3Uploader(cfg.S3Region, cfg.S3Bucket, cfg.S3BaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize S3 uploader: %v", err)
		}
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, router.Deps{
		Postgres:      db.Postgres,
		Mongo:         db.Mongo,
		MongoDatabase: cfg.MongoDatabase,
		FirebaseAuth:  firebaseApp.AuthClient,
		StreamClient:  streamClient,
		Uploader:      uploader,
	})

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
