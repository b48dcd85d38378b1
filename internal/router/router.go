package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/peermentor/backend/internal/handlers"
	"github.com/peermentor/backend/internal/middleware"
	"github.com/peermentor/backend/internal/models"
	"github.com/peermentor/backend/internal/repositories"
	"github.com/peermentor/backend/pkg/storage"
	"github.com/peermentor/backend/pkg/stream"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Deps carries the external clients the routes are wired against.
// StreamClient and Uploader may be nil when the corresponding service
// is not configured; their routes are skipped.
type Deps struct {
	Postgres      *gorm.DB
	Mongo         *mongo.Client
	MongoDatabase string
	FirebaseAuth  *auth.Client
	StreamClient  *stream.Client
	Uploader      *storage.S3Uploader
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Deps) {
	// AutoMigrate PostgreSQL models
	err := deps.Postgres.AutoMigrate(
		&models.User{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Follow{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	postRepo := repositories.NewMongoPostRepository(deps.Mongo.Database(deps.MongoDatabase))
	commentRepo := repositories.NewPostgresCommentRepository(deps.Postgres)
	commentLikeRepo := repositories.NewPostgresCommentLikeRepository(deps.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(deps.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.Postgres)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, deps.FirebaseAuth)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// Legacy local-session routes (JWT issued by signin/signup)
	sessionGroup := e.Group("/api/v1/auth")
	sessionGroup.Use(middleware.JWTAuthMiddleware())
	authHandler.RegisterSessionRoutes(sessionGroup)

	// --- Protected routes (require a verified Firebase ID token) ---
	api := e.Group("/api/v1")
	api.Use(middleware.FirebaseAuthMiddleware(deps.FirebaseAuth))
	log.Println("Firebase authentication middleware applied to /api/v1 group.")

	// --- Optional-auth routes (anonymous reads allowed) ---
	public := e.Group("/api/v1")
	public.Use(middleware.OptionalFirebaseAuthMiddleware(deps.FirebaseAuth))

	// User profile and mentor discovery routes
	userHandler := handlers.NewUserHandler(userRepo, followRepo)
	userHandler.RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	// Onboarding routes
	onboardingHandler := handlers.NewOnboardingHandler(userRepo)
	onboardingHandler.RegisterOnboardingRoutes(api)
	log.Println("Onboarding routes configured.")

	// Post routes
	postHandler := handlers.NewPostHandler(postRepo, userRepo)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	// Like and save toggle routes, status reads are optional-auth
	interactionHandler := handlers.NewInteractionHandler(postRepo, userRepo, notificationRepo)
	interactionHandler.RegisterInteractionRoutes(api, public)
	log.Println("Interaction routes configured.")

	// Feed routes
	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, followRepo)
	feedHandler.RegisterFeedRoutes(api)
	log.Println("Feed routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, notificationRepo)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo, commentLikeRepo, notificationRepo)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Messaging routes
	if deps.StreamClient != nil {
		messageHandler := handlers.NewMessageHandler(deps.StreamClient, userRepo)
		messageHandler.RegisterMessageRoutes(api)
		log.Println("Messaging routes configured.")
	} else {
		log.Println("Stream Chat not configured, messaging routes skipped.")
	}

	// Upload routes
	if deps.Uploader != nil {
		uploadHandler := handlers.NewUploadHandler(deps.Uploader, userRepo)
		uploadHandler.RegisterUploadRoutes(api)
		log.Println("Upload routes configured.")
	} else {
		log.Println("S3 not configured, upload routes skipped.")
	}

	log.Println("All routes configured.")
}
