package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"inkwell/pkg/inkwell/admin"
	"inkwell/pkg/inkwell/auth"
	"inkwell/pkg/inkwell/config"
	"inkwell/pkg/inkwell/dashboard"
	"inkwell/pkg/inkwell/database"
	"inkwell/pkg/inkwell/feed"
	"inkwell/pkg/inkwell/models"
	"inkwell/pkg/inkwell/posts"
	"inkwell/pkg/inkwell/tags"
	"inkwell/pkg/inkwell/uploads"
)

func main() {
	cfg := config.Load()

	// Connect to database
	if err := database.Connect(cfg.DBPath); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Ensure the upload directory exists
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	db := database.GetDB()

	// Set up Gin router
	r := gin.Default()
	r.MaxMultipartMemory = uploads.MaxUploadSize
	r.SetHTMLTemplate(admin.Templates())

	// CORS restricted to the one configured frontend origin
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Admin session cookies, needed by the admin HTML surface and admin API
	r.Use(admin.SessionMiddleware(cfg.SessionSecret))

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (register/login public, /user token-gated)
		authHandler := auth.NewHandler(db)
		authHandler.RegisterRoutes(api)

		// Public content routes
		postsHandler := posts.NewHandler(db)
		postsHandler.RegisterPublicRoutes(api)

		tagsHandler := tags.NewHandler(db)
		tagsHandler.RegisterRoutes(api)

		feedHandler := feed.NewHandler(db, cfg.BaseURL)
		feedHandler.RegisterRoutes(api)

		// Token-gated routes
		authed := api.Group("", auth.AuthMiddleware(db))
		postsHandler.RegisterRoutes(authed)

		uploadsHandler := uploads.NewHandler(cfg.UploadDir)
		uploadsHandler.RegisterRoutes(authed)

		dashboardHandler := dashboard.NewHandler(db)
		dashboardHandler.RegisterRoutes(authed)

		// Admin API (session-cookie gated)
		adminHandler := admin.NewHandler(db, cfg.AdminUsername, cfg.AdminPassword)
		adminGroup := api.Group("/admin", admin.RequireSession())
		adminHandler.RegisterRoutes(adminGroup)

		// Admin HTML surface
		adminHandler.RegisterWebRoutes(r)
	}

	// Raw uploaded files
	r.Static("/uploads", cfg.UploadDir)

	log.Printf("Starting Inkwell server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
