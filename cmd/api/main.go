package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/filmscatalog/backend/internal/config"
	"github.com/filmscatalog/backend/internal/handlers"
	"github.com/filmscatalog/backend/internal/middleware"
	"github.com/filmscatalog/backend/internal/models"
	"github.com/filmscatalog/backend/internal/repository"
	"github.com/filmscatalog/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.New()

	// Initialize database
	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	// Initialize services
	userService := services.NewUserService(db, cfg)
	posterStore := services.NewPosterStore(cfg)
	filmRepo := repository.NewFilmRepository(db)
	filmService := services.NewFilmService(filmRepo, posterStore)

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(redisClient, cfg))

	// Initialize handlers
	filmHandler := handlers.NewFilmHandler(filmService, cfg)
	userHandler := handlers.NewUserHandler()

	// Health check outside API group (no /api/v1 prefix)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Poster images are publicly served straight from the store directory
	router.Static(cfg.PosterPublicPath, cfg.PosterStoragePath)

	// Setup routes
	api := router.Group("/api/v1")
	{
		// Catch-all OPTIONS handler for CORS preflight requests
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		// Public film routes
		api.GET("/films", filmHandler.GetFilms)
		api.GET("/films/:id", filmHandler.GetFilm)

		// Mutations require an authenticated user
		authed := api.Group("")
		authed.Use(middleware.Auth(cfg, userService))
		{
			authed.GET("/user/profile", userHandler.GetProfile)
			authed.DELETE("/films/:id", filmHandler.DeleteFilm)

			uploadGroup := authed.Group("")
			uploadGroup.Use(middleware.UploadRateLimit(redisClient, cfg))
			{
				uploadGroup.POST("/films", filmHandler.CreateFilm)
				uploadGroup.PUT("/films/:id", filmHandler.UpdateFilm)
			}
		}
	}

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
