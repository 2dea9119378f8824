package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postpilot/pkg/config"
	"postpilot/pkg/jwt"
	"postpilot/pkg/logger"
	"postpilot/pkg/middleware"
	contentHTTP "postpilot/services/content/internal/controller/http"
	"postpilot/services/content/internal/gemini"
	"postpilot/services/content/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "postpilot/services/content/docs" // Swagger docs
)

func Run(cfg *config.Config, log *logger.Logger, redisClient *redis.Client) {
	jwtService := jwt.NewService(cfg.JWTSecret)

	geminiClient := gemini.NewClient(cfg.GeminiAPIURL, cfg.GeminiAPIKey, &http.Client{Timeout: 30 * time.Second})
	if !geminiClient.Configured() {
		log.Warn("GEMINI_API_KEY is not set, content endpoints will return 503")
	}

	contentUseCase := usecase.NewContentUseCase(geminiClient, redisClient, log)
	contentHandler := contentHTTP.NewContentHandler(contentUseCase, geminiClient.Configured(), log)

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	api.Use(middleware.RateLimitMiddleware(redisClient, cfg.RateLimitAIRequests, cfg.RateLimitWindow))

	{
		api.POST("/content/generate", contentHandler.Generate)
		api.POST("/content/hashtags", contentHandler.Hashtags)
		api.POST("/content/improve", contentHandler.Improve)
		api.POST("/content/sentiment", contentHandler.Sentiment)
		api.POST("/content/suggest", contentHandler.Suggest)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Content service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down content service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Close Redis connection
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
		}
	}

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		panic(err)
	}

	log.Info("Content service exited")
}
