package main

import (
	"fmt"

	"postpilot/pkg/cache"
	"postpilot/pkg/config"
	"postpilot/pkg/database"
	"postpilot/pkg/logger"
	"postpilot/pkg/queue"
	internal "postpilot/services/notification/internal/app"
)

// @title           PostPilot Notification Service API
// @version         1.0
// @description     Publish-outcome notification service for the PostPilot platform

// @host      localhost:8005
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if cfg.JWTSecret == "your-secret-key-change-in-production" || cfg.JWTSecret == "" {
		panic("JWT_SECRET must be set in environment variables")
	}

	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		panic(err)
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v", err)
		panic(err)
	}

	internal.Run(cfg, log, db, queueClient, redisClient)
}
