package main

import (
	"fmt"

	"postpilot/pkg/cache"
	"postpilot/pkg/config"
	"postpilot/pkg/logger"
	internal "postpilot/services/images/internal/app"
)

// @title           PostPilot Images Service API
// @version         1.0
// @description     Stock image search service for the PostPilot platform

// @host      localhost:8004
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

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		panic(err)
	}

	internal.Run(cfg, log, redisClient)
}
