package main

import (
	"fmt"

	"postpilot/pkg/config"
	"postpilot/pkg/database"
	"postpilot/pkg/logger"
	"postpilot/pkg/queue"
	internal "postpilot/services/scheduler/internal/app"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Warn("RabbitMQ unavailable, outcome events disabled: %v", err)
		queueClient = nil
	}

	internal.Run(cfg, log, db, queueClient)
}
