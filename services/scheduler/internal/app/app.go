package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postpilot/pkg/config"
	"postpilot/pkg/logger"
	"postpilot/pkg/queue"
	"postpilot/services/scheduler/internal/publisher"
	"postpilot/services/scheduler/internal/repo/persistent"
	"postpilot/services/scheduler/internal/usecase"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, queueClient *queue.Client) {
	registry, err := publisher.FromConfig(cfg, &http.Client{Timeout: cfg.SchedulerPublishTimeout})
	if err != nil {
		log.Error("Failed to build publisher registry: %v", err)
		panic(err)
	}
	log.Info("Publishing enabled for platforms: %v", registry.Platforms())

	postRepo := persistent.NewPostRepository(db)

	schedulerUseCase := usecase.NewSchedulerUseCase(postRepo, registry, queueClient, log, usecase.Options{
		MaxAttempts:    cfg.SchedulerMaxAttempts,
		Workers:        cfg.SchedulerWorkers,
		PublishTimeout: cfg.SchedulerPublishTimeout,
		ClaimGrace:     cfg.SchedulerClaimGrace,
		BatchLimit:     cfg.SchedulerBatchLimit,
	})

	runner := usecase.NewRunner(cfg.SchedulerPollInterval, schedulerUseCase, log)
	runner.Start()

	// The scheduler has no wire protocol of its own; the HTTP surface is a
	// liveness check plus a manual cycle trigger for operators
	r := gin.Default()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.POST("/run", func(c *gin.Context) {
		runner.Tick()
		c.JSON(202, gin.H{"status": "cycle triggered"})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info("Scheduler service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down scheduler service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop polling first so in-flight dispatches drain before connections close
	runner.Stop(ctx)

	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	if queueClient != nil {
		queueClient.Close()
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Scheduler service exited")
}
