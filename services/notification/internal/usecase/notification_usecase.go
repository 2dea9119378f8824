package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"postpilot/pkg/logger"
	"postpilot/pkg/models"
	"postpilot/pkg/queue"
	"postpilot/services/notification/internal/repo/persistent"

	"github.com/redis/go-redis/v9"
)

const (
	mailboxTTL  = 30 * 24 * time.Hour
	mailboxSize = 100
)

type NotificationUseCase interface {
	HandlePostEvent(routingKey string, event map[string]interface{}) error
	GetNotifications(userID string, limit, offset int) ([]*models.Notification, int64, error)
	MarkRead(id, userID string) error
}

type notificationUseCase struct {
	notificationRepo persistent.NotificationRepository
	redisClient      *redis.Client
	logger           *logger.Logger
}

func NewNotificationUseCase(
	notificationRepo persistent.NotificationRepository,
	redisClient *redis.Client,
	logger *logger.Logger,
) NotificationUseCase {
	return &notificationUseCase{
		notificationRepo: notificationRepo,
		redisClient:      redisClient,
		logger:           logger,
	}
}

// HandlePostEvent persists an outcome event from the publish pipeline as a
// notification row and pushes it into the user's redis mailbox. Returning an
// error nacks the message so it is redelivered.
func (uc *notificationUseCase) HandlePostEvent(routingKey string, event map[string]interface{}) error {
	userID, _ := event["user_id"].(string)
	postID, _ := event["post_id"].(string)
	if userID == "" || postID == "" {
		// Malformed events are dropped, redelivery cannot fix them
		uc.logger.Warn("Dropping malformed post event: routing_key=%s event=%v", routingKey, event)
		return nil
	}

	var notificationType models.NotificationType
	switch routingKey {
	case queue.RoutingKeyPostPublished:
		notificationType = models.NotificationPostPublished
	case queue.RoutingKeyPostFailed:
		notificationType = models.NotificationPostFailed
	default:
		uc.logger.Warn("Dropping post event with unknown routing key %q", routingKey)
		return nil
	}

	reason, _ := event["reason"].(string)

	notification := &models.Notification{
		UserID: userID,
		Type:   notificationType,
		PostID: postID,
		Reason: reason,
	}

	if err := uc.notificationRepo.Create(notification); err != nil {
		uc.logger.Error("Failed to persist notification: %v", err)
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	uc.pushToMailbox(notification)

	uc.logger.Info("Notification stored for user %s: type=%s post_id=%s", userID, notificationType, postID)
	return nil
}

// pushToMailbox keeps a bounded, expiring per-user list in redis as the hot
// read path. Failures here are logged only, the DB row is the durable record.
func (uc *notificationUseCase) pushToMailbox(notification *models.Notification) {
	if uc.redisClient == nil {
		return
	}

	data, err := json.Marshal(notification)
	if err != nil {
		return
	}

	ctx := context.Background()
	mailboxKey := fmt.Sprintf("notifications:%s", notification.UserID)

	if err := uc.redisClient.LPush(ctx, mailboxKey, data).Err(); err != nil {
		uc.logger.Warn("Failed to push notification to mailbox: %v", err)
		return
	}
	uc.redisClient.LTrim(ctx, mailboxKey, 0, mailboxSize-1)
	uc.redisClient.Expire(ctx, mailboxKey, mailboxTTL)
}

func (uc *notificationUseCase) GetNotifications(userID string, limit, offset int) ([]*models.Notification, int64, error) {
	return uc.notificationRepo.GetByUserID(userID, limit, offset)
}

func (uc *notificationUseCase) MarkRead(id, userID string) error {
	return uc.notificationRepo.MarkRead(id, userID)
}
