package usecase

import (
	"fmt"
	"testing"

	"postpilot/pkg/logger"
	"postpilot/pkg/models"
	"postpilot/pkg/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockNotificationRepository is a mock implementation of persistent.NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(notification *models.Notification) error {
	args := m.Called(notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByUserID(userID string, limit, offset int) ([]*models.Notification, int64, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) MarkRead(id, userID string) error {
	args := m.Called(id, userID)
	return args.Error(0)
}

func TestHandlePostEvent_Published(t *testing.T) {
	repo := new(MockNotificationRepository)
	uc := NewNotificationUseCase(repo, nil, logger.New())

	repo.On("Create", mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == "user-1" &&
			n.PostID == "post-1" &&
			n.Type == models.NotificationPostPublished &&
			n.Reason == ""
	})).Return(nil)

	err := uc.HandlePostEvent(queue.RoutingKeyPostPublished, map[string]interface{}{
		"user_id": "user-1",
		"post_id": "post-1",
	})
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestHandlePostEvent_FailedCarriesReason(t *testing.T) {
	repo := new(MockNotificationRepository)
	uc := NewNotificationUseCase(repo, nil, logger.New())

	repo.On("Create", mock.MatchedBy(func(n *models.Notification) bool {
		return n.Type == models.NotificationPostFailed && n.Reason == "auth_error"
	})).Return(nil)

	err := uc.HandlePostEvent(queue.RoutingKeyPostFailed, map[string]interface{}{
		"user_id": "user-1",
		"post_id": "post-1",
		"reason":  "auth_error",
	})
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestHandlePostEvent_MalformedEventIsDropped(t *testing.T) {
	repo := new(MockNotificationRepository)
	uc := NewNotificationUseCase(repo, nil, logger.New())

	// No error: a malformed event must be acked, not redelivered forever
	err := uc.HandlePostEvent(queue.RoutingKeyPostPublished, map[string]interface{}{"post_id": "post-1"})
	assert.NoError(t, err)
	repo.AssertNotCalled(t, "Create")
}

func TestHandlePostEvent_UnknownRoutingKeyIsDropped(t *testing.T) {
	repo := new(MockNotificationRepository)
	uc := NewNotificationUseCase(repo, nil, logger.New())

	err := uc.HandlePostEvent("post.liked", map[string]interface{}{
		"user_id": "user-1",
		"post_id": "post-1",
	})
	assert.NoError(t, err)
	repo.AssertNotCalled(t, "Create")
}

func TestHandlePostEvent_StoreErrorNacks(t *testing.T) {
	repo := new(MockNotificationRepository)
	uc := NewNotificationUseCase(repo, nil, logger.New())

	repo.On("Create", mock.AnythingOfType("*models.Notification")).Return(fmt.Errorf("db down"))

	err := uc.HandlePostEvent(queue.RoutingKeyPostPublished, map[string]interface{}{
		"user_id": "user-1",
		"post_id": "post-1",
	})
	assert.Error(t, err)
}

func TestGetNotifications(t *testing.T) {
	repo := new(MockNotificationRepository)
	uc := NewNotificationUseCase(repo, nil, logger.New())

	stored := []*models.Notification{
		{ID: "n-1", UserID: "user-1", Type: models.NotificationPostPublished, PostID: "post-1"},
	}
	repo.On("GetByUserID", "user-1", 20, 0).Return(stored, int64(1), nil)

	notifications, total, err := uc.GetNotifications("user-1", 20, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, notifications, 1)
}
