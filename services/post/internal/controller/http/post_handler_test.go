package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"postpilot/pkg/logger"
	"postpilot/services/post/internal/entity"
	"postpilot/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPostUseCase is a mock implementation of PostUseCase
type MockPostUseCase struct {
	mock.Mock
}

func (m *MockPostUseCase) CreatePost(userID string, input usecase.CreatePostInput) (*entity.Post, error) {
	args := m.Called(userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) GetPost(postID, userID string) (*entity.Post, error) {
	args := m.Called(postID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) ListPosts(userID string, limit, offset int, status string) ([]*entity.Post, error) {
	args := m.Called(userID, limit, offset, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) UpdatePost(postID, userID string, input usecase.UpdatePostInput) (*entity.Post, error) {
	args := m.Called(postID, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) DeletePost(postID, userID string) error {
	args := m.Called(postID, userID)
	return args.Error(0)
}

func (m *MockPostUseCase) SchedulePost(postID, userID string, scheduledAt time.Time) (*entity.Post, error) {
	args := m.Called(postID, userID, scheduledAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) UnschedulePost(postID, userID string) (*entity.Post, error) {
	args := m.Called(postID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) AttachMedia(postID, userID string, file io.Reader, filename, contentType string) (*entity.Post, error) {
	args := m.Called(postID, userID, file, filename, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) AICreatePost(ctx context.Context, userID, authToken string, input usecase.AICreateInput) (*entity.Post, []string, error) {
	args := m.Called(ctx, userID, authToken, input)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var hashtags []string
	if args.Get(1) != nil {
		hashtags = args.Get(1).([]string)
	}
	return args.Get(0).(*entity.Post), hashtags, args.Error(2)
}

func (m *MockPostUseCase) SuggestContent(ctx context.Context, userID, authToken string, count int) ([]string, error) {
	args := m.Called(ctx, userID, authToken, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

var _ usecase.PostUseCase = (*MockPostUseCase)(nil)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func authStub(userID string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		h(c)
	}
}

func TestCreatePost_Draft(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts", authStub("user-123", handler.CreatePost))

	created := &entity.Post{ID: "post-1", UserID: "user-123", Content: "hello world", Status: entity.StatusDraft}
	mockUseCase.On("CreatePost", "user-123", mock.AnythingOfType("usecase.CreatePostInput")).Return(created, nil)

	body, _ := json.Marshal(map[string]interface{}{"content": "hello world"})
	req := httptest.NewRequest(http.MethodPost, "/posts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp entity.Post
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "post-1", resp.ID)
	assert.Equal(t, entity.StatusDraft, resp.Status)
	mockUseCase.AssertExpectations(t)
}

func TestCreatePost_MissingContent(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts", authStub("user-123", handler.CreatePost))

	req := httptest.NewRequest(http.MethodPost, "/posts", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "CreatePost")
}

func TestCreatePost_PastScheduleRejected(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts", authStub("user-123", handler.CreatePost))

	mockUseCase.On("CreatePost", "user-123", mock.AnythingOfType("usecase.CreatePostInput")).
		Return(nil, fmt.Errorf("scheduled_at must be in the future"))

	past := time.Now().Add(-time.Hour)
	body, _ := json.Marshal(map[string]interface{}{
		"content":      "late",
		"status":       "scheduled",
		"scheduled_at": past,
	})
	req := httptest.NewRequest(http.MethodPost, "/posts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPost_NotFound(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts/:id", authStub("user-123", handler.GetPost))

	mockUseCase.On("GetPost", "missing", "user-123").Return(nil, fmt.Errorf("post not found"))

	req := httptest.NewRequest(http.MethodGet, "/posts/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPosts_StatusFilter(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts", authStub("user-123", handler.ListPosts))

	posts := []*entity.Post{
		{ID: "post-1", UserID: "user-123", Status: entity.StatusScheduled},
	}
	mockUseCase.On("ListPosts", "user-123", 20, 0, "scheduled").Return(posts, nil)

	req := httptest.NewRequest(http.MethodGet, "/posts?status=scheduled", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["count"])
	mockUseCase.AssertExpectations(t)
}

func TestUpdatePost_PublishedIsConflict(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.PUT("/posts/:id", authStub("user-123", handler.UpdatePost))

	mockUseCase.On("UpdatePost", "post-1", "user-123", mock.AnythingOfType("usecase.UpdatePostInput")).
		Return(nil, fmt.Errorf("published posts are immutable"))

	body, _ := json.Marshal(map[string]interface{}{"content": "rewritten"})
	req := httptest.NewRequest(http.MethodPut, "/posts/post-1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSchedulePost(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts/:id/schedule", authStub("user-123", handler.SchedulePost))

	at := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)
	scheduled := &entity.Post{ID: "post-1", UserID: "user-123", Status: entity.StatusScheduled, ScheduledAt: &at}
	mockUseCase.On("SchedulePost", "post-1", "user-123", mock.AnythingOfType("time.Time")).Return(scheduled, nil)

	body, _ := json.Marshal(map[string]interface{}{"scheduled_at": at})
	req := httptest.NewRequest(http.MethodPost, "/posts/post-1/schedule", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.Post
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entity.StatusScheduled, resp.Status)
	mockUseCase.AssertExpectations(t)
}

func TestSchedulePost_WrongStateIsConflict(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts/:id/schedule", authStub("user-123", handler.SchedulePost))

	mockUseCase.On("SchedulePost", "post-1", "user-123", mock.AnythingOfType("time.Time")).
		Return(nil, fmt.Errorf("cannot schedule a post with status %q", entity.StatusPublished))

	body, _ := json.Marshal(map[string]interface{}{"scheduled_at": time.Now().Add(time.Hour)})
	req := httptest.NewRequest(http.MethodPost, "/posts/post-1/schedule", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUnschedulePost(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts/:id/unschedule", authStub("user-123", handler.UnschedulePost))

	draft := &entity.Post{ID: "post-1", UserID: "user-123", Status: entity.StatusDraft}
	mockUseCase.On("UnschedulePost", "post-1", "user-123").Return(draft, nil)

	req := httptest.NewRequest(http.MethodPost, "/posts/post-1/unschedule", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.Post
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entity.StatusDraft, resp.Status)
	assert.Nil(t, resp.ScheduledAt)
}

func TestDeletePost(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.DELETE("/posts/:id", authStub("user-123", handler.DeletePost))

	mockUseCase.On("DeletePost", "post-1", "user-123").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/posts/post-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestAICreatePost(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts/ai-create", authStub("user-123", handler.AICreatePost))

	created := &entity.Post{ID: "post-1", UserID: "user-123", Content: "Big launch today\n\n#launch", Status: entity.StatusDraft, AIGenerated: true}
	mockUseCase.On("AICreatePost", mock.Anything, "user-123", "Bearer token", mock.AnythingOfType("usecase.AICreateInput")).
		Return(created, []string{"#launch"}, nil)

	body, _ := json.Marshal(map[string]interface{}{"prompt": "announce the launch"})
	req := httptest.NewRequest(http.MethodPost, "/posts/ai-create", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Post              entity.Post `json:"post"`
		GeneratedHashtags []string    `json:"generated_hashtags"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "post-1", resp.Post.ID)
	assert.True(t, resp.Post.AIGenerated)
	assert.Equal(t, []string{"#launch"}, resp.GeneratedHashtags)
	mockUseCase.AssertExpectations(t)
}

func TestAICreatePost_MissingPrompt(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts/ai-create", authStub("user-123", handler.AICreatePost))

	req := httptest.NewRequest(http.MethodPost, "/posts/ai-create", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "AICreatePost")
}

func TestAICreatePost_UpstreamFailureIsBadGateway(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts/ai-create", authStub("user-123", handler.AICreatePost))

	mockUseCase.On("AICreatePost", mock.Anything, "user-123", "", mock.AnythingOfType("usecase.AICreateInput")).
		Return(nil, nil, fmt.Errorf("failed to generate content: content service returned 503"))

	body, _ := json.Marshal(map[string]interface{}{"prompt": "announce the launch"})
	req := httptest.NewRequest(http.MethodPost, "/posts/ai-create", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSuggestContent(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts/suggest", authStub("user-123", handler.SuggestContent))

	mockUseCase.On("SuggestContent", mock.Anything, "user-123", "", 5).
		Return([]string{"idea one", "idea two"}, nil)

	body, _ := json.Marshal(map[string]interface{}{"count": 5})
	req := httptest.NewRequest(http.MethodPost, "/posts/suggest", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "idea one")
	mockUseCase.AssertExpectations(t)
}

func TestSuggestContent_EmptyBodyAllowed(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts/suggest", authStub("user-123", handler.SuggestContent))

	mockUseCase.On("SuggestContent", mock.Anything, "user-123", "", 0).
		Return([]string{"idea one"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/posts/suggest", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}
