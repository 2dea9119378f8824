package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"postpilot/pkg/logger"
	"postpilot/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

type CreatePostRequest struct {
	Content         string     `json:"content" binding:"required"`
	Platform        string     `json:"platform"`
	PlatformAccount string     `json:"platform_account"`
	Status          string     `json:"status"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	AIGenerated     bool       `json:"ai_generated"`
	AIPrompt        string     `json:"ai_prompt"`
	MediaURLs       []string   `json:"media_urls"`
}

// CreatePost godoc
// @Summary      Create a new post
// @Description  Create a post as a draft, or schedule it for deferred publication by passing status=scheduled and a future scheduled_at.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreatePostRequest true "Post data"
// @Success      201  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postUseCase.CreatePost(userID, usecase.CreatePostInput{
		Content:         req.Content,
		Platform:        req.Platform,
		PlatformAccount: req.PlatformAccount,
		Status:          req.Status,
		ScheduledAt:     req.ScheduledAt,
		AIGenerated:     req.AIGenerated,
		AIPrompt:        req.AIPrompt,
		MediaURLs:       req.MediaURLs,
	})
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to create post: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

type AICreatePostRequest struct {
	Prompt          string     `json:"prompt" binding:"required"`
	Platform        string     `json:"platform"`
	PlatformAccount string     `json:"platform_account"`
	Status          string     `json:"status"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	Tone            string     `json:"tone"`
	MaxLength       int        `json:"max_length"`
	IncludeHashtags *bool      `json:"include_hashtags"`
	HashtagCount    int        `json:"hashtag_count"`
	MediaURLs       []string   `json:"media_urls"`
}

// AICreatePost godoc
// @Summary      Create a post with AI
// @Description  Generate post content (and optionally hashtags) from a prompt via the content service and save the result in one call.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AICreatePostRequest true "Generation parameters"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /posts/ai-create [post]
func (h *PostHandler) AICreatePost(c *gin.Context) {
	userID := c.GetString("user_id")

	var req AICreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, hashtags, err := h.postUseCase.AICreatePost(c.Request.Context(), userID, c.GetHeader("Authorization"), usecase.AICreateInput{
		Prompt:          req.Prompt,
		Platform:        req.Platform,
		PlatformAccount: req.PlatformAccount,
		Status:          req.Status,
		ScheduledAt:     req.ScheduledAt,
		Tone:            req.Tone,
		MaxLength:       req.MaxLength,
		IncludeHashtags: req.IncludeHashtags,
		HashtagCount:    req.HashtagCount,
		MediaURLs:       req.MediaURLs,
	})
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to create post with AI: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate post content"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post, "generated_hashtags": hashtags})
}

type SuggestContentRequest struct {
	Count int `json:"count"`
}

// SuggestContent godoc
// @Summary      Suggest post ideas
// @Description  Suggest new post ideas based on the authenticated user's latest posts.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SuggestContentRequest false "Suggestion parameters"
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]string
// @Router       /posts/suggest [post]
func (h *PostHandler) SuggestContent(c *gin.Context) {
	userID := c.GetString("user_id")

	var req SuggestContentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	suggestions, err := h.postUseCase.SuggestContent(c.Request.Context(), userID, c.GetHeader("Authorization"), req.Count)
	if err != nil {
		h.logger.Error("Failed to suggest content: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to suggest content"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions, "count": len(suggestions)})
}

// GetPost godoc
// @Summary      Get post by ID
// @Description  Get post details by ID. Only the author can read their own posts.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  entity.Post
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	postID := c.Param("id")
	userID := c.GetString("user_id")

	post, err := h.postUseCase.GetPost(postID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// ListPosts godoc
// @Summary      List posts
// @Description  Get the authenticated user's posts with optional status filter
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Filter by status" Enums(draft, scheduled, publishing, published, failed)
// @Param        limit query int false "Number of posts to return (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	userID := c.GetString("user_id")
	status := c.Query("status")
	limit := 20
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	posts, err := h.postUseCase.ListPosts(userID, limit, offset, status)
	if err != nil {
		h.logger.Error("Failed to list posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts), "offset": offset})
}

// UpdatePost godoc
// @Summary      Update post
// @Description  Update post details. Published posts are immutable.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body object true "Update data" SchemaExample({"content":"Updated content","platform":"x"})
// @Success      200  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /posts/{id} [put]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID := c.Param("id")
	userID := c.GetString("user_id")

	var req struct {
		Content         *string    `json:"content"`
		Platform        *string    `json:"platform"`
		PlatformAccount *string    `json:"platform_account"`
		ScheduledAt     *time.Time `json:"scheduled_at"`
		MediaURLs       []string   `json:"media_urls"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postUseCase.UpdatePost(postID, userID, usecase.UpdatePostInput{
		Content:         req.Content,
		Platform:        req.Platform,
		PlatformAccount: req.PlatformAccount,
		ScheduledAt:     req.ScheduledAt,
		MediaURLs:       req.MediaURLs,
	})
	if err != nil {
		h.respondMutationError(c, err, "Failed to update post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary      Delete post
// @Description  Delete a post. Posts that are currently being published cannot be deleted.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID := c.Param("id")
	userID := c.GetString("user_id")

	if err := h.postUseCase.DeletePost(postID, userID); err != nil {
		h.respondMutationError(c, err, "Failed to delete post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

type SchedulePostRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

// SchedulePost godoc
// @Summary      Schedule a post
// @Description  Schedule a draft or failed post for deferred publication. Rescheduling a failed post resets its retry counter.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body SchedulePostRequest true "Publication time (must be in the future)"
// @Success      200  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /posts/{id}/schedule [post]
func (h *PostHandler) SchedulePost(c *gin.Context) {
	postID := c.Param("id")
	userID := c.GetString("user_id")

	var req SchedulePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postUseCase.SchedulePost(postID, userID, req.ScheduledAt)
	if err != nil {
		h.respondMutationError(c, err, "Failed to schedule post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// UnschedulePost godoc
// @Summary      Unschedule a post
// @Description  Move a scheduled post back to draft so the scheduler no longer picks it up.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  entity.Post
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /posts/{id}/unschedule [post]
func (h *PostHandler) UnschedulePost(c *gin.Context) {
	postID := c.Param("id")
	userID := c.GetString("user_id")

	post, err := h.postUseCase.UnschedulePost(postID, userID)
	if err != nil {
		h.respondMutationError(c, err, "Failed to unschedule post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// AttachMedia godoc
// @Summary      Attach media to a post
// @Description  Upload an image and append its URL to the post's media list
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        media formData file true "Image file (jpg/jpeg/png)"
// @Success      200  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /posts/{id}/media [post]
func (h *PostHandler) AttachMedia(c *gin.Context) {
	postID := c.Param("id")
	userID := c.GetString("user_id")

	fileHeader, err := c.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Media file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read media file"})
		return
	}
	defer file.Close()

	post, err := h.postUseCase.AttachMedia(postID, userID, file, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.respondMutationError(c, err, "Failed to attach media")
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) respondMutationError(c *gin.Context, err error, fallback string) {
	msg := err.Error()
	switch {
	case msg == "post not found" || strings.Contains(msg, "record not found"):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
	case strings.Contains(msg, "immutable") || strings.Contains(msg, "currently being published") ||
		strings.Contains(msg, "cannot schedule") || strings.Contains(msg, "can be unscheduled"):
		c.JSON(http.StatusConflict, gin.H{"error": msg})
	case isValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
	default:
		h.logger.Error("%s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func isValidationError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "required") ||
		strings.Contains(msg, "must be in the future") ||
		strings.Contains(msg, "unsupported platform") ||
		strings.Contains(msg, "draft or scheduled")
}
