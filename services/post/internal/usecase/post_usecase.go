package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"postpilot/pkg/logger"
	"postpilot/pkg/s3"
	"postpilot/services/post/internal/entity"
	"postpilot/services/post/internal/repo/persistent"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CreatePostInput struct {
	Content         string
	Platform        string
	PlatformAccount string
	Status          string
	ScheduledAt     *time.Time
	AIGenerated     bool
	AIPrompt        string
	MediaURLs       []string
}

type UpdatePostInput struct {
	Content         *string
	Platform        *string
	PlatformAccount *string
	ScheduledAt     *time.Time
	MediaURLs       []string
}

type AICreateInput struct {
	Prompt          string
	Platform        string
	PlatformAccount string
	Status          string
	ScheduledAt     *time.Time
	Tone            string
	MaxLength       int
	IncludeHashtags *bool
	HashtagCount    int
	MediaURLs       []string
}

type PostUseCase interface {
	CreatePost(userID string, input CreatePostInput) (*entity.Post, error)
	GetPost(postID, userID string) (*entity.Post, error)
	ListPosts(userID string, limit, offset int, status string) ([]*entity.Post, error)
	UpdatePost(postID, userID string, input UpdatePostInput) (*entity.Post, error)
	DeletePost(postID, userID string) error
	SchedulePost(postID, userID string, scheduledAt time.Time) (*entity.Post, error)
	UnschedulePost(postID, userID string) (*entity.Post, error)
	AttachMedia(postID, userID string, file io.Reader, filename, contentType string) (*entity.Post, error)
	AICreatePost(ctx context.Context, userID, authToken string, input AICreateInput) (*entity.Post, []string, error)
	SuggestContent(ctx context.Context, userID, authToken string, count int) ([]string, error)
}

type postUseCase struct {
	postRepo       persistent.PostRepository
	s3Client       *s3.Client
	redisClient    *redis.Client
	contentGateway ContentGateway
	logger         *logger.Logger
}

func NewPostUseCase(
	postRepo persistent.PostRepository,
	s3Client *s3.Client,
	redisClient *redis.Client,
	contentGateway ContentGateway,
	logger *logger.Logger,
) PostUseCase {
	return &postUseCase{
		postRepo:       postRepo,
		s3Client:       s3Client,
		redisClient:    redisClient,
		contentGateway: contentGateway,
		logger:         logger,
	}
}

func (uc *postUseCase) CreatePost(userID string, input CreatePostInput) (*entity.Post, error) {
	if input.Content == "" {
		return nil, fmt.Errorf("content is required")
	}

	platform := entity.Platform(input.Platform)
	if platform == "" {
		platform = entity.PlatformGeneral
	}
	if !entity.ValidPlatform(platform) {
		return nil, fmt.Errorf("unsupported platform %q", input.Platform)
	}

	status := entity.PostStatus(input.Status)
	if status == "" {
		status = entity.StatusDraft
	}
	// Authors choose the initial state; everything else belongs to the scheduler
	if status != entity.StatusDraft && status != entity.StatusScheduled {
		return nil, fmt.Errorf("a post can only be created as draft or scheduled")
	}
	if status == entity.StatusScheduled {
		if input.ScheduledAt == nil {
			return nil, fmt.Errorf("scheduled posts require a scheduled_at time")
		}
		if !input.ScheduledAt.After(time.Now()) {
			return nil, fmt.Errorf("scheduled_at must be in the future")
		}
	}

	post := &entity.Post{
		UserID:          userID,
		Content:         input.Content,
		Platform:        platform,
		PlatformAccount: input.PlatformAccount,
		Status:          status,
		ScheduledAt:     input.ScheduledAt,
		AIGenerated:     input.AIGenerated,
		AIPrompt:        input.AIPrompt,
		MediaURLs:       input.MediaURLs,
	}

	if err := uc.postRepo.Create(post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	uc.cachePost(post)
	return post, nil
}

func (uc *postUseCase) GetPost(postID, userID string) (*entity.Post, error) {
	post, err := uc.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, fmt.Errorf("post not found")
	}
	return post, nil
}

func (uc *postUseCase) ListPosts(userID string, limit, offset int, status string) ([]*entity.Post, error) {
	return uc.postRepo.GetByUserID(userID, limit, offset, entity.PostStatus(status))
}

func (uc *postUseCase) UpdatePost(postID, userID string, input UpdatePostInput) (*entity.Post, error) {
	post, err := uc.GetPost(postID, userID)
	if err != nil {
		return nil, err
	}

	if post.Status == entity.StatusPublished {
		return nil, fmt.Errorf("published posts are immutable")
	}
	if post.Status == entity.StatusPublishing {
		return nil, fmt.Errorf("post is currently being published")
	}
	readStatus := post.Status

	if input.Content != nil {
		post.Content = *input.Content
	}
	if input.Platform != nil {
		platform := entity.Platform(*input.Platform)
		if !entity.ValidPlatform(platform) {
			return nil, fmt.Errorf("unsupported platform %q", *input.Platform)
		}
		post.Platform = platform
	}
	if input.PlatformAccount != nil {
		post.PlatformAccount = *input.PlatformAccount
	}
	if input.ScheduledAt != nil {
		if post.Status == entity.StatusScheduled && !input.ScheduledAt.After(time.Now()) {
			return nil, fmt.Errorf("scheduled_at must be in the future")
		}
		post.ScheduledAt = input.ScheduledAt
	}
	if input.MediaURLs != nil {
		post.MediaURLs = input.MediaURLs
	}

	if err := uc.postRepo.Update(post, readStatus); err != nil {
		if errors.Is(err, persistent.ErrStatusConflict) {
			return nil, fmt.Errorf("post is currently being published")
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	uc.cachePost(post)
	return post, nil
}

func (uc *postUseCase) DeletePost(postID, userID string) error {
	post, err := uc.GetPost(postID, userID)
	if err != nil {
		return err
	}

	if post.Status == entity.StatusPublishing {
		return fmt.Errorf("post is currently being published")
	}

	if err := uc.postRepo.Delete(postID, post.Status); err != nil {
		if errors.Is(err, persistent.ErrStatusConflict) {
			return fmt.Errorf("post is currently being published")
		}
		return err
	}

	uc.dropCachedPost(postID)
	return nil
}

// SchedulePost moves a draft or failed post into the scheduled state. This is
// the only way a failed post re-enters the publish pipeline; the scheduler
// itself never resurrects failures.
func (uc *postUseCase) SchedulePost(postID, userID string, scheduledAt time.Time) (*entity.Post, error) {
	post, err := uc.GetPost(postID, userID)
	if err != nil {
		return nil, err
	}

	switch post.Status {
	case entity.StatusDraft, entity.StatusFailed, entity.StatusScheduled:
	default:
		return nil, fmt.Errorf("cannot schedule a post with status %q", post.Status)
	}
	readStatus := post.Status

	if !scheduledAt.After(time.Now()) {
		return nil, fmt.Errorf("scheduled_at must be in the future")
	}

	post.Status = entity.StatusScheduled
	post.ScheduledAt = &scheduledAt
	post.FailureReason = ""
	post.Attempts = 0

	if err := uc.postRepo.Update(post, readStatus); err != nil {
		if errors.Is(err, persistent.ErrStatusConflict) {
			return nil, fmt.Errorf("post is currently being published")
		}
		return nil, fmt.Errorf("failed to schedule post: %w", err)
	}

	uc.cachePost(post)
	return post, nil
}

func (uc *postUseCase) UnschedulePost(postID, userID string) (*entity.Post, error) {
	post, err := uc.GetPost(postID, userID)
	if err != nil {
		return nil, err
	}

	if post.Status != entity.StatusScheduled {
		return nil, fmt.Errorf("only scheduled posts can be unscheduled")
	}

	post.Status = entity.StatusDraft
	post.ScheduledAt = nil

	if err := uc.postRepo.Update(post, entity.StatusScheduled); err != nil {
		if errors.Is(err, persistent.ErrStatusConflict) {
			return nil, fmt.Errorf("post is currently being published")
		}
		return nil, fmt.Errorf("failed to unschedule post: %w", err)
	}

	uc.cachePost(post)
	return post, nil
}

func (uc *postUseCase) AttachMedia(postID, userID string, file io.Reader, filename, contentType string) (*entity.Post, error) {
	post, err := uc.GetPost(postID, userID)
	if err != nil {
		return nil, err
	}

	if post.Status == entity.StatusPublished {
		return nil, fmt.Errorf("published posts are immutable")
	}

	fileKey := fmt.Sprintf("posts/%s/%s%s", userID, uuid.New().String(), getFileExtension(filename))
	if contentType == "" {
		contentType = "image/jpeg"
	}

	mediaURL, err := uc.s3Client.UploadFile(fileKey, file, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}

	post.MediaURLs = append(post.MediaURLs, mediaURL)
	if err := uc.postRepo.Update(post, post.Status); err != nil {
		if errors.Is(err, persistent.ErrStatusConflict) {
			return nil, fmt.Errorf("post is currently being published")
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	uc.cachePost(post)
	return post, nil
}

// recentPostsForSuggestions bounds how much history is sent to the content
// service when asking for new post ideas.
const recentPostsForSuggestions = 10

// AICreatePost generates a complete post through the content service and
// saves it in one shot. Hashtag generation is best effort; the generated
// content is worth saving even when the hashtag call fails.
func (uc *postUseCase) AICreatePost(ctx context.Context, userID, authToken string, input AICreateInput) (*entity.Post, []string, error) {
	if input.Prompt == "" {
		return nil, nil, fmt.Errorf("prompt is required")
	}
	if uc.contentGateway == nil {
		return nil, nil, fmt.Errorf("content generation is not available")
	}

	content, err := uc.contentGateway.GeneratePost(ctx, authToken, input.Prompt, input.Platform, input.Tone, input.MaxLength)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate content: %w", err)
	}

	var hashtags []string
	if input.IncludeHashtags == nil || *input.IncludeHashtags {
		count := input.HashtagCount
		if count <= 0 {
			count = 3
		}
		hashtags, err = uc.contentGateway.GenerateHashtags(ctx, authToken, content, input.Platform, count)
		if err != nil {
			uc.logger.Warn("Hashtag generation failed, saving post without hashtags: %v", err)
			hashtags = nil
		}
	}
	if len(hashtags) > 0 {
		content += "\n\n" + strings.Join(hashtags, " ")
	}

	post, err := uc.CreatePost(userID, CreatePostInput{
		Content:         content,
		Platform:        input.Platform,
		PlatformAccount: input.PlatformAccount,
		Status:          input.Status,
		ScheduledAt:     input.ScheduledAt,
		AIGenerated:     true,
		AIPrompt:        input.Prompt,
		MediaURLs:       input.MediaURLs,
	})
	if err != nil {
		return nil, nil, err
	}
	return post, hashtags, nil
}

// SuggestContent asks the content service for new post ideas based on the
// user's latest posts.
func (uc *postUseCase) SuggestContent(ctx context.Context, userID, authToken string, count int) ([]string, error) {
	if uc.contentGateway == nil {
		return nil, fmt.Errorf("content generation is not available")
	}
	if count <= 0 {
		count = 3
	}

	recent, err := uc.postRepo.GetByUserID(userID, recentPostsForSuggestions, 0, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load recent posts: %w", err)
	}
	previous := make([]string, 0, len(recent))
	for _, p := range recent {
		previous = append(previous, p.Content)
	}

	suggestions, err := uc.contentGateway.SuggestContent(ctx, authToken, previous, count)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest content: %w", err)
	}
	return suggestions, nil
}

func (uc *postUseCase) cachePost(post *entity.Post) {
	if uc.redisClient == nil {
		return
	}
	ctx := context.Background()
	postKey := fmt.Sprintf("post:%s", post.ID)

	postJSON, err := json.Marshal(post)
	if err != nil {
		return
	}
	uc.redisClient.Set(ctx, postKey, postJSON, 24*time.Hour)
}

func (uc *postUseCase) dropCachedPost(postID string) {
	if uc.redisClient == nil {
		return
	}
	uc.redisClient.Del(context.Background(), fmt.Sprintf("post:%s", postID))
}

func getFileExtension(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[i:]
		}
	}
	return ""
}
