package entity

import "time"

type Platform string

const (
	PlatformGeneral  Platform = "general"
	PlatformX        Platform = "x"
	PlatformFacebook Platform = "facebook"
)

func ValidPlatform(p Platform) bool {
	switch p {
	case PlatformGeneral, PlatformX, PlatformFacebook:
		return true
	}
	return false
}

type PostStatus string

const (
	StatusDraft      PostStatus = "draft"
	StatusScheduled  PostStatus = "scheduled"
	StatusPublishing PostStatus = "publishing"
	StatusPublished  PostStatus = "published"
	StatusFailed     PostStatus = "failed"
)

type Post struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Content         string     `json:"content"`
	Platform        Platform   `json:"platform"`
	PlatformAccount string     `json:"platform_account,omitempty"`
	Status          PostStatus `json:"status"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	FailureReason   string     `json:"failure_reason,omitempty"`
	Attempts        int        `json:"attempts"`
	AIGenerated     bool       `json:"ai_generated"`
	AIPrompt        string     `json:"ai_prompt,omitempty"`
	MediaURLs       []string   `json:"media_urls,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
