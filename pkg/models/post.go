package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Platform string

const (
	PlatformGeneral  Platform = "general"
	PlatformX        Platform = "x"
	PlatformFacebook Platform = "facebook"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusScheduled PostStatus = "scheduled"
	// StatusPublishing marks a post claimed by a scheduler worker. It is an
	// internal state: a post never rests here longer than the claim grace
	// window before the watchdog reverts it to scheduled.
	StatusPublishing PostStatus = "publishing"
	StatusPublished  PostStatus = "published"
	StatusFailed     PostStatus = "failed"
)

type Post struct {
	ID              string         `gorm:"type:uuid;primary_key" json:"id"`
	UserID          string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Content         string         `gorm:"type:text;not null" json:"content"`
	Platform        Platform       `gorm:"type:varchar(50);not null;default:'general'" json:"platform"`
	PlatformAccount string         `gorm:"type:varchar(100)" json:"platform_account"`
	Status          PostStatus     `gorm:"type:varchar(20);default:'draft';index:idx_posts_due,priority:1" json:"status"`
	ScheduledAt     *time.Time     `gorm:"index:idx_posts_due,priority:2" json:"scheduled_at"`
	PublishedAt     *time.Time     `json:"published_at"`
	ClaimedAt       *time.Time     `json:"-"`
	FailureReason   string         `gorm:"type:varchar(50)" json:"failure_reason,omitempty"`
	Attempts        int            `gorm:"default:0" json:"attempts"`
	AIGenerated     bool           `gorm:"default:false" json:"ai_generated"`
	AIPrompt        string         `gorm:"type:text" json:"ai_prompt,omitempty"`
	MediaURLs       string         `gorm:"type:text" json:"media_urls,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
