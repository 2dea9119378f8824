package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostModel struct {
	ID              string         `gorm:"type:uuid;primary_key" json:"id"`
	UserID          string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Content         string         `gorm:"type:text;not null" json:"content"`
	Platform        string         `gorm:"type:varchar(50);not null;default:'general'" json:"platform"`
	PlatformAccount string         `gorm:"type:varchar(100)" json:"platform_account"`
	Status          string         `gorm:"type:varchar(20);default:'draft'" json:"status"`
	ScheduledAt     *time.Time     `json:"scheduled_at"`
	PublishedAt     *time.Time     `json:"published_at"`
	ClaimedAt       *time.Time     `json:"-"`
	FailureReason   string         `gorm:"type:varchar(50)" json:"failure_reason"`
	Attempts        int            `gorm:"default:0" json:"attempts"`
	AIGenerated     bool           `gorm:"default:false" json:"ai_generated"`
	AIPrompt        string         `gorm:"type:text" json:"ai_prompt"`
	MediaURLs       string         `gorm:"type:text" json:"media_urls"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// Same table the scheduler operates on.
func (PostModel) TableName() string {
	return "posts"
}

func (p *PostModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
