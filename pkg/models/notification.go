package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationPostPublished NotificationType = "post_published"
	NotificationPostFailed    NotificationType = "post_failed"
)

type Notification struct {
	ID        string           `gorm:"type:uuid;primary_key" json:"id"`
	UserID    string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	PostID    string           `gorm:"type:uuid;not null" json:"post_id"`
	Reason    string           `gorm:"type:varchar(50)" json:"reason,omitempty"`
	IsRead    bool             `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
