package persistent

import (
	"encoding/json"

	"postpilot/services/post/internal/entity"
	"postpilot/services/post/internal/model"
)

func ToPostEntity(m *model.PostModel) *entity.Post {
	if m == nil {
		return nil
	}

	post := &entity.Post{
		ID:              m.ID,
		UserID:          m.UserID,
		Content:         m.Content,
		Platform:        entity.Platform(m.Platform),
		PlatformAccount: m.PlatformAccount,
		Status:          entity.PostStatus(m.Status),
		ScheduledAt:     m.ScheduledAt,
		PublishedAt:     m.PublishedAt,
		FailureReason:   m.FailureReason,
		Attempts:        m.Attempts,
		AIGenerated:     m.AIGenerated,
		AIPrompt:        m.AIPrompt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}

	if m.MediaURLs != "" {
		var urls []string
		if err := json.Unmarshal([]byte(m.MediaURLs), &urls); err == nil {
			post.MediaURLs = urls
		}
	}

	return post
}

func ToPostModel(e *entity.Post) *model.PostModel {
	if e == nil {
		return nil
	}

	post := &model.PostModel{
		ID:              e.ID,
		UserID:          e.UserID,
		Content:         e.Content,
		Platform:        string(e.Platform),
		PlatformAccount: e.PlatformAccount,
		Status:          string(e.Status),
		ScheduledAt:     e.ScheduledAt,
		PublishedAt:     e.PublishedAt,
		FailureReason:   e.FailureReason,
		Attempts:        e.Attempts,
		AIGenerated:     e.AIGenerated,
		AIPrompt:        e.AIPrompt,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}

	if len(e.MediaURLs) > 0 {
		if urlsJSON, err := json.Marshal(e.MediaURLs); err == nil {
			post.MediaURLs = string(urlsJSON)
		}
	}

	return post
}
