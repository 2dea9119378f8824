package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"postpilot/pkg/models"
)

// FeedPublisher delivers generic-feed posts to a configured webhook. The
// webhook receives the post content as-is; hashtags and media links are
// already embedded by the authoring flow.
type FeedPublisher struct {
	webhookURL string
	httpClient *http.Client
}

func NewFeedPublisher(webhookURL string, httpClient *http.Client) *FeedPublisher {
	return &FeedPublisher{webhookURL: webhookURL, httpClient: httpClient}
}

func (p *FeedPublisher) Platform() models.Platform {
	return models.PlatformGeneral
}

func (p *FeedPublisher) Publish(ctx context.Context, post *models.Post) error {
	payload := map[string]interface{}{
		"post_id": post.ID,
		"account": post.PlatformAccount,
		"content": post.Content,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return NewError(ReasonPlatformRejected, fmt.Errorf("failed to encode payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(body))
	if err != nil {
		return NewError(ReasonNetworkError, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return NewError(ReasonNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return NewError(classifyStatus(resp.StatusCode), fmt.Errorf("feed webhook returned status %d", resp.StatusCode))
}
