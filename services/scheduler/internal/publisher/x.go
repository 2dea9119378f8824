package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"postpilot/pkg/models"
)

// XPublisher posts to the X API v2 create-tweet endpoint.
type XPublisher struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewXPublisher(baseURL, accessToken string, httpClient *http.Client) *XPublisher {
	return &XPublisher{baseURL: baseURL, accessToken: accessToken, httpClient: httpClient}
}

func (p *XPublisher) Platform() models.Platform {
	return models.PlatformX
}

func (p *XPublisher) Publish(ctx context.Context, post *models.Post) error {
	body, err := json.Marshal(map[string]string{"text": post.Content})
	if err != nil {
		return NewError(ReasonPlatformRejected, fmt.Errorf("failed to encode tweet: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return NewError(ReasonNetworkError, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return NewError(ReasonNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return NewError(classifyStatus(resp.StatusCode), fmt.Errorf("x api returned status %d: %s", resp.StatusCode, string(respBody)))
}
