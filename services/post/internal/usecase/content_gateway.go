package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ContentGateway is the post service's client for the content service. The
// caller's bearer token is forwarded so the content service applies its own
// auth and rate limits to the same user.
type ContentGateway interface {
	GeneratePost(ctx context.Context, authToken, prompt, platform, tone string, maxLength int) (string, error)
	GenerateHashtags(ctx context.Context, authToken, content, platform string, count int) ([]string, error)
	SuggestContent(ctx context.Context, authToken string, recentPosts []string, count int) ([]string, error)
}

type contentGateway struct {
	baseURL    string
	httpClient *http.Client
}

func NewContentGateway(baseURL string) ContentGateway {
	return &contentGateway{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *contentGateway) GeneratePost(ctx context.Context, authToken, prompt, platform, tone string, maxLength int) (string, error) {
	payload := map[string]interface{}{
		"prompt":     prompt,
		"platform":   platform,
		"tone":       tone,
		"max_length": maxLength,
	}
	var result struct {
		Content string `json:"content"`
	}
	if err := g.post(ctx, authToken, "/api/v1/content/generate", payload, &result); err != nil {
		return "", err
	}
	return result.Content, nil
}

func (g *contentGateway) GenerateHashtags(ctx context.Context, authToken, content, platform string, count int) ([]string, error) {
	payload := map[string]interface{}{
		"content":  content,
		"platform": platform,
		"count":    count,
	}
	var result struct {
		Hashtags []string `json:"hashtags"`
	}
	if err := g.post(ctx, authToken, "/api/v1/content/hashtags", payload, &result); err != nil {
		return nil, err
	}
	return result.Hashtags, nil
}

func (g *contentGateway) SuggestContent(ctx context.Context, authToken string, recentPosts []string, count int) ([]string, error) {
	payload := map[string]interface{}{
		"recent_posts": recentPosts,
		"count":        count,
	}
	var result struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := g.post(ctx, authToken, "/api/v1/content/suggest", payload, &result); err != nil {
		return nil, err
	}
	return result.Suggestions, nil
}

func (g *contentGateway) post(ctx context.Context, authToken, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", authToken)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("content service returned %d: %s", resp.StatusCode, string(respBody))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
