package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"postpilot/pkg/models"
)

// FacebookPublisher posts to a Facebook Page feed via the Graph API.
type FacebookPublisher struct {
	apiURL      string
	pageID      string
	accessToken string
	httpClient  *http.Client
}

func NewFacebookPublisher(apiURL, pageID, accessToken string, httpClient *http.Client) *FacebookPublisher {
	return &FacebookPublisher{
		apiURL:      apiURL,
		pageID:      pageID,
		accessToken: accessToken,
		httpClient:  httpClient,
	}
}

func (p *FacebookPublisher) Platform() models.Platform {
	return models.PlatformFacebook
}

func (p *FacebookPublisher) Publish(ctx context.Context, post *models.Post) error {
	form := url.Values{}
	form.Set("message", post.Content)
	form.Set("access_token", p.accessToken)

	endpoint := fmt.Sprintf("%s/%s/feed", p.apiURL, p.pageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return NewError(ReasonNetworkError, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return NewError(ReasonNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Graph API reports auth problems in the error body, usually with
	// status 400, e.g. code 190 for an expired page token
	var graphErr struct {
		Error struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	reason := classifyStatus(resp.StatusCode)
	if err := json.NewDecoder(resp.Body).Decode(&graphErr); err == nil {
		if graphErr.Error.Code == 190 || graphErr.Error.Code == 102 {
			reason = ReasonAuthError
		}
		if graphErr.Error.Code == 4 || graphErr.Error.Code == 32 {
			reason = ReasonRateLimited
		}
		return NewError(reason, fmt.Errorf("graph api error %d: %s", graphErr.Error.Code, graphErr.Error.Message))
	}
	return NewError(reason, fmt.Errorf("graph api returned status %d", resp.StatusCode))
}
