package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// PlaceholderURL is returned when a search yields no result.
const PlaceholderURL = "https://via.placeholder.com/600x400.png?text=No+image+found"

type Image struct {
	URL         string `json:"url"`
	Description string `json:"description"`
	Author      string `json:"author"`
	AuthorURL   string `json:"author_url"`
}

// Searcher finds a stock image for a query. Satisfied by Client and test fakes.
type Searcher interface {
	Search(ctx context.Context, query string) (*Image, error)
}

// Client wraps the Unsplash photo search endpoint.
type Client struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client
}

func NewClient(baseURL, accessKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		accessKey:  accessKey,
		httpClient: httpClient,
	}
}

func (c *Client) Configured() bool {
	return c.accessKey != ""
}

type searchResponse struct {
	Results []struct {
		Description    string `json:"description"`
		AltDescription string `json:"alt_description"`
		URLs           struct {
			Regular string `json:"regular"`
		} `json:"urls"`
		User struct {
			Name  string `json:"name"`
			Links struct {
				HTML string `json:"html"`
			} `json:"links"`
		} `json:"user"`
	} `json:"results"`
}

// Search returns the first matching photo, or a placeholder image when the
// query matches nothing.
func (c *Client) Search(ctx context.Context, query string) (*Image, error) {
	if c.accessKey == "" {
		return nil, fmt.Errorf("unsplash access key is not configured")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("client_id", c.accessKey)
	params.Set("per_page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unsplash request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unsplash returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unsplash returned invalid response: %w", err)
	}

	if len(parsed.Results) == 0 {
		return &Image{URL: PlaceholderURL}, nil
	}

	first := parsed.Results[0]
	description := first.Description
	if description == "" {
		description = first.AltDescription
	}

	return &Image{
		URL:         first.URLs.Regular,
		Description: description,
		Author:      first.User.Name,
		AuthorURL:   first.User.Links.HTML,
	}, nil
}
