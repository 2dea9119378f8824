package publisher

import (
	"fmt"
	"net/http"

	"postpilot/pkg/config"
	"postpilot/pkg/models"
)

// Registry resolves a post's target platform to its publisher variant. It is
// populated once at startup and read-only afterwards.
type Registry struct {
	publishers map[models.Platform]Publisher
}

func NewRegistry() *Registry {
	return &Registry{publishers: make(map[models.Platform]Publisher)}
}

func (r *Registry) Register(p Publisher) {
	r.publishers[p.Platform()] = p
}

func (r *Registry) Resolve(platform models.Platform) (Publisher, bool) {
	p, ok := r.publishers[platform]
	return p, ok
}

func (r *Registry) Platforms() []models.Platform {
	platforms := make([]models.Platform, 0, len(r.publishers))
	for p := range r.publishers {
		platforms = append(platforms, p)
	}
	return platforms
}

// FromConfig builds a registry with one publisher per enabled platform.
// Credentials are validated before any publisher is constructed, so a
// misconfigured platform is a boot failure rather than a per-post one.
func FromConfig(cfg *config.Config, httpClient *http.Client) (*Registry, error) {
	if err := cfg.ValidatePlatforms(); err != nil {
		return nil, fmt.Errorf("publisher configuration: %w", err)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	registry := NewRegistry()
	for _, platform := range cfg.EnabledPlatforms {
		switch models.Platform(platform) {
		case models.PlatformGeneral:
			registry.Register(NewFeedPublisher(cfg.FeedWebhookURL, httpClient))
		case models.PlatformX:
			registry.Register(NewXPublisher(cfg.XAPIBaseURL, cfg.XAccessToken, httpClient))
		case models.PlatformFacebook:
			registry.Register(NewFacebookPublisher(cfg.FacebookAPIURL, cfg.FacebookPageID, cfg.FacebookPageToken, httpClient))
		}
	}
	return registry, nil
}
