package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"postpilot/pkg/logger"
	"postpilot/services/images/internal/unsplash"

	"github.com/redis/go-redis/v9"
)

const cacheTTL = 24 * time.Hour

type ImagesUseCase interface {
	SearchImage(ctx context.Context, query string) (*unsplash.Image, error)
}

type imagesUseCase struct {
	searcher    unsplash.Searcher
	redisClient *redis.Client
	logger      *logger.Logger
}

func NewImagesUseCase(searcher unsplash.Searcher, redisClient *redis.Client, logger *logger.Logger) ImagesUseCase {
	return &imagesUseCase{
		searcher:    searcher,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (uc *imagesUseCase) SearchImage(ctx context.Context, query string) (*unsplash.Image, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	cacheKey := "image_search:" + strings.ToLower(query)
	if uc.redisClient != nil {
		data, err := uc.redisClient.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var cached unsplash.Image
			if json.Unmarshal(data, &cached) == nil {
				return &cached, nil
			}
		}
	}

	image, err := uc.searcher.Search(ctx, query)
	if err != nil {
		uc.logger.Error("Image search failed for %q: %v", query, err)
		return nil, err
	}

	// Placeholder results are not cached, a later search may find a real image
	if uc.redisClient != nil && image.URL != unsplash.PlaceholderURL {
		if data, err := json.Marshal(image); err == nil {
			uc.redisClient.Set(ctx, cacheKey, data, cacheTTL)
		}
	}

	return image, nil
}
