package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// RabbitMQ
	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string

	// JWT
	JWTSecret string

	// Rate limiting
	RateLimitRequests   int
	RateLimitAIRequests int
	RateLimitWindow     time.Duration

	// AWS S3 (post media)
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string
	S3UseSSL           string
	S3BucketName       string

	// Scheduler
	SchedulerPollInterval   time.Duration
	SchedulerPublishTimeout time.Duration
	SchedulerClaimGrace     time.Duration
	SchedulerMaxAttempts    int
	SchedulerWorkers        int
	SchedulerBatchLimit     int

	// Publishing platforms
	EnabledPlatforms  []string
	FeedWebhookURL    string
	XAPIBaseURL       string
	XAccessToken      string
	FacebookAPIURL    string
	FacebookPageID    string
	FacebookPageToken string

	// Content generation (Gemini)
	GeminiAPIURL string
	GeminiAPIKey string

	// Stock images (Unsplash)
	UnsplashAPIURL    string
	UnsplashAccessKey string

	// Services URLs
	AuthServiceURL         string
	PostServiceURL         string
	SchedulerServiceURL    string
	ContentServiceURL      string
	ImagesServiceURL       string
	NotificationServiceURL string
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	config := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "postpilot"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       0,

		RabbitMQHost:     getEnv("RABBITMQ_HOST", "localhost"),
		RabbitMQPort:     getEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_PASSWORD", "guest"),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),

		RateLimitRequests:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitAIRequests: getEnvInt("RATE_LIMIT_AI_REQUESTS", 30),
		RateLimitWindow:     getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpoint:        getEnv("AWS_ENDPOINT", ""),
		S3UseSSL:           getEnv("S3_USE_SSL", "true"),
		S3BucketName:       getEnv("S3_BUCKET_NAME", "postpilot-media"),

		SchedulerPollInterval:   getEnvDuration("SCHEDULER_POLL_INTERVAL", 60*time.Second),
		SchedulerPublishTimeout: getEnvDuration("SCHEDULER_PUBLISH_TIMEOUT", 30*time.Second),
		SchedulerClaimGrace:     getEnvDuration("SCHEDULER_CLAIM_GRACE", 5*time.Minute),
		SchedulerMaxAttempts:    getEnvInt("SCHEDULER_MAX_ATTEMPTS", 5),
		SchedulerWorkers:        getEnvInt("SCHEDULER_WORKERS", 8),
		SchedulerBatchLimit:     getEnvInt("SCHEDULER_BATCH_LIMIT", 100),

		EnabledPlatforms:  splitList(getEnv("ENABLED_PLATFORMS", "general")),
		FeedWebhookURL:    getEnv("FEED_WEBHOOK_URL", ""),
		XAPIBaseURL:       getEnv("X_API_BASE_URL", "https://api.x.com"),
		XAccessToken:      getEnv("X_ACCESS_TOKEN", ""),
		FacebookAPIURL:    getEnv("FACEBOOK_API_URL", "https://graph.facebook.com/v19.0"),
		FacebookPageID:    getEnv("FACEBOOK_PAGE_ID", ""),
		FacebookPageToken: getEnv("FACEBOOK_PAGE_ACCESS_TOKEN", ""),

		GeminiAPIURL: getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),

		UnsplashAPIURL:    getEnv("UNSPLASH_API_URL", "https://api.unsplash.com"),
		UnsplashAccessKey: getEnv("UNSPLASH_ACCESS_KEY", ""),

		AuthServiceURL:         getEnv("AUTH_SERVICE_URL", "http://localhost:8001"),
		PostServiceURL:         getEnv("POST_SERVICE_URL", "http://localhost:8002"),
		SchedulerServiceURL:    getEnv("SCHEDULER_SERVICE_URL", "http://localhost:8003"),
		ContentServiceURL:      getEnv("CONTENT_SERVICE_URL", "http://localhost:8004"),
		ImagesServiceURL:       getEnv("IMAGES_SERVICE_URL", "http://localhost:8005"),
		NotificationServiceURL: getEnv("NOTIFICATION_SERVICE_URL", "http://localhost:8006"),
	}

	return config, nil
}

// ValidatePlatforms checks that every enabled publishing platform has the
// credentials it needs. Missing credentials are a startup fault, not a
// per-post runtime fault.
func (c *Config) ValidatePlatforms() error {
	for _, platform := range c.EnabledPlatforms {
		switch platform {
		case "general":
			if c.FeedWebhookURL == "" {
				return fmt.Errorf("platform %q enabled but FEED_WEBHOOK_URL is not set", platform)
			}
		case "x":
			if c.XAccessToken == "" {
				return fmt.Errorf("platform %q enabled but X_ACCESS_TOKEN is not set", platform)
			}
		case "facebook":
			if c.FacebookPageID == "" || c.FacebookPageToken == "" {
				return fmt.Errorf("platform %q enabled but FACEBOOK_PAGE_ID or FACEBOOK_PAGE_ACCESS_TOKEN is not set", platform)
			}
		default:
			return fmt.Errorf("unknown platform %q in ENABLED_PLATFORMS", platform)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
