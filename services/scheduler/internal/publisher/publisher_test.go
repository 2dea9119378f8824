package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"postpilot/pkg/config"
	"postpilot/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestReasonOf_TypedError(t *testing.T) {
	err := NewError(ReasonAuthError, errors.New("bad token"))
	assert.Equal(t, ReasonAuthError, ReasonOf(err))
}

func TestReasonOf_WrappedError(t *testing.T) {
	inner := NewError(ReasonRateLimited, errors.New("slow down"))
	wrapped := errors.Join(errors.New("publish failed"), inner)
	assert.Equal(t, ReasonRateLimited, ReasonOf(wrapped))
}

func TestReasonOf_UntypedErrorIsNetwork(t *testing.T) {
	assert.Equal(t, ReasonNetworkError, ReasonOf(errors.New("boom")))
	assert.Equal(t, ReasonNetworkError, ReasonOf(context.DeadlineExceeded))
}

func TestTransient(t *testing.T) {
	assert.True(t, Transient(ReasonNetworkError))
	assert.True(t, Transient(ReasonRateLimited))
	assert.False(t, Transient(ReasonAuthError))
	assert.False(t, Transient(ReasonPlatformRejected))
	assert.False(t, Transient(ReasonUnsupportedPlatform))
}

func TestRegistry_ResolveUnknownPlatform(t *testing.T) {
	registry := NewRegistry()
	registry.Register(NewFeedPublisher("http://localhost:9000", http.DefaultClient))

	_, ok := registry.Resolve(models.Platform("myspace"))
	assert.False(t, ok)

	p, ok := registry.Resolve(models.PlatformGeneral)
	assert.True(t, ok)
	assert.Equal(t, models.PlatformGeneral, p.Platform())
}

func TestFromConfig_MissingCredentialsFails(t *testing.T) {
	cfg := &config.Config{EnabledPlatforms: []string{"facebook"}}

	_, err := FromConfig(cfg, nil)
	assert.Error(t, err)
}

func TestFromConfig_RegistersEnabledPlatforms(t *testing.T) {
	cfg := &config.Config{
		EnabledPlatforms: []string{"general", "x"},
		FeedWebhookURL:   "http://localhost:9000/feed",
		XAPIBaseURL:      "https://api.x.com",
		XAccessToken:     "token",
	}

	registry, err := FromConfig(cfg, nil)
	assert.NoError(t, err)

	_, ok := registry.Resolve(models.PlatformGeneral)
	assert.True(t, ok)
	_, ok = registry.Resolve(models.PlatformX)
	assert.True(t, ok)
	_, ok = registry.Resolve(models.PlatformFacebook)
	assert.False(t, ok)
}

func testPost() *models.Post {
	return &models.Post{
		ID:       "post-1",
		UserID:   "user-1",
		Content:  "hello #world",
		Platform: models.PlatformGeneral,
	}
}

func TestFeedPublisher_Success(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := NewFeedPublisher(server.URL, server.Client())
	err := p.Publish(context.Background(), testPost())

	assert.NoError(t, err)
	assert.Equal(t, "post-1", received["post_id"])
	assert.Equal(t, "hello #world", received["content"])
}

func TestFeedPublisher_StatusClassification(t *testing.T) {
	tests := []struct {
		status int
		reason FailureReason
	}{
		{http.StatusUnauthorized, ReasonAuthError},
		{http.StatusForbidden, ReasonAuthError},
		{http.StatusTooManyRequests, ReasonRateLimited},
		{http.StatusBadRequest, ReasonPlatformRejected},
		{http.StatusInternalServerError, ReasonNetworkError},
		{http.StatusBadGateway, ReasonNetworkError},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		p := NewFeedPublisher(server.URL, server.Client())
		err := p.Publish(context.Background(), testPost())

		assert.Error(t, err, "status %d", tt.status)
		assert.Equal(t, tt.reason, ReasonOf(err), "status %d", tt.status)
		server.Close()
	}
}

func TestFeedPublisher_ConnectionRefusedIsNetworkError(t *testing.T) {
	p := NewFeedPublisher("http://127.0.0.1:1", &http.Client{Timeout: 200 * time.Millisecond})
	err := p.Publish(context.Background(), testPost())

	assert.Error(t, err)
	assert.Equal(t, ReasonNetworkError, ReasonOf(err))
}

func TestXPublisher_Success(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/tweets", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"1"}}`))
	}))
	defer server.Close()

	p := NewXPublisher(server.URL, "secret-token", server.Client())
	err := p.Publish(context.Background(), testPost())

	assert.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "hello #world", gotBody["text"])
}

func TestXPublisher_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	p := NewXPublisher(server.URL, "bad-token", server.Client())
	err := p.Publish(context.Background(), testPost())

	assert.Error(t, err)
	assert.Equal(t, ReasonAuthError, ReasonOf(err))
}

func TestFacebookPublisher_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/page-42/feed", r.URL.Path)
		r.ParseForm()
		assert.Equal(t, "hello #world", r.PostFormValue("message"))
		assert.Equal(t, "page-token", r.PostFormValue("access_token"))
		w.Write([]byte(`{"id":"page-42_123"}`))
	}))
	defer server.Close()

	p := NewFacebookPublisher(server.URL, "page-42", "page-token", server.Client())
	err := p.Publish(context.Background(), testPost())

	assert.NoError(t, err)
}

func TestFacebookPublisher_ExpiredTokenIsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Graph API reports expired tokens with HTTP 400 and error code 190
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Error validating access token","code":190}}`))
	}))
	defer server.Close()

	p := NewFacebookPublisher(server.URL, "page-42", "expired", server.Client())
	err := p.Publish(context.Background(), testPost())

	assert.Error(t, err)
	assert.Equal(t, ReasonAuthError, ReasonOf(err))
}

func TestFacebookPublisher_RateLimitCodeIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Application request limit reached","code":4}}`))
	}))
	defer server.Close()

	p := NewFacebookPublisher(server.URL, "page-42", "token", server.Client())
	err := p.Publish(context.Background(), testPost())

	assert.Error(t, err)
	assert.Equal(t, ReasonRateLimited, ReasonOf(err))
}

func TestPublisher_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	p := NewFeedPublisher(server.URL, server.Client())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := p.Publish(ctx, testPost())
	assert.Error(t, err)
	assert.Equal(t, ReasonNetworkError, ReasonOf(err))
}
