package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentGateway_GeneratePost(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/content/generate", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"content": "Big launch today"})
	}))
	defer server.Close()

	gateway := NewContentGateway(server.URL)
	content, err := gateway.GeneratePost(context.Background(), "Bearer token", "announce the launch", "x", "casual", 280)
	assert.NoError(t, err)
	assert.Equal(t, "Big launch today", content)
	assert.Equal(t, "Bearer token", gotAuth)
	assert.Equal(t, "announce the launch", gotBody["prompt"])
}

func TestContentGateway_GenerateHashtags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/content/hashtags", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"hashtags": []string{"#launch", "#startup"}, "count": 2})
	}))
	defer server.Close()

	gateway := NewContentGateway(server.URL)
	hashtags, err := gateway.GenerateHashtags(context.Background(), "", "Big launch today", "x", 2)
	assert.NoError(t, err)
	assert.Equal(t, []string{"#launch", "#startup"}, hashtags)
}

func TestContentGateway_SuggestContent(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/content/suggest", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"suggestions": []string{"idea one"}})
	}))
	defer server.Close()

	gateway := NewContentGateway(server.URL)
	suggestions, err := gateway.SuggestContent(context.Background(), "", []string{"first", "second"}, 3)
	assert.NoError(t, err)
	assert.Equal(t, []string{"idea one"}, suggestions)
	assert.Len(t, gotBody["recent_posts"], 2)
}

func TestContentGateway_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "content service not configured"})
	}))
	defer server.Close()

	gateway := NewContentGateway(server.URL)
	_, err := gateway.GeneratePost(context.Background(), "", "announce the launch", "", "", 0)
	assert.ErrorContains(t, err, "503")
}
