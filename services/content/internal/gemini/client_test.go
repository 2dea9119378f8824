package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-1.5-flash:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Contents, 1)
		assert.Len(t, req.Contents[0].Parts, 2)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "  generated text\n"}},
				}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", srv.Client())

	text, err := client.GenerateContent(context.Background(), "system", "user")
	assert.NoError(t, err)
	assert.Equal(t, "generated text", text)
}

func TestGenerateContent_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 400, "message": "API key not valid"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad-key", srv.Client())

	_, err := client.GenerateContent(context.Background(), "system", "user")
	assert.ErrorContains(t, err, "API key not valid")
}

func TestGenerateContent_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", srv.Client())

	_, err := client.GenerateContent(context.Background(), "system", "user")
	assert.ErrorContains(t, err, "no candidates")
}

func TestGenerateContent_NotConfigured(t *testing.T) {
	client := NewClient("http://localhost", "", nil)
	assert.False(t, client.Configured())

	_, err := client.GenerateContent(context.Background(), "system", "user")
	assert.ErrorContains(t, err, "not configured")
}
