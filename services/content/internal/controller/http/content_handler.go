package http

import (
	"net/http"

	"postpilot/pkg/logger"
	"postpilot/services/content/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	contentUseCase usecase.ContentUseCase
	configured     bool
	logger         *logger.Logger
}

func NewContentHandler(contentUseCase usecase.ContentUseCase, configured bool, logger *logger.Logger) *ContentHandler {
	return &ContentHandler{
		contentUseCase: contentUseCase,
		configured:     configured,
		logger:         logger,
	}
}

func (h *ContentHandler) requireConfigured(c *gin.Context) bool {
	if !h.configured {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content service not configured"})
		return false
	}
	return true
}

type GenerateRequest struct {
	Prompt    string `json:"prompt" binding:"required"`
	Platform  string `json:"platform"`
	Tone      string `json:"tone"`
	MaxLength int    `json:"max_length"`
}

// Generate godoc
// @Summary      Generate post content
// @Description  Generate social media post content from a prompt using AI
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body GenerateRequest true "Generation parameters"
// @Success      200  {object}  usecase.GenerateResult
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /content/generate [post]
func (h *ContentHandler) Generate(c *gin.Context) {
	if !h.requireConfigured(c) {
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.contentUseCase.GeneratePost(c.Request.Context(), req.Prompt, req.Platform, req.Tone, req.MaxLength)
	if err != nil {
		h.logger.Error("Failed to generate content: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate content"})
		return
	}

	c.JSON(http.StatusOK, result)
}

type HashtagsRequest struct {
	Content  string `json:"content" binding:"required"`
	Platform string `json:"platform"`
	Count    int    `json:"count"`
}

// Hashtags godoc
// @Summary      Generate hashtags
// @Description  Generate relevant hashtags for a piece of content
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body HashtagsRequest true "Hashtag parameters"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /content/hashtags [post]
func (h *ContentHandler) Hashtags(c *gin.Context) {
	if !h.requireConfigured(c) {
		return
	}

	var req HashtagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashtags, err := h.contentUseCase.GenerateHashtags(c.Request.Context(), req.Content, req.Platform, req.Count)
	if err != nil {
		h.logger.Error("Failed to generate hashtags: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate hashtags"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hashtags": hashtags, "count": len(hashtags)})
}

type ImproveRequest struct {
	Content         string `json:"content" binding:"required"`
	ImprovementType string `json:"improvement_type"`
}

// Improve godoc
// @Summary      Improve content
// @Description  Improve an existing piece of content (engagement, clarity, tone or brevity)
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ImproveRequest true "Improvement parameters"
// @Success      200  {object}  usecase.ImproveResult
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /content/improve [post]
func (h *ContentHandler) Improve(c *gin.Context) {
	if !h.requireConfigured(c) {
		return
	}

	var req ImproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.contentUseCase.ImproveContent(c.Request.Context(), req.Content, req.ImprovementType)
	if err != nil {
		h.logger.Error("Failed to improve content: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to improve content"})
		return
	}

	c.JSON(http.StatusOK, result)
}

type SuggestRequest struct {
	RecentPosts []string `json:"recent_posts"`
	Count       int      `json:"count"`
}

// Suggest godoc
// @Summary      Suggest post ideas
// @Description  Suggest new post ideas based on the creator's recent posts
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SuggestRequest true "Suggestion parameters"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /content/suggest [post]
func (h *ContentHandler) Suggest(c *gin.Context) {
	if !h.requireConfigured(c) {
		return
	}

	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	suggestions, err := h.contentUseCase.SuggestContent(c.Request.Context(), req.RecentPosts, req.Count)
	if err != nil {
		h.logger.Error("Failed to suggest content: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to suggest content"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions, "count": len(suggestions)})
}

type SentimentRequest struct {
	Content string `json:"content" binding:"required"`
}

// Sentiment godoc
// @Summary      Analyze content sentiment
// @Description  Classify content sentiment as positive, negative or neutral
// @Tags         content
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SentimentRequest true "Content to analyze"
// @Success      200  {object}  usecase.SentimentResult
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /content/sentiment [post]
func (h *ContentHandler) Sentiment(c *gin.Context) {
	if !h.requireConfigured(c) {
		return
	}

	var req SentimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.contentUseCase.AnalyzeSentiment(c.Request.Context(), req.Content)
	if err != nil {
		h.logger.Error("Failed to analyze sentiment: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to analyze sentiment"})
		return
	}

	c.JSON(http.StatusOK, result)
}
