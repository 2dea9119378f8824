package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"postpilot/pkg/logger"
	"postpilot/services/content/internal/gemini"

	"github.com/redis/go-redis/v9"
)

const cacheTTL = time.Hour

type GenerateResult struct {
	Content        string `json:"content"`
	Platform       string `json:"platform"`
	Tone           string `json:"tone"`
	CharacterCount int    `json:"character_count"`
	ModelUsed      string `json:"model_used"`
	PromptUsed     string `json:"prompt_used"`
}

type ImproveResult struct {
	OriginalContent string `json:"original_content"`
	ImprovedContent string `json:"improved_content"`
	ImprovementType string `json:"improvement_type"`
}

type SentimentResult struct {
	Sentiment string `json:"sentiment"`
	Content   string `json:"content"`
}

type ContentUseCase interface {
	GeneratePost(ctx context.Context, prompt, platform, tone string, maxLength int) (*GenerateResult, error)
	GenerateHashtags(ctx context.Context, content, platform string, count int) ([]string, error)
	ImproveContent(ctx context.Context, content, improvementType string) (*ImproveResult, error)
	AnalyzeSentiment(ctx context.Context, content string) (*SentimentResult, error)
	SuggestContent(ctx context.Context, previousPosts []string, count int) ([]string, error)
}

type contentUseCase struct {
	generator   gemini.Generator
	redisClient *redis.Client
	logger      *logger.Logger
}

func NewContentUseCase(generator gemini.Generator, redisClient *redis.Client, logger *logger.Logger) ContentUseCase {
	return &contentUseCase{
		generator:   generator,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (uc *contentUseCase) GeneratePost(ctx context.Context, prompt, platform, tone string, maxLength int) (*GenerateResult, error) {
	if platform == "" {
		platform = "general"
	}
	if tone == "" {
		tone = "professional"
	}
	if maxLength <= 0 {
		maxLength = 280
	}

	cacheKey := uc.cacheKey("generate", prompt, platform, tone, fmt.Sprint(maxLength))
	var cached GenerateResult
	if uc.fromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	systemPrompt := fmt.Sprintf(`You are an expert social media content creator.
Generate a %s post for %s.
%s

Rules:
- Stay within the character limit: %d
- Use a %s tone
- Include relevant hashtags where appropriate for the platform
- The content must be engaging and authentic`,
		tone, platform, platformInstructions(platform, maxLength), maxLength, tone)

	generated, err := uc.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		uc.logger.Error("Content generation failed: %v", err)
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	result := &GenerateResult{
		Content:        generated,
		Platform:       platform,
		Tone:           tone,
		CharacterCount: len(generated),
		ModelUsed:      "gemini-1.5-flash",
		PromptUsed:     prompt,
	}
	uc.toCache(ctx, cacheKey, result)
	return result, nil
}

func (uc *contentUseCase) GenerateHashtags(ctx context.Context, content, platform string, count int) ([]string, error) {
	if platform == "" {
		platform = "general"
	}
	if count <= 0 {
		count = 5
	}

	cacheKey := uc.cacheKey("hashtags", content, platform, fmt.Sprint(count))
	var cached []string
	if uc.fromCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	systemPrompt := fmt.Sprintf(`Generate %d relevant and popular hashtags for this content on %s.
The hashtags must be:
- Relevant to the content
- Popular on %s
- Without spaces (format #hashtag)
- Varied (a mix of general and specific hashtags)

Return only the hashtags, one per line, without numbering.`, count, platform, platform)

	response, err := uc.generator.GenerateContent(ctx, systemPrompt, "Content: "+content)
	if err != nil {
		uc.logger.Error("Hashtag generation failed: %v", err)
		return nil, fmt.Errorf("failed to generate hashtags: %w", err)
	}

	var hashtags []string
	for _, line := range strings.Split(response, "\n") {
		tag := strings.TrimSpace(line)
		if strings.HasPrefix(tag, "#") {
			hashtags = append(hashtags, tag)
		}
	}
	if len(hashtags) > count {
		hashtags = hashtags[:count]
	}

	uc.toCache(ctx, cacheKey, hashtags)
	return hashtags, nil
}

func (uc *contentUseCase) ImproveContent(ctx context.Context, content, improvementType string) (*ImproveResult, error) {
	instructions := map[string]string{
		"engagement": "Make this content more engaging and catchy",
		"clarity":    "Improve the clarity and readability of this content",
		"tone":       "Adjust the tone to be more professional",
		"brevity":    "Shorten this content while keeping the essentials",
	}

	instruction, ok := instructions[improvementType]
	if !ok {
		instruction = "Improve this content generally"
		improvementType = "general"
	}

	cacheKey := uc.cacheKey("improve", content, improvementType)
	var cached ImproveResult
	if uc.fromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	systemPrompt := fmt.Sprintf(`%s.
Keep the same core message but improve the wording, structure and impact.
Return only the improved content.`, instruction)

	improved, err := uc.generator.GenerateContent(ctx, systemPrompt, content)
	if err != nil {
		uc.logger.Error("Content improvement failed: %v", err)
		return nil, fmt.Errorf("failed to improve content: %w", err)
	}

	result := &ImproveResult{
		OriginalContent: content,
		ImprovedContent: improved,
		ImprovementType: improvementType,
	}
	uc.toCache(ctx, cacheKey, result)
	return result, nil
}

func (uc *contentUseCase) AnalyzeSentiment(ctx context.Context, content string) (*SentimentResult, error) {
	cacheKey := uc.cacheKey("sentiment", content)
	var cached SentimentResult
	if uc.fromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	systemPrompt := `Classify the sentiment of the following content as exactly one word:
positive, negative or neutral. Return only that word.`

	response, err := uc.generator.GenerateContent(ctx, systemPrompt, content)
	if err != nil {
		uc.logger.Error("Sentiment analysis failed: %v", err)
		return nil, fmt.Errorf("failed to analyze sentiment: %w", err)
	}

	sentiment := strings.ToLower(strings.TrimSpace(response))
	switch sentiment {
	case "positive", "negative", "neutral":
	default:
		sentiment = "neutral"
	}

	result := &SentimentResult{Sentiment: sentiment, Content: content}
	uc.toCache(ctx, cacheKey, result)
	return result, nil
}

// SuggestContent proposes new post ideas grounded in what the creator has
// already published. The caller supplies the recent posts; this service has
// no access to the post store.
func (uc *contentUseCase) SuggestContent(ctx context.Context, previousPosts []string, count int) ([]string, error) {
	if count <= 0 {
		count = 3
	}
	if len(previousPosts) > 10 {
		previousPosts = previousPosts[:10]
	}

	cacheKey := uc.cacheKey(append([]string{"suggest", fmt.Sprint(count)}, previousPosts...)...)
	var cached []string
	if uc.fromCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	systemPrompt := fmt.Sprintf(`You are a social media content strategist.
Based on the creator's recent posts, suggest %d new post ideas that match
their voice and themes without repeating what they already published.

Return only the suggestions, one per line, without numbering.`, count)

	userPrompt := "The creator has not published anything yet; suggest broadly appealing starter ideas."
	if len(previousPosts) > 0 {
		userPrompt = "Recent posts:\n- " + strings.Join(previousPosts, "\n- ")
	}

	response, err := uc.generator.GenerateContent(ctx, systemPrompt, userPrompt)
	if err != nil {
		uc.logger.Error("Content suggestion failed: %v", err)
		return nil, fmt.Errorf("failed to suggest content: %w", err)
	}

	var suggestions []string
	for _, line := range strings.Split(response, "\n") {
		s := strings.TrimLeft(strings.TrimSpace(line), "-*• ")
		if s != "" {
			suggestions = append(suggestions, s)
		}
	}
	if len(suggestions) > count {
		suggestions = suggestions[:count]
	}

	uc.toCache(ctx, cacheKey, suggestions)
	return suggestions, nil
}

func (uc *contentUseCase) cacheKey(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "content:" + hex.EncodeToString(h[:16])
}

func (uc *contentUseCase) fromCache(ctx context.Context, key string, out interface{}) bool {
	if uc.redisClient == nil {
		return false
	}
	data, err := uc.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (uc *contentUseCase) toCache(ctx context.Context, key string, value interface{}) {
	if uc.redisClient == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	uc.redisClient.Set(ctx, key, data, cacheTTL)
}

func platformInstructions(platform string, maxLength int) string {
	switch platform {
	case "x":
		return fmt.Sprintf("For X (Twitter): be concise and punchy. Limit: %d characters. Use hashtags strategically.", maxLength)
	case "facebook":
		return "For Facebook: can be longer and narrative. Encourage interaction with questions."
	default:
		return fmt.Sprintf("Versatile content adaptable to several platforms. Limit: %d characters.", maxLength)
	}
}
