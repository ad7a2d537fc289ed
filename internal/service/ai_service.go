package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/readvox/readvox/internal/ai"
	appErr "github.com/readvox/readvox/internal/pkg/errors"
)

const (
	minChatContextChars = 20
	minSummaryChars     = 50
	minQuestionsChars   = 100
)

type AIService struct {
	manager *ai.Manager
	cache   *expirable.LRU[string, string]
}

func NewAIService(manager *ai.Manager) *AIService {
	cache := expirable.NewLRU[string, string](10000, nil, 2*time.Hour)
	return &AIService{
		manager: manager,
		cache:   cache,
	}
}

// Answer replies to a question about the given document content. Identical
// question/content pairs are served from cache.
func (s *AIService) Answer(ctx context.Context, docContent, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", appErr.Invalid("question is required")
	}
	docContent = strings.TrimSpace(docContent)
	if utf8.RuneCountInString(docContent) < minChatContextChars {
		return "", appErr.Invalid("document content is too short to chat about")
	}
	cacheKey := s.cacheKey("chat", docContent+"\x00"+question)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached, nil
	}
	res, err := s.manager.Answer(ctx, docContent, question)
	if err != nil {
		return "", err
	}
	s.cache.Add(cacheKey, res)
	return res, nil
}

func (s *AIService) Summarize(ctx context.Context, content string) (string, error) {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) < minSummaryChars {
		return "", appErr.Invalid("content is too short to summarize")
	}
	cacheKey := s.cacheKey("summary", content)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached, nil
	}
	res, err := s.manager.Summarize(ctx, content)
	if err != nil {
		return "", err
	}
	s.cache.Add(cacheKey, res)
	return res, nil
}

func (s *AIService) GenerateQuestions(ctx context.Context, content string) ([]string, error) {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) < minQuestionsChars {
		return nil, appErr.Invalid("content is too short to generate questions")
	}
	cacheKey := s.cacheKey("questions", content)
	if cached, ok := s.cache.Get(cacheKey); ok {
		var questions []string
		if err := json.Unmarshal([]byte(cached), &questions); err == nil {
			return questions, nil
		}
	}
	res, err := s.manager.GenerateQuestions(ctx, content)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(res); err == nil {
		s.cache.Add(cacheKey, string(data))
	}
	return res, nil
}

func (s *AIService) VideoConcept(ctx context.Context, prompt, style string, duration int) (string, string, error) {
	return s.manager.VideoConcept(ctx, prompt, style, duration)
}

func (s *AIService) cacheKey(feature, text string) string {
	hash := sha256.Sum256([]byte(text))
	return feature + ":" + hex.EncodeToString(hash[:])
}
