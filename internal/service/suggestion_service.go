package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/readvox/readvox/internal/model"
	appErr "github.com/readvox/readvox/internal/pkg/errors"
	"github.com/readvox/readvox/internal/pkg/timeutil"
	"github.com/readvox/readvox/internal/repo"
)

// fallbackQuestions is served when the AI provider cannot produce
// suggestions for a document.
var fallbackQuestions = []string{
	"What is the main topic of this document?",
	"Can you summarize the key points?",
	"What are the most important details mentioned?",
	"What conclusions does the document reach?",
	"How can this information be applied?",
}

type SuggestionService struct {
	docs        *repo.DocumentRepo
	suggestions *repo.SuggestedQuestionRepo
	ai          *AIService
}

func NewSuggestionService(docs *repo.DocumentRepo, suggestions *repo.SuggestedQuestionRepo, ai *AIService) *SuggestionService {
	return &SuggestionService{docs: docs, suggestions: suggestions, ai: ai}
}

// Replace swaps the document's suggestion set for the given questions.
func (s *SuggestionService) Replace(ctx context.Context, userID string, docID int64, questions []string) ([]model.SuggestedQuestion, error) {
	if _, err := s.docs.GetByID(ctx, userID, docID); err != nil {
		return nil, err
	}
	cleaned := make([]string, 0, len(questions))
	for _, question := range questions {
		trimmed := strings.TrimSpace(question)
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return nil, appErr.Invalid("at least one question is required")
	}
	if err := s.suggestions.ReplaceAll(ctx, docID, cleaned, timeutil.NowUnix()); err != nil {
		return nil, appErr.Storage(err)
	}
	stored, err := s.suggestions.ListByDocument(ctx, docID)
	if err != nil {
		return nil, appErr.Storage(err)
	}
	return stored, nil
}

// GetOrGenerate returns the stored suggestions, generating and persisting a
// fresh set when the document has none. A provider failure falls back to a
// static question set so the caller always gets something usable.
func (s *SuggestionService) GetOrGenerate(ctx context.Context, userID string, docID int64) ([]model.SuggestedQuestion, error) {
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	stored, err := s.suggestions.ListByDocument(ctx, docID)
	if err != nil {
		return nil, appErr.Storage(err)
	}
	if len(stored) > 0 {
		return stored, nil
	}
	questions, err := s.generate(ctx, doc)
	if err != nil {
		logutil.GetLogger(ctx).Warn("generate suggested questions failed, using fallback",
			zap.Int64("document_id", docID),
			zap.Error(err),
		)
		questions = fallbackQuestions
	}
	if err := s.suggestions.ReplaceAll(ctx, docID, questions, timeutil.NowUnix()); err != nil {
		return nil, appErr.Storage(err)
	}
	stored, err = s.suggestions.ListByDocument(ctx, docID)
	if err != nil {
		return nil, appErr.Storage(err)
	}
	return stored, nil
}

// Regenerate always produces a fresh suggestion set for the document,
// replacing whatever was stored before.
func (s *SuggestionService) Regenerate(ctx context.Context, userID string, docID int64) ([]model.SuggestedQuestion, error) {
	doc, err := s.docs.GetByID(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	questions, err := s.generate(ctx, doc)
	if err != nil {
		return nil, err
	}
	if err := s.suggestions.ReplaceAll(ctx, docID, questions, timeutil.NowUnix()); err != nil {
		return nil, appErr.Storage(err)
	}
	stored, err := s.suggestions.ListByDocument(ctx, docID)
	if err != nil {
		return nil, appErr.Storage(err)
	}
	return stored, nil
}

func (s *SuggestionService) generate(ctx context.Context, doc *model.Document) ([]string, error) {
	if s.ai == nil {
		return nil, appErr.ErrInternal
	}
	return s.ai.GenerateQuestions(ctx, doc.Content)
}
