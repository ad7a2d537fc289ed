package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/readvox/readvox/internal/pkg/response"
	"github.com/readvox/readvox/internal/repo"
	"github.com/readvox/readvox/internal/service"
)

type AIHandler struct {
	ai          *service.AIService
	documents   *service.DocumentService
	chats       *service.ChatService
	suggestions *service.SuggestionService
}

func NewAIHandler(ai *service.AIService, documents *service.DocumentService, chats *service.ChatService, suggestions *service.SuggestionService) *AIHandler {
	return &AIHandler{ai: ai, documents: documents, chats: chats, suggestions: suggestions}
}

type aiChatRequest struct {
	DocumentID        int64  `json:"document_id"`
	Question          string `json:"question"`
	SessionID         int64  `json:"session_id"`
	SuggestedQuestion bool   `json:"suggested_question"`
}

// Chat answers a question about a document and records the exchange in a
// chat session. Without an explicit session id the document's most recent
// session is used, created on demand.
func (h *AIHandler) Chat(c *gin.Context) {
	var req aiChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DocumentID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
		return
	}
	if req.Question == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "question is required")
		return
	}
	userID := getUserID(c)
	ctx := c.Request.Context()
	doc, err := h.documents.Get(ctx, userID, req.DocumentID)
	if err != nil {
		handleError(c, err)
		return
	}
	answer, err := h.ai.Answer(ctx, doc.Content, req.Question)
	if err != nil {
		handleError(c, err)
		return
	}
	sessionID := req.SessionID
	if sessionID <= 0 {
		session, err := h.chats.EnsureSession(ctx, userID, req.DocumentID)
		if err != nil {
			handleError(c, err)
			return
		}
		sessionID = session.ID
	}
	entry, err := h.chats.AppendHistory(ctx, userID, sessionID, req.Question, answer, req.SuggestedQuestion)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"answer":     answer,
		"session_id": sessionID,
		"entry_id":   entry.ID,
	})
}

type aiSummarizeRequest struct {
	DocumentID int64 `json:"document_id"`
}

// Summarize generates a document summary and stores it on the document.
func (h *AIHandler) Summarize(c *gin.Context) {
	var req aiSummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DocumentID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
		return
	}
	userID := getUserID(c)
	ctx := c.Request.Context()
	doc, err := h.documents.Get(ctx, userID, req.DocumentID)
	if err != nil {
		handleError(c, err)
		return
	}
	summary, err := h.ai.Summarize(ctx, doc.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	if _, err := h.documents.Update(ctx, userID, req.DocumentID, repo.DocumentUpdate{Summary: &summary}); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"summary": summary})
}

type aiQuestionsRequest struct {
	DocumentID int64 `json:"document_id"`
}

// GenerateQuestions regenerates the document's suggested questions.
func (h *AIHandler) GenerateQuestions(c *gin.Context) {
	var req aiQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DocumentID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
		return
	}
	questions, err := h.suggestions.Regenerate(c.Request.Context(), getUserID(c), req.DocumentID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": questions})
}
