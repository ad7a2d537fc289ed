package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/readvox/readvox/internal/pkg/response"
	"github.com/readvox/readvox/internal/service"
)

type ChatHandler struct {
	chats *service.ChatService
}

func NewChatHandler(chats *service.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

func sessionIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid session id")
		return 0, false
	}
	return id, true
}

type createSessionRequest struct {
	DocumentID  int64  `json:"document_id"`
	SessionName string `json:"session_name"`
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DocumentID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
		return
	}
	session, err := h.chats.CreateSession(c.Request.Context(), getUserID(c), req.DocumentID, req.SessionName)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, session)
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	if err := h.chats.DeleteSession(c.Request.Context(), getUserID(c), sessionID); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

func (h *ChatHandler) SessionHistory(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	entries, err := h.chats.History(c.Request.Context(), getUserID(c), sessionID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": entries})
}

type appendHistoryRequest struct {
	Question          string `json:"question"`
	Answer            string `json:"answer"`
	SuggestedQuestion bool   `json:"suggested_question"`
}

func (h *ChatHandler) AppendHistory(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var req appendHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
		return
	}
	if req.Question == "" || req.Answer == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "question and answer are required")
		return
	}
	entry, err := h.chats.AppendHistory(c.Request.Context(), getUserID(c), sessionID, req.Question, req.Answer, req.SuggestedQuestion)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, entry)
}

// UserHistory returns the caller's full chat history grouped by document
// and session.
func (h *ChatHandler) UserHistory(c *gin.Context) {
	history, err := h.chats.UserHistory(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, history)
}
