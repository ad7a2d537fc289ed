package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/readvox/readvox/internal/pkg/response"
	"github.com/readvox/readvox/internal/repo"
	"github.com/readvox/readvox/internal/service"
)

type DocumentHandler struct {
	documents   *service.DocumentService
	chats       *service.ChatService
	suggestions *service.SuggestionService
}

func NewDocumentHandler(documents *service.DocumentService, chats *service.ChatService, suggestions *service.SuggestionService) *DocumentHandler {
	return &DocumentHandler{documents: documents, chats: chats, suggestions: suggestions}
}

type saveDocumentRequest struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	Summary      string `json:"summary"`
	DocumentType string `json:"document_type"`
	FileName     string `json:"file_name"`
}

type updateDocumentRequest struct {
	Title        *string `json:"title"`
	Content      *string `json:"content"`
	Summary      *string `json:"summary"`
	DocumentType *string `json:"document_type"`
	FileName     *string `json:"file_name"`
}

func docIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid document id")
		return 0, false
	}
	return id, true
}

func (h *DocumentHandler) Create(c *gin.Context) {
	var req saveDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
		return
	}
	doc, err := h.documents.Save(c.Request.Context(), getUserID(c), service.SaveDocumentInput{
		Title:        req.Title,
		Content:      req.Content,
		Summary:      req.Summary,
		DocumentType: req.DocumentType,
		FileName:     req.FileName,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

// List returns the caller's documents, optionally filtered by the search
// query parameter.
func (h *DocumentHandler) List(c *gin.Context) {
	var limit uint
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid limit")
			return
		}
		limit = uint(parsed)
	}
	userID := getUserID(c)
	if query := c.Query("search"); query != "" {
		docs, err := h.documents.Search(c.Request.Context(), userID, query, limit)
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, gin.H{"items": docs})
		return
	}
	docs, err := h.documents.List(c.Request.Context(), userID, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": docs})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	docID, ok := docIDParam(c)
	if !ok {
		return
	}
	doc, sessions, err := h.documents.GetWithSessions(c.Request.Context(), getUserID(c), docID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"document": doc, "sessions": sessions})
}

func (h *DocumentHandler) Update(c *gin.Context) {
	docID, ok := docIDParam(c)
	if !ok {
		return
	}
	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
		return
	}
	doc, err := h.documents.Update(c.Request.Context(), getUserID(c), docID, repo.DocumentUpdate{
		Title:        req.Title,
		Content:      req.Content,
		Summary:      req.Summary,
		DocumentType: req.DocumentType,
		FileName:     req.FileName,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, ok := docIDParam(c)
	if !ok {
		return
	}
	if err := h.documents.Delete(c.Request.Context(), getUserID(c), docID); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

func (h *DocumentHandler) Export(c *gin.Context) {
	docID, ok := docIDParam(c)
	if !ok {
		return
	}
	title, page, err := h.documents.ExportHTML(c.Request.Context(), getUserID(c), docID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", title+".html"))
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (h *DocumentHandler) Related(c *gin.Context) {
	docID, ok := docIDParam(c)
	if !ok {
		return
	}
	var limit int
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid limit")
			return
		}
		limit = parsed
	}
	docs, err := h.documents.Related(c.Request.Context(), getUserID(c), docID, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": docs})
}

func (h *DocumentHandler) Sessions(c *gin.Context) {
	docID, ok := docIDParam(c)
	if !ok {
		return
	}
	sessions, err := h.chats.ListSessions(c.Request.Context(), getUserID(c), docID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": sessions})
}

func (h *DocumentHandler) SuggestedQuestions(c *gin.Context) {
	docID, ok := docIDParam(c)
	if !ok {
		return
	}
	questions, err := h.suggestions.GetOrGenerate(c.Request.Context(), getUserID(c), docID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": questions})
}

type replaceQuestionsRequest struct {
	Questions []string `json:"questions"`
}

func (h *DocumentHandler) ReplaceSuggestedQuestions(c *gin.Context) {
	docID, ok := docIDParam(c)
	if !ok {
		return
	}
	var req replaceQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
		return
	}
	questions, err := h.suggestions.Replace(c.Request.Context(), getUserID(c), docID, req.Questions)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": questions})
}
