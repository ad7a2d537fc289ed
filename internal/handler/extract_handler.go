package handler

import (
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/readvox/readvox/internal/extract"
	"github.com/readvox/readvox/internal/pkg/response"
)

// Uploads beyond this size are rejected before extraction.
const maxExtractBytes = 20 << 20

type ExtractHandler struct{}

func NewExtractHandler() *ExtractHandler {
	return &ExtractHandler{}
}

type extractResponse struct {
	Text     string `json:"text"`
	FileName string `json:"file_name"`
	Length   int    `json:"length"`
}

func (h *ExtractHandler) PDF(c *gin.Context) {
	data, name, ok := readUpload(c)
	if !ok {
		return
	}
	text, err := extract.PDF(data)
	if err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "EXTRACT_FAILED", "could not extract text from pdf")
		return
	}
	response.Success(c, extractResponse{Text: text, FileName: name, Length: utf8.RuneCountInString(text)})
}

func (h *ExtractHandler) Doc(c *gin.Context) {
	data, name, ok := readUpload(c)
	if !ok {
		return
	}
	text, err := extract.DOCX(data)
	if err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "EXTRACT_FAILED", "could not extract text from document")
		return
	}
	response.Success(c, extractResponse{Text: text, FileName: name, Length: utf8.RuneCountInString(text)})
}

type imageTextRequest struct {
	Text     string `json:"text"`
	FileName string `json:"file_name"`
}

// Image accepts text recognized client side and returns it normalized. OCR
// itself runs in the browser.
func (h *ExtractHandler) Image(c *gin.Context) {
	var req imageTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "text is required")
		return
	}
	response.Success(c, extractResponse{Text: text, FileName: req.FileName, Length: utf8.RuneCountInString(text)})
}

func readUpload(c *gin.Context) ([]byte, string, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_FILE", "file is required")
		return nil, "", false
	}
	if file.Size > maxExtractBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file is too large")
		return nil, "", false
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_FILE", "failed to open file")
		return nil, "", false
	}
	defer opened.Close()
	data, err := io.ReadAll(io.LimitReader(opened, maxExtractBytes+1))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_FILE", "failed to read file")
		return nil, "", false
	}
	if len(data) > maxExtractBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file is too large")
		return nil, "", false
	}
	return data, file.Filename, true
}
