package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/readvox/readvox/internal/pkg/response"
	"github.com/readvox/readvox/internal/service"
)

type VideoHandler struct {
	videos *service.VideoService
}

func NewVideoHandler(videos *service.VideoService) *VideoHandler {
	return &VideoHandler{videos: videos}
}

type submitVideoRequest struct {
	Prompt       string `json:"prompt"`
	Style        string `json:"style"`
	Duration     int    `json:"duration"`
	IncludeAudio bool   `json:"include_audio"`
}

func (h *VideoHandler) Submit(c *gin.Context) {
	var req submitVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
		return
	}
	job, err := h.videos.Submit(c.Request.Context(), getUserID(c), service.SubmitVideoInput{
		Prompt:       req.Prompt,
		Style:        req.Style,
		Duration:     req.Duration,
		IncludeAudio: req.IncludeAudio,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, job)
}

func (h *VideoHandler) Status(c *gin.Context) {
	jobID := c.Param("id")
	if jobID == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid job id")
		return
	}
	job, err := h.videos.Status(c.Request.Context(), getUserID(c), jobID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, job)
}
