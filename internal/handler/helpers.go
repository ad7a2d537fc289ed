package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/readvox/readvox/internal/ai"
	"github.com/readvox/readvox/internal/middleware"
	appErr "github.com/readvox/readvox/internal/pkg/errors"
	"github.com/readvox/readvox/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(string)
	return userID
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Warn("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "forbidden")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", invalidMessage(err))
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", "conflict")
	case errors.Is(err, ai.ErrKeyMissing):
		response.Error(c, http.StatusInternalServerError, "AI_KEY_MISSING", "AI API key missing or invalid")
	case errors.Is(err, ai.ErrPermissionDenied):
		response.Error(c, http.StatusInternalServerError, "AI_PERMISSION_DENIED", "AI provider rejected the request")
	case errors.Is(err, ai.ErrQuotaExceeded):
		response.Error(c, http.StatusInternalServerError, "AI_QUOTA_EXCEEDED", "AI quota exceeded, try again later")
	case errors.Is(err, ai.ErrUnavailable):
		response.Error(c, http.StatusInternalServerError, "AI_UNAVAILABLE", "ai not configured")
	case errors.Is(err, appErr.ErrStorage):
		response.Error(c, http.StatusInternalServerError, "STORAGE_ERROR", "storage error")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

// invalidMessage strips the sentinel prefix so the client sees only the
// human readable part of a validation error.
func invalidMessage(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return "invalid request"
}
