package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/readvox/readvox/internal/pkg/response"
	"github.com/readvox/readvox/internal/service"
)

type UserHandler struct {
	auth *service.AuthService
}

func NewUserHandler(auth *service.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.auth.GetUser(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, user)
}

type subscriptionRequest struct {
	Subscription bool `json:"subscription"`
}

func (h *UserHandler) UpdateSubscription(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
		return
	}
	userID := getUserID(c)
	if err := h.auth.UpdateSubscription(c.Request.Context(), userID, req.Subscription); err != nil {
		handleError(c, err)
		return
	}
	user, err := h.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, user)
}
