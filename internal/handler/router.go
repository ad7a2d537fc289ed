package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/readvox/readvox/internal/middleware"
)

type RouterDeps struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Documents *DocumentHandler
	Chats     *ChatHandler
	AI        *AIHandler
	Extract   *ExtractHandler
	Videos    *VideoHandler
	Files     *FileHandler
	JWTSecret []byte
	// AuthLimitWindow throttles login/register attempts. Zero disables it.
	AuthLimitWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	authLimit := middleware.RateLimit(deps.AuthLimitWindow)
	api.POST("/auth/register", authLimit, deps.Auth.Register)
	api.POST("/auth/login", authLimit, deps.Auth.Login)
	api.POST("/auth/logout", deps.Auth.Logout)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	authGroup.GET("/users/me", deps.Users.Me)
	authGroup.PUT("/users/me/subscription", deps.Users.UpdateSubscription)

	authGroup.POST("/documents", deps.Documents.Create)
	authGroup.GET("/documents", deps.Documents.List)
	authGroup.GET("/documents/:id", deps.Documents.Get)
	authGroup.PUT("/documents/:id", deps.Documents.Update)
	authGroup.DELETE("/documents/:id", deps.Documents.Delete)
	authGroup.GET("/documents/:id/export", deps.Documents.Export)
	authGroup.GET("/documents/:id/related", deps.Documents.Related)
	authGroup.GET("/documents/:id/sessions", deps.Documents.Sessions)
	authGroup.GET("/documents/:id/questions", deps.Documents.SuggestedQuestions)
	authGroup.POST("/documents/:id/questions", deps.Documents.ReplaceSuggestedQuestions)

	authGroup.POST("/chat/sessions", deps.Chats.CreateSession)
	authGroup.DELETE("/chat/sessions/:id", deps.Chats.DeleteSession)
	authGroup.GET("/chat/sessions/:id/history", deps.Chats.SessionHistory)
	authGroup.POST("/chat/sessions/:id/history", deps.Chats.AppendHistory)
	authGroup.GET("/chat/history", deps.Chats.UserHistory)

	authGroup.POST("/ai/chat", deps.AI.Chat)
	authGroup.POST("/ai/summarize", deps.AI.Summarize)
	authGroup.POST("/ai/questions", deps.AI.GenerateQuestions)

	authGroup.POST("/extract/pdf", deps.Extract.PDF)
	authGroup.POST("/extract/doc", deps.Extract.Doc)
	authGroup.POST("/extract/image", deps.Extract.Image)

	authGroup.POST("/videos", deps.Videos.Submit)
	authGroup.GET("/videos/:id", deps.Videos.Status)

	authGroup.POST("/files/upload", deps.Files.Upload)
	api.GET("/files/:key", deps.Files.Get)
}
