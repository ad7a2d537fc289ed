package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/readvox/readvox/internal/ai"
	"github.com/readvox/readvox/internal/config"
	"github.com/readvox/readvox/internal/filestore"
	"github.com/readvox/readvox/internal/handler"
	"github.com/readvox/readvox/internal/middleware"
	"github.com/readvox/readvox/internal/repo"
	"github.com/readvox/readvox/internal/service"
	"github.com/readvox/readvox/test/testutil"
)

// stubProvider answers every generate call with a fixed payload so handler
// tests never touch a real AI backend.
type stubProvider struct {
	generateResp string
	generateErr  error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	if p.generateErr != nil {
		return "", p.generateErr
	}
	return p.generateResp, nil
}

func (p *stubProvider) Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error) {
	return make([]float32, 768), nil
}

func setupRouter(t *testing.T, provider ai.IProvider) (http.Handler, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)

	userRepo := repo.NewUserRepo(db)
	docRepo := repo.NewDocumentRepo(db)
	sessionRepo := repo.NewChatSessionRepo(db)
	historyRepo := repo.NewChatHistoryRepo(db)
	suggestionRepo := repo.NewSuggestedQuestionRepo(db)
	embeddingRepo := repo.NewEmbeddingRepo(db)
	videoJobRepo := repo.NewVideoJobRepo(db)

	aiManager := ai.NewManager(
		ai.NewGenerator(provider, "stub-model"),
		ai.NewGenerator(provider, "stub-model"),
		ai.NewGenerator(provider, "stub-model"),
		ai.NewGenerator(provider, "stub-model"),
		ai.NewEmbedder(provider, "stub-embed"),
		ai.ManagerConfig{Timeout: 5, MaxInputChars: 100000},
	)

	jwtSecret := []byte("test-secret")
	authService := service.NewAuthService(userRepo, jwtSecret, time.Hour, true)
	documentService := service.NewDocumentService(db, docRepo, sessionRepo, historyRepo, suggestionRepo, embeddingRepo, aiManager)
	chatService := service.NewChatService(db, docRepo, sessionRepo, historyRepo)
	aiService := service.NewAIService(aiManager)
	suggestionService := service.NewSuggestionService(docRepo, suggestionRepo, aiService)
	videoService := service.NewVideoService(videoJobRepo, aiService, time.Hour)

	tmpDir, err := os.MkdirTemp("", "readvox-upload-*")
	require.NoError(t, err)

	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{
			"dir": tmpDir,
		},
	})
	require.NoError(t, err)

	deps := handler.RouterDeps{
		Auth:      handler.NewAuthHandler(authService),
		Users:     handler.NewUserHandler(authService),
		Documents: handler.NewDocumentHandler(documentService, chatService, suggestionService),
		Chats:     handler.NewChatHandler(chatService),
		AI:        handler.NewAIHandler(aiService, documentService, chatService, suggestionService),
		Extract:   handler.NewExtractHandler(),
		Videos:    handler.NewVideoHandler(videoService),
		Files:     handler.NewFileHandler(store),
		JWTSecret: jwtSecret,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)

	return engine, func() {
		cleanup()
		_ = os.RemoveAll(tmpDir)
	}
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func registerUser(t *testing.T, router http.Handler, email string) string {
	t.Helper()
	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "tester",
		"email":    email,
		"password": "super-secret-pass",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var payload struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Data.Token)
	return payload.Data.Token
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}
