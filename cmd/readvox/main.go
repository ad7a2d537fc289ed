package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/readvox/readvox/internal/ai"
	"github.com/readvox/readvox/internal/config"
	"github.com/readvox/readvox/internal/db"
	"github.com/readvox/readvox/internal/filestore"
	"github.com/readvox/readvox/internal/handler"
	"github.com/readvox/readvox/internal/job"
	"github.com/readvox/readvox/internal/middleware"
	"github.com/readvox/readvox/internal/repo"
	"github.com/readvox/readvox/internal/schedule"
	"github.com/readvox/readvox/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "readvox",
		Short: "readvox backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run readvox server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("file_store", cfg.FileStore.Type),
	)

	userRepo := repo.NewUserRepo(conn)
	docRepo := repo.NewDocumentRepo(conn)
	sessionRepo := repo.NewChatSessionRepo(conn)
	historyRepo := repo.NewChatHistoryRepo(conn)
	suggestionRepo := repo.NewSuggestedQuestionRepo(conn)
	embeddingRepo := repo.NewEmbeddingRepo(conn)
	videoJobRepo := repo.NewVideoJobRepo(conn)

	aiProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	aiManager := ai.NewManager(
		ai.NewGenerator(aiProvider, cfg.AI.Model),
		ai.NewGenerator(aiProvider, cfg.AI.Model),
		ai.NewGenerator(aiProvider, cfg.AI.Model),
		ai.NewGenerator(aiProvider, cfg.AI.Model),
		ai.NewEmbedder(aiProvider, cfg.AI.EmbedModel),
		ai.ManagerConfig{Timeout: cfg.AI.Timeout, MaxInputChars: cfg.AI.MaxInputChars},
	)

	jwtTTL := time.Hour * time.Duration(cfg.JWTTTLHours)
	authService := service.NewAuthService(userRepo, []byte(cfg.JWTSecret), jwtTTL, cfg.Properties.EnableUserRegister)
	documentService := service.NewDocumentService(conn, docRepo, sessionRepo, historyRepo, suggestionRepo, embeddingRepo, aiManager)
	chatService := service.NewChatService(conn, docRepo, sessionRepo, historyRepo)
	aiService := service.NewAIService(aiManager)
	suggestionService := service.NewSuggestionService(docRepo, suggestionRepo, aiService)
	videoService := service.NewVideoService(videoJobRepo, aiService, time.Hour*time.Duration(cfg.Video.JobTTLHours))

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	deps := handler.RouterDeps{
		Auth:            handler.NewAuthHandler(authService),
		Users:           handler.NewUserHandler(authService),
		Documents:       handler.NewDocumentHandler(documentService, chatService, suggestionService),
		Chats:           handler.NewChatHandler(chatService),
		AI:              handler.NewAIHandler(aiService, documentService, chatService, suggestionService),
		Extract:         handler.NewExtractHandler(),
		Videos:          handler.NewVideoHandler(videoService),
		Files:           handler.NewFileHandler(store),
		JWTSecret:       []byte(cfg.JWTSecret),
		AuthLimitWindow: time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewVideoCleanupJob(videoService), "*/30 * * * *"); err != nil {
		return fmt.Errorf("schedule video cleanup: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
