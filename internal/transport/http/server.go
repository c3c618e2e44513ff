package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"docuchat/internal/ai"
	appsvc "docuchat/internal/app"
	"docuchat/internal/bootstrap"
	"docuchat/internal/cache"
	"docuchat/internal/platform/rabbitmq"
	"docuchat/internal/repository"
	"docuchat/internal/transport/http/handler"
	"docuchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	cfg := app.Config
	chatConfig := ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	}
	embConfig := ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
	}
	aiClient := ai.NewOpenAICompatibleClient()

	userRepo := repository.NewUserRepository(app.DB)
	sessionRepo := repository.NewSessionRepository(app.DB)
	messageRepo := repository.NewMessageRepository(app.DB)
	documentRepo := repository.NewDocumentRepository(app.DB)
	chunkRepo := repository.NewChunkRepository(app.DB)
	promptRepo := repository.NewPromptRepository(app.DB)
	settingRepo := repository.NewSettingRepository(app.DB)

	publisher := rabbitmq.NewMessagePublisher(app.MQConn, cfg.RabbitMQ.MessagePersistQueue)
	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)

	authService := appsvc.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	chatService := appsvc.NewChatService(
		sessionRepo,
		messageRepo,
		publisher,
		historyCache,
		settingRepo,
		chatConfig,
		cfg.LLM.MaxContextMessage,
	)
	ingestService := appsvc.NewIngestService(
		documentRepo,
		chunkRepo,
		aiClient,
		embConfig,
		appsvc.IngestConfig{
			ChunkSize:      cfg.RAG.ChunkSize,
			ChunkOverlap:   cfg.RAG.ChunkOverlap,
			Dimension:      cfg.RAG.EmbeddingDimension,
			EmbedBatchSize: cfg.RAG.EmbedBatchSize,
			EmbedTimeout:   time.Duration(cfg.RAG.EmbedTimeoutSeconds) * time.Second,
			SaveUploads:    cfg.RAG.SaveUploads,
			UploadDir:      cfg.RAG.UploadDir,
		},
		app.Logger,
	)
	retrievalService := appsvc.NewRetrievalService(
		chunkRepo,
		settingRepo,
		aiClient,
		embConfig,
		aiClient,
		chatConfig,
		cfg.RAG.TopK,
		time.Duration(cfg.RAG.EmbedTimeoutSeconds)*time.Second,
		app.Logger,
	)
	promptService := appsvc.NewPromptService(promptRepo)
	settingService := appsvc.NewSettingService(settingRepo)

	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)
	documentHandler := handler.NewDocumentHandler(ingestService, cfg.RAG.MaxUploadBytes)
	ragHandler := handler.NewRAGHandler(retrievalService)
	promptHandler := handler.NewPromptHandler(promptService)
	settingHandler := handler.NewSettingHandler(settingService)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(cfg.Auth.JWTSecret), authHandler.Me)

	authed := v1.Group("")
	authed.Use(middleware.AuthJWT(cfg.Auth.JWTSecret))

	documentGroup := authed.Group("/documents")
	documentGroup.POST("", documentHandler.Upload)
	documentGroup.GET("", documentHandler.List)
	documentGroup.DELETE("/:id", documentHandler.Delete)

	authed.POST("/rag/ask", ragHandler.Ask)

	promptGroup := authed.Group("/prompts")
	promptGroup.POST("", promptHandler.Create)
	promptGroup.GET("", promptHandler.List)
	promptGroup.PUT("/:id", promptHandler.Update)
	promptGroup.DELETE("/:id", promptHandler.Delete)

	settingGroup := authed.Group("/settings")
	settingGroup.GET("", settingHandler.Get)
	settingGroup.PUT("", settingHandler.Update)

	chatGroup := authed.Group("/chat")
	chatGroup.POST("/sessions", chatHandler.CreateSession)
	chatGroup.GET("/sessions", chatHandler.ListSessions)
	chatGroup.DELETE("/sessions/:id", chatHandler.DeleteSession)
	chatGroup.POST("/messages", chatHandler.SendMessage)
	chatGroup.POST("/messages/stream", chatHandler.StreamMessage)
	chatGroup.GET("/history", chatHandler.GetHistory)

	return router
}
