/*
Copyright © 2025 hyunwoojo
*/
package cmd

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/hyunwoojo/etf-rag-agent/collector"
	"github.com/hyunwoojo/etf-rag-agent/config"
	"github.com/hyunwoojo/etf-rag-agent/database"
	"github.com/hyunwoojo/etf-rag-agent/handler"
	"github.com/hyunwoojo/etf-rag-agent/logger"
	"github.com/hyunwoojo/etf-rag-agent/repository"
	"github.com/hyunwoojo/etf-rag-agent/scheduler"
	"github.com/hyunwoojo/etf-rag-agent/service"
	"github.com/spf13/cobra"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ETF RAG API server",
	Long:  `Starts the REST/websocket server and, if enabled, the daily collection scheduler.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		logger.Init(cfg.LogLevel)

		ctx := context.Background()

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}

		aiService, err := service.NewAIService(ctx, cfg, "")
		if err != nil {
			log.Fatalf("Failed to create AI service: %v", err)
		}

		ingestService := service.NewIngestService(weaviateDb, cfg.VersioningConfig)
		queryService := service.NewQueryService(weaviateDb, aiService, cfg.RAGConfig)
		coll := collector.NewCollector(cfg.CollectorConfig, cfg.DartAPIKey, ingestService, aiService)

		// Chat transcripts are optional; without MongoDB the chat UI still
		// works, it just doesn't persist.
		var chatRepo repository.ChatRepo
		if cfg.MongoURI != "" {
			mongoClient, err := database.NewMongoClient(ctx, cfg.MongoURI)
			if err != nil {
				log.Fatalf("Failed to connect to MongoDB: %v", err)
			}
			defer mongoClient.Disconnect(ctx)
			chatDb := mongoClient.Database("etf-rag")
			chatRepo = repository.NewChatRepo(chatDb.Collection("sessions"), chatDb.Collection("messages"))
		}
		chatService := service.NewChatService(queryService, chatRepo)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		queryHandler := handler.NewQueryHandler(queryService)
		etfHandler := handler.NewETFHandler(queryService)
		collectionHandler := handler.NewCollectionHandler(coll, weaviateDb, cfg.SchedulerConfig.MetadataFile)
		healthHandler := handler.NewHealthHandler(weaviateDb)
		chatHandler := handler.NewChatHandler(chatService)

		if cfg.SchedulerConfig.Enable {
			sched := scheduler.New(coll, cfg.SchedulerConfig)
			sched.Start(cfg.SchedulerConfig.RunImmediately)
			defer sched.Stop()
		}

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api")
		{
			apiV1.POST("/query", queryHandler.HandleQuery)
			apiV1.GET("/etf/:code", etfHandler.HandleSummary)
			apiV1.POST("/collection/trigger", collectionHandler.HandleTrigger)
			apiV1.GET("/collection/status", collectionHandler.HandleStatus)
			apiV1.GET("/health", healthHandler.HandleHealth)
			apiV1.GET("/chat/:session", chatHandler.HandleTranscript)
			apiV1.DELETE("/chat/:session", chatHandler.HandleDeleteSession)
		}
		router.GET("/ws/chat", chatHandler.HandleChat)

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
