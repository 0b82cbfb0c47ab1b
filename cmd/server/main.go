package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"insightapi/internal/analysis"
	"insightapi/internal/cache"
	"insightapi/internal/config"
	"insightapi/internal/oracle"
	"insightapi/internal/repository"
	"insightapi/internal/service"
	"insightapi/internal/transport/rest"
)

const rewriteSystemPrompt = "You rewrite survey answers into short, neutral phrases. Reply with the rewritten phrase only."

func main() {
	// Best effort; env vars may come from the environment directly
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()
	aiConfig := config.DefaultAIConfig()
	if err := aiConfig.Validate(); err != nil {
		logger.Fatal("invalid AI configuration", zap.Error(err))
	}
	logger.Info("AI configuration",
		zap.String("embeddingModel", aiConfig.Models.Embedding),
		zap.String("rewriteModel", aiConfig.Models.Rewrite),
		zap.String("sentimentModel", aiConfig.Models.Sentiment),
		zap.String("translationModel", aiConfig.Models.Translation),
		zap.Bool("translationEnabled", aiConfig.TranslationEnabled))

	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		logger.Fatal("failed to ping MongoDB", zap.Error(err))
	}
	logger.Info("connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal("failed to ensure indexes", zap.Error(err))
	}

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Fatal("failed to ping Redis", zap.Error(err))
	}
	logger.Info("connected to Redis")

	// Model oracles
	client := oracle.NewOpenAIClient(aiConfig)
	embedder := oracle.NewOpenAIEmbedder(client, aiConfig.Models.Embedding)
	generator := oracle.NewOpenAIGenerator(client, aiConfig.Models.Rewrite, rewriteSystemPrompt)
	classifier, err := oracle.NewOpenAIClassifier(client, aiConfig.Models.Sentiment)
	if err != nil {
		logger.Fatal("failed to build sentiment classifier", zap.Error(err))
	}
	translator := oracle.NewOpenAITranslator(client, aiConfig.Models.Translation, aiConfig.TranslationTask)
	detector := oracle.NewLinguaDetector()

	// Analysis pipeline
	translate := analysis.NewTranslatePipeline(aiConfig.TranslationEnabled, aiConfig.DetectLanguage, detector, translator, logger)
	rewriter := analysis.NewRewriter(generator, translate, aiConfig, logger)
	summarizer := analysis.NewClusterSummarizer(embedder, rewriter, aiConfig, logger)
	scorer := analysis.NewSentimentScorer(classifier, translate)
	extractor := analysis.NewIdeaExtractor(embedder, logger)
	themes := analysis.NewThemeSummarizer(embedder, generator, extractor, logger)

	// Persistence
	analysisRepo := repository.NewAnalysisRepo(db)
	analysisCache := cache.NewAnalysisCache(rdb)

	// Services
	authSvc := service.NewAuthService(cfg.AuthSigningKey)
	analyzeSvc := service.NewAnalyzeService(summarizer, scorer, extractor, themes, analysisRepo, analysisCache, logger)
	statsSvc := service.NewStatsService(analysisRepo)

	router := rest.NewRouter(&rest.Container{
		AnalyzeService: analyzeSvc,
		StatsService:   statsSvc,
		AuthService:    authSvc,
		MaxInFlight:    cfg.WorkerCount,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.HTTPPort),
			zap.Bool("authEnabled", authSvc.Enabled()),
			zap.Int("maxInFlight", cfg.WorkerCount))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("ListenAndServe", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
