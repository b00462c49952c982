package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/neurobridge-trust/internal/config"
	"github.com/yungbote/neurobridge-trust/internal/data/db"
	"github.com/yungbote/neurobridge-trust/internal/data/repos"
	"github.com/yungbote/neurobridge-trust/internal/handlers"
	"github.com/yungbote/neurobridge-trust/internal/jobs"
	"github.com/yungbote/neurobridge-trust/internal/observability"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
	"github.com/yungbote/neurobridge-trust/internal/platform/envutil"
	"github.com/yungbote/neurobridge-trust/internal/platform/openai"
	"github.com/yungbote/neurobridge-trust/internal/platform/redisdb"
	"github.com/yungbote/neurobridge-trust/internal/server"
	"github.com/yungbote/neurobridge-trust/internal/services"
	"github.com/yungbote/neurobridge-trust/internal/temporalx"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Config load failed", "error", err)
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Observability
	observability.Init()
	shutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "neurobridge-trust",
		Environment: envutil.String("ENVIRONMENT", "development"),
		Version:     envutil.String("SERVICE_VERSION", "dev"),
	})
	if shutdown != nil {
		defer shutdown(context.Background())
	}

	// Redis (optional snapshot cache)
	cache, err := redisdb.New(log)
	if err != nil {
		log.Warn("Redis init failed; continuing without cache", "error", err)
		cache = nil
	}

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	voteRepo := repos.NewVoteRepo(thePG, log)
	answerRepo := repos.NewAnswerRepo(thePG, log)
	activityLogRepo := repos.NewActivityLogRepo(thePG, log)
	masteryRepo := repos.NewMasteryRepo(thePG, log)
	factCheckRepo := repos.NewFactCheckRepo(thePG, log)
	fingerprintRepo := repos.NewFingerprintRepo(thePG, log)
	abuseFlagRepo := repos.NewAbuseFlagRepo(thePG, log)
	snapshotRepo := repos.NewSnapshotRepo(thePG, log)

	// Services
	log.Info("Setting up services from main...")
	var oaiClient openai.Client
	if os.Getenv("OPENAI_API_KEY") != "" {
		oaiClient, err = openai.NewClient(log)
		if err != nil {
			log.Warn("OpenAI client init failed; trigram vectorizer will be used", "error", err)
		}
	}
	vectorizer := services.NewVectorizer(cfg.Similarity.EmbeddingDims, oaiClient)

	similarityService := services.NewSimilarityService(thePG, log, cfg, vectorizer, fingerprintRepo)
	voteAnalysisService := services.NewVoteAnalysisService(thePG, log, cfg, voteRepo)
	clusteringService := services.NewClusteringService(thePG, log, cfg, activityLogRepo, voteRepo)
	flagService := services.NewFlagService(thePG, log, cfg, abuseFlagRepo)
	activityService := services.NewActivityService(thePG, log, cfg, activityLogRepo, voteRepo)
	trustService := services.NewTrustService(thePG, log, cfg, cache,
		userRepo, masteryRepo, factCheckRepo, answerRepo, voteRepo, abuseFlagRepo, snapshotRepo,
		clusteringService)

	// Handlers
	log.Info("Setting up handlers from main...")
	trustHandler := handlers.NewTrustHandler(log, trustService)
	similarityHandler := handlers.NewSimilarityHandler(log, similarityService, flagService)
	voteHandler := handlers.NewVoteHandler(log, voteAnalysisService, activityService, flagService)
	clusterHandler := handlers.NewClusterHandler(log, clusteringService, flagService)
	flagHandler := handlers.NewFlagHandler(log, flagService)
	activityHandler := handlers.NewActivityHandler(log, activityService)

	// Temporal sweep worker
	tc, err := temporalx.NewClient(log)
	if err != nil {
		log.Warn("Temporal init failed; trust sweep disabled", "error", err)
	}
	if tc != nil {
		defer tc.Close()
		sweepActivities := jobs.NewSweepActivities(log, activityLogRepo, trustService)
		runner, err := jobs.NewRunner(log, tc, sweepActivities)
		if err != nil {
			log.Warn("Sweep runner init failed", "error", err)
		} else {
			go func() {
				if err := runner.Start(context.Background()); err != nil {
					log.Warn("Sweep worker stopped", "error", err)
				}
			}()
		}
	}

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		TrustHandler:      trustHandler,
		SimilarityHandler: similarityHandler,
		VoteHandler:       voteHandler,
		ClusterHandler:    clusterHandler,
		FlagHandler:       flagHandler,
		ActivityHandler:   activityHandler,
	})

	port := envutil.String("PORT", "8080")
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
