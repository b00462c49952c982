package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/neurobridge-trust/internal/handlers"
	"github.com/yungbote/neurobridge-trust/internal/middleware"
	"github.com/yungbote/neurobridge-trust/internal/platform/envutil"
)

type RouterConfig struct {
	TrustHandler      *handlers.TrustHandler
	SimilarityHandler *handlers.SimilarityHandler
	VoteHandler       *handlers.VoteHandler
	ClusterHandler    *handlers.ClusterHandler
	FlagHandler       *handlers.FlagHandler
	ActivityHandler   *handlers.ActivityHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			envutil.String("CORS_ORIGIN", "http://localhost:3000"),
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	router.Use(otelgin.Middleware("neurobridge-trust"))
	router.Use(middleware.CaptureClientIdentity())

	router.GET("/healthcheck", handlers.HealthCheck)
	router.GET("/metrics", handlers.Metrics)

	// Trust
	router.GET("/trust/:userID", cfg.TrustHandler.GetTrustScore)
	router.POST("/trust/:userID/recalculate", cfg.TrustHandler.RecalculateTrustScore)
	// Similarity
	router.POST("/similarity/check", cfg.SimilarityHandler.CheckSimilarity)
	// Votes
	router.POST("/votes", cfg.VoteHandler.RecordVote)
	router.GET("/votes/users/:userID/analysis", cfg.VoteHandler.AnalyzeUserVoting)
	router.GET("/votes/content/:contentType/:contentID/analysis", cfg.VoteHandler.AnalyzeContentVoting)
	// Clusters
	router.GET("/clusters/users/:userID/analysis", cfg.ClusterHandler.AnalyzeSockPuppets)
	// Flags
	router.GET("/flags/users/:userID", cfg.FlagHandler.ListFlags)
	// Activity
	router.POST("/activity", cfg.ActivityHandler.RecordActivity)

	return router
}
