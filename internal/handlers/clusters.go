package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
	"github.com/yungbote/neurobridge-trust/internal/services"
)

type ClusterHandler struct {
	log           *logger.Logger
	clusteringSvc services.ClusteringService
	flagSvc       services.FlagService
}

func NewClusterHandler(log *logger.Logger, clusteringSvc services.ClusteringService, flagSvc services.FlagService) *ClusterHandler {
	return &ClusterHandler{
		log:           log.With("handler", "ClusterHandler"),
		clusteringSvc: clusteringSvc,
		flagSvc:       flagSvc,
	}
}

// GET /clusters/users/:userID/analysis?lookback_days=7
func (h *ClusterHandler) AnalyzeSockPuppets(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", errors.New("user id must be a uuid"))
		return
	}
	lookbackDays, _ := strconv.Atoi(c.Query("lookback_days"))

	report, err := h.clusteringSvc.AnalyzeSockPuppets(c.Request.Context(), userID, lookbackDays)
	if err != nil {
		RespondError(c, http.StatusServiceUnavailable, "clustering_unavailable", err)
		return
	}

	if report.Recommendation != services.RecommendationAllow {
		if err := h.flagSvc.FlagSockPuppet(c.Request.Context(), userID, report); err != nil {
			h.log.Warn("Sock puppet flag write failed", "user_id", userID, "error", err)
		}
	}
	RespondOK(c, report)
}
