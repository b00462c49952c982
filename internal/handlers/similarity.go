package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
	"github.com/yungbote/neurobridge-trust/internal/services"
)

type SimilarityHandler struct {
	log           *logger.Logger
	similaritySvc services.SimilarityService
	flagSvc       services.FlagService
}

func NewSimilarityHandler(log *logger.Logger, similaritySvc services.SimilarityService, flagSvc services.FlagService) *SimilarityHandler {
	return &SimilarityHandler{
		log:           log.With("handler", "SimilarityHandler"),
		similaritySvc: similaritySvc,
		flagSvc:       flagSvc,
	}
}

type checkSimilarityRequest struct {
	ContentID   uuid.UUID `json:"content_id" binding:"required"`
	ContentType string    `json:"content_type" binding:"required"`
	OwnerID     uuid.UUID `json:"owner_id" binding:"required"`
	Text        string    `json:"text" binding:"required"`
	AutoStore   *bool     `json:"auto_store"`
}

// POST /similarity/check
func (h *SimilarityHandler) CheckSimilarity(c *gin.Context) {
	var req checkSimilarityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	autoStore := true
	if req.AutoStore != nil {
		autoStore = *req.AutoStore
	}

	report, err := h.similaritySvc.CheckSimilarity(c.Request.Context(), req.ContentID, req.ContentType, req.OwnerID, req.Text, autoStore)
	if err != nil {
		RespondError(c, http.StatusServiceUnavailable, "similarity_unavailable", err)
		return
	}

	if report.Recommendation != services.RecommendationAllow {
		if err := h.flagSvc.FlagDuplicateContent(c.Request.Context(), req.OwnerID, report); err != nil {
			h.log.Warn("Duplicate content flag write failed", "owner_id", req.OwnerID, "error", err)
		}
	}
	RespondOK(c, report)
}
