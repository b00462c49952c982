package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
	"github.com/yungbote/neurobridge-trust/internal/services"
)

type TrustHandler struct {
	log      *logger.Logger
	trustSvc services.TrustService
}

func NewTrustHandler(log *logger.Logger, trustSvc services.TrustService) *TrustHandler {
	return &TrustHandler{
		log:      log.With("handler", "TrustHandler"),
		trustSvc: trustSvc,
	}
}

// GET /trust/:userID
func (h *TrustHandler) GetTrustScore(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", errors.New("user id must be a uuid"))
		return
	}
	result, err := h.trustSvc.GetTrustScore(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, http.StatusServiceUnavailable, "trust_unavailable", err)
		return
	}
	RespondOK(c, result)
}

// POST /trust/:userID/recalculate
func (h *TrustHandler) RecalculateTrustScore(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", errors.New("user id must be a uuid"))
		return
	}
	result, err := h.trustSvc.CalculateTrustScore(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, http.StatusServiceUnavailable, "trust_unavailable", err)
		return
	}
	RespondOK(c, result)
}
