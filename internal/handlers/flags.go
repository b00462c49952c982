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

type FlagHandler struct {
	log     *logger.Logger
	flagSvc services.FlagService
}

func NewFlagHandler(log *logger.Logger, flagSvc services.FlagService) *FlagHandler {
	return &FlagHandler{
		log:     log.With("handler", "FlagHandler"),
		flagSvc: flagSvc,
	}
}

// GET /flags/users/:userID?limit=50
func (h *FlagHandler) ListFlags(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", errors.New("user id must be a uuid"))
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	flags, err := h.flagSvc.ListFlags(c.Request.Context(), userID, limit)
	if err != nil {
		RespondError(c, http.StatusServiceUnavailable, "flags_unavailable", err)
		return
	}
	RespondOK(c, gin.H{"flags": flags})
}
