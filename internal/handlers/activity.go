package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-trust/internal/middleware"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
	"github.com/yungbote/neurobridge-trust/internal/services"
)

type ActivityHandler struct {
	log         *logger.Logger
	activitySvc services.ActivityService
}

func NewActivityHandler(log *logger.Logger, activitySvc services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		log:         log.With("handler", "ActivityHandler"),
		activitySvc: activitySvc,
	}
}

type recordActivityRequest struct {
	UserID          uuid.UUID `json:"user_id" binding:"required"`
	ActivityType    string    `json:"activity_type" binding:"required"`
	DeviceSignature string    `json:"device_signature"`
}

// POST /activity
// The network identifier comes from the client-identity middleware, never
// from the request body, and is hashed before it reaches the store.
func (h *ActivityHandler) RecordActivity(c *gin.Context) {
	var req recordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	identity := middleware.GetClientIdentity(c)
	deviceSignature := req.DeviceSignature
	if deviceSignature == "" {
		deviceSignature = identity.DeviceSignature
	}

	if err := h.activitySvc.RecordActivity(c.Request.Context(), req.UserID, identity.NetworkAddress, deviceSignature, req.ActivityType); err != nil {
		RespondError(c, http.StatusBadRequest, "activity_rejected", err)
		return
	}
	c.Status(http.StatusCreated)
}
