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

type VoteHandler struct {
	log         *logger.Logger
	voteSvc     services.VoteAnalysisService
	activitySvc services.ActivityService
	flagSvc     services.FlagService
}

func NewVoteHandler(log *logger.Logger, voteSvc services.VoteAnalysisService, activitySvc services.ActivityService, flagSvc services.FlagService) *VoteHandler {
	return &VoteHandler{
		log:         log.With("handler", "VoteHandler"),
		voteSvc:     voteSvc,
		activitySvc: activitySvc,
		flagSvc:     flagSvc,
	}
}

// GET /votes/users/:userID/analysis?lookback_days=30
func (h *VoteHandler) AnalyzeUserVoting(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", errors.New("user id must be a uuid"))
		return
	}
	lookbackDays, _ := strconv.Atoi(c.Query("lookback_days"))

	report, err := h.voteSvc.AnalyzeUserVoting(c.Request.Context(), userID, lookbackDays)
	if err != nil {
		RespondError(c, http.StatusServiceUnavailable, "vote_analysis_unavailable", err)
		return
	}

	if report.Recommendation != services.RecommendationAllow {
		if err := h.flagSvc.FlagVoteManipulation(c.Request.Context(), userID, report); err != nil {
			h.log.Warn("Vote manipulation flag write failed", "user_id", userID, "error", err)
		}
	}
	RespondOK(c, report)
}

// GET /votes/content/:contentType/:contentID/analysis
func (h *VoteHandler) AnalyzeContentVoting(c *gin.Context) {
	contentID, err := uuid.Parse(c.Param("contentID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_content_id", errors.New("content id must be a uuid"))
		return
	}
	report, err := h.voteSvc.AnalyzeContentVoting(c.Request.Context(), contentID, c.Param("contentType"))
	if err != nil {
		RespondError(c, http.StatusServiceUnavailable, "vote_analysis_unavailable", err)
		return
	}
	RespondOK(c, report)
}

type recordVoteRequest struct {
	VoterID      uuid.UUID `json:"voter_id" binding:"required"`
	TargetUserID uuid.UUID `json:"target_user_id" binding:"required"`
	VoteType     string    `json:"vote_type" binding:"required"`
	ContentID    uuid.UUID `json:"content_id"`
	ContentType  string    `json:"content_type"`
}

// POST /votes
func (h *VoteHandler) RecordVote(c *gin.Context) {
	var req recordVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.activitySvc.RecordVote(c.Request.Context(), req.VoterID, req.TargetUserID, req.VoteType, req.ContentID, req.ContentType); err != nil {
		RespondError(c, http.StatusBadRequest, "vote_rejected", err)
		return
	}
	c.Status(http.StatusCreated)
}
