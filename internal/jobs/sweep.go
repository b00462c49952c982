package jobs

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/neurobridge-trust/internal/data/repos"
	"github.com/yungbote/neurobridge-trust/internal/observability"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
	"github.com/yungbote/neurobridge-trust/internal/platform/envutil"
	"github.com/yungbote/neurobridge-trust/internal/services"
)

const ActivityRecomputeActiveUsers = "RecomputeActiveUsers"

type SweepResult struct {
	ActiveUsers int `json:"active_users"`
	Recomputed  int `json:"recomputed"`
	Failed      int `json:"failed"`
}

// TrustSweepWorkflow recomputes trust for every recently active user. It
// runs on a cron schedule; one activity does all the work so a retry
// restarts the whole sweep (recomputation is idempotent).
func TrustSweepWorkflow(ctx workflow.Context) error {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	var out SweepResult
	if err := workflow.ExecuteActivity(ctx, ActivityRecomputeActiveUsers).Get(ctx, &out); err != nil {
		return err
	}
	workflow.GetLogger(ctx).Info("Trust sweep complete",
		"active_users", out.ActiveUsers, "recomputed", out.Recomputed, "failed", out.Failed)
	return nil
}

type SweepActivities struct {
	log      *logger.Logger
	activity repos.ActivityLogRepo
	trustSvc services.TrustService
}

func NewSweepActivities(log *logger.Logger, activity repos.ActivityLogRepo, trustSvc services.TrustService) *SweepActivities {
	return &SweepActivities{
		log:      log.With("service", "SweepActivities"),
		activity: activity,
		trustSvc: trustSvc,
	}
}

func (a *SweepActivities) RecomputeActiveUsers(ctx context.Context) (SweepResult, error) {
	windowHours := envutil.Int("TRUST_SWEEP_WINDOW_HOURS", 24)
	since := time.Now().UTC().Add(-time.Duration(windowHours) * time.Hour)

	userIDs, err := a.activity.DistinctUserIDsSince(dbctx.Context{Ctx: ctx}, since)
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{ActiveUsers: len(userIDs)}
	for _, id := range userIDs {
		if _, err := a.trustSvc.CalculateTrustScore(ctx, id); err != nil {
			a.log.Warn("Sweep recompute failed", "user_id", id, "error", err)
			result.Failed++
			continue
		}
		result.Recomputed++
	}
	observability.Current().ObserveSweepRun()
	return result, nil
}
