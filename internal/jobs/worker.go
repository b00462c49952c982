package jobs

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
	"github.com/yungbote/neurobridge-trust/internal/platform/envutil"
	"github.com/yungbote/neurobridge-trust/internal/temporalx"
)

type Runner struct {
	log        *logger.Logger
	tc         temporalsdkclient.Client
	activities *SweepActivities
}

func NewRunner(log *logger.Logger, tc temporalsdkclient.Client, activities *SweepActivities) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if activities == nil {
		return nil, fmt.Errorf("sweep activities missing")
	}
	return &Runner{log: log, tc: tc, activities: activities}, nil
}

// Start registers the sweep workflow, kicks off its cron execution and
// polls the task queue until ctx is cancelled.
func (r *Runner) Start(ctx context.Context) error {
	cfg := temporalx.LoadConfig()
	r.log.Info("Starting trust sweep worker", "task_queue", cfg.TaskQueue)

	w := worker.New(r.tc, cfg.TaskQueue, worker.Options{})
	w.RegisterWorkflow(TrustSweepWorkflow)
	w.RegisterActivity(r.activities.RecomputeActiveUsers)

	cron := envutil.String("TRUST_SWEEP_CRON", "@every 1h")
	_, err := r.tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:           "trust-sweep",
		TaskQueue:    cfg.TaskQueue,
		CronSchedule: cron,
	}, TrustSweepWorkflow)
	if err != nil {
		var already *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &already) {
			r.log.Info("Trust sweep cron already scheduled")
		} else {
			r.log.Warn("Trust sweep cron start failed", "error", err)
		}
	}

	if err := w.Start(); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	<-ctx.Done()
	w.Stop()
	return nil
}
