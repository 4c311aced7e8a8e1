package lifecycle

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
	"go.uber.org/zap"
)

// Phase names a hook list
type Phase string

const (
	PhaseMount   Phase = "on_mount"
	PhaseUnmount Phase = "on_unmount"
)

// Runner executes one hook. Failures are already isolated by the runner;
// the error is only reported.
type Runner interface {
	Run(ctx context.Context, toolID string, params map[string]interface{}) (interface{}, error)
}

// Report summarises one phase
type Report struct {
	Phase  Phase
	Ran    int
	Failed []string
}

// Controller runs the lifecycle hooks of an app spec
type Controller struct {
	runner  Runner
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewController creates a lifecycle controller
func NewController(runner Runner, logger *zap.Logger, metrics *monitoring.Metrics) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		runner:  runner,
		logger:  logger.Named("lifecycle"),
		metrics: metrics,
	}
}

// Mount runs on_mount hooks in order
func (c *Controller) Mount(ctx context.Context, spec *types.AppSpec) Report {
	if spec == nil {
		return Report{Phase: PhaseMount}
	}
	return c.run(ctx, PhaseMount, spec.LifecycleHooks.OnMount)
}

// Unmount runs on_unmount hooks in order
func (c *Controller) Unmount(ctx context.Context, spec *types.AppSpec) Report {
	if spec == nil {
		return Report{Phase: PhaseUnmount}
	}
	return c.run(ctx, PhaseUnmount, spec.LifecycleHooks.OnUnmount)
}

// run executes every hook sequentially. A failing hook never stops the rest.
func (c *Controller) run(ctx context.Context, phase Phase, hooks []string) Report {
	report := Report{Phase: phase}
	for _, hook := range hooks {
		report.Ran++
		if _, err := c.runner.Run(ctx, hook, map[string]interface{}{}); err != nil {
			report.Failed = append(report.Failed, hook)
			c.metrics.RecordHook(string(phase), "error")
			c.logger.Warn("lifecycle hook failed",
				zap.String("phase", string(phase)),
				zap.String("hook", hook),
				zap.Error(err))
			continue
		}
		c.metrics.RecordHook(string(phase), "success")
	}

	if report.Ran > 0 {
		c.logger.Debug("lifecycle hooks complete",
			zap.String("phase", string(phase)),
			zap.Int("ran", report.Ran),
			zap.Int("failed", len(report.Failed)))
	}
	return report
}
