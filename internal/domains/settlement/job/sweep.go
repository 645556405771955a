package job

import (
	"context"

	"github.com/hibiken/asynq"

	"marketplace-backend/pkg/logger"
)

const jobCompleteSweep = "complete_sweep"

// HandleCompleteSweep promotes PENDING aggregates older than the grace
// period to COMPLETED across every granularity.
func (h *Handlers) HandleCompleteSweep(ctx context.Context, t *asynq.Task) error {
	trigger := h.trigger(t)

	return h.runLocked(ctx, jobCompleteSweep, trigger, func(ctx context.Context) error {
		cutoff := h.now().AddDate(0, 0, -h.cfg.CompletionGraceDays)

		completed, err := h.aggregation.CompletePending(ctx, cutoff)
		if err != nil {
			return err
		}

		logger.Info("pending settlements completed", map[string]interface{}{
			"job":       jobCompleteSweep,
			"cutoff":    cutoff.Format("2006-01-02"),
			"completed": completed,
		})
		return nil
	})
}
