package job

import (
	"context"

	"github.com/hibiken/asynq"

	"marketplace-backend/internal/metrics"
	"marketplace-backend/pkg/logger"
)

const jobCreatePerTransaction = "create_per_transaction"

// HandleCreate runs per-transaction settlement creation over all approved,
// unsettled payments.
func (h *Handlers) HandleCreate(ctx context.Context, t *asynq.Task) error {
	trigger := h.trigger(t)

	return h.runLocked(ctx, jobCreatePerTransaction, trigger, func(ctx context.Context) error {
		rows, err := h.creation.Run(ctx)
		if rows > 0 {
			metrics.SettlementRowsWritten.WithLabelValues("PER_TRANSACTION").Add(float64(rows))
		}
		if err != nil {
			return err
		}

		if rows == 0 {
			logger.Debug("no payments eligible for settlement")
		}
		return nil
	})
}
