package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgconn"

	"marketplace-backend/internal/config"
	"marketplace-backend/internal/domains/settlement/repository"
	"marketplace-backend/internal/domains/settlement/service"
	"marketplace-backend/internal/infrastructure/alert"
	"marketplace-backend/internal/infrastructure/cache"
	"marketplace-backend/internal/metrics"
	"marketplace-backend/internal/shared"
	"marketplace-backend/internal/shared/utils"
	"marketplace-backend/pkg/logger"
)

// Locker is the per-job run lock. Acquire hands out a run token that must be
// passed back to Release, so a run that outlived its TTL cannot drop a lock a
// successor now owns.
type Locker interface {
	Acquire(ctx context.Context, jobName string) (token string, acquired bool, err error)
	Release(ctx context.Context, jobName, token string) error
}

var _ Locker = (*cache.RunLock)(nil)

// Handlers owns the settlement batch jobs. Every handler runs under a
// per-job redis lock, reports its outcome to prometheus, and escalates
// fatal failures to the chat-ops notifier before letting asynq retry.
type Handlers struct {
	creation    *service.CreationService
	aggregation *service.AggregationService
	settlements repository.RepositoryInterface
	lock        Locker
	notifier    alert.Notifier
	cfg         config.SettlementConfig
	now         func() time.Time
}

func NewHandlers(
	creation *service.CreationService,
	aggregation *service.AggregationService,
	settlements repository.RepositoryInterface,
	lock Locker,
	notifier alert.Notifier,
	cfg config.SettlementConfig,
) *Handlers {
	return &Handlers{
		creation:    creation,
		aggregation: aggregation,
		settlements: settlements,
		lock:        lock,
		notifier:    notifier,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (h *Handlers) trigger(t *asynq.Task) shared.BatchTrigger {
	var payload shared.SettlementJobPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		logger.Warn("settlement task payload unreadable, treating as scheduled run", map[string]interface{}{
			"task": t.Type(),
		})
		return shared.BatchTrigger{FiredAt: h.now(), ExecutionType: "scheduled"}
	}
	if payload.Trigger.FiredAt.IsZero() {
		payload.Trigger.FiredAt = h.now()
	}
	if payload.Trigger.ExecutionType == "" {
		payload.Trigger.ExecutionType = "scheduled"
	}
	return payload.Trigger
}

// runLocked is the shared batch envelope: skip when another run holds the
// lock, time the run, count the outcome, alert on failure.
func (h *Handlers) runLocked(ctx context.Context, jobName string, trigger shared.BatchTrigger, fn func(context.Context) error) error {
	token, acquired, err := h.lock.Acquire(ctx, jobName)
	if err != nil {
		metrics.SettlementJobRuns.WithLabelValues(jobName, "failure").Inc()
		h.notifier.NotifyBatchFailure(ctx, jobName, err)
		return err
	}
	if !acquired {
		logger.Warn("settlement job already running, skipping this firing", map[string]interface{}{
			"job":      jobName,
			"fired_at": trigger.FiredAt,
		})
		metrics.SettlementJobRuns.WithLabelValues(jobName, "skipped_lock").Inc()
		return nil
	}
	defer func() {
		if err := h.lock.Release(context.WithoutCancel(ctx), jobName, token); err != nil {
			logger.Error("failed to release settlement run lock", err)
		}
	}()

	logger.Info("settlement job started", map[string]interface{}{
		"job":            jobName,
		"execution_type": trigger.ExecutionType,
		"fired_at":       trigger.FiredAt,
	})

	start := h.now()
	runErr := fn(ctx)
	metrics.SettlementJobDuration.WithLabelValues(jobName).Observe(h.now().Sub(start).Seconds())

	if runErr != nil {
		metrics.SettlementJobRuns.WithLabelValues(jobName, "failure").Inc()
		logger.Error("settlement job failed", runErr)
		h.notifier.NotifyBatchFailure(ctx, jobName, runErr)
		return runErr
	}

	metrics.SettlementJobRuns.WithLabelValues(jobName, "success").Inc()
	logger.Info("settlement job finished", map[string]interface{}{
		"job":        jobName,
		"duration_s": h.now().Sub(start).Seconds(),
	})
	return nil
}

// forEachBrand walks the brand table in chunks and applies fn per brand.
// Data-access failures (postgres errors) on a single brand are skipped and
// counted; once the skip budget is exhausted, or on any other error kind,
// the run fails.
func (h *Handlers) forEachBrand(ctx context.Context, jobName string, fn func(ctx context.Context, brandID int64) error) error {
	skipped := 0
	afterID := int64(0)

	for {
		brandIDs, err := h.settlements.ListBrandIDs(ctx, afterID, h.cfg.BrandChunkSize)
		if err != nil {
			return fmt.Errorf("list brands after %d: %w", afterID, err)
		}
		if len(brandIDs) == 0 {
			return nil
		}

		for _, brandID := range brandIDs {
			if err := fn(ctx, brandID); err != nil {
				var pgErr *pgconn.PgError
				if !errors.As(err, &pgErr) {
					return fmt.Errorf("brand %d: %w", brandID, err)
				}

				skipped++
				metrics.SettlementBrandsSkipped.WithLabelValues(jobName).Inc()
				logger.Error(fmt.Sprintf("skipping brand %d after data-access failure", brandID), err)
				if skipped > h.cfg.SkipLimit {
					return fmt.Errorf("skip limit %d exceeded: %w", h.cfg.SkipLimit, err)
				}
			}
		}

		afterID = brandIDs[len(brandIDs)-1]
	}
}
