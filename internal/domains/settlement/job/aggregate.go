package job

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"marketplace-backend/internal/domains/settlement/service"
	"marketplace-backend/internal/shared"
	"marketplace-backend/pkg/logger"
)

const (
	jobAggregateDaily   = "aggregate_daily"
	jobAggregateWeekly  = "aggregate_weekly"
	jobAggregateMonthly = "aggregate_monthly"
	jobAggregateYearly  = "aggregate_yearly"
)

// targetDate resolves the reference date for an aggregation run: a manual
// trigger may carry an explicit date, scheduled runs use the firing time.
func (h *Handlers) targetDate(trigger shared.BatchTrigger) (time.Time, bool) {
	if trigger.TargetDate == "" {
		return time.Time{}, false
	}
	date, err := time.Parse("2006-01-02", trigger.TargetDate)
	if err != nil {
		logger.Warn("invalid target date on settlement trigger, using schedule-relative period", map[string]interface{}{
			"target_date": trigger.TargetDate,
		})
		return time.Time{}, false
	}
	return date, true
}

// HandleAggregateDaily rolls per-transaction rows up into one daily aggregate
// per brand, normally for yesterday.
func (h *Handlers) HandleAggregateDaily(ctx context.Context, t *asynq.Task) error {
	trigger := h.trigger(t)

	date := service.DailyTarget(h.now())
	if target, ok := h.targetDate(trigger); ok {
		date = target
	}

	return h.runLocked(ctx, jobAggregateDaily, trigger, func(ctx context.Context) error {
		return h.forEachBrand(ctx, jobAggregateDaily, func(ctx context.Context, brandID int64) error {
			_, err := h.aggregation.AggregateDaily(ctx, brandID, date)
			return err
		})
	})
}

// HandleAggregateWeekly rolls daily aggregates up into one weekly aggregate
// per brand, normally for the week that ended last Sunday.
func (h *Handlers) HandleAggregateWeekly(ctx context.Context, t *asynq.Task) error {
	trigger := h.trigger(t)

	start, end := service.WeeklyWindow(h.now())
	if target, ok := h.targetDate(trigger); ok {
		start, end = weekContaining(target)
	}

	return h.runLocked(ctx, jobAggregateWeekly, trigger, func(ctx context.Context) error {
		return h.forEachBrand(ctx, jobAggregateWeekly, func(ctx context.Context, brandID int64) error {
			_, err := h.aggregation.AggregateWeekly(ctx, brandID, start, end)
			return err
		})
	})
}

// HandleAggregateMonthly rolls daily aggregates up into one monthly aggregate
// per brand, normally for the month that just ended.
func (h *Handlers) HandleAggregateMonthly(ctx context.Context, t *asynq.Task) error {
	trigger := h.trigger(t)

	year, month := service.MonthlyWindow(h.now())
	if target, ok := h.targetDate(trigger); ok {
		year, month = target.Year(), target.Month()
	}

	return h.runLocked(ctx, jobAggregateMonthly, trigger, func(ctx context.Context) error {
		return h.forEachBrand(ctx, jobAggregateMonthly, func(ctx context.Context, brandID int64) error {
			_, err := h.aggregation.AggregateMonthly(ctx, brandID, year, month)
			return err
		})
	})
}

// HandleAggregateYearly rolls monthly aggregates up into one yearly aggregate
// per brand, normally for the year that just ended.
func (h *Handlers) HandleAggregateYearly(ctx context.Context, t *asynq.Task) error {
	trigger := h.trigger(t)

	year := service.YearlyWindow(h.now())
	if target, ok := h.targetDate(trigger); ok {
		year = target.Year()
	}

	return h.runLocked(ctx, jobAggregateYearly, trigger, func(ctx context.Context) error {
		return h.forEachBrand(ctx, jobAggregateYearly, func(ctx context.Context, brandID int64) error {
			_, err := h.aggregation.AggregateYearly(ctx, brandID, year)
			return err
		})
	})
}

// weekContaining returns the Monday..Sunday span around date.
func weekContaining(date time.Time) (start, end time.Time) {
	offset := (int(date.Weekday()) + 6) % 7 // Monday = 0
	start = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()).AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}
