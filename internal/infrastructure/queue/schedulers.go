package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"marketplace-backend/internal/shared"
	"marketplace-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddress, redisPassword string, redisDB int) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress, Password: redisPassword, DB: redisDB},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

func (s *Scheduler) RegisterSettlementJobs() error {
	if err := s.registerCreatePerTransactionJob(); err != nil {
		return err
	}

	if err := s.registerAggregateDailyJob(); err != nil {
		return err
	}

	if err := s.registerAggregateWeeklyJob(); err != nil {
		return err
	}

	if err := s.registerAggregateMonthlyJob(); err != nil {
		return err
	}

	if err := s.registerAggregateYearlyJob(); err != nil {
		return err
	}

	if err := s.registerCompleteSweepJob(); err != nil {
		return err
	}

	return nil
}

func scheduledTask(taskType string) (*asynq.Task, error) {
	payload, err := json.Marshal(shared.SettlementJobPayload{
		Trigger: shared.BatchTrigger{ExecutionType: "scheduled"},
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, payload), nil
}

// ================================================
// JOB 1: Create Per-Transaction Settlements (Every minute)
// ================================================
func (s *Scheduler) registerCreatePerTransactionJob() error {
	task, err := scheduledTask(shared.TypeSettlementCreate)
	if err != nil {
		return err
	}

	_, err = s.scheduler.Register(
		"* * * * *", // Every minute; the run lock collapses overlapping firings
		task,
		asynq.Queue(shared.QueueCritical),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register CreatePerTransaction job", err)
		return err
	}

	logger.Info("✓ Registered CreatePerTransaction: every minute", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 2: Aggregate Daily Settlements (Daily at 1 AM)
// ================================================
func (s *Scheduler) registerAggregateDailyJob() error {
	task, err := scheduledTask(shared.TypeSettlementAggregateDay)
	if err != nil {
		return err
	}

	_, err = s.scheduler.Register(
		"0 1 * * *", // Daily at 1 AM, aggregates yesterday
		task,
		asynq.Queue(shared.QueueSettlement),
		asynq.MaxRetry(2),
		asynq.Timeout(30*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register AggregateDaily job", err)
		return err
	}

	logger.Info("✓ Registered AggregateDaily: daily at 1 AM", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 3: Aggregate Weekly Settlements (Mondays at 2 AM)
// ================================================
func (s *Scheduler) registerAggregateWeeklyJob() error {
	task, err := scheduledTask(shared.TypeSettlementAggregateWeek)
	if err != nil {
		return err
	}

	_, err = s.scheduler.Register(
		"0 2 * * 1", // Mondays at 2 AM, aggregates the week that just ended
		task,
		asynq.Queue(shared.QueueSettlement),
		asynq.MaxRetry(2),
		asynq.Timeout(30*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register AggregateWeekly job", err)
		return err
	}

	logger.Info("✓ Registered AggregateWeekly: Mondays at 2 AM", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 4: Aggregate Monthly Settlements (1st of month at 3 AM)
// ================================================
func (s *Scheduler) registerAggregateMonthlyJob() error {
	task, err := scheduledTask(shared.TypeSettlementAggregateMon)
	if err != nil {
		return err
	}

	_, err = s.scheduler.Register(
		"0 3 1 * *", // 1st of the month at 3 AM, aggregates the previous month
		task,
		asynq.Queue(shared.QueueSettlement),
		asynq.MaxRetry(2),
		asynq.Timeout(time.Hour),
	)

	if err != nil {
		logger.Error("Failed to register AggregateMonthly job", err)
		return err
	}

	logger.Info("✓ Registered AggregateMonthly: 1st of month at 3 AM", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 5: Aggregate Yearly Settlements (Jan 1st at 4 AM)
// ================================================
func (s *Scheduler) registerAggregateYearlyJob() error {
	task, err := scheduledTask(shared.TypeSettlementAggregateYear)
	if err != nil {
		return err
	}

	_, err = s.scheduler.Register(
		"0 4 1 1 *", // January 1st at 4 AM, aggregates the previous year
		task,
		asynq.Queue(shared.QueueSettlement),
		asynq.MaxRetry(2),
		asynq.Timeout(time.Hour),
	)

	if err != nil {
		logger.Error("Failed to register AggregateYearly job", err)
		return err
	}

	logger.Info("✓ Registered AggregateYearly: Jan 1st at 4 AM", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 6: Complete Pending Settlements (Daily at 9 AM)
// ================================================
func (s *Scheduler) registerCompleteSweepJob() error {
	task, err := scheduledTask(shared.TypeSettlementCompleteSweep)
	if err != nil {
		return err
	}

	_, err = s.scheduler.Register(
		"0 9 * * *", // Daily at 9 AM, completes aggregates past the grace period
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register CompleteSweep job", err)
		return err
	}

	logger.Info("✓ Registered CompleteSweep: daily at 9 AM", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
