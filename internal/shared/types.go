package shared

import "time"

// Asynq task types for the settlement pipeline.
const (
	TypeSettlementCreate        = "settlement:create_per_transaction"
	TypeSettlementAggregateDay  = "settlement:aggregate_daily"
	TypeSettlementAggregateWeek = "settlement:aggregate_weekly"
	TypeSettlementAggregateMon  = "settlement:aggregate_monthly"
	TypeSettlementAggregateYear = "settlement:aggregate_yearly"
	TypeSettlementCompleteSweep = "settlement:complete_sweep"
)

// Queue names by priority.
const (
	QueueCritical   = "critical"
	QueueSettlement = "settlement"
	QueueDefault    = "default"
)

// BatchTrigger tags every scheduled run for idempotency/audit; it never
// alters job logic.
type BatchTrigger struct {
	FiredAt       time.Time `json:"firedAt"`
	ExecutionType string    `json:"executionType"` // scheduled, manual
	TargetDate    string    `json:"targetDate,omitempty"`
}

// SettlementJobPayload is carried by every settlement task.
type SettlementJobPayload struct {
	Trigger BatchTrigger `json:"trigger"`
}
