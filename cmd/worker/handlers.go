package main

import (
	"github.com/hibiken/asynq"

	"marketplace-backend/internal/shared"
	"marketplace-backend/pkg/container"
)

// registerHandlers binds every settlement task type to its handler.
func registerHandlers(mux *asynq.ServeMux, c *container.Container) {
	h := c.SettlementHandlers

	mux.HandleFunc(shared.TypeSettlementCreate, h.HandleCreate)
	mux.HandleFunc(shared.TypeSettlementAggregateDay, h.HandleAggregateDaily)
	mux.HandleFunc(shared.TypeSettlementAggregateWeek, h.HandleAggregateWeekly)
	mux.HandleFunc(shared.TypeSettlementAggregateMon, h.HandleAggregateMonthly)
	mux.HandleFunc(shared.TypeSettlementAggregateYear, h.HandleAggregateYearly)
	mux.HandleFunc(shared.TypeSettlementCompleteSweep, h.HandleCompleteSweep)
}
