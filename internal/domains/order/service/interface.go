package service

import (
	"context"

	"marketplace-backend/internal/domains/order/model"
	"marketplace-backend/pkg/money"
)

// OrderService is the fulfillment saga orchestrator.
type OrderService interface {
	// CompleteOrder runs the completion saga in its own fresh transaction.
	// When any line is short on stock the saga aborts before mutating
	// anything and the shortage report is returned with a nil error.
	CompleteOrder(ctx context.Context, orderID int64) (*model.StockValidationResult, error)

	// RollbackOrder compensates a completed order in its own fresh
	// transaction: stock restored, status back to PENDING, coupon restored
	// atomically with the status change.
	RollbackOrder(ctx context.Context, orderID int64) error

	// ValidateAndPrepareOrder is the pre-payment leg: ownership, status and
	// line checks, discount computation and persistence. Callers own
	// idempotency; this does not deduplicate.
	ValidateAndPrepareOrder(ctx context.Context, orderNo string, userID int64, requestedAmount money.Money) (*model.PaymentPrep, error)
}
