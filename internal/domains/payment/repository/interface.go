package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"marketplace-backend/internal/domains/payment/model"
)

// PartitionStats describes the id range of payments eligible for settlement.
type PartitionStats struct {
	MinID int64
	MaxID int64
	Count int64
}

type PaymentRepository interface {
	// GetByOrderIDForUpdate row-locks the payment belonging to an order.
	// Returns model.ErrPaymentNotFound when the order has no payment.
	GetByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, orderID int64) (*model.Payment, error)

	// Update persists status, transaction id and timestamps, and appends any
	// new status events. The amount column is deliberately not part of the
	// statement.
	Update(ctx context.Context, tx pgx.Tx, payment *model.Payment) error

	// Stats returns min/max/count over approved, unsettled payments.
	Stats(ctx context.Context) (PartitionStats, error)

	// ListUnsettledApprovedInRange reads one partition's worth of payments,
	// ids in [fromID, toID] inclusive.
	ListUnsettledApprovedInRange(ctx context.Context, fromID, toID int64) ([]model.Payment, error)

	// BrandAmountsByPaymentIDs returns the precomputed brand splits for the
	// given payments.
	BrandAmountsByPaymentIDs(ctx context.Context, paymentIDs []int64) ([]model.PaymentBrandAmount, error)

	// MarkSettled flags payments as settled inside the creation transaction.
	MarkSettled(ctx context.Context, tx pgx.Tx, paymentIDs []int64) error
}
