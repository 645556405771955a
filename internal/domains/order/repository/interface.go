package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"marketplace-backend/internal/domains/order/model"
	"marketplace-backend/pkg/money"
)

type OrderRepository interface {
	// GetByIDForUpdate row-locks the order and loads its lines inside tx.
	// Returns model.ErrOrderNotFound when absent.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, orderID int64) (*model.Order, error)

	// GetByOrderNo loads an order and its lines by the external order number.
	GetByOrderNo(ctx context.Context, orderNo string) (*model.Order, error)

	// UpdateStatus persists the order's current status.
	UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// UpdateDiscount persists the computed discount amount.
	UpdateDiscount(ctx context.Context, orderID int64, discount money.Money) error
}
