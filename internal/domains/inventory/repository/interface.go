package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// RepositoryInterface is the stock data access used by the order saga.
// Every method takes the saga's open transaction: stock mutations must be
// atomic with the order state change they belong to.
type RepositoryInterface interface {
	// GetQuantities returns the current quantity per product option id.
	// Options without a stock row are absent from the result.
	GetQuantities(ctx context.Context, tx pgx.Tx, productOptionIDs []int64) (map[int64]int, error)

	// DecreaseStock decrements atomically and conditionally: the update only
	// applies when the remaining quantity covers the request, and zero
	// affected rows surface as model.ErrInsufficientStock.
	DecreaseStock(ctx context.Context, tx pgx.Tx, productOptionID int64, quantity int) error

	// RestoreStock adds quantity back during compensation.
	RestoreStock(ctx context.Context, tx pgx.Tx, productOptionID int64, quantity int) error
}
