package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"marketplace-backend/internal/domains/inventory/model"
)

type postgresRepository struct{}

// NewRepository creates a new PostgreSQL stock repository.
func NewRepository() RepositoryInterface {
	return &postgresRepository{}
}

func (r *postgresRepository) GetQuantities(ctx context.Context, tx pgx.Tx, productOptionIDs []int64) (map[int64]int, error) {
	query := `
		SELECT product_option_id, quantity
		FROM stocks
		WHERE product_option_id = ANY($1)
	`

	rows, err := tx.Query(ctx, query, productOptionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock quantities: %w", err)
	}
	defer rows.Close()

	quantities := make(map[int64]int, len(productOptionIDs))
	for rows.Next() {
		var optionID int64
		var quantity int
		if err := rows.Scan(&optionID, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan stock quantity: %w", err)
		}
		quantities[optionID] = quantity
	}

	return quantities, rows.Err()
}

func (r *postgresRepository) DecreaseStock(ctx context.Context, tx pgx.Tx, productOptionID int64, quantity int) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}

	// Conditional decrement: the WHERE clause is the concurrency guard, so a
	// racing completion can never drive the quantity negative.
	query := `
		UPDATE stocks
		SET quantity = quantity - $2, updated_at = NOW()
		WHERE product_option_id = $1 AND quantity >= $2
	`

	tag, err := tx.Exec(ctx, query, productOptionID, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrease stock for option %d: %w", productOptionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("option %d: %w", productOptionID, model.ErrInsufficientStock)
	}

	return nil
}

func (r *postgresRepository) RestoreStock(ctx context.Context, tx pgx.Tx, productOptionID int64, quantity int) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}

	query := `
		UPDATE stocks
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE product_option_id = $1
	`

	tag, err := tx.Exec(ctx, query, productOptionID, quantity)
	if err != nil {
		return fmt.Errorf("failed to restore stock for option %d: %w", productOptionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("option %d: %w", productOptionID, model.ErrStockNotFound)
	}

	return nil
}
