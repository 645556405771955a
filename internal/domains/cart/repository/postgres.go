package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) RemoveOrderedLines(ctx context.Context, userID int64, productOptionIDs []int64) error {
	query := `
		DELETE FROM cart_lines
		WHERE user_id = $1 AND product_option_id = ANY($2)
	`

	if _, err := r.pool.Exec(ctx, query, userID, productOptionIDs); err != nil {
		return fmt.Errorf("failed to remove cart lines for user %d: %w", userID, err)
	}
	return nil
}
