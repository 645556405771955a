package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"marketplace-backend/internal/domains/order/model"
	"marketplace-backend/pkg/money"
)

type postgresOrderRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &postgresOrderRepository{pool: pool}
}

const orderColumns = `id, order_no, user_id, status, discount_amount, coupon_id, created_at, updated_at`

func (r *postgresOrderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, orderID int64) (*model.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1 FOR UPDATE`, orderColumns)

	order, err := scanOrder(tx.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewOrderError(model.ErrCodeOrderNotFound, fmt.Sprintf("order %d not found", orderID), model.ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order %d: %w", orderID, err)
	}

	order.Lines, err = r.loadLines(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (r *postgresOrderRepository) GetByOrderNo(ctx context.Context, orderNo string) (*model.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE order_no = $1`, orderColumns)

	order, err := scanOrder(r.pool.QueryRow(ctx, query, orderNo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewOrderError(model.ErrCodeOrderNotFound, fmt.Sprintf("order %s not found", orderNo), model.ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", orderNo, err)
	}

	order.Lines, err = r.loadLines(ctx, r.pool, order.ID)
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (r *postgresOrderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, order.ID, order.Status)
	if err != nil {
		return fmt.Errorf("failed to update order %d status: %w", order.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewOrderError(model.ErrCodeOrderNotFound, fmt.Sprintf("order %d not found", order.ID), model.ErrOrderNotFound)
	}

	return nil
}

func (r *postgresOrderRepository) UpdateDiscount(ctx context.Context, orderID int64, discount money.Money) error {
	query := `UPDATE orders SET discount_amount = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, orderID, discount.Amount())
	if err != nil {
		return fmt.Errorf("failed to update order %d discount: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewOrderError(model.ErrCodeOrderNotFound, fmt.Sprintf("order %d not found", orderID), model.ErrOrderNotFound)
	}

	return nil
}

// queryer lets line loading run against either the pool or an open tx.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *postgresOrderRepository) loadLines(ctx context.Context, q queryer, orderID int64) ([]model.OrderLine, error) {
	query := `
		SELECT id, order_id, product_option_id, quantity, unit_amount
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var lines []model.OrderLine
	for rows.Next() {
		var line model.OrderLine
		var unitAmount decimal.Decimal
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductOptionID, &line.Quantity, &unitAmount); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		line.UnitAmount, err = money.New(unitAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid stored unit amount: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var discount decimal.Decimal
	err := row.Scan(
		&o.ID, &o.OrderNo, &o.UserID, &o.Status,
		&discount, &o.CouponID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.DiscountAmount, err = money.New(discount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored discount amount: %w", err)
	}
	return &o, nil
}
