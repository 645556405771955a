package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"marketplace-backend/internal/domains/payment/model"
	"marketplace-backend/pkg/money"
)

type postgresPaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &postgresPaymentRepository{pool: pool}
}

func (r *postgresPaymentRepository) GetByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, orderID int64) (*model.Payment, error) {
	query := `
		SELECT id, order_id, amount, currency, method, status,
		       transaction_id, settled, approved_at, cancelled_at, created_at, updated_at
		FROM payments
		WHERE order_id = $1
		FOR UPDATE
	`

	payment, err := scanPayment(tx.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment for order %d: %w", orderID, err)
	}

	return payment, nil
}

func (r *postgresPaymentRepository) Update(ctx context.Context, tx pgx.Tx, payment *model.Payment) error {
	query := `
		UPDATE payments
		SET status = $2, transaction_id = $3, approved_at = $4, cancelled_at = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		payment.ID,
		payment.Status,
		payment.TransactionID,
		payment.ApprovedAt,
		payment.CancelledAt,
		payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment %d: %w", payment.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPaymentNotFound
	}

	for _, ev := range payment.Events {
		if ev.ID != 0 {
			continue // already persisted
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO payment_status_events (payment_id, from_status, to_status, action, occurred_at)
			VALUES ($1, $2, $3, $4, $5)
		`, payment.ID, ev.FromStatus, ev.ToStatus, ev.Action, ev.OccurredAt)
		if err != nil {
			return fmt.Errorf("failed to insert payment status event: %w", err)
		}
	}

	return nil
}

func (r *postgresPaymentRepository) Stats(ctx context.Context) (PartitionStats, error) {
	query := `
		SELECT COALESCE(MIN(id), 0), COALESCE(MAX(id), 0), COUNT(*)
		FROM payments
		WHERE status = $1 AND settled = FALSE
	`

	var stats PartitionStats
	err := r.pool.QueryRow(ctx, query, model.PaymentStatusApproved).
		Scan(&stats.MinID, &stats.MaxID, &stats.Count)
	if err != nil {
		return PartitionStats{}, fmt.Errorf("failed to query partition stats: %w", err)
	}

	return stats, nil
}

func (r *postgresPaymentRepository) ListUnsettledApprovedInRange(ctx context.Context, fromID, toID int64) ([]model.Payment, error) {
	query := `
		SELECT id, order_id, amount, currency, method, status,
		       transaction_id, settled, approved_at, cancelled_at, created_at, updated_at
		FROM payments
		WHERE status = $1 AND settled = FALSE AND id BETWEEN $2 AND $3
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, model.PaymentStatusApproved, fromID, toID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments in range [%d,%d]: %w", fromID, toID, err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *payment)
	}

	return payments, rows.Err()
}

func (r *postgresPaymentRepository) BrandAmountsByPaymentIDs(ctx context.Context, paymentIDs []int64) ([]model.PaymentBrandAmount, error) {
	query := `
		SELECT id, payment_id, brand_id, amount, commission_rate, created_at
		FROM payment_brand_amounts
		WHERE payment_id = ANY($1)
		ORDER BY payment_id, brand_id
	`

	rows, err := r.pool.Query(ctx, query, paymentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list brand amounts: %w", err)
	}
	defer rows.Close()

	var amounts []model.PaymentBrandAmount
	for rows.Next() {
		var pba model.PaymentBrandAmount
		var amount decimal.Decimal
		if err := rows.Scan(&pba.ID, &pba.PaymentID, &pba.BrandID, &amount, &pba.CommissionRate, &pba.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan brand amount: %w", err)
		}
		pba.Amount, err = money.New(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid brand amount for payment %d: %w", pba.PaymentID, err)
		}
		amounts = append(amounts, pba)
	}

	return amounts, rows.Err()
}

func (r *postgresPaymentRepository) MarkSettled(ctx context.Context, tx pgx.Tx, paymentIDs []int64) error {
	query := `UPDATE payments SET settled = TRUE, updated_at = NOW() WHERE id = ANY($1)`

	if _, err := tx.Exec(ctx, query, paymentIDs); err != nil {
		return fmt.Errorf("failed to mark payments settled: %w", err)
	}
	return nil
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	var amount decimal.Decimal
	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&amount,
		&p.Currency,
		&p.Method,
		&p.Status,
		&p.TransactionID,
		&p.Settled,
		&p.ApprovedAt,
		&p.CancelledAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Amount, err = money.New(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored payment amount: %w", err)
	}
	return &p, nil
}
