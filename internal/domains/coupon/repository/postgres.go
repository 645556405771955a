package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-backend/internal/domains/coupon/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const memberCouponColumns = `id, user_id, coupon_id, status, used_order_id, expires_at, used_at, created_at`

func (r *postgresRepository) GetMemberCoupon(ctx context.Context, userID, couponID int64) (*model.MemberCoupon, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM member_coupons
		WHERE user_id = $1 AND coupon_id = $2
	`, memberCouponColumns)

	return scanMemberCoupon(r.pool.QueryRow(ctx, query, userID, couponID))
}

func (r *postgresRepository) GetMemberCouponForUpdate(ctx context.Context, tx pgx.Tx, userID, couponID int64) (*model.MemberCoupon, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM member_coupons
		WHERE user_id = $1 AND coupon_id = $2
		FOR UPDATE
	`, memberCouponColumns)

	return scanMemberCoupon(tx.QueryRow(ctx, query, userID, couponID))
}

func (r *postgresRepository) GetCoupon(ctx context.Context, couponID int64) (*model.Coupon, error) {
	query := `
		SELECT id, name, discount_type, discount_value, max_discount_amount, created_at
		FROM coupons
		WHERE id = $1
	`

	var c model.Coupon
	err := r.pool.QueryRow(ctx, query, couponID).Scan(
		&c.ID, &c.Name, &c.DiscountType, &c.DiscountValue, &c.MaxDiscountAmount, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to get coupon %d: %w", couponID, err)
	}

	return &c, nil
}

func (r *postgresRepository) UpdateMemberCoupon(ctx context.Context, tx pgx.Tx, mc *model.MemberCoupon) error {
	query := `
		UPDATE member_coupons
		SET status = $2, used_order_id = $3, used_at = $4
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, mc.ID, mc.Status, mc.UsedOrderID, mc.UsedAt)
	if err != nil {
		return fmt.Errorf("failed to update member coupon %d: %w", mc.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCouponNotFound
	}

	return nil
}

func scanMemberCoupon(row pgx.Row) (*model.MemberCoupon, error) {
	var mc model.MemberCoupon
	err := row.Scan(
		&mc.ID, &mc.UserID, &mc.CouponID, &mc.Status,
		&mc.UsedOrderID, &mc.ExpiresAt, &mc.UsedAt, &mc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to scan member coupon: %w", err)
	}
	return &mc, nil
}
