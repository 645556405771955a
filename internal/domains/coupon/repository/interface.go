package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"marketplace-backend/internal/domains/coupon/model"
)

type RepositoryInterface interface {
	// GetMemberCoupon is the lock-free read used by discount calculation.
	GetMemberCoupon(ctx context.Context, userID, couponID int64) (*model.MemberCoupon, error)

	// GetMemberCouponForUpdate row-locks the instance inside tx for use/rollback.
	GetMemberCouponForUpdate(ctx context.Context, tx pgx.Tx, userID, couponID int64) (*model.MemberCoupon, error)

	// GetCoupon loads the coupon definition.
	GetCoupon(ctx context.Context, couponID int64) (*model.Coupon, error)

	// UpdateMemberCoupon persists status, used-order-id and used-at.
	UpdateMemberCoupon(ctx context.Context, tx pgx.Tx, mc *model.MemberCoupon) error
}
