package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"marketplace-backend/pkg/money"
)

// ServiceInterface is the coupon collaborator the order saga composes.
type ServiceInterface interface {
	// CalculateDiscount computes the discount for an order amount without
	// mutating anything; safe to call repeatedly.
	CalculateDiscount(ctx context.Context, userID, couponID int64, orderAmount money.Money) (money.Money, error)

	// UseMemberCoupon marks the coupon used in its own transaction.
	UseMemberCoupon(ctx context.Context, userID, couponID, orderID int64) error

	// RollbackMemberCoupon restores the coupon inside the caller's open
	// transaction; tx is mandatory and nil fails loudly.
	RollbackMemberCoupon(ctx context.Context, tx pgx.Tx, userID, couponID, orderID int64) error
}
