package model

import "errors"

const (
	ErrCodeCouponNotFound      = "CPN001"
	ErrCodeCouponAlreadyUsed   = "CPN002"
	ErrCodeCouponExpired       = "CPN003"
	ErrCodeCouponNotUsed       = "CPN004"
	ErrCodeCouponOrderMismatch = "CPN005"
)

var (
	ErrCouponNotFound      = errors.New("member coupon not found")
	ErrCouponAlreadyUsed   = errors.New("coupon has already been used")
	ErrCouponExpired       = errors.New("coupon has expired")
	ErrCouponNotUsed       = errors.New("coupon is not in used status")
	ErrCouponOrderMismatch = errors.New("coupon was used for a different order")

	// ErrNoActiveTransaction is returned when RollbackMemberCoupon is called
	// without an open transaction. Coupon rollback must be atomic with the
	// order-status rollback, so the caller's transaction is mandatory.
	ErrNoActiveTransaction = errors.New("coupon rollback requires an active transaction")
)
