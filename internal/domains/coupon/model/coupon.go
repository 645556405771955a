package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType represents valid discount types
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

func (dt DiscountType) IsValid() bool {
	switch dt {
	case DiscountTypePercentage, DiscountTypeFixed:
		return true
	}
	return false
}

// Coupon is the coupon definition: the discount rule member coupons are
// issued from.
type Coupon struct {
	ID                int64            `json:"id" db:"id"`
	Name              string           `json:"name" db:"name"`
	DiscountType      DiscountType     `json:"discount_type" db:"discount_type"`
	DiscountValue     decimal.Decimal  `json:"discount_value" db:"discount_value"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount" db:"max_discount_amount"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
}

// MemberCouponStatus is the lifecycle of one issued coupon instance.
type MemberCouponStatus string

const (
	MemberCouponAvailable MemberCouponStatus = "AVAILABLE"
	MemberCouponUsed      MemberCouponStatus = "USED"
	MemberCouponExpired   MemberCouponStatus = "EXPIRED"
)

// MemberCoupon is a per-user issued coupon instance.
type MemberCoupon struct {
	ID          int64              `json:"id" db:"id"`
	UserID      int64              `json:"user_id" db:"user_id"`
	CouponID    int64              `json:"coupon_id" db:"coupon_id"`
	Status      MemberCouponStatus `json:"status" db:"status"`
	UsedOrderID *int64             `json:"used_order_id" db:"used_order_id"`
	ExpiresAt   time.Time          `json:"expires_at" db:"expires_at"`
	UsedAt      *time.Time         `json:"used_at" db:"used_at"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
}

// ValidateUsable reports whether the coupon can be consumed right now.
func (mc *MemberCoupon) ValidateUsable(now time.Time) error {
	if mc.Status == MemberCouponUsed {
		return ErrCouponAlreadyUsed
	}
	if mc.Status == MemberCouponExpired || now.After(mc.ExpiresAt) {
		return ErrCouponExpired
	}
	return nil
}

// Use marks the coupon consumed against orderID.
func (mc *MemberCoupon) Use(orderID int64, now time.Time) error {
	if err := mc.ValidateUsable(now); err != nil {
		return err
	}
	mc.Status = MemberCouponUsed
	mc.UsedOrderID = &orderID
	mc.UsedAt = &now
	return nil
}

// Rollback restores AVAILABLE. The recorded used-order-id must match the
// order being rolled back; a mismatch means the coupon was reused elsewhere
// and restoring it would corrupt that order.
func (mc *MemberCoupon) Rollback(orderID int64) error {
	if mc.Status != MemberCouponUsed {
		return ErrCouponNotUsed
	}
	if mc.UsedOrderID == nil || *mc.UsedOrderID != orderID {
		return ErrCouponOrderMismatch
	}
	mc.Status = MemberCouponAvailable
	mc.UsedOrderID = nil
	mc.UsedAt = nil
	return nil
}
