package service

import (
	"github.com/shopspring/decimal"

	"marketplace-backend/internal/domains/coupon/model"
	"marketplace-backend/pkg/money"
)

// DiscountCalculator evaluates a coupon definition's discount rule.
type DiscountCalculator struct{}

func NewDiscountCalculator() *DiscountCalculator {
	return &DiscountCalculator{}
}

// Calculate returns the discount for orderAmount under the given coupon.
//
// Percentage: discount = orderAmount * value / 100, capped by
// max_discount_amount when set. Fixed: discount = value, capped by the order
// amount so the discount can never exceed what is being paid.
func (c *DiscountCalculator) Calculate(coupon *model.Coupon, orderAmount money.Money) (money.Money, error) {
	var discount decimal.Decimal

	switch coupon.DiscountType {
	case model.DiscountTypePercentage:
		discount = orderAmount.Amount().Mul(coupon.DiscountValue).Div(decimal.NewFromInt(100))
		if coupon.MaxDiscountAmount != nil && discount.GreaterThan(*coupon.MaxDiscountAmount) {
			discount = *coupon.MaxDiscountAmount
		}

	case model.DiscountTypeFixed:
		discount = coupon.DiscountValue

	default:
		return money.Zero, nil
	}

	if discount.GreaterThan(orderAmount.Amount()) {
		discount = orderAmount.Amount()
	}

	return money.New(discount)
}
