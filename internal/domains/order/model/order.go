package model

import (
	"time"

	"marketplace-backend/pkg/money"
)

// OrderStatus represents order status
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

func (os OrderStatus) IsValid() bool {
	switch os {
	case OrderStatusPending, OrderStatusCompleted:
		return true
	}
	return false
}

func (os OrderStatus) String() string {
	return string(os)
}

// Order is the fulfillment aggregate. Stock decrement and coupon consumption
// may happen at most once per completion cycle, which the PENDING guard
// enforces: a non-PENDING order fails closed on a repeated completion.
type Order struct {
	ID             int64       `json:"id" db:"id"`
	OrderNo        string      `json:"order_no" db:"order_no"`
	UserID         int64       `json:"user_id" db:"user_id"`
	Status         OrderStatus `json:"status" db:"status"`
	DiscountAmount money.Money `json:"discount_amount" db:"discount_amount"`
	CouponID       *int64      `json:"coupon_id" db:"coupon_id"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`

	Lines []OrderLine `json:"lines" db:"-"`
}

// OrderLine is one product option position on the order.
type OrderLine struct {
	ID              int64       `json:"id" db:"id"`
	OrderID         int64       `json:"order_id" db:"order_id"`
	ProductOptionID int64       `json:"product_option_id" db:"product_option_id"`
	Quantity        int         `json:"quantity" db:"quantity"`
	UnitAmount      money.Money `json:"unit_amount" db:"unit_amount"`
}

// ValidatePending fails fast when an operation expecting PENDING sees
// anything else.
func (o *Order) ValidatePending() error {
	if o.Status != OrderStatusPending {
		return NewOrderError(ErrCodeInvalidStatus, "order is not pending", ErrInvalidStatus)
	}
	return nil
}

// Complete transitions PENDING -> COMPLETED.
func (o *Order) Complete() error {
	if err := o.ValidatePending(); err != nil {
		return err
	}
	o.Status = OrderStatusCompleted
	return nil
}

// Rollback transitions COMPLETED -> PENDING; used only by the compensation path.
func (o *Order) Rollback() error {
	if o.Status != OrderStatusCompleted {
		return NewOrderError(ErrCodeInvalidStatus, "only a completed order can be rolled back", ErrInvalidStatus)
	}
	o.Status = OrderStatusPending
	return nil
}

// ValidateLines checks every line still references a product option with a
// positive requested quantity.
func (o *Order) ValidateLines() error {
	if len(o.Lines) == 0 {
		return NewOrderError(ErrCodeInvalidOrder, "order has no lines", ErrInvalidOrder)
	}
	for _, line := range o.Lines {
		if line.ProductOptionID <= 0 || line.Quantity <= 0 {
			return NewOrderError(ErrCodeInvalidOrder, "order line references an invalid product option or quantity", ErrInvalidOrder)
		}
	}
	return nil
}

// Subtotal sums quantity x unit amount over all lines.
func (o *Order) Subtotal() (money.Money, error) {
	total := money.Zero
	for _, line := range o.Lines {
		lineTotal, err := line.UnitAmount.MultiplyInt(int64(line.Quantity))
		if err != nil {
			return money.Zero, err
		}
		total, err = total.Add(lineTotal)
		if err != nil {
			return money.Zero, err
		}
	}
	return total, nil
}

// PaymentPrep is what the payment-confirmation flow needs from the
// pre-payment validation leg.
type PaymentPrep struct {
	UserID         int64       `json:"user_id"`
	PayableAmount  money.Money `json:"payable_amount"`
	DiscountAmount money.Money `json:"discount_amount"`
}
