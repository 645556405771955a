package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// PreparePaymentRequest is the pre-payment validation call made by the
// payment front end before it hands off to the gateway.
type PreparePaymentRequest struct {
	OrderNo string          `json:"order_no"`
	UserID  int64           `json:"user_id"`
	Amount  decimal.Decimal `json:"amount"`
}

func (req PreparePaymentRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.OrderNo, validation.Required, validation.Length(1, 64)),
		validation.Field(&req.UserID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.Amount, validation.By(func(interface{}) error {
			if req.Amount.IsNegative() {
				return validation.NewError("validation_amount", "amount must not be negative")
			}
			return nil
		})),
	)
}
