package model

import "errors"

const (
	ErrCodeOrderNotFound  = "ORD001"
	ErrCodeInvalidStatus  = "ORD002"
	ErrCodeInvalidOrder   = "ORD003"
	ErrCodeUnauthorized   = "ORD004"
	ErrCodeAmountMismatch = "ORD005"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidStatus  = errors.New("invalid order status")
	ErrInvalidOrder   = errors.New("invalid order")
	ErrUnauthorized   = errors.New("order does not belong to user")
	ErrAmountMismatch = errors.New("requested amount does not match order total")
)

// OrderError carries a stable business error code across boundaries.
type OrderError struct {
	Code    string
	Message string
	Err     error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

func NewOrderError(code, message string, err error) *OrderError {
	return &OrderError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
