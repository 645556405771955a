package model

import (
	"errors"
	"fmt"
)

const (
	ErrCodePaymentNotFound   = "PAY001"
	ErrCodeInvalidTransition = "PAY002"
	ErrCodeAmountImmutable   = "PAY003"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
)

// InvalidTransitionError names the current status, its description and the
// attempted action. This is the canonical enforcement point for payment
// lifecycle rules; status must never be mutated around it.
type InvalidTransitionError struct {
	Current     PaymentStatus
	Description string
	Action      PaymentAction
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid payment transition: cannot %s a payment in status %s (%s)",
		e.Action, e.Current, e.Description)
}

// Code implements the coded-business-error convention.
func (e *InvalidTransitionError) Code() string {
	return ErrCodeInvalidTransition
}
