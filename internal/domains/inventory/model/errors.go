package model

import "errors"

var (
	// ErrStockNotFound is returned when no stock row exists for a product option
	ErrStockNotFound = errors.New("stock not found for product option")

	// ErrInsufficientStock is returned when a conditional decrement affects zero rows
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity is returned for a non-positive decrement or restore quantity
	ErrInvalidQuantity = errors.New("quantity must be positive")
)
