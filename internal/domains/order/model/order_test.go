package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-backend/pkg/money"
)

func TestCompleteRequiresPending(t *testing.T) {
	order := &Order{Status: OrderStatusPending}
	require.NoError(t, order.Complete())
	assert.Equal(t, OrderStatusCompleted, order.Status)

	// Second completion fails closed.
	err := order.Complete()
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, OrderStatusCompleted, order.Status)
}

func TestRollbackRequiresCompleted(t *testing.T) {
	order := &Order{Status: OrderStatusCompleted}
	require.NoError(t, order.Rollback())
	assert.Equal(t, OrderStatusPending, order.Status)

	err := order.Rollback()
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestValidateLines(t *testing.T) {
	order := &Order{Status: OrderStatusPending}
	assert.ErrorIs(t, order.ValidateLines(), ErrInvalidOrder)

	order.Lines = []OrderLine{{ProductOptionID: 100, Quantity: 0}}
	assert.ErrorIs(t, order.ValidateLines(), ErrInvalidOrder)

	order.Lines = []OrderLine{{ProductOptionID: 0, Quantity: 1}}
	assert.ErrorIs(t, order.ValidateLines(), ErrInvalidOrder)

	order.Lines = []OrderLine{{ProductOptionID: 100, Quantity: 1}}
	assert.NoError(t, order.ValidateLines())
}

func TestSubtotalSumsLines(t *testing.T) {
	order := &Order{
		Lines: []OrderLine{
			{ProductOptionID: 100, Quantity: 2, UnitAmount: money.MustFromInt(5000)},
			{ProductOptionID: 200, Quantity: 3, UnitAmount: money.MustFromInt(1500)},
		},
	}

	subtotal, err := order.Subtotal()
	require.NoError(t, err)
	assert.Equal(t, "14500.00", subtotal.String())
}

func TestSubtotalEmptyOrderIsZero(t *testing.T) {
	order := &Order{}
	subtotal, err := order.Subtotal()
	require.NoError(t, err)
	assert.True(t, subtotal.IsZero())
}
