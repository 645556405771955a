package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-backend/internal/domains/order/model"
)

func TestValidateAllLinesCovered(t *testing.T) {
	v := NewStockValidator()
	lines := []model.OrderLine{
		{ProductOptionID: 100, Quantity: 2},
		{ProductOptionID: 200, Quantity: 1},
	}

	result := v.Validate(lines, map[int64]int{100: 2, 200: 5})
	assert.True(t, result.Valid())
	assert.Empty(t, result.Shortages)
}

func TestValidateReportsEveryShortage(t *testing.T) {
	v := NewStockValidator()
	lines := []model.OrderLine{
		{ProductOptionID: 100, Quantity: 3},
		{ProductOptionID: 200, Quantity: 1},
		{ProductOptionID: 300, Quantity: 2},
	}

	result := v.Validate(lines, map[int64]int{100: 1, 200: 1})
	require.Len(t, result.Shortages, 2)
	assert.False(t, result.Valid())

	assert.Equal(t, int64(100), result.Shortages[0].ProductOptionID)
	assert.Equal(t, 3, result.Shortages[0].RequestedQuantity)
	assert.Equal(t, 1, result.Shortages[0].AvailableQuantity)

	// An option with no stock row reports zero available.
	assert.Equal(t, int64(300), result.Shortages[1].ProductOptionID)
	assert.Equal(t, 0, result.Shortages[1].AvailableQuantity)
}

func TestValidateNoLines(t *testing.T) {
	v := NewStockValidator()
	result := v.Validate(nil, nil)
	assert.True(t, result.Valid())
}
