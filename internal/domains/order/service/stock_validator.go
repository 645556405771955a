package service

import "marketplace-backend/internal/domains/order/model"

// StockValidator compares requested vs. available stock per order line and
// accumulates every shortage into one report.
type StockValidator struct{}

func NewStockValidator() *StockValidator {
	return &StockValidator{}
}

// Validate checks every line against the available quantities. Options with
// no stock row count as zero available.
func (v *StockValidator) Validate(lines []model.OrderLine, available map[int64]int) *model.StockValidationResult {
	result := &model.StockValidationResult{}

	for _, line := range lines {
		availableQty := available[line.ProductOptionID]
		if line.Quantity > availableQty {
			result.Shortages = append(result.Shortages, model.StockShortage{
				ProductOptionID:   line.ProductOptionID,
				RequestedQuantity: line.Quantity,
				AvailableQuantity: availableQty,
			})
		}
	}

	return result
}
