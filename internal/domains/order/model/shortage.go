package model

// StockShortage is one line's insufficiency, reported to the buyer.
type StockShortage struct {
	ProductOptionID   int64 `json:"product_option_id"`
	RequestedQuantity int   `json:"requested_quantity"`
	AvailableQuantity int   `json:"available_quantity"`
}

// StockValidationResult collects every shortage across an order instead of
// failing on the first one, so the caller can report all problems at once.
type StockValidationResult struct {
	Shortages []StockShortage `json:"shortages"`
}

func (r *StockValidationResult) Valid() bool {
	return len(r.Shortages) == 0
}
