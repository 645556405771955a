package model

import "time"

// Stock is the available quantity for one product option. The quantity is
// never negative: decrements fail instead of clamping.
type Stock struct {
	ProductOptionID int64     `json:"product_option_id" db:"product_option_id"`
	Quantity        int       `json:"quantity" db:"quantity"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
