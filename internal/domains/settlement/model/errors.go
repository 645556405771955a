package model

import "errors"

var (
	ErrBrandNotFound = errors.New("brand not found")

	// ErrNoSettlementData is returned when an aggregation window holds no
	// lower-granularity rows for the brand.
	ErrNoSettlementData = errors.New("no settlement data in period")

	// ErrNegativeSettlement is returned when deductions exceed sales for a
	// period; such a period needs operator attention, not a silent write.
	ErrNegativeSettlement = errors.New("final settlement amount would be negative")
)
