package model

import (
	"time"

	"github.com/shopspring/decimal"

	"marketplace-backend/pkg/money"
)

// Granularity is the rollup level of a settlement aggregate.
type Granularity string

const (
	GranularityDaily   Granularity = "DAILY"
	GranularityWeekly  Granularity = "WEEKLY"
	GranularityMonthly Granularity = "MONTHLY"
	GranularityYearly  Granularity = "YEARLY"
)

// SettlementStatus is the aggregate lifecycle: PENDING until the grace period
// passes, PROCESSING while a completion sweep has claimed the row, COMPLETED
// after. A row left in PROCESSING by a crashed sweep is finished by the next
// one.
type SettlementStatus string

const (
	SettlementPending    SettlementStatus = "PENDING"
	SettlementProcessing SettlementStatus = "PROCESSING"
	SettlementCompleted  SettlementStatus = "COMPLETED"
)

// PerTransaction is one settlement row per payment/brand pair, immutable once
// created: aggregation reads these rows but never mutates them.
type PerTransaction struct {
	ID                 int64           `json:"id" db:"id"`
	PaymentID          int64           `json:"payment_id" db:"payment_id"`
	BrandID            int64           `json:"brand_id" db:"brand_id"`
	TransactionAmount  money.Money     `json:"transaction_amount" db:"transaction_amount"`
	CommissionAmount   money.Money     `json:"commission_amount" db:"commission_amount"`
	TaxAmount          money.Money     `json:"tax_amount" db:"tax_amount"`
	PgFeeAmount        money.Money     `json:"pg_fee_amount" db:"pg_fee_amount"`
	CommissionRate     decimal.Decimal `json:"commission_rate" db:"commission_rate"`
	TransactionDate    time.Time       `json:"transaction_date" db:"transaction_date"`
	TransactionDateUTC time.Time       `json:"transaction_date_utc" db:"transaction_date_utc"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

// Totals is the summed body shared by every aggregate granularity.
// FinalSettlementAmount = sales - commission - tax - pg fee.
type Totals struct {
	SettlementNumber      string      `json:"settlement_number" db:"settlement_number"`
	TotalOrderCount       int64       `json:"total_order_count" db:"total_order_count"`
	TotalSalesAmount      money.Money `json:"total_sales_amount" db:"total_sales_amount"`
	TotalCommissionAmount money.Money `json:"total_commission_amount" db:"total_commission_amount"`
	TotalTaxAmount        money.Money `json:"total_tax_amount" db:"total_tax_amount"`
	TotalPgFeeAmount      money.Money `json:"total_pg_fee_amount" db:"total_pg_fee_amount"`
	FinalSettlementAmount money.Money `json:"final_settlement_amount" db:"final_settlement_amount"`
	Status                SettlementStatus `json:"status" db:"status"`
}

// Daily is keyed by (brand id, settlement date).
type Daily struct {
	ID             int64     `json:"id" db:"id"`
	BrandID        int64     `json:"brand_id" db:"brand_id"`
	SettlementDate time.Time `json:"settlement_date" db:"settlement_date"`
	Totals
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Weekly is keyed by (brand id, year, month, week of month).
type Weekly struct {
	ID          int64     `json:"id" db:"id"`
	BrandID     int64     `json:"brand_id" db:"brand_id"`
	Year        int       `json:"year" db:"year"`
	Month       int       `json:"month" db:"month"`
	WeekOfMonth int       `json:"week_of_month" db:"week_of_month"`
	StartDate   time.Time `json:"start_date" db:"start_date"`
	EndDate     time.Time `json:"end_date" db:"end_date"`
	Totals
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Monthly is keyed by (brand id, year, month).
type Monthly struct {
	ID      int64 `json:"id" db:"id"`
	BrandID int64 `json:"brand_id" db:"brand_id"`
	Year    int   `json:"year" db:"year"`
	Month   int   `json:"month" db:"month"`
	Totals
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Yearly is keyed by (brand id, year).
type Yearly struct {
	ID      int64 `json:"id" db:"id"`
	BrandID int64 `json:"brand_id" db:"brand_id"`
	Year    int   `json:"year" db:"year"`
	Totals
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
