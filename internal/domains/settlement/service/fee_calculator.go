package service

import (
	"github.com/shopspring/decimal"

	"marketplace-backend/pkg/logger"
	"marketplace-backend/pkg/money"
)

// FeePolicy is either a percentage of the transaction amount or a flat fee
// per transaction.
type FeePolicy struct {
	Rate decimal.Decimal // percentage, e.g. 3.4
	Flat *money.Money    // flat per-transaction fee when set
}

// FeeTable maps payment-method labels to fee policies. This is policy
// configuration, not derived logic.
type FeeTable map[string]FeePolicy

const fallbackMethod = "카드"

// DefaultFeeTable returns the contracted defaults: card 3.4%, easy-pay 3.4%,
// mobile 3.5%, bank transfer 2.0%, virtual account flat 400.
func DefaultFeeTable() FeeTable {
	virtualAccountFee := money.MustFromInt(400)
	return FeeTable{
		"카드":   {Rate: decimal.NewFromFloat(3.4)},
		"간편결제": {Rate: decimal.NewFromFloat(3.4)},
		"휴대폰":  {Rate: decimal.NewFromFloat(3.5)},
		"계좌이체": {Rate: decimal.NewFromFloat(2.0)},
		"가상계좌": {Flat: &virtualAccountFee},
	}
}

// PgFeeCalculator computes the payment-gateway fee for a transaction.
type PgFeeCalculator struct {
	table FeeTable
}

func NewPgFeeCalculator(table FeeTable) *PgFeeCalculator {
	if table == nil {
		table = DefaultFeeTable()
	}
	// Calculate falls back to the card policy for unknown methods, so the
	// table must always carry one. A caller-supplied table without it would
	// otherwise silently price unknown methods at zero.
	if _, ok := table[fallbackMethod]; !ok {
		logger.Warn("fee table has no card entry, adding the default card rate", map[string]interface{}{
			"method": fallbackMethod,
		})
		table[fallbackMethod] = DefaultFeeTable()[fallbackMethod]
	}
	return &PgFeeCalculator{table: table}
}

// Calculate returns the fee for the given method and amount. Unknown or empty
// methods fall back to the card rate with a logged warning.
func (c *PgFeeCalculator) Calculate(method string, amount money.Money) (money.Money, error) {
	policy, ok := c.table[method]
	if !ok {
		logger.Warn("unknown payment method, falling back to card fee rate", map[string]interface{}{
			"method": method,
		})
		policy = c.table[fallbackMethod]
	}

	if policy.Flat != nil {
		return *policy.Flat, nil
	}

	return amount.Multiply(policy.Rate.Div(decimal.NewFromInt(100)))
}
