package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every Money value is stored with.
const Scale = 2

// divisionPrecision is the number of fractional digits carried during
// division before the result is re-normalized to Scale.
const divisionPrecision = 12

var (
	ErrNegativeAmount = errors.New("money amount cannot be negative")
	ErrZeroDivisor    = errors.New("money cannot be divided by zero")
	ErrNegativeResult = errors.New("money operation result cannot be negative")
)

// Money is an immutable, non-negative amount with a fixed 2-decimal scale.
// Every operation returns a new validated instance.
type Money struct {
	amount decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{amount: decimal.Zero}

// New validates and normalizes d into a Money value.
// Negative input is rejected; the amount is rounded half-up to Scale.
func New(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s", ErrNegativeAmount, d.String())
	}
	return Money{amount: d.Round(Scale)}, nil
}

// NewFromInt builds a Money value from a whole currency amount.
func NewFromInt(n int64) (Money, error) {
	return New(decimal.NewFromInt(n))
}

// MustNew is New for amounts known valid at compile time (tests, fee tables).
func MustNew(d decimal.Decimal) Money {
	m, err := New(d)
	if err != nil {
		panic(err)
	}
	return m
}

// MustFromInt is NewFromInt for amounts known valid at compile time.
func MustFromInt(n int64) Money {
	return MustNew(decimal.NewFromInt(n))
}

func (m Money) Add(other Money) (Money, error) {
	return New(m.amount.Add(other.amount))
}

// Subtract returns m − other. The result may not go negative; callers that
// need a signed difference must compare first.
func (m Money) Subtract(other Money) (Money, error) {
	result := m.amount.Sub(other.amount)
	if result.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrNegativeResult, m.amount, other.amount)
	}
	return New(result)
}

func (m Money) MultiplyInt(n int64) (Money, error) {
	return New(m.amount.Mul(decimal.NewFromInt(n)))
}

func (m Money) Multiply(d decimal.Decimal) (Money, error) {
	return New(m.amount.Mul(d))
}

// Divide computes m / d at divisionPrecision fractional digits; the
// constructor re-normalizes the result to Scale.
func (m Money) Divide(d decimal.Decimal) (Money, error) {
	if d.IsZero() {
		return Money{}, ErrZeroDivisor
	}
	return New(m.amount.DivRound(d, divisionPrecision))
}

func (m Money) DivideInt(n int64) (Money, error) {
	return m.Divide(decimal.NewFromInt(n))
}

func (m Money) Equal(other Money) bool       { return m.amount.Equal(other.amount) }
func (m Money) GreaterThan(other Money) bool { return m.amount.GreaterThan(other.amount) }
func (m Money) LessThan(other Money) bool    { return m.amount.LessThan(other.amount) }
func (m Money) IsNegative() bool             { return m.amount.IsNegative() }
func (m Money) IsZero() bool                 { return m.amount.IsZero() }

// Amount exposes the underlying decimal for persistence and aggregation.
func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) String() string { return m.amount.StringFixed(Scale) }
