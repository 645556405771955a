package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNegative(t *testing.T) {
	_, err := New(decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrNegativeAmount)

	_, err = NewFromInt(-100)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestNewRoundsHalfUpToTwoPlaces(t *testing.T) {
	m, err := New(decimal.NewFromFloat(10.005))
	require.NoError(t, err)
	assert.Equal(t, "10.01", m.String())

	m, err = New(decimal.NewFromFloat(10.004))
	require.NoError(t, err)
	assert.Equal(t, "10.00", m.String())
}

func TestAddZeroIsIdentity(t *testing.T) {
	m := MustFromInt(12345)

	sum, err := m.Add(Zero)
	require.NoError(t, err)
	assert.True(t, sum.Equal(m))
}

func TestSubtractSelfIsZero(t *testing.T) {
	m := MustFromInt(777)

	diff, err := m.Subtract(m)
	require.NoError(t, err)
	assert.True(t, diff.IsZero())
}

func TestSubtractRejectsNegativeResult(t *testing.T) {
	small := MustFromInt(10)
	big := MustFromInt(20)

	_, err := small.Subtract(big)
	assert.ErrorIs(t, err, ErrNegativeResult)
}

func TestDivideByZero(t *testing.T) {
	m := MustFromInt(100)

	_, err := m.Divide(decimal.Zero)
	assert.ErrorIs(t, err, ErrZeroDivisor)

	_, err = m.DivideInt(0)
	assert.ErrorIs(t, err, ErrZeroDivisor)
}

func TestMultiplyRate(t *testing.T) {
	m := MustFromInt(10000)

	fee, err := m.Multiply(decimal.NewFromFloat(0.034))
	require.NoError(t, err)
	assert.Equal(t, "340.00", fee.String())
}

func TestComparisons(t *testing.T) {
	a := MustFromInt(100)
	b := MustFromInt(200)

	assert.True(t, a.LessThan(b))
	assert.True(t, b.GreaterThan(a))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(MustFromInt(100)))
}
