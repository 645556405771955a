package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func availableCoupon() *MemberCoupon {
	return &MemberCoupon{
		ID:        1,
		UserID:    7,
		CouponID:  55,
		Status:    MemberCouponAvailable,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

func TestUseMarksConsumed(t *testing.T) {
	mc := availableCoupon()
	now := time.Now()

	require.NoError(t, mc.Use(10, now))

	assert.Equal(t, MemberCouponUsed, mc.Status)
	require.NotNil(t, mc.UsedOrderID)
	assert.Equal(t, int64(10), *mc.UsedOrderID)
	require.NotNil(t, mc.UsedAt)
	assert.Equal(t, now, *mc.UsedAt)
}

func TestUseRejectsAlreadyUsed(t *testing.T) {
	mc := availableCoupon()
	require.NoError(t, mc.Use(10, time.Now()))

	err := mc.Use(11, time.Now())
	assert.ErrorIs(t, err, ErrCouponAlreadyUsed)
	assert.Equal(t, int64(10), *mc.UsedOrderID)
}

func TestUseRejectsExpired(t *testing.T) {
	mc := availableCoupon()
	mc.ExpiresAt = time.Now().Add(-time.Hour)

	err := mc.Use(10, time.Now())
	assert.ErrorIs(t, err, ErrCouponExpired)
	assert.Equal(t, MemberCouponAvailable, mc.Status)
}

func TestUseRejectsExpiredStatus(t *testing.T) {
	mc := availableCoupon()
	mc.Status = MemberCouponExpired

	err := mc.Use(10, time.Now())
	assert.ErrorIs(t, err, ErrCouponExpired)
}

func TestRollbackRestoresAvailable(t *testing.T) {
	mc := availableCoupon()
	require.NoError(t, mc.Use(10, time.Now()))

	require.NoError(t, mc.Rollback(10))

	assert.Equal(t, MemberCouponAvailable, mc.Status)
	assert.Nil(t, mc.UsedOrderID)
	assert.Nil(t, mc.UsedAt)
}

func TestRollbackRejectsUnusedCoupon(t *testing.T) {
	mc := availableCoupon()

	err := mc.Rollback(10)
	assert.ErrorIs(t, err, ErrCouponNotUsed)
}

func TestRollbackRejectsDifferentOrder(t *testing.T) {
	mc := availableCoupon()
	require.NoError(t, mc.Use(10, time.Now()))

	err := mc.Rollback(11)
	assert.ErrorIs(t, err, ErrCouponOrderMismatch)
	assert.Equal(t, MemberCouponUsed, mc.Status)
}
