package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatusAllowedTransitions(t *testing.T) {
	cases := []struct {
		from   PaymentStatus
		action PaymentAction
		want   PaymentStatus
	}{
		{PaymentStatusPending, ActionApprove, PaymentStatusApproved},
		{PaymentStatusPending, ActionFail, PaymentStatusFailed},
		{PaymentStatusApproved, ActionCancel, PaymentStatusCancelled},
		{PaymentStatusFailed, ActionRollback, PaymentStatusPending},
		{PaymentStatusCancelled, ActionRollback, PaymentStatusApproved},
	}

	for _, tc := range cases {
		got, err := NextStatus(tc.from, tc.action)
		require.NoError(t, err, "%s + %s", tc.from, tc.action)
		assert.Equal(t, tc.want, got)
	}
}

func TestNextStatusRejectsEverythingElse(t *testing.T) {
	statuses := []PaymentStatus{
		PaymentStatusPending, PaymentStatusApproved, PaymentStatusFailed, PaymentStatusCancelled,
	}
	actions := []PaymentAction{ActionApprove, ActionFail, ActionCancel, ActionRollback}

	allowed := map[transitionKey]bool{
		{PaymentStatusPending, ActionApprove}:    true,
		{PaymentStatusPending, ActionFail}:       true,
		{PaymentStatusApproved, ActionCancel}:    true,
		{PaymentStatusFailed, ActionRollback}:    true,
		{PaymentStatusCancelled, ActionRollback}: true,
	}

	for _, from := range statuses {
		for _, action := range actions {
			if allowed[transitionKey{from, action}] {
				continue
			}

			_, err := NextStatus(from, action)
			require.Error(t, err, "%s + %s must be rejected", from, action)

			var invalid *InvalidTransitionError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, from, invalid.Current)
			assert.Equal(t, action, invalid.Action)
			assert.Equal(t, from.Description(), invalid.Description)
		}
	}
}

func TestApproveRecordsEventAndTimestamps(t *testing.T) {
	now := time.Date(2025, 10, 30, 12, 0, 0, 0, time.UTC)
	p := &Payment{ID: 7, Status: PaymentStatusPending}

	require.NoError(t, p.Approve("pg-tx-123", now))

	assert.Equal(t, PaymentStatusApproved, p.Status)
	assert.Equal(t, "pg-tx-123", p.TransactionID)
	require.NotNil(t, p.ApprovedAt)
	assert.Equal(t, now, *p.ApprovedAt)

	require.Len(t, p.Events, 1)
	assert.Equal(t, PaymentStatusPending, p.Events[0].FromStatus)
	assert.Equal(t, PaymentStatusApproved, p.Events[0].ToStatus)
	assert.Equal(t, ActionApprove, p.Events[0].Action)
}

func TestRollbackClearsApprovalState(t *testing.T) {
	now := time.Date(2025, 10, 30, 12, 0, 0, 0, time.UTC)
	p := &Payment{Status: PaymentStatusPending}

	require.NoError(t, p.Approve("pg-tx-1", now))
	require.NoError(t, p.Cancel(now.Add(time.Minute)))
	require.NoError(t, p.Rollback(now.Add(2*time.Minute)))

	// CANCELLED rollback compensates back to APPROVED.
	assert.Equal(t, PaymentStatusApproved, p.Status)
	assert.Nil(t, p.CancelledAt)
	assert.Len(t, p.Events, 3)

	p2 := &Payment{Status: PaymentStatusPending}
	require.NoError(t, p2.Fail(now))
	require.NoError(t, p2.Rollback(now.Add(time.Minute)))

	assert.Equal(t, PaymentStatusPending, p2.Status)
	assert.Empty(t, p2.TransactionID)
	assert.Nil(t, p2.ApprovedAt)
}

func TestDoubleApproveRejected(t *testing.T) {
	now := time.Now()
	p := &Payment{Status: PaymentStatusPending}

	require.NoError(t, p.Approve("tx", now))
	err := p.Approve("tx-2", now)

	var invalid *InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, PaymentStatusApproved, invalid.Current)
}
