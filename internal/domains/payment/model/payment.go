package model

import (
	"time"

	"github.com/shopspring/decimal"

	"marketplace-backend/pkg/money"
)

// Payment is one-to-one with an Order. The amount is immutable once set;
// every status change goes through the transition table and is recorded as a
// StatusEvent.
type Payment struct {
	ID            int64         `json:"id" db:"id"`
	OrderID       int64         `json:"order_id" db:"order_id"`
	Amount        money.Money   `json:"amount" db:"amount"`
	Currency      string        `json:"currency" db:"currency"`
	Method        string        `json:"method" db:"method"`
	Status        PaymentStatus `json:"status" db:"status"`
	TransactionID string        `json:"transaction_id" db:"transaction_id"`
	Settled       bool          `json:"settled" db:"settled"`
	ApprovedAt    *time.Time    `json:"approved_at" db:"approved_at"`
	CancelledAt   *time.Time    `json:"cancelled_at" db:"cancelled_at"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`

	Events []StatusEvent `json:"events" db:"-"`
}

// StatusEvent is one entry in the payment's state-transition log.
type StatusEvent struct {
	ID         int64         `json:"id" db:"id"`
	PaymentID  int64         `json:"payment_id" db:"payment_id"`
	FromStatus PaymentStatus `json:"from_status" db:"from_status"`
	ToStatus   PaymentStatus `json:"to_status" db:"to_status"`
	Action     PaymentAction `json:"action" db:"action"`
	OccurredAt time.Time     `json:"occurred_at" db:"occurred_at"`
}

// Approve moves PENDING -> APPROVED and records the provider transaction id.
func (p *Payment) Approve(providerTxID string, now time.Time) error {
	if err := p.apply(ActionApprove, now); err != nil {
		return err
	}
	p.TransactionID = providerTxID
	p.ApprovedAt = &now
	return nil
}

// Fail moves PENDING -> FAILED.
func (p *Payment) Fail(now time.Time) error {
	return p.apply(ActionFail, now)
}

// Cancel moves APPROVED -> CANCELLED.
func (p *Payment) Cancel(now time.Time) error {
	if err := p.apply(ActionCancel, now); err != nil {
		return err
	}
	p.CancelledAt = &now
	return nil
}

// Rollback compensates: FAILED -> PENDING, CANCELLED -> APPROVED.
func (p *Payment) Rollback(now time.Time) error {
	if err := p.apply(ActionRollback, now); err != nil {
		return err
	}
	if p.Status == PaymentStatusPending {
		p.ApprovedAt = nil
		p.TransactionID = ""
	}
	if p.Status == PaymentStatusApproved {
		p.CancelledAt = nil
	}
	return nil
}

func (p *Payment) apply(action PaymentAction, now time.Time) error {
	next, err := NextStatus(p.Status, action)
	if err != nil {
		return err
	}

	p.Events = append(p.Events, StatusEvent{
		PaymentID:  p.ID,
		FromStatus: p.Status,
		ToStatus:   next,
		Action:     action,
		OccurredAt: now,
	})
	p.Status = next
	p.UpdatedAt = now
	return nil
}

// PaymentBrandAmount is the precomputed per-payment, per-brand share written
// at payment time so aggregation never needs the multi-way catalog join.
type PaymentBrandAmount struct {
	ID             int64           `json:"id" db:"id"`
	PaymentID      int64           `json:"payment_id" db:"payment_id"`
	BrandID        int64           `json:"brand_id" db:"brand_id"`
	Amount         money.Money     `json:"amount" db:"amount"`
	CommissionRate decimal.Decimal `json:"commission_rate" db:"commission_rate"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}
