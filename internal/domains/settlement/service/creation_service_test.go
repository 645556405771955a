package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paymentModel "marketplace-backend/internal/domains/payment/model"
	paymentRepo "marketplace-backend/internal/domains/payment/repository"
	"marketplace-backend/pkg/database"
	"marketplace-backend/pkg/money"
)

// fakePaymentStore serves eligible payments by id range and records what
// got marked settled.
type fakePaymentStore struct {
	payments     []paymentModel.Payment
	brandAmounts []paymentModel.PaymentBrandAmount

	settled []int64
}

func (f *fakePaymentStore) GetByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, orderID int64) (*paymentModel.Payment, error) {
	return nil, paymentModel.ErrPaymentNotFound
}

func (f *fakePaymentStore) Update(ctx context.Context, tx pgx.Tx, p *paymentModel.Payment) error {
	return nil
}

func (f *fakePaymentStore) Stats(ctx context.Context) (paymentRepo.PartitionStats, error) {
	stats := paymentRepo.PartitionStats{}
	for _, p := range f.payments {
		if stats.Count == 0 || p.ID < stats.MinID {
			stats.MinID = p.ID
		}
		if p.ID > stats.MaxID {
			stats.MaxID = p.ID
		}
		stats.Count++
	}
	return stats, nil
}

func (f *fakePaymentStore) ListUnsettledApprovedInRange(ctx context.Context, fromID, toID int64) ([]paymentModel.Payment, error) {
	var out []paymentModel.Payment
	for _, p := range f.payments {
		if p.ID >= fromID && p.ID <= toID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePaymentStore) BrandAmountsByPaymentIDs(ctx context.Context, ids []int64) ([]paymentModel.PaymentBrandAmount, error) {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []paymentModel.PaymentBrandAmount
	for _, ba := range f.brandAmounts {
		if want[ba.PaymentID] {
			out = append(out, ba)
		}
	}
	return out, nil
}

func (f *fakePaymentStore) MarkSettled(ctx context.Context, tx pgx.Tx, ids []int64) error {
	f.settled = append(f.settled, ids...)
	return nil
}

type nopRunner struct{}

func (nopRunner) InTx(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

func approvedPayment(id int64, method string) paymentModel.Payment {
	approvedAt := time.Date(2025, 10, 30, 12, 0, 0, 0, time.UTC)
	return paymentModel.Payment{
		ID:         id,
		OrderID:    id,
		Method:     method,
		Status:     paymentModel.PaymentStatusApproved,
		ApprovedAt: &approvedAt,
	}
}

func brandAmount(paymentID, brandID int64, amount int64, rate int64) paymentModel.PaymentBrandAmount {
	return paymentModel.PaymentBrandAmount{
		PaymentID:      paymentID,
		BrandID:        brandID,
		Amount:         money.MustFromInt(amount),
		CommissionRate: decimal.NewFromInt(rate),
	}
}

func TestCreationRunWritesRowPerBrandAmount(t *testing.T) {
	payments := &fakePaymentStore{
		payments: []paymentModel.Payment{
			approvedPayment(1, "카드"),
			approvedPayment(2, "계좌이체"),
		},
		brandAmounts: []paymentModel.PaymentBrandAmount{
			brandAmount(1, 10, 10000, 10),
			brandAmount(1, 20, 5000, 10),
			brandAmount(2, 10, 8000, 12),
		},
	}
	settlements := &fakeSettlementRepo{}
	svc := NewCreationService(payments, settlements, NewPgFeeCalculator(nil), nopRunner{}, 4, 1)

	written, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), written)

	require.Len(t, settlements.perTransaction, 3)
	assert.ElementsMatch(t, []int64{1, 2}, payments.settled)

	byBrand := make(map[[2]int64]int, 3)
	for i, row := range settlements.perTransaction {
		byBrand[[2]int64{row.PaymentID, row.BrandID}] = i
	}

	// Payment 1, brand 10: 10000 at 10% commission, card fee 3.4%.
	row := settlements.perTransaction[byBrand[[2]int64{1, 10}]]
	assert.Equal(t, "10000.00", row.TransactionAmount.String())
	assert.Equal(t, "1000.00", row.CommissionAmount.String())
	assert.Equal(t, "100.00", row.TaxAmount.String())
	assert.Equal(t, "340.00", row.PgFeeAmount.String())
	assert.Equal(t, "2025-10-30", row.TransactionDateUTC.Format("2006-01-02"))

	// Payment 2, brand 10: 8000 at 12% commission, bank transfer fee 2.0%.
	row = settlements.perTransaction[byBrand[[2]int64{2, 10}]]
	assert.Equal(t, "960.00", row.CommissionAmount.String())
	assert.Equal(t, "96.00", row.TaxAmount.String())
	assert.Equal(t, "160.00", row.PgFeeAmount.String())
}

func TestCreationRunLeavesPaymentWithoutBrandAmountsUnsettled(t *testing.T) {
	payments := &fakePaymentStore{
		payments: []paymentModel.Payment{
			approvedPayment(1, "카드"),
			approvedPayment(2, "카드"), // no brand amounts recorded
		},
		brandAmounts: []paymentModel.PaymentBrandAmount{
			brandAmount(1, 10, 10000, 10),
		},
	}
	settlements := &fakeSettlementRepo{}
	svc := NewCreationService(payments, settlements, NewPgFeeCalculator(nil), nopRunner{}, 4, 1)

	written, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), written)

	require.Len(t, settlements.perTransaction, 1)
	assert.Equal(t, int64(1), settlements.perTransaction[0].PaymentID)

	// Payment 2 stays eligible for the next run instead of silently
	// dropping out of the pipeline.
	assert.Equal(t, []int64{1}, payments.settled)
}

func TestCreationRunNothingEligible(t *testing.T) {
	payments := &fakePaymentStore{}
	settlements := &fakeSettlementRepo{}
	svc := NewCreationService(payments, settlements, NewPgFeeCalculator(nil), nopRunner{}, 4, 1)

	written, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, written)
	assert.Empty(t, settlements.perTransaction)
	assert.Empty(t, payments.settled)
}

func TestCreationRunPartitionsCoverSparseIDs(t *testing.T) {
	// ids far apart relative to the grid still all land in some partition
	payments := &fakePaymentStore{
		payments: []paymentModel.Payment{
			approvedPayment(1, "카드"),
			approvedPayment(1000, "카드"),
		},
		brandAmounts: []paymentModel.PaymentBrandAmount{
			brandAmount(1, 10, 1000, 10),
			brandAmount(1000, 10, 2000, 10),
		},
	}
	settlements := &fakeSettlementRepo{}
	svc := NewCreationService(payments, settlements, NewPgFeeCalculator(nil), nopRunner{}, 8, 1)

	written, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), written)
	assert.ElementsMatch(t, []int64{1, 1000}, payments.settled)
}
