package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	paymentModel "marketplace-backend/internal/domains/payment/model"
	paymentRepo "marketplace-backend/internal/domains/payment/repository"
	"marketplace-backend/internal/domains/settlement/model"
	"marketplace-backend/internal/domains/settlement/repository"
	"marketplace-backend/internal/metrics"
	"marketplace-backend/pkg/database"
	"marketplace-backend/pkg/logger"
)

// taxRatePercent is VAT charged on the commission.
var taxRatePercent = decimal.NewFromInt(10)

// CreationService turns approved, unsettled payments into per-transaction
// settlement rows. The eligible id range is tiled into disjoint partitions
// and processed by a fixed-size worker pool; workers share nothing but the
// database.
type CreationService struct {
	payments    paymentRepo.PaymentRepository
	settlements repository.RepositoryInterface
	partitioner *PaymentPartitioner
	fees        *PgFeeCalculator
	runner      database.TxRunner
	gridSize    int
	workers     int
}

func NewCreationService(
	payments paymentRepo.PaymentRepository,
	settlements repository.RepositoryInterface,
	fees *PgFeeCalculator,
	runner database.TxRunner,
	gridSize, workers int,
) *CreationService {
	return &CreationService{
		payments:    payments,
		settlements: settlements,
		partitioner: NewPaymentPartitioner(),
		fees:        fees,
		runner:      runner,
		gridSize:    gridSize,
		workers:     workers,
	}
}

// Run creates settlement rows for every eligible payment and returns how many
// rows were written.
func (s *CreationService) Run(ctx context.Context) (int64, error) {
	stats, err := s.payments.Stats(ctx)
	if err != nil {
		return 0, err
	}

	partitions := s.partitioner.Partition(stats.MinID, stats.MaxID, stats.Count, s.gridSize)

	var written atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, partition := range partitions {
		if partition.Empty() {
			continue
		}
		g.Go(func() error {
			n, err := s.processPartition(ctx, partition)
			if err != nil {
				return fmt.Errorf("partition [%d,%d]: %w", partition.FromID, partition.ToID, err)
			}
			written.Add(n)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return written.Load(), err
	}

	if written.Load() > 0 {
		logger.Info("per-transaction settlements created", map[string]interface{}{
			"rows":       written.Load(),
			"partitions": len(partitions),
		})
	}
	return written.Load(), nil
}

func (s *CreationService) processPartition(ctx context.Context, partition IDRange) (int64, error) {
	payments, err := s.payments.ListUnsettledApprovedInRange(ctx, partition.FromID, partition.ToID)
	if err != nil {
		return 0, err
	}
	if len(payments) == 0 {
		return 0, nil
	}

	byID := make(map[int64]paymentModel.Payment, len(payments))
	paymentIDs := make([]int64, 0, len(payments))
	for _, p := range payments {
		byID[p.ID] = p
		paymentIDs = append(paymentIDs, p.ID)
	}

	brandAmounts, err := s.payments.BrandAmountsByPaymentIDs(ctx, paymentIDs)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	rows := make([]model.PerTransaction, 0, len(brandAmounts))
	matched := make(map[int64]bool, len(payments))
	for _, ba := range brandAmounts {
		payment, ok := byID[ba.PaymentID]
		if !ok {
			continue
		}

		row, err := s.buildRow(payment, ba, now)
		if err != nil {
			return 0, fmt.Errorf("payment %d brand %d: %w", ba.PaymentID, ba.BrandID, err)
		}
		rows = append(rows, row)
		matched[ba.PaymentID] = true
	}

	// Only payments that produced settlement rows may be marked settled. A
	// payment without brand-amount rows stays eligible and keeps alarming
	// until the missing data is repaired.
	settledIDs := make([]int64, 0, len(matched))
	for _, id := range paymentIDs {
		if matched[id] {
			settledIDs = append(settledIDs, id)
			continue
		}
		metrics.SettlementPaymentsUnmatched.Inc()
		logger.Warn("payment has no brand amounts, leaving it unsettled", map[string]interface{}{
			"payment_id": id,
		})
	}

	if len(rows) == 0 {
		return 0, nil
	}

	err = s.runner.InTx(ctx, func(tx pgx.Tx) error {
		if err := s.settlements.InsertPerTransactions(ctx, tx, rows); err != nil {
			return err
		}
		return s.payments.MarkSettled(ctx, tx, settledIDs)
	})
	if err != nil {
		return 0, err
	}

	return int64(len(rows)), nil
}

func (s *CreationService) buildRow(payment paymentModel.Payment, ba paymentModel.PaymentBrandAmount, now time.Time) (model.PerTransaction, error) {
	commission, err := ba.Amount.Multiply(ba.CommissionRate.Div(decimal.NewFromInt(100)))
	if err != nil {
		return model.PerTransaction{}, err
	}

	tax, err := commission.Multiply(taxRatePercent.Div(decimal.NewFromInt(100)))
	if err != nil {
		return model.PerTransaction{}, err
	}

	fee, err := s.fees.Calculate(payment.Method, ba.Amount)
	if err != nil {
		return model.PerTransaction{}, err
	}

	transactedAt := payment.CreatedAt
	if payment.ApprovedAt != nil {
		transactedAt = *payment.ApprovedAt
	}

	return model.PerTransaction{
		PaymentID:          payment.ID,
		BrandID:            ba.BrandID,
		TransactionAmount:  ba.Amount,
		CommissionAmount:   commission,
		TaxAmount:          tax,
		PgFeeAmount:        fee,
		CommissionRate:     ba.CommissionRate,
		TransactionDate:    transactedAt.Local(),
		TransactionDateUTC: transactedAt.UTC(),
		CreatedAt:          now,
	}, nil
}
