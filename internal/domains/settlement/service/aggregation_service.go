package service

import (
	"context"
	"fmt"
	"time"

	"marketplace-backend/internal/domains/settlement/model"
	"marketplace-backend/internal/domains/settlement/repository"
	"marketplace-backend/internal/metrics"
	"marketplace-backend/pkg/logger"
	"marketplace-backend/pkg/money"
)

// AggregationService rolls settlement rows up one granularity at a time:
// per-transaction -> daily -> weekly/monthly -> yearly. Each run is scoped to
// one brand and one period; re-running a period overwrites its aggregate.
type AggregationService struct {
	repository repository.RepositoryInterface
	numbers    *NumberGenerator
}

func NewAggregationService(r repository.RepositoryInterface) *AggregationService {
	return &AggregationService{
		repository: r,
		numbers:    NewNumberGenerator(),
	}
}

// AggregateDaily folds one brand's per-transaction rows for a date into the
// daily aggregate. Returns nil without writing when the brand had no
// transactions that day.
func (s *AggregationService) AggregateDaily(ctx context.Context, brandID int64, date time.Time) (*model.Daily, error) {
	rows, err := s.repository.ListPerTransactionsByBrandAndDate(ctx, brandID, date)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	totals, err := foldPerTransactions(rows)
	if err != nil {
		return nil, fmt.Errorf("brand %d date %s: %w", brandID, date.Format("2006-01-02"), err)
	}
	totals.SettlementNumber = s.numbers.Daily(date)
	totals.Status = model.SettlementPending

	daily := &model.Daily{
		BrandID:        brandID,
		SettlementDate: date,
		Totals:         totals,
	}
	if err := s.repository.UpsertDaily(ctx, daily); err != nil {
		return nil, err
	}

	metrics.SettlementRowsWritten.WithLabelValues(string(model.GranularityDaily)).Inc()
	return daily, nil
}

// AggregateWeekly folds the brand's daily aggregates inside [start, end]
// (a Monday-Sunday window) into the weekly aggregate keyed by the start
// date's (year, month, week-of-month).
func (s *AggregationService) AggregateWeekly(ctx context.Context, brandID int64, start, end time.Time) (*model.Weekly, error) {
	dailies, err := s.repository.ListDailyInRange(ctx, brandID, start, end)
	if err != nil {
		return nil, err
	}
	if len(dailies) == 0 {
		return nil, nil
	}

	totals, err := foldDailies(dailies)
	if err != nil {
		return nil, fmt.Errorf("brand %d week starting %s: %w", brandID, start.Format("2006-01-02"), err)
	}
	totals.SettlementNumber = s.numbers.Weekly(start)
	totals.Status = model.SettlementPending

	weekly := &model.Weekly{
		BrandID:     brandID,
		Year:        start.Year(),
		Month:       int(start.Month()),
		WeekOfMonth: WeekOfMonth(start),
		StartDate:   start,
		EndDate:     end,
		Totals:      totals,
	}
	if err := s.repository.UpsertWeekly(ctx, weekly); err != nil {
		return nil, err
	}

	metrics.SettlementRowsWritten.WithLabelValues(string(model.GranularityWeekly)).Inc()
	return weekly, nil
}

// AggregateMonthly folds the brand's daily aggregates of one calendar month.
func (s *AggregationService) AggregateMonthly(ctx context.Context, brandID int64, year int, month time.Month) (*model.Monthly, error) {
	start, end := MonthRange(year, month)
	dailies, err := s.repository.ListDailyInRange(ctx, brandID, start, end)
	if err != nil {
		return nil, err
	}
	if len(dailies) == 0 {
		return nil, nil
	}

	totals, err := foldDailies(dailies)
	if err != nil {
		return nil, fmt.Errorf("brand %d month %d-%02d: %w", brandID, year, month, err)
	}
	totals.SettlementNumber = s.numbers.Monthly(year, month)
	totals.Status = model.SettlementPending

	monthly := &model.Monthly{
		BrandID: brandID,
		Year:    year,
		Month:   int(month),
		Totals:  totals,
	}
	if err := s.repository.UpsertMonthly(ctx, monthly); err != nil {
		return nil, err
	}

	metrics.SettlementRowsWritten.WithLabelValues(string(model.GranularityMonthly)).Inc()
	return monthly, nil
}

// AggregateYearly folds the brand's monthly aggregates of one calendar year.
func (s *AggregationService) AggregateYearly(ctx context.Context, brandID int64, year int) (*model.Yearly, error) {
	monthlies, err := s.repository.ListMonthlyInYear(ctx, brandID, year)
	if err != nil {
		return nil, err
	}
	if len(monthlies) == 0 {
		return nil, nil
	}

	totals := model.Totals{
		TotalSalesAmount:      money.Zero,
		TotalCommissionAmount: money.Zero,
		TotalTaxAmount:        money.Zero,
		TotalPgFeeAmount:      money.Zero,
	}
	for _, m := range monthlies {
		if err := addTotals(&totals, m.Totals); err != nil {
			return nil, fmt.Errorf("brand %d year %d: %w", brandID, year, err)
		}
	}
	if err := deriveFinal(&totals); err != nil {
		return nil, fmt.Errorf("brand %d year %d: %w", brandID, year, err)
	}
	totals.SettlementNumber = s.numbers.Yearly(year)
	totals.Status = model.SettlementPending

	yearly := &model.Yearly{
		BrandID: brandID,
		Year:    year,
		Totals:  totals,
	}
	if err := s.repository.UpsertYearly(ctx, yearly); err != nil {
		return nil, err
	}

	metrics.SettlementRowsWritten.WithLabelValues(string(model.GranularityYearly)).Inc()
	return yearly, nil
}

// CompletePending sweeps PENDING aggregates created before the cutoff to
// COMPLETED in two phases: claim them as PROCESSING, then complete every
// PROCESSING row. The second phase also picks up rows a crashed sweep claimed
// but never finished, so the sweep stays idempotent. An already-completed row
// is never touched.
func (s *AggregationService) CompletePending(ctx context.Context, cutoff time.Time) (int64, error) {
	claimed, err := s.repository.ClaimPendingBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	completed, err := s.repository.CompleteProcessing(ctx)
	if err != nil {
		return 0, err
	}
	if completed > 0 {
		logger.Info("settlement aggregates auto-completed", map[string]interface{}{
			"claimed": claimed,
			"count":   completed,
			"cutoff":  cutoff.Format(time.RFC3339),
		})
	}
	return completed, nil
}

func foldPerTransactions(rows []model.PerTransaction) (model.Totals, error) {
	totals := model.Totals{
		TotalOrderCount:       int64(len(rows)),
		TotalSalesAmount:      money.Zero,
		TotalCommissionAmount: money.Zero,
		TotalTaxAmount:        money.Zero,
		TotalPgFeeAmount:      money.Zero,
	}

	var err error
	for _, row := range rows {
		if totals.TotalSalesAmount, err = totals.TotalSalesAmount.Add(row.TransactionAmount); err != nil {
			return model.Totals{}, err
		}
		if totals.TotalCommissionAmount, err = totals.TotalCommissionAmount.Add(row.CommissionAmount); err != nil {
			return model.Totals{}, err
		}
		if totals.TotalTaxAmount, err = totals.TotalTaxAmount.Add(row.TaxAmount); err != nil {
			return model.Totals{}, err
		}
		if totals.TotalPgFeeAmount, err = totals.TotalPgFeeAmount.Add(row.PgFeeAmount); err != nil {
			return model.Totals{}, err
		}
	}

	if err := deriveFinal(&totals); err != nil {
		return model.Totals{}, err
	}
	return totals, nil
}

func foldDailies(dailies []model.Daily) (model.Totals, error) {
	totals := model.Totals{
		TotalSalesAmount:      money.Zero,
		TotalCommissionAmount: money.Zero,
		TotalTaxAmount:        money.Zero,
		TotalPgFeeAmount:      money.Zero,
	}
	for _, d := range dailies {
		if err := addTotals(&totals, d.Totals); err != nil {
			return model.Totals{}, err
		}
	}
	if err := deriveFinal(&totals); err != nil {
		return model.Totals{}, err
	}
	return totals, nil
}

func addTotals(dst *model.Totals, src model.Totals) error {
	var err error
	dst.TotalOrderCount += src.TotalOrderCount
	if dst.TotalSalesAmount, err = dst.TotalSalesAmount.Add(src.TotalSalesAmount); err != nil {
		return err
	}
	if dst.TotalCommissionAmount, err = dst.TotalCommissionAmount.Add(src.TotalCommissionAmount); err != nil {
		return err
	}
	if dst.TotalTaxAmount, err = dst.TotalTaxAmount.Add(src.TotalTaxAmount); err != nil {
		return err
	}
	if dst.TotalPgFeeAmount, err = dst.TotalPgFeeAmount.Add(src.TotalPgFeeAmount); err != nil {
		return err
	}
	return nil
}

// deriveFinal computes final = sales - commission - tax - pg fee.
func deriveFinal(totals *model.Totals) error {
	final, err := totals.TotalSalesAmount.Subtract(totals.TotalCommissionAmount)
	if err == nil {
		final, err = final.Subtract(totals.TotalTaxAmount)
	}
	if err == nil {
		final, err = final.Subtract(totals.TotalPgFeeAmount)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrNegativeSettlement, err)
	}
	totals.FinalSettlementAmount = final
	return nil
}
