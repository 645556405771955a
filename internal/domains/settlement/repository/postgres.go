package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"marketplace-backend/internal/domains/settlement/model"
	"marketplace-backend/pkg/money"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) ListBrandIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	query := `SELECT id FROM brands WHERE id > $1 ORDER BY id LIMIT $2`

	rows, err := r.pool.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list brand ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan brand id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *postgresRepository) InsertPerTransactions(ctx context.Context, tx pgx.Tx, txRows []model.PerTransaction) error {
	columns := []string{
		"payment_id", "brand_id", "transaction_amount", "commission_amount",
		"tax_amount", "pg_fee_amount", "commission_rate",
		"transaction_date", "transaction_date_utc", "created_at",
	}

	rows := make([][]interface{}, len(txRows))
	for i, row := range txRows {
		rows[i] = []interface{}{
			row.PaymentID,
			row.BrandID,
			row.TransactionAmount.Amount(),
			row.CommissionAmount.Amount(),
			row.TaxAmount.Amount(),
			row.PgFeeAmount.Amount(),
			row.CommissionRate,
			row.TransactionDate,
			row.TransactionDateUTC,
			row.CreatedAt,
		}
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"settlement_per_transaction"}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to insert per-transaction settlements: %w", err)
	}
	if copied != int64(len(txRows)) {
		return fmt.Errorf("expected to insert %d settlement rows, inserted %d", len(txRows), copied)
	}

	return nil
}

func (r *postgresRepository) ListPerTransactionsByBrandAndDate(ctx context.Context, brandID int64, date time.Time) ([]model.PerTransaction, error) {
	query := `
		SELECT id, payment_id, brand_id, transaction_amount, commission_amount,
		       tax_amount, pg_fee_amount, commission_rate,
		       transaction_date, transaction_date_utc, created_at
		FROM settlement_per_transaction
		WHERE brand_id = $1 AND transaction_date::date = $2::date
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, brandID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list per-transaction settlements: %w", err)
	}
	defer rows.Close()

	var result []model.PerTransaction
	for rows.Next() {
		var pt model.PerTransaction
		var amount, commission, tax, fee decimal.Decimal
		if err := rows.Scan(
			&pt.ID, &pt.PaymentID, &pt.BrandID, &amount, &commission,
			&tax, &fee, &pt.CommissionRate,
			&pt.TransactionDate, &pt.TransactionDateUTC, &pt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan per-transaction settlement: %w", err)
		}
		if pt.TransactionAmount, err = money.New(amount); err != nil {
			return nil, err
		}
		if pt.CommissionAmount, err = money.New(commission); err != nil {
			return nil, err
		}
		if pt.TaxAmount, err = money.New(tax); err != nil {
			return nil, err
		}
		if pt.PgFeeAmount, err = money.New(fee); err != nil {
			return nil, err
		}
		result = append(result, pt)
	}

	return result, rows.Err()
}

func (r *postgresRepository) UpsertDaily(ctx context.Context, d *model.Daily) error {
	query := `
		INSERT INTO settlement_daily (
			brand_id, settlement_date, settlement_number, total_order_count,
			total_sales_amount, total_commission_amount, total_tax_amount,
			total_pg_fee_amount, final_settlement_amount, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (brand_id, settlement_date) DO UPDATE SET
			total_order_count = EXCLUDED.total_order_count,
			total_sales_amount = EXCLUDED.total_sales_amount,
			total_commission_amount = EXCLUDED.total_commission_amount,
			total_tax_amount = EXCLUDED.total_tax_amount,
			total_pg_fee_amount = EXCLUDED.total_pg_fee_amount,
			final_settlement_amount = EXCLUDED.final_settlement_amount,
			updated_at = NOW()
		RETURNING id, settlement_number
	`

	err := r.pool.QueryRow(ctx, query,
		d.BrandID, d.SettlementDate, d.SettlementNumber, d.TotalOrderCount,
		d.TotalSalesAmount.Amount(), d.TotalCommissionAmount.Amount(),
		d.TotalTaxAmount.Amount(), d.TotalPgFeeAmount.Amount(),
		d.FinalSettlementAmount.Amount(), d.Status,
	).Scan(&d.ID, &d.SettlementNumber)
	if err != nil {
		return fmt.Errorf("failed to upsert daily settlement: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpsertWeekly(ctx context.Context, w *model.Weekly) error {
	query := `
		INSERT INTO settlement_weekly (
			brand_id, year, month, week_of_month, start_date, end_date,
			settlement_number, total_order_count, total_sales_amount,
			total_commission_amount, total_tax_amount, total_pg_fee_amount,
			final_settlement_amount, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		ON CONFLICT (brand_id, year, month, week_of_month) DO UPDATE SET
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			total_order_count = EXCLUDED.total_order_count,
			total_sales_amount = EXCLUDED.total_sales_amount,
			total_commission_amount = EXCLUDED.total_commission_amount,
			total_tax_amount = EXCLUDED.total_tax_amount,
			total_pg_fee_amount = EXCLUDED.total_pg_fee_amount,
			final_settlement_amount = EXCLUDED.final_settlement_amount,
			updated_at = NOW()
		RETURNING id, settlement_number
	`

	err := r.pool.QueryRow(ctx, query,
		w.BrandID, w.Year, w.Month, w.WeekOfMonth, w.StartDate, w.EndDate,
		w.SettlementNumber, w.TotalOrderCount, w.TotalSalesAmount.Amount(),
		w.TotalCommissionAmount.Amount(), w.TotalTaxAmount.Amount(),
		w.TotalPgFeeAmount.Amount(), w.FinalSettlementAmount.Amount(), w.Status,
	).Scan(&w.ID, &w.SettlementNumber)
	if err != nil {
		return fmt.Errorf("failed to upsert weekly settlement: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpsertMonthly(ctx context.Context, m *model.Monthly) error {
	query := `
		INSERT INTO settlement_monthly (
			brand_id, year, month, settlement_number, total_order_count,
			total_sales_amount, total_commission_amount, total_tax_amount,
			total_pg_fee_amount, final_settlement_amount, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (brand_id, year, month) DO UPDATE SET
			total_order_count = EXCLUDED.total_order_count,
			total_sales_amount = EXCLUDED.total_sales_amount,
			total_commission_amount = EXCLUDED.total_commission_amount,
			total_tax_amount = EXCLUDED.total_tax_amount,
			total_pg_fee_amount = EXCLUDED.total_pg_fee_amount,
			final_settlement_amount = EXCLUDED.final_settlement_amount,
			updated_at = NOW()
		RETURNING id, settlement_number
	`

	err := r.pool.QueryRow(ctx, query,
		m.BrandID, m.Year, m.Month, m.SettlementNumber, m.TotalOrderCount,
		m.TotalSalesAmount.Amount(), m.TotalCommissionAmount.Amount(),
		m.TotalTaxAmount.Amount(), m.TotalPgFeeAmount.Amount(),
		m.FinalSettlementAmount.Amount(), m.Status,
	).Scan(&m.ID, &m.SettlementNumber)
	if err != nil {
		return fmt.Errorf("failed to upsert monthly settlement: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpsertYearly(ctx context.Context, y *model.Yearly) error {
	query := `
		INSERT INTO settlement_yearly (
			brand_id, year, settlement_number, total_order_count,
			total_sales_amount, total_commission_amount, total_tax_amount,
			total_pg_fee_amount, final_settlement_amount, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (brand_id, year) DO UPDATE SET
			total_order_count = EXCLUDED.total_order_count,
			total_sales_amount = EXCLUDED.total_sales_amount,
			total_commission_amount = EXCLUDED.total_commission_amount,
			total_tax_amount = EXCLUDED.total_tax_amount,
			total_pg_fee_amount = EXCLUDED.total_pg_fee_amount,
			final_settlement_amount = EXCLUDED.final_settlement_amount,
			updated_at = NOW()
		RETURNING id, settlement_number
	`

	err := r.pool.QueryRow(ctx, query,
		y.BrandID, y.Year, y.SettlementNumber, y.TotalOrderCount,
		y.TotalSalesAmount.Amount(), y.TotalCommissionAmount.Amount(),
		y.TotalTaxAmount.Amount(), y.TotalPgFeeAmount.Amount(),
		y.FinalSettlementAmount.Amount(), y.Status,
	).Scan(&y.ID, &y.SettlementNumber)
	if err != nil {
		return fmt.Errorf("failed to upsert yearly settlement: %w", err)
	}

	return nil
}

const dailyColumns = `id, brand_id, settlement_date, settlement_number, total_order_count,
	total_sales_amount, total_commission_amount, total_tax_amount,
	total_pg_fee_amount, final_settlement_amount, status, created_at, updated_at`

func (r *postgresRepository) ListDailyInRange(ctx context.Context, brandID int64, start, end time.Time) ([]model.Daily, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM settlement_daily
		WHERE brand_id = $1 AND settlement_date BETWEEN $2::date AND $3::date
		ORDER BY settlement_date
	`, dailyColumns)

	return r.queryDaily(ctx, query, brandID, start, end)
}

func (r *postgresRepository) ListDailyByDate(ctx context.Context, date time.Time) ([]model.Daily, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM settlement_daily
		WHERE settlement_date = $1::date
		ORDER BY brand_id
	`, dailyColumns)

	return r.queryDaily(ctx, query, date)
}

func (r *postgresRepository) queryDaily(ctx context.Context, query string, args ...any) ([]model.Daily, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily settlements: %w", err)
	}
	defer rows.Close()

	var result []model.Daily
	for rows.Next() {
		var d model.Daily
		var totals totalsColumns
		if err := rows.Scan(
			&d.ID, &d.BrandID, &d.SettlementDate, &d.SettlementNumber, &d.TotalOrderCount,
			&totals.sales, &totals.commission, &totals.tax, &totals.fee, &totals.final,
			&d.Status, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily settlement: %w", err)
		}
		if err := totals.apply(&d.Totals); err != nil {
			return nil, err
		}
		result = append(result, d)
	}

	return result, rows.Err()
}

func (r *postgresRepository) ListWeeklyByPeriod(ctx context.Context, year, month int) ([]model.Weekly, error) {
	query := `
		SELECT id, brand_id, year, month, week_of_month, start_date, end_date,
		       settlement_number, total_order_count, total_sales_amount,
		       total_commission_amount, total_tax_amount, total_pg_fee_amount,
		       final_settlement_amount, status, created_at, updated_at
		FROM settlement_weekly
		WHERE year = $1 AND month = $2
		ORDER BY brand_id, week_of_month
	`

	rows, err := r.pool.Query(ctx, query, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly settlements: %w", err)
	}
	defer rows.Close()

	var result []model.Weekly
	for rows.Next() {
		var w model.Weekly
		var totals totalsColumns
		if err := rows.Scan(
			&w.ID, &w.BrandID, &w.Year, &w.Month, &w.WeekOfMonth, &w.StartDate, &w.EndDate,
			&w.SettlementNumber, &w.TotalOrderCount, &totals.sales,
			&totals.commission, &totals.tax, &totals.fee,
			&totals.final, &w.Status, &w.CreatedAt, &w.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan weekly settlement: %w", err)
		}
		if err := totals.apply(&w.Totals); err != nil {
			return nil, err
		}
		result = append(result, w)
	}

	return result, rows.Err()
}

const monthlyColumns = `id, brand_id, year, month, settlement_number, total_order_count,
	total_sales_amount, total_commission_amount, total_tax_amount,
	total_pg_fee_amount, final_settlement_amount, status, created_at, updated_at`

func (r *postgresRepository) ListMonthlyInYear(ctx context.Context, brandID int64, year int) ([]model.Monthly, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM settlement_monthly
		WHERE brand_id = $1 AND year = $2
		ORDER BY month
	`, monthlyColumns)

	return r.queryMonthly(ctx, query, brandID, year)
}

func (r *postgresRepository) ListMonthlyByPeriod(ctx context.Context, year, month int) ([]model.Monthly, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM settlement_monthly
		WHERE year = $1 AND month = $2
		ORDER BY brand_id
	`, monthlyColumns)

	return r.queryMonthly(ctx, query, year, month)
}

func (r *postgresRepository) queryMonthly(ctx context.Context, query string, args ...any) ([]model.Monthly, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly settlements: %w", err)
	}
	defer rows.Close()

	var result []model.Monthly
	for rows.Next() {
		var m model.Monthly
		var totals totalsColumns
		if err := rows.Scan(
			&m.ID, &m.BrandID, &m.Year, &m.Month, &m.SettlementNumber, &m.TotalOrderCount,
			&totals.sales, &totals.commission, &totals.tax, &totals.fee, &totals.final,
			&m.Status, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan monthly settlement: %w", err)
		}
		if err := totals.apply(&m.Totals); err != nil {
			return nil, err
		}
		result = append(result, m)
	}

	return result, rows.Err()
}

func (r *postgresRepository) ListYearlyByYear(ctx context.Context, year int) ([]model.Yearly, error) {
	query := `
		SELECT id, brand_id, year, settlement_number, total_order_count,
		       total_sales_amount, total_commission_amount, total_tax_amount,
		       total_pg_fee_amount, final_settlement_amount, status, created_at, updated_at
		FROM settlement_yearly
		WHERE year = $1
		ORDER BY brand_id
	`

	rows, err := r.pool.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list yearly settlements: %w", err)
	}
	defer rows.Close()

	var result []model.Yearly
	for rows.Next() {
		var y model.Yearly
		var totals totalsColumns
		if err := rows.Scan(
			&y.ID, &y.BrandID, &y.Year, &y.SettlementNumber, &y.TotalOrderCount,
			&totals.sales, &totals.commission, &totals.tax, &totals.fee, &totals.final,
			&y.Status, &y.CreatedAt, &y.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan yearly settlement: %w", err)
		}
		if err := totals.apply(&y.Totals); err != nil {
			return nil, err
		}
		result = append(result, y)
	}

	return result, rows.Err()
}

var aggregateTables = []string{"settlement_daily", "settlement_weekly", "settlement_monthly", "settlement_yearly"}

func (r *postgresRepository) ClaimPendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64
	for _, table := range aggregateTables {
		query := fmt.Sprintf(`
			UPDATE %s SET status = $1, updated_at = NOW()
			WHERE status = $2 AND created_at <= $3
		`, table)

		tag, err := r.pool.Exec(ctx, query, model.SettlementProcessing, model.SettlementPending, cutoff)
		if err != nil {
			return total, fmt.Errorf("failed to claim pending settlements in %s: %w", table, err)
		}
		total += tag.RowsAffected()
	}

	return total, nil
}

func (r *postgresRepository) CompleteProcessing(ctx context.Context) (int64, error) {
	var total int64
	for _, table := range aggregateTables {
		query := fmt.Sprintf(`
			UPDATE %s SET status = $1, updated_at = NOW()
			WHERE status = $2
		`, table)

		tag, err := r.pool.Exec(ctx, query, model.SettlementCompleted, model.SettlementProcessing)
		if err != nil {
			return total, fmt.Errorf("failed to complete processing settlements in %s: %w", table, err)
		}
		total += tag.RowsAffected()
	}

	return total, nil
}

// totalsColumns bridges decimal columns into money.Money fields.
type totalsColumns struct {
	sales, commission, tax, fee, final decimal.Decimal
}

func (tc *totalsColumns) apply(t *model.Totals) error {
	var err error
	if t.TotalSalesAmount, err = money.New(tc.sales); err != nil {
		return fmt.Errorf("invalid stored sales amount: %w", err)
	}
	if t.TotalCommissionAmount, err = money.New(tc.commission); err != nil {
		return fmt.Errorf("invalid stored commission amount: %w", err)
	}
	if t.TotalTaxAmount, err = money.New(tc.tax); err != nil {
		return fmt.Errorf("invalid stored tax amount: %w", err)
	}
	if t.TotalPgFeeAmount, err = money.New(tc.fee); err != nil {
		return fmt.Errorf("invalid stored pg fee amount: %w", err)
	}
	if t.FinalSettlementAmount, err = money.New(tc.final); err != nil {
		return fmt.Errorf("invalid stored final settlement amount: %w", err)
	}
	return nil
}
