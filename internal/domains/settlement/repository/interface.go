package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"marketplace-backend/internal/domains/settlement/model"
)

type RepositoryInterface interface {
	// ListBrandIDs pages brand ids in a bounded chunk, ids greater than
	// afterID, ascending.
	ListBrandIDs(ctx context.Context, afterID int64, limit int) ([]int64, error)

	// InsertPerTransactions writes per-transaction rows inside the creation
	// transaction, together with marking the source payments settled.
	InsertPerTransactions(ctx context.Context, tx pgx.Tx, rows []model.PerTransaction) error

	// ListPerTransactionsByBrandAndDate reads one brand's per-transaction
	// rows for a local transaction date.
	ListPerTransactionsByBrandAndDate(ctx context.Context, brandID int64, date time.Time) ([]model.PerTransaction, error)

	// Upserts are idempotent on the period key: totals are overwritten,
	// the settlement number assigned on first insert is preserved.
	UpsertDaily(ctx context.Context, d *model.Daily) error
	UpsertWeekly(ctx context.Context, w *model.Weekly) error
	UpsertMonthly(ctx context.Context, m *model.Monthly) error
	UpsertYearly(ctx context.Context, y *model.Yearly) error

	ListDailyInRange(ctx context.Context, brandID int64, start, end time.Time) ([]model.Daily, error)
	ListMonthlyInYear(ctx context.Context, brandID int64, year int) ([]model.Monthly, error)

	// Period reads across brands, for the ops API and report export.
	ListDailyByDate(ctx context.Context, date time.Time) ([]model.Daily, error)
	ListWeeklyByPeriod(ctx context.Context, year, month int) ([]model.Weekly, error)
	ListMonthlyByPeriod(ctx context.Context, year, month int) ([]model.Monthly, error)
	ListYearlyByYear(ctx context.Context, year int) ([]model.Yearly, error)

	// ClaimPendingBefore moves PENDING aggregates created before the cutoff
	// to PROCESSING across all granularities, claiming them for a completion
	// sweep; returns rows claimed.
	ClaimPendingBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// CompleteProcessing transitions every PROCESSING aggregate to
	// COMPLETED, including rows a crashed sweep claimed but never finished;
	// returns rows completed.
	CompleteProcessing(ctx context.Context) (int64, error)
}
