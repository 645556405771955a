package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-backend/internal/domains/order/model"
	paymentModel "marketplace-backend/internal/domains/payment/model"
	paymentRepo "marketplace-backend/internal/domains/payment/repository"
	"marketplace-backend/pkg/database"
	"marketplace-backend/pkg/money"
)

// fakeRunner executes the TxFunc directly and records whether the
// transaction ended in rollback.
type fakeRunner struct {
	rolledBack bool
}

func (r *fakeRunner) InTx(ctx context.Context, fn database.TxFunc) error {
	err := fn(nil)
	if err != nil {
		r.rolledBack = true
	}
	return err
}

type fakeOrderRepo struct {
	order *model.Order

	statusSaved      bool
	savedStatus      model.OrderStatus
	savedDiscount    *money.Money
	discountSavedFor int64
}

func (f *fakeOrderRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, orderID int64) (*model.Order, error) {
	if f.order == nil || f.order.ID != orderID {
		return nil, model.ErrOrderNotFound
	}
	return f.order, nil
}

func (f *fakeOrderRepo) GetByOrderNo(ctx context.Context, orderNo string) (*model.Order, error) {
	if f.order == nil || f.order.OrderNo != orderNo {
		return nil, model.ErrOrderNotFound
	}
	return f.order, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	f.statusSaved = true
	f.savedStatus = order.Status
	return nil
}

func (f *fakeOrderRepo) UpdateDiscount(ctx context.Context, orderID int64, discount money.Money) error {
	f.savedDiscount = &discount
	f.discountSavedFor = orderID
	return nil
}

type fakeStockRepo struct {
	quantities map[int64]int

	decreased map[int64]int
	restored  map[int64]int
}

func (f *fakeStockRepo) GetQuantities(ctx context.Context, tx pgx.Tx, ids []int64) (map[int64]int, error) {
	out := make(map[int64]int)
	for _, id := range ids {
		if q, ok := f.quantities[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

func (f *fakeStockRepo) DecreaseStock(ctx context.Context, tx pgx.Tx, id int64, qty int) error {
	if f.quantities[id] < qty {
		return errors.New("insufficient stock")
	}
	f.quantities[id] -= qty
	if f.decreased == nil {
		f.decreased = make(map[int64]int)
	}
	f.decreased[id] += qty
	return nil
}

func (f *fakeStockRepo) RestoreStock(ctx context.Context, tx pgx.Tx, id int64, qty int) error {
	f.quantities[id] += qty
	if f.restored == nil {
		f.restored = make(map[int64]int)
	}
	f.restored[id] += qty
	return nil
}

type fakeCartRepo struct {
	removedFor []int64
	err        error
}

func (f *fakeCartRepo) RemoveOrderedLines(ctx context.Context, userID int64, ids []int64) error {
	if f.err != nil {
		return f.err
	}
	f.removedFor = append(f.removedFor, ids...)
	return nil
}

type fakeCouponService struct {
	discount money.Money

	used        []int64
	rolledBack  []int64
	useErr      error
	rollbackErr error
	calcErr     error
}

func (f *fakeCouponService) CalculateDiscount(ctx context.Context, userID, couponID int64, amount money.Money) (money.Money, error) {
	if f.calcErr != nil {
		return money.Zero, f.calcErr
	}
	return f.discount, nil
}

func (f *fakeCouponService) UseMemberCoupon(ctx context.Context, userID, couponID, orderID int64) error {
	if f.useErr != nil {
		return f.useErr
	}
	f.used = append(f.used, couponID)
	return nil
}

func (f *fakeCouponService) RollbackMemberCoupon(ctx context.Context, tx pgx.Tx, userID, couponID, orderID int64) error {
	if f.rollbackErr != nil {
		return f.rollbackErr
	}
	f.rolledBack = append(f.rolledBack, couponID)
	return nil
}

type fakePaymentRepo struct {
	payment *paymentModel.Payment
	updated bool
}

func (f *fakePaymentRepo) GetByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, orderID int64) (*paymentModel.Payment, error) {
	if f.payment == nil || f.payment.OrderID != orderID {
		return nil, paymentModel.ErrPaymentNotFound
	}
	return f.payment, nil
}

func (f *fakePaymentRepo) Update(ctx context.Context, tx pgx.Tx, p *paymentModel.Payment) error {
	f.updated = true
	return nil
}

func (f *fakePaymentRepo) Stats(ctx context.Context) (paymentRepo.PartitionStats, error) {
	return paymentRepo.PartitionStats{}, nil
}

func (f *fakePaymentRepo) ListUnsettledApprovedInRange(ctx context.Context, fromID, toID int64) ([]paymentModel.Payment, error) {
	return nil, nil
}

func (f *fakePaymentRepo) BrandAmountsByPaymentIDs(ctx context.Context, ids []int64) ([]paymentModel.PaymentBrandAmount, error) {
	return nil, nil
}

func (f *fakePaymentRepo) MarkSettled(ctx context.Context, tx pgx.Tx, ids []int64) error {
	return nil
}

type sagaFixture struct {
	runner   *fakeRunner
	orders   *fakeOrderRepo
	stocks   *fakeStockRepo
	payments *fakePaymentRepo
	carts    *fakeCartRepo
	coupons  *fakeCouponService
	service  OrderService
}

func newSagaFixture(order *model.Order, quantities map[int64]int) *sagaFixture {
	f := &sagaFixture{
		runner:   &fakeRunner{},
		orders:   &fakeOrderRepo{order: order},
		stocks:   &fakeStockRepo{quantities: quantities},
		payments: &fakePaymentRepo{},
		carts:    &fakeCartRepo{},
		coupons:  &fakeCouponService{discount: money.Zero},
	}
	f.service = NewOrderService(f.runner, f.orders, f.stocks, f.payments, f.carts, f.coupons)
	return f
}

func pendingOrder(couponID *int64) *model.Order {
	return &model.Order{
		ID:       10,
		OrderNo:  "ORD-2025-0001",
		UserID:   7,
		Status:   model.OrderStatusPending,
		CouponID: couponID,
		Lines: []model.OrderLine{
			{ProductOptionID: 100, Quantity: 2, UnitAmount: money.MustFromInt(5000)},
			{ProductOptionID: 200, Quantity: 1, UnitAmount: money.MustFromInt(3000)},
		},
	}
}

func TestCompleteOrderDecrementsStockAndCompletes(t *testing.T) {
	couponID := int64(55)
	f := newSagaFixture(pendingOrder(&couponID), map[int64]int{100: 5, 200: 5})

	report, err := f.service.CompleteOrder(context.Background(), 10)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.True(t, report.Valid())

	assert.Equal(t, 3, f.stocks.decreased[100]+f.stocks.decreased[200])
	assert.Equal(t, 3, f.stocks.quantities[100])
	assert.Equal(t, 4, f.stocks.quantities[200])

	assert.True(t, f.orders.statusSaved)
	assert.Equal(t, model.OrderStatusCompleted, f.orders.savedStatus)
	assert.False(t, f.runner.rolledBack)

	assert.ElementsMatch(t, []int64{100, 200}, f.carts.removedFor)
	assert.Equal(t, []int64{55}, f.coupons.used)
}

func TestCompleteOrderShortageReturnsReportAndRollsBack(t *testing.T) {
	f := newSagaFixture(pendingOrder(nil), map[int64]int{100: 1, 200: 5})

	report, err := f.service.CompleteOrder(context.Background(), 10)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.False(t, report.Valid())

	require.Len(t, report.Shortages, 1)
	assert.Equal(t, int64(100), report.Shortages[0].ProductOptionID)
	assert.Equal(t, 2, report.Shortages[0].RequestedQuantity)
	assert.Equal(t, 1, report.Shortages[0].AvailableQuantity)

	// Validate-all-first: no line is decremented when any line is short.
	assert.Empty(t, f.stocks.decreased)
	assert.Equal(t, 5, f.stocks.quantities[200])
	assert.False(t, f.orders.statusSaved)
	assert.True(t, f.runner.rolledBack)
	assert.Empty(t, f.carts.removedFor)
}

func TestCompleteOrderMissingStockRowCountsAsZero(t *testing.T) {
	f := newSagaFixture(pendingOrder(nil), map[int64]int{100: 5})

	report, err := f.service.CompleteOrder(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, report.Shortages, 1)
	assert.Equal(t, int64(200), report.Shortages[0].ProductOptionID)
	assert.Equal(t, 0, report.Shortages[0].AvailableQuantity)
}

func TestCompleteOrderRejectsNonPending(t *testing.T) {
	order := pendingOrder(nil)
	order.Status = model.OrderStatusCompleted
	f := newSagaFixture(order, map[int64]int{100: 5, 200: 5})

	_, err := f.service.CompleteOrder(context.Background(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidStatus)
	assert.Empty(t, f.stocks.decreased)
	assert.True(t, f.runner.rolledBack)
}

func TestCompleteOrderNotFound(t *testing.T) {
	f := newSagaFixture(pendingOrder(nil), map[int64]int{100: 5, 200: 5})

	_, err := f.service.CompleteOrder(context.Background(), 999)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestCompleteOrderCartAndCouponFailuresAreNotFatal(t *testing.T) {
	couponID := int64(55)
	f := newSagaFixture(pendingOrder(&couponID), map[int64]int{100: 5, 200: 5})
	f.carts.err = errors.New("cart store down")
	f.coupons.useErr = errors.New("coupon store down")

	report, err := f.service.CompleteOrder(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, report.Valid())
	assert.Equal(t, model.OrderStatusCompleted, f.orders.savedStatus)
}

func TestRollbackOrderRestoresStockAndCoupon(t *testing.T) {
	couponID := int64(55)
	order := pendingOrder(&couponID)
	order.Status = model.OrderStatusCompleted
	f := newSagaFixture(order, map[int64]int{100: 3, 200: 4})

	err := f.service.RollbackOrder(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 5, f.stocks.quantities[100])
	assert.Equal(t, 5, f.stocks.quantities[200])
	assert.Equal(t, model.OrderStatusPending, f.orders.savedStatus)
	assert.Equal(t, []int64{55}, f.coupons.rolledBack)
}

func TestRollbackOrderCouponFailureIsFatal(t *testing.T) {
	couponID := int64(55)
	order := pendingOrder(&couponID)
	order.Status = model.OrderStatusCompleted
	f := newSagaFixture(order, map[int64]int{100: 3, 200: 4})
	f.coupons.rollbackErr = errors.New("coupon row missing")

	err := f.service.RollbackOrder(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, f.runner.rolledBack)
}

func TestRollbackOrderCompensatesFailedPayment(t *testing.T) {
	order := pendingOrder(nil)
	order.Status = model.OrderStatusCompleted
	f := newSagaFixture(order, map[int64]int{100: 3, 200: 4})
	f.payments.payment = &paymentModel.Payment{
		OrderID: 10,
		Status:  paymentModel.PaymentStatusFailed,
	}

	err := f.service.RollbackOrder(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, f.payments.updated)
	assert.Equal(t, paymentModel.PaymentStatusPending, f.payments.payment.Status)
}

func TestRollbackOrderLeavesApprovedPaymentAlone(t *testing.T) {
	order := pendingOrder(nil)
	order.Status = model.OrderStatusCompleted
	f := newSagaFixture(order, map[int64]int{100: 3, 200: 4})
	f.payments.payment = &paymentModel.Payment{
		OrderID: 10,
		Status:  paymentModel.PaymentStatusApproved,
	}

	err := f.service.RollbackOrder(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, f.payments.updated)
	assert.Equal(t, paymentModel.PaymentStatusApproved, f.payments.payment.Status)
}

func TestRollbackOrderWithoutPaymentSucceeds(t *testing.T) {
	order := pendingOrder(nil)
	order.Status = model.OrderStatusCompleted
	f := newSagaFixture(order, map[int64]int{100: 3, 200: 4})

	err := f.service.RollbackOrder(context.Background(), 10)
	require.NoError(t, err)
}

func TestRollbackOrderRejectsPending(t *testing.T) {
	f := newSagaFixture(pendingOrder(nil), map[int64]int{100: 5, 200: 5})

	err := f.service.RollbackOrder(context.Background(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidStatus)
	assert.Empty(t, f.orders.savedStatus)
}

func TestValidateAndPrepareOrderComputesPayable(t *testing.T) {
	couponID := int64(55)
	f := newSagaFixture(pendingOrder(&couponID), nil)
	f.coupons.discount = money.MustFromInt(1000)

	// subtotal = 2x5000 + 1x3000 = 13000, payable = 12000
	prep, err := f.service.ValidateAndPrepareOrder(context.Background(), "ORD-2025-0001", 7, money.MustFromInt(12000))
	require.NoError(t, err)

	assert.Equal(t, int64(7), prep.UserID)
	assert.Equal(t, "12000.00", prep.PayableAmount.String())
	assert.Equal(t, "1000.00", prep.DiscountAmount.String())

	require.NotNil(t, f.orders.savedDiscount)
	assert.Equal(t, "1000.00", f.orders.savedDiscount.String())
	assert.Equal(t, int64(10), f.orders.discountSavedFor)
}

func TestValidateAndPrepareOrderAmountMismatch(t *testing.T) {
	f := newSagaFixture(pendingOrder(nil), nil)

	_, err := f.service.ValidateAndPrepareOrder(context.Background(), "ORD-2025-0001", 7, money.MustFromInt(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrAmountMismatch)
}

func TestValidateAndPrepareOrderWrongUser(t *testing.T) {
	f := newSagaFixture(pendingOrder(nil), nil)

	_, err := f.service.ValidateAndPrepareOrder(context.Background(), "ORD-2025-0001", 8, money.MustFromInt(13000))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}
