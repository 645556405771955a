package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	cartRepo "marketplace-backend/internal/domains/cart/repository"
	couponService "marketplace-backend/internal/domains/coupon/service"
	inventoryRepo "marketplace-backend/internal/domains/inventory/repository"
	"marketplace-backend/internal/domains/order/model"
	"marketplace-backend/internal/domains/order/repository"
	paymentModel "marketplace-backend/internal/domains/payment/model"
	paymentRepo "marketplace-backend/internal/domains/payment/repository"
	"marketplace-backend/internal/metrics"
	"marketplace-backend/pkg/database"
	"marketplace-backend/pkg/logger"
	"marketplace-backend/pkg/money"
)

// errShortageAbort forces the completion transaction to roll back when the
// stock validation report is the result; it never leaves CompleteOrder.
var errShortageAbort = errors.New("completion aborted by stock shortage")

type orderService struct {
	runner        database.TxRunner
	orderRepo     repository.OrderRepository
	stockRepo     inventoryRepo.RepositoryInterface
	paymentRepo   paymentRepo.PaymentRepository
	cartRepo      cartRepo.RepositoryInterface
	couponService couponService.ServiceInterface
	validator     *StockValidator
	now           func() time.Time
}

func NewOrderService(
	runner database.TxRunner,
	orderRepo repository.OrderRepository,
	stockRepo inventoryRepo.RepositoryInterface,
	payRepo paymentRepo.PaymentRepository,
	cRepo cartRepo.RepositoryInterface,
	coupons couponService.ServiceInterface,
) OrderService {
	return &orderService{
		runner:        runner,
		orderRepo:     orderRepo,
		stockRepo:     stockRepo,
		paymentRepo:   payRepo,
		cartRepo:      cRepo,
		couponService: coupons,
		validator:     NewStockValidator(),
		now:           time.Now,
	}
}

func (s *orderService) CompleteOrder(ctx context.Context, orderID int64) (*model.StockValidationResult, error) {
	var order *model.Order
	var report *model.StockValidationResult

	err := s.runner.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}

		// Defends against double completion under concurrent triggers: the
		// row lock serializes, the PENDING guard fails the loser closed.
		if err := order.ValidatePending(); err != nil {
			return err
		}
		if err := order.ValidateLines(); err != nil {
			return err
		}

		optionIDs := make([]int64, 0, len(order.Lines))
		for _, line := range order.Lines {
			optionIDs = append(optionIDs, line.ProductOptionID)
		}

		// Validate every line first so the buyer sees all shortages at once
		// and no line is decremented when any of them is short.
		available, err := s.stockRepo.GetQuantities(ctx, tx, optionIDs)
		if err != nil {
			return err
		}
		report = s.validator.Validate(order.Lines, available)
		if !report.Valid() {
			return errShortageAbort
		}

		for _, line := range order.Lines {
			if err := s.stockRepo.DecreaseStock(ctx, tx, line.ProductOptionID, line.Quantity); err != nil {
				return err
			}
		}

		if err := order.Complete(); err != nil {
			return err
		}
		return s.orderRepo.UpdateStatus(ctx, tx, order)
	})

	if errors.Is(err, errShortageAbort) {
		metrics.OrdersOutOfStock.Inc()
		logger.Warn("order completion aborted by stock shortage", map[string]interface{}{
			"order_id":  orderID,
			"shortages": len(report.Shortages),
		})
		return report, nil
	}
	if err != nil {
		return nil, err
	}

	metrics.OrdersCompleted.Inc()

	// Cart removal is best effort: its failure is logged, never fatal.
	optionIDs := make([]int64, 0, len(order.Lines))
	for _, line := range order.Lines {
		optionIDs = append(optionIDs, line.ProductOptionID)
	}
	if err := s.cartRepo.RemoveOrderedLines(ctx, order.UserID, optionIDs); err != nil {
		logger.Error(fmt.Sprintf("failed to remove cart lines for order %d", order.ID), err)
	}

	// Coupon consumption failure is logged but does not fail the saga; the
	// discrepancy is reconciled out of band. Deliberately asymmetric with
	// the rollback path, where a coupon failure is fatal.
	if order.CouponID != nil {
		if err := s.couponService.UseMemberCoupon(ctx, order.UserID, *order.CouponID, order.ID); err != nil {
			logger.Error(fmt.Sprintf("failed to use coupon %d for order %d", *order.CouponID, order.ID), err)
		}
	}

	logger.Info("order completed", map[string]interface{}{
		"order_id": order.ID,
		"order_no": order.OrderNo,
	})
	return report, nil
}

func (s *orderService) RollbackOrder(ctx context.Context, orderID int64) error {
	err := s.runner.InTx(ctx, func(tx pgx.Tx) error {
		order, err := s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}

		for _, line := range order.Lines {
			if err := s.stockRepo.RestoreStock(ctx, tx, line.ProductOptionID, line.Quantity); err != nil {
				return err
			}
		}

		if err := order.Rollback(); err != nil {
			return err
		}
		if err := s.orderRepo.UpdateStatus(ctx, tx, order); err != nil {
			return err
		}

		if err := s.rollbackPayment(ctx, tx, order.ID); err != nil {
			return err
		}

		// Coupon rollback joins this transaction: it must be atomic with
		// the order-status rollback, and its failure fails the whole
		// compensation.
		if order.CouponID != nil {
			if err := s.couponService.RollbackMemberCoupon(ctx, tx, order.UserID, *order.CouponID, order.ID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	metrics.OrdersRolledBack.Inc()
	logger.Info("order rolled back", map[string]interface{}{"order_id": orderID})
	return nil
}

// rollbackPayment compensates the payment when it ended in a terminal
// failure state. A payment still pending or approved is left alone.
func (s *orderService) rollbackPayment(ctx context.Context, tx pgx.Tx, orderID int64) error {
	payment, err := s.paymentRepo.GetByOrderIDForUpdate(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, paymentModel.ErrPaymentNotFound) {
			return nil
		}
		return err
	}

	switch payment.Status {
	case paymentModel.PaymentStatusFailed, paymentModel.PaymentStatusCancelled:
		if err := payment.Rollback(s.now()); err != nil {
			return err
		}
		return s.paymentRepo.Update(ctx, tx, payment)
	default:
		return nil
	}
}

func (s *orderService) ValidateAndPrepareOrder(ctx context.Context, orderNo string, userID int64, requestedAmount money.Money) (*model.PaymentPrep, error) {
	order, err := s.orderRepo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, model.NewOrderError(model.ErrCodeUnauthorized, fmt.Sprintf("order %s does not belong to user %d", orderNo, userID), model.ErrUnauthorized)
	}
	if err := order.ValidatePending(); err != nil {
		return nil, err
	}
	if err := order.ValidateLines(); err != nil {
		return nil, err
	}

	subtotal, err := order.Subtotal()
	if err != nil {
		return nil, err
	}

	discount := money.Zero
	if order.CouponID != nil {
		discount, err = s.couponService.CalculateDiscount(ctx, userID, *order.CouponID, subtotal)
		if err != nil {
			return nil, err
		}
	}

	// The one write on this read-mostly path.
	if err := s.orderRepo.UpdateDiscount(ctx, order.ID, discount); err != nil {
		return nil, err
	}

	payable, err := subtotal.Subtract(discount)
	if err != nil {
		return nil, err
	}

	if !requestedAmount.Equal(payable) {
		return nil, model.NewOrderError(model.ErrCodeAmountMismatch,
			fmt.Sprintf("requested %s but order total is %s", requestedAmount, payable), model.ErrAmountMismatch)
	}

	return &model.PaymentPrep{
		UserID:         order.UserID,
		PayableAmount:  payable,
		DiscountAmount: discount,
	}, nil
}
