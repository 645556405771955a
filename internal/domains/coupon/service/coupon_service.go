package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"marketplace-backend/internal/domains/coupon/model"
	"marketplace-backend/internal/domains/coupon/repository"
	"marketplace-backend/pkg/database"
	"marketplace-backend/pkg/logger"
	"marketplace-backend/pkg/money"
)

type memberCouponService struct {
	repository repository.RepositoryInterface
	runner     database.TxRunner
	calculator *DiscountCalculator
	now        func() time.Time
}

func NewMemberCouponService(r repository.RepositoryInterface, runner database.TxRunner) ServiceInterface {
	return &memberCouponService{
		repository: r,
		runner:     runner,
		calculator: NewDiscountCalculator(),
		now:        time.Now,
	}
}

func (s *memberCouponService) CalculateDiscount(ctx context.Context, userID, couponID int64, orderAmount money.Money) (money.Money, error) {
	mc, err := s.repository.GetMemberCoupon(ctx, userID, couponID)
	if err != nil {
		return money.Zero, err
	}

	if err := mc.ValidateUsable(s.now()); err != nil {
		return money.Zero, err
	}

	coupon, err := s.repository.GetCoupon(ctx, mc.CouponID)
	if err != nil {
		return money.Zero, err
	}

	return s.calculator.Calculate(coupon, orderAmount)
}

func (s *memberCouponService) UseMemberCoupon(ctx context.Context, userID, couponID, orderID int64) error {
	return s.runner.InTx(ctx, func(tx pgx.Tx) error {
		mc, err := s.repository.GetMemberCouponForUpdate(ctx, tx, userID, couponID)
		if err != nil {
			return err
		}

		if err := mc.Use(orderID, s.now()); err != nil {
			return err
		}

		if err := s.repository.UpdateMemberCoupon(ctx, tx, mc); err != nil {
			return err
		}

		logger.Info("member coupon used", map[string]interface{}{
			"user_id":   userID,
			"coupon_id": couponID,
			"order_id":  orderID,
		})
		return nil
	})
}

// RollbackMemberCoupon does not open its own transaction: restoring the
// coupon must commit or roll back together with the order-status rollback,
// so the caller's tx is required.
func (s *memberCouponService) RollbackMemberCoupon(ctx context.Context, tx pgx.Tx, userID, couponID, orderID int64) error {
	if tx == nil {
		return model.ErrNoActiveTransaction
	}

	mc, err := s.repository.GetMemberCouponForUpdate(ctx, tx, userID, couponID)
	if err != nil {
		return err
	}

	if err := mc.Rollback(orderID); err != nil {
		return err
	}

	if err := s.repository.UpdateMemberCoupon(ctx, tx, mc); err != nil {
		return err
	}

	logger.Info("member coupon rolled back", map[string]interface{}{
		"user_id":   userID,
		"coupon_id": couponID,
		"order_id":  orderID,
	})
	return nil
}
