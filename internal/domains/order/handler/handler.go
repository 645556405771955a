package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	couponModel "marketplace-backend/internal/domains/coupon/model"
	"marketplace-backend/internal/domains/order/model"
	"marketplace-backend/internal/domains/order/service"
	"marketplace-backend/internal/shared/response"
	"marketplace-backend/pkg/logger"
	"marketplace-backend/pkg/money"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.POST("/:id/complete", h.CompleteOrder)
		orders.POST("/:id/rollback", h.RollbackOrder)
		orders.POST("/prepare-payment", h.PreparePayment)
	}
}

// CompleteOrder runs the fulfillment saga. A stock shortage is not an error:
// it answers 409 with the per-line shortage report.
func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	report, err := h.orderService.CompleteOrder(c.Request.Context(), orderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if report != nil && !report.Valid() {
		response.ErrorWithDetails(c, http.StatusConflict, "OUT_OF_STOCK",
			"one or more lines lack sufficient stock", report.Shortages)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"order_id": orderID, "status": string(model.OrderStatusCompleted)})
}

// RollbackOrder compensates a completed order.
func (h *OrderHandler) RollbackOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	if err := h.orderService.RollbackOrder(c.Request.Context(), orderID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"order_id": orderID, "status": string(model.OrderStatusPending)})
}

// PreparePayment validates an order before the payment gateway hand-off and
// returns the payable amount with the discount applied.
func (h *OrderHandler) PreparePayment(c *gin.Context) {
	var req model.PreparePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	amount, err := money.New(req.Amount)
	if err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	prep, err := h.orderService.ValidateAndPrepareOrder(c.Request.Context(), req.OrderNo, req.UserID, amount)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, prep)
}

func (h *OrderHandler) handleServiceError(c *gin.Context, err error) {
	var orderErr *model.OrderError
	if errors.As(err, &orderErr) {
		switch orderErr.Code {
		case model.ErrCodeOrderNotFound:
			response.ErrorResponse(c, http.StatusNotFound, orderErr.Code, orderErr.Message)
		case model.ErrCodeInvalidStatus:
			response.ErrorResponse(c, http.StatusConflict, orderErr.Code, orderErr.Message)
		case model.ErrCodeUnauthorized:
			response.ErrorResponse(c, http.StatusForbidden, orderErr.Code, orderErr.Message)
		case model.ErrCodeAmountMismatch:
			response.ErrorResponse(c, http.StatusConflict, orderErr.Code, orderErr.Message)
		default:
			response.ErrorResponse(c, http.StatusUnprocessableEntity, orderErr.Code, orderErr.Message)
		}
		return
	}

	switch {
	case errors.Is(err, model.ErrOrderNotFound):
		response.NotFound(c, "order not found")
	case errors.Is(err, model.ErrInvalidStatus):
		response.Conflict(c, "order is not in a valid status for this operation")
	case errors.Is(err, couponModel.ErrCouponOrderMismatch):
		response.Conflict(c, "coupon was not used for this order")
	default:
		logger.Error("order operation failed", err)
		response.InternalServerError(c, "internal error")
	}
}
