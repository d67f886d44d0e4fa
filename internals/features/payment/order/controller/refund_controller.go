// file: internals/features/payment/order/controller/refund_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tokoku_backend/internals/features/payment/gateway"
	dto "tokoku_backend/internals/features/payment/order/dto"
	model "tokoku_backend/internals/features/payment/order/model"
	svc "tokoku_backend/internals/features/payment/order/service"
	helper "tokoku_backend/internals/helpers"
)

/* =======================================================================
   Controller: refund + listing payment (admin)
======================================================================= */

type RefundController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Gateways  *gateway.Registry
	Recorder  *svc.Recorder
}

func NewRefundController(db *gorm.DB, registry *gateway.Registry) *RefundController {
	return &RefundController{
		DB:        db,
		Validator: validator.New(),
		Gateways:  registry,
		Recorder:  svc.NewRecorder(db),
	}
}

// POST /payments/:id/refund
func (h *RefundController) RefundPayment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req dto.RefundPaymentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
		}
	}
	if err := h.Validator.Struct(&req); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid input")
		}
		fieldErrors := map[string][]string{}
		for _, fe := range ve {
			fieldErrors[fe.Field()] = append(fieldErrors[fe.Field()], fe.Tag())
		}
		return helper.JsonValidationError(c, fieldErrors)
	}

	var payment model.OrderPayment
	if err := h.DB.WithContext(c.Context()).
		Preload("Order").
		First(&payment, "order_payment_id = ? AND order_payment_deleted_at IS NULL", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "payment not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "load payment failed: "+err.Error())
	}

	if req.Amount != nil && *req.Amount > payment.OrderPaymentAmount-payment.OrderPaymentRefundedAmount {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "refund amount exceeds refundable balance")
	}

	g, err := h.Gateways.Resolve(payment.OrderPaymentProvider)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	// adapter yang tidak mendukung refund balas failed sendiri —
	// tidak perlu guard di sini
	res := g.Refund(c.UserContext(), &payment, req.Amount, req.Reason)
	if res.Status == gateway.RefundFailed {
		return helper.ErrorWithDetails(c, fiber.StatusUnprocessableEntity, "Refund failed", res)
	}

	if err := h.Recorder.ApplyRefund(c.UserContext(), &payment, res); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "record refund failed: "+err.Error())
	}

	return helper.Success(c, "Refund processed", res)
}

// GET /payments?page=&per_page=&status=&provider=
func (h *RefundController) ListPayments(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := h.DB.WithContext(c.Context()).
		Model(&model.OrderPayment{}).
		Where("order_payment_deleted_at IS NULL")

	if status := c.Query("status"); status != "" {
		q = q.Where("order_payment_status = ?", status)
	}
	if provider := c.Query("provider"); provider != "" {
		q = q.Where("order_payment_provider = ?", provider)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "count payments failed: "+err.Error())
	}

	var rows []model.OrderPayment
	if err := q.Order("order_payment_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "list payments failed: "+err.Error())
	}

	return helper.JsonList(c, "Payments", rows,
		helper.BuildPaginationFromOffset(total, paging.Offset, paging.Limit))
}
