// file: internals/features/payment/order/controller/checkout_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tokoku_backend/internals/features/payment/gateway"
	dto "tokoku_backend/internals/features/payment/order/dto"
	model "tokoku_backend/internals/features/payment/order/model"
	svc "tokoku_backend/internals/features/payment/order/service"
	helper "tokoku_backend/internals/helpers"
)

/* =======================================================================
   Controller: checkout (initiate + verify + gateway listing)
======================================================================= */

type CheckoutController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Gateways  *gateway.Registry
	Recorder  *svc.Recorder
}

func NewCheckoutController(db *gorm.DB, registry *gateway.Registry) *CheckoutController {
	return &CheckoutController{
		DB:        db,
		Validator: validator.New(),
		Gateways:  registry,
		Recorder:  svc.NewRecorder(db),
	}
}

// GET /checkout/gateways
func (h *CheckoutController) ListGateways(c *fiber.Ctx) error {
	out := []dto.GatewayInfoResponse{}
	for _, g := range h.Gateways.Available() {
		out = append(out, dto.GatewayInfoFromAdapter(g))
	}
	return helper.JsonOK(c, "Available payment gateways", out)
}

// POST /checkout/:provider/initiate
func (h *CheckoutController) InitiatePayment(c *fiber.Ctx) error {
	g, err := h.Gateways.Resolve(c.Params("provider"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	var req dto.InitiatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	var order model.Order
	if err := h.DB.WithContext(c.Context()).
		First(&order, "order_id = ? AND order_deleted_at IS NULL", req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "load order failed: "+err.Error())
	}

	if !supportsCurrency(g, order.OrderCurrency) {
		return fiber.NewError(fiber.StatusUnprocessableEntity,
			g.Name()+" does not support currency "+strings.ToUpper(order.OrderCurrency))
	}

	res := g.InitializePayment(c.UserContext(), &order, req.ToInitOptions(c.IP()))
	if res.Status == gateway.InitiationFailed {
		return helper.ErrorWithDetails(c, fiber.StatusUnprocessableEntity, "Payment initiation failed", res)
	}

	if _, err := h.Recorder.RecordInitiation(c.UserContext(), &order, g.Identifier(), res); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "record payment failed: "+err.Error())
	}

	return helper.JsonCreated(c, "Payment initialized", res)
}

// GET /checkout/:provider/verify/:reference
func (h *CheckoutController) VerifyPayment(c *fiber.Ctx) error {
	g, err := h.Gateways.Resolve(c.Params("provider"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	reference := strings.TrimSpace(c.Params("reference"))
	if reference == "" {
		return fiber.NewError(fiber.StatusBadRequest, "reference is required")
	}

	res := g.VerifyPayment(c.UserContext(), reference)

	// update record — payment yg belum tercatat bukan error bagi caller
	if _, err := h.Recorder.ApplyVerification(c.UserContext(), res); err != nil && !errors.Is(err, svc.ErrPaymentNotFound) {
		return fiber.NewError(fiber.StatusInternalServerError, "apply verification failed: "+err.Error())
	}

	return helper.Success(c, "Payment verification result", res)
}

func supportsCurrency(g gateway.Gateway, currency string) bool {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	for _, c := range g.SupportedCurrencies() {
		if strings.ToUpper(c) == currency {
			return true
		}
	}
	return false
}
