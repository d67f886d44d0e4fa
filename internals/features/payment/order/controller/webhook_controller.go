// file: internals/features/payment/order/controller/webhook_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tokoku_backend/internals/features/payment/gateway"
	model "tokoku_backend/internals/features/payment/order/model"
	svc "tokoku_backend/internals/features/payment/order/service"
	helper "tokoku_backend/internals/helpers"
)

/* =======================================================================
   Controller: inbound webhook per provider
   Body dibaca mentah dari request — jangan pernah re-encode sebelum
   verifikasi signature, HMAC dihitung atas bytes aslinya.
======================================================================= */

type WebhookController struct {
	DB       *gorm.DB
	Gateways *gateway.Registry
	Recorder *svc.Recorder
}

func NewWebhookController(db *gorm.DB, registry *gateway.Registry) *WebhookController {
	return &WebhookController{
		DB:       db,
		Gateways: registry,
		Recorder: svc.NewRecorder(db),
	}
}

// POST /webhooks/:provider
func (h *WebhookController) HandleWebhook(c *fiber.Ctx) error {
	g, err := h.Gateways.Resolve(c.Params("provider"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	req := webhookRequestFromCtx(c)
	headers := c.GetReqHeaders()

	if !g.ValidateWebhook(req) {
		_ = h.Recorder.LogGatewayEvent(c.UserContext(), svc.GatewayEventInput{
			Provider: g.Identifier(),
			Headers:  headers,
			Payload:  req.Body,
			Status:   model.GatewayEventStatusRejected,
			Error:    "signature validation failed",
		})
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid signature")
	}

	event, err := g.ParseWebhook(req)
	if err != nil {
		_ = h.Recorder.LogGatewayEvent(c.UserContext(), svc.GatewayEventInput{
			Provider: g.Identifier(),
			Headers:  headers,
			Payload:  req.Body,
			Status:   model.GatewayEventStatusFailed,
			Error:    "parse failed: " + err.Error(),
		})
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload: "+err.Error())
	}

	payment, err := h.Recorder.ApplyWebhook(c.UserContext(), event)
	if err != nil {
		if errors.Is(err, svc.ErrPaymentNotFound) {
			// payment belum tercatat (mis-order / race dgn initiate) —
			// balas 200 supaya provider tidak retry terus, event tetap dilog
			_ = h.Recorder.LogGatewayEvent(c.UserContext(), svc.GatewayEventInput{
				Provider: g.Identifier(),
				Headers:  headers,
				Payload:  req.Body,
				Event:    event,
				Status:   model.GatewayEventStatusReceived,
				Error:    "payment not found for reference " + event.Reference,
			})
			return c.JSON(fiber.Map{"status": "ignored", "reason": "payment not found"})
		}
		_ = h.Recorder.LogGatewayEvent(c.UserContext(), svc.GatewayEventInput{
			Provider: g.Identifier(),
			Headers:  headers,
			Payload:  req.Body,
			Event:    event,
			Status:   model.GatewayEventStatusFailed,
			Error:    err.Error(),
		})
		return fiber.NewError(fiber.StatusInternalServerError, "apply webhook failed: "+err.Error())
	}

	_ = h.Recorder.LogGatewayEvent(c.UserContext(), svc.GatewayEventInput{
		Provider: g.Identifier(),
		Headers:  headers,
		Payload:  req.Body,
		Event:    event,
		Payment:  payment,
		Status:   model.GatewayEventStatusProcessed,
	})

	return c.JSON(fiber.Map{
		"status":         "ok",
		"event_type":     event.Type,
		"reference":      event.Reference,
		"event_status":   event.Status,
		"payment_status": payment.OrderPaymentStatus,
	})
}

// webhookRequestFromCtx menyalin body mentah + header ke tipe gateway.
func webhookRequestFromCtx(c *fiber.Ctx) *gateway.WebhookRequest {
	body := make([]byte, len(c.Body()))
	copy(body, c.Body())

	headers := http.Header{}
	for key, values := range c.GetReqHeaders() {
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	return &gateway.WebhookRequest{
		Body:    body,
		Headers: headers,
		RawIP:   c.IP(),
	}
}
