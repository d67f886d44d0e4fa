// file: internals/features/payment/order/route/payment_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tokoku_backend/internals/features/payment/gateway"
	controller "tokoku_backend/internals/features/payment/order/controller"
)

// PaymentPublicRoutes: checkout flow untuk storefront.
func PaymentPublicRoutes(r fiber.Router, db *gorm.DB, registry *gateway.Registry) {
	ctrl := controller.NewCheckoutController(db, registry)

	checkout := r.Group("/checkout")
	checkout.Get("/gateways", ctrl.ListGateways)
	checkout.Post("/:provider/initiate", ctrl.InitiatePayment)
	checkout.Get("/:provider/verify/:reference", ctrl.VerifyPayment)
}

// PaymentWebhookRoutes: endpoint callback provider (tanpa auth,
// keaslian dicek via signature per provider).
func PaymentWebhookRoutes(r fiber.Router, db *gorm.DB, registry *gateway.Registry) {
	ctrl := controller.NewWebhookController(db, registry)
	r.Post("/webhooks/:provider", ctrl.HandleWebhook)
}

// PaymentAdminRoutes: refund + listing (group admin ber-JWT).
func PaymentAdminRoutes(r fiber.Router, db *gorm.DB, registry *gateway.Registry) {
	ctrl := controller.NewRefundController(db, registry)

	payments := r.Group("/payments")
	payments.Get("/", ctrl.ListPayments)
	payments.Post("/:id/refund", ctrl.RefundPayment)
}
