// file: internals/route/details/payment_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tokoku_backend/internals/configs"
	"tokoku_backend/internals/features/payment/gateway"
	"tokoku_backend/internals/features/payment/gateway/flutterwave"
	"tokoku_backend/internals/features/payment/gateway/nowpayments"
	"tokoku_backend/internals/features/payment/gateway/opay"
	"tokoku_backend/internals/features/payment/gateway/paystack"
	PaymentRoute "tokoku_backend/internals/features/payment/order/route"
)

// BuildGatewayRegistry merakit semua adapter dari ENV. Adapter yang
// credential-nya kosong tetap terdaftar tapi IsAvailable() == false,
// jadi tidak muncul di daftar checkout.
func BuildGatewayRegistry() *gateway.Registry {
	return gateway.NewRegistry(
		paystack.New(paystack.Config{
			SecretKey:     configs.GetEnv("PAYSTACK_SECRET_KEY"),
			PublicKey:     configs.GetEnv("PAYSTACK_PUBLIC_KEY"),
			WebhookSecret: configs.GetEnv("PAYSTACK_WEBHOOK_SECRET"),
			CallbackURL:   configs.GetEnv("PAYSTACK_CALLBACK_URL"),
			BaseURL:       configs.GetEnv("PAYSTACK_BASE_URL"),
		}),
		flutterwave.New(flutterwave.Config{
			SecretKey:   configs.GetEnv("FLW_SECRET_KEY"),
			PublicKey:   configs.GetEnv("FLW_PUBLIC_KEY"),
			SecretHash:  configs.GetEnv("FLW_SECRET_HASH"),
			CallbackURL: configs.GetEnv("FLW_CALLBACK_URL"),
			BaseURL:     configs.GetEnv("FLW_BASE_URL"),
		}),
		opay.New(opay.Config{
			MerchantID:   configs.GetEnv("OPAY_MERCHANT_ID"),
			PublicKey:    configs.GetEnv("OPAY_PUBLIC_KEY"),
			SecretKey:    configs.GetEnv("OPAY_SECRET_KEY"),
			MerchantName: configs.GetEnv("OPAY_MERCHANT_NAME"),
			ReturnURL:    configs.GetEnv("OPAY_RETURN_URL"),
			CallbackURL:  configs.GetEnv("OPAY_CALLBACK_URL"),
			BaseURL:      configs.GetEnv("OPAY_BASE_URL"),
		}),
		nowpayments.New(nowpayments.Config{
			APIKey:             configs.GetEnv("NOWPAYMENTS_API_KEY"),
			IPNSecret:          configs.GetEnv("NOWPAYMENTS_IPN_SECRET"),
			DefaultPayCurrency: configs.GetEnv("NOWPAYMENTS_PAY_CURRENCY"),
			CallbackURL:        configs.GetEnv("NOWPAYMENTS_CALLBACK_URL"),
			SuccessURL:         configs.GetEnv("NOWPAYMENTS_SUCCESS_URL"),
			BaseURL:            configs.GetEnv("NOWPAYMENTS_BASE_URL"),
		}),
	)
}

func PaymentPublicRoutes(r fiber.Router, db *gorm.DB, registry *gateway.Registry) {
	PaymentRoute.PaymentPublicRoutes(r, db, registry)
}

func PaymentWebhookRoutes(r fiber.Router, db *gorm.DB, registry *gateway.Registry) {
	PaymentRoute.PaymentWebhookRoutes(r, db, registry)
}

func PaymentAdminRoutes(r fiber.Router, db *gorm.DB, registry *gateway.Registry) {
	PaymentRoute.PaymentAdminRoutes(r, db, registry)
}
