// file: internals/features/payment/order/dto/checkout_dto.go
package dto

import (
	"github.com/google/uuid"

	"tokoku_backend/internals/features/payment/gateway"
)

/* =========================================================
   REQUEST: Initiate checkout
========================================================= */

type InitiatePaymentRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`

	// Opsi yang diteruskan ke adapter
	PayCurrency string         `json:"pay_currency" validate:"omitempty,alphanum,max=12"`
	CallbackURL string         `json:"callback_url" validate:"omitempty,url"`
	ReturnURL   string         `json:"return_url"   validate:"omitempty,url"`
	Channels    []string       `json:"channels"     validate:"omitempty,dive,oneof=card bank_transfer ussd mobile_money qr"`
	Metadata    map[string]any `json:"metadata"`
}

func (r *InitiatePaymentRequest) ToInitOptions(clientIP string) gateway.InitOptions {
	meta := map[string]any{}
	for k, v := range r.Metadata {
		meta[k] = v
	}
	if clientIP != "" {
		meta["client_ip"] = clientIP
	}
	return gateway.InitOptions{
		PayCurrency: r.PayCurrency,
		CallbackURL: r.CallbackURL,
		ReturnURL:   r.ReturnURL,
		Channels:    r.Channels,
		Metadata:    meta,
	}
}

/* =========================================================
   REQUEST: Refund
========================================================= */

type RefundPaymentRequest struct {
	// Amount nil = full refund
	Amount *float64 `json:"amount" validate:"omitempty,gt=0"`
	Reason string   `json:"reason" validate:"omitempty,max=255"`
}

/* =========================================================
   RESPONSE: gateway metadata (listing endpoint)
========================================================= */

type GatewayInfoResponse struct {
	Identifier            string   `json:"identifier"`
	Name                  string   `json:"name"`
	SupportedCurrencies   []string `json:"supported_currencies"`
	SupportsRefunds       bool     `json:"supports_refunds"`
	SupportsInlinePayment bool     `json:"supports_inline_payment"`
}

func GatewayInfoFromAdapter(g gateway.Gateway) GatewayInfoResponse {
	return GatewayInfoResponse{
		Identifier:            g.Identifier(),
		Name:                  g.Name(),
		SupportedCurrencies:   g.SupportedCurrencies(),
		SupportsRefunds:       g.SupportsRefunds(),
		SupportsInlinePayment: g.SupportsInlinePayment(),
	}
}
