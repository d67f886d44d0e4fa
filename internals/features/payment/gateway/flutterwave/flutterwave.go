// file: internals/features/payment/gateway/flutterwave/flutterwave.go
package flutterwave

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"tokoku_backend/internals/features/payment/gateway"
	orderModel "tokoku_backend/internals/features/payment/order/model"
)

/* =========================================================
   Flutterwave — card/bank-transfer, redirect checkout.
   API menerima amount desimal langsung: TIDAK ada konversi
   minor unit di adapter ini.
========================================================= */

type Config struct {
	SecretKey string
	PublicKey string
	// SecretHash = nilai header `verif-hash` yang dikirim Flutterwave
	// apa adanya (bukan HMAC).
	SecretHash  string
	CallbackURL string
	BaseURL     string
}

func (c Config) IsConfigured() bool {
	return strings.TrimSpace(c.SecretKey) != ""
}

type Adapter struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.flutterwave.com/v3"
	}
	return &Adapter{cfg: cfg, client: gateway.NewHTTPClient()}
}

func (a *Adapter) Identifier() string { return "flutterwave" }
func (a *Adapter) Name() string       { return "Flutterwave" }

func (a *Adapter) SupportedCurrencies() []string {
	return []string{"NGN", "USD", "EUR", "GBP", "GHS", "KES", "UGX", "TZS", "ZAR", "XAF", "XOF", "RWF"}
}

func (a *Adapter) SupportsRefunds() bool       { return true }
func (a *Adapter) SupportsInlinePayment() bool { return false }
func (a *Adapter) IsAvailable() bool           { return a.cfg.IsConfigured() }

func (a *Adapter) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + a.cfg.SecretKey}
}

/* =========================================================
   Initiate
========================================================= */

func (a *Adapter) InitializePayment(ctx context.Context, order *orderModel.Order, opts gateway.InitOptions) *gateway.PaymentInitiationResult {
	if !a.IsAvailable() {
		return gateway.FailedInitiation("Flutterwave is not configured", "")
	}

	reference := gateway.BuildReference(order)
	currency := strings.ToUpper(order.OrderCurrency)

	redirectURL := opts.ReturnURL
	if redirectURL == "" {
		redirectURL = opts.CallbackURL
	}
	if redirectURL == "" {
		redirectURL = a.cfg.CallbackURL
	}

	meta := map[string]any{
		"order_id":     order.OrderID.String(),
		"order_number": order.OrderNumber,
		"tenant_id":    order.OrderTenantID.String(),
		"shop_id":      order.OrderShopID.String(),
	}
	for k, v := range opts.Metadata {
		meta[k] = v
	}

	payload := map[string]any{
		"tx_ref":   reference,
		"amount":   order.OrderTotalAmount, // desimal, tanpa konversi
		"currency": currency,
		"customer": map[string]any{
			"email":       order.CustomerEmail(),
			"name":        order.CustomerName(),
			"phonenumber": order.CustomerPhone(),
		},
		"customizations": map[string]any{
			"title": "Order " + order.OrderNumber,
		},
		"meta": meta,
	}
	if redirectURL != "" {
		payload["redirect_url"] = redirectURL
	}
	if len(opts.Channels) > 0 {
		payload["payment_options"] = strings.Join(opts.Channels, ",")
	}

	resp, _, err := gateway.DoJSON(ctx, a.client, http.MethodPost, a.cfg.BaseURL+"/payments", a.authHeaders(), payload)
	if err != nil {
		return gateway.FailedInitiation("Unable to reach Flutterwave: "+err.Error(), reference)
	}
	if gateway.Str(resp, "status") != "success" {
		msg := gateway.Str(resp, "message")
		if msg == "" {
			msg = "Flutterwave rejected the transaction"
		}
		return gateway.FailedInitiation(msg, reference)
	}

	data := gateway.Child(resp, "data")
	link := gateway.Str(data, "link")

	log.Printf("[GATEWAY] payment_initialized provider=flutterwave reference=%s amount=%.2f currency=%s", reference, order.OrderTotalAmount, currency)

	return gateway.RedirectInitiation(reference, link, "", nil)
}

/* =========================================================
   Verify
========================================================= */

func (a *Adapter) VerifyPayment(ctx context.Context, reference string) *gateway.PaymentVerificationResult {
	if !a.IsAvailable() {
		return gateway.FailedVerification(reference, "Flutterwave is not configured", nil)
	}

	url := a.cfg.BaseURL + "/transactions/verify_by_reference?tx_ref=" + reference
	resp, _, err := gateway.DoJSON(ctx, a.client, http.MethodGet, url, a.authHeaders(), nil)
	if err != nil {
		return gateway.FailedVerification(reference, "Unable to reach Flutterwave: "+err.Error(), nil)
	}
	if gateway.Str(resp, "status") != "success" {
		msg := gateway.Str(resp, "message")
		if msg == "" {
			msg = "Verification failed"
		}
		return gateway.FailedVerification(reference, msg, resp)
	}

	data := gateway.Child(resp, "data")
	currency := strings.ToUpper(gateway.Str(data, "currency"))

	switch strings.ToLower(gateway.Str(data, "status")) {
	case "successful":
		amount, _ := gateway.Num(data, "amount")
		method := gateway.Str(data, "payment_type")
		res := gateway.SuccessVerification(reference, amount, currency, gateway.Str(data, "id"), method, resp)
		res.Channel = method
		if fee, ok := gateway.Num(data, "app_fee"); ok {
			res.GatewayFee = fee
		}
		res.PaidAt = gateway.ParseTime(gateway.Str(data, "created_at"))
		return res
	case "pending":
		return gateway.PendingVerification(reference, "Payment is still being processed", resp)
	default:
		msg := gateway.Str(data, "processor_response")
		if msg == "" {
			msg = "Payment was not successful"
		}
		return gateway.FailedVerification(reference, msg, resp)
	}
}

/* =========================================================
   Refund — endpoint scoped by transaction id
========================================================= */

func (a *Adapter) Refund(ctx context.Context, payment *orderModel.OrderPayment, amount *float64, reason string) *gateway.RefundResult {
	if !a.IsAvailable() {
		return gateway.FailedRefund(payment.OrderPaymentReference, "Flutterwave is not configured", nil)
	}

	gatewayRef := payment.GatewayRef()
	if gatewayRef == "" {
		return gateway.FailedRefund(payment.OrderPaymentReference, "Cannot refund: gateway transaction reference not found on payment record", nil)
	}

	payload := map[string]any{}
	refunded := payment.OrderPaymentAmount
	if amount != nil {
		refunded = *amount
		payload["amount"] = *amount // desimal, sama seperti initiate
	}
	if reason != "" {
		payload["comments"] = reason
	}

	url := a.cfg.BaseURL + "/transactions/" + gatewayRef + "/refund"
	resp, _, err := gateway.DoJSON(ctx, a.client, http.MethodPost, url, a.authHeaders(), payload)
	if err != nil {
		return gateway.FailedRefund(payment.OrderPaymentReference, "Unable to reach Flutterwave: "+err.Error(), nil)
	}
	if gateway.Str(resp, "status") != "success" {
		msg := gateway.Str(resp, "message")
		if msg == "" {
			msg = "Refund was rejected"
		}
		return gateway.FailedRefund(payment.OrderPaymentReference, msg, resp)
	}

	data := gateway.Child(resp, "data")
	currency := strings.ToUpper(payment.CurrencyOrShopDefault())
	return gateway.SuccessRefund(payment.OrderPaymentReference, refunded, currency, gateway.Str(data, "id"), resp)
}

/* =========================================================
   Webhook
========================================================= */

// ValidateWebhook: Flutterwave mengirim secret hash apa adanya di
// header verif-hash — pemeriksaan equality langsung, BUKAN HMAC.
func (a *Adapter) ValidateWebhook(req *gateway.WebhookRequest) bool {
	secret := strings.TrimSpace(a.cfg.SecretHash)
	signature := strings.TrimSpace(req.Header("verif-hash"))
	if secret == "" || signature == "" {
		return false
	}
	// constant-time equality
	return hmac.Equal([]byte(secret), []byte(signature))
}

func (a *Adapter) ParseWebhook(req *gateway.WebhookRequest) (*gateway.WebhookEvent, error) {
	var payload map[string]any
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		return nil, err
	}

	event := gateway.Str(payload, "event")
	data := gateway.Child(payload, "data")
	nested := strings.ToLower(gateway.Str(data, "status"))
	currency := strings.ToUpper(gateway.Str(data, "currency"))

	var status gateway.WebhookStatus
	if event == "charge.completed" && nested == "successful" {
		status = gateway.WebhookStatusSuccess
	} else {
		// semua status lain lewat mapping eksplisit, bukan passthrough,
		// supaya vocab provider tidak bocor ke field status internal
		status = mapProviderStatus(nested)
	}

	out := &gateway.WebhookEvent{
		Type:             event,
		Reference:        gateway.Str(data, "tx_ref"),
		Status:           status,
		Currency:         currency,
		GatewayReference: gateway.Str(data, "id"),
		PaidAt:           gateway.ParseTime(gateway.Str(data, "created_at")),
		Metadata:         gateway.Child(data, "meta"),
		Raw:              payload,
	}
	if amount, ok := gateway.Num(data, "amount"); ok {
		out.Amount = &amount
	}
	if fee, ok := gateway.Num(data, "app_fee"); ok {
		out.GatewayFee = &fee
	}
	return out, nil
}

func mapProviderStatus(s string) gateway.WebhookStatus {
	switch s {
	case "successful":
		return gateway.WebhookStatusSuccess
	case "failed", "cancelled", "voided":
		return gateway.WebhookStatusFailed
	case "pending":
		return gateway.WebhookStatusPending
	default:
		return gateway.WebhookStatusUnknown
	}
}
