// file: internals/features/payment/gateway/paystack/paystack.go
package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"tokoku_backend/internals/features/payment/gateway"
	orderModel "tokoku_backend/internals/features/payment/order/model"
)

/* =========================================================
   Paystack — card/bank-transfer, redirect + inline checkout.
   Amount dikirim dalam minor unit (kobo).
========================================================= */

type Config struct {
	SecretKey string
	PublicKey string
	// WebhookSecret opsional; kalau kosong pakai SecretKey
	// (Paystack menandatangani webhook dengan secret key).
	WebhookSecret string
	CallbackURL   string
	BaseURL       string
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
		cfg.BaseURL = "https://api.paystack.co"
	}
	return &Adapter{cfg: cfg, client: gateway.NewHTTPClient()}
}

func (a *Adapter) Identifier() string { return "paystack" }
func (a *Adapter) Name() string       { return "Paystack" }

func (a *Adapter) SupportedCurrencies() []string {
	return []string{"NGN", "USD", "GHS", "ZAR", "KES"}
}

func (a *Adapter) SupportsRefunds() bool        { return true }
func (a *Adapter) SupportsInlinePayment() bool  { return true }
func (a *Adapter) IsAvailable() bool            { return a.cfg.IsConfigured() }

func (a *Adapter) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + a.cfg.SecretKey}
}

/* =========================================================
   Initiate
========================================================= */

func (a *Adapter) InitializePayment(ctx context.Context, order *orderModel.Order, opts gateway.InitOptions) *gateway.PaymentInitiationResult {
	if !a.IsAvailable() {
		return gateway.FailedInitiation("Paystack is not configured", "")
	}

	reference := gateway.BuildReference(order)
	currency := strings.ToUpper(order.OrderCurrency)
	amountMinor := gateway.ToSmallestUnit(order.OrderTotalAmount, currency)

	metadata := map[string]any{
		"order_id":     order.OrderID.String(),
		"order_number": order.OrderNumber,
		"tenant_id":    order.OrderTenantID.String(),
		"shop_id":      order.OrderShopID.String(),
		"custom_fields": []map[string]any{
			{
				"display_name":  "Order Number",
				"variable_name": "order_number",
				"value":         order.OrderNumber,
			},
		},
	}
	for k, v := range opts.Metadata {
		metadata[k] = v
	}

	callbackURL := opts.CallbackURL
	if callbackURL == "" {
		callbackURL = a.cfg.CallbackURL
	}

	payload := map[string]any{
		"email":     order.CustomerEmail(),
		"amount":    amountMinor,
		"currency":  currency,
		"reference": reference,
		"metadata":  metadata,
	}
	if callbackURL != "" {
		payload["callback_url"] = callbackURL
	}
	if len(opts.Channels) > 0 {
		payload["channels"] = opts.Channels
	}

	resp, _, err := gateway.DoJSON(ctx, a.client, http.MethodPost, a.cfg.BaseURL+"/transaction/initialize", a.authHeaders(), payload)
	if err != nil {
		return gateway.FailedInitiation("Unable to reach Paystack: "+err.Error(), reference)
	}
	if ok, _ := resp["status"].(bool); !ok {
		msg := gateway.Str(resp, "message")
		if msg == "" {
			msg = "Paystack rejected the transaction"
		}
		return gateway.FailedInitiation(msg, reference)
	}

	data := gateway.Child(resp, "data")
	authorizationURL := gateway.Str(data, "authorization_url")
	accessCode := gateway.Str(data, "access_code")

	log.Printf("[GATEWAY] payment_initialized provider=paystack reference=%s amount=%.2f currency=%s", reference, order.OrderTotalAmount, currency)

	return gateway.RedirectInitiation(reference, authorizationURL, accessCode, map[string]any{
		// duplikasi field untuk embedded (inline) checkout di frontend
		"inline_data": map[string]any{
			"key":         a.cfg.PublicKey,
			"email":       order.CustomerEmail(),
			"amount":      amountMinor,
			"currency":    currency,
			"ref":         reference,
			"access_code": accessCode,
		},
	})
}

/* =========================================================
   Verify
========================================================= */

func (a *Adapter) VerifyPayment(ctx context.Context, reference string) *gateway.PaymentVerificationResult {
	if !a.IsAvailable() {
		return gateway.FailedVerification(reference, "Paystack is not configured", nil)
	}

	resp, _, err := gateway.DoJSON(ctx, a.client, http.MethodGet, a.cfg.BaseURL+"/transaction/verify/"+reference, a.authHeaders(), nil)
	if err != nil {
		return gateway.FailedVerification(reference, "Unable to reach Paystack: "+err.Error(), nil)
	}
	if ok, _ := resp["status"].(bool); !ok {
		msg := gateway.Str(resp, "message")
		if msg == "" {
			msg = "Verification failed"
		}
		return gateway.FailedVerification(reference, msg, resp)
	}

	data := gateway.Child(resp, "data")
	currency := strings.ToUpper(gateway.Str(data, "currency"))

	switch gateway.Str(data, "status") {
	case "success":
		amountMinor, _ := gateway.Num(data, "amount")
		channel := gateway.Str(data, "channel")
		res := gateway.SuccessVerification(
			reference,
			gateway.FromSmallestUnit(int64(amountMinor), currency),
			currency,
			gateway.Str(data, "id"),
			channel,
			resp,
		)
		res.Channel = channel
		if fee, ok := gateway.Num(data, "fees"); ok {
			res.GatewayFee = gateway.FromSmallestUnit(int64(fee), currency)
		}
		res.PaidAt = gateway.ParseTime(gateway.Str(data, "paid_at"))
		return res
	case "pending", "ongoing":
		return gateway.PendingVerification(reference, "Payment is still being processed", resp)
	default:
		msg := gateway.Str(data, "gateway_response")
		if msg == "" {
			msg = "Payment was not successful"
		}
		return gateway.FailedVerification(reference, msg, resp)
	}
}

/* =========================================================
   Refund
========================================================= */

func (a *Adapter) Refund(ctx context.Context, payment *orderModel.OrderPayment, amount *float64, reason string) *gateway.RefundResult {
	if !a.IsAvailable() {
		return gateway.FailedRefund(payment.OrderPaymentReference, "Paystack is not configured", nil)
	}

	gatewayRef := payment.GatewayRef()
	if gatewayRef == "" {
		return gateway.FailedRefund(payment.OrderPaymentReference, "Cannot refund: gateway transaction reference not found on payment record", nil)
	}

	// currency payment, fallback shop currency milik order
	currency := strings.ToUpper(payment.CurrencyOrShopDefault())

	payload := map[string]any{"transaction": gatewayRef}
	refunded := payment.OrderPaymentAmount
	if amount != nil {
		refunded = *amount
		payload["amount"] = gateway.ToSmallestUnit(*amount, currency)
	}
	if reason != "" {
		payload["merchant_note"] = reason
	}

	resp, _, err := gateway.DoJSON(ctx, a.client, http.MethodPost, a.cfg.BaseURL+"/refund", a.authHeaders(), payload)
	if err != nil {
		return gateway.FailedRefund(payment.OrderPaymentReference, "Unable to reach Paystack: "+err.Error(), nil)
	}
	if ok, _ := resp["status"].(bool); !ok {
		msg := gateway.Str(resp, "message")
		if msg == "" {
			msg = "Refund was rejected"
		}
		return gateway.FailedRefund(payment.OrderPaymentReference, msg, resp)
	}

	data := gateway.Child(resp, "data")
	return gateway.SuccessRefund(payment.OrderPaymentReference, refunded, currency, gateway.Str(data, "id"), resp)
}

/* =========================================================
   Webhook
========================================================= */

func (a *Adapter) webhookSecret() string {
	if s := strings.TrimSpace(a.cfg.WebhookSecret); s != "" {
		return s
	}
	return strings.TrimSpace(a.cfg.SecretKey)
}

// ValidateWebhook: HMAC-SHA512 atas raw body vs x-paystack-signature.
func (a *Adapter) ValidateWebhook(req *gateway.WebhookRequest) bool {
	secret := a.webhookSecret()
	signature := req.Header("x-paystack-signature")
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(req.Body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func (a *Adapter) ParseWebhook(req *gateway.WebhookRequest) (*gateway.WebhookEvent, error) {
	var payload map[string]any
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		return nil, err
	}

	event := gateway.Str(payload, "event")
	data := gateway.Child(payload, "data")
	currency := strings.ToUpper(gateway.Str(data, "currency"))

	var status gateway.WebhookStatus
	switch event {
	case "charge.success":
		status = gateway.WebhookStatusSuccess
	case "charge.failed":
		status = gateway.WebhookStatusFailed
	default:
		status = mapProviderStatus(gateway.Str(data, "status"))
	}

	out := &gateway.WebhookEvent{
		Type:             event,
		Reference:        gateway.Str(data, "reference"),
		Status:           status,
		Currency:         currency,
		GatewayReference: gateway.Str(data, "id"),
		PaidAt:           gateway.ParseTime(gateway.Str(data, "paid_at")),
		Metadata:         gateway.Child(data, "metadata"),
		Raw:              payload,
	}
	if amountMinor, ok := gateway.Num(data, "amount"); ok {
		amount := gateway.FromSmallestUnit(int64(amountMinor), currency)
		out.Amount = &amount
	}
	if feeMinor, ok := gateway.Num(data, "fees"); ok {
		fee := gateway.FromSmallestUnit(int64(feeMinor), currency)
		out.GatewayFee = &fee
	}
	return out, nil
}

// mapProviderStatus: vocab status Paystack → status internal.
// Nilai tak dikenal jatuh ke unknown, tidak bocor ke caller.
func mapProviderStatus(s string) gateway.WebhookStatus {
	switch strings.ToLower(s) {
	case "success":
		return gateway.WebhookStatusSuccess
	case "failed", "abandoned", "reversed":
		return gateway.WebhookStatusFailed
	case "pending", "ongoing", "processing", "queued":
		return gateway.WebhookStatusPending
	default:
		return gateway.WebhookStatusUnknown
	}
}
