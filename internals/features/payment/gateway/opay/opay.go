// file: internals/features/payment/gateway/opay/opay.go
package opay

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"tokoku_backend/internals/features/payment/gateway"
	orderModel "tokoku_backend/internals/features/payment/order/model"
)

/* =========================================================
   OPay — mobile money / card, NGN only, redirect cashier.
   Refund TIDAK didukung via API: wajib manual lewat dashboard
   merchant OPay, adapter selalu balas failed.
========================================================= */

// codeSuccess: OPay memakai kode response, bukan flag boolean.
// Kode lain = kegagalan bisnis walau HTTP 200.
const codeSuccess = "00000"

// cashier session berlaku 30 menit sejak dibuat
const expiryMinutes = 30

type Config struct {
	MerchantID   string
	PublicKey    string
	SecretKey    string
	MerchantName string
	ReturnURL    string
	CallbackURL  string
	BaseURL      string
}

func (c Config) IsConfigured() bool {
	return strings.TrimSpace(c.MerchantID) != "" &&
		strings.TrimSpace(c.PublicKey) != "" &&
		strings.TrimSpace(c.SecretKey) != ""
}

type Adapter struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://liveapi.opaycheckout.com"
	}
	if cfg.MerchantName == "" {
		cfg.MerchantName = "Tokoku Store"
	}
	return &Adapter{cfg: cfg, client: gateway.NewHTTPClient()}
}

func (a *Adapter) Identifier() string { return "opay" }
func (a *Adapter) Name() string       { return "OPay" }

func (a *Adapter) SupportedCurrencies() []string { return []string{"NGN"} }

func (a *Adapter) SupportsRefunds() bool       { return false }
func (a *Adapter) SupportsInlinePayment() bool { return false }
func (a *Adapter) IsAvailable() bool           { return a.cfg.IsConfigured() }

// sign: HMAC-SHA512(payload JSON) dgn secret key, utk endpoint query.
func (a *Adapter) sign(body []byte) string {
	mac := hmac.New(sha512.New, []byte(a.cfg.SecretKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

/* =========================================================
   Initiate
========================================================= */

func (a *Adapter) InitializePayment(ctx context.Context, order *orderModel.Order, opts gateway.InitOptions) *gateway.PaymentInitiationResult {
	if !a.IsAvailable() {
		return gateway.FailedInitiation("OPay is not configured", "")
	}

	reference := gateway.BuildReference(order)
	currency := strings.ToUpper(order.OrderCurrency)
	amountMinor := gateway.ToSmallestUnit(order.OrderTotalAmount, currency)

	clientIP := "127.0.0.1"
	if ip, ok := opts.Metadata["client_ip"].(string); ok && ip != "" {
		clientIP = ip
	}

	callbackURL := opts.CallbackURL
	if callbackURL == "" {
		callbackURL = a.cfg.CallbackURL
	}
	returnURL := opts.ReturnURL
	if returnURL == "" {
		returnURL = a.cfg.ReturnURL
	}

	payload := map[string]any{
		"reference": reference,
		"country":   "NG",
		"amount": map[string]any{
			"total":    amountMinor,
			"currency": currency,
		},
		"expireAt":     expiryMinutes,
		"callbackUrl":  callbackURL,
		"returnUrl":    returnURL,
		"userClientIP": clientIP,
		"product": map[string]any{
			"name":        a.cfg.MerchantName,
			"description": "Order " + order.OrderNumber,
		},
		"userInfo": map[string]any{
			"userEmail":  order.CustomerEmail(),
			"userName":   order.CustomerName(),
			"userMobile": order.CustomerPhone(),
		},
	}
	if len(opts.Channels) > 0 {
		payload["payMethod"] = opts.Channels[0]
	}

	headers := map[string]string{
		"Authorization": "Bearer " + a.cfg.PublicKey,
		"MerchantId":    a.cfg.MerchantID,
	}

	resp, _, err := gateway.DoJSON(ctx, a.client, http.MethodPost, a.cfg.BaseURL+"/api/v1/international/cashier/create", headers, payload)
	if err != nil {
		return gateway.FailedInitiation("Unable to reach OPay: "+err.Error(), reference)
	}
	if gateway.Str(resp, "code") != codeSuccess {
		msg := gateway.Str(resp, "message")
		if msg == "" {
			msg = "OPay rejected the transaction"
		}
		return gateway.FailedInitiation(msg, reference)
	}

	data := gateway.Child(resp, "data")

	log.Printf("[GATEWAY] payment_initialized provider=opay reference=%s amount=%.2f currency=%s", reference, order.OrderTotalAmount, currency)

	return gateway.RedirectInitiation(reference, gateway.Str(data, "cashierUrl"), "", map[string]any{
		"order_no": gateway.Str(data, "orderNo"),
	})
}

/* =========================================================
   Verify — status poll keyed by merchant reference
========================================================= */

func (a *Adapter) VerifyPayment(ctx context.Context, reference string) *gateway.PaymentVerificationResult {
	if !a.IsAvailable() {
		return gateway.FailedVerification(reference, "OPay is not configured", nil)
	}

	payload := map[string]any{"reference": reference, "country": "NG"}
	body, _ := json.Marshal(payload)
	headers := map[string]string{
		"Authorization": "Bearer " + a.sign(body),
		"MerchantId":    a.cfg.MerchantID,
	}

	resp, _, err := gateway.DoJSON(ctx, a.client, http.MethodPost, a.cfg.BaseURL+"/api/v1/international/cashier/status", headers, payload)
	if err != nil {
		return gateway.FailedVerification(reference, "Unable to reach OPay: "+err.Error(), nil)
	}
	if gateway.Str(resp, "code") != codeSuccess {
		msg := gateway.Str(resp, "message")
		if msg == "" {
			msg = "Verification failed"
		}
		return gateway.FailedVerification(reference, msg, resp)
	}

	data := gateway.Child(resp, "data")
	amountData := gateway.Child(data, "amount")
	currency := strings.ToUpper(gateway.Str(amountData, "currency"))
	if currency == "" {
		currency = "NGN"
	}

	switch strings.ToUpper(gateway.Str(data, "status")) {
	case "SUCCESS":
		totalMinor, _ := gateway.Num(amountData, "total")
		res := gateway.SuccessVerification(
			reference,
			gateway.FromSmallestUnit(int64(totalMinor), currency),
			currency,
			gateway.Str(data, "orderNo"),
			"opay",
			resp,
		)
		if ts := gateway.Str(data, "completedAt"); ts != "" {
			res.PaidAt = gateway.ParseTime(ts)
		}
		return res
	case "PENDING", "INITIAL":
		return gateway.PendingVerification(reference, "Payment is still being processed", resp)
	default:
		msg := gateway.Str(data, "failureReason")
		if msg == "" {
			msg = "Payment was not successful"
		}
		return gateway.FailedVerification(reference, msg, resp)
	}
}

/* =========================================================
   Refund — selalu fail closed
========================================================= */

func (a *Adapter) Refund(ctx context.Context, payment *orderModel.OrderPayment, amount *float64, reason string) *gateway.RefundResult {
	return gateway.FailedRefund(
		payment.OrderPaymentReference,
		"OPay refunds must be processed manually through the OPay merchant dashboard",
		nil,
	)
}

/* =========================================================
   Webhook
========================================================= */

// ValidateWebhook: HMAC-SHA512 atas raw body; header Authorization
// berisi "Bearer <hex>", jadi nilai expected direkonstruksi DENGAN
// prefix Bearer sebelum dibandingkan constant-time.
func (a *Adapter) ValidateWebhook(req *gateway.WebhookRequest) bool {
	secret := strings.TrimSpace(a.cfg.SecretKey)
	authorization := strings.TrimSpace(req.Header("Authorization"))
	if secret == "" || authorization == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(req.Body)
	expected := "Bearer " + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(authorization))
}

// ParseWebhook: notifikasi OPay kadang nested di key "payload",
// kadang flat — dua bentuk diterima.
func (a *Adapter) ParseWebhook(req *gateway.WebhookRequest) (*gateway.WebhookEvent, error) {
	var raw map[string]any
	if err := json.Unmarshal(req.Body, &raw); err != nil {
		return nil, err
	}

	data := gateway.Child(raw, "payload")
	if data == nil {
		data = raw
	}

	currency := strings.ToUpper(gateway.Str(data, "currency"))
	if currency == "" {
		currency = "NGN"
	}

	out := &gateway.WebhookEvent{
		Type:             "payment." + strings.ToLower(gateway.Str(data, "status")),
		Reference:        gateway.Str(data, "reference"),
		Status:           mapProviderStatus(gateway.Str(data, "status")),
		Currency:         currency,
		GatewayReference: gateway.Str(data, "orderNo"),
		Raw:              raw,
	}
	if amountMinor, ok := gateway.Num(data, "amount"); ok {
		amount := gateway.FromSmallestUnit(int64(amountMinor), currency)
		out.Amount = &amount
	}
	if feeMinor, ok := gateway.Num(data, "fee"); ok {
		fee := gateway.FromSmallestUnit(int64(feeMinor), currency)
		out.GatewayFee = &fee
	}
	if ts := gateway.Str(data, "updated_at"); ts != "" {
		out.PaidAt = gateway.ParseTime(ts)
	} else if ms, ok := gateway.Num(data, "timestamp"); ok && ms > 0 {
		t := time.UnixMilli(int64(ms)).UTC()
		out.PaidAt = &t
	}
	return out, nil
}

func mapProviderStatus(s string) gateway.WebhookStatus {
	switch strings.ToUpper(s) {
	case "SUCCESS", "SUCCESSFUL":
		return gateway.WebhookStatusSuccess
	case "FAIL", "FAILED", "CLOSE", "CLOSED":
		return gateway.WebhookStatusFailed
	case "PENDING", "INITIAL":
		return gateway.WebhookStatusPending
	default:
		return gateway.WebhookStatusUnknown
	}
}
