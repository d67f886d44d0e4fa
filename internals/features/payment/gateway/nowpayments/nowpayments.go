// file: internals/features/payment/gateway/nowpayments/nowpayments.go
package nowpayments

import (
	"bytes"
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
   NOWPayments — pembayaran cryptocurrency.
   Currency yang didukung = mata uang kuotasi fiat (yang dilihat
   merchant), bukan coin-nya. Refund tidak mungkin: settlement
   on-chain tidak bisa dibalikkan oleh platform.
========================================================= */

const defaultPayCurrency = "btc"

// cryptoExpiry dipakai kalau provider tidak mengirim estimasi expiry.
const cryptoExpiry = 30 * time.Minute

type Config struct {
	APIKey    string
	IPNSecret string
	// DefaultPayCurrency: coin default kalau opsi pay_currency kosong.
	DefaultPayCurrency string
	CallbackURL        string
	SuccessURL         string
	BaseURL            string
}

func (c Config) IsConfigured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

type Adapter struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.nowpayments.io/v1"
	}
	if cfg.DefaultPayCurrency == "" {
		cfg.DefaultPayCurrency = defaultPayCurrency
	}
	return &Adapter{cfg: cfg, client: gateway.NewHTTPClient()}
}

func (a *Adapter) Identifier() string { return "nowpayments" }
func (a *Adapter) Name() string       { return "NOWPayments" }

func (a *Adapter) SupportedCurrencies() []string {
	return []string{"USD", "EUR", "GBP", "NGN"}
}

func (a *Adapter) SupportsRefunds() bool       { return false }
func (a *Adapter) SupportsInlinePayment() bool { return false }
func (a *Adapter) IsAvailable() bool           { return a.cfg.IsConfigured() }

func (a *Adapter) authHeaders() map[string]string {
	return map[string]string{"x-api-key": a.cfg.APIKey}
}

/* =========================================================
   Initiate — hasil varian crypto
========================================================= */

func (a *Adapter) InitializePayment(ctx context.Context, order *orderModel.Order, opts gateway.InitOptions) *gateway.PaymentInitiationResult {
	if !a.IsAvailable() {
		return gateway.FailedInitiation("NOWPayments is not configured", "")
	}

	reference := gateway.BuildReference(order)
	currency := strings.ToLower(order.OrderCurrency)

	payCurrency := strings.ToLower(strings.TrimSpace(opts.PayCurrency))
	if payCurrency == "" {
		payCurrency = a.cfg.DefaultPayCurrency
	}

	callbackURL := opts.CallbackURL
	if callbackURL == "" {
		callbackURL = a.cfg.CallbackURL
	}
	successURL := opts.ReturnURL
	if successURL == "" {
		successURL = a.cfg.SuccessURL
	}

	payload := map[string]any{
		"price_amount":      order.OrderTotalAmount,
		"price_currency":    currency,
		"pay_currency":      payCurrency,
		"order_id":          reference,
		"order_description": "Order " + order.OrderNumber,
	}
	if callbackURL != "" {
		payload["ipn_callback_url"] = callbackURL
	}
	if successURL != "" {
		payload["success_url"] = successURL
	}

	resp, code, err := gateway.DoJSON(ctx, a.client, http.MethodPost, a.cfg.BaseURL+"/payment", a.authHeaders(), payload)
	if err != nil {
		return gateway.FailedInitiation("Unable to reach NOWPayments: "+err.Error(), reference)
	}

	paymentID := gateway.Str(resp, "payment_id")
	payAddress := gateway.Str(resp, "pay_address")
	if code >= 400 || paymentID == "" || payAddress == "" {
		msg := gateway.Str(resp, "message")
		if msg == "" {
			msg = "NOWPayments rejected the transaction"
		}
		return gateway.FailedInitiation(msg, reference)
	}

	payAmount, _ := gateway.Num(resp, "pay_amount")

	expiresAt := time.Now().Add(cryptoExpiry).UTC()
	if t := gateway.ParseTime(gateway.Str(resp, "expiration_estimate_date")); t != nil {
		expiresAt = t.UTC()
	}

	log.Printf("[GATEWAY] payment_initialized provider=nowpayments reference=%s amount=%.2f currency=%s", reference, order.OrderTotalAmount, strings.ToUpper(currency))

	return gateway.CryptoInitiation(
		reference,
		payAddress,
		payAmount,
		strings.ToLower(gateway.Str(resp, "pay_currency")),
		gateway.Str(resp, "qr_code"),
		expiresAt,
		map[string]any{
			"payment_id": paymentID,
		},
	)
}

/* =========================================================
   Verify
========================================================= */

func (a *Adapter) VerifyPayment(ctx context.Context, reference string) *gateway.PaymentVerificationResult {
	if !a.IsAvailable() {
		return gateway.FailedVerification(reference, "NOWPayments is not configured", nil)
	}

	resp, code, err := gateway.DoJSON(ctx, a.client, http.MethodGet, a.cfg.BaseURL+"/payment/"+reference, a.authHeaders(), nil)
	if err != nil {
		return gateway.FailedVerification(reference, "Unable to reach NOWPayments: "+err.Error(), nil)
	}
	if code >= 400 {
		msg := gateway.Str(resp, "message")
		if msg == "" {
			msg = "Verification failed"
		}
		return gateway.FailedVerification(reference, msg, resp)
	}

	status := strings.ToLower(gateway.Str(resp, "payment_status"))
	payCurrency := strings.ToLower(gateway.Str(resp, "pay_currency"))
	priceCurrency := strings.ToUpper(gateway.Str(resp, "price_currency"))
	orderID := gateway.Str(resp, "order_id")
	if orderID == "" {
		orderID = reference
	}

	switch status {
	case "finished", "confirmed":
		amount, _ := gateway.Num(resp, "price_amount")
		res := gateway.SuccessVerification(
			orderID,
			amount,
			priceCurrency,
			gateway.Str(resp, "payment_id"),
			"crypto_"+payCurrency,
			resp,
		)
		if paid := gateway.ParseTime(gateway.Str(resp, "updated_at")); paid != nil {
			res.PaidAt = paid
		}
		return res
	case "waiting", "confirming", "sending":
		return gateway.PendingVerification(orderID, "Crypto payment is "+status, resp)
	default:
		return gateway.FailedVerification(orderID, "Crypto payment "+status, resp)
	}
}

/* =========================================================
   Refund — tidak didukung, hard fail
========================================================= */

func (a *Adapter) Refund(ctx context.Context, payment *orderModel.OrderPayment, amount *float64, reason string) *gateway.RefundResult {
	return gateway.FailedRefund(
		payment.OrderPaymentReference,
		"Cryptocurrency payments cannot be refunded automatically; settle refunds off-platform",
		nil,
	)
}

/* =========================================================
   Webhook — signature atas payload ter-sort
========================================================= */

// sortedJSON: re-encode payload dengan key terurut ascending dan
// slash TIDAK di-escape. Langkah ini load-bearing: NOWPayments
// menandatangani bentuk persis ini, encoding lain = signature mismatch.
func sortedJSON(payload map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (a *Adapter) ValidateWebhook(req *gateway.WebhookRequest) bool {
	secret := strings.TrimSpace(a.cfg.IPNSecret)
	signature := strings.TrimSpace(req.Header("x-nowpayments-sig"))
	if secret == "" || signature == "" {
		return false
	}

	var payload map[string]any
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		return false
	}
	canonical, err := sortedJSON(payload)
	if err != nil {
		return false
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(canonical)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func (a *Adapter) ParseWebhook(req *gateway.WebhookRequest) (*gateway.WebhookEvent, error) {
	var payload map[string]any
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		return nil, err
	}

	status := strings.ToLower(gateway.Str(payload, "payment_status"))
	priceCurrency := strings.ToUpper(gateway.Str(payload, "price_currency"))

	out := &gateway.WebhookEvent{
		Type:             "payment." + status,
		Reference:        gateway.Str(payload, "order_id"),
		Status:           mapProviderStatus(status),
		Currency:         priceCurrency,
		GatewayReference: gateway.Str(payload, "payment_id"),
		Metadata: map[string]any{
			"pay_currency": strings.ToLower(gateway.Str(payload, "pay_currency")),
		},
		Raw: payload,
	}
	if amount, ok := gateway.Num(payload, "price_amount"); ok {
		out.Amount = &amount
	}
	if fee, ok := gateway.Num(payload, "fee"); ok {
		out.GatewayFee = &fee
	}
	if out.Status == gateway.WebhookStatusSuccess {
		out.PaidAt = gateway.ParseTime(gateway.Str(payload, "updated_at"))
	}
	return out, nil
}

func mapProviderStatus(s string) gateway.WebhookStatus {
	switch s {
	case "finished", "confirmed":
		return gateway.WebhookStatusSuccess
	case "failed", "refunded", "expired":
		return gateway.WebhookStatusFailed
	case "waiting", "confirming", "sending", "partially_paid":
		return gateway.WebhookStatusPending
	default:
		return gateway.WebhookStatusUnknown
	}
}
