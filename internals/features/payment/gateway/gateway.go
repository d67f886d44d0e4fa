// file: internals/features/payment/gateway/gateway.go
package gateway

import (
	"context"
	"net/http"

	orderModel "tokoku_backend/internals/features/payment/order/model"
)

/* =========================================================
   Gateway contract
   Satu interface untuk semua provider. Operasi bisnis yang
   gagal (declined, belum konfigurasi, provider error) harus
   balik sebagai result `failed` — bukan error. Error Go hanya
   untuk kesalahan programmer (bukan perilaku provider).
========================================================= */

type Gateway interface {
	// Identifier = machine key stabil, mis. "paystack".
	Identifier() string
	// Name = label untuk tampilan.
	Name() string

	SupportedCurrencies() []string
	SupportsRefunds() bool
	SupportsInlinePayment() bool

	// IsAvailable true hanya kalau kredensial wajib terisi.
	// Semua operasi wajib short-circuit ke result failed saat false.
	IsAvailable() bool

	InitializePayment(ctx context.Context, order *orderModel.Order, opts InitOptions) *PaymentInitiationResult
	// VerifyPayment idempotent: boleh dipanggil berulang untuk
	// reference yang sama dan hasil klasifikasinya konsisten.
	VerifyPayment(ctx context.Context, reference string) *PaymentVerificationResult
	// Refund: amount nil berarti full refund sebesar payment.Amount.
	Refund(ctx context.Context, payment *orderModel.OrderPayment, amount *float64, reason string) *RefundResult

	// ValidateWebhook memeriksa keaslian request inbound.
	// Balik false (tidak pernah error) saat header signature
	// atau secret konfigurasi tidak ada.
	ValidateWebhook(req *WebhookRequest) bool
	// ParseWebhook memetakan payload mentah ke event normal.
	// Tidak mensyaratkan ValidateWebhook sukses — caller yang
	// wajib validasi dulu sebelum mempercayai hasil parse.
	ParseWebhook(req *WebhookRequest) (*WebhookEvent, error)
}

// InitOptions = opsi initiate yang dikenali adapter.
// Field eksplisit, bukan map bebas.
type InitOptions struct {
	// PayCurrency: aset crypto target (khusus gateway crypto).
	PayCurrency string
	CallbackURL string
	ReturnURL   string
	Channels    []string
	// Metadata tambahan dari caller, digabung ke metadata provider.
	Metadata map[string]any
}

// WebhookRequest membawa body mentah + header request inbound.
// Body TIDAK boleh hasil re-encode framework — HMAC dihitung
// atas bytes persis seperti yang dikirim provider.
type WebhookRequest struct {
	Body    []byte
	Headers http.Header
	RawIP   string
}

func (r *WebhookRequest) Header(key string) string {
	if r == nil || r.Headers == nil {
		return ""
	}
	return r.Headers.Get(key)
}
